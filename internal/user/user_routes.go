package user

import (
	"go-derma/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	admin *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
) {
	admin.GET("/pending-users",
		middleware.RBACAuthorize(rbacService, "registration", "read"),
		handler.GetPending,
	)
	admin.PATCH("/approve-user/:id",
		middleware.RateLimitByUser(1, 5),
		middleware.RBACAuthorize(rbacService, "registration", "review"),
		handler.Review,
	)
}
