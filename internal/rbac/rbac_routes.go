package rbac

import (
	"go-derma/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(admin *gin.RouterGroup, handler *Handler, service Service) {
	group := admin.Group("/rbac")
	{
		group.GET("/policies", middleware.RBACAuthorize(service, "rbac", "read"), handler.ListPolicies)
		group.POST("/enforce", middleware.RBACAuthorize(service, "rbac", "read"), handler.Enforce)
	}
}
