package punch

import (
	"go-derma/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	users *gin.RouterGroup,
	admin *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
) {
	write := middleware.RBACAuthorize(rbacService, "punch", "write")
	readOwn := middleware.RBACAuthorize(rbacService, "punch", "read_own")
	limit := middleware.RateLimitByUser(2, 5)

	users.POST("/punch-in", limit, write, handler.PunchIn)
	users.POST("/punch-out", limit, write, handler.PunchOut)
	users.POST("/break/start", limit, write, handler.StartBreak)
	users.POST("/break/end", limit, write, handler.EndBreak)
	users.GET("/my-punch", readOwn, handler.MyPunch)
	users.GET("/punches/recent", readOwn, handler.MyRecent)

	readAll := middleware.RBACAuthorize(rbacService, "punch", "read_all")
	admin.GET("/admin/all", readAll, handler.AllRecords)
	admin.GET("/punches-today", readAll, handler.Today)
	admin.GET("/punches/:userId/recent", readAll, handler.UserRecent)
	admin.PATCH("/update/:punchId",
		middleware.RBACAuthorize(rbacService, "punch", "approve"),
		handler.SetApproval,
	)
}
