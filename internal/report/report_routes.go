package report

import (
	"go-derma/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(admin *gin.RouterGroup, handler *Handler, rbacService middleware.RBACService) {
	read := middleware.RBACAuthorize(rbacService, "report", "read")

	admin.GET("/users", read, handler.Customers)
	admin.GET("/:id/details", read, handler.UserDetails)

	reports := admin.Group("/reports", read, middleware.RateLimitByUser(0.5, 3))
	{
		reports.GET("/invoices.csv", handler.ExportAll)
		reports.GET("/users/:id/invoices.csv", handler.ExportUser)
	}
}
