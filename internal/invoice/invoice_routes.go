package invoice

import (
	"go-derma/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	users *gin.RouterGroup,
	admin *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	rdb *redis.Client,
) {
	users.POST("/addinvoice",
		middleware.RateLimitByUser(2, 10),
		middleware.RBACAuthorize(rbacService, "invoice", "create"),
		middleware.Idempotency(rdb),
		handler.Create,
	)
	readOwn := middleware.RBACAuthorize(rbacService, "invoice", "read_own")
	users.GET("/bills", readOwn, handler.ListMine)
	users.GET("/search-bills/:setNumber", readOwn, handler.SearchMine)

	readAll := middleware.RBACAuthorize(rbacService, "invoice", "read_all")
	update := middleware.RBACAuthorize(rbacService, "invoice", "update")
	admin.GET("/invoices", readAll, handler.ListSets)
	admin.GET("/invoice/:id", readAll, handler.GetDetail)
	admin.GET("/invoice/:id/pdf", readAll, handler.DownloadPDF)
	admin.PUT("/invoice/:id", update, handler.Edit)
	admin.PUT("/invoices/:id/status", update, handler.UpdateStatus)
	admin.PUT("/invoices/:id/:action",
		middleware.RBACAuthorize(rbacService, "invoice_set", "review"),
		handler.UpdateSetStatus,
	)
}
