package auth

import (
	"go-derma/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the account endpoints; authMW guards the ones that
// need a caller.
func RegisterRoutes(users *gin.RouterGroup, handler *Handler, authMW gin.HandlerFunc) {
	users.POST("/register", middleware.RateLimitByIP(0.1, 3), handler.Register)
	users.POST("/login", middleware.RateLimitByIP(0.2, 5), handler.Login)
	users.POST("/logout", authMW, middleware.RateLimitByUser(2, 5), handler.Logout)
	users.GET("/me", authMW, middleware.RateLimitByUser(2, 5), handler.Me)
}
