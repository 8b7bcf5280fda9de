package middleware

import (
	"errors"
	"net/http"
	"strings"

	"go-derma/internal/shared/apperror"
	"go-derma/internal/shared/contextutil"
	"go-derma/internal/shared/response"
	"go-derma/internal/shared/token"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const AccessTokenCookie = "access_token"

// Keys set on the gin context by AuthMiddleware.
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextRole   = "role"
)

type TokenParser interface {
	Parse(tokenString string) (*token.Claims, error)
}

// AuthMiddleware accepts a Bearer token, falling back to the access_token
// cookie set for browser clients.
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, _ := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		tokenString = strings.TrimSpace(tokenString)

		if tokenString == "" {
			if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Token not found", nil)
			c.Abort()
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, token.ErrExpired) {
				msg = "Token has expired"
			}
			response.Error(c, http.StatusUnauthorized, apperror.CodeInvalidToken, msg, nil)
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, claims.Role)

		ctx := c.Request.Context()
		ctx = contextutil.WithUserID(ctx, claims.UserID)
		ctx = contextutil.WithRole(ctx, claims.Role)
		reqLogger := contextutil.GetLogger(ctx, zap.L()).With(
			zap.String("user_id", claims.UserID),
			zap.String("role", claims.Role),
		)
		ctx = contextutil.WithLogger(ctx, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}

		response.Error(c, apperror.ErrForbidden.HTTPStatus, apperror.ErrForbidden.Code, apperror.ErrForbidden.Message, nil)
		c.Abort()
	}
}
