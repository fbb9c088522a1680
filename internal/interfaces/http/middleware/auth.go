// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/fitness-inventory/internal/interfaces/http/response"
	"github.com/your-org/fitness-inventory/internal/pkg/auth"
)

// Context keys set by AuthMiddleware
const (
	ContextUserID  = "user_id"
	ContextEmail   = "user_email"
	ContextIsAdmin = "is_admin"
	ContextClaims  = "token_claims"
)

// AuthMiddleware creates JWT authentication middleware
func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Authorization header required")
			return
		}

		// Extract token from header
		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Invalid or expired token")
			return
		}

		// Store user information in context
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextIsAdmin, claims.IsAdmin)
		c.Set(ContextClaims, claims)

		c.Next()
	}
}

// AdminMiddleware ensures the user is an admin
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, exists := c.Get(ContextIsAdmin)
		if !exists {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Authentication required")
			return
		}

		if admin, ok := isAdmin.(bool); !ok || !admin {
			response.Abort(c, http.StatusForbidden, response.CodeForbidden, "Admin access required")
			return
		}

		c.Next()
	}
}

// GetUserIDFromContext extracts user ID from gin context
func GetUserIDFromContext(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// ActorFromContext returns the authenticated user as a ledger actor, nil when anonymous
func ActorFromContext(c *gin.Context) *uint {
	id, ok := GetUserIDFromContext(c)
	if !ok {
		return nil
	}
	return &id
}
