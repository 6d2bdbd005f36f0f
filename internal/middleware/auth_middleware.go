package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ventech/ventech_api/internal/utils"
)

// RequireRole only lets admins with one of roles through. It must run after
// JWTMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		if !allowed[AdminRole(c)] {
			utils.Error(c, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminID returns the authenticated admin id from context.
func AdminID(c *gin.Context) string {
	return c.GetString("user_id")
}

// AdminRole returns the authenticated admin role from context.
func AdminRole(c *gin.Context) string {
	return c.GetString("role")
}
