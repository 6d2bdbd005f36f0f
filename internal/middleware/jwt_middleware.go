package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ventech/ventech_api/internal/utils"
)

// TokenValidator parses admin bearer tokens. Implemented by utils.JWTManager.
type TokenValidator interface {
	Validate(token string) (*utils.JWTClaims, error)
}

type JWTMiddleware struct {
	tokens   TokenValidator
	failures *IPRateLimiter
}

// NewJWTMiddleware builds the admin guard. failures may be nil; when set,
// repeated invalid tokens from one IP are answered with 429.
func NewJWTMiddleware(tokens TokenValidator, failures *IPRateLimiter) *JWTMiddleware {
	return &JWTMiddleware{tokens: tokens, failures: failures}
}

func (m *JWTMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.failures != nil && m.failures.Blocked(c.ClientIP()) {
			utils.Error(c, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many invalid authentication attempts")
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			m.reject(c, "UNAUTHORIZED", "Missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			m.reject(c, "UNAUTHORIZED", "Invalid authorization header")
			return
		}

		claims, err := m.tokens.Validate(parts[1])
		if err != nil {
			m.reject(c, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		c.Next()
	}
}

func (m *JWTMiddleware) reject(c *gin.Context, code, message string) {
	if m.failures != nil {
		m.failures.Allow(c.ClientIP())
	}
	utils.Error(c, http.StatusUnauthorized, code, message)
	c.Abort()
}
