package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ventech/ventech_api/internal/middleware"
	"github.com/ventech/ventech_api/internal/models"
	"github.com/ventech/ventech_api/internal/service"
	"github.com/ventech/ventech_api/internal/utils"
)

// AdminAuthenticator is implemented by service.AdminAuthService.
type AdminAuthenticator interface {
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	Signup(ctx context.Context, key string, req service.SignupRequest) (*models.AdminUser, error)
}

type AuthHandler struct {
	authService AdminAuthenticator
	failures    *middleware.IPRateLimiter
}

// NewAuthHandler constructs an AuthHandler. failures may be nil.
func NewAuthHandler(authService AdminAuthenticator, failures *middleware.IPRateLimiter) *AuthHandler {
	return &AuthHandler{authService: authService, failures: failures}
}

func (h *AuthHandler) Login(c *gin.Context) {
	if h.failures != nil && h.failures.Blocked(c.ClientIP()) {
		utils.Error(c, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many invalid authentication attempts")
		return
	}

	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidCredentials) && h.failures != nil {
			h.failures.Allow(c.ClientIP())
		}
		utils.ErrorFrom(c, err, "Invalid email or password")
		return
	}

	utils.Success(c, http.StatusOK, "Login successful", result)
}

// Signup creates an admin account. The signup key is read from the
// X-Signup-Key header or the signup_key field.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		service.SignupRequest
		SignupKey string `json:"signup_key"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	key := c.GetHeader("X-Signup-Key")
	if key == "" {
		key = req.SignupKey
	}

	user, err := h.authService.Signup(c.Request.Context(), key, req.SignupRequest)
	if err != nil {
		utils.ErrorFrom(c, err, err.Error())
		return
	}
	utils.Success(c, http.StatusCreated, "Account created successfully", user)
}
