package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/ventech/ventech_api/internal/middleware"
	"github.com/ventech/ventech_api/internal/models"
	"github.com/ventech/ventech_api/internal/utils"
)

// SettingsManager is implemented by service.SettingsService.
type SettingsManager interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
	List(ctx context.Context) ([]models.Setting, error)
	Storefront(ctx context.Context) (map[string]string, error)
	Update(ctx context.Context, key, value string) (*models.Setting, error)
}

// SettingsHandler serves storefront settings.
type SettingsHandler struct {
	settings SettingsManager
}

// NewSettingsHandler constructs a SettingsHandler.
func NewSettingsHandler(settings SettingsManager) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Storefront returns the public settings map.
func (h *SettingsHandler) Storefront(c *gin.Context) {
	values, err := h.settings.Storefront(c.Request.Context())
	if err != nil {
		utils.ErrorFrom(c, err, "Failed to get settings")
		return
	}
	utils.Success(c, http.StatusOK, "Settings retrieved successfully", values)
}

func (h *SettingsHandler) List(c *gin.Context) {
	settings, err := h.settings.List(c.Request.Context())
	if err != nil {
		utils.ErrorFrom(c, err, "Failed to get settings")
		return
	}
	utils.Success(c, http.StatusOK, "Settings retrieved successfully", gin.H{
		"settings": settings,
	})
}

func (h *SettingsHandler) Get(c *gin.Context) {
	setting, err := h.settings.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		utils.ErrorFrom(c, err, "Setting not found")
		return
	}
	utils.Success(c, http.StatusOK, "Setting retrieved successfully", setting)
}

func (h *SettingsHandler) Update(c *gin.Context) {
	var req struct {
		Value *string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	setting, err := h.settings.Update(c.Request.Context(), c.Param("key"), *req.Value)
	if err != nil {
		utils.ErrorFrom(c, err, err.Error())
		return
	}
	log.Info().Str("admin_id", middleware.AdminID(c)).Str("key", setting.Key).Msg("admin updated setting")
	utils.Success(c, http.StatusOK, "Setting updated successfully", setting)
}
