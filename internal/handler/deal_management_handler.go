package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/ventech/ventech_api/internal/middleware"
	"github.com/ventech/ventech_api/internal/models"
	"github.com/ventech/ventech_api/internal/service"
	"github.com/ventech/ventech_api/internal/utils"
)

// DealManager is the back-office deal API. Implemented by service.DealManagementService.
type DealManager interface {
	ListDeals(ctx context.Context, page, limit int) ([]models.Deal, int, error)
	GetDeal(ctx context.Context, id string) (*service.DealDetail, error)
	CreateDeal(ctx context.Context, req service.DealRequest) (*models.Deal, error)
	UpdateDeal(ctx context.Context, id string, req service.DealRequest) (*models.Deal, error)
	DeleteDeal(ctx context.Context, id string) error
	AddDealProduct(ctx context.Context, dealID string, req service.DealProductRequest) (*models.DealProduct, error)
	UpdateDealProduct(ctx context.Context, id string, req service.DealProductRequest) (*models.DealProduct, error)
	DeleteDealProduct(ctx context.Context, id string) error
}

// DealManagementHandler handles /v1/admin deal endpoints.
type DealManagementHandler struct {
	svc DealManager
}

// NewDealManagementHandler constructs a DealManagementHandler.
func NewDealManagementHandler(svc DealManager) *DealManagementHandler {
	return &DealManagementHandler{svc: svc}
}

func (h *DealManagementHandler) ListDeals(c *gin.Context) {
	page, limit := pagination(c)
	deals, total, err := h.svc.ListDeals(c.Request.Context(), page, limit)
	if err != nil {
		utils.ErrorFrom(c, err, "Failed to get deals")
		return
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Deals retrieved successfully", gin.H{
		"deals": deals,
	}, page, limit, total)
}

func (h *DealManagementHandler) GetDeal(c *gin.Context) {
	detail, err := h.svc.GetDeal(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ErrorFrom(c, err, "Deal not found")
		return
	}
	utils.Success(c, http.StatusOK, "Deal retrieved successfully", detail)
}

func (h *DealManagementHandler) CreateDeal(c *gin.Context) {
	var req service.DealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	deal, err := h.svc.CreateDeal(c.Request.Context(), req)
	if err != nil {
		utils.ErrorFrom(c, err, err.Error())
		return
	}
	log.Info().Str("admin_id", middleware.AdminID(c)).Str("deal_id", deal.ID).Msg("admin created deal")
	utils.Success(c, http.StatusCreated, "Deal created successfully", deal)
}

func (h *DealManagementHandler) UpdateDeal(c *gin.Context) {
	var req service.DealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	deal, err := h.svc.UpdateDeal(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		utils.ErrorFrom(c, err, err.Error())
		return
	}
	utils.Success(c, http.StatusOK, "Deal updated successfully", deal)
}

func (h *DealManagementHandler) DeleteDeal(c *gin.Context) {
	if err := h.svc.DeleteDeal(c.Request.Context(), c.Param("id")); err != nil {
		utils.ErrorFrom(c, err, "Deal not found")
		return
	}
	log.Info().Str("admin_id", middleware.AdminID(c)).Str("deal_id", c.Param("id")).Msg("admin deleted deal")
	utils.Success(c, http.StatusOK, "Deal deleted successfully", nil)
}

func (h *DealManagementHandler) AddDealProduct(c *gin.Context) {
	var req service.DealProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	dp, err := h.svc.AddDealProduct(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		utils.ErrorFrom(c, err, err.Error())
		return
	}
	utils.Success(c, http.StatusCreated, "Deal product added successfully", dp)
}

func (h *DealManagementHandler) UpdateDealProduct(c *gin.Context) {
	var req service.DealProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	dp, err := h.svc.UpdateDealProduct(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		utils.ErrorFrom(c, err, err.Error())
		return
	}
	utils.Success(c, http.StatusOK, "Deal product updated successfully", dp)
}

func (h *DealManagementHandler) DeleteDealProduct(c *gin.Context) {
	if err := h.svc.DeleteDealProduct(c.Request.Context(), c.Param("id")); err != nil {
		utils.ErrorFrom(c, err, "Deal product not found")
		return
	}
	utils.Success(c, http.StatusOK, "Deal product deleted successfully", nil)
}
