package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ventech/ventech_api/internal/dealpricing"
	"github.com/ventech/ventech_api/internal/utils"
)

// DealReader serves the storefront deal views. Implemented by service.DealService.
type DealReader interface {
	ListActiveDeals(ctx context.Context) ([]dealpricing.DealGroup, error)
	FlashDeals(ctx context.Context, limit int) ([]dealpricing.ResolvedDealProduct, error)
	GetDealProduct(ctx context.Context, id string) (*dealpricing.ResolvedDealProduct, error)
}

// DealHandler handles public deal endpoints.
type DealHandler struct {
	deals DealReader
}

// NewDealHandler constructs a DealHandler.
func NewDealHandler(deals DealReader) *DealHandler {
	return &DealHandler{deals: deals}
}

// ListDeals returns every active deal with its resolved products.
func (h *DealHandler) ListDeals(c *gin.Context) {
	groups, err := h.deals.ListActiveDeals(c.Request.Context())
	if err != nil {
		utils.ErrorFrom(c, err, "Failed to get deals")
		return
	}
	utils.Success(c, http.StatusOK, "Deals retrieved successfully", gin.H{
		"deals": groups,
	})
}

// FlashDeals returns the homepage carousel. ?limit is optional.
func (h *DealHandler) FlashDeals(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	products, err := h.deals.FlashDeals(c.Request.Context(), limit)
	if err != nil {
		utils.ErrorFrom(c, err, "Failed to get flash deals")
		return
	}
	utils.Success(c, http.StatusOK, "Flash deals retrieved successfully", gin.H{
		"products": products,
	})
}

// GetDealProduct returns one resolved deal product.
func (h *DealHandler) GetDealProduct(c *gin.Context) {
	product, err := h.deals.GetDealProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ErrorFrom(c, err, "Deal product not found")
		return
	}
	utils.Success(c, http.StatusOK, "Deal product retrieved successfully", product)
}
