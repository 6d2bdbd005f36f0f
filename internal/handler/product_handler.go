package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ventech/ventech_api/internal/service"
	"github.com/ventech/ventech_api/internal/utils"
)

// ProductFinder loads product detail pages. Implemented by service.CatalogService.
type ProductFinder interface {
	GetProductBySlug(ctx context.Context, slug string) (*service.ProductDetail, error)
}

// ProductHandler handles product-related HTTP endpoints.
type ProductHandler struct {
	catalog ProductFinder
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(catalog ProductFinder) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// GetProduct returns a catalog product, or a deal product for "deal-<id>" slugs.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	detail, err := h.catalog.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		utils.ErrorFrom(c, err, "Product not found")
		return
	}
	utils.Success(c, http.StatusOK, "Product retrieved successfully", detail)
}
