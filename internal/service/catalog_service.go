package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ventech/ventech_api/internal/dealpricing"
	"github.com/ventech/ventech_api/internal/models"
)

// ProductStore reads catalog products.
type ProductStore interface {
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
}

// DealProductResolver resolves a single deal product by id.
type DealProductResolver interface {
	GetDealProduct(ctx context.Context, id string) (*dealpricing.ResolvedDealProduct, error)
}

// ProductDetail is what the product page renders. Exactly one of Product
// and Deal is set.
type ProductDetail struct {
	Product *models.Product                  `json:"product,omitempty"`
	Deal    *dealpricing.ResolvedDealProduct `json:"deal,omitempty"`
	IsDeal  bool                             `json:"isDeal"`
}

// CatalogService serves product detail pages.
type CatalogService struct {
	products ProductStore
	deals    DealProductResolver
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(products ProductStore, deals DealProductResolver) *CatalogService {
	return &CatalogService{products: products, deals: deals}
}

// GetProductBySlug loads a catalog product. Slugs of the form "deal-<uuid>"
// name deal products and are resolved through the deal service; any other
// slug, including "deal-something", is a catalog slug.
func (s *CatalogService) GetProductBySlug(ctx context.Context, slug string) (*ProductDetail, error) {
	if id, ok := dealProductID(slug); ok {
		resolved, err := s.deals.GetDealProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		return &ProductDetail{Deal: resolved, IsDeal: true}, nil
	}

	p, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	p.Specifications = dealpricing.ParseSpecifications(p.Specifications)
	return &ProductDetail{Product: p}, nil
}

func dealProductID(slug string) (string, bool) {
	id, ok := strings.CutPrefix(slug, dealpricing.DealSlugPrefix)
	if !ok {
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}
