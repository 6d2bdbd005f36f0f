package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/ventech/ventech_api/internal/dealpricing"
	"github.com/ventech/ventech_api/internal/models"
	"github.com/ventech/ventech_api/internal/sse"
	"github.com/ventech/ventech_api/internal/utils"
)

// DealRepo is the deal persistence used by the back office.
type DealRepo interface {
	GetByID(ctx context.Context, id string) (*models.Deal, error)
	List(ctx context.Context, page, limit int) ([]models.Deal, int, error)
	Create(ctx context.Context, d *models.Deal) error
	Update(ctx context.Context, d *models.Deal) error
	Delete(ctx context.Context, id string) error
}

// DealProductRepo is the deal product persistence used by the back office.
type DealProductRepo interface {
	GetByID(ctx context.Context, id string) (*models.DealProduct, error)
	GetByDealID(ctx context.Context, dealID string) ([]models.DealProduct, error)
	Create(ctx context.Context, dp *models.DealProduct) error
	Update(ctx context.Context, dp *models.DealProduct) error
	Delete(ctx context.Context, id string) error
}

// ProductChecker verifies catalog references.
type ProductChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// CacheInvalidator drops cached deal listings after writes.
type CacheInvalidator interface {
	InvalidateCache(ctx context.Context)
}

// DealRequest creates or replaces a deal.
type DealRequest struct {
	Title              string    `json:"title" binding:"required"`
	Description        string    `json:"description"`
	DiscountPercentage int       `json:"discount_percentage"`
	BannerURL          *string   `json:"banner_url"`
	StartDate          time.Time `json:"start_date" binding:"required"`
	EndDate            time.Time `json:"end_date" binding:"required"`
	IsActive           *bool     `json:"is_active"`
}

// DealProductRequest creates or replaces a deal product. Either ProductID or
// ProductName is required. Price, stock and percentage fields accept numbers
// or numeric text.
type DealProductRequest struct {
	ProductID             *string  `json:"product_id"`
	ProductName           *string  `json:"product_name"`
	ProductDescription    *string  `json:"product_description"`
	ProductImageURL       *string  `json:"product_image_url"`
	ProductImages         []string `json:"product_images"`
	ProductKeyFeatures    any      `json:"product_key_features"`
	ProductSpecifications any      `json:"product_specifications"`
	OriginalPrice         any      `json:"original_price"`
	DealPrice             any      `json:"deal_price"`
	DiscountPercentage    any      `json:"discount_percentage"`
	StockQuantity         any      `json:"stock_quantity"`
	OriginalStock         any      `json:"original_stock"`
	SortOrder             int      `json:"sort_order"`
}

// DealDetail is a deal with its raw rows and a storefront preview.
type DealDetail struct {
	Deal     *models.Deal                      `json:"deal"`
	Products []models.DealProduct              `json:"products"`
	Preview  []dealpricing.ResolvedDealProduct `json:"preview"`
}

// DealManagementService handles back-office deal CRUD.
type DealManagementService struct {
	deals        DealRepo
	dealProducts DealProductRepo
	products     ProductChecker
	cache        CacheInvalidator
	resolver     *dealpricing.Resolver
	notifier     sse.ChangeNotifier
}

// NewDealManagementService constructs a DealManagementService.
func NewDealManagementService(deals DealRepo, dealProducts DealProductRepo, products ProductChecker, cache CacheInvalidator, resolver *dealpricing.Resolver) *DealManagementService {
	return &DealManagementService{
		deals:        deals,
		dealProducts: dealProducts,
		products:     products,
		cache:        cache,
		resolver:     resolver,
		notifier:     sse.NopNotifier{},
	}
}

// SetNotifier sets the notifier used to push changes to admin dashboards.
func (s *DealManagementService) SetNotifier(n sse.ChangeNotifier) {
	s.notifier = n
}

// ListDeals returns a page of deals and the total count.
func (s *DealManagementService) ListDeals(ctx context.Context, page, limit int) ([]models.Deal, int, error) {
	return s.deals.List(ctx, page, limit)
}

// GetDeal returns a deal with its rows and a resolved preview. The preview
// ignores the deal window so upcoming deals can be checked before launch.
func (s *DealManagementService) GetDeal(ctx context.Context, id string) (*DealDetail, error) {
	deal, err := s.deals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.dealProducts.GetByDealID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DealDetail{
		Deal:     deal,
		Products: rows,
		Preview:  s.resolver.ResolveAll(deal, rows, dealpricing.Options{}),
	}, nil
}

// CreateDeal validates and stores a new deal.
func (s *DealManagementService) CreateDeal(ctx context.Context, req DealRequest) (*models.Deal, error) {
	deal := &models.Deal{IsActive: true}
	if err := applyDealRequest(deal, req); err != nil {
		return nil, err
	}
	if err := s.deals.Create(ctx, deal); err != nil {
		return nil, fmt.Errorf("create deal: %w", err)
	}
	log.Info().Str("deal_id", deal.ID).Str("title", deal.Title).Msg("deal created")
	s.cache.InvalidateCache(ctx)
	s.notifier.NotifyDealChanged(sse.EventDealCreated, deal.ID)
	return deal, nil
}

// UpdateDeal replaces the editable fields of a deal.
func (s *DealManagementService) UpdateDeal(ctx context.Context, id string, req DealRequest) (*models.Deal, error) {
	deal, err := s.deals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyDealRequest(deal, req); err != nil {
		return nil, err
	}
	if err := s.deals.Update(ctx, deal); err != nil {
		return nil, err
	}
	log.Info().Str("deal_id", id).Msg("deal updated")
	s.cache.InvalidateCache(ctx)
	s.notifier.NotifyDealChanged(sse.EventDealUpdated, id)
	return deal, nil
}

// DeleteDeal removes a deal and its products.
func (s *DealManagementService) DeleteDeal(ctx context.Context, id string) error {
	if err := s.deals.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Str("deal_id", id).Msg("deal deleted")
	s.cache.InvalidateCache(ctx)
	s.notifier.NotifyDealChanged(sse.EventDealDeleted, id)
	return nil
}

// AddDealProduct attaches a catalog product or a standalone item to a deal.
func (s *DealManagementService) AddDealProduct(ctx context.Context, dealID string, req DealProductRequest) (*models.DealProduct, error) {
	if _, err := s.deals.GetByID(ctx, dealID); err != nil {
		return nil, err
	}
	dp := &models.DealProduct{DealID: dealID}
	if err := s.applyDealProductRequest(ctx, dp, req); err != nil {
		return nil, err
	}
	if err := s.dealProducts.Create(ctx, dp); err != nil {
		return nil, err
	}
	log.Info().Str("deal_id", dealID).Str("deal_product_id", dp.ID).Msg("deal product added")
	s.cache.InvalidateCache(ctx)
	s.notifier.NotifyDealProductChanged(dp.ID, dealID)
	return dp, nil
}

// UpdateDealProduct replaces a deal product.
func (s *DealManagementService) UpdateDealProduct(ctx context.Context, id string, req DealProductRequest) (*models.DealProduct, error) {
	dp, err := s.dealProducts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dp.Product = nil
	if err := s.applyDealProductRequest(ctx, dp, req); err != nil {
		return nil, err
	}
	if err := s.dealProducts.Update(ctx, dp); err != nil {
		return nil, err
	}
	log.Info().Str("deal_product_id", id).Msg("deal product updated")
	s.cache.InvalidateCache(ctx)
	s.notifier.NotifyDealProductChanged(id, dp.DealID)
	return dp, nil
}

// DeleteDealProduct removes a deal product.
func (s *DealManagementService) DeleteDealProduct(ctx context.Context, id string) error {
	if err := s.dealProducts.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Str("deal_product_id", id).Msg("deal product deleted")
	s.cache.InvalidateCache(ctx)
	s.notifier.NotifyDealProductChanged(id, "")
	return nil
}

func applyDealRequest(d *models.Deal, req DealRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", utils.ErrInvalidDeal)
	}
	if req.DiscountPercentage < 0 || req.DiscountPercentage > 100 {
		return fmt.Errorf("%w: discount_percentage must be between 0 and 100", utils.ErrInvalidDeal)
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() || !req.EndDate.After(req.StartDate) {
		return fmt.Errorf("%w: end_date must be after start_date", utils.ErrInvalidDeal)
	}

	d.Title = title
	d.Description = strings.TrimSpace(req.Description)
	d.DiscountPercentage = req.DiscountPercentage
	d.BannerURL = trimmedOrNil(req.BannerURL)
	d.StartDate = req.StartDate.UTC()
	d.EndDate = req.EndDate.UTC()
	if req.IsActive != nil {
		d.IsActive = *req.IsActive
	}
	return nil
}

func (s *DealManagementService) applyDealProductRequest(ctx context.Context, dp *models.DealProduct, req DealProductRequest) error {
	productID := trimmedOrNil(req.ProductID)
	name := trimmedOrNil(req.ProductName)
	if productID == nil && name == nil {
		return fmt.Errorf("%w: product_id or product_name is required", utils.ErrInvalidDealProduct)
	}
	if productID != nil {
		ok, err := s.products.Exists(ctx, *productID)
		if err != nil {
			return fmt.Errorf("check product %s: %w", *productID, err)
		}
		if !ok {
			return fmt.Errorf("%w: product %s does not exist", utils.ErrInvalidDealProduct, *productID)
		}
	}

	for field, v := range map[string]any{
		"original_price": req.OriginalPrice,
		"deal_price":     req.DealPrice,
	} {
		if isBlank(v) {
			continue
		}
		if f := dealpricing.ParseAmount(v); f == nil || *f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative amount", utils.ErrInvalidDealProduct, field)
		}
	}
	if !isBlank(req.DiscountPercentage) {
		if n := dealpricing.ParseInteger(req.DiscountPercentage); n == nil || *n < 0 || *n > 100 {
			return fmt.Errorf("%w: discount_percentage must be between 0 and 100", utils.ErrInvalidDealProduct)
		}
	}
	for field, v := range map[string]any{
		"stock_quantity": req.StockQuantity,
		"original_stock": req.OriginalStock,
	} {
		if isBlank(v) {
			continue
		}
		if n := dealpricing.ParseInteger(v); n == nil || *n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", utils.ErrInvalidDealProduct, field)
		}
	}

	dp.ProductID = productID
	dp.ProductName = name
	dp.ProductDescription = trimmedOrNil(req.ProductDescription)
	dp.ProductImageURL = trimmedOrNil(req.ProductImageURL)
	dp.ProductImages = pq.StringArray(req.ProductImages)
	dp.ProductKeyFeatures = blankToNil(req.ProductKeyFeatures)
	dp.ProductSpecifications = blankToNil(req.ProductSpecifications)
	dp.OriginalPrice = blankToNil(req.OriginalPrice)
	dp.DealPrice = blankToNil(req.DealPrice)
	dp.DiscountPercentage = blankToNil(req.DiscountPercentage)
	dp.StockQuantity = blankToNil(req.StockQuantity)
	dp.OriginalStock = blankToNil(req.OriginalStock)
	dp.SortOrder = req.SortOrder
	return nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func blankToNil(v any) any {
	if isBlank(v) {
		return nil
	}
	return v
}
