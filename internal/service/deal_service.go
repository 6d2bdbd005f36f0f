package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/ventech/ventech_api/internal/cache"
	"github.com/ventech/ventech_api/internal/dealpricing"
	"github.com/ventech/ventech_api/internal/metrics"
	"github.com/ventech/ventech_api/internal/models"
	"github.com/ventech/ventech_api/internal/pkg/clock"
	"github.com/ventech/ventech_api/internal/utils"
)

// DealStore reads deals.
type DealStore interface {
	GetActive(ctx context.Context, now time.Time) ([]models.Deal, error)
	GetByID(ctx context.Context, id string) (*models.Deal, error)
}

// DealProductStore reads deal product rows with catalog products attached.
type DealProductStore interface {
	GetActive(ctx context.Context, now time.Time) ([]models.DealProduct, error)
	GetByID(ctx context.Context, id string) (*models.DealProduct, error)
}

// DealCacher caches resolved listings. Implemented by cache.DealCache.
type DealCacher interface {
	GetFlash(ctx context.Context, limit int, backorders bool) ([]dealpricing.ResolvedDealProduct, error)
	SetFlash(ctx context.Context, limit int, backorders bool, products []dealpricing.ResolvedDealProduct) error
	GetActive(ctx context.Context, backorders bool) ([]dealpricing.DealGroup, error)
	SetActive(ctx context.Context, backorders bool, groups []dealpricing.DealGroup) error
	Invalidate(ctx context.Context) error
}

// StorefrontSettings exposes the settings the deal pages depend on.
type StorefrontSettings interface {
	AllowBackorders(ctx context.Context) bool
	FlashDealLimit(ctx context.Context) int
}

// DealService serves the three storefront views of deals: the deals page,
// the homepage flash carousel and the product-detail fallback.
type DealService struct {
	deals        DealStore
	dealProducts DealProductStore
	settings     StorefrontSettings
	cache        DealCacher
	resolver     *dealpricing.Resolver
	clock        clock.Clock
	sf           singleflight.Group
}

// NewDealService constructs a DealService. cache may be nil.
func NewDealService(deals DealStore, dealProducts DealProductStore, settings StorefrontSettings, dc DealCacher, resolver *dealpricing.Resolver, clk clock.Clock) *DealService {
	if clk == nil {
		clk = clock.System{}
	}
	return &DealService{
		deals:        deals,
		dealProducts: dealProducts,
		settings:     settings,
		cache:        dc,
		resolver:     resolver,
		clock:        clk,
	}
}

// ListActiveDeals returns every active deal with its resolved products.
// Deals without a single displayable product are left out.
func (s *DealService) ListActiveDeals(ctx context.Context) ([]dealpricing.DealGroup, error) {
	opts := s.options(ctx)

	if s.cache != nil {
		groups, err := s.cache.GetActive(ctx, opts.AllowBackorders)
		if err == nil {
			return groups, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Warn().Err(err).Msg("deal cache read failed")
		}
	}

	key := fmt.Sprintf("active:%t", opts.AllowBackorders)
	v, err, _ := s.sf.Do(key, func() (any, error) {
		deals, rows, err := s.loadActive(ctx)
		if err != nil {
			return nil, err
		}
		groups, outcome := s.resolver.GroupByDeal(deals, rows, opts)
		s.record("deals_page", outcome)

		if s.cache != nil {
			if err := s.cache.SetActive(ctx, opts.AllowBackorders, groups); err != nil {
				log.Warn().Err(err).Msg("failed to cache active deals")
			}
		}
		return groups, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dealpricing.DealGroup), nil
}

// FlashDeals returns up to limit resolved products, soonest-ending deals
// first. A non-positive limit uses the flash_deal_limit setting.
func (s *DealService) FlashDeals(ctx context.Context, limit int) ([]dealpricing.ResolvedDealProduct, error) {
	if limit <= 0 {
		limit = s.settings.FlashDealLimit(ctx)
	}
	if limit > MaxFlashDealLimit {
		limit = MaxFlashDealLimit
	}
	opts := s.options(ctx)

	if s.cache != nil {
		products, err := s.cache.GetFlash(ctx, limit, opts.AllowBackorders)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Warn().Err(err).Msg("flash deal cache read failed")
		}
	}

	key := fmt.Sprintf("flash:%d:%t", limit, opts.AllowBackorders)
	v, err, _ := s.sf.Do(key, func() (any, error) {
		return s.computeFlash(ctx, limit, opts)
	})
	if err != nil {
		return nil, err
	}
	return v.([]dealpricing.ResolvedDealProduct), nil
}

// RefreshFlash recomputes the default flash carousel and stores it,
// bypassing any cached copy.
func (s *DealService) RefreshFlash(ctx context.Context) (int, error) {
	limit := s.settings.FlashDealLimit(ctx)
	products, err := s.computeFlash(ctx, limit, s.options(ctx))
	if err != nil {
		return 0, err
	}
	return len(products), nil
}

// GetDealProduct resolves one deal product for the product-detail page.
// Rows that are missing, belong to an inactive deal or cannot be displayed
// all report utils.ErrDealProductNotFound.
func (s *DealService) GetDealProduct(ctx context.Context, id string) (*dealpricing.ResolvedDealProduct, error) {
	row, err := s.dealProducts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	deal, err := s.deals.GetByID(ctx, row.DealID)
	if err != nil {
		if errors.Is(err, utils.ErrDealNotFound) {
			return nil, utils.ErrDealProductNotFound
		}
		return nil, err
	}
	if !deal.IsActiveAt(s.clock.Now()) {
		return nil, utils.ErrDealProductNotFound
	}

	resolved := s.resolver.Resolve(deal, row, s.options(ctx))
	if resolved == nil {
		s.record("product_detail", dealpricing.Outcome{Dropped: 1})
		log.Debug().Str("deal_product_id", id).Msg("deal product has neither product nor name")
		return nil, utils.ErrDealProductNotFound
	}
	s.record("product_detail", dealpricing.Outcome{Resolved: 1})
	return resolved, nil
}

// InvalidateCache drops cached deal listings.
func (s *DealService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate deal cache")
	}
}

func (s *DealService) computeFlash(ctx context.Context, limit int, opts dealpricing.Options) ([]dealpricing.ResolvedDealProduct, error) {
	deals, rows, err := s.loadActive(ctx)
	if err != nil {
		return nil, err
	}
	products, outcome := s.resolver.Flash(deals, rows, limit, opts)
	s.record("flash", outcome)

	if s.cache != nil {
		if err := s.cache.SetFlash(ctx, limit, opts.AllowBackorders, products); err != nil {
			log.Warn().Err(err).Msg("failed to cache flash deals")
		}
	}
	return products, nil
}

func (s *DealService) loadActive(ctx context.Context) ([]models.Deal, []models.DealProduct, error) {
	now := s.clock.Now()
	deals, err := s.deals.GetActive(ctx, now)
	if err != nil {
		return nil, nil, fmt.Errorf("load active deals: %w", err)
	}
	if len(deals) == 0 {
		return deals, nil, nil
	}
	rows, err := s.dealProducts.GetActive(ctx, now)
	if err != nil {
		return nil, nil, fmt.Errorf("load active deal products: %w", err)
	}
	return deals, rows, nil
}

func (s *DealService) options(ctx context.Context) dealpricing.Options {
	return dealpricing.Options{AllowBackorders: s.settings.AllowBackorders(ctx)}
}

func (s *DealService) record(source string, o dealpricing.Outcome) {
	metrics.RecordResolution(source, o.Resolved, o.Dropped)
	if o.Dropped > 0 {
		log.Debug().Str("source", source).Int("dropped", o.Dropped).Msg("skipped unusable deal products")
	}
}
