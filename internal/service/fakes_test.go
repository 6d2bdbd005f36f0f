package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/ventech/ventech_api/internal/cache"
	"github.com/ventech/ventech_api/internal/dealpricing"
	"github.com/ventech/ventech_api/internal/models"
	"github.com/ventech/ventech_api/internal/utils"
)

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func activeDeal(id string, pct int, endsIn time.Duration) models.Deal {
	return models.Deal{
		ID:                 id,
		Title:              "Deal " + id,
		DiscountPercentage: pct,
		StartDate:          fixedNow.Add(-time.Hour),
		EndDate:            fixedNow.Add(endsIn),
		IsActive:           true,
	}
}

func standaloneRow(id, dealID, name, original, price string) models.DealProduct {
	return models.DealProduct{
		ID:            id,
		DealID:        dealID,
		ProductName:   strPtr(name),
		OriginalPrice: original,
		DealPrice:     price,
	}
}

type fakeDealStore struct {
	deals   []models.Deal
	calls   int
	err     error
	updated []*models.Deal
	created []*models.Deal
	deleted []string
}

func (f *fakeDealStore) GetActive(_ context.Context, now time.Time) ([]models.Deal, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Deal
	for _, d := range f.deals {
		if d.IsActiveAt(now) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDealStore) GetByID(_ context.Context, id string) (*models.Deal, error) {
	for i := range f.deals {
		if f.deals[i].ID == id {
			d := f.deals[i]
			return &d, nil
		}
	}
	return nil, utils.ErrDealNotFound
}

func (f *fakeDealStore) List(_ context.Context, page, limit int) ([]models.Deal, int, error) {
	return f.deals, len(f.deals), nil
}

func (f *fakeDealStore) Create(_ context.Context, d *models.Deal) error {
	d.ID = "new-deal"
	f.created = append(f.created, d)
	return nil
}

func (f *fakeDealStore) Update(_ context.Context, d *models.Deal) error {
	f.updated = append(f.updated, d)
	return nil
}

func (f *fakeDealStore) Delete(_ context.Context, id string) error {
	for _, d := range f.deals {
		if d.ID == id {
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return utils.ErrDealNotFound
}

type fakeDealProductStore struct {
	rows    []models.DealProduct
	created []*models.DealProduct
	updated []*models.DealProduct
}

func (f *fakeDealProductStore) GetActive(_ context.Context, _ time.Time) ([]models.DealProduct, error) {
	return f.rows, nil
}

func (f *fakeDealProductStore) GetByID(_ context.Context, id string) (*models.DealProduct, error) {
	for i := range f.rows {
		if f.rows[i].ID == id {
			r := f.rows[i]
			return &r, nil
		}
	}
	return nil, utils.ErrDealProductNotFound
}

func (f *fakeDealProductStore) GetByDealID(_ context.Context, dealID string) ([]models.DealProduct, error) {
	var out []models.DealProduct
	for _, r := range f.rows {
		if r.DealID == dealID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeDealProductStore) Create(_ context.Context, dp *models.DealProduct) error {
	dp.ID = "new-dp"
	f.created = append(f.created, dp)
	return nil
}

func (f *fakeDealProductStore) Update(_ context.Context, dp *models.DealProduct) error {
	f.updated = append(f.updated, dp)
	return nil
}

func (f *fakeDealProductStore) Delete(_ context.Context, id string) error {
	if _, err := f.GetByID(context.Background(), id); err != nil {
		return err
	}
	return nil
}

type fakeSettings struct {
	backorders bool
	limit      int
}

func (f fakeSettings) AllowBackorders(context.Context) bool { return f.backorders }

func (f fakeSettings) FlashDealLimit(context.Context) int {
	if f.limit == 0 {
		return DefaultFlashDealLimit
	}
	return f.limit
}

type memoryDealCache struct {
	mu          sync.Mutex
	flash       map[string][]dealpricing.ResolvedDealProduct
	active      map[bool][]dealpricing.DealGroup
	invalidated int
}

func newMemoryDealCache() *memoryDealCache {
	return &memoryDealCache{
		flash:  map[string][]dealpricing.ResolvedDealProduct{},
		active: map[bool][]dealpricing.DealGroup{},
	}
}

func flashKey(limit int, backorders bool) string {
	return fmt.Sprintf("%d:%t", limit, backorders)
}

func (c *memoryDealCache) GetFlash(_ context.Context, limit int, backorders bool) ([]dealpricing.ResolvedDealProduct, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.flash[flashKey(limit, backorders)]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return v, nil
}

func (c *memoryDealCache) SetFlash(_ context.Context, limit int, backorders bool, products []dealpricing.ResolvedDealProduct) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flash[flashKey(limit, backorders)] = products
	return nil
}

func (c *memoryDealCache) GetActive(_ context.Context, backorders bool) ([]dealpricing.DealGroup, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.active[backorders]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return v, nil
}

func (c *memoryDealCache) SetActive(_ context.Context, backorders bool, groups []dealpricing.DealGroup) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active[backorders] = groups
	return nil
}

func (c *memoryDealCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	c.flash = map[string][]dealpricing.ResolvedDealProduct{}
	c.active = map[bool][]dealpricing.DealGroup{}
	return nil
}

type fakeSettingStore struct {
	values map[string]models.Setting
	err    error
}

func newFakeSettingStore(kv map[string]string) *fakeSettingStore {
	s := &fakeSettingStore{values: map[string]models.Setting{}}
	for k, v := range kv {
		s.values[k] = models.Setting{Key: k, Value: v, IsPublic: k != models.SettingSupportEmail}
	}
	return s
}

func (f *fakeSettingStore) Get(_ context.Context, key string) (*models.Setting, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.values[key]
	if !ok {
		return nil, utils.ErrSettingNotFound
	}
	return &s, nil
}

func (f *fakeSettingStore) List(_ context.Context, publicOnly bool) ([]models.Setting, error) {
	var out []models.Setting
	for _, s := range f.values {
		if publicOnly && !s.IsPublic {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSettingStore) Upsert(_ context.Context, s *models.Setting) error {
	f.values[s.Key] = *s
	return nil
}

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}
