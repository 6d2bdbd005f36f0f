package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ventech/ventech_api/internal/dealpricing"
	"github.com/ventech/ventech_api/internal/metrics"
)

const dealKeyPrefix = "deals:"

// DealCache stores resolved deal listings as JSON.
type DealCache struct {
	redis    *RedisClient
	flashTTL time.Duration
	dealsTTL time.Duration
}

// NewDealCache creates a new DealCache.
func NewDealCache(redis *RedisClient, flashTTL, dealsTTL time.Duration) *DealCache {
	return &DealCache{redis: redis, flashTTL: flashTTL, dealsTTL: dealsTTL}
}

func (c *DealCache) keyFlash(limit int, backorders bool) string {
	return fmt.Sprintf("%sflash:%d:%t", dealKeyPrefix, limit, backorders)
}

func (c *DealCache) keyActive(backorders bool) string {
	return fmt.Sprintf("%sactive:%t", dealKeyPrefix, backorders)
}

// GetFlash returns the cached flash-deal list or ErrCacheMiss.
func (c *DealCache) GetFlash(ctx context.Context, limit int, backorders bool) ([]dealpricing.ResolvedDealProduct, error) {
	var out []dealpricing.ResolvedDealProduct
	if err := c.get(ctx, "flash", c.keyFlash(limit, backorders), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetFlash stores the flash-deal list.
func (c *DealCache) SetFlash(ctx context.Context, limit int, backorders bool, products []dealpricing.ResolvedDealProduct) error {
	return c.set(ctx, c.keyFlash(limit, backorders), products, c.flashTTL)
}

// GetActive returns the cached deals page or ErrCacheMiss.
func (c *DealCache) GetActive(ctx context.Context, backorders bool) ([]dealpricing.DealGroup, error) {
	var out []dealpricing.DealGroup
	if err := c.get(ctx, "active", c.keyActive(backorders), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetActive stores the deals page.
func (c *DealCache) SetActive(ctx context.Context, backorders bool, groups []dealpricing.DealGroup) error {
	return c.set(ctx, c.keyActive(backorders), groups, c.dealsTTL)
}

// Invalidate drops every cached deal listing. Called after admin writes and
// when deals expire.
func (c *DealCache) Invalidate(ctx context.Context) error {
	_, err := c.redis.DeleteByPattern(ctx, dealKeyPrefix+"*")
	return err
}

func (c *DealCache) get(ctx context.Context, name, key string, dst any) error {
	raw, err := c.redis.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			metrics.RecordCacheLookup(name, "miss")
			return ErrCacheMiss
		}
		metrics.RecordCacheLookup(name, "error")
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		metrics.RecordCacheLookup(name, "error")
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	metrics.RecordCacheLookup(name, "hit")
	return nil
}

func (c *DealCache) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return c.redis.Set(ctx, key, string(data), ttl)
}
