package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventech/ventech_api/internal/dealpricing"
	"github.com/ventech/ventech_api/internal/models"
)

func newTestRedis(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisClientFromClient(client), mr
}

func TestRedisClient_GetMissing(t *testing.T) {
	rc, _ := newTestRedis(t)

	_, err := rc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisClient_DeleteByPattern(t *testing.T) {
	rc, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, rc.Set(ctx, "deals:a", "1", time.Minute))
	require.NoError(t, rc.Set(ctx, "deals:b", "2", time.Minute))
	require.NoError(t, rc.Set(ctx, "other", "3", time.Minute))

	n, err := rc.DeleteByPattern(ctx, "deals:*")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, mr.Exists("other"))
	assert.False(t, mr.Exists("deals:a"))
}

func TestDealCache_FlashRoundTrip(t *testing.T) {
	rc, mr := newTestRedis(t)
	dc := NewDealCache(rc, time.Minute, time.Minute)
	ctx := context.Background()

	_, err := dc.GetFlash(ctx, 8, false)
	require.ErrorIs(t, err, ErrCacheMiss)

	products := []dealpricing.ResolvedDealProduct{{
		Product:   models.Product{ID: "p1", Name: "Phone", Slug: "phone"},
		DealPrice: 199.99,
		DealID:    "d1",
	}}
	require.NoError(t, dc.SetFlash(ctx, 8, false, products))

	got, err := dc.GetFlash(ctx, 8, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, 199.99, got[0].DealPrice)

	// keys are separated by backorder setting
	_, err = dc.GetFlash(ctx, 8, true)
	assert.ErrorIs(t, err, ErrCacheMiss)

	mr.FastForward(2 * time.Minute)
	_, err = dc.GetFlash(ctx, 8, false)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestDealCache_Invalidate(t *testing.T) {
	rc, _ := newTestRedis(t)
	dc := NewDealCache(rc, time.Minute, time.Minute)
	ctx := context.Background()

	require.NoError(t, dc.SetActive(ctx, false, []dealpricing.DealGroup{{Deal: models.Deal{ID: "d1"}}}))
	require.NoError(t, dc.SetFlash(ctx, 4, false, nil))

	require.NoError(t, dc.Invalidate(ctx))

	_, err := dc.GetActive(ctx, false)
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = dc.GetFlash(ctx, 4, false)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestDealCache_ZeroTTLDisablesWrites(t *testing.T) {
	rc, _ := newTestRedis(t)
	dc := NewDealCache(rc, 0, 0)
	ctx := context.Background()

	require.NoError(t, dc.SetFlash(ctx, 8, false, []dealpricing.ResolvedDealProduct{{DealPrice: 1}}))
	_, err := dc.GetFlash(ctx, 8, false)
	assert.ErrorIs(t, err, ErrCacheMiss)
}
