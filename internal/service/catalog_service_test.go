package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventech/ventech_api/internal/dealpricing"
	"github.com/ventech/ventech_api/internal/models"
	"github.com/ventech/ventech_api/internal/pkg/clock"
	"github.com/ventech/ventech_api/internal/utils"
)

type fakeProductStore map[string]*models.Product

func (f fakeProductStore) GetBySlug(_ context.Context, slug string) (*models.Product, error) {
	p, ok := f[slug]
	if !ok {
		return nil, utils.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (f fakeProductStore) Exists(_ context.Context, id string) (bool, error) {
	for _, p := range f {
		if p.ID == id {
			return true, nil
		}
	}
	return false, nil
}

const (
	plugRowID    = "5f0c6a8e-2b1d-4f7a-9c3e-7d4b2a1e6f90"
	unknownRowID = "9a3e1c7b-6d2f-4e8a-b5c4-1f0e9d8c7b6a"
)

func TestCatalogService_GetProductBySlug(t *testing.T) {
	clk := clock.NewFake(fixedNow)
	deals := NewDealService(
		&fakeDealStore{deals: []models.Deal{activeDeal("d1", 25, time.Hour)}},
		&fakeDealProductStore{rows: []models.DealProduct{standaloneRow(plugRowID, "d1", "Smart Plug", "40", "")}},
		fakeSettings{}, nil, dealpricing.NewResolver(clk, ""), clk,
	)
	products := fakeProductStore{
		"laptop":           {ID: "p1", Slug: "laptop", Name: "Laptop", Specifications: []byte(`{"cpu":"M3"}`)},
		"deal-summer-lamp": {ID: "p2", Slug: "deal-summer-lamp", Name: "Summer Lamp"},
	}
	svc := NewCatalogService(products, deals)

	t.Run("catalog product", func(t *testing.T) {
		detail, err := svc.GetProductBySlug(context.Background(), "laptop")
		require.NoError(t, err)
		assert.False(t, detail.IsDeal)
		require.NotNil(t, detail.Product)
		assert.Equal(t, map[string]any{"cpu": "M3"}, detail.Product.Specifications)
	})

	t.Run("deal fallback", func(t *testing.T) {
		detail, err := svc.GetProductBySlug(context.Background(), "deal-"+plugRowID)
		require.NoError(t, err)
		assert.True(t, detail.IsDeal)
		require.NotNil(t, detail.Deal)
		assert.Equal(t, "Smart Plug", detail.Deal.Name)
		assert.Equal(t, 30.0, detail.Deal.DealPrice)
		assert.Equal(t, dealpricing.StandaloneBrand, *detail.Deal.Brand)
	})

	t.Run("unknown deal product", func(t *testing.T) {
		_, err := svc.GetProductBySlug(context.Background(), "deal-"+unknownRowID)
		assert.ErrorIs(t, err, utils.ErrDealProductNotFound)
	})

	t.Run("non uuid deal slug is a catalog slug", func(t *testing.T) {
		detail, err := svc.GetProductBySlug(context.Background(), "deal-summer-lamp")
		require.NoError(t, err)
		assert.False(t, detail.IsDeal)
		assert.Equal(t, "Summer Lamp", detail.Product.Name)

		_, err = svc.GetProductBySlug(context.Background(), "deal-nope")
		assert.ErrorIs(t, err, utils.ErrProductNotFound)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := svc.GetProductBySlug(context.Background(), "phone")
		assert.ErrorIs(t, err, utils.ErrProductNotFound)
	})

	t.Run("bare prefix is a catalog slug", func(t *testing.T) {
		_, err := svc.GetProductBySlug(context.Background(), "deal-")
		assert.ErrorIs(t, err, utils.ErrProductNotFound)
	})
}
