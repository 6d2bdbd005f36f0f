package dealpricing

import (
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventech/ventech_api/internal/models"
	"github.com/ventech/ventech_api/internal/pkg/clock"
)

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func testDeal(pct int) *models.Deal {
	return &models.Deal{
		ID:                 "deal-1",
		Title:              "Spring Sale",
		DiscountPercentage: pct,
		StartDate:          fixedNow.Add(-24 * time.Hour),
		EndDate:            fixedNow.Add(48 * time.Hour),
		IsActive:           true,
	}
}

func strPtr(s string) *string { return &s }

func newTestResolver() *Resolver {
	return NewResolver(clock.NewFake(fixedNow), "")
}

func TestResolve_UnusableRow(t *testing.T) {
	r := newTestResolver()

	assert.Nil(t, r.Resolve(testDeal(10), &models.DealProduct{ID: "x"}, Options{}))
	assert.Nil(t, r.Resolve(testDeal(10), &models.DealProduct{ID: "x", ProductName: strPtr("   ")}, Options{}))
	assert.Nil(t, r.Resolve(testDeal(10), nil, Options{}))
	assert.Nil(t, r.Resolve(nil, &models.DealProduct{ID: "x", ProductName: strPtr("Kit")}, Options{}))
}

func TestResolve_Attached(t *testing.T) {
	r := newTestResolver()
	row := &models.DealProduct{
		ID:        "dp-1",
		DealID:    "deal-1",
		ProductID: strPtr("p-1"),
		DealPrice: "750",
		Product: &models.Product{
			ID:             "p-1",
			Name:           "Laptop Pro",
			Slug:           "laptop-pro",
			Price:          "1000",
			StockQuantity:  "4",
			Thumbnail:      strPtr("thumb.jpg"),
			Images:         pq.StringArray{"a.jpg", "thumb.jpg"},
			Specifications: `{"ram":"16GB"}`,
		},
	}

	got := r.Resolve(testDeal(50), row, Options{})
	require.NotNil(t, got)

	assert.Equal(t, 750.0, got.DealPrice)
	assert.Equal(t, 25, got.DealDiscount)
	assert.Equal(t, 1000.0, got.OriginalPrice)
	assert.Equal(t, 750.0, got.DiscountPrice)
	assert.Equal(t, 4, got.StockQuantity)
	assert.True(t, got.InStock)
	assert.True(t, got.Purchasable)
	assert.Equal(t, []string{"thumb.jpg", "a.jpg"}, []string(got.Images))
	require.NotNil(t, got.Thumbnail)
	assert.Equal(t, "thumb.jpg", *got.Thumbnail)
	assert.Equal(t, "p-1", got.BaseProductID)
	assert.Equal(t, "laptop-pro", got.Slug)
	assert.Equal(t, &models.PriceRange{Min: 750, Max: 1000}, got.PriceRange)
	assert.Equal(t, map[string]any{"ram": "16GB"}, got.Specs)
	assert.Equal(t, "deal-1", got.DealID)
	assert.False(t, got.StockIsPlaceholder)

	// the embedded catalog product is left untouched
	assert.Equal(t, "1000", row.Product.Price)
	assert.Equal(t, "4", row.Product.StockQuantity)
}

func TestResolve_AttachedKeepsVariantRange(t *testing.T) {
	r := newTestResolver()
	rng := &models.PriceRange{Min: 800, Max: 1200, HasRange: true}
	row := &models.DealProduct{
		ID:        "dp-2",
		ProductID: strPtr("p-2"),
		Product:   &models.Product{ID: "p-2", Price: 1000, PriceRange: rng},
	}

	got := r.Resolve(testDeal(10), row, Options{})
	require.NotNil(t, got)

	assert.Equal(t, 900.0, got.DealPrice)
	assert.Same(t, rng, got.PriceRange)
	assert.Equal(t, 0, got.StockQuantity)
	assert.False(t, got.InStock)
	assert.False(t, got.Purchasable)
	assert.Equal(t, []string{PlaceholderImage}, []string(got.Images))
}

func TestResolve_AttachedFallsBackToCatalogDiscountPrice(t *testing.T) {
	r := newTestResolver()
	row := &models.DealProduct{
		ID:      "dp-3",
		Product: &models.Product{ID: "p-3", OriginalPrice: 500.0, DiscountPrice: "450", InStock: true},
	}

	got := r.Resolve(testDeal(0), row, Options{})
	require.NotNil(t, got)

	assert.Equal(t, 450.0, got.DealPrice)
	assert.Equal(t, 10, got.DealDiscount)
	assert.True(t, got.InStock)
}

func TestResolve_StandaloneStockPlaceholder(t *testing.T) {
	r := newTestResolver()
	row := &models.DealProduct{
		ID:                 "dp-9",
		DealID:             "deal-1",
		ProductName:        strPtr("Gaming Bundle"),
		ProductDescription: strPtr("Mouse and keyboard"),
		ProductImageURL:    strPtr("bundle.png"),
		ProductImages:      pq.StringArray{"bundle.png", "side.png"},
		ProductKeyFeatures: "RGB, Wireless",
		OriginalPrice:      "200",
		DiscountPercentage: "15",
	}

	got := r.Resolve(testDeal(30), row, Options{})
	require.NotNil(t, got)

	assert.Equal(t, 170.0, got.DealPrice)
	assert.Equal(t, 15, got.DealDiscount)
	assert.Equal(t, UnlimitedStock, got.StockQuantity)
	assert.True(t, got.InStock)
	assert.True(t, got.StockIsPlaceholder)
	assert.Equal(t, "deal-dp-9", got.Slug)
	assert.Equal(t, "dp-9", got.ID)
	assert.Equal(t, "dp-9", got.BaseProductID)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, StandaloneCategoryID, *got.CategoryID)
	require.NotNil(t, got.Brand)
	assert.Equal(t, StandaloneBrand, *got.Brand)
	assert.Equal(t, []string{"RGB", "Wireless"}, []string(got.KeyFeatures))
	assert.Equal(t, []string{"bundle.png", "side.png"}, []string(got.Images))
	assert.Equal(t, map[string]any{}, got.Specs)
	assert.Equal(t, fixedNow, got.CreatedAt)
	assert.Equal(t, &models.PriceRange{Min: 170, Max: 200}, got.PriceRange)
}

func TestResolve_StandaloneStock(t *testing.T) {
	r := newTestResolver()
	created := fixedNow.Add(-time.Hour)

	t.Run("explicit stock wins", func(t *testing.T) {
		got := r.Resolve(testDeal(0), &models.DealProduct{
			ID: "a", ProductName: strPtr("A"), OriginalPrice: 10, StockQuantity: "3", OriginalStock: "9",
			CreatedAt: &created,
		}, Options{})
		require.NotNil(t, got)
		assert.Equal(t, 3, got.StockQuantity)
		assert.False(t, got.StockIsPlaceholder)
		assert.Equal(t, created, got.CreatedAt)
	})

	t.Run("original stock fallback", func(t *testing.T) {
		got := r.Resolve(testDeal(0), &models.DealProduct{
			ID: "b", ProductName: strPtr("B"), OriginalPrice: 10, OriginalStock: 9,
		}, Options{})
		require.NotNil(t, got)
		assert.Equal(t, 9, got.StockQuantity)
	})

	t.Run("unpriced item has no stock", func(t *testing.T) {
		got := r.Resolve(testDeal(0), &models.DealProduct{ID: "c", ProductName: strPtr("C")}, Options{})
		require.NotNil(t, got)
		assert.Equal(t, 0, got.StockQuantity)
		assert.False(t, got.InStock)
		assert.False(t, got.Purchasable)
	})

	t.Run("backorders make out of stock purchasable", func(t *testing.T) {
		got := r.Resolve(testDeal(0), &models.DealProduct{ID: "d", ProductName: strPtr("D"), StockQuantity: 0}, Options{AllowBackorders: true})
		require.NotNil(t, got)
		assert.False(t, got.InStock)
		assert.True(t, got.Purchasable)
	})

	t.Run("catalog backed standalone is in stock", func(t *testing.T) {
		got := r.Resolve(testDeal(0), &models.DealProduct{
			ID: "e", ProductID: strPtr("p-7"), ProductName: strPtr("E"), StockQuantity: "0",
		}, Options{})
		require.NotNil(t, got)
		assert.True(t, got.InStock)
		assert.Equal(t, "p-7", got.BaseProductID)
	})
}

func TestResolve_Idempotent(t *testing.T) {
	r := newTestResolver()
	deal := testDeal(20)
	row := &models.DealProduct{
		ID:                    "dp-5",
		ProductName:           strPtr("Headset"),
		ProductKeyFeatures:    `["ANC","40h battery"]`,
		ProductSpecifications: `{"driver":"40mm"}`,
		OriginalPrice:         "1,500.00",
	}

	first := r.Resolve(deal, row, Options{})
	second := r.Resolve(deal, row, Options{})
	require.NotNil(t, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1200.0, first.DealPrice)
}

func TestResolve_IdempotentForStoredRows(t *testing.T) {
	r := NewResolver(clock.System{}, "")
	created := fixedNow.Add(-time.Hour)
	row := &models.DealProduct{
		ID:          "dp-6",
		ProductName: strPtr("Desk Lamp"),
		DealPrice:   "250",
		CreatedAt:   &created,
	}

	first := r.Resolve(testDeal(10), row, Options{})
	time.Sleep(time.Millisecond)
	second := r.Resolve(testDeal(10), row, Options{})
	require.NotNil(t, first)
	assert.Equal(t, first, second)
	assert.Equal(t, created, first.CreatedAt)
	assert.Equal(t, created, first.UpdatedAt)
}

func TestResolve_NoOriginalPriceShowsDealPercentage(t *testing.T) {
	got := newTestResolver().Resolve(testDeal(25), &models.DealProduct{
		ID: "dp-7", ProductName: strPtr("Gift Box"), DealPrice: "500",
	}, Options{})
	require.NotNil(t, got)
	assert.Equal(t, 500.0, got.DealPrice)
	assert.Equal(t, 25, got.DealDiscount)
}

func TestResolve_EmptyProductIDIsStandalone(t *testing.T) {
	got := newTestResolver().Resolve(testDeal(0), &models.DealProduct{
		ID: "dp-8", ProductID: strPtr(""), ProductName: strPtr("Cable"), StockQuantity: "0",
	}, Options{})
	require.NotNil(t, got)
	assert.False(t, got.InStock)
	assert.Equal(t, "dp-8", got.BaseProductID)
}

func TestResolveAll_DropsUnusableRows(t *testing.T) {
	r := newTestResolver()
	rows := []models.DealProduct{
		{ID: "1", ProductName: strPtr("One"), OriginalPrice: 100},
		{ID: "2"},
		{ID: "3", Product: &models.Product{ID: "p3", Price: 50}},
	}

	got := r.ResolveAll(testDeal(10), rows, Options{})
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "p3", got[1].ID)
}

func TestClassify(t *testing.T) {
	_, ok := Classify(&models.DealProduct{Product: &models.Product{ID: "p"}}).(AttachedAssociation)
	assert.True(t, ok)

	s, ok := Classify(&models.DealProduct{ProductName: strPtr(" Kit ")}).(StandaloneAssociation)
	require.True(t, ok)
	assert.Equal(t, "Kit", s.Name)

	assert.Nil(t, Classify(&models.DealProduct{ProductID: strPtr("p")}))
}
