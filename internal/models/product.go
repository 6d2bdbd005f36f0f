package models

import (
	"time"

	"github.com/lib/pq"
)

// Product represents a catalog product as stored by the storefront.
// Price-like fields stay loosely typed; see DealProduct.
type Product struct {
	ID             string         `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	Slug           string         `db:"slug" json:"slug"`
	Description    string         `db:"description" json:"description"`
	Price          any            `db:"price" json:"price"`
	OriginalPrice  any            `db:"original_price" json:"original_price"`
	DiscountPrice  any            `db:"discount_price" json:"discount_price"`
	StockQuantity  any            `db:"stock_quantity" json:"stock_quantity"`
	InStock        bool           `db:"in_stock" json:"in_stock"`
	Thumbnail      *string        `db:"thumbnail" json:"thumbnail"`
	Images         pq.StringArray `db:"images" json:"images"`
	CategoryID     *string        `db:"category_id" json:"category_id"`
	Brand          *string        `db:"brand" json:"brand"`
	KeyFeatures    pq.StringArray `db:"key_features" json:"key_features"`
	Specifications any            `db:"specifications" json:"specifications"`
	IsActive       bool           `db:"is_active" json:"is_active"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`

	// Calculated from active variants (populated via subquery)
	MinVariantPrice *float64 `db:"min_variant_price" json:"-"`
	MaxVariantPrice *float64 `db:"max_variant_price" json:"-"`

	PriceRange *PriceRange `db:"-" json:"price_range,omitempty"`
}

// PriceRange is the min/max price shown on product cards.
type PriceRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	HasRange bool    `json:"hasRange"`
}

// NormalizeScanned converts driver byte slices into strings and derives
// PriceRange from the variant aggregates.
func (p *Product) NormalizeScanned() {
	for _, f := range []*any{&p.Price, &p.OriginalPrice, &p.DiscountPrice, &p.StockQuantity, &p.Specifications} {
		if b, ok := (*f).([]byte); ok {
			*f = string(b)
		}
	}
	if p.MinVariantPrice != nil && p.MaxVariantPrice != nil {
		p.PriceRange = &PriceRange{
			Min:      *p.MinVariantPrice,
			Max:      *p.MaxVariantPrice,
			HasRange: *p.MinVariantPrice != *p.MaxVariantPrice,
		}
	}
}
