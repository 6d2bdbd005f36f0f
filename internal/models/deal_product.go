package models

import (
	"time"

	"github.com/lib/pq"
)

// DealProduct links a deal to a catalog product or describes a standalone
// deal-only product. Price, stock and discount columns are kept loosely typed
// because admins and the database hand them over as numbers or numeric text.
type DealProduct struct {
	ID                    string         `db:"id" json:"id"`
	DealID                string         `db:"deal_id" json:"deal_id"`
	ProductID             *string        `db:"product_id" json:"product_id"`
	ProductName           *string        `db:"product_name" json:"product_name,omitempty"`
	ProductDescription    *string        `db:"product_description" json:"product_description,omitempty"`
	ProductImageURL       *string        `db:"product_image_url" json:"product_image_url,omitempty"`
	ProductImages         pq.StringArray `db:"product_images" json:"product_images,omitempty"`
	ProductKeyFeatures    any            `db:"product_key_features" json:"product_key_features,omitempty"`
	ProductSpecifications any            `db:"product_specifications" json:"product_specifications,omitempty"`
	OriginalPrice         any            `db:"original_price" json:"original_price,omitempty"`
	DealPrice             any            `db:"deal_price" json:"deal_price,omitempty"`
	DiscountPercentage    any            `db:"discount_percentage" json:"discount_percentage,omitempty"`
	StockQuantity         any            `db:"stock_quantity" json:"stock_quantity,omitempty"`
	OriginalStock         any            `db:"original_stock" json:"original_stock,omitempty"`
	SortOrder             int            `db:"sort_order" json:"sort_order"`
	CreatedAt             *time.Time     `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt             *time.Time     `db:"updated_at" json:"updated_at,omitempty"`

	// Product is the embedded catalog row, loaded separately when ProductID is set.
	Product *Product `db:"-" json:"product,omitempty"`
}

// NormalizeScanned converts driver byte slices (NUMERIC, JSONB, TEXT scanned
// into interface fields) into strings so the row serializes as text.
func (dp *DealProduct) NormalizeScanned() {
	for _, f := range []*any{
		&dp.ProductKeyFeatures,
		&dp.ProductSpecifications,
		&dp.OriginalPrice,
		&dp.DealPrice,
		&dp.DiscountPercentage,
		&dp.StockQuantity,
		&dp.OriginalStock,
	} {
		if b, ok := (*f).([]byte); ok {
			*f = string(b)
		}
	}
}
