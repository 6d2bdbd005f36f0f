package dealpricing

import (
	"time"

	"github.com/lib/pq"

	"github.com/ventech/ventech_api/internal/models"
	"github.com/ventech/ventech_api/internal/pkg/clock"
)

const (
	StandaloneCategoryID = "standalone"
	StandaloneBrand      = "VENTECH Deals"
	DealSlugPrefix       = "deal-"

	// UnlimitedStock is reported for priced standalone items that carry no
	// stock figure at all.
	UnlimitedStock = 999
)

// Options carries storefront settings that influence the output.
type Options struct {
	AllowBackorders bool
}

// ResolvedDealProduct is a product-shaped record ready for a product card.
// The embedded Product holds the display fields; OriginalPrice,
// DiscountPrice and StockQuantity are always numeric after resolution.
type ResolvedDealProduct struct {
	models.Product

	DealPrice          float64   `json:"deal_price"`
	DealDiscount       int       `json:"deal_discount"`
	BaseProductID      string    `json:"base_product_id"`
	Specs              any       `json:"specs"`
	DealID             string    `json:"deal_id"`
	DealTitle          string    `json:"deal_title"`
	DealEndsAt         time.Time `json:"deal_ends_at"`
	StockIsPlaceholder bool      `json:"stock_is_placeholder"`
	Purchasable        bool      `json:"purchasable"`
}

// Resolver applies deal pricing to deal product rows.
type Resolver struct {
	clock       clock.Clock
	placeholder string
}

// NewResolver builds a Resolver. A nil clock uses the system clock and an
// empty placeholder uses PlaceholderImage.
//
// The clock only supplies timestamps for standalone rows that carry no
// created_at/updated_at. Rows read from the database always have them, so
// resolving the same stored pair twice gives equal results under any clock;
// rows built in memory without timestamps need a fixed clock for that.
func NewResolver(c clock.Clock, placeholder string) *Resolver {
	if c == nil {
		c = clock.System{}
	}
	if placeholder == "" {
		placeholder = PlaceholderImage
	}
	return &Resolver{clock: c, placeholder: placeholder}
}

// Resolve returns nil for rows that cannot be shown.
func (r *Resolver) Resolve(deal *models.Deal, row *models.DealProduct, opts Options) *ResolvedDealProduct {
	if deal == nil {
		return nil
	}

	var out *ResolvedDealProduct
	switch a := Classify(row).(type) {
	case AttachedAssociation:
		out = r.resolveAttached(deal, a)
	case StandaloneAssociation:
		out = r.resolveStandalone(deal, a)
	default:
		return nil
	}

	out.DealID = deal.ID
	out.DealTitle = deal.Title
	out.DealEndsAt = deal.EndDate
	out.Purchasable = out.InStock || opts.AllowBackorders
	return out
}

// ResolveAll resolves every row and drops the unusable ones, keeping order.
func (r *Resolver) ResolveAll(deal *models.Deal, rows []models.DealProduct, opts Options) []ResolvedDealProduct {
	out := make([]ResolvedDealProduct, 0, len(rows))
	for i := range rows {
		if p := r.Resolve(deal, &rows[i], opts); p != nil {
			out = append(out, *p)
		}
	}
	return out
}

func (r *Resolver) resolveAttached(deal *models.Deal, a AttachedAssociation) *ResolvedDealProduct {
	row, product := a.DealProduct, *a.Product

	original := firstAmount(product.Price, product.OriginalPrice)
	fallback := original
	if dp := ParseAmount(product.DiscountPrice); dp != nil {
		fallback = *dp
	}

	overridePct := ParseInteger(row.DiscountPercentage)
	final := ResolveFinalPrice(original, ParseAmount(row.DealPrice), overridePct, deal.DiscountPercentage, fallback)

	stock := 0
	if n := ParseInteger(product.StockQuantity); n != nil {
		stock = *n
	}

	images := normalizeImages(deref(product.Thumbnail), product.Images, r.placeholder)

	if product.PriceRange == nil || !product.PriceRange.HasRange {
		product.PriceRange = flatRange(final, original)
	}
	product.OriginalPrice = original
	product.DiscountPrice = final
	product.StockQuantity = stock
	product.InStock = stock > 0 || product.InStock
	product.Thumbnail = &images[0]
	product.Images = pq.StringArray(images)

	return &ResolvedDealProduct{
		Product:       product,
		DealPrice:     final,
		DealDiscount:  resolveDiscount(overridePct, original, final, deal.DiscountPercentage),
		BaseProductID: product.ID,
		Specs:         ParseSpecifications(product.Specifications),
	}
}

func (r *Resolver) resolveStandalone(deal *models.Deal, s StandaloneAssociation) *ResolvedDealProduct {
	row := s.DealProduct

	original := firstAmount(row.OriginalPrice)
	overridePct := ParseInteger(row.DiscountPercentage)
	final := ResolveFinalPrice(original, ParseAmount(row.DealPrice), overridePct, deal.DiscountPercentage, original)

	images := normalizeImages(deref(row.ProductImageURL), row.ProductImages, r.placeholder)

	placeholderStock := false
	stock := ParseInteger(row.StockQuantity)
	if stock == nil {
		stock = ParseInteger(row.OriginalStock)
	}
	if stock == nil {
		n := 0
		if final > 0 {
			n = UnlimitedStock
			placeholderStock = true
		}
		stock = &n
	}

	created := r.clock.Now()
	if row.CreatedAt != nil {
		created = *row.CreatedAt
	}
	updated := created
	if row.UpdatedAt != nil {
		updated = *row.UpdatedAt
	}

	catalogBacked := row.ProductID != nil && *row.ProductID != ""
	baseID := row.ID
	if catalogBacked {
		baseID = *row.ProductID
	}

	category, brand := StandaloneCategoryID, StandaloneBrand
	specs := ParseSpecifications(row.ProductSpecifications)

	product := models.Product{
		ID:             row.ID,
		Name:           s.Name,
		Slug:           DealSlugPrefix + row.ID,
		Description:    deref(row.ProductDescription),
		Price:          original,
		OriginalPrice:  original,
		DiscountPrice:  final,
		StockQuantity:  *stock,
		InStock:        *stock > 0 || catalogBacked,
		Thumbnail:      &images[0],
		Images:         pq.StringArray(images),
		CategoryID:     &category,
		Brand:          &brand,
		KeyFeatures:    pq.StringArray(ParseKeyFeatures(row.ProductKeyFeatures)),
		Specifications: specs,
		IsActive:       true,
		CreatedAt:      created,
		UpdatedAt:      updated,
		PriceRange:     flatRange(final, original),
	}

	return &ResolvedDealProduct{
		Product:            product,
		DealPrice:          final,
		DealDiscount:       resolveDiscount(overridePct, original, final, deal.DiscountPercentage),
		BaseProductID:      baseID,
		Specs:              specs,
		StockIsPlaceholder: placeholderStock,
	}
}

func flatRange(final, original float64) *models.PriceRange {
	hi := original
	if hi == 0 {
		hi = final
	}
	return &models.PriceRange{Min: final, Max: hi, HasRange: false}
}

func firstAmount(values ...any) float64 {
	for _, v := range values {
		if f := ParseAmount(v); f != nil {
			return *f
		}
	}
	return 0
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
