package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ventech/ventech_api/internal/models"
	"github.com/ventech/ventech_api/internal/utils"
)

// productSelect reads catalog products together with the min/max price of
// their active variants.
const productSelect = `
	SELECT p.id, p.name, p.slug, p.description, p.price, p.original_price, p.discount_price,
		p.stock_quantity, p.in_stock, p.thumbnail, p.images, p.category_id, p.brand,
		p.key_features, p.specifications, p.is_active, p.created_at, p.updated_at,
		v.min_price AS min_variant_price, v.max_price AS max_variant_price
	FROM products p
	LEFT JOIN (
		SELECT product_id, MIN(price) AS min_price, MAX(price) AS max_price
		FROM product_variants
		WHERE is_active = true
		GROUP BY product_id
	) v ON v.product_id = p.id`

// ProductRepository handles data access for catalog products.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetBySlug returns an active product by slug.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	q := productSelect + ` WHERE p.slug = $1 AND p.is_active = true LIMIT 1`

	var p models.Product
	if err := r.db.GetContext(ctx, &p, q, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product %q: %w", slug, err)
	}
	p.NormalizeScanned()
	return &p, nil
}

// GetByIDs returns products keyed by id. Missing ids are simply absent.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.Product, error) {
	return selectProductsByIDs(ctx, r.db, ids)
}

// Exists reports whether a product with the given id exists.
func (r *ProductRepository) Exists(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	var ok bool
	err := r.db.GetContext(ctx, &ok, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, id)
	return ok, err
}

func selectProductsByIDs(ctx context.Context, db sqlx.QueryerContext, ids []string) (map[string]*models.Product, error) {
	out := make(map[string]*models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	q := productSelect + ` WHERE p.id = ANY($1)`
	var products []models.Product
	if err := sqlx.SelectContext(ctx, db, &products, q, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	for i := range products {
		products[i].NormalizeScanned()
		out[products[i].ID] = &products[i]
	}
	return out, nil
}
