package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ventech/ventech_api/internal/models"
	"github.com/ventech/ventech_api/internal/utils"
)

const dealProductColumns = `dp.id, dp.deal_id, dp.product_id, dp.product_name, dp.product_description,
	dp.product_image_url, dp.product_images, dp.product_key_features, dp.product_specifications,
	dp.original_price, dp.deal_price, dp.discount_percentage, dp.stock_quantity, dp.original_stock,
	dp.sort_order, dp.created_at, dp.updated_at`

// DealProductRepository handles data access for deal product rows. Reads
// attach the referenced catalog product when there is one.
type DealProductRepository struct {
	db *sqlx.DB
}

// NewDealProductRepository creates a new DealProductRepository.
func NewDealProductRepository(db *sqlx.DB) *DealProductRepository {
	return &DealProductRepository{db: db}
}

// GetActive returns the rows of every deal active at now, ordered like the
// deals themselves and then by sort order.
func (r *DealProductRepository) GetActive(ctx context.Context, now time.Time) ([]models.DealProduct, error) {
	q := `SELECT ` + dealProductColumns + `
		FROM deal_products dp
		JOIN deals d ON d.id = dp.deal_id
		WHERE d.is_active = true AND d.start_date <= $1 AND d.end_date >= $1
		ORDER BY d.end_date ASC, dp.sort_order ASC, dp.created_at ASC`

	var rows []models.DealProduct
	if err := r.db.SelectContext(ctx, &rows, q, now); err != nil {
		return nil, fmt.Errorf("select active deal products: %w", err)
	}
	if err := r.attachProducts(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByDealID returns all rows of a deal for the back office.
func (r *DealProductRepository) GetByDealID(ctx context.Context, dealID string) ([]models.DealProduct, error) {
	q := `SELECT ` + dealProductColumns + ` FROM deal_products dp
		WHERE dp.deal_id = $1 ORDER BY dp.sort_order ASC, dp.created_at ASC`

	var rows []models.DealProduct
	if err := r.db.SelectContext(ctx, &rows, q, dealID); err != nil {
		return nil, fmt.Errorf("select deal products of %s: %w", dealID, err)
	}
	if err := r.attachProducts(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByID returns a single row with its catalog product attached.
func (r *DealProductRepository) GetByID(ctx context.Context, id string) (*models.DealProduct, error) {
	if !validID(id) {
		return nil, utils.ErrDealProductNotFound
	}
	q := `SELECT ` + dealProductColumns + ` FROM deal_products dp WHERE dp.id = $1`

	var row models.DealProduct
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidText(err) {
			return nil, utils.ErrDealProductNotFound
		}
		return nil, fmt.Errorf("get deal product %s: %w", id, err)
	}

	rows := []models.DealProduct{row}
	if err := r.attachProducts(ctx, rows); err != nil {
		return nil, err
	}
	return &rows[0], nil
}

// Create inserts a row and fills its generated fields.
func (r *DealProductRepository) Create(ctx context.Context, dp *models.DealProduct) error {
	const q = `
		INSERT INTO deal_products (deal_id, product_id, product_name, product_description, product_image_url,
			product_images, product_key_features, product_specifications, original_price, deal_price,
			discount_percentage, stock_quantity, original_stock, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at`
	var created, updated time.Time
	if err := r.db.QueryRowxContext(ctx, q, writeArgs(dp)...).Scan(&dp.ID, &created, &updated); err != nil {
		return fmt.Errorf("insert deal product: %w", err)
	}
	dp.CreatedAt, dp.UpdatedAt = &created, &updated
	return nil
}

// Update overwrites a row.
func (r *DealProductRepository) Update(ctx context.Context, dp *models.DealProduct) error {
	if !validID(dp.ID) {
		return utils.ErrDealProductNotFound
	}
	const q = `
		UPDATE deal_products SET deal_id = $1, product_id = $2, product_name = $3, product_description = $4,
			product_image_url = $5, product_images = $6, product_key_features = $7, product_specifications = $8,
			original_price = $9, deal_price = $10, discount_percentage = $11, stock_quantity = $12,
			original_stock = $13, sort_order = $14, updated_at = now()
		WHERE id = $15
		RETURNING updated_at`
	var updated time.Time
	err := r.db.QueryRowxContext(ctx, q, append(writeArgs(dp), dp.ID)...).Scan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return utils.ErrDealProductNotFound
	}
	if err != nil {
		return fmt.Errorf("update deal product %s: %w", dp.ID, err)
	}
	dp.UpdatedAt = &updated
	return nil
}

// Delete removes a row.
func (r *DealProductRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return utils.ErrDealProductNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM deal_products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete deal product %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return utils.ErrDealProductNotFound
	}
	return nil
}

func writeArgs(dp *models.DealProduct) []any {
	images := dp.ProductImages
	if images == nil {
		images = pq.StringArray{}
	}
	return []any{
		dp.DealID, dp.ProductID, dp.ProductName, dp.ProductDescription, dp.ProductImageURL,
		images, textValue(dp.ProductKeyFeatures), textValue(dp.ProductSpecifications),
		textValue(dp.OriginalPrice), textValue(dp.DealPrice), textValue(dp.DiscountPercentage),
		textValue(dp.StockQuantity), textValue(dp.OriginalStock), dp.SortOrder,
	}
}

// attachProducts normalizes scanned values and embeds catalog products in a
// single follow-up query.
func (r *DealProductRepository) attachProducts(ctx context.Context, rows []models.DealProduct) error {
	ids := make([]string, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for i := range rows {
		rows[i].NormalizeScanned()
		if pid := rows[i].ProductID; pid != nil {
			if _, dup := seen[*pid]; !dup {
				seen[*pid] = struct{}{}
				ids = append(ids, *pid)
			}
		}
	}

	products, err := selectProductsByIDs(ctx, r.db, ids)
	if err != nil {
		return err
	}
	for i := range rows {
		if pid := rows[i].ProductID; pid != nil {
			rows[i].Product = products[*pid]
		}
	}
	return nil
}

// textValue converts loosely typed admin input into the TEXT form stored in
// deal_products. Slices and objects are stored as JSON.
func textValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return nil
		}
		return string(b)
	}
}
