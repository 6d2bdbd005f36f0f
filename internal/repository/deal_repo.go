package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ventech/ventech_api/internal/models"
	"github.com/ventech/ventech_api/internal/utils"
)

const dealColumns = `id, title, description, discount_percentage, banner_url,
	start_date, end_date, is_active, created_at, updated_at`

// DealRepository handles data access for deals.
type DealRepository struct {
	db *sqlx.DB
}

// NewDealRepository creates a new DealRepository.
func NewDealRepository(db *sqlx.DB) *DealRepository {
	return &DealRepository{db: db}
}

// GetActive returns deals whose window contains now, soonest-ending first.
func (r *DealRepository) GetActive(ctx context.Context, now time.Time) ([]models.Deal, error) {
	q := `SELECT ` + dealColumns + ` FROM deals
		WHERE is_active = true AND start_date <= $1 AND end_date >= $1
		ORDER BY end_date ASC, created_at ASC`

	var deals []models.Deal
	if err := r.db.SelectContext(ctx, &deals, q, now); err != nil {
		return nil, fmt.Errorf("select active deals: %w", err)
	}
	return deals, nil
}

// GetByID returns a deal regardless of its window.
func (r *DealRepository) GetByID(ctx context.Context, id string) (*models.Deal, error) {
	if !validID(id) {
		return nil, utils.ErrDealNotFound
	}
	var d models.Deal
	if err := r.db.GetContext(ctx, &d, `SELECT `+dealColumns+` FROM deals WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidText(err) {
			return nil, utils.ErrDealNotFound
		}
		return nil, fmt.Errorf("get deal %s: %w", id, err)
	}
	return &d, nil
}

// List returns a page of deals, newest first, and the total count.
func (r *DealRepository) List(ctx context.Context, page, limit int) ([]models.Deal, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(1) FROM deals`); err != nil {
		return nil, 0, fmt.Errorf("count deals: %w", err)
	}

	q := `SELECT ` + dealColumns + ` FROM deals ORDER BY start_date DESC LIMIT $1 OFFSET $2`
	var deals []models.Deal
	if err := r.db.SelectContext(ctx, &deals, q, limit, (page-1)*limit); err != nil {
		return nil, 0, fmt.Errorf("list deals: %w", err)
	}
	return deals, total, nil
}

// Create inserts a deal and fills its generated fields.
func (r *DealRepository) Create(ctx context.Context, d *models.Deal) error {
	const q = `
		INSERT INTO deals (title, description, discount_percentage, banner_url, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowxContext(ctx, q,
		d.Title, d.Description, d.DiscountPercentage, d.BannerURL, d.StartDate, d.EndDate, d.IsActive,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

// Update overwrites the editable fields of a deal.
func (r *DealRepository) Update(ctx context.Context, d *models.Deal) error {
	if !validID(d.ID) {
		return utils.ErrDealNotFound
	}
	const q = `
		UPDATE deals SET title = $2, description = $3, discount_percentage = $4, banner_url = $5,
			start_date = $6, end_date = $7, is_active = $8, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.db.QueryRowxContext(ctx, q,
		d.ID, d.Title, d.Description, d.DiscountPercentage, d.BannerURL, d.StartDate, d.EndDate, d.IsActive,
	).Scan(&d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return utils.ErrDealNotFound
	}
	return err
}

// Delete removes a deal and, through the foreign key, its deal products.
func (r *DealRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return utils.ErrDealNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM deals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete deal %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return utils.ErrDealNotFound
	}
	return nil
}

// DeactivateExpired flips is_active off for deals that ended before now and
// returns how many rows changed.
func (r *DealRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE deals SET is_active = false, updated_at = now() WHERE is_active = true AND end_date < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired deals: %w", err)
	}
	return res.RowsAffected()
}
