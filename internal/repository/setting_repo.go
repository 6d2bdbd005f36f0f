package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ventech/ventech_api/internal/models"
	"github.com/ventech/ventech_api/internal/utils"
)

// SettingRepository handles data access for storefront settings.
type SettingRepository struct {
	db *sqlx.DB
}

// NewSettingRepository creates a new SettingRepository.
func NewSettingRepository(db *sqlx.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get returns a single setting.
func (r *SettingRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	var s models.Setting
	err := r.db.GetContext(ctx, &s,
		`SELECT key, value, description, is_public, updated_at FROM settings WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.ErrSettingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get setting %s: %w", key, err)
	}
	return &s, nil
}

// List returns settings ordered by key. publicOnly limits the result to
// rows flagged is_public.
func (r *SettingRepository) List(ctx context.Context, publicOnly bool) ([]models.Setting, error) {
	var out []models.Setting
	err := r.db.SelectContext(ctx, &out, `
		SELECT key, value, description, is_public, updated_at FROM settings
		WHERE ($1 = false OR is_public = true)
		ORDER BY key`, publicOnly)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return out, nil
}

// Upsert stores a value, keeping description and visibility of existing rows.
func (r *SettingRepository) Upsert(ctx context.Context, s *models.Setting) error {
	const q = `
		INSERT INTO settings (key, value, description, is_public, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
		RETURNING description, is_public, updated_at`
	return r.db.QueryRowxContext(ctx, q, s.Key, s.Value, s.Description, s.IsPublic).
		Scan(&s.Description, &s.IsPublic, &s.UpdatedAt)
}
