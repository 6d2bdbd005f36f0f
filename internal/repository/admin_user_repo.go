package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ventech/ventech_api/internal/models"
	"github.com/ventech/ventech_api/internal/utils"
)

type AdminUserRepository struct {
	db *sqlx.DB
}

func NewAdminUserRepository(db *sqlx.DB) *AdminUserRepository {
	return &AdminUserRepository{db: db}
}

func (r *AdminUserRepository) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var user models.AdminUser
	err := r.db.GetContext(ctx, &user, `
		SELECT id, email, password_hash, name, role, is_active, last_login_at, created_at, updated_at
		FROM admin_users
		WHERE lower(email) = lower($1)
	`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get admin %s: %w", email, err)
	}
	return &user, nil
}

// Create inserts a new admin. A duplicate email yields utils.ErrEmailTaken.
func (r *AdminUserRepository) Create(ctx context.Context, user *models.AdminUser) error {
	query := `
		INSERT INTO admin_users (email, password_hash, name, role, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, user.Email, user.PasswordHash, user.Name, user.Role, user.IsActive).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return utils.ErrEmailTaken
	}
	return err
}

func (r *AdminUserRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(1) FROM admin_users`)
	return n, err
}

func (r *AdminUserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE admin_users SET last_login_at = $2 WHERE id = $1`, id, at)
	return err
}
