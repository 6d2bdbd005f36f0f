package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ventech/ventech_api/internal/models"
)

// InvoiceRepository records issued invoices.
type InvoiceRepository struct {
	db *sqlx.DB
}

// NewInvoiceRepository creates a new InvoiceRepository.
func NewInvoiceRepository(db *sqlx.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Create inserts an invoice row.
func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	const q = `
		INSERT INTO invoices (invoice_number, order_number, customer_name, customer_email, currency, total, object_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	err := r.db.QueryRowxContext(ctx, q,
		inv.InvoiceNumber, inv.OrderNumber, inv.CustomerName, inv.CustomerEmail, inv.Currency, inv.Total, inv.ObjectURL,
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// MarkEmailed stamps the time the invoice email was accepted by the server.
func (r *InvoiceRepository) MarkEmailed(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE invoices SET emailed_at = $2 WHERE id = $1`, id, at)
	return err
}

// GetByOrderNumber returns the latest invoice issued for an order, or nil.
func (r *InvoiceRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*models.Invoice, error) {
	var inv models.Invoice
	err := r.db.GetContext(ctx, &inv, `
		SELECT id, invoice_number, order_number, customer_name, customer_email, currency, total::text AS total,
			object_url, emailed_at, created_at
		FROM invoices WHERE order_number = $1
		ORDER BY created_at DESC LIMIT 1`, orderNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice for order %s: %w", orderNumber, err)
	}
	return &inv, nil
}
