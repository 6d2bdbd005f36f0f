package models

import "time"

// Invoice is the audit row written every time an invoice is issued.
type Invoice struct {
	ID            string     `db:"id" json:"id"`
	InvoiceNumber string     `db:"invoice_number" json:"invoiceNumber"`
	OrderNumber   string     `db:"order_number" json:"orderNumber"`
	CustomerName  string     `db:"customer_name" json:"customerName"`
	CustomerEmail string     `db:"customer_email" json:"customerEmail"`
	Currency      string     `db:"currency" json:"currency"`
	Total         string     `db:"total" json:"total"`
	ObjectURL     *string    `db:"object_url" json:"objectUrl,omitempty"`
	EmailedAt     *time.Time `db:"emailed_at" json:"emailedAt,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
}
