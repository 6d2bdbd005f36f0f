package service

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/ventech/ventech_api/internal/metrics"
	"github.com/ventech/ventech_api/internal/models"
	"github.com/ventech/ventech_api/internal/pkg/clock"
	"github.com/ventech/ventech_api/internal/sse"
	"github.com/ventech/ventech_api/internal/utils"
)

const maxInvoiceItems = 100

// InvoiceStore records issued invoices.
type InvoiceStore interface {
	Create(ctx context.Context, inv *models.Invoice) error
	MarkEmailed(ctx context.Context, id string, at time.Time) error
	GetByOrderNumber(ctx context.Context, orderNumber string) (*models.Invoice, error)
}

// ObjectStore uploads rendered documents. Implemented by S3Service.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Mailer delivers email. Implemented by MailService.
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// StoreIdentity supplies the branding printed on invoices.
type StoreIdentity interface {
	StoreName(ctx context.Context, fallback string) string
	SupportEmail(ctx context.Context) string
}

// InvoiceItem is one order line.
type InvoiceItem struct {
	Name      string          `json:"name" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// InvoiceRequest is the order summary an invoice is rendered from.
type InvoiceRequest struct {
	OrderNumber   string          `json:"order_number" binding:"required"`
	CustomerName  string          `json:"customer_name" binding:"required"`
	CustomerEmail string          `json:"customer_email" binding:"required"`
	Currency      string          `json:"currency"`
	Items         []InvoiceItem   `json:"items" binding:"required"`
	Shipping      decimal.Decimal `json:"shipping"`
	Discount      decimal.Decimal `json:"discount"`
}

// InvoiceTotals are rounded to two decimal places.
type InvoiceTotals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// InvoiceResult is returned after an invoice has been issued.
type InvoiceResult struct {
	InvoiceNumber string        `json:"invoiceNumber"`
	Currency      string        `json:"currency"`
	Totals        InvoiceTotals `json:"totals"`
	ObjectURL     *string       `json:"objectUrl,omitempty"`
	Emailed       bool          `json:"emailed"`
}

// InvoiceService renders invoices and delivers them.
type InvoiceService struct {
	repo            InvoiceStore
	storage         ObjectStore
	mailer          Mailer
	store           StoreIdentity
	defaultName     string
	defaultCurrency string
	clock           clock.Clock
	notifier        sse.ChangeNotifier
}

// NewInvoiceService constructs an InvoiceService. storage and mailer may be
// nil, in which case that step is skipped.
func NewInvoiceService(repo InvoiceStore, storage ObjectStore, mailer Mailer, store StoreIdentity, defaultName, defaultCurrency string, clk clock.Clock) *InvoiceService {
	if clk == nil {
		clk = clock.System{}
	}
	return &InvoiceService{
		repo:            repo,
		storage:         storage,
		mailer:          mailer,
		store:           store,
		defaultName:     defaultName,
		defaultCurrency: defaultCurrency,
		clock:           clk,
		notifier:        sse.NopNotifier{},
	}
}

// SetNotifier sets the notifier used to push issued invoices to admin dashboards.
func (s *InvoiceService) SetNotifier(n sse.ChangeNotifier) {
	s.notifier = n
}

// Preview renders the PDF for req without storing or sending it.
func (s *InvoiceService) Preview(ctx context.Context, req InvoiceRequest) ([]byte, string, error) {
	if err := s.normalize(&req); err != nil {
		return nil, "", err
	}
	number := s.invoiceNumber()
	pdf, err := s.render(ctx, number, req, ComputeInvoiceTotals(req))
	if err != nil {
		return nil, "", err
	}
	return pdf, number, nil
}

// Send renders, stores and emails an invoice. The invoice row is written
// before the email goes out, so a failed delivery leaves emailed_at unset.
func (s *InvoiceService) Send(ctx context.Context, req InvoiceRequest) (*InvoiceResult, error) {
	if err := s.normalize(&req); err != nil {
		return nil, err
	}
	totals := ComputeInvoiceTotals(req)
	number := s.invoiceNumber()

	pdf, err := s.render(ctx, number, req, totals)
	if err != nil {
		metrics.RecordInvoiceStep("render", "error")
		return nil, err
	}
	metrics.RecordInvoiceStep("render", "ok")

	result := &InvoiceResult{InvoiceNumber: number, Currency: req.Currency, Totals: totals}

	if s.storage != nil {
		key := fmt.Sprintf("invoices/%s/%s.pdf", s.clock.Now().Format("2006/01"), number)
		url, err := s.storage.Put(ctx, key, pdf, "application/pdf")
		if err != nil {
			metrics.RecordInvoiceStep("upload", "error")
			return nil, fmt.Errorf("store invoice %s: %w", number, err)
		}
		metrics.RecordInvoiceStep("upload", "ok")
		result.ObjectURL = &url
	} else {
		metrics.RecordInvoiceStep("upload", "skipped")
	}

	inv := &models.Invoice{
		InvoiceNumber: number,
		OrderNumber:   req.OrderNumber,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Currency:      req.Currency,
		Total:         totals.Total.StringFixed(2),
		ObjectURL:     result.ObjectURL,
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("record invoice %s: %w", number, err)
	}

	if s.mailer == nil {
		metrics.RecordInvoiceStep("email", "skipped")
		return result, nil
	}

	storeName := s.store.StoreName(ctx, s.defaultName)
	err = s.mailer.Send(ctx, Mail{
		To:       req.CustomerEmail,
		ReplyTo:  s.store.SupportEmail(ctx),
		Subject:  fmt.Sprintf("%s invoice %s for order %s", storeName, number, req.OrderNumber),
		TextBody: invoiceEmailText(storeName, number, req, totals),
		Attachments: []Attachment{{
			Filename:    number + ".pdf",
			ContentType: "application/pdf",
			Data:        pdf,
		}},
	})
	if err != nil {
		metrics.RecordInvoiceStep("email", "error")
		return nil, fmt.Errorf("email invoice %s: %w", number, err)
	}
	metrics.RecordInvoiceStep("email", "ok")
	result.Emailed = true

	if err := s.repo.MarkEmailed(ctx, inv.ID, s.clock.Now()); err != nil {
		log.Warn().Err(err).Str("invoice_number", number).Msg("failed to mark invoice emailed")
	}
	log.Info().Str("invoice_number", number).Str("order_number", req.OrderNumber).Msg("invoice sent")
	s.notifier.NotifyInvoiceSent(number)
	return result, nil
}

// GetByOrderNumber returns the latest invoice issued for an order.
func (s *InvoiceService) GetByOrderNumber(ctx context.Context, orderNumber string) (*models.Invoice, error) {
	inv, err := s.repo.GetByOrderNumber(ctx, strings.TrimSpace(orderNumber))
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, utils.ErrInvoiceNotFound
	}
	return inv, nil
}

// ComputeInvoiceTotals sums the order lines. The total never goes below zero.
func ComputeInvoiceTotals(req InvoiceRequest) InvoiceTotals {
	subtotal := decimal.Zero
	for _, it := range req.Items {
		subtotal = subtotal.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	total := subtotal.Add(req.Shipping).Sub(req.Discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return InvoiceTotals{
		Subtotal: subtotal.Round(2),
		Shipping: req.Shipping.Round(2),
		Discount: req.Discount.Round(2),
		Total:    total.Round(2),
	}
}

func (s *InvoiceService) normalize(req *InvoiceRequest) error {
	req.OrderNumber = strings.TrimSpace(req.OrderNumber)
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	if req.Currency == "" {
		req.Currency = s.defaultCurrency
	}

	if req.OrderNumber == "" {
		return fmt.Errorf("%w: order_number is required", utils.ErrInvalidInvoice)
	}
	if req.CustomerName == "" {
		return fmt.Errorf("%w: customer_name is required", utils.ErrInvalidInvoice)
	}
	if _, err := mail.ParseAddress(req.CustomerEmail); err != nil {
		return fmt.Errorf("%w: customer_email is not a valid address", utils.ErrInvalidInvoice)
	}
	if len(req.Items) == 0 || len(req.Items) > maxInvoiceItems {
		return fmt.Errorf("%w: between 1 and %d items are required", utils.ErrInvalidInvoice, maxInvoiceItems)
	}
	for i := range req.Items {
		it := &req.Items[i]
		it.Name = strings.TrimSpace(it.Name)
		if it.Name == "" {
			return fmt.Errorf("%w: item %d has no name", utils.ErrInvalidInvoice, i+1)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item %d quantity must be positive", utils.ErrInvalidInvoice, i+1)
		}
		if it.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: item %d unit_price must not be negative", utils.ErrInvalidInvoice, i+1)
		}
	}
	if req.Shipping.IsNegative() || req.Discount.IsNegative() {
		return fmt.Errorf("%w: shipping and discount must not be negative", utils.ErrInvalidInvoice)
	}
	return nil
}

func (s *InvoiceService) invoiceNumber() string {
	id := strings.ToUpper(uuid.New().String()[:8])
	return fmt.Sprintf("INV-%s-%s", s.clock.Now().Format("20060102"), id)
}

func (s *InvoiceService) render(ctx context.Context, number string, req InvoiceRequest, totals InvoiceTotals) ([]byte, error) {
	storeName := s.store.StoreName(ctx, s.defaultName)
	support := s.store.SupportEmail(ctx)

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(number, true)
	pdf.SetAuthor(storeName, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(storeName), "", 1, "L", false, 0, "")
	if support != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 5, tr(support), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "Invoice "+number, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Order: "+tr(req.OrderNumber), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Date: "+s.clock.Now().Format("02 Jan 2006"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Bill to: "+tr(req.CustomerName)+" <"+tr(req.CustomerEmail)+">", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	widths := []float64{95, 20, 35, 40}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range []string{"Item", "Qty", "Unit price", "Amount"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 8, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, it := range req.Items {
		amount := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		pdf.CellFormat(widths[0], 7, tr(it.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprintf("%d", it.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, money(req.Currency, it.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, money(req.Currency, amount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	label := widths[0] + widths[1] + widths[2]
	summary := []struct {
		name  string
		value decimal.Decimal
	}{
		{"Subtotal", totals.Subtotal},
		{"Shipping", totals.Shipping},
		{"Discount", totals.Discount.Neg()},
	}
	for _, row := range summary {
		pdf.CellFormat(label, 7, row.name, "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, money(req.Currency, row.value), "1", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(label, 8, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 8, money(req.Currency, totals.Total), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", number, err)
	}
	return buf.Bytes(), nil
}

func money(currency string, v decimal.Decimal) string {
	return currency + " " + v.StringFixed(2)
}

func invoiceEmailText(storeName, number string, req InvoiceRequest, totals InvoiceTotals) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", req.CustomerName)
	fmt.Fprintf(&b, "Thank you for shopping at %s. Your invoice %s for order %s is attached.\n\n", storeName, number, req.OrderNumber)
	fmt.Fprintf(&b, "Total: %s\n", money(req.Currency, totals.Total))
	return b.String()
}
