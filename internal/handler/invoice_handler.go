package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ventech/ventech_api/internal/models"
	"github.com/ventech/ventech_api/internal/service"
	"github.com/ventech/ventech_api/internal/utils"
)

// InvoiceIssuer is implemented by service.InvoiceService.
type InvoiceIssuer interface {
	Send(ctx context.Context, req service.InvoiceRequest) (*service.InvoiceResult, error)
	Preview(ctx context.Context, req service.InvoiceRequest) ([]byte, string, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*models.Invoice, error)
}

// InvoiceHandler renders and sends order invoices.
type InvoiceHandler struct {
	invoices InvoiceIssuer
}

// NewInvoiceHandler constructs an InvoiceHandler.
func NewInvoiceHandler(invoices InvoiceIssuer) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// Send issues an invoice: render, upload, record and email.
func (h *InvoiceHandler) Send(c *gin.Context) {
	var req service.InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	result, err := h.invoices.Send(c.Request.Context(), req)
	if err != nil {
		utils.ErrorFrom(c, err, err.Error())
		return
	}
	utils.Success(c, http.StatusCreated, "Invoice sent successfully", result)
}

// Preview streams the rendered PDF without sending it.
func (h *InvoiceHandler) Preview(c *gin.Context) {
	var req service.InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	pdf, number, err := h.invoices.Preview(c.Request.Context(), req)
	if err != nil {
		utils.ErrorFrom(c, err, err.Error())
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s.pdf"`, number))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// GetByOrder returns the latest invoice issued for an order.
func (h *InvoiceHandler) GetByOrder(c *gin.Context) {
	inv, err := h.invoices.GetByOrderNumber(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		utils.ErrorFrom(c, err, "Invoice not found")
		return
	}
	utils.Success(c, http.StatusOK, "Invoice retrieved successfully", inv)
}
