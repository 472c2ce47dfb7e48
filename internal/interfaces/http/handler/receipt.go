package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appfinance "github.com/erp/docflow/internal/application/finance"
)

// ReconciliationService is the slice of the reconciliation service the
// HTTP layer depends on.
type ReconciliationService interface {
	ListReceipts(ctx context.Context, invoiceID uuid.UUID) ([]appfinance.ReceiptResponse, error)
	PayReceipt(ctx context.Context, receiptID uuid.UUID, req appfinance.PayReceiptRequest) (*appfinance.ReceiptResponse, error)
	UnpayReceipt(ctx context.Context, receiptID uuid.UUID) (*appfinance.ReceiptResponse, error)
	DeleteReceipt(ctx context.Context, receiptID uuid.UUID) error
}

// ReceiptHandler handles receipt reconciliation API endpoints
type ReceiptHandler struct {
	BaseHandler
	reconciliation ReconciliationService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(reconciliation ReconciliationService) *ReceiptHandler {
	return &ReceiptHandler{reconciliation: reconciliation}
}

// RegisterRoutes registers receipt routes on the given group
func (h *ReceiptHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/invoices/:id/receipts", h.ListByInvoice)

	receipts := rg.Group("/receipts")
	{
		receipts.POST("/:id/pay", h.Pay)
		receipts.POST("/:id/unpay", h.Unpay)
		receipts.DELETE("/:id", h.Delete)
	}
}

// parseIDParam reads the :id path parameter as a UUID
func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	return id, err == nil
}

// ListByInvoice returns the receipt schedule of an invoice
func (h *ReceiptHandler) ListByInvoice(c *gin.Context) {
	invoiceID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	receipts, err := h.reconciliation.ListReceipts(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, receipts)
}

// Pay settles one receipt and records its payment
func (h *ReceiptHandler) Pay(c *gin.Context) {
	receiptID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid receipt ID")
		return
	}

	var req appfinance.PayReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.reconciliation.PayReceipt(c.Request.Context(), receiptID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Unpay reverts a settled receipt and retracts its payments
func (h *ReceiptHandler) Unpay(c *gin.Context) {
	receiptID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid receipt ID")
		return
	}

	resp, err := h.reconciliation.UnpayReceipt(c.Request.Context(), receiptID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes an unpaid receipt from its invoice's schedule
func (h *ReceiptHandler) Delete(c *gin.Context) {
	receiptID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid receipt ID")
		return
	}

	if err := h.reconciliation.DeleteReceipt(c.Request.Context(), receiptID); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
