package finance

import (
	"time"

	"github.com/erp/docflow/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Receipt DTOs ====================

// PayReceiptRequest represents a request to settle a receipt
type PayReceiptRequest struct {
	PaymentMethodID *uuid.UUID `json:"payment_method_id"`
	PaidAt          *time.Time `json:"paid_at"`
	// SuppressPayment settles the receipt without recording a payment,
	// e.g. while loading historic data
	SuppressPayment bool `json:"suppress_payment"`
}

// ReceiptResponse represents a receipt in responses
type ReceiptResponse struct {
	ID              uuid.UUID       `json:"id"`
	InvoiceID       uuid.UUID       `json:"invoice_id"`
	Installment     int             `json:"installment"`
	Amount          decimal.Decimal `json:"amount"`
	DueDate         time.Time       `json:"due_date"`
	Paid            bool            `json:"paid"`
	PaidDate        *time.Time      `json:"paid_date,omitempty"`
	PaymentMethodID *uuid.UUID      `json:"payment_method_id,omitempty"`
}

// PaymentResponse represents a recorded payment in responses
type PaymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	ReceiptID       uuid.UUID       `json:"receipt_id"`
	Amount          decimal.Decimal `json:"amount"`
	PaidAt          time.Time       `json:"paid_at"`
	PaymentMethodID *uuid.UUID      `json:"payment_method_id,omitempty"`
}

// ToReceiptResponse converts a receipt to its response form
func ToReceiptResponse(r *finance.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ID:              r.ID,
		InvoiceID:       r.InvoiceID,
		Installment:     r.Installment,
		Amount:          r.Amount,
		DueDate:         r.DueDate,
		Paid:            r.Paid,
		PaidDate:        r.PaidDate,
		PaymentMethodID: r.PaymentMethodID,
	}
}

// ToPaymentResponse converts a payment to its response form
func ToPaymentResponse(p *finance.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		ReceiptID:       p.ReceiptID,
		Amount:          p.Amount,
		PaidAt:          p.PaidAt,
		PaymentMethodID: p.PaymentMethodID,
	}
}
