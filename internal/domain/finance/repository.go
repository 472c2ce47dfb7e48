package finance

import (
	"context"

	"github.com/google/uuid"
)

// ReceiptRepository defines the interface for receipt persistence.
// Deleting a receipt cascades to its payments first; a receipt never
// leaves orphaned payments behind.
type ReceiptRepository interface {
	// FindByID finds a receipt by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Receipt, error)

	// FindByInvoice finds all receipts of an invoice ordered by
	// installment
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Receipt, error)

	// Save creates or updates a receipt
	Save(ctx context.Context, receipt *Receipt) error

	// Delete removes a receipt and its payments
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByReceipt finds all payments of a receipt
	FindByReceipt(ctx context.Context, receiptID uuid.UUID) ([]Payment, error)

	// Save inserts a payment
	Save(ctx context.Context, payment *Payment) error

	// DeleteByReceipt removes all payments of a receipt
	DeleteByReceipt(ctx context.Context, receiptID uuid.UUID) error
}
