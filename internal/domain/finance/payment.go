package finance

import (
	"time"

	"github.com/erp/docflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment records one settlement event against a receipt. Inserting a
// payment triggers the accounting posting exactly once, unless the
// caller suppressed it on the paid transition.
type Payment struct {
	shared.BaseEntity
	ReceiptID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaidAt          time.Time
	PaymentMethodID *uuid.UUID `gorm:"type:uuid"`
	// AccountingEntryID points at the ledger entry posted for this
	// payment, once the poster has run.
	AccountingEntryID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a payment for a receipt
func NewPayment(receiptID uuid.UUID, amount decimal.Decimal, paidAt time.Time, paymentMethodID uuid.UUID) (*Payment, error) {
	if receiptID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RECEIPT", "Receipt ID cannot be empty")
	}

	payment := &Payment{
		BaseEntity: shared.NewBaseEntity(),
		ReceiptID:  receiptID,
		Amount:     amount,
		PaidAt:     paidAt,
	}
	if paymentMethodID != uuid.Nil {
		payment.PaymentMethodID = &paymentMethodID
	}
	return payment, nil
}
