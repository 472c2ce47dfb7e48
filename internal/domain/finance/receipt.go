package finance

import (
	"time"

	"github.com/erp/docflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Receipt is one scheduled or settled portion of an invoice's total due.
// An invoice may carry several receipts (installments); their amounts
// together reconcile against the invoice grand total.
type Receipt struct {
	shared.BaseEntity
	InvoiceID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Installment     int             `gorm:"not null;default:1"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DueDate         time.Time
	Paid            bool `gorm:"not null;default:false"`
	PaidDate        *time.Time
	PaymentMethodID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Receipt) TableName() string {
	return "receipts"
}

// NewReceipt creates an unpaid receipt for an invoice
func NewReceipt(invoiceID uuid.UUID, installment int, amount decimal.Decimal, dueDate time.Time) (*Receipt, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if installment < 1 {
		return nil, shared.NewDomainError("INVALID_INSTALLMENT", "Installment number must be 1 or greater")
	}

	return &Receipt{
		BaseEntity:  shared.NewBaseEntity(),
		InvoiceID:   invoiceID,
		Installment: installment,
		Amount:      amount,
		DueDate:     dueDate,
	}, nil
}

// MarkPaid settles the receipt. The returned Payment records the
// settlement event and must be inserted exactly once by the caller;
// suppress skips creating it (e.g. while importing historic data).
// Marking an already-paid receipt again is an error.
func (r *Receipt) MarkPaid(paymentMethodID uuid.UUID, paidAt time.Time, suppress bool) (*Payment, error) {
	if r.Paid {
		return nil, shared.NewDomainError("ALREADY_PAID", "Receipt is already paid")
	}

	r.Paid = true
	r.PaidDate = &paidAt
	if paymentMethodID != uuid.Nil {
		r.PaymentMethodID = &paymentMethodID
	}
	r.Touch()

	if suppress {
		return nil, nil
	}
	return NewPayment(r.ID, r.Amount, paidAt, paymentMethodID)
}

// MarkUnpaid reopens a settled receipt. Its payments must be removed by
// the caller.
func (r *Receipt) MarkUnpaid() {
	r.Paid = false
	r.PaidDate = nil
	r.Touch()
}

// Overdue reports whether the receipt is unpaid past its due date
func (r *Receipt) Overdue(now time.Time) bool {
	return !r.Paid && now.After(r.DueDate)
}
