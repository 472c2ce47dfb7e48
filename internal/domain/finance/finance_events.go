package finance

import (
	"github.com/erp/docflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeReceipt = "Receipt"

// Event type constants
const (
	EventTypeReceiptPaid      = "ReceiptPaid"
	EventTypeInvoiceSettled   = "InvoiceSettled"
	EventTypeReceiptsReplaced = "ReceiptsReplaced"
)

// ReceiptPaidEvent is raised when a receipt transitions to paid
type ReceiptPaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// NewReceiptPaidEvent creates a new ReceiptPaidEvent
func NewReceiptPaidEvent(receipt *Receipt) *ReceiptPaidEvent {
	return &ReceiptPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceiptPaid, AggregateTypeReceipt, receipt.ID),
		InvoiceID:       receipt.InvoiceID,
		Amount:          receipt.Amount,
	}
}

// EventType returns the event type name
func (e *ReceiptPaidEvent) EventType() string {
	return EventTypeReceiptPaid
}

// InvoiceSettledEvent is raised when the last open receipt of an invoice
// is paid
type InvoiceSettledEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID `json:"invoice_id"`
}

// NewInvoiceSettledEvent creates a new InvoiceSettledEvent
func NewInvoiceSettledEvent(invoiceID uuid.UUID) *InvoiceSettledEvent {
	return &InvoiceSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceSettled, AggregateTypeReceipt, invoiceID),
		InvoiceID:       invoiceID,
	}
}

// EventType returns the event type name
func (e *InvoiceSettledEvent) EventType() string {
	return EventTypeInvoiceSettled
}

// ReceiptsReplacedEvent is raised when an invoice's receipt schedule has
// been regenerated
type ReceiptsReplacedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID `json:"invoice_id"`
}

// NewReceiptsReplacedEvent creates a new ReceiptsReplacedEvent
func NewReceiptsReplacedEvent(invoiceID uuid.UUID) *ReceiptsReplacedEvent {
	return &ReceiptsReplacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceiptsReplaced, AggregateTypeReceipt, invoiceID),
		InvoiceID:       invoiceID,
	}
}

// EventType returns the event type name
func (e *ReceiptsReplacedEvent) EventType() string {
	return EventTypeReceiptsReplaced
}
