package finance

import (
	"context"

	"github.com/erp/docflow/internal/domain/document"
	"github.com/google/uuid"
)

// AccountingPoster is the narrow trigger into the double-entry ledger.
// The posting rules themselves live outside this core.
type AccountingPoster interface {
	// PostInvoice creates the ledger entry for an invoice and returns
	// its id
	PostInvoice(ctx context.Context, invoice *document.Document) (uuid.UUID, error)

	// PostPayment creates the ledger entry for a payment and returns
	// its id
	PostPayment(ctx context.Context, payment *Payment) (uuid.UUID, error)

	// RetractEntry removes a previously posted entry
	RetractEntry(ctx context.Context, entryID uuid.UUID) error

	// EntryEditable reports whether an entry may still be retracted
	EntryEditable(ctx context.Context, entryID uuid.UUID) (bool, error)
}

// ReceiptGenerator derives the receipt schedule of an invoice from its
// payment terms.
type ReceiptGenerator interface {
	// Generate creates the receipt schedule for an invoice that has
	// none
	Generate(ctx context.Context, invoice *document.Document) ([]Receipt, error)

	// Update re-derives the schedule after the invoice changed,
	// preserving receipts that are already paid
	Update(ctx context.Context, invoice *document.Document) error
}
