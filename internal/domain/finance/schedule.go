package finance

import (
	"context"
	"time"

	"github.com/erp/docflow/internal/domain/document"
	"github.com/erp/docflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentTerm describes how an invoice total is split into receipts: the
// number of installments, the days until the first one is due, and the
// gap between consecutive ones.
type PaymentTerm struct {
	ID            uuid.UUID
	Name          string
	Installments  int
	FirstDueDays  int
	GapDays       int
	PaymentMethod *uuid.UUID
}

// PaymentTermLookup resolves payment-term references on documents
type PaymentTermLookup interface {
	TermByID(ctx context.Context, id uuid.UUID) (*PaymentTerm, error)
}

// ScheduleGenerator is the default ReceiptGenerator: it splits the
// invoice grand total into equal installments per the payment term,
// correcting the last receipt for rounding so the schedule always sums
// to the invoice total.
type ScheduleGenerator struct {
	terms    PaymentTermLookup
	receipts ReceiptRepository
	decimals int32
}

// NewScheduleGenerator creates a ScheduleGenerator
func NewScheduleGenerator(terms PaymentTermLookup, receipts ReceiptRepository, decimals int32) *ScheduleGenerator {
	return &ScheduleGenerator{
		terms:    terms,
		receipts: receipts,
		decimals: decimals,
	}
}

// Generate creates the receipt schedule for an invoice
func (g *ScheduleGenerator) Generate(ctx context.Context, invoice *document.Document) ([]Receipt, error) {
	term, err := g.resolveTerm(ctx, invoice)
	if err != nil {
		return nil, err
	}

	receipts, err := buildSchedule(invoice, term, g.decimals)
	if err != nil {
		return nil, err
	}
	for idx := range receipts {
		if err := g.receipts.Save(ctx, &receipts[idx]); err != nil {
			return nil, err
		}
	}
	return receipts, nil
}

// Update replaces the unpaid part of an invoice's schedule. Paid
// receipts stay untouched; the remaining amount due is re-split over the
// term's installments.
func (g *ScheduleGenerator) Update(ctx context.Context, invoice *document.Document) error {
	existing, err := g.receipts.FindByInvoice(ctx, invoice.ID)
	if err != nil {
		return err
	}

	paidAmount := decimal.Zero
	maxPaidInstallment := 0
	for idx := range existing {
		receipt := &existing[idx]
		if receipt.Paid {
			paidAmount = paidAmount.Add(receipt.Amount)
			if receipt.Installment > maxPaidInstallment {
				maxPaidInstallment = receipt.Installment
			}
			continue
		}
		if err := g.receipts.Delete(ctx, receipt.ID); err != nil {
			return err
		}
	}

	outstanding := invoice.GrandTotal.Sub(paidAmount)
	if !outstanding.IsPositive() {
		return nil
	}

	term, err := g.resolveTerm(ctx, invoice)
	if err != nil {
		return err
	}

	receipts, err := splitAmount(invoice.ID, outstanding, invoice.Date, term, g.decimals, maxPaidInstallment+1)
	if err != nil {
		return err
	}
	for idx := range receipts {
		if err := g.receipts.Save(ctx, &receipts[idx]); err != nil {
			return err
		}
	}
	return nil
}

func (g *ScheduleGenerator) resolveTerm(ctx context.Context, invoice *document.Document) (*PaymentTerm, error) {
	if invoice.PaymentTermID == uuid.Nil {
		// No term configured: everything due on the invoice date.
		return &PaymentTerm{Installments: 1}, nil
	}
	return g.terms.TermByID(ctx, invoice.PaymentTermID)
}

// buildSchedule splits the full invoice total
func buildSchedule(invoice *document.Document, term *PaymentTerm, decimals int32) ([]Receipt, error) {
	return splitAmount(invoice.ID, invoice.GrandTotal, invoice.Date, term, decimals, 1)
}

// splitAmount distributes amount over the term's installments starting
// at the given installment number
func splitAmount(invoiceID uuid.UUID, amount decimal.Decimal, baseDate time.Time, term *PaymentTerm, decimals int32, firstInstallment int) ([]Receipt, error) {
	installments := term.Installments
	if installments < 1 {
		installments = 1
	}

	each := amount.Div(decimal.NewFromInt(int64(installments))).Round(decimals)
	receipts := make([]Receipt, 0, installments)
	assigned := decimal.Zero

	for i := 0; i < installments; i++ {
		portion := each
		if i == installments-1 {
			portion = amount.Sub(assigned) // rounding remainder lands here
		}
		assigned = assigned.Add(portion)

		dueDate := baseDate.AddDate(0, 0, term.FirstDueDays+i*term.GapDays)
		receipt, err := NewReceipt(invoiceID, firstInstallment+i, portion, dueDate)
		if err != nil {
			return nil, err
		}
		receipt.PaymentMethodID = term.PaymentMethod
		receipts = append(receipts, *receipt)
	}

	if !assigned.Equal(amount) {
		return nil, shared.NewDomainError("BAD_SCHEDULE", "Receipt schedule does not sum to the amount due")
	}
	return receipts, nil
}
