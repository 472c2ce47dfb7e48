package finance

import (
	"context"
	"testing"
	"time"

	"github.com/erp/docflow/internal/domain/document"
	"github.com/erp/docflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReceiptRepo is an in-memory ReceiptRepository
type fakeReceiptRepo struct {
	receipts map[uuid.UUID]Receipt
}

func newFakeReceiptRepo() *fakeReceiptRepo {
	return &fakeReceiptRepo{receipts: make(map[uuid.UUID]Receipt)}
}

func (r *fakeReceiptRepo) FindByID(ctx context.Context, id uuid.UUID) (*Receipt, error) {
	receipt, ok := r.receipts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &receipt, nil
}

func (r *fakeReceiptRepo) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Receipt, error) {
	var out []Receipt
	for _, receipt := range r.receipts {
		if receipt.InvoiceID == invoiceID {
			out = append(out, receipt)
		}
	}
	return out, nil
}

func (r *fakeReceiptRepo) Save(ctx context.Context, receipt *Receipt) error {
	r.receipts[receipt.ID] = *receipt
	return nil
}

func (r *fakeReceiptRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.receipts, id)
	return nil
}

// fakeTermLookup returns a fixed payment term
type fakeTermLookup struct {
	term *PaymentTerm
}

func (l *fakeTermLookup) TermByID(ctx context.Context, id uuid.UUID) (*PaymentTerm, error) {
	if l.term == nil {
		return nil, shared.ErrNotFound
	}
	return l.term, nil
}

func newTestInvoice(t *testing.T, total string, termID uuid.UUID) *document.Document {
	settings := document.DefaultSettings()
	settings.DefaultPaymentTerm = termID
	invoice, err := document.NewDocument(document.KindInvoice, settings, document.DefaultStatusSet())
	require.NoError(t, err)
	invoice.GrandTotal = decimal.RequireFromString(total)
	invoice.Date = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	return invoice
}

func scheduleAmounts(receipts []Receipt) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range receipts {
		sum = sum.Add(r.Amount)
	}
	return sum
}

func TestScheduleGenerator_Generate_SingleInstallment(t *testing.T) {
	termID := uuid.New()
	lookup := &fakeTermLookup{term: &PaymentTerm{ID: termID, Installments: 1, FirstDueDays: 30}}
	repo := newFakeReceiptRepo()
	invoice := newTestInvoice(t, "121.00", termID)

	receipts, err := NewScheduleGenerator(lookup, repo, 2).Generate(context.Background(), invoice)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.True(t, receipts[0].Amount.Equal(decimal.RequireFromString("121.00")))
	assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), receipts[0].DueDate)
}

func TestScheduleGenerator_Generate_InstallmentsSumToTotal(t *testing.T) {
	termID := uuid.New()
	lookup := &fakeTermLookup{term: &PaymentTerm{ID: termID, Installments: 3, FirstDueDays: 0, GapDays: 30}}
	repo := newFakeReceiptRepo()
	invoice := newTestInvoice(t, "100.00", termID)

	receipts, err := NewScheduleGenerator(lookup, repo, 2).Generate(context.Background(), invoice)
	require.NoError(t, err)
	require.Len(t, receipts, 3)

	// 33.33 + 33.33 + 33.34: the rounding remainder lands on the last
	// installment.
	assert.True(t, receipts[0].Amount.Equal(decimal.RequireFromString("33.33")))
	assert.True(t, receipts[2].Amount.Equal(decimal.RequireFromString("33.34")))
	assert.True(t, scheduleAmounts(receipts).Equal(invoice.GrandTotal))

	assert.Equal(t, invoice.Date, receipts[0].DueDate)
	assert.Equal(t, invoice.Date.AddDate(0, 0, 60), receipts[2].DueDate)
}

func TestScheduleGenerator_Generate_NoTermConfigured(t *testing.T) {
	repo := newFakeReceiptRepo()
	invoice := newTestInvoice(t, "50.00", uuid.Nil)

	receipts, err := NewScheduleGenerator(&fakeTermLookup{}, repo, 2).Generate(context.Background(), invoice)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, invoice.Date, receipts[0].DueDate, "no term: due immediately")
}

func TestScheduleGenerator_Update_PreservesPaidReceipts(t *testing.T) {
	termID := uuid.New()
	lookup := &fakeTermLookup{term: &PaymentTerm{ID: termID, Installments: 2, GapDays: 30}}
	repo := newFakeReceiptRepo()
	invoice := newTestInvoice(t, "100.00", termID)

	generator := NewScheduleGenerator(lookup, repo, 2)
	receipts, err := generator.Generate(context.Background(), invoice)
	require.NoError(t, err)
	require.Len(t, receipts, 2)

	// Pay the first installment, then raise the invoice total.
	first := receipts[0]
	_, err = first.MarkPaid(uuid.Nil, time.Now(), true)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), &first))

	invoice.GrandTotal = decimal.RequireFromString("160.00")
	require.NoError(t, generator.Update(context.Background(), invoice))

	remaining, err := repo.FindByInvoice(context.Background(), invoice.ID)
	require.NoError(t, err)

	paid := decimal.Zero
	unpaid := decimal.Zero
	for _, receipt := range remaining {
		if receipt.Paid {
			paid = paid.Add(receipt.Amount)
		} else {
			unpaid = unpaid.Add(receipt.Amount)
			assert.Greater(t, receipt.Installment, first.Installment)
		}
	}
	assert.True(t, paid.Equal(decimal.RequireFromString("50.00")))
	assert.True(t, unpaid.Equal(decimal.RequireFromString("110.00")), "unpaid: got %s", unpaid)
}

func TestScheduleGenerator_Update_NothingOutstanding(t *testing.T) {
	termID := uuid.New()
	lookup := &fakeTermLookup{term: &PaymentTerm{ID: termID, Installments: 1}}
	repo := newFakeReceiptRepo()
	invoice := newTestInvoice(t, "100.00", termID)

	generator := NewScheduleGenerator(lookup, repo, 2)
	receipts, err := generator.Generate(context.Background(), invoice)
	require.NoError(t, err)

	paid := receipts[0]
	_, err = paid.MarkPaid(uuid.Nil, time.Now(), true)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), &paid))

	require.NoError(t, generator.Update(context.Background(), invoice))

	remaining, err := repo.FindByInvoice(context.Background(), invoice.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.True(t, remaining[0].Paid, "fully settled invoice keeps only its paid receipts")
}
