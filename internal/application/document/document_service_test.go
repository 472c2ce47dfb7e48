package document

import (
	"context"
	"testing"
	"time"

	"github.com/erp/docflow/internal/domain/document"
	"github.com/erp/docflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	docs      *MockDocumentRepository
	edges     *MockEdgeRepository
	stockRepo *memStockRepo
	sequencer *MockSequencer
	periods   *MockPeriodResolver
	taxes     *MockTaxLookup
	settings  document.Settings
	statuses  *document.StatusSet
	workflow  *WorkflowService
	service   *DocumentService
	period    *document.Period
	companyID uuid.UUID
	warehouse uuid.UUID
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	f := &serviceFixture{
		docs:      new(MockDocumentRepository),
		edges:     new(MockEdgeRepository),
		stockRepo: newMemStockRepo(),
		sequencer: new(MockSequencer),
		periods:   new(MockPeriodResolver),
		taxes:     new(MockTaxLookup),
		statuses:  document.DefaultStatusSet(),
		companyID: uuid.New(),
		warehouse: uuid.New(),
	}

	f.settings = document.DefaultSettings()
	f.settings.DefaultCompanyID = f.companyID
	f.settings.DefaultWarehouseID = f.warehouse

	f.period = &document.Period{
		ID:        uuid.New(),
		CompanyID: f.companyID,
		Name:      "2026",
		Start:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC),
		Open:      true,
	}

	applier := NewStockApplier(f.stockRepo, permissivePolicy{})
	uow := passthroughUnitOfWork{}
	f.workflow = NewWorkflowService(f.docs, f.edges, applier, f.sequencer, f.periods, uow, f.settings, f.statuses)
	f.service = NewDocumentService(f.docs, applier, f.sequencer, f.periods, f.taxes, uow, f.settings, f.statuses, f.workflow)
	f.service.now = func() time.Time { return time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC) }
	f.workflow.now = f.service.now
	return f
}

// storedDocument builds a persisted-looking document: code assigned,
// snapshot captured, lines stamped with the status's stock mode.
func (f *serviceFixture) storedDocument(t *testing.T, kind document.DocumentKind, statusID int, lines ...document.DocumentLine) *document.Document {
	t.Helper()

	doc, err := document.NewDocument(kind, f.settings, f.statuses)
	require.NoError(t, err)
	doc.CounterpartyID = uuid.New()
	doc.Number = 7
	doc.Code = document.ComposeCode(kind, doc.Series, doc.Number)
	doc.Date = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	doc.PeriodID = &f.period.ID

	status, err := f.statuses.ByID(statusID)
	require.NoError(t, err)
	doc.StatusID = status.ID
	doc.Editable = status.Editable
	for idx := range lines {
		lines[idx].DocumentID = doc.ID
		lines[idx].StockMode = status.StockMode
		lines[idx].Recalculate(f.settings)
	}
	doc.Lines = lines

	doc.ApplyTotals(document.CalculateTotals(doc, f.settings), f.settings)
	doc.CaptureSnapshot(document.ExtraTrackedFields...)
	return doc
}

func testLine(t *testing.T, itemID uuid.UUID, quantity, unitPrice string) document.DocumentLine {
	t.Helper()
	line, err := document.NewDocumentLine(uuid.New(), &itemID, "widget", decimal.RequireFromString(quantity), decimal.RequireFromString(unitPrice), 1, document.DefaultSettings())
	require.NoError(t, err)
	return *line
}

func (f *serviceFixture) stockOf(t *testing.T, itemID uuid.UUID) *struct{ OnHand, Reserved, Pending decimal.Decimal } {
	t.Helper()
	record, err := f.stockRepo.FindByWarehouseAndItem(context.Background(), f.warehouse, itemID)
	require.NoError(t, err)
	return &struct{ OnHand, Reserved, Pending decimal.Decimal }{record.OnHand, record.Reserved, record.PendingReceive}
}

func TestCreateDocument(t *testing.T) {
	t.Run("assigns code, totals and stock effect", func(t *testing.T) {
		f := newServiceFixture(t)
		itemID := uuid.New()

		f.periods.On("PeriodCovering", mock.Anything, f.companyID, mock.Anything).Return(f.period, nil)
		f.sequencer.On("NextCode", mock.Anything, document.KindInvoice, f.period.ID, "A").Return(42, "INV-A-000042", nil)
		f.taxes.On("TaxByCode", mock.Anything, "STD").Return(&document.Tax{Code: "STD", Rate: decimal.RequireFromString("21")}, nil)
		f.docs.On("Save", mock.Anything, mock.AnythingOfType("*document.Document")).Return(nil)

		resp, err := f.service.CreateDocument(context.Background(), CreateDocumentRequest{
			Kind:           document.KindInvoice,
			CompanyID:      f.companyID,
			CounterpartyID: uuid.New(),
			Lines: []LineInput{
				{ItemID: &itemID, Description: "widget", Quantity: decimal.NewFromInt(4), UnitPrice: decimal.NewFromInt(25), TaxCode: "STD"},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, "INV-A-000042", resp.Code)
		assert.Equal(t, 42, resp.Number)
		assert.True(t, resp.Net.Equal(decimal.RequireFromString("100.00")), "net: %s", resp.Net)
		assert.True(t, resp.TaxTotal.Equal(decimal.RequireFromString("21.00")), "tax: %s", resp.TaxTotal)
		assert.True(t, resp.GrandTotal.Equal(decimal.RequireFromString("121.00")), "total: %s", resp.GrandTotal)

		// invoices subtract stock in their default status
		stock := f.stockOf(t, itemID)
		assert.True(t, stock.OnHand.Equal(decimal.NewFromInt(-4)), "on hand: %s", stock.OnHand)
	})

	t.Run("fails without a covering period", func(t *testing.T) {
		f := newServiceFixture(t)
		f.periods.On("PeriodCovering", mock.Anything, f.companyID, mock.Anything).Return(nil, shared.ErrPeriodNotFound)

		_, err := f.service.CreateDocument(context.Background(), CreateDocumentRequest{
			Kind:           document.KindQuote,
			CompanyID:      f.companyID,
			CounterpartyID: uuid.New(),
		})
		assert.ErrorIs(t, err, shared.ErrPeriodNotFound)
		f.docs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("order reserves stock in its default status", func(t *testing.T) {
		f := newServiceFixture(t)
		itemID := uuid.New()

		f.periods.On("PeriodCovering", mock.Anything, f.companyID, mock.Anything).Return(f.period, nil)
		f.sequencer.On("NextCode", mock.Anything, document.KindOrder, f.period.ID, "A").Return(1, "ORD-A-000001", nil)
		f.docs.On("Save", mock.Anything, mock.Anything).Return(nil)

		_, err := f.service.CreateDocument(context.Background(), CreateDocumentRequest{
			Kind:           document.KindOrder,
			CompanyID:      f.companyID,
			CounterpartyID: uuid.New(),
			Lines: []LineInput{
				{ItemID: &itemID, Description: "widget", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(10)},
			},
		})
		require.NoError(t, err)

		stock := f.stockOf(t, itemID)
		assert.True(t, stock.Reserved.Equal(decimal.NewFromInt(3)), "reserved: %s", stock.Reserved)
		assert.True(t, stock.OnHand.IsZero())
	})
}

func TestUpdateDocument(t *testing.T) {
	t.Run("rejects a company change", func(t *testing.T) {
		f := newServiceFixture(t)
		doc := f.storedDocument(t, document.KindQuote, 10)
		f.docs.On("FindByRef", mock.Anything, doc.Ref()).Return(doc, nil)
		f.periods.On("PeriodCovering", mock.Anything, mock.Anything, mock.Anything).Return(f.period, nil)

		other := uuid.New()
		_, err := f.service.UpdateDocument(context.Background(), doc.Ref(), UpdateDocumentRequest{CompanyID: &other})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "COMPANY_IMMUTABLE", domainErr.Code)
		f.docs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects locked fields on a closed document", func(t *testing.T) {
		f := newServiceFixture(t)
		doc := f.storedDocument(t, document.KindQuote, 12) // Rejected, not editable
		f.docs.On("FindByRef", mock.Anything, doc.Ref()).Return(doc, nil)
		f.periods.On("PeriodCovering", mock.Anything, mock.Anything, mock.Anything).Return(f.period, nil)

		other := "B"
		_, err := f.service.UpdateDocument(context.Background(), doc.Ref(), UpdateDocumentRequest{Series: &other})
		assert.ErrorIs(t, err, shared.ErrNonEditableDocument)
		f.docs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("quantity edit adjusts stock by the delta", func(t *testing.T) {
		f := newServiceFixture(t)
		itemID := uuid.New()
		line := testLine(t, itemID, "5", "10")
		doc := f.storedDocument(t, document.KindInvoice, 40, line)

		// seed the effect of the stored document
		record, err := f.stockRepo.FindOrCreate(context.Background(), f.warehouse, itemID)
		require.NoError(t, err)
		record.OnHand = decimal.NewFromInt(-5)

		f.docs.On("FindByRef", mock.Anything, doc.Ref()).Return(doc, nil)
		f.periods.On("PeriodCovering", mock.Anything, mock.Anything, mock.Anything).Return(f.period, nil)
		f.docs.On("Save", mock.Anything, mock.Anything).Return(nil)

		lineID := doc.Lines[0].ID
		_, err = f.service.UpdateDocument(context.Background(), doc.Ref(), UpdateDocumentRequest{
			Lines: []LineInput{
				{ID: &lineID, ItemID: &itemID, Description: "widget", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(10)},
			},
		})
		require.NoError(t, err)

		stock := f.stockOf(t, itemID)
		assert.True(t, stock.OnHand.Equal(decimal.NewFromInt(-3)), "on hand: %s", stock.OnHand)
	})

	t.Run("series change renumbers through the sequencer", func(t *testing.T) {
		f := newServiceFixture(t)
		doc := f.storedDocument(t, document.KindQuote, 10)
		f.docs.On("FindByRef", mock.Anything, doc.Ref()).Return(doc, nil)
		f.periods.On("PeriodCovering", mock.Anything, mock.Anything, mock.Anything).Return(f.period, nil)
		f.sequencer.On("NextCode", mock.Anything, document.KindQuote, f.period.ID, "B").Return(1, "QUO-B-000001", nil)
		f.docs.On("Save", mock.Anything, mock.Anything).Return(nil)

		series := "B"
		resp, err := f.service.UpdateDocument(context.Background(), doc.Ref(), UpdateDocumentRequest{Series: &series})
		require.NoError(t, err)

		assert.Equal(t, "QUO-B-000001", resp.Code)
		assert.Equal(t, 1, resp.Number)
	})

	t.Run("date move within the period keeps the number", func(t *testing.T) {
		f := newServiceFixture(t)
		doc := f.storedDocument(t, document.KindQuote, 10)
		f.docs.On("FindByRef", mock.Anything, doc.Ref()).Return(doc, nil)
		f.periods.On("PeriodCovering", mock.Anything, mock.Anything, mock.Anything).Return(f.period, nil)
		f.docs.On("Save", mock.Anything, mock.Anything).Return(nil)

		date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
		resp, err := f.service.UpdateDocument(context.Background(), doc.Ref(), UpdateDocumentRequest{Date: &date})
		require.NoError(t, err)

		assert.Equal(t, 7, resp.Number)
		f.sequencer.AssertNotCalled(t, "NextCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("date move into another period renumbers", func(t *testing.T) {
		f := newServiceFixture(t)
		doc := f.storedDocument(t, document.KindQuote, 10)

		next := &document.Period{
			ID:        uuid.New(),
			CompanyID: f.companyID,
			Name:      "2027",
			Start:     time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
			End:       time.Date(2027, 12, 31, 23, 59, 59, 0, time.UTC),
			Open:      true,
		}
		f.docs.On("FindByRef", mock.Anything, doc.Ref()).Return(doc, nil)
		f.periods.On("PeriodCovering", mock.Anything, mock.Anything, mock.Anything).Return(next, nil)
		f.sequencer.On("NextCode", mock.Anything, document.KindQuote, next.ID, "A").Return(1, "QUO-A-000001", nil)
		f.docs.On("Save", mock.Anything, mock.Anything).Return(nil)

		date := time.Date(2027, 2, 1, 0, 0, 0, 0, time.UTC)
		resp, err := f.service.UpdateDocument(context.Background(), doc.Ref(), UpdateDocumentRequest{Date: &date})
		require.NoError(t, err)

		assert.Equal(t, 1, resp.Number)
		assert.Equal(t, "QUO-A-000001", resp.Code)
		assert.Equal(t, next.ID, *doc.PeriodID)
	})

	t.Run("external handler can veto the update", func(t *testing.T) {
		f := newServiceFixture(t)
		doc := f.storedDocument(t, document.KindQuote, 10)
		f.docs.On("FindByRef", mock.Anything, doc.Ref()).Return(doc, nil)
		f.periods.On("PeriodCovering", mock.Anything, mock.Anything, mock.Anything).Return(f.period, nil)

		veto := shared.NewDomainError("VETO", "not today")
		f.service.RegisterChangeHandler(document.FieldCounterparty, func(ctx context.Context, d *document.Document, previous any) shared.ChangeResult {
			return shared.Reject(veto)
		})

		other := uuid.New()
		_, err := f.service.UpdateDocument(context.Background(), doc.Ref(), UpdateDocumentRequest{CounterpartyID: &other})
		assert.ErrorIs(t, err, veto)
		f.docs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
