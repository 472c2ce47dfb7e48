package document

import (
	"testing"
	"time"

	"github.com/erp/docflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings() Settings {
	settings := DefaultSettings()
	settings.DefaultWarehouseID = uuid.New()
	settings.DefaultPaymentTerm = uuid.New()
	settings.DefaultCompanyID = uuid.New()
	return settings
}

func newTestDocument(t *testing.T, kind DocumentKind) *Document {
	doc, err := NewDocument(kind, testSettings(), DefaultStatusSet())
	require.NoError(t, err)
	doc.CounterpartyID = uuid.New()
	return doc
}

func testPeriod(companyID uuid.UUID, year int) *Period {
	return &Period{
		ID:        uuid.New(),
		CompanyID: companyID,
		Name:      "FY",
		Start:     time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
		End:       time.Date(year, 12, 31, 23, 59, 59, 0, time.UTC),
		Open:      true,
	}
}

func TestNewDocument(t *testing.T) {
	doc := newTestDocument(t, KindOrder)

	assert.Equal(t, KindOrder, doc.Kind)
	assert.Equal(t, 1, doc.Number)
	assert.Equal(t, "A", doc.Series)
	assert.Equal(t, 20, doc.StatusID)
	assert.True(t, doc.Editable)
	assert.True(t, doc.GrandTotal.IsZero())
	assert.True(t, doc.ExchangeRate.Equal(decimal.NewFromInt(1)))
	assert.Empty(t, doc.Lines)
	assert.Len(t, doc.GetDomainEvents(), 1)
}

func TestNewDocument_UnknownKind(t *testing.T) {
	_, err := NewDocument(DocumentKind("MEMO"), testSettings(), DefaultStatusSet())
	assert.Error(t, err)
}

func TestDocument_Clear(t *testing.T) {
	doc := newTestDocument(t, KindInvoice)
	doc.Number = 42
	doc.Notes = "pending review"
	doc.GrandTotal = decimal.NewFromInt(500)
	doc.AttachmentCount = 3

	require.NoError(t, doc.Clear(testSettings(), DefaultStatusSet()))

	assert.Equal(t, 1, doc.Number)
	assert.Empty(t, doc.Notes)
	assert.True(t, doc.GrandTotal.IsZero())
	assert.Zero(t, doc.AttachmentCount)
	assert.Equal(t, 40, doc.StatusID)
}

func TestDocument_SetDate(t *testing.T) {
	doc := newTestDocument(t, KindInvoice)
	period := testPeriod(doc.CompanyID, 2026)

	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, doc.SetDate(date, "09:30:00", period))
	assert.Equal(t, date, doc.Date)
	assert.Equal(t, "09:30:00", doc.Hour)
	require.NotNil(t, doc.PeriodID)
	assert.Equal(t, period.ID, *doc.PeriodID)
}

func TestDocument_SetDate_NoPeriod(t *testing.T) {
	doc := newTestDocument(t, KindInvoice)
	err := doc.SetDate(time.Now(), "", nil)
	assert.ErrorIs(t, err, shared.ErrPeriodNotFound)
}

func TestDocument_SetDate_OutsidePeriod(t *testing.T) {
	doc := newTestDocument(t, KindInvoice)
	period := testPeriod(doc.CompanyID, 2026)
	err := doc.SetDate(time.Date(2027, 1, 2, 0, 0, 0, 0, time.UTC), "", period)
	assert.ErrorIs(t, err, shared.ErrDateOutOfRange)
}

func TestDocument_CascadeDiscount(t *testing.T) {
	doc := newTestDocument(t, KindQuote)
	doc.Discount1 = decimal.NewFromInt(10)
	doc.Discount2 = decimal.NewFromInt(20)

	assert.True(t, doc.CascadeDiscount().Equal(decimal.RequireFromString("0.72")),
		"got %s", doc.CascadeDiscount())
}

func TestDocument_Validate(t *testing.T) {
	settings := testSettings()

	t.Run("number below one", func(t *testing.T) {
		doc := newTestDocument(t, KindInvoice)
		doc.Number = 0
		err := doc.Validate(settings, nil, false)
		assert.ErrorIs(t, err, shared.ErrInvalidNumber)
	})

	t.Run("date outside period", func(t *testing.T) {
		doc := newTestDocument(t, KindInvoice)
		period := testPeriod(doc.CompanyID, 2020)
		doc.Date = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		err := doc.Validate(settings, period, false)
		assert.ErrorIs(t, err, shared.ErrDateOutOfRange)
	})

	t.Run("date outside period tolerated while date is changing", func(t *testing.T) {
		doc := newTestDocument(t, KindInvoice)
		period := testPeriod(doc.CompanyID, 2020)
		doc.Date = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		assert.NoError(t, doc.Validate(settings, period, true))
	})

	t.Run("totals invariant", func(t *testing.T) {
		doc := newTestDocument(t, KindInvoice)
		doc.Net = decimal.NewFromInt(100)
		doc.TaxTotal = decimal.NewFromInt(21)
		doc.GrandTotal = decimal.NewFromInt(500)
		err := doc.Validate(settings, nil, false)
		assert.ErrorIs(t, err, shared.ErrBadTotal)
	})

	t.Run("recomputes base currency total", func(t *testing.T) {
		doc := newTestDocument(t, KindInvoice)
		doc.Net = decimal.NewFromInt(100)
		doc.TaxTotal = decimal.NewFromInt(21)
		doc.GrandTotal = decimal.NewFromInt(121)
		doc.ExchangeRate = decimal.RequireFromString("1.1")
		require.NoError(t, doc.Validate(settings, nil, false))
		assert.True(t, doc.GrandTotalBase.Equal(decimal.RequireFromString("110")),
			"got %s", doc.GrandTotalBase)
	})

	t.Run("trims and escapes notes", func(t *testing.T) {
		doc := newTestDocument(t, KindInvoice)
		doc.Notes = "  urgent <b>order</b>  "
		require.NoError(t, doc.Validate(settings, nil, false))
		assert.Equal(t, "urgent &lt;b&gt;order&lt;/b&gt;", doc.Notes)
	})
}

func TestDocument_Lines(t *testing.T) {
	settings := testSettings()
	doc := newTestDocument(t, KindOrder)
	itemID := uuid.New()

	line, err := doc.AddLine(&itemID, "Widget", decimal.NewFromInt(5), decimal.NewFromInt(10), settings)
	require.NoError(t, err)
	assert.Equal(t, 1, line.Position)
	assert.True(t, line.Net.Equal(decimal.NewFromInt(50)))

	assert.Equal(t, line, doc.GetLine(line.ID))
	assert.Nil(t, doc.GetLine(uuid.New()))

	require.NoError(t, doc.RemoveLine(line.ID))
	assert.Empty(t, doc.Lines)
	assert.Error(t, doc.RemoveLine(line.ID))
}
