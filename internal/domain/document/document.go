package document

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/erp/docflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Document is the aggregate root for a commercial document: the header
// plus its ordered lines. It owns the monetary aggregate fields and the
// lifecycle of its lines; stock effects and successor generation are
// driven from the outside through the workflow.
type Document struct {
	shared.BaseAggregateRoot

	Kind   DocumentKind
	Code   string // human-readable code, assigned by the sequencer
	Series string
	Number int // per-series sequential number

	CompanyID      uuid.UUID
	CounterpartyID uuid.UUID
	WarehouseID    uuid.UUID
	PeriodID       *uuid.UUID
	PaymentTermID  uuid.UUID

	CurrencyCode string
	ExchangeRate decimal.Decimal

	Date time.Time
	Hour string // wall-clock time of issue, "15:04:05"

	StatusID int
	Editable bool

	Discount1 decimal.Decimal // first header-level cascade discount, percent
	Discount2 decimal.Decimal // second header-level cascade discount, percent

	Net               decimal.Decimal
	NetBeforeDiscount decimal.Decimal
	TaxTotal          decimal.Decimal
	WithholdingTotal  decimal.Decimal
	SurchargeTotal    decimal.Decimal
	SuppliedTotal     decimal.Decimal
	GrandTotal        decimal.Decimal
	GrandTotalBase    decimal.Decimal // grand total converted to the base currency

	Notes           string
	AttachmentCount int
	EmailSent       bool
	Paid            bool // invoices only, maintained by reconciliation

	// RectifiesID links a refund invoice to the invoice it rectifies.
	RectifiesID *uuid.UUID
	// AccountingEntryID points at the ledger entry posted for this
	// invoice, when one exists.
	AccountingEntryID *uuid.UUID

	Lines []DocumentLine

	previous Snapshot `gorm:"-"`
}

// TableName returns the table name for GORM
func (Document) TableName() string {
	return "documents"
}

// NewDocument creates a document of the given kind, initialised to the
// configured defaults and the kind's default status.
func NewDocument(kind DocumentKind, settings Settings, statuses *StatusSet) (*Document, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", fmt.Sprintf("unknown document kind %q", kind))
	}

	doc := &Document{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Kind:              kind,
		Lines:             make([]DocumentLine, 0),
	}
	if err := doc.Clear(settings, statuses); err != nil {
		return nil, err
	}

	doc.AddDomainEvent(NewDocumentCreatedEvent(doc))
	return doc, nil
}

// Ref returns the typed reference of this document
func (d *Document) Ref() DocumentRef {
	return DocumentRef{Kind: d.Kind, ID: d.ID}
}

// Clear resets the header to its defaults: today's date, the configured
// default warehouse, series, payment term and currency, zero totals and
// sequence number 1.
func (d *Document) Clear(settings Settings, statuses *StatusSet) error {
	status, err := statuses.DefaultFor(d.Kind)
	if err != nil {
		return err
	}

	now := time.Now()
	d.Series = settings.DefaultSeries
	d.Number = 1
	d.Code = ""
	d.CompanyID = settings.DefaultCompanyID
	d.WarehouseID = settings.DefaultWarehouseID
	d.PaymentTermID = settings.DefaultPaymentTerm
	d.CurrencyCode = settings.DefaultCurrency
	d.ExchangeRate = one
	d.Date = now.Truncate(24 * time.Hour)
	d.Hour = now.Format("15:04:05")
	d.PeriodID = nil
	d.StatusID = status.ID
	d.Editable = status.Editable
	d.Discount1 = decimal.Zero
	d.Discount2 = decimal.Zero
	d.Net = decimal.Zero
	d.NetBeforeDiscount = decimal.Zero
	d.TaxTotal = decimal.Zero
	d.WithholdingTotal = decimal.Zero
	d.SurchargeTotal = decimal.Zero
	d.SuppliedTotal = decimal.Zero
	d.GrandTotal = decimal.Zero
	d.GrandTotalBase = decimal.Zero
	d.Notes = ""
	d.AttachmentCount = 0
	d.EmailSent = false
	d.Paid = false
	d.RectifiesID = nil
	d.AccountingEntryID = nil
	return nil
}

// SetDate moves the document to a new date and wall-clock time. The
// accounting period covering the date is resolved through the given
// period; callers obtain it from the PeriodResolver collaborator and a
// nil period fails with PERIOD_NOT_FOUND.
func (d *Document) SetDate(date time.Time, hour string, period *Period) error {
	if period == nil {
		return shared.ErrPeriodNotFound
	}
	if !period.Covers(date) {
		return shared.ErrDateOutOfRange
	}
	d.PeriodID = &period.ID
	d.Date = date
	if hour != "" {
		d.Hour = hour
	}
	d.Touch()
	return nil
}

// CascadeDiscount returns the compounded multiplier of the header's two
// discount slots: (1 - d1/100) * (1 - d2/100).
func (d *Document) CascadeDiscount() decimal.Decimal {
	return cascadeDiscount(d.Discount1, d.Discount2)
}

// AddLine appends a line to the document and returns it
func (d *Document) AddLine(itemID *uuid.UUID, description string, quantity, unitPrice decimal.Decimal, settings Settings) (*DocumentLine, error) {
	line, err := NewDocumentLine(d.ID, itemID, description, quantity, unitPrice, len(d.Lines)+1, settings)
	if err != nil {
		return nil, err
	}
	d.Lines = append(d.Lines, *line)
	d.Touch()
	return &d.Lines[len(d.Lines)-1], nil
}

// GetLine returns a line by its ID, or nil
func (d *Document) GetLine(lineID uuid.UUID) *DocumentLine {
	for idx := range d.Lines {
		if d.Lines[idx].ID == lineID {
			return &d.Lines[idx]
		}
	}
	return nil
}

// RemoveLine detaches a line from the document. The caller is
// responsible for reversing the line's stock effect first.
func (d *Document) RemoveLine(lineID uuid.UUID) error {
	for idx := range d.Lines {
		if d.Lines[idx].ID == lineID {
			d.Lines = append(d.Lines[:idx], d.Lines[idx+1:]...)
			d.Touch()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Document line not found")
}

// ApplyTotals stores a computed totals result on the header
func (d *Document) ApplyTotals(totals Totals, settings Settings) {
	d.Net = totals.Net
	d.NetBeforeDiscount = totals.NetBeforeDiscount
	d.TaxTotal = totals.Tax
	d.WithholdingTotal = totals.Withholding
	d.SurchargeTotal = totals.Surcharge
	d.SuppliedTotal = totals.Supplied
	d.GrandTotal = totals.GrandTotal
	d.GrandTotalBase = baseCurrencyTotal(totals.GrandTotal, d.ExchangeRate, settings)
	d.Touch()
}

// Validate checks the header before it is written: free text is trimmed
// and escaped, the sequence number must be positive, the date must fall
// inside the resolved accounting period (unless the date itself is the
// field being changed, in which case SetDate already re-resolved it),
// the base-currency total is recomputed, and the totals invariant must
// hold within the configured tolerance.
func (d *Document) Validate(settings Settings, period *Period, dateChanged bool) error {
	d.Notes = html.EscapeString(strings.TrimSpace(html.UnescapeString(d.Notes)))

	if d.Number < 1 {
		return shared.ErrInvalidNumber
	}
	if !dateChanged && period != nil && !period.Covers(d.Date) {
		return shared.ErrDateOutOfRange
	}

	d.GrandTotalBase = baseCurrencyTotal(d.GrandTotal, d.ExchangeRate, settings)

	if err := ValidateTotals(d, settings); err != nil {
		return err
	}
	return nil
}

// baseCurrencyTotal converts a grand total into the base currency at the
// document's exchange rate
func baseCurrencyTotal(grandTotal, exchangeRate decimal.Decimal, settings Settings) decimal.Decimal {
	if exchangeRate.IsZero() {
		return decimal.Zero
	}
	return grandTotal.Div(exchangeRate).Round(settings.BaseCurrencyDecimals)
}
