package document

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Period is a company's accounting period. Document dates must fall
// inside the period the document is assigned to.
type Period struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	Name      string
	Start     time.Time
	End       time.Time
	Open      bool
}

// Covers reports whether the date falls inside the period
func (p *Period) Covers(date time.Time) bool {
	return !date.Before(p.Start) && !date.After(p.End)
}

// PeriodResolver resolves the accounting period covering a date for a
// company. Implementations return shared.ErrPeriodNotFound when no open
// period covers the date.
type PeriodResolver interface {
	PeriodCovering(ctx context.Context, companyID uuid.UUID, date time.Time) (*Period, error)
}

// Sequencer hands out the next sequential number and human-readable code
// of a (kind, period, series) sequence.
type Sequencer interface {
	NextCode(ctx context.Context, kind DocumentKind, periodID uuid.UUID, series string) (int, string, error)
}

// Tax is a configured tax code with its rate pair
type Tax struct {
	Code      string
	Rate      decimal.Decimal
	Surcharge decimal.Decimal
}

// TaxLookup resolves tax codes to their rates
type TaxLookup interface {
	TaxByCode(ctx context.Context, code string) (*Tax, error)
}

// AuditSink records what happened to a model, for diagnostics and audit
// trails. Implementations must never fail the calling operation.
type AuditSink interface {
	Record(ctx context.Context, eventKind, modelType string, modelID uuid.UUID, description string, snapshot map[string]any)
}
