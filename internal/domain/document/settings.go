package document

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Settings carries the document-core configuration: rounding precision,
// defaults stamped by Clear, and the behaviour switches of the workflow.
type Settings struct {
	// Decimals is the monetary rounding precision, also used as the
	// tolerance exponent by the totals invariant check.
	Decimals int32
	// BaseCurrencyDecimals is the precision of the base-currency total.
	BaseCurrencyDecimals int32

	DefaultSeries      string
	DefaultWarehouseID uuid.UUID
	DefaultCurrency    string
	DefaultPaymentTerm uuid.UUID
	DefaultTaxCode     string
	DefaultCompanyID   uuid.UUID

	// GenerationEnabled globally toggles successor-document generation
	// on status transitions.
	GenerationEnabled bool

	// UnlockedFields may still change while a document's status is
	// non-editable.
	UnlockedFields []TrackedField
}

// DefaultSettings returns the stock configuration used when nothing is
// configured: two monetary decimals, five base-currency decimals, and
// the customary unlocked fields of a closed document.
func DefaultSettings() Settings {
	return Settings{
		Decimals:             2,
		BaseCurrencyDecimals: 5,
		DefaultSeries:        "A",
		DefaultCurrency:      "EUR",
		GenerationEnabled:    true,
		UnlockedFields: []TrackedField{
			FieldStatus,
			FieldEmailSent,
			FieldAttachments,
			FieldPaid,
		},
	}
}

// FieldUnlocked reports whether a field may change on a non-editable
// document
func (s Settings) FieldUnlocked(field TrackedField) bool {
	for _, unlocked := range s.UnlockedFields {
		if unlocked == field {
			return true
		}
	}
	return false
}

// one is the neutral exchange rate
var one = decimal.NewFromInt(1)
