package document

import (
	"strings"
	"time"

	"github.com/erp/docflow/internal/domain/inventory"
	"github.com/erp/docflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// DocumentLine is one ordered line of a commercial document. Lines are
// owned exclusively by their header and cannot outlive it.
type DocumentLine struct {
	ID              uuid.UUID
	DocumentID      uuid.UUID
	ItemID          *uuid.UUID // nil for free-text lines with no stock effect
	Description     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	Discount1       decimal.Decimal // first cascade discount, percent
	Discount2       decimal.Decimal // second cascade discount, percent
	TaxRate         decimal.Decimal
	WithholdingRate decimal.Decimal
	SurchargeRate   decimal.Decimal
	NetBeforeDiscount decimal.Decimal
	Net             decimal.Decimal
	Supplied        bool // supplied amounts bypass tax and discounts
	StockMode       inventory.StockMode
	ServedQuantity  decimal.Decimal // portion already carried into a successor
	Position        int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName returns the table name for GORM
func (DocumentLine) TableName() string {
	return "document_lines"
}

// NewDocumentLine creates a line for a document with computed amounts
func NewDocumentLine(documentID uuid.UUID, itemID *uuid.UUID, description string, quantity, unitPrice decimal.Decimal, position int, settings Settings) (*DocumentLine, error) {
	if documentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DOCUMENT", "Document ID cannot be empty")
	}
	if itemID != nil && *itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}

	now := time.Now()
	line := &DocumentLine{
		ID:          uuid.New(),
		DocumentID:  documentID,
		ItemID:      itemID,
		Description: strings.TrimSpace(description),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Position:    position,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	line.Recalculate(settings)
	return line, nil
}

// Clear resets the line to its defaults: zero quantities and prices, no
// stock effect, and the rate pair of the configured default tax code.
func (l *DocumentLine) Clear(settings Settings, tax *Tax) {
	l.Quantity = decimal.Zero
	l.UnitPrice = decimal.Zero
	l.Discount1 = decimal.Zero
	l.Discount2 = decimal.Zero
	l.WithholdingRate = decimal.Zero
	l.ServedQuantity = decimal.Zero
	l.Supplied = false
	l.StockMode = inventory.StockModeNone
	if tax != nil {
		l.TaxRate = tax.Rate
		l.SurchargeRate = tax.Surcharge
	} else {
		l.TaxRate = decimal.Zero
		l.SurchargeRate = decimal.Zero
	}
	l.Recalculate(settings)
	l.UpdatedAt = time.Now()
}

// CascadeDiscount returns the compounded multiplier of the line's two
// discount slots: (1 - d1/100) * (1 - d2/100).
func (l *DocumentLine) CascadeDiscount() decimal.Decimal {
	return cascadeDiscount(l.Discount1, l.Discount2)
}

// Recalculate re-derives the line amounts from quantity, price and the
// discount cascade, rounded to the configured precision.
func (l *DocumentLine) Recalculate(settings Settings) {
	l.NetBeforeDiscount = l.UnitPrice.Mul(l.Quantity).Round(settings.Decimals)
	l.Net = l.UnitPrice.Mul(l.Quantity).Mul(l.CascadeDiscount()).Round(settings.Decimals)
	l.UpdatedAt = time.Now()
}

// Validate checks the line before it is written. A positive quantity
// with a negative served quantity is an inconsistency carried over from
// generation; served is clamped back to zero in that case.
func (l *DocumentLine) Validate(settings Settings) error {
	l.Description = strings.TrimSpace(l.Description)
	if !l.StockMode.IsValid() {
		return shared.NewDomainError("INVALID_STOCK_MODE", "Unknown stock accounting mode")
	}
	if !l.Quantity.IsNegative() && l.ServedQuantity.IsNegative() {
		l.ServedQuantity = decimal.Zero
	}
	l.Recalculate(settings)
	return nil
}

// UnservedQuantity returns the portion of the line not yet carried into
// a successor document
func (l *DocumentLine) UnservedQuantity() decimal.Decimal {
	return l.Quantity.Sub(l.ServedQuantity)
}

// FullyServed reports whether the whole line quantity has been carried
// into successors
func (l *DocumentLine) FullyServed() bool {
	return !l.UnservedQuantity().IsPositive()
}

// HasStockEffect reports whether saving the line touches a stock record
func (l *DocumentLine) HasStockEffect() bool {
	return l.ItemID != nil && l.StockMode != inventory.StockModeNone
}

// StockSnapshot captures the fields of a line that decide its stock
// effect, so an edit can reverse the previous effect before applying the
// new one.
type StockSnapshot struct {
	ItemID         *uuid.UUID
	WarehouseID    uuid.UUID
	StockMode      inventory.StockMode
	Quantity       decimal.Decimal
	ServedQuantity decimal.Decimal
}

// StockSnapshot returns the line's current stock-relevant state for the
// given warehouse
func (l *DocumentLine) StockSnapshot(warehouseID uuid.UUID) StockSnapshot {
	return StockSnapshot{
		ItemID:         l.ItemID,
		WarehouseID:    warehouseID,
		StockMode:      l.StockMode,
		Quantity:       l.Quantity,
		ServedQuantity: l.ServedQuantity,
	}
}

func cascadeDiscount(discounts ...decimal.Decimal) decimal.Decimal {
	multiplier := decimal.NewFromInt(1)
	for _, d := range discounts {
		multiplier = multiplier.Mul(decimal.NewFromInt(1).Sub(d.Div(oneHundred)))
	}
	return multiplier
}
