package document

import (
	"testing"

	"github.com/erp/docflow/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLine(t *testing.T, quantity, unitPrice string) *DocumentLine {
	itemID := uuid.New()
	line, err := NewDocumentLine(uuid.New(), &itemID, "Widget", decimal.RequireFromString(quantity), decimal.RequireFromString(unitPrice), 1, DefaultSettings())
	require.NoError(t, err)
	return line
}

func TestNewDocumentLine_Amounts(t *testing.T) {
	line := newTestLine(t, "5", "10")
	assert.True(t, line.NetBeforeDiscount.Equal(decimal.NewFromInt(50)))
	assert.True(t, line.Net.Equal(decimal.NewFromInt(50)))
}

func TestDocumentLine_Recalculate(t *testing.T) {
	tests := []struct {
		name              string
		quantity          string
		unitPrice         string
		discount1         string
		discount2         string
		netBeforeDiscount string
		net               string
	}{
		{"no discount", "10", "7.50", "0", "0", "75", "75"},
		{"single discount", "10", "10", "10", "0", "100", "90"},
		{"cascade discounts compound", "10", "10", "10", "20", "100", "72"},
		{"full discount", "4", "25", "100", "0", "100", "0"},
		{"rounding to two decimals", "3", "0.333", "0", "0", "1", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := newTestLine(t, tt.quantity, tt.unitPrice)
			line.Discount1 = decimal.RequireFromString(tt.discount1)
			line.Discount2 = decimal.RequireFromString(tt.discount2)
			line.Recalculate(DefaultSettings())

			assert.True(t, line.NetBeforeDiscount.Equal(decimal.RequireFromString(tt.netBeforeDiscount)),
				"net before discount: got %s", line.NetBeforeDiscount)
			assert.True(t, line.Net.Equal(decimal.RequireFromString(tt.net)),
				"net: got %s", line.Net)
		})
	}
}

func TestDocumentLine_CascadeDiscount(t *testing.T) {
	line := newTestLine(t, "1", "1")
	line.Discount1 = decimal.NewFromInt(10)
	line.Discount2 = decimal.NewFromInt(20)
	assert.True(t, line.CascadeDiscount().Equal(decimal.RequireFromString("0.72")))
}

func TestDocumentLine_Validate_ClampsNegativeServed(t *testing.T) {
	line := newTestLine(t, "5", "10")
	line.ServedQuantity = decimal.NewFromInt(-3)
	require.NoError(t, line.Validate(DefaultSettings()))
	assert.True(t, line.ServedQuantity.IsZero())

	// A negative quantity keeps its negative served portion.
	line = newTestLine(t, "-5", "10")
	line.ServedQuantity = decimal.NewFromInt(-3)
	require.NoError(t, line.Validate(DefaultSettings()))
	assert.True(t, line.ServedQuantity.Equal(decimal.NewFromInt(-3)))
}

func TestDocumentLine_Unserved(t *testing.T) {
	line := newTestLine(t, "10", "1")
	assert.True(t, line.UnservedQuantity().Equal(decimal.NewFromInt(10)))
	assert.False(t, line.FullyServed())

	line.ServedQuantity = decimal.NewFromInt(10)
	assert.True(t, line.UnservedQuantity().IsZero())
	assert.True(t, line.FullyServed())
}

func TestDocumentLine_Clear(t *testing.T) {
	line := newTestLine(t, "5", "10")
	line.StockMode = inventory.StockModeSubtract
	line.Discount1 = decimal.NewFromInt(15)

	tax := &Tax{Code: "STD", Rate: decimal.NewFromInt(21), Surcharge: decimal.RequireFromString("5.2")}
	line.Clear(DefaultSettings(), tax)

	assert.True(t, line.Quantity.IsZero())
	assert.True(t, line.UnitPrice.IsZero())
	assert.True(t, line.Discount1.IsZero())
	assert.Equal(t, inventory.StockModeNone, line.StockMode)
	assert.True(t, line.TaxRate.Equal(decimal.NewFromInt(21)))
	assert.True(t, line.SurchargeRate.Equal(decimal.RequireFromString("5.2")))
	assert.True(t, line.Net.IsZero())
}

func TestDocumentLine_HasStockEffect(t *testing.T) {
	line := newTestLine(t, "5", "10")
	assert.False(t, line.HasStockEffect(), "mode none has no effect")

	line.StockMode = inventory.StockModeSubtract
	assert.True(t, line.HasStockEffect())

	line.ItemID = nil
	assert.False(t, line.HasStockEffect(), "free-text lines have no effect")
}
