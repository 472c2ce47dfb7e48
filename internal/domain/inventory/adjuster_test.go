package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecord(t *testing.T) *StockRecord {
	record, err := NewStockRecord(uuid.New(), uuid.New())
	require.NoError(t, err)
	return record
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestStockMode_IsValid(t *testing.T) {
	tests := []struct {
		mode    StockMode
		isValid bool
	}{
		{StockModeNone, true},
		{StockModeAdd, true},
		{StockModeSubtract, true},
		{StockModePendingReceive, true},
		{StockModeReserve, true},
		{StockMode(3), false},
		{StockMode(-3), false},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.mode.IsValid())
		})
	}
}

func TestAdjust_Modes(t *testing.T) {
	tests := []struct {
		name           string
		mode           StockMode
		quantity       string
		served         string
		onHand         string
		reserved       string
		pendingReceive string
	}{
		{"add moves on-hand up", StockModeAdd, "5", "0", "5", "0", "0"},
		{"subtract moves on-hand down", StockModeSubtract, "5", "0", "-5", "0", "0"},
		{"served portion does not move stock", StockModeAdd, "10", "4", "6", "0", "0"},
		{"fully served line has no effect", StockModeSubtract, "10", "10", "0", "0", "0"},
		{"pending receive", StockModePendingReceive, "7", "0", "0", "0", "7"},
		{"reserve", StockModeReserve, "3", "0", "0", "3", "0"},
		{"none leaves everything untouched", StockModeNone, "9", "0", "0", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := newTestRecord(t)
			Adjust(record, tt.mode, dec(tt.quantity), dec(tt.served))
			assert.True(t, record.OnHand.Equal(dec(tt.onHand)), "on hand: got %s", record.OnHand)
			assert.True(t, record.Reserved.Equal(dec(tt.reserved)), "reserved: got %s", record.Reserved)
			assert.True(t, record.PendingReceive.Equal(dec(tt.pendingReceive)), "pending: got %s", record.PendingReceive)
		})
	}
}

func TestAdjust_ClampsServedOnNegativeCorrection(t *testing.T) {
	// A correction of -5 cannot "serve" less than it removes: served is
	// clamped to the quantity delta and the movement nets to zero.
	record := newTestRecord(t)
	Adjust(record, StockModeAdd, dec("-5"), dec("-8"))
	assert.True(t, record.OnHand.IsZero(), "got %s", record.OnHand)

	// Served above the negative quantity delta is kept as-is.
	record = newTestRecord(t)
	Adjust(record, StockModeAdd, dec("-5"), dec("-2"))
	assert.True(t, record.OnHand.Equal(dec("-3")), "got %s", record.OnHand)
}

func TestReverse_RoundTrip(t *testing.T) {
	modes := []StockMode{StockModeAdd, StockModeSubtract, StockModePendingReceive, StockModeReserve}
	for _, mode := range modes {
		t.Run(mode.String(), func(t *testing.T) {
			record := newTestRecord(t)
			record.OnHand = dec("12")
			record.Reserved = dec("2")
			record.PendingReceive = dec("1")

			Adjust(record, mode, dec("4"), dec("1"))
			Reverse(record, mode, dec("4"), dec("1"))

			assert.True(t, record.OnHand.Equal(dec("12")))
			assert.True(t, record.Reserved.Equal(dec("2")))
			assert.True(t, record.PendingReceive.Equal(dec("1")))
		})
	}
}

func TestReverse_RoundTripWithClampedServed(t *testing.T) {
	// The clamp must be replayed on reversal, otherwise undoing a
	// clamped negative correction would drift the record.
	record := newTestRecord(t)
	Adjust(record, StockModeSubtract, dec("-6"), dec("-9"))
	Reverse(record, StockModeSubtract, dec("-6"), dec("-9"))
	assert.True(t, record.OnHand.IsZero(), "got %s", record.OnHand)
}

func TestReverse_RoundTripServedExceedsQuantity(t *testing.T) {
	// Editing a partially-generated line's quantity below its served
	// amount leaves served > quantity; the reversal must negate the
	// same effective delta the application produced, not re-clamp the
	// negated pair.
	for _, mode := range []StockMode{StockModeAdd, StockModeSubtract, StockModePendingReceive, StockModeReserve} {
		t.Run(mode.String(), func(t *testing.T) {
			record := newTestRecord(t)
			Adjust(record, mode, dec("2"), dec("4"))
			Reverse(record, mode, dec("2"), dec("4"))

			assert.True(t, record.OnHand.IsZero(), "on hand: %s", record.OnHand)
			assert.True(t, record.Reserved.IsZero(), "reserved: %s", record.Reserved)
			assert.True(t, record.PendingReceive.IsZero(), "pending: %s", record.PendingReceive)
		})
	}
}

func TestAdjust_EditSequence(t *testing.T) {
	// Insert qty 5, edit to qty 3, delete: successive undo/apply pairs
	// leave the record exactly where each step says it should be.
	record := newTestRecord(t)

	Adjust(record, StockModeAdd, dec("5"), dec("0"))
	assert.True(t, record.OnHand.Equal(dec("5")))

	Reverse(record, StockModeAdd, dec("5"), dec("0"))
	Adjust(record, StockModeAdd, dec("3"), dec("0"))
	assert.True(t, record.OnHand.Equal(dec("3")))

	Reverse(record, StockModeAdd, dec("3"), dec("0"))
	assert.True(t, record.OnHand.IsZero())
}

func TestNewStockRecord_Validation(t *testing.T) {
	_, err := NewStockRecord(uuid.Nil, uuid.New())
	assert.Error(t, err)

	_, err = NewStockRecord(uuid.New(), uuid.Nil)
	assert.Error(t, err)

	record, err := NewStockRecord(uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.True(t, record.OnHand.IsZero())
	assert.True(t, record.Reserved.IsZero())
	assert.True(t, record.PendingReceive.IsZero())
	assert.True(t, record.Available().IsZero())
}
