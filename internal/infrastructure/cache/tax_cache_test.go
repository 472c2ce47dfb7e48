package cache

import (
	"context"
	"testing"
	"time"

	"github.com/erp/docflow/internal/domain/document"
	"github.com/erp/docflow/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingLookup counts how often the inner lookup is hit
type countingLookup struct {
	taxes map[string]*document.Tax
	calls int
}

func (l *countingLookup) TaxByCode(_ context.Context, code string) (*document.Tax, error) {
	l.calls++
	if tax, ok := l.taxes[code]; ok {
		return tax, nil
	}
	return nil, shared.ErrNotFound
}

func vat21() *document.Tax {
	return &document.Tax{
		Code:      "VAT21",
		Rate:      decimal.RequireFromString("21"),
		Surcharge: decimal.RequireFromString("5.2"),
	}
}

func TestInMemoryTaxCache(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		c := NewInMemoryTaxCache(time.Minute)
		require.NoError(t, c.Set(ctx, vat21()))

		got, err := c.Get(ctx, "VAT21")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.Rate.Equal(decimal.RequireFromString("21")))
	})

	t.Run("miss returns nil", func(t *testing.T) {
		c := NewInMemoryTaxCache(time.Minute)
		got, err := c.Get(ctx, "NOPE")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("expired entries are dropped", func(t *testing.T) {
		c := NewInMemoryTaxCache(time.Nanosecond)
		require.NoError(t, c.Set(ctx, vat21()))
		time.Sleep(time.Millisecond)

		got, err := c.Get(ctx, "VAT21")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("invalidate drops the code", func(t *testing.T) {
		c := NewInMemoryTaxCache(time.Minute)
		require.NoError(t, c.Set(ctx, vat21()))
		require.NoError(t, c.Invalidate(ctx, "VAT21"))

		got, err := c.Get(ctx, "VAT21")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("returned tax is a copy", func(t *testing.T) {
		c := NewInMemoryTaxCache(time.Minute)
		require.NoError(t, c.Set(ctx, vat21()))

		first, err := c.Get(ctx, "VAT21")
		require.NoError(t, err)
		first.Rate = decimal.Zero

		second, err := c.Get(ctx, "VAT21")
		require.NoError(t, err)
		assert.True(t, second.Rate.Equal(decimal.RequireFromString("21")))
	})
}

func TestCachedTaxLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("second lookup is served from cache", func(t *testing.T) {
		inner := &countingLookup{taxes: map[string]*document.Tax{"VAT21": vat21()}}
		lookup := NewCachedTaxLookup(inner, NewInMemoryTaxCache(time.Minute))

		for i := 0; i < 3; i++ {
			tax, err := lookup.TaxByCode(ctx, "VAT21")
			require.NoError(t, err)
			assert.Equal(t, "VAT21", tax.Code)
		}

		assert.Equal(t, 1, inner.calls)
	})

	t.Run("failures are not cached", func(t *testing.T) {
		inner := &countingLookup{taxes: map[string]*document.Tax{}}
		lookup := NewCachedTaxLookup(inner, NewInMemoryTaxCache(time.Minute))

		_, err := lookup.TaxByCode(ctx, "NOPE")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = lookup.TaxByCode(ctx, "NOPE")
		assert.ErrorIs(t, err, shared.ErrNotFound)

		assert.Equal(t, 2, inner.calls)
	})
}
