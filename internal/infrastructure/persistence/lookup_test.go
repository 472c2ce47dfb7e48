package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/docflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormPeriodResolver_PeriodCovering(t *testing.T) {
	t.Run("resolves open period covering the date", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		resolver := NewGormPeriodResolver(db)

		companyID := uuid.New()
		periodID := uuid.New()
		date := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT \* FROM "periods" WHERE company_id = \$1 AND open = \$2 AND start_date <= \$3 AND end_date >= \$4`).
			WithArgs(companyID, true, date, date, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "name", "start_date", "end_date", "open"}).
				AddRow(periodID, companyID, "2026",
					time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
					time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), true))

		period, err := resolver.PeriodCovering(context.Background(), companyID, date)

		require.NoError(t, err)
		assert.Equal(t, periodID, period.ID)
		assert.True(t, period.Covers(date))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrPeriodNotFound when no period covers the date", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		resolver := NewGormPeriodResolver(db)

		companyID := uuid.New()
		date := time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT \* FROM "periods"`).
			WithArgs(companyID, true, date, date, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "name", "start_date", "end_date", "open"}))

		_, err := resolver.PeriodCovering(context.Background(), companyID, date)

		assert.ErrorIs(t, err, shared.ErrPeriodNotFound)
	})
}

func TestGormTaxRepository_TaxByCode(t *testing.T) {
	t.Run("resolves configured tax code", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormTaxRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "taxes" WHERE code = \$1`).
			WithArgs("VAT21", 1).
			WillReturnRows(sqlmock.NewRows([]string{"code", "rate", "surcharge"}).
				AddRow("VAT21", decimal.RequireFromString("21"), decimal.RequireFromString("5.2")))

		tax, err := repo.TaxByCode(context.Background(), "VAT21")

		require.NoError(t, err)
		assert.Equal(t, "VAT21", tax.Code)
		assert.True(t, tax.Rate.Equal(decimal.RequireFromString("21")))
		assert.True(t, tax.Surcharge.Equal(decimal.RequireFromString("5.2")))
	})

	t.Run("returns ErrNotFound for unknown code", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormTaxRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "taxes" WHERE code = \$1`).
			WithArgs("NOPE", 1).
			WillReturnRows(sqlmock.NewRows([]string{"code", "rate", "surcharge"}))

		_, err := repo.TaxByCode(context.Background(), "NOPE")

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormSequencer_NextCode(t *testing.T) {
	t.Run("increments an existing sequence", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		sequencer := NewGormSequencer(db)

		periodID := uuid.New()
		seqID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "document_sequences" WHERE kind = \$1 AND period_id = \$2 AND series = \$3 .* FOR UPDATE`).
			WithArgs("INVOICE", periodID, "A", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "period_id", "series", "next_number"}).
				AddRow(seqID, "INVOICE", periodID, "A", 8))
		mock.ExpectExec(`UPDATE "document_sequences" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		number, code, err := sequencer.NextCode(context.Background(), "INVOICE", periodID, "A")

		require.NoError(t, err)
		assert.Equal(t, 8, number)
		assert.Equal(t, "INV-A-000008", code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
