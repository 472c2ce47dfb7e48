package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/erp/docflow/internal/domain/document"
	"github.com/erp/docflow/internal/domain/finance"
	"github.com/erp/docflow/internal/domain/shared"
)

// entryRow is the persistence model of a posted ledger entry. The
// double-entry breakdown itself lives outside this core; the row only
// records what was posted, for what, and whether it may be retracted.
type entryRow struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SourceType string          `gorm:"size:20;not null;index:idx_entries_source"`
	SourceID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_entries_source"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	EntryDate  time.Time       `gorm:"not null"`
	Editable   bool            `gorm:"not null;default:true"`
	CreatedAt  time.Time
}

// TableName returns the table name for GORM
func (entryRow) TableName() string {
	return "accounting_entries"
}

// GormLedgerPoster implements finance.AccountingPoster against the
// accounting_entries table.
type GormLedgerPoster struct {
	db *gorm.DB
}

// NewGormLedgerPoster creates a new GormLedgerPoster
func NewGormLedgerPoster(db *gorm.DB) *GormLedgerPoster {
	return &GormLedgerPoster{db: db}
}

// PostInvoice creates the ledger entry for an invoice
func (p *GormLedgerPoster) PostInvoice(ctx context.Context, invoice *document.Document) (uuid.UUID, error) {
	row := entryRow{
		ID:         uuid.New(),
		SourceType: "invoice",
		SourceID:   invoice.ID,
		Amount:     invoice.GrandTotal,
		EntryDate:  invoice.Date,
		Editable:   true,
	}
	if err := conn(ctx, p.db).Create(&row).Error; err != nil {
		return uuid.Nil, err
	}
	return row.ID, nil
}

// PostPayment creates the ledger entry for a payment
func (p *GormLedgerPoster) PostPayment(ctx context.Context, payment *finance.Payment) (uuid.UUID, error) {
	row := entryRow{
		ID:         uuid.New(),
		SourceType: "payment",
		SourceID:   payment.ID,
		Amount:     payment.Amount,
		EntryDate:  payment.PaidAt,
		Editable:   true,
	}
	if err := conn(ctx, p.db).Create(&row).Error; err != nil {
		return uuid.Nil, err
	}
	return row.ID, nil
}

// RetractEntry removes a previously posted entry. A locked entry is
// reported through ErrCantRemoveAccountingEntry.
func (p *GormLedgerPoster) RetractEntry(ctx context.Context, entryID uuid.UUID) error {
	editable, err := p.EntryEditable(ctx, entryID)
	if err != nil {
		return err
	}
	if !editable {
		return shared.ErrCantRemoveAccountingEntry
	}

	result := conn(ctx, p.db).Where("id = ?", entryID).Delete(&entryRow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// EntryEditable reports whether an entry may still be retracted
func (p *GormLedgerPoster) EntryEditable(ctx context.Context, entryID uuid.UUID) (bool, error) {
	var row entryRow
	err := conn(ctx, p.db).Select("editable").Where("id = ?", entryID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, shared.ErrNotFound
		}
		return false, err
	}
	return row.Editable, nil
}
