package persistence

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// documentSequence is one (kind, period, series) counter row. It only
// exists in the persistence layer; the domain sees codes, not counters.
type documentSequence struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind       string    `gorm:"not null;uniqueIndex:idx_sequence_scope,priority:1"`
	PeriodID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sequence_scope,priority:2"`
	Series     string    `gorm:"not null;uniqueIndex:idx_sequence_scope,priority:3"`
	NextNumber int       `gorm:"not null;default:1"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (documentSequence) TableName() string {
	return "document_sequences"
}

// periodRow mirrors the accounting periods table
type periodRow struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"not null"`
	StartDate time.Time `gorm:"not null"`
	EndDate   time.Time `gorm:"not null"`
	Open      bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (periodRow) TableName() string {
	return "periods"
}

// taxRow mirrors the configured tax codes table
type taxRow struct {
	Code      string          `gorm:"primaryKey"`
	Rate      decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	Surcharge decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (taxRow) TableName() string {
	return "taxes"
}

// paymentTermRow mirrors the payment terms table
type paymentTermRow struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name            string     `gorm:"not null"`
	Installments    int        `gorm:"not null;default:1"`
	FirstDueDays    int        `gorm:"not null;default:0"`
	GapDays         int        `gorm:"not null;default:30"`
	PaymentMethodID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (paymentTermRow) TableName() string {
	return "payment_terms"
}

// itemRow carries the stock policy flags of catalog items. The catalog
// itself is managed outside this core; only the flags are read here.
type itemRow struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	AllowNegativeStock  bool      `gorm:"not null;default:false"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (itemRow) TableName() string {
	return "items"
}
