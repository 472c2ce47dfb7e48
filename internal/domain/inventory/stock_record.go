package inventory

import (
	"github.com/erp/docflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockRecord tracks the stock position of one item in one warehouse.
// The composite identifier is WarehouseID + ItemID. It is mutated only
// through the adjuster functions in this package.
type StockRecord struct {
	shared.BaseEntity
	WarehouseID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_record_warehouse_item,priority:1"`
	ItemID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_record_warehouse_item,priority:2"`
	OnHand         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Physical quantity in the warehouse
	Reserved       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Committed to open sales documents
	PendingReceive decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Expected from open purchase documents
}

// TableName returns the table name for GORM
func (StockRecord) TableName() string {
	return "stock_records"
}

// NewStockRecord creates an empty stock record for a warehouse-item pair
func NewStockRecord(warehouseID, itemID uuid.UUID) (*StockRecord, error) {
	if warehouseID == uuid.Nil {
		return nil, shared.ErrWarehouseNotFound
	}
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}

	return &StockRecord{
		BaseEntity:     shared.NewBaseEntity(),
		WarehouseID:    warehouseID,
		ItemID:         itemID,
		OnHand:         decimal.Zero,
		Reserved:       decimal.Zero,
		PendingReceive: decimal.Zero,
	}, nil
}

// Available returns the quantity that can still be promised to new
// documents: on hand minus what is already reserved.
func (r *StockRecord) Available() decimal.Decimal {
	return r.OnHand.Sub(r.Reserved)
}
