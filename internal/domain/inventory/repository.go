package inventory

import (
	"context"

	"github.com/google/uuid"
)

// StockRepository defines the interface for stock record persistence
type StockRepository interface {
	// FindByWarehouseAndItem finds the stock record for a warehouse-item
	// pair, returning shared.ErrNotFound when none exists
	FindByWarehouseAndItem(ctx context.Context, warehouseID, itemID uuid.UUID) (*StockRecord, error)

	// FindOrCreate finds the stock record for a warehouse-item pair,
	// creating an empty one when none exists
	FindOrCreate(ctx context.Context, warehouseID, itemID uuid.UUID) (*StockRecord, error)

	// FindByItem finds all stock records for an item across warehouses
	FindByItem(ctx context.Context, itemID uuid.UUID) ([]StockRecord, error)

	// Save creates or updates a stock record
	Save(ctx context.Context, record *StockRecord) error
}

// ItemPolicy exposes the stock-related policy flags of a catalog item.
// The catalog itself lives outside this core.
type ItemPolicy interface {
	// AllowsNegativeStock reports whether the item may be sold below
	// zero on-hand quantity
	AllowsNegativeStock(ctx context.Context, itemID uuid.UUID) (bool, error)
}
