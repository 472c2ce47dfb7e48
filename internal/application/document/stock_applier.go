package document

import (
	"context"

	"github.com/erp/docflow/internal/domain/document"
	"github.com/erp/docflow/internal/domain/inventory"
	"github.com/erp/docflow/internal/domain/shared"
)

// StockApplier translates line-level stock snapshots into adjustments on
// warehouse stock records. Every edit goes through the same two steps:
// the previous snapshot is reversed, then the new one is applied, so a
// record is never double-counted.
type StockApplier struct {
	stock inventory.StockRepository
	items inventory.ItemPolicy
}

// NewStockApplier creates a new StockApplier
func NewStockApplier(stock inventory.StockRepository, items inventory.ItemPolicy) *StockApplier {
	return &StockApplier{stock: stock, items: items}
}

// Apply applies a line snapshot's stock effect
func (a *StockApplier) Apply(ctx context.Context, snap document.StockSnapshot) error {
	if snap.ItemID == nil || snap.StockMode == inventory.StockModeNone {
		return nil
	}

	record, err := a.stock.FindOrCreate(ctx, snap.WarehouseID, *snap.ItemID)
	if err != nil {
		return err
	}

	inventory.Adjust(record, snap.StockMode, snap.Quantity, snap.ServedQuantity)

	if err := a.checkNegativeStock(ctx, snap, record); err != nil {
		return err
	}
	return a.stock.Save(ctx, record)
}

// Reverse undoes a previously applied line snapshot
func (a *StockApplier) Reverse(ctx context.Context, snap document.StockSnapshot) error {
	if snap.ItemID == nil || snap.StockMode == inventory.StockModeNone {
		return nil
	}

	record, err := a.stock.FindOrCreate(ctx, snap.WarehouseID, *snap.ItemID)
	if err != nil {
		return err
	}

	inventory.Reverse(record, snap.StockMode, snap.Quantity, snap.ServedQuantity)
	return a.stock.Save(ctx, record)
}

// Replace reverses the old snapshot and applies the new one. Either side
// may be empty (no item or no stock mode), which turns the call into a
// plain apply or reverse.
func (a *StockApplier) Replace(ctx context.Context, before, after document.StockSnapshot) error {
	if err := a.Reverse(ctx, before); err != nil {
		return err
	}
	return a.Apply(ctx, after)
}

// checkNegativeStock rejects adjustments that would overdraw an item
// that is not configured to allow negative stock. Only modes that take
// physical stock out can overdraw.
func (a *StockApplier) checkNegativeStock(ctx context.Context, snap document.StockSnapshot, record *inventory.StockRecord) error {
	if snap.StockMode != inventory.StockModeSubtract && snap.StockMode != inventory.StockModeReserve {
		return nil
	}
	if !record.Available().IsNegative() {
		return nil
	}

	allowed, err := a.items.AllowsNegativeStock(ctx, *snap.ItemID)
	if err != nil {
		return err
	}
	if !allowed {
		return shared.ErrInsufficientStock
	}
	return nil
}
