package persistence

import (
	"context"
	"errors"

	"github.com/erp/docflow/internal/domain/inventory"
	"github.com/erp/docflow/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockRepository implements StockRepository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// FindByWarehouseAndItem finds the stock record for a warehouse-item pair
func (r *GormStockRepository) FindByWarehouseAndItem(ctx context.Context, warehouseID, itemID uuid.UUID) (*inventory.StockRecord, error) {
	var record inventory.StockRecord
	if err := conn(ctx, r.db).WithContext(ctx).
		Where("warehouse_id = ? AND item_id = ?", warehouseID, itemID).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindOrCreate finds the stock record for a warehouse-item pair, creating
// an empty one when none exists. Inside a transaction the row is locked
// so concurrent adjustments serialize on it.
func (r *GormStockRepository) FindOrCreate(ctx context.Context, warehouseID, itemID uuid.UUID) (*inventory.StockRecord, error) {
	db := conn(ctx, r.db).WithContext(ctx)

	var record inventory.StockRecord
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("warehouse_id = ? AND item_id = ?", warehouseID, itemID).
		First(&record).Error
	if err == nil {
		return &record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh, err := inventory.NewStockRecord(warehouseID, itemID)
	if err != nil {
		return nil, err
	}
	// A concurrent insert of the same pair loses against the unique
	// index; re-read in that case.
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(fresh).Error; err != nil {
		return nil, err
	}
	if err := db.Where("warehouse_id = ? AND item_id = ?", warehouseID, itemID).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByItem finds all stock records for an item across warehouses
func (r *GormStockRepository) FindByItem(ctx context.Context, itemID uuid.UUID) ([]inventory.StockRecord, error) {
	var records []inventory.StockRecord
	if err := conn(ctx, r.db).WithContext(ctx).
		Where("item_id = ?", itemID).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Save creates or updates a stock record
func (r *GormStockRepository) Save(ctx context.Context, record *inventory.StockRecord) error {
	return conn(ctx, r.db).WithContext(ctx).Save(record).Error
}
