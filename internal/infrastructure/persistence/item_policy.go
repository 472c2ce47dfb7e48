package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormItemPolicy reads catalog stock policy flags. An unknown item does
// not allow negative stock.
type GormItemPolicy struct {
	db *gorm.DB
}

// NewGormItemPolicy creates a new GormItemPolicy
func NewGormItemPolicy(db *gorm.DB) *GormItemPolicy {
	return &GormItemPolicy{db: db}
}

// AllowsNegativeStock implements inventory.ItemPolicy
func (p *GormItemPolicy) AllowsNegativeStock(ctx context.Context, itemID uuid.UUID) (bool, error) {
	var row itemRow
	if err := conn(ctx, p.db).WithContext(ctx).
		Select("allow_negative_stock").
		First(&row, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return row.AllowNegativeStock, nil
}
