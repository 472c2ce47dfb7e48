package persistence

import (
	"context"
	"errors"

	"github.com/erp/docflow/internal/domain/document"
	"github.com/erp/docflow/internal/domain/shared"
	"gorm.io/gorm"
)

// GormTaxRepository implements TaxLookup against the taxes table
type GormTaxRepository struct {
	db *gorm.DB
}

// NewGormTaxRepository creates a new GormTaxRepository
func NewGormTaxRepository(db *gorm.DB) *GormTaxRepository {
	return &GormTaxRepository{db: db}
}

// TaxByCode resolves a tax code to its rates
func (r *GormTaxRepository) TaxByCode(ctx context.Context, code string) (*document.Tax, error) {
	var row taxRow
	if err := conn(ctx, r.db).WithContext(ctx).
		First(&row, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &document.Tax{
		Code:      row.Code,
		Rate:      row.Rate,
		Surcharge: row.Surcharge,
	}, nil
}
