package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/docflow/internal/domain/document"
	"github.com/erp/docflow/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPeriodResolver implements PeriodResolver against the periods table
type GormPeriodResolver struct {
	db *gorm.DB
}

// NewGormPeriodResolver creates a new GormPeriodResolver
func NewGormPeriodResolver(db *gorm.DB) *GormPeriodResolver {
	return &GormPeriodResolver{db: db}
}

// PeriodCovering resolves the open accounting period covering a date
func (r *GormPeriodResolver) PeriodCovering(ctx context.Context, companyID uuid.UUID, date time.Time) (*document.Period, error) {
	var row periodRow
	if err := conn(ctx, r.db).WithContext(ctx).
		Where("company_id = ? AND open = ? AND start_date <= ? AND end_date >= ?",
			companyID, true, date, date).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrPeriodNotFound
		}
		return nil, err
	}
	return &document.Period{
		ID:        row.ID,
		CompanyID: row.CompanyID,
		Name:      row.Name,
		Start:     row.StartDate,
		End:       row.EndDate,
		Open:      row.Open,
	}, nil
}
