package persistence

import (
	"context"
	"errors"

	"github.com/erp/docflow/internal/domain/finance"
	"github.com/erp/docflow/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentTermRepository implements PaymentTermLookup against the
// payment_terms table
type GormPaymentTermRepository struct {
	db *gorm.DB
}

// NewGormPaymentTermRepository creates a new GormPaymentTermRepository
func NewGormPaymentTermRepository(db *gorm.DB) *GormPaymentTermRepository {
	return &GormPaymentTermRepository{db: db}
}

// TermByID resolves a payment term reference
func (r *GormPaymentTermRepository) TermByID(ctx context.Context, id uuid.UUID) (*finance.PaymentTerm, error) {
	var row paymentTermRow
	if err := conn(ctx, r.db).WithContext(ctx).
		First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &finance.PaymentTerm{
		ID:            row.ID,
		Name:          row.Name,
		Installments:  row.Installments,
		FirstDueDays:  row.FirstDueDays,
		GapDays:       row.GapDays,
		PaymentMethod: row.PaymentMethodID,
	}, nil
}
