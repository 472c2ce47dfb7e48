package persistence

import (
	"context"

	"github.com/erp/docflow/internal/domain/finance"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByReceipt finds all payments of a receipt
func (r *GormPaymentRepository) FindByReceipt(ctx context.Context, receiptID uuid.UUID) ([]finance.Payment, error) {
	var payments []finance.Payment
	if err := conn(ctx, r.db).WithContext(ctx).
		Where("receipt_id = ?", receiptID).
		Order("created_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Save inserts a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *finance.Payment) error {
	return conn(ctx, r.db).WithContext(ctx).Save(payment).Error
}

// DeleteByReceipt removes all payments of a receipt
func (r *GormPaymentRepository) DeleteByReceipt(ctx context.Context, receiptID uuid.UUID) error {
	return conn(ctx, r.db).WithContext(ctx).
		Where("receipt_id = ?", receiptID).
		Delete(&finance.Payment{}).Error
}
