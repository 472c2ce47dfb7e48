package persistence

import (
	"context"
	"errors"

	"github.com/erp/docflow/internal/domain/finance"
	"github.com/erp/docflow/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReceiptRepository implements ReceiptRepository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// FindByID finds a receipt by ID
func (r *GormReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Receipt, error) {
	var receipt finance.Receipt
	if err := conn(ctx, r.db).WithContext(ctx).
		First(&receipt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &receipt, nil
}

// FindByInvoice finds all receipts of an invoice ordered by installment
func (r *GormReceiptRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]finance.Receipt, error) {
	var receipts []finance.Receipt
	if err := conn(ctx, r.db).WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("installment ASC").
		Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

// Save creates or updates a receipt
func (r *GormReceiptRepository) Save(ctx context.Context, receipt *finance.Receipt) error {
	return conn(ctx, r.db).WithContext(ctx).Save(receipt).Error
}

// Delete removes a receipt and its payments
func (r *GormReceiptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("receipt_id = ?", id).Delete(&finance.Payment{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&finance.Receipt{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}
