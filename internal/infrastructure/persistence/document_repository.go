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

// GormDocumentRepository implements DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByRef finds a document by its typed reference
func (r *GormDocumentRepository) FindByRef(ctx context.Context, ref document.DocumentRef) (*document.Document, error) {
	var doc document.Document
	if err := conn(ctx, r.db).WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("document_lines.position ASC")
		}).
		Where("kind = ? AND id = ?", ref.Kind, ref.ID).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	// Loaded state is the baseline the change pipeline diffs against.
	doc.CaptureSnapshot(document.ExtraTrackedFields...)
	return &doc, nil
}

// FindByCode finds a document by kind and code
func (r *GormDocumentRepository) FindByCode(ctx context.Context, kind document.DocumentKind, code string) (*document.Document, error) {
	var doc document.Document
	if err := conn(ctx, r.db).WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("document_lines.position ASC")
		}).
		Where("kind = ? AND code = ?", kind, code).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	doc.CaptureSnapshot(document.ExtraTrackedFields...)
	return &doc, nil
}

// FindAll finds documents of a kind with filtering
func (r *GormDocumentRepository) FindAll(ctx context.Context, kind document.DocumentKind, filter shared.Filter) ([]document.Document, error) {
	var docs []document.Document
	query := r.applyFilter(
		conn(ctx, r.db).WithContext(ctx).Model(&document.Document{}).Where("kind = ?", kind),
		filter,
	)
	if err := query.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// Save creates or updates a document with its lines
func (r *GormDocumentRepository) Save(ctx context.Context, doc *document.Document) error {
	return conn(ctx, r.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(doc).Error; err != nil {
			return err
		}

		// Reconcile lines: drop the ones no longer present, then
		// save the current set.
		currentIDs := make([]uuid.UUID, len(doc.Lines))
		for i, line := range doc.Lines {
			currentIDs[i] = line.ID
		}
		stale := tx.Where("document_id = ?", doc.ID)
		if len(currentIDs) > 0 {
			stale = stale.Where("id NOT IN ?", currentIDs)
		}
		if err := stale.Delete(&document.DocumentLine{}).Error; err != nil {
			return err
		}

		for i := range doc.Lines {
			doc.Lines[i].DocumentID = doc.ID
			if err := tx.Save(&doc.Lines[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a document header and its lines
func (r *GormDocumentRepository) Delete(ctx context.Context, ref document.DocumentRef) error {
	return conn(ctx, r.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", ref.ID).Delete(&document.DocumentLine{}).Error; err != nil {
			return err
		}
		result := tx.Where("kind = ? AND id = ?", ref.Kind, ref.ID).Delete(&document.Document{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ExistsRefundOf reports whether any refund invoice rectifies the given invoice
func (r *GormDocumentRepository) ExistsRefundOf(ctx context.Context, invoiceID uuid.UUID) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).WithContext(ctx).
		Model(&document.Document{}).
		Where("kind = ? AND rectifies_id = ?", document.KindInvoice, invoiceID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count counts documents of a kind
func (r *GormDocumentRepository) Count(ctx context.Context, kind document.DocumentKind, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		conn(ctx, r.db).WithContext(ctx).Model(&document.Document{}).Where("kind = ?", kind),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filtering, ordering and pagination
func (r *GormDocumentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, DocumentSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormDocumentRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "counterparty_id":
			query = query.Where("counterparty_id = ?", value)
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "period_id":
			query = query.Where("period_id = ?", value)
		case "series":
			query = query.Where("series = ?", value)
		case "status_id":
			query = query.Where("status_id = ?", value)
		case "paid":
			query = query.Where("paid = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("date >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("date <= ?", t)
			}
		}
	}
	return query
}
