package persistence

import (
	"context"

	"github.com/erp/docflow/internal/domain/document"
	"gorm.io/gorm"
)

// GormEdgeRepository implements EdgeRepository using GORM
type GormEdgeRepository struct {
	db *gorm.DB
}

// NewGormEdgeRepository creates a new GormEdgeRepository
func NewGormEdgeRepository(db *gorm.DB) *GormEdgeRepository {
	return &GormEdgeRepository{db: db}
}

// Insert stores a new edge
func (r *GormEdgeRepository) Insert(ctx context.Context, edge document.TransformationEdge) error {
	return conn(ctx, r.db).WithContext(ctx).Create(&edge).Error
}

// Children returns the edges whose source is the given ref
func (r *GormEdgeRepository) Children(ctx context.Context, ref document.DocumentRef) ([]document.TransformationEdge, error) {
	var edges []document.TransformationEdge
	if err := conn(ctx, r.db).WithContext(ctx).
		Where("source_kind = ? AND source_id = ?", ref.Kind, ref.ID).
		Order("created_at ASC").
		Find(&edges).Error; err != nil {
		return nil, err
	}
	return edges, nil
}

// Parents returns the edges whose target is the given ref
func (r *GormEdgeRepository) Parents(ctx context.Context, ref document.DocumentRef) ([]document.TransformationEdge, error) {
	var edges []document.TransformationEdge
	if err := conn(ctx, r.db).WithContext(ctx).
		Where("target_kind = ? AND target_id = ?", ref.Kind, ref.ID).
		Order("created_at ASC").
		Find(&edges).Error; err != nil {
		return nil, err
	}
	return edges, nil
}

// DeleteFor removes every edge referencing the ref as source or target
func (r *GormEdgeRepository) DeleteFor(ctx context.Context, ref document.DocumentRef) error {
	return conn(ctx, r.db).WithContext(ctx).
		Where("(source_kind = ? AND source_id = ?) OR (target_kind = ? AND target_id = ?)",
			ref.Kind, ref.ID, ref.Kind, ref.ID).
		Delete(&document.TransformationEdge{}).Error
}
