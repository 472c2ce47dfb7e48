package document

import (
	"context"

	"github.com/erp/docflow/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentRepository defines the interface for document persistence.
// Save writes the header and its lines together; lines never outlive
// their header.
type DocumentRepository interface {
	// FindByRef finds a document by its typed reference
	FindByRef(ctx context.Context, ref DocumentRef) (*Document, error)

	// FindByCode finds a document by kind and code
	FindByCode(ctx context.Context, kind DocumentKind, code string) (*Document, error)

	// FindAll finds documents of a kind with filtering
	FindAll(ctx context.Context, kind DocumentKind, filter shared.Filter) ([]Document, error)

	// Save creates or updates a document with its lines
	Save(ctx context.Context, doc *Document) error

	// Delete removes a document header and its lines. Stock reversal
	// and graph maintenance are the workflow's responsibility.
	Delete(ctx context.Context, ref DocumentRef) error

	// ExistsRefundOf reports whether any refund invoice rectifies the
	// given invoice
	ExistsRefundOf(ctx context.Context, invoiceID uuid.UUID) (bool, error)

	// Count counts documents of a kind
	Count(ctx context.Context, kind DocumentKind, filter shared.Filter) (int64, error)
}

// EdgeRepository defines the interface for transformation edges
type EdgeRepository interface {
	// Insert stores a new edge
	Insert(ctx context.Context, edge TransformationEdge) error

	// Children returns the edges whose source is the given ref
	Children(ctx context.Context, ref DocumentRef) ([]TransformationEdge, error)

	// Parents returns the edges whose target is the given ref
	Parents(ctx context.Context, ref DocumentRef) ([]TransformationEdge, error)

	// DeleteFor removes every edge referencing the ref as source or
	// target
	DeleteFor(ctx context.Context, ref DocumentRef) error
}

// UnitOfWork runs a function inside a single all-or-nothing transaction.
// Repository calls made with the ctx passed to fn join that transaction.
// When the surrounding ctx is already transactional, fn joins the outer
// transaction and must not commit or roll it back itself.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
