package document

import (
	"time"

	"github.com/google/uuid"
)

// TransformationEdge records that a target document was generated from a
// source document. The relation is directed and many-to-many: a document
// may have several parents (merged generation) and several children
// (partial transformations).
type TransformationEdge struct {
	ID         uuid.UUID
	SourceKind DocumentKind
	SourceID   uuid.UUID
	TargetKind DocumentKind
	TargetID   uuid.UUID
	CreatedAt  time.Time
}

// TableName returns the table name for GORM
func (TransformationEdge) TableName() string {
	return "transformation_edges"
}

// NewTransformationEdge creates an edge between two document refs
func NewTransformationEdge(source, target DocumentRef) TransformationEdge {
	return TransformationEdge{
		ID:         uuid.New(),
		SourceKind: source.Kind,
		SourceID:   source.ID,
		TargetKind: target.Kind,
		TargetID:   target.ID,
		CreatedAt:  time.Now(),
	}
}

// Source returns the edge's source ref
func (e TransformationEdge) Source() DocumentRef {
	return DocumentRef{Kind: e.SourceKind, ID: e.SourceID}
}

// Target returns the edge's target ref
func (e TransformationEdge) Target() DocumentRef {
	return DocumentRef{Kind: e.TargetKind, ID: e.TargetID}
}
