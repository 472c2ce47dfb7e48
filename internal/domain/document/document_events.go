package document

import (
	"github.com/erp/docflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeDocument = "Document"

// Event type constants
const (
	EventTypeDocumentCreated       = "DocumentCreated"
	EventTypeDocumentStatusChanged = "DocumentStatusChanged"
	EventTypeDocumentTransformed   = "DocumentTransformed"
	EventTypeDocumentDeleted       = "DocumentDeleted"
)

// DocumentCreatedEvent is raised when a new document is created
type DocumentCreatedEvent struct {
	shared.BaseDomainEvent
	Kind           DocumentKind `json:"kind"`
	Code           string       `json:"code"`
	CounterpartyID uuid.UUID    `json:"counterparty_id"`
}

// NewDocumentCreatedEvent creates a new DocumentCreatedEvent
func NewDocumentCreatedEvent(doc *Document) *DocumentCreatedEvent {
	return &DocumentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentCreated, AggregateTypeDocument, doc.ID),
		Kind:            doc.Kind,
		Code:            doc.Code,
		CounterpartyID:  doc.CounterpartyID,
	}
}

// EventType returns the event type name
func (e *DocumentCreatedEvent) EventType() string {
	return EventTypeDocumentCreated
}

// DocumentStatusChangedEvent is raised when a document moves to a new
// status
type DocumentStatusChangedEvent struct {
	shared.BaseDomainEvent
	Kind         DocumentKind `json:"kind"`
	Code         string       `json:"code"`
	FromStatusID int          `json:"from_status_id"`
	ToStatusID   int          `json:"to_status_id"`
}

// NewDocumentStatusChangedEvent creates a new DocumentStatusChangedEvent
func NewDocumentStatusChangedEvent(doc *Document, fromStatusID, toStatusID int) *DocumentStatusChangedEvent {
	return &DocumentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentStatusChanged, AggregateTypeDocument, doc.ID),
		Kind:            doc.Kind,
		Code:            doc.Code,
		FromStatusID:    fromStatusID,
		ToStatusID:      toStatusID,
	}
}

// EventType returns the event type name
func (e *DocumentStatusChangedEvent) EventType() string {
	return EventTypeDocumentStatusChanged
}

// DocumentTransformedEvent is raised when a successor document has been
// generated from a source document
type DocumentTransformedEvent struct {
	shared.BaseDomainEvent
	SourceKind DocumentKind    `json:"source_kind"`
	SourceID   uuid.UUID       `json:"source_id"`
	TargetKind DocumentKind    `json:"target_kind"`
	TargetID   uuid.UUID       `json:"target_id"`
	Partial    bool            `json:"partial"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// NewDocumentTransformedEvent creates a new DocumentTransformedEvent
func NewDocumentTransformedEvent(source, target *Document, partial bool) *DocumentTransformedEvent {
	return &DocumentTransformedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentTransformed, AggregateTypeDocument, source.ID),
		SourceKind:      source.Kind,
		SourceID:        source.ID,
		TargetKind:      target.Kind,
		TargetID:        target.ID,
		Partial:         partial,
		GrandTotal:      target.GrandTotal,
	}
}

// EventType returns the event type name
func (e *DocumentTransformedEvent) EventType() string {
	return EventTypeDocumentTransformed
}

// DocumentDeletedEvent is raised after a document and its lines have
// been removed
type DocumentDeletedEvent struct {
	shared.BaseDomainEvent
	Kind DocumentKind `json:"kind"`
	Code string       `json:"code"`
}

// NewDocumentDeletedEvent creates a new DocumentDeletedEvent
func NewDocumentDeletedEvent(doc *Document) *DocumentDeletedEvent {
	return &DocumentDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentDeleted, AggregateTypeDocument, doc.ID),
		Kind:            doc.Kind,
		Code:            doc.Code,
	}
}

// EventType returns the event type name
func (e *DocumentDeletedEvent) EventType() string {
	return EventTypeDocumentDeleted
}
