package document

import (
	"fmt"

	"github.com/erp/docflow/internal/domain/inventory"
	"github.com/erp/docflow/internal/domain/shared"
)

// DocumentStatus is one configured status of a document kind. Statuses
// are configuration data, read-only at runtime: they decide whether a
// document stays editable, how its lines hit stock, and which successor
// kind (if any) a transition into them generates.
type DocumentStatus struct {
	ID        int
	Kind      DocumentKind
	Name      string
	Editable  bool
	Default   bool
	Generates DocumentKind        // zero value: the status generates nothing
	StockMode inventory.StockMode // stamped onto every line on transition
}

// GeneratesDocument reports whether a transition into this status
// creates a successor document
func (s DocumentStatus) GeneratesDocument() bool {
	return s.Generates != ""
}

// StatusSet is the full status configuration, indexed for lookup.
type StatusSet struct {
	byID       map[int]DocumentStatus
	defaultFor map[DocumentKind]DocumentStatus
}

// NewStatusSet builds a status set from configured statuses. Every kind
// present must have exactly one default status.
func NewStatusSet(statuses []DocumentStatus) (*StatusSet, error) {
	set := &StatusSet{
		byID:       make(map[int]DocumentStatus, len(statuses)),
		defaultFor: make(map[DocumentKind]DocumentStatus),
	}
	for _, status := range statuses {
		if !status.Kind.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("status %d has unknown kind %q", status.ID, status.Kind))
		}
		if status.Generates != "" && !status.Generates.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("status %d generates unknown kind %q", status.ID, status.Generates))
		}
		if _, dup := set.byID[status.ID]; dup {
			return nil, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("duplicate status id %d", status.ID))
		}
		set.byID[status.ID] = status
		if status.Default {
			if _, dup := set.defaultFor[status.Kind]; dup {
				return nil, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("kind %s has more than one default status", status.Kind))
			}
			set.defaultFor[status.Kind] = status
		}
	}
	return set, nil
}

// ByID returns the status with the given id
func (s *StatusSet) ByID(id int) (DocumentStatus, error) {
	status, ok := s.byID[id]
	if !ok {
		return DocumentStatus{}, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("unknown status id %d", id))
	}
	return status, nil
}

// DefaultFor returns the default status of a document kind
func (s *StatusSet) DefaultFor(kind DocumentKind) (DocumentStatus, error) {
	status, ok := s.defaultFor[kind]
	if !ok {
		return DocumentStatus{}, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("kind %s has no default status", kind))
	}
	return status, nil
}

// DefaultStatusSet returns the standard sales-side configuration:
// quote -> order -> delivery note -> invoice, with orders reserving
// stock and delivery notes committing it.
func DefaultStatusSet() *StatusSet {
	set, err := NewStatusSet([]DocumentStatus{
		{ID: 10, Kind: KindQuote, Name: "Open", Editable: true, Default: true},
		{ID: 11, Kind: KindQuote, Name: "Approved", Generates: KindOrder},
		{ID: 12, Kind: KindQuote, Name: "Rejected"},

		{ID: 20, Kind: KindOrder, Name: "Open", Editable: true, Default: true, StockMode: inventory.StockModeReserve},
		{ID: 21, Kind: KindOrder, Name: "Shipped", Generates: KindDeliveryNote, StockMode: inventory.StockModeSubtract},
		{ID: 22, Kind: KindOrder, Name: "Cancelled"},

		{ID: 30, Kind: KindDeliveryNote, Name: "Open", Editable: true, Default: true, StockMode: inventory.StockModeSubtract},
		{ID: 31, Kind: KindDeliveryNote, Name: "Invoiced", Generates: KindInvoice, StockMode: inventory.StockModeSubtract},

		{ID: 40, Kind: KindInvoice, Name: "Issued", Editable: true, Default: true, StockMode: inventory.StockModeSubtract},
	})
	if err != nil {
		panic(err) // static configuration, never invalid
	}
	return set
}
