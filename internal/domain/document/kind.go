package document

import (
	"fmt"

	"github.com/google/uuid"
)

// DocumentKind identifies one of the commercial document types managed
// by this core.
type DocumentKind string

const (
	KindQuote        DocumentKind = "QUOTE"
	KindOrder        DocumentKind = "ORDER"
	KindDeliveryNote DocumentKind = "DELIVERY_NOTE"
	KindInvoice      DocumentKind = "INVOICE"
)

// IsValid checks if the kind is a known DocumentKind
func (k DocumentKind) IsValid() bool {
	switch k {
	case KindQuote, KindOrder, KindDeliveryNote, KindInvoice:
		return true
	}
	return false
}

// String returns the string representation of the kind
func (k DocumentKind) String() string {
	return string(k)
}

// CodePrefix returns the short prefix used when building document codes
func (k DocumentKind) CodePrefix() string {
	switch k {
	case KindQuote:
		return "QUO"
	case KindOrder:
		return "ORD"
	case KindDeliveryNote:
		return "DLV"
	case KindInvoice:
		return "INV"
	}
	return "DOC"
}

// ComposeCode builds the human-readable document code from its parts,
// e.g. "INV-A-000042"
func ComposeCode(kind DocumentKind, series string, number int) string {
	return fmt.Sprintf("%s-%s-%06d", kind.CodePrefix(), series, number)
}

// DocumentRef identifies a document instance across kinds. It is the key
// of the transformation graph: edges relate refs, never bare IDs, so a
// successor can be loaded without string-based type dispatch.
type DocumentRef struct {
	Kind DocumentKind
	ID   uuid.UUID
}

// IsZero reports whether the ref points at no document
func (r DocumentRef) IsZero() bool {
	return r.ID == uuid.Nil
}
