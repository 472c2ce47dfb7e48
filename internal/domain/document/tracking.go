package document

import (
	"context"
	"time"

	"github.com/erp/docflow/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TrackedField is one of the header fields whose changes are observed by
// the update pipeline. The enum is closed: adding a field means adding a
// case to fieldValue, which the compiler checks exhaustively.
type TrackedField int

const (
	FieldWarehouse TrackedField = iota
	FieldSeries
	FieldNumber
	FieldDate
	FieldCompany
	FieldCounterparty
	FieldPaymentTerm
	FieldStatus
	FieldTotal
	FieldEmailSent
	FieldPaid
	FieldAttachments
)

// trackedFieldNames indexes by the enum order above
var trackedFieldNames = [...]string{
	"warehouse",
	"series",
	"number",
	"date",
	"company",
	"counterparty",
	"payment_term",
	"status",
	"total",
	"email_sent",
	"paid",
	"attachments",
}

// String returns the field's snake_case name
func (f TrackedField) String() string {
	if int(f) < len(trackedFieldNames) {
		return trackedFieldNames[f]
	}
	return "unknown"
}

// ParseTrackedField resolves a snake_case field name back to its enum
// value. Configuration references fields by name.
func ParseTrackedField(name string) (TrackedField, bool) {
	for idx, candidate := range trackedFieldNames {
		if candidate == name {
			return TrackedField(idx), true
		}
	}
	return 0, false
}

// baselineFields are always captured, whatever the caller asks for
var baselineFields = []TrackedField{
	FieldWarehouse,
	FieldSeries,
	FieldNumber,
	FieldDate,
	FieldCompany,
	FieldStatus,
}

// ExtraTrackedFields are the non-baseline fields. The update path
// captures them too, so its handlers can observe counterparty, term,
// total and settlement changes.
var ExtraTrackedFields = []TrackedField{
	FieldCounterparty,
	FieldPaymentTerm,
	FieldTotal,
	FieldEmailSent,
	FieldPaid,
	FieldAttachments,
}

// Snapshot maps tracked fields to their value at capture time
type Snapshot map[TrackedField]any

// CaptureSnapshot stores the current value of the baseline fields plus
// any extra fields, replacing the previous snapshot. Repositories call
// it on load; the save path calls it again after a successful write.
func (d *Document) CaptureSnapshot(extra ...TrackedField) {
	snapshot := make(Snapshot, len(baselineFields)+len(extra))
	for _, field := range baselineFields {
		snapshot[field] = fieldValue(d, field)
	}
	for _, field := range extra {
		snapshot[field] = fieldValue(d, field)
	}
	d.previous = snapshot
}

// HasSnapshot reports whether a snapshot has been captured
func (d *Document) HasSnapshot() bool {
	return d.previous != nil
}

// PreviousValue returns the snapshot value of a field. Numeric fields
// missing from the snapshot default to zero.
func (d *Document) PreviousValue(field TrackedField) any {
	if value, ok := d.previous[field]; ok {
		return value
	}
	switch field {
	case FieldNumber, FieldAttachments:
		return 0
	case FieldTotal:
		return decimal.Zero
	}
	return nil
}

// ChangedFields returns the tracked fields whose live value differs from
// the snapshot, in enum order. The order is arbitrary but stable.
func (d *Document) ChangedFields() []TrackedField {
	var changed []TrackedField
	for field := TrackedField(0); int(field) < len(trackedFieldNames); field++ {
		previous, tracked := d.previous[field]
		if !tracked {
			continue
		}
		if !fieldEquals(previous, fieldValue(d, field)) {
			changed = append(changed, field)
		}
	}
	return changed
}

// fieldValue reads the live value of a tracked field from the header
func fieldValue(d *Document, field TrackedField) any {
	switch field {
	case FieldWarehouse:
		return d.WarehouseID
	case FieldSeries:
		return d.Series
	case FieldNumber:
		return d.Number
	case FieldDate:
		return d.Date
	case FieldCompany:
		return d.CompanyID
	case FieldCounterparty:
		return d.CounterpartyID
	case FieldPaymentTerm:
		return d.PaymentTermID
	case FieldStatus:
		return d.StatusID
	case FieldTotal:
		return d.GrandTotal
	case FieldEmailSent:
		return d.EmailSent
	case FieldPaid:
		return d.Paid
	case FieldAttachments:
		return d.AttachmentCount
	}
	return nil
}

// fieldEquals compares snapshot and live values, honouring the equality
// of the value types involved
func fieldEquals(a, b any) bool {
	switch av := a.(type) {
	case decimal.Decimal:
		bv, ok := b.(decimal.Decimal)
		return ok && av.Equal(bv)
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	default:
		return a == b
	}
}

// ChangeHandler reacts to one tracked field having changed since the
// snapshot. previous carries the snapshot value.
type ChangeHandler func(ctx context.Context, d *Document, previous any) shared.ChangeResult

// HookPipeline runs the per-field change handlers of the update path.
// The pipeline folds over the changed fields: the first rejection aborts
// the whole update, and no further handlers run.
type HookPipeline struct {
	settings Settings
	statuses *StatusSet
	handlers map[TrackedField]ChangeHandler
}

// NewHookPipeline creates an empty pipeline
func NewHookPipeline(settings Settings, statuses *StatusSet) *HookPipeline {
	return &HookPipeline{
		settings: settings,
		statuses: statuses,
		handlers: make(map[TrackedField]ChangeHandler),
	}
}

// On registers the handler for a field, replacing any previous one
func (p *HookPipeline) On(field TrackedField, handler ChangeHandler) {
	p.handlers[field] = handler
}

// Run diffs the document against its snapshot and invokes the handler of
// every changed field. While the document's snapshot status is
// non-editable, changes to fields outside the configured unlocked set
// are rejected before any handler runs.
func (p *HookPipeline) Run(ctx context.Context, d *Document) shared.ChangeResult {
	changed := d.ChangedFields()
	if len(changed) == 0 {
		return shared.Accept()
	}

	if locked := p.lockedFieldChanged(d, changed); locked {
		return shared.Reject(shared.ErrNonEditableDocument)
	}

	for _, field := range changed {
		handler, ok := p.handlers[field]
		if !ok {
			continue
		}
		if result := handler(ctx, d, d.PreviousValue(field)); result.Rejected() {
			return result
		}
	}
	return shared.Accept()
}

// lockedFieldChanged checks the edit lock against the status the
// document had when the snapshot was captured: the stored status decides
// whether the stored document was open for editing.
func (p *HookPipeline) lockedFieldChanged(d *Document, changed []TrackedField) bool {
	previousStatusID := d.StatusID
	if prev, ok := d.PreviousValue(FieldStatus).(int); ok {
		previousStatusID = prev
	}
	status, err := p.statuses.ByID(previousStatusID)
	if err != nil || status.Editable {
		return false
	}
	for _, field := range changed {
		if !p.settings.FieldUnlocked(field) {
			return true
		}
	}
	return false
}
