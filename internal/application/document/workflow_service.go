package document

import (
	"context"
	"time"

	"github.com/erp/docflow/internal/domain/document"
	"github.com/erp/docflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeleteGuard vetoes or prepares a document deletion. Guards run inside
// the deletion transaction, before any state is touched; returning an
// error aborts the whole deletion.
type DeleteGuard interface {
	BeforeDelete(ctx context.Context, doc *document.Document) error
}

// WorkflowService drives the document lifecycle: status transitions,
// successor generation along the transformation graph, and deletion with
// its cascades.
type WorkflowService struct {
	docs           document.DocumentRepository
	edges          document.EdgeRepository
	stock          *StockApplier
	sequencer      document.Sequencer
	periods        document.PeriodResolver
	uow            document.UnitOfWork
	settings       document.Settings
	statuses       *document.StatusSet
	guards         []DeleteGuard
	eventPublisher shared.EventPublisher
	audit          document.AuditSink
	now            func() time.Time
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(
	docs document.DocumentRepository,
	edges document.EdgeRepository,
	stock *StockApplier,
	sequencer document.Sequencer,
	periods document.PeriodResolver,
	uow document.UnitOfWork,
	settings document.Settings,
	statuses *document.StatusSet,
) *WorkflowService {
	return &WorkflowService{
		docs:      docs,
		edges:     edges,
		stock:     stock,
		sequencer: sequencer,
		periods:   periods,
		uow:       uow,
		settings:  settings,
		statuses:  statuses,
		now:       time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *WorkflowService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetAuditSink sets the audit sink
func (s *WorkflowService) SetAuditSink(audit document.AuditSink) {
	s.audit = audit
}

// AddDeleteGuard registers a guard consulted before every deletion
func (s *WorkflowService) AddDeleteGuard(guard DeleteGuard) {
	s.guards = append(s.guards, guard)
}

// TransitionStatus applies the side effects of the document's status
// having moved from previousStatusID to its current StatusID: the
// editable flag and the lines' stock mode follow the new status, and a
// generating status creates the successor document. The caller reverses
// the lines' previous stock effect and applies the new one afterwards;
// this method never touches stock records of the source document itself.
func (s *WorkflowService) TransitionStatus(ctx context.Context, doc *document.Document, previousStatusID int) error {
	status, err := s.statuses.ByID(doc.StatusID)
	if err != nil {
		return err
	}
	if status.Kind != doc.Kind {
		return shared.NewDomainError("STATUS_KIND_MISMATCH", "Status belongs to a different document kind")
	}

	doc.Editable = status.Editable

	if status.GeneratesDocument() && s.settings.GenerationEnabled {
		if _, err := s.generate(ctx, doc, status.Generates, nil); err != nil {
			return err
		}
	}

	for idx := range doc.Lines {
		doc.Lines[idx].StockMode = status.StockMode
	}

	doc.AddDomainEvent(document.NewDocumentStatusChangedEvent(doc, previousStatusID, doc.StatusID))
	return nil
}

// GenerateSuccessor creates a successor of the given kind from a source
// document, serving the requested quantity per line. Lines absent from
// quantities are served in full; a nil map serves every line's unserved
// remainder. The source's served quantities advance by what the
// successor takes, and its stock effect is re-applied accordingly.
func (s *WorkflowService) GenerateSuccessor(ctx context.Context, sourceRef document.DocumentRef, targetKind document.DocumentKind, quantities map[uuid.UUID]decimal.Decimal) (*DocumentResponse, error) {
	var successor *document.Document

	err := s.uow.Do(ctx, func(ctx context.Context) error {
		source, err := s.docs.FindByRef(ctx, sourceRef)
		if err != nil {
			return err
		}

		before := captureStock(source)

		successor, err = s.generate(ctx, source, targetKind, quantities)
		if err != nil {
			return err
		}
		if successor == nil {
			return shared.NewDomainError("NOTHING_TO_SERVE", "Every line of the source document is already fully served")
		}

		if err := s.reconcileStock(ctx, source, before); err != nil {
			return err
		}
		return s.docs.Save(ctx, source)
	})
	if err != nil {
		return nil, err
	}

	resp := ToDocumentResponse(successor)
	return &resp, nil
}

// generate builds, persists and links the successor document. It
// mutates the source's served quantities but leaves persisting the
// source to the caller. Returns nil when nothing is left to serve.
func (s *WorkflowService) generate(ctx context.Context, source *document.Document, targetKind document.DocumentKind, quantities map[uuid.UUID]decimal.Decimal) (*document.Document, error) {
	successor, err := document.NewDocument(targetKind, s.settings, s.statuses)
	if err != nil {
		return nil, err
	}

	successor.CompanyID = source.CompanyID
	successor.CounterpartyID = source.CounterpartyID
	successor.WarehouseID = source.WarehouseID
	successor.PaymentTermID = source.PaymentTermID
	successor.CurrencyCode = source.CurrencyCode
	successor.ExchangeRate = source.ExchangeRate
	successor.Discount1 = source.Discount1
	successor.Discount2 = source.Discount2

	partial := false
	for idx := range source.Lines {
		line := &source.Lines[idx]

		serve := line.UnservedQuantity()
		if requested, ok := quantities[line.ID]; ok && requested.LessThan(serve) {
			serve = requested
		}
		if !serve.IsPositive() {
			if !line.Quantity.IsZero() {
				partial = true
			}
			continue
		}
		if serve.LessThan(line.Quantity) {
			partial = true
		}

		target, err := successor.AddLine(line.ItemID, line.Description, serve, line.UnitPrice, s.settings)
		if err != nil {
			return nil, err
		}
		target.Discount1 = line.Discount1
		target.Discount2 = line.Discount2
		target.TaxRate = line.TaxRate
		target.WithholdingRate = line.WithholdingRate
		target.SurchargeRate = line.SurchargeRate
		target.Supplied = line.Supplied
		target.Recalculate(s.settings)

		line.ServedQuantity = line.ServedQuantity.Add(serve)
	}

	if len(successor.Lines) == 0 {
		return nil, nil
	}

	date := s.now()
	period, err := s.periods.PeriodCovering(ctx, successor.CompanyID, date)
	if err != nil {
		return nil, err
	}
	if err := successor.SetDate(date, date.Format("15:04:05"), period); err != nil {
		return nil, err
	}

	number, code, err := s.sequencer.NextCode(ctx, targetKind, period.ID, successor.Series)
	if err != nil {
		return nil, err
	}
	successor.Number = number
	successor.Code = code

	successor.ApplyTotals(document.CalculateTotals(successor, s.settings), s.settings)
	if err := successor.Validate(s.settings, period, true); err != nil {
		return nil, err
	}

	status, err := s.statuses.DefaultFor(targetKind)
	if err != nil {
		return nil, err
	}
	for idx := range successor.Lines {
		successor.Lines[idx].StockMode = status.StockMode
	}
	for idx := range successor.Lines {
		if err := s.stock.Apply(ctx, successor.Lines[idx].StockSnapshot(successor.WarehouseID)); err != nil {
			return nil, err
		}
	}

	if err := s.docs.Save(ctx, successor); err != nil {
		return nil, err
	}
	if err := s.edges.Insert(ctx, document.NewTransformationEdge(source.Ref(), successor.Ref())); err != nil {
		return nil, err
	}

	s.publish(ctx, successor.GetDomainEvents()...)
	successor.ClearDomainEvents()
	s.publish(ctx, document.NewDocumentTransformedEvent(source, successor, partial))
	if s.audit != nil {
		s.audit.Record(ctx, document.EventTypeDocumentTransformed, document.AggregateTypeDocument, successor.ID,
			"generated "+successor.Code+" from "+source.Code, nil)
	}
	return successor, nil
}

// Children returns the transformation edges leading out of a document
func (s *WorkflowService) Children(ctx context.Context, ref document.DocumentRef) ([]document.TransformationEdge, error) {
	return s.edges.Children(ctx, ref)
}

// Parents returns the transformation edges leading into a document
func (s *WorkflowService) Parents(ctx context.Context, ref document.DocumentRef) ([]document.TransformationEdge, error) {
	return s.edges.Parents(ctx, ref)
}

// Delete removes a document. A document with successors cannot be
// deleted; deleting one that was itself generated reopens its parents in
// their default status with the deleted quantities unserved again, so
// they can be transformed once more. Stock effects of the deleted lines
// are reversed.
func (s *WorkflowService) Delete(ctx context.Context, ref document.DocumentRef) error {
	return s.uow.Do(ctx, func(ctx context.Context) error {
		doc, err := s.docs.FindByRef(ctx, ref)
		if err != nil {
			return err
		}

		children, err := s.edges.Children(ctx, ref)
		if err != nil {
			return err
		}
		if len(children) > 0 {
			return shared.NewDomainError("DOCUMENT_HAS_CHILDREN", "Document has generated successors and cannot be deleted")
		}

		for _, guard := range s.guards {
			if err := guard.BeforeDelete(ctx, doc); err != nil {
				return err
			}
		}

		for idx := range doc.Lines {
			if err := s.stock.Reverse(ctx, doc.Lines[idx].StockSnapshot(doc.WarehouseID)); err != nil {
				return err
			}
		}

		parents, err := s.edges.Parents(ctx, ref)
		if err != nil {
			return err
		}
		if err := s.edges.DeleteFor(ctx, ref); err != nil {
			return err
		}
		for _, edge := range parents {
			if err := s.reopenParent(ctx, edge.Source(), doc); err != nil {
				return err
			}
		}

		if err := s.docs.Delete(ctx, ref); err != nil {
			return err
		}

		s.publish(ctx, document.NewDocumentDeletedEvent(doc))
		if s.audit != nil {
			s.audit.Record(ctx, document.EventTypeDocumentDeleted, document.AggregateTypeDocument, doc.ID,
				"deleted "+doc.Code, nil)
		}
		return nil
	})
}

// reopenParent puts a parent document back into its kind's default
// status after one of its successors was deleted. Only the deleted
// successor's quantities return to the parent's unserved remainder;
// quantities carried by surviving siblings stay served, so a later
// transformation cannot hand them out twice. When no successors remain
// the served amounts reset outright.
func (s *WorkflowService) reopenParent(ctx context.Context, ref document.DocumentRef, deleted *document.Document) error {
	parent, err := s.docs.FindByRef(ctx, ref)
	if err != nil {
		return err
	}

	status, err := s.statuses.DefaultFor(parent.Kind)
	if err != nil {
		return err
	}

	before := captureStock(parent)
	previousStatusID := parent.StatusID

	returned := quantitiesByLineKey(deleted)
	for idx := range parent.Lines {
		line := &parent.Lines[idx]
		key := lineKey(line)
		give := returned[key]
		if give.GreaterThan(line.ServedQuantity) {
			give = line.ServedQuantity
		}
		if give.IsPositive() {
			line.ServedQuantity = line.ServedQuantity.Sub(give)
			returned[key] = returned[key].Sub(give)
		}
		line.StockMode = status.StockMode
	}

	siblings, err := s.edges.Children(ctx, parent.Ref())
	if err != nil {
		return err
	}
	if len(siblings) == 0 {
		for idx := range parent.Lines {
			parent.Lines[idx].ServedQuantity = decimal.Zero
		}
	}

	parent.StatusID = status.ID
	parent.Editable = status.Editable

	if err := s.reconcileStock(ctx, parent, before); err != nil {
		return err
	}
	if err := s.docs.Save(ctx, parent); err != nil {
		return err
	}

	s.publish(ctx, document.NewDocumentStatusChangedEvent(parent, previousStatusID, parent.StatusID))
	return nil
}

// quantitiesByLineKey sums a document's line quantities per line key
func quantitiesByLineKey(doc *document.Document) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal, len(doc.Lines))
	for idx := range doc.Lines {
		key := lineKey(&doc.Lines[idx])
		totals[key] = totals[key].Add(doc.Lines[idx].Quantity)
	}
	return totals
}

// lineKey identifies what a line serves across a transformation: the
// item when there is one, the description for free-text lines. Successor
// lines carry both over unchanged.
func lineKey(line *document.DocumentLine) string {
	if line.ItemID != nil {
		return line.ItemID.String()
	}
	return "desc:" + line.Description
}

// captureStock snapshots every line's stock-relevant state against the
// document's current warehouse
func captureStock(doc *document.Document) []document.StockSnapshot {
	snapshots := make([]document.StockSnapshot, 0, len(doc.Lines))
	for idx := range doc.Lines {
		snapshots = append(snapshots, doc.Lines[idx].StockSnapshot(doc.WarehouseID))
	}
	return snapshots
}

// reconcileStock reverses the captured snapshots and applies the
// document's current line state in their place
func (s *WorkflowService) reconcileStock(ctx context.Context, doc *document.Document, before []document.StockSnapshot) error {
	for _, snap := range before {
		if err := s.stock.Reverse(ctx, snap); err != nil {
			return err
		}
	}
	for idx := range doc.Lines {
		if err := s.stock.Apply(ctx, doc.Lines[idx].StockSnapshot(doc.WarehouseID)); err != nil {
			return err
		}
	}
	return nil
}

func (s *WorkflowService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	// Event delivery is best effort; persistence must not fail on it.
	_ = s.eventPublisher.Publish(ctx, events...)
}
