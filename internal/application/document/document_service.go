package document

import (
	"context"
	"time"

	"github.com/erp/docflow/internal/domain/document"
	"github.com/erp/docflow/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentService handles the creation, update and retrieval of
// commercial documents. Updates go through a change pipeline: the loaded
// snapshot is diffed against the edited state, per-field handlers react
// (or veto), stock records are reconciled, and the document is written —
// all inside one transaction, so a vetoing handler rolls back everything
// the earlier handlers did.
type DocumentService struct {
	docs           document.DocumentRepository
	stock          *StockApplier
	sequencer      document.Sequencer
	periods        document.PeriodResolver
	taxes          document.TaxLookup
	uow            document.UnitOfWork
	settings       document.Settings
	statuses       *document.StatusSet
	workflow       *WorkflowService
	audit          document.AuditSink
	eventPublisher shared.EventPublisher
	extraHandlers  map[document.TrackedField][]document.ChangeHandler
	now            func() time.Time
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	docs document.DocumentRepository,
	stock *StockApplier,
	sequencer document.Sequencer,
	periods document.PeriodResolver,
	taxes document.TaxLookup,
	uow document.UnitOfWork,
	settings document.Settings,
	statuses *document.StatusSet,
	workflow *WorkflowService,
) *DocumentService {
	return &DocumentService{
		docs:          docs,
		stock:         stock,
		sequencer:     sequencer,
		periods:       periods,
		taxes:         taxes,
		uow:           uow,
		settings:      settings,
		statuses:      statuses,
		workflow:      workflow,
		extraHandlers: make(map[document.TrackedField][]document.ChangeHandler),
		now:           time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *DocumentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetAuditSink sets the audit sink
func (s *DocumentService) SetAuditSink(audit document.AuditSink) {
	s.audit = audit
}

// RegisterChangeHandler appends a handler for a tracked field. Handlers
// for the same field run in registration order, after the built-in one.
func (s *DocumentService) RegisterChangeHandler(field document.TrackedField, handler document.ChangeHandler) {
	s.extraHandlers[field] = append(s.extraHandlers[field], handler)
}

// CreateDocument creates a new document with its lines
func (s *DocumentService) CreateDocument(ctx context.Context, req CreateDocumentRequest) (*DocumentResponse, error) {
	doc, err := document.NewDocument(req.Kind, s.settings, s.statuses)
	if err != nil {
		return nil, err
	}

	doc.CompanyID = req.CompanyID
	doc.CounterpartyID = req.CounterpartyID
	if req.WarehouseID != nil {
		doc.WarehouseID = *req.WarehouseID
	}
	if req.Series != nil {
		doc.Series = *req.Series
	}
	if req.CurrencyCode != nil {
		doc.CurrencyCode = *req.CurrencyCode
	}
	if req.ExchangeRate != nil && req.ExchangeRate.IsPositive() {
		doc.ExchangeRate = *req.ExchangeRate
	}
	if req.PaymentTermID != nil {
		doc.PaymentTermID = *req.PaymentTermID
	}
	if req.Discount1 != nil {
		doc.Discount1 = *req.Discount1
	}
	if req.Discount2 != nil {
		doc.Discount2 = *req.Discount2
	}
	doc.Notes = req.Notes

	date := s.now()
	if req.Date != nil {
		date = *req.Date
	}
	hour := ""
	if req.Hour != nil {
		hour = *req.Hour
	}

	err = s.uow.Do(ctx, func(ctx context.Context) error {
		period, err := s.periods.PeriodCovering(ctx, doc.CompanyID, date)
		if err != nil {
			return err
		}
		if err := doc.SetDate(date, hour, period); err != nil {
			return err
		}

		number, code, err := s.sequencer.NextCode(ctx, doc.Kind, period.ID, doc.Series)
		if err != nil {
			return err
		}
		doc.Number = number
		doc.Code = code

		for _, input := range req.Lines {
			if err := s.appendLine(ctx, doc, input); err != nil {
				return err
			}
		}

		doc.ApplyTotals(document.CalculateTotals(doc, s.settings), s.settings)
		if err := doc.Validate(s.settings, period, true); err != nil {
			return err
		}

		status, err := s.statuses.ByID(doc.StatusID)
		if err != nil {
			return err
		}
		for idx := range doc.Lines {
			doc.Lines[idx].StockMode = status.StockMode
		}
		for idx := range doc.Lines {
			if err := s.stock.Apply(ctx, doc.Lines[idx].StockSnapshot(doc.WarehouseID)); err != nil {
				return err
			}
		}

		return s.docs.Save(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, doc)
	if s.audit != nil {
		s.audit.Record(ctx, document.EventTypeDocumentCreated, document.AggregateTypeDocument, doc.ID,
			"created "+doc.Code, nil)
	}

	doc.CaptureSnapshot(document.ExtraTrackedFields...)
	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// GetDocument retrieves a document by its reference
func (s *DocumentService) GetDocument(ctx context.Context, ref document.DocumentRef) (*DocumentResponse, error) {
	doc, err := s.docs.FindByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// ListDocuments retrieves a page of documents of one kind
func (s *DocumentService) ListDocuments(ctx context.Context, req ListDocumentsRequest) (*DocumentListResponse, error) {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	if req.CounterpartyID != nil {
		filter.Filters["counterparty_id"] = *req.CounterpartyID
	}
	if req.WarehouseID != nil {
		filter.Filters["warehouse_id"] = *req.WarehouseID
	}
	if req.Series != nil {
		filter.Filters["series"] = *req.Series
	}
	if req.StatusID != nil {
		filter.Filters["status_id"] = *req.StatusID
	}
	if req.Paid != nil {
		filter.Filters["paid"] = *req.Paid
	}
	if req.StartDate != nil {
		filter.Filters["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		filter.Filters["end_date"] = *req.EndDate
	}

	docs, err := s.docs.FindAll(ctx, req.Kind, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.docs.Count(ctx, req.Kind, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]DocumentResponse, 0, len(docs))
	for idx := range docs {
		responses = append(responses, ToDocumentResponse(&docs[idx]))
	}
	return &DocumentListResponse{
		Documents: responses,
		Total:     total,
		Page:      filter.Page,
		PageSize:  filter.PageSize,
	}, nil
}

// UpdateDocument applies an edit to a stored document. The whole edit is
// transactional: the change pipeline may veto it, in which case nothing
// is written and any stock adjustment already made is rolled back.
func (s *DocumentService) UpdateDocument(ctx context.Context, ref document.DocumentRef, req UpdateDocumentRequest) (*DocumentResponse, error) {
	var doc *document.Document

	err := s.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.docs.FindByRef(ctx, ref)
		if err != nil {
			return err
		}

		before := captureStock(doc)
		previousDate := doc.Date

		if err := s.applyHeader(doc, req); err != nil {
			return err
		}
		if req.Lines != nil {
			if err := s.reconcileLines(ctx, doc, req.Lines); err != nil {
				return err
			}
		}

		doc.ApplyTotals(document.CalculateTotals(doc, s.settings), s.settings)

		// The date handler in the pipeline re-resolves the period when
		// the date moved, so the range check here only applies to
		// unchanged dates.
		dateChanged := !doc.Date.Equal(previousDate)
		period, err := s.periods.PeriodCovering(ctx, doc.CompanyID, doc.Date)
		if err != nil {
			return err
		}
		if err := doc.Validate(s.settings, period, dateChanged); err != nil {
			return err
		}

		pipeline := s.buildPipeline()
		if result := pipeline.Run(ctx, doc); result.Rejected() {
			return result.Err()
		}

		if err := s.workflow.reconcileStock(ctx, doc, before); err != nil {
			return err
		}
		return s.docs.Save(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, doc)
	if s.audit != nil {
		s.audit.Record(ctx, "DocumentUpdated", document.AggregateTypeDocument, doc.ID,
			"updated "+doc.Code, nil)
	}

	doc.CaptureSnapshot(document.ExtraTrackedFields...)
	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// ChangeStatus moves a document into a new status. This is a shorthand
// for an update touching only the status field, and goes through the
// same pipeline.
func (s *DocumentService) ChangeStatus(ctx context.Context, ref document.DocumentRef, statusID int) (*DocumentResponse, error) {
	return s.UpdateDocument(ctx, ref, UpdateDocumentRequest{StatusID: &statusID})
}

// DeleteDocument removes a document through the workflow cascade
func (s *DocumentService) DeleteDocument(ctx context.Context, ref document.DocumentRef) error {
	return s.workflow.Delete(ctx, ref)
}

// applyHeader copies the request's set fields onto the document header
func (s *DocumentService) applyHeader(doc *document.Document, req UpdateDocumentRequest) error {
	if req.CompanyID != nil {
		doc.CompanyID = *req.CompanyID
	}
	if req.CounterpartyID != nil {
		doc.CounterpartyID = *req.CounterpartyID
	}
	if req.WarehouseID != nil {
		doc.WarehouseID = *req.WarehouseID
	}
	if req.Series != nil {
		doc.Series = *req.Series
	}
	if req.Number != nil {
		doc.Number = *req.Number
	}
	if req.CurrencyCode != nil {
		doc.CurrencyCode = *req.CurrencyCode
	}
	if req.ExchangeRate != nil && req.ExchangeRate.IsPositive() {
		doc.ExchangeRate = *req.ExchangeRate
	}
	if req.Date != nil {
		doc.Date = *req.Date
	}
	if req.Hour != nil {
		doc.Hour = *req.Hour
	}
	if req.PaymentTermID != nil {
		doc.PaymentTermID = *req.PaymentTermID
	}
	if req.StatusID != nil {
		doc.StatusID = *req.StatusID
	}
	if req.Discount1 != nil {
		doc.Discount1 = *req.Discount1
	}
	if req.Discount2 != nil {
		doc.Discount2 = *req.Discount2
	}
	if req.Notes != nil {
		doc.Notes = *req.Notes
	}
	if req.EmailSent != nil {
		doc.EmailSent = *req.EmailSent
	}
	return nil
}

// reconcileLines replaces the document's line set with the requested
// one. Inputs carrying the ID of a stored line edit it in place and keep
// its served quantity; the rest are inserts. Stored lines absent from
// the request are dropped.
func (s *DocumentService) reconcileLines(ctx context.Context, doc *document.Document, inputs []LineInput) error {
	existing := make(map[uuid.UUID]document.DocumentLine, len(doc.Lines))
	for _, line := range doc.Lines {
		existing[line.ID] = line
	}

	status, err := s.statuses.ByID(doc.StatusID)
	if err != nil {
		return err
	}

	doc.Lines = doc.Lines[:0]
	for position, input := range inputs {
		var line document.DocumentLine
		if input.ID != nil {
			if stored, ok := existing[*input.ID]; ok {
				line = stored
			}
		}
		if line.ID == uuid.Nil {
			created, err := document.NewDocumentLine(doc.ID, input.ItemID, input.Description, input.Quantity, input.UnitPrice, position+1, s.settings)
			if err != nil {
				return err
			}
			line = *created
			line.StockMode = status.StockMode
		}

		line.ItemID = input.ItemID
		line.Description = input.Description
		line.Quantity = input.Quantity
		line.UnitPrice = input.UnitPrice
		line.Supplied = input.Supplied
		line.Position = position + 1
		if input.Discount1 != nil {
			line.Discount1 = *input.Discount1
		}
		if input.Discount2 != nil {
			line.Discount2 = *input.Discount2
		}
		if input.WithholdingRate != nil {
			line.WithholdingRate = *input.WithholdingRate
		}
		if err := s.applyTax(ctx, &line, input.TaxCode); err != nil {
			return err
		}

		line.Recalculate(s.settings)
		if err := line.Validate(s.settings); err != nil {
			return err
		}
		doc.Lines = append(doc.Lines, line)
	}
	doc.Touch()
	return nil
}

// appendLine adds one requested line to a document under construction
func (s *DocumentService) appendLine(ctx context.Context, doc *document.Document, input LineInput) error {
	line, err := doc.AddLine(input.ItemID, input.Description, input.Quantity, input.UnitPrice, s.settings)
	if err != nil {
		return err
	}
	if input.Discount1 != nil {
		line.Discount1 = *input.Discount1
	}
	if input.Discount2 != nil {
		line.Discount2 = *input.Discount2
	}
	if input.WithholdingRate != nil {
		line.WithholdingRate = *input.WithholdingRate
	}
	line.Supplied = input.Supplied
	if err := s.applyTax(ctx, line, input.TaxCode); err != nil {
		return err
	}
	line.Recalculate(s.settings)
	return line.Validate(s.settings)
}

// applyTax resolves a tax code onto a line's rates. An empty code leaves
// the line untaxed.
func (s *DocumentService) applyTax(ctx context.Context, line *document.DocumentLine, code string) error {
	if code == "" {
		return nil
	}
	tax, err := s.taxes.TaxByCode(ctx, code)
	if err != nil {
		return err
	}
	line.TaxRate = tax.Rate
	line.SurchargeRate = tax.Surcharge
	return nil
}

// buildPipeline assembles the change pipeline for one update: the
// built-in field handlers first, then any externally registered ones.
func (s *DocumentService) buildPipeline() *document.HookPipeline {
	pipeline := document.NewHookPipeline(s.settings, s.statuses)

	pipeline.On(document.FieldCompany, func(ctx context.Context, d *document.Document, previous any) shared.ChangeResult {
		return shared.Reject(shared.NewDomainError("COMPANY_IMMUTABLE", "A document cannot move to another company"))
	})
	pipeline.On(document.FieldSeries, s.chain(document.FieldSeries, s.onSeriesChanged))
	pipeline.On(document.FieldNumber, s.chain(document.FieldNumber, s.onNumberChanged))
	pipeline.On(document.FieldDate, s.chain(document.FieldDate, s.onDateChanged))
	pipeline.On(document.FieldStatus, s.chain(document.FieldStatus, s.onStatusChanged))

	for field, handlers := range s.extraHandlers {
		switch field {
		case document.FieldCompany, document.FieldSeries, document.FieldNumber, document.FieldDate, document.FieldStatus:
			continue // built-in handlers already chain these
		}
		pipeline.On(field, chainHandlers(handlers))
	}
	return pipeline
}

// chain prepends the built-in handler to the externally registered ones
// for a field
func (s *DocumentService) chain(field document.TrackedField, builtin document.ChangeHandler) document.ChangeHandler {
	handlers := append([]document.ChangeHandler{builtin}, s.extraHandlers[field]...)
	return chainHandlers(handlers)
}

func chainHandlers(handlers []document.ChangeHandler) document.ChangeHandler {
	return func(ctx context.Context, d *document.Document, previous any) shared.ChangeResult {
		for _, handler := range handlers {
			if result := handler(ctx, d, previous); result.Rejected() {
				return result
			}
		}
		return shared.Accept()
	}
}

// onSeriesChanged renumbers the document in its new series
func (s *DocumentService) onSeriesChanged(ctx context.Context, d *document.Document, previous any) shared.ChangeResult {
	if d.PeriodID == nil {
		return shared.Reject(shared.ErrPeriodNotFound)
	}
	number, code, err := s.sequencer.NextCode(ctx, d.Kind, *d.PeriodID, d.Series)
	if err != nil {
		return shared.Reject(shared.NewDomainError("SEQUENCE_FAILED", err.Error()))
	}
	d.Number = number
	d.Code = code
	return shared.Accept()
}

// onNumberChanged recomposes the code after a manual renumbering
func (s *DocumentService) onNumberChanged(ctx context.Context, d *document.Document, previous any) shared.ChangeResult {
	if d.Number < 1 {
		return shared.Reject(shared.ErrInvalidNumber)
	}
	d.Code = document.ComposeCode(d.Kind, d.Series, d.Number)
	return shared.Accept()
}

// onDateChanged re-resolves the accounting period; a move into another
// period assigns a fresh sequence number there
func (s *DocumentService) onDateChanged(ctx context.Context, d *document.Document, previous any) shared.ChangeResult {
	period, err := s.periods.PeriodCovering(ctx, d.CompanyID, d.Date)
	if err != nil {
		return shared.Reject(shared.ErrPeriodNotFound)
	}

	samePeriod := d.PeriodID != nil && *d.PeriodID == period.ID
	d.PeriodID = &period.ID
	if samePeriod {
		return shared.Accept()
	}

	number, code, err := s.sequencer.NextCode(ctx, d.Kind, period.ID, d.Series)
	if err != nil {
		return shared.Reject(shared.NewDomainError("SEQUENCE_FAILED", err.Error()))
	}
	d.Number = number
	d.Code = code
	return shared.Accept()
}

// onStatusChanged hands the transition to the workflow
func (s *DocumentService) onStatusChanged(ctx context.Context, d *document.Document, previous any) shared.ChangeResult {
	previousStatusID := d.StatusID
	if stored, ok := previous.(int); ok {
		previousStatusID = stored
	}
	if err := s.workflow.TransitionStatus(ctx, d, previousStatusID); err != nil {
		if domainErr, ok := err.(*shared.DomainError); ok {
			return shared.Reject(domainErr)
		}
		return shared.Reject(shared.NewDomainError("TRANSITION_FAILED", err.Error()))
	}
	return shared.Accept()
}

func (s *DocumentService) publishEvents(ctx context.Context, doc *document.Document) {
	if s.eventPublisher == nil {
		return
	}
	events := doc.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	doc.ClearDomainEvents()
}
