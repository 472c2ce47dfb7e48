package finance

import (
	"context"
	"fmt"

	"github.com/erp/docflow/internal/domain/document"
	"github.com/erp/docflow/internal/domain/shared"
	"go.uber.org/zap"
)

// InvoiceCreatedHandler reacts to invoice creation by generating the
// receipt schedule and posting the invoice to the ledger.
type InvoiceCreatedHandler struct {
	reconciliation *ReconciliationService
	logger         *zap.Logger
}

// NewInvoiceCreatedHandler creates a new handler for document created events
func NewInvoiceCreatedHandler(reconciliation *ReconciliationService, logger *zap.Logger) *InvoiceCreatedHandler {
	return &InvoiceCreatedHandler{
		reconciliation: reconciliation,
		logger:         logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *InvoiceCreatedHandler) EventTypes() []string {
	return []string{document.EventTypeDocumentCreated}
}

// Handle processes a DocumentCreatedEvent. Non-invoice documents are
// ignored.
func (h *InvoiceCreatedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	createdEvent, ok := event.(*document.DocumentCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			document.EventTypeDocumentCreated, event.EventType())
	}
	if createdEvent.Kind != document.KindInvoice {
		return nil
	}

	if err := h.reconciliation.SetupInvoice(ctx, createdEvent.AggregateID()); err != nil {
		h.logger.Error("failed to set up invoice",
			zap.String("invoice_id", createdEvent.AggregateID().String()),
			zap.Error(err),
		)
		return err
	}

	h.logger.Info("invoice set up",
		zap.String("invoice_id", createdEvent.AggregateID().String()),
		zap.String("code", createdEvent.Code),
	)
	return nil
}
