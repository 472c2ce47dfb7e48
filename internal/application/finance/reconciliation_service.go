package finance

import (
	"context"
	"time"

	appdocument "github.com/erp/docflow/internal/application/document"
	"github.com/erp/docflow/internal/domain/document"
	"github.com/erp/docflow/internal/domain/finance"
	"github.com/erp/docflow/internal/domain/shared"
	"github.com/google/uuid"
)

// ReconciliationService keeps invoices, their receipt schedules, their
// payments and the posted ledger entries consistent with one another. It
// hooks into the document update pipeline for invoice changes and guards
// invoice deletion.
type ReconciliationService struct {
	docs           document.DocumentRepository
	receipts       finance.ReceiptRepository
	payments       finance.PaymentRepository
	generator      finance.ReceiptGenerator
	poster         finance.AccountingPoster
	uow            document.UnitOfWork
	eventPublisher shared.EventPublisher
	now            func() time.Time
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	docs document.DocumentRepository,
	receipts finance.ReceiptRepository,
	payments finance.PaymentRepository,
	generator finance.ReceiptGenerator,
	poster finance.AccountingPoster,
	uow document.UnitOfWork,
) *ReconciliationService {
	return &ReconciliationService{
		docs:      docs,
		receipts:  receipts,
		payments:  payments,
		generator: generator,
		poster:    poster,
		uow:       uow,
		now:       time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ReconciliationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Attach wires the reconciliation hooks into the document services:
// change handlers on the update pipeline and the deletion guard.
func (s *ReconciliationService) Attach(docs *appdocument.DocumentService, workflow *appdocument.WorkflowService) {
	docs.RegisterChangeHandler(document.FieldCounterparty, s.onScheduleAffectingChange)
	docs.RegisterChangeHandler(document.FieldPaymentTerm, s.onScheduleAffectingChange)
	docs.RegisterChangeHandler(document.FieldDate, s.onScheduleAffectingChange)
	docs.RegisterChangeHandler(document.FieldTotal, s.onTotalChanged)
	docs.RegisterChangeHandler(document.FieldPaid, s.onPaidChanged)
	workflow.AddDeleteGuard(s)
}

// SetupInvoice prepares a freshly created invoice: the receipt schedule
// is generated from its payment terms and the invoice is posted to the
// ledger.
func (s *ReconciliationService) SetupInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	return s.uow.Do(ctx, func(ctx context.Context) error {
		invoice, err := s.docs.FindByRef(ctx, document.DocumentRef{Kind: document.KindInvoice, ID: invoiceID})
		if err != nil {
			return err
		}

		if _, err := s.generator.Generate(ctx, invoice); err != nil {
			return err
		}

		entryID, err := s.poster.PostInvoice(ctx, invoice)
		if err != nil {
			return err
		}
		invoice.AccountingEntryID = &entryID
		return s.docs.Save(ctx, invoice)
	})
}

// PayReceipt settles one receipt. Unless suppressed, exactly one payment
// is recorded and posted to the ledger. When the last open receipt of an
// invoice is settled, the invoice is flagged paid.
func (s *ReconciliationService) PayReceipt(ctx context.Context, receiptID uuid.UUID, req PayReceiptRequest) (*ReceiptResponse, error) {
	var receipt *finance.Receipt

	err := s.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		receipt, err = s.receipts.FindByID(ctx, receiptID)
		if err != nil {
			return err
		}

		method := uuid.Nil
		if req.PaymentMethodID != nil {
			method = *req.PaymentMethodID
		}
		paidAt := s.now()
		if req.PaidAt != nil {
			paidAt = *req.PaidAt
		}

		payment, err := receipt.MarkPaid(method, paidAt, req.SuppressPayment)
		if err != nil {
			return err
		}
		if payment != nil {
			entryID, err := s.poster.PostPayment(ctx, payment)
			if err != nil {
				return err
			}
			payment.AccountingEntryID = &entryID
			if err := s.payments.Save(ctx, payment); err != nil {
				return err
			}
		}
		if err := s.receipts.Save(ctx, receipt); err != nil {
			return err
		}
		return s.refreshInvoicePaid(ctx, receipt.InvoiceID)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, finance.NewReceiptPaidEvent(receipt))
	resp := ToReceiptResponse(receipt)
	return &resp, nil
}

// UnpayReceipt reopens a settled receipt, removing its payments and
// clearing the invoice's paid flag
func (s *ReconciliationService) UnpayReceipt(ctx context.Context, receiptID uuid.UUID) (*ReceiptResponse, error) {
	var receipt *finance.Receipt

	err := s.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		receipt, err = s.receipts.FindByID(ctx, receiptID)
		if err != nil {
			return err
		}

		if err := s.retractPayments(ctx, receipt.ID); err != nil {
			return err
		}
		receipt.MarkUnpaid()
		if err := s.receipts.Save(ctx, receipt); err != nil {
			return err
		}
		return s.refreshInvoicePaid(ctx, receipt.InvoiceID)
	})
	if err != nil {
		return nil, err
	}

	resp := ToReceiptResponse(receipt)
	return &resp, nil
}

// DeleteReceipt removes a receipt and its payments
func (s *ReconciliationService) DeleteReceipt(ctx context.Context, receiptID uuid.UUID) error {
	return s.uow.Do(ctx, func(ctx context.Context) error {
		receipt, err := s.receipts.FindByID(ctx, receiptID)
		if err != nil {
			return err
		}
		if err := s.retractPayments(ctx, receipt.ID); err != nil {
			return err
		}
		if err := s.receipts.Delete(ctx, receipt.ID); err != nil {
			return shared.ErrCantRemoveReceipt
		}
		return s.refreshInvoicePaid(ctx, receipt.InvoiceID)
	})
}

// ListReceipts returns the receipt schedule of an invoice
func (s *ReconciliationService) ListReceipts(ctx context.Context, invoiceID uuid.UUID) ([]ReceiptResponse, error) {
	receipts, err := s.receipts.FindByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	responses := make([]ReceiptResponse, 0, len(receipts))
	for idx := range receipts {
		responses = append(responses, ToReceiptResponse(&receipts[idx]))
	}
	return responses, nil
}

// BeforeDelete implements the deletion guard for invoices: an invoice
// with refund invoices cannot be deleted; otherwise its receipts,
// payments and ledger entry go with it.
func (s *ReconciliationService) BeforeDelete(ctx context.Context, doc *document.Document) error {
	if doc.Kind != document.KindInvoice {
		return nil
	}

	hasRefunds, err := s.docs.ExistsRefundOf(ctx, doc.ID)
	if err != nil {
		return err
	}
	if hasRefunds {
		return shared.NewDomainError("INVOICE_HAS_REFUNDS", "Invoice has refund invoices and cannot be deleted")
	}

	receipts, err := s.receipts.FindByInvoice(ctx, doc.ID)
	if err != nil {
		return err
	}
	for idx := range receipts {
		if err := s.retractPayments(ctx, receipts[idx].ID); err != nil {
			return err
		}
		if err := s.receipts.Delete(ctx, receipts[idx].ID); err != nil {
			return shared.ErrCantRemoveReceipt
		}
	}

	return s.retractInvoiceEntry(ctx, doc)
}

// onScheduleAffectingChange reacts to invoice header changes that shift
// the schedule (counterparty, payment term, date): with paid receipts on
// file the change is refused, otherwise the schedule is re-derived.
func (s *ReconciliationService) onScheduleAffectingChange(ctx context.Context, d *document.Document, previous any) shared.ChangeResult {
	if d.Kind != document.KindInvoice {
		return shared.Accept()
	}

	receipts, err := s.receipts.FindByInvoice(ctx, d.ID)
	if err != nil {
		return shared.Reject(shared.NewDomainError("RECEIPT_LOOKUP_FAILED", err.Error()))
	}
	for idx := range receipts {
		if receipts[idx].Paid {
			return shared.Reject(shared.ErrPaidReceiptsPreventAction)
		}
	}

	if err := s.generator.Update(ctx, d); err != nil {
		return rejectWith(err)
	}
	s.publish(ctx, finance.NewReceiptsReplacedEvent(d.ID))
	return shared.Accept()
}

// onTotalChanged re-posts the ledger entry at the new amount and
// re-splits the outstanding schedule. Paid receipts keep their amounts;
// only the open remainder moves.
func (s *ReconciliationService) onTotalChanged(ctx context.Context, d *document.Document, previous any) shared.ChangeResult {
	if d.Kind != document.KindInvoice {
		return shared.Accept()
	}

	if d.AccountingEntryID != nil {
		if err := s.retractInvoiceEntry(ctx, d); err != nil {
			return rejectWith(err)
		}
		entryID, err := s.poster.PostInvoice(ctx, d)
		if err != nil {
			return rejectWith(err)
		}
		d.AccountingEntryID = &entryID
	}

	if err := s.generator.Update(ctx, d); err != nil {
		return rejectWith(err)
	}
	s.publish(ctx, finance.NewReceiptsReplacedEvent(d.ID))
	return shared.Accept()
}

// onPaidChanged settles or reopens the whole schedule when the paid flag
// is toggled on the invoice itself
func (s *ReconciliationService) onPaidChanged(ctx context.Context, d *document.Document, previous any) shared.ChangeResult {
	if d.Kind != document.KindInvoice {
		return shared.Accept()
	}

	receipts, err := s.receipts.FindByInvoice(ctx, d.ID)
	if err != nil {
		return shared.Reject(shared.NewDomainError("RECEIPT_LOOKUP_FAILED", err.Error()))
	}

	for idx := range receipts {
		receipt := &receipts[idx]
		if d.Paid && !receipt.Paid {
			payment, err := receipt.MarkPaid(uuid.Nil, s.now(), false)
			if err != nil {
				return rejectWith(err)
			}
			entryID, err := s.poster.PostPayment(ctx, payment)
			if err != nil {
				return rejectWith(err)
			}
			payment.AccountingEntryID = &entryID
			if err := s.payments.Save(ctx, payment); err != nil {
				return rejectWith(err)
			}
		}
		if !d.Paid && receipt.Paid {
			if err := s.retractPayments(ctx, receipt.ID); err != nil {
				return rejectWith(err)
			}
			receipt.MarkUnpaid()
		}
		if err := s.receipts.Save(ctx, receipt); err != nil {
			return rejectWith(err)
		}
	}

	if d.Paid {
		s.publish(ctx, finance.NewInvoiceSettledEvent(d.ID))
	}
	return shared.Accept()
}

// refreshInvoicePaid recomputes the invoice's paid flag from its
// receipts
func (s *ReconciliationService) refreshInvoicePaid(ctx context.Context, invoiceID uuid.UUID) error {
	invoice, err := s.docs.FindByRef(ctx, document.DocumentRef{Kind: document.KindInvoice, ID: invoiceID})
	if err != nil {
		return err
	}

	receipts, err := s.receipts.FindByInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	paid := len(receipts) > 0
	for idx := range receipts {
		if !receipts[idx].Paid {
			paid = false
			break
		}
	}

	if invoice.Paid == paid {
		return nil
	}
	invoice.Paid = paid
	if err := s.docs.Save(ctx, invoice); err != nil {
		return err
	}
	if paid {
		s.publish(ctx, finance.NewInvoiceSettledEvent(invoiceID))
	}
	return nil
}

// retractPayments removes every payment of a receipt, retracting their
// ledger entries first
func (s *ReconciliationService) retractPayments(ctx context.Context, receiptID uuid.UUID) error {
	payments, err := s.payments.FindByReceipt(ctx, receiptID)
	if err != nil {
		return err
	}
	for idx := range payments {
		if payments[idx].AccountingEntryID != nil {
			if err := s.poster.RetractEntry(ctx, *payments[idx].AccountingEntryID); err != nil {
				return err
			}
		}
	}
	return s.payments.DeleteByReceipt(ctx, receiptID)
}

// retractInvoiceEntry retracts the invoice's posted ledger entry, if it
// is still open for changes
func (s *ReconciliationService) retractInvoiceEntry(ctx context.Context, invoice *document.Document) error {
	if invoice.AccountingEntryID == nil {
		return nil
	}

	editable, err := s.poster.EntryEditable(ctx, *invoice.AccountingEntryID)
	if err != nil {
		return err
	}
	if !editable {
		return shared.ErrCantRemoveAccountingEntry
	}
	if err := s.poster.RetractEntry(ctx, *invoice.AccountingEntryID); err != nil {
		return err
	}
	invoice.AccountingEntryID = nil
	return nil
}

func rejectWith(err error) shared.ChangeResult {
	if domainErr, ok := err.(*shared.DomainError); ok {
		return shared.Reject(domainErr)
	}
	return shared.Reject(shared.NewDomainError("RECONCILIATION_FAILED", err.Error()))
}

func (s *ReconciliationService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}
