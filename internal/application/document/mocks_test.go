package document

import (
	"context"
	"time"

	"github.com/erp/docflow/internal/domain/document"
	"github.com/erp/docflow/internal/domain/inventory"
	"github.com/erp/docflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockDocumentRepository is a mock implementation of DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindByRef(ctx context.Context, ref document.DocumentRef) (*document.Document, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByCode(ctx context.Context, kind document.DocumentKind, code string) (*document.Document, error) {
	args := m.Called(ctx, kind, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindAll(ctx context.Context, kind document.DocumentKind, filter shared.Filter) ([]document.Document, error) {
	args := m.Called(ctx, kind, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]document.Document), args.Error(1)
}

func (m *MockDocumentRepository) Save(ctx context.Context, doc *document.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, ref document.DocumentRef) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockDocumentRepository) ExistsRefundOf(ctx context.Context, invoiceID uuid.UUID) (bool, error) {
	args := m.Called(ctx, invoiceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentRepository) Count(ctx context.Context, kind document.DocumentKind, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, kind, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockEdgeRepository is a mock implementation of EdgeRepository
type MockEdgeRepository struct {
	mock.Mock
}

func (m *MockEdgeRepository) Insert(ctx context.Context, edge document.TransformationEdge) error {
	args := m.Called(ctx, edge)
	return args.Error(0)
}

func (m *MockEdgeRepository) Children(ctx context.Context, ref document.DocumentRef) ([]document.TransformationEdge, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]document.TransformationEdge), args.Error(1)
}

func (m *MockEdgeRepository) Parents(ctx context.Context, ref document.DocumentRef) ([]document.TransformationEdge, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]document.TransformationEdge), args.Error(1)
}

func (m *MockEdgeRepository) DeleteFor(ctx context.Context, ref document.DocumentRef) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

// MockSequencer is a mock implementation of Sequencer
type MockSequencer struct {
	mock.Mock
}

func (m *MockSequencer) NextCode(ctx context.Context, kind document.DocumentKind, periodID uuid.UUID, series string) (int, string, error) {
	args := m.Called(ctx, kind, periodID, series)
	return args.Int(0), args.String(1), args.Error(2)
}

// MockPeriodResolver is a mock implementation of PeriodResolver
type MockPeriodResolver struct {
	mock.Mock
}

func (m *MockPeriodResolver) PeriodCovering(ctx context.Context, companyID uuid.UUID, date time.Time) (*document.Period, error) {
	args := m.Called(ctx, companyID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Period), args.Error(1)
}

// MockTaxLookup is a mock implementation of TaxLookup
type MockTaxLookup struct {
	mock.Mock
}

func (m *MockTaxLookup) TaxByCode(ctx context.Context, code string) (*document.Tax, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Tax), args.Error(1)
}

// passthroughUnitOfWork runs the function directly, without transaction
// management
type passthroughUnitOfWork struct{}

func (passthroughUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memStockRepo is an in-memory StockRepository so stock effects can be
// asserted across several adjustments
type memStockRepo struct {
	records map[string]*inventory.StockRecord
}

func newMemStockRepo() *memStockRepo {
	return &memStockRepo{records: make(map[string]*inventory.StockRecord)}
}

func stockKey(warehouseID, itemID uuid.UUID) string {
	return warehouseID.String() + "/" + itemID.String()
}

func (r *memStockRepo) FindByWarehouseAndItem(ctx context.Context, warehouseID, itemID uuid.UUID) (*inventory.StockRecord, error) {
	record, ok := r.records[stockKey(warehouseID, itemID)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return record, nil
}

func (r *memStockRepo) FindOrCreate(ctx context.Context, warehouseID, itemID uuid.UUID) (*inventory.StockRecord, error) {
	if record, ok := r.records[stockKey(warehouseID, itemID)]; ok {
		return record, nil
	}
	record, err := inventory.NewStockRecord(warehouseID, itemID)
	if err != nil {
		return nil, err
	}
	r.records[stockKey(warehouseID, itemID)] = record
	return record, nil
}

func (r *memStockRepo) FindByItem(ctx context.Context, itemID uuid.UUID) ([]inventory.StockRecord, error) {
	var out []inventory.StockRecord
	for _, record := range r.records {
		if record.ItemID == itemID {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (r *memStockRepo) Save(ctx context.Context, record *inventory.StockRecord) error {
	r.records[stockKey(record.WarehouseID, record.ItemID)] = record
	return nil
}

// recordingPublisher collects published events for assertions
type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) ofType(eventType string) []shared.DomainEvent {
	var out []shared.DomainEvent
	for _, event := range p.events {
		if event.EventType() == eventType {
			out = append(out, event)
		}
	}
	return out
}

// permissivePolicy allows negative stock for every item
type permissivePolicy struct{}

func (permissivePolicy) AllowsNegativeStock(ctx context.Context, itemID uuid.UUID) (bool, error) {
	return true, nil
}

// strictPolicy forbids negative stock for every item
type strictPolicy struct{}

func (strictPolicy) AllowsNegativeStock(ctx context.Context, itemID uuid.UUID) (bool, error) {
	return false, nil
}
