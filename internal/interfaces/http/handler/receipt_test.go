package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	appfinance "github.com/erp/docflow/internal/application/finance"
	"github.com/erp/docflow/internal/domain/shared"
)

// MockReconciliationService implements ReconciliationService for testing
type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) ListReceipts(ctx context.Context, invoiceID uuid.UUID) ([]appfinance.ReceiptResponse, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appfinance.ReceiptResponse), args.Error(1)
}

func (m *MockReconciliationService) PayReceipt(ctx context.Context, receiptID uuid.UUID, req appfinance.PayReceiptRequest) (*appfinance.ReceiptResponse, error) {
	args := m.Called(ctx, receiptID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appfinance.ReceiptResponse), args.Error(1)
}

func (m *MockReconciliationService) UnpayReceipt(ctx context.Context, receiptID uuid.UUID) (*appfinance.ReceiptResponse, error) {
	args := m.Called(ctx, receiptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appfinance.ReceiptResponse), args.Error(1)
}

func (m *MockReconciliationService) DeleteReceipt(ctx context.Context, receiptID uuid.UUID) error {
	args := m.Called(ctx, receiptID)
	return args.Error(0)
}

func setupReceiptRouter(reconciliation ReconciliationService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	api := engine.Group("/api/v1")
	NewReceiptHandler(reconciliation).RegisterRoutes(api)
	return engine
}

func TestReceiptHandler_ListByInvoice(t *testing.T) {
	invoiceID := uuid.New()

	t.Run("returns the schedule", func(t *testing.T) {
		svc := new(MockReconciliationService)
		svc.On("ListReceipts", mock.Anything, invoiceID).
			Return([]appfinance.ReceiptResponse{
				{ID: uuid.New(), InvoiceID: invoiceID, Installment: 1, Amount: decimal.NewFromInt(100)},
				{ID: uuid.New(), InvoiceID: invoiceID, Installment: 2, Amount: decimal.NewFromInt(100)},
			}, nil)
		engine := setupReceiptRouter(svc)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/"+invoiceID.String()+"/receipts", nil)
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("rejects a malformed invoice ID", func(t *testing.T) {
		engine := setupReceiptRouter(new(MockReconciliationService))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/nope/receipts", nil)
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReceiptHandler_Pay(t *testing.T) {
	receiptID := uuid.New()
	paidAt := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("settles the receipt", func(t *testing.T) {
		svc := new(MockReconciliationService)
		svc.On("PayReceipt", mock.Anything, receiptID, mock.MatchedBy(func(req appfinance.PayReceiptRequest) bool {
			return req.PaidAt != nil && req.PaidAt.Equal(paidAt)
		})).Return(&appfinance.ReceiptResponse{ID: receiptID, Paid: true, PaidDate: &paidAt}, nil)
		engine := setupReceiptRouter(svc)

		body, _ := json.Marshal(gin.H{"paid_at": paidAt})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts/"+receiptID.String()+"/pay", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("maps ALREADY_PAID to 409", func(t *testing.T) {
		svc := new(MockReconciliationService)
		svc.On("PayReceipt", mock.Anything, receiptID, mock.Anything).
			Return(nil, shared.NewDomainError("ALREADY_PAID", "receipt is already settled"))
		engine := setupReceiptRouter(svc)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts/"+receiptID.String()+"/pay", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestReceiptHandler_Unpay(t *testing.T) {
	receiptID := uuid.New()

	svc := new(MockReconciliationService)
	svc.On("UnpayReceipt", mock.Anything, receiptID).
		Return(&appfinance.ReceiptResponse{ID: receiptID, Paid: false}, nil)
	engine := setupReceiptRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts/"+receiptID.String()+"/unpay", nil)
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestReceiptHandler_Delete(t *testing.T) {
	receiptID := uuid.New()

	t.Run("deletes and returns 204", func(t *testing.T) {
		svc := new(MockReconciliationService)
		svc.On("DeleteReceipt", mock.Anything, receiptID).Return(nil)
		engine := setupReceiptRouter(svc)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/receipts/"+receiptID.String(), nil)
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("maps a paid receipt to 409", func(t *testing.T) {
		svc := new(MockReconciliationService)
		svc.On("DeleteReceipt", mock.Anything, receiptID).
			Return(shared.NewDomainError("CANT_REMOVE_RECEIPT", "paid receipts cannot be removed"))
		engine := setupReceiptRouter(svc)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/receipts/"+receiptID.String(), nil)
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}
