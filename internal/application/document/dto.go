package document

import (
	"time"

	"github.com/erp/docflow/internal/domain/document"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Document DTOs ====================

// CreateDocumentRequest represents a request to create a commercial document
type CreateDocumentRequest struct {
	Kind           document.DocumentKind `json:"kind" binding:"required"`
	CompanyID      uuid.UUID             `json:"company_id" binding:"required"`
	CounterpartyID uuid.UUID             `json:"counterparty_id" binding:"required"`
	WarehouseID    *uuid.UUID            `json:"warehouse_id"`
	Series         *string               `json:"series" binding:"omitempty,min=1,max=10"`
	CurrencyCode   *string               `json:"currency_code" binding:"omitempty,len=3"`
	ExchangeRate   *decimal.Decimal      `json:"exchange_rate"`
	Date           *time.Time            `json:"date"`
	Hour           *string               `json:"hour"`
	PaymentTermID  *uuid.UUID            `json:"payment_term_id"`
	Discount1      *decimal.Decimal      `json:"discount1"`
	Discount2      *decimal.Decimal      `json:"discount2"`
	Notes          string                `json:"notes" binding:"max=2000"`
	Lines          []LineInput           `json:"lines"`
}

// LineInput represents one line in a create or update request
type LineInput struct {
	ID              *uuid.UUID       `json:"id"` // set on update to address an existing line
	ItemID          *uuid.UUID       `json:"item_id"`
	Description     string           `json:"description" binding:"required,min=1,max=500"`
	Quantity        decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	Discount1       *decimal.Decimal `json:"discount1"`
	Discount2       *decimal.Decimal `json:"discount2"`
	TaxCode         string           `json:"tax_code"`
	WithholdingRate *decimal.Decimal `json:"withholding_rate"`
	Supplied        bool             `json:"supplied"`
}

// UpdateDocumentRequest represents a request to update a document. Nil
// fields keep their stored value; Lines, when present, replaces the
// whole line set (lines carrying an ID are edits, the rest inserts,
// stored lines absent from the list are removed).
type UpdateDocumentRequest struct {
	CompanyID      *uuid.UUID       `json:"company_id"`
	CounterpartyID *uuid.UUID       `json:"counterparty_id"`
	WarehouseID    *uuid.UUID       `json:"warehouse_id"`
	Series         *string          `json:"series" binding:"omitempty,min=1,max=10"`
	Number         *int             `json:"number" binding:"omitempty,min=1"`
	CurrencyCode   *string          `json:"currency_code" binding:"omitempty,len=3"`
	ExchangeRate   *decimal.Decimal `json:"exchange_rate"`
	Date           *time.Time       `json:"date"`
	Hour           *string          `json:"hour"`
	PaymentTermID  *uuid.UUID       `json:"payment_term_id"`
	StatusID       *int             `json:"status_id"`
	Discount1      *decimal.Decimal `json:"discount1"`
	Discount2      *decimal.Decimal `json:"discount2"`
	Notes          *string          `json:"notes" binding:"omitempty,max=2000"`
	EmailSent      *bool            `json:"email_sent"`
	Lines          []LineInput      `json:"lines"`
}

// ListDocumentsRequest represents the query of a document listing
type ListDocumentsRequest struct {
	Kind           document.DocumentKind `form:"kind" binding:"required"`
	Page           int                   `form:"page" binding:"omitempty,min=1"`
	PageSize       int                   `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy        string                `form:"order_by"`
	OrderDir       string                `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	CounterpartyID *uuid.UUID            `form:"counterparty_id"`
	WarehouseID    *uuid.UUID            `form:"warehouse_id"`
	Series         *string               `form:"series"`
	StatusID       *int                  `form:"status_id"`
	Paid           *bool                 `form:"paid"`
	StartDate      *time.Time            `form:"start_date" time_format:"2006-01-02"`
	EndDate        *time.Time            `form:"end_date" time_format:"2006-01-02"`
}

// DocumentLineResponse represents a document line in responses
type DocumentLineResponse struct {
	ID                uuid.UUID       `json:"id"`
	ItemID            *uuid.UUID      `json:"item_id,omitempty"`
	Description       string          `json:"description"`
	Quantity          decimal.Decimal `json:"quantity"`
	ServedQuantity    decimal.Decimal `json:"served_quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Discount1         decimal.Decimal `json:"discount1"`
	Discount2         decimal.Decimal `json:"discount2"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	WithholdingRate   decimal.Decimal `json:"withholding_rate"`
	SurchargeRate     decimal.Decimal `json:"surcharge_rate"`
	NetBeforeDiscount decimal.Decimal `json:"net_before_discount"`
	Net               decimal.Decimal `json:"net"`
	Supplied          bool            `json:"supplied"`
	Position          int             `json:"position"`
}

// DocumentResponse represents a document in responses
type DocumentResponse struct {
	ID                uuid.UUID              `json:"id"`
	Kind              document.DocumentKind  `json:"kind"`
	Code              string                 `json:"code"`
	Series            string                 `json:"series"`
	Number            int                    `json:"number"`
	CompanyID         uuid.UUID              `json:"company_id"`
	CounterpartyID    uuid.UUID              `json:"counterparty_id"`
	WarehouseID       uuid.UUID              `json:"warehouse_id"`
	PaymentTermID     uuid.UUID              `json:"payment_term_id"`
	CurrencyCode      string                 `json:"currency_code"`
	ExchangeRate      decimal.Decimal        `json:"exchange_rate"`
	Date              time.Time              `json:"date"`
	Hour              string                 `json:"hour"`
	StatusID          int                    `json:"status_id"`
	Editable          bool                   `json:"editable"`
	Discount1         decimal.Decimal        `json:"discount1"`
	Discount2         decimal.Decimal        `json:"discount2"`
	Net               decimal.Decimal        `json:"net"`
	NetBeforeDiscount decimal.Decimal        `json:"net_before_discount"`
	TaxTotal          decimal.Decimal        `json:"tax_total"`
	WithholdingTotal  decimal.Decimal        `json:"withholding_total"`
	SurchargeTotal    decimal.Decimal        `json:"surcharge_total"`
	SuppliedTotal     decimal.Decimal        `json:"supplied_total"`
	GrandTotal        decimal.Decimal        `json:"grand_total"`
	GrandTotalBase    decimal.Decimal        `json:"grand_total_base"`
	Notes             string                 `json:"notes"`
	EmailSent         bool                   `json:"email_sent"`
	Paid              bool                   `json:"paid"`
	RectifiesID       *uuid.UUID             `json:"rectifies_id,omitempty"`
	Lines             []DocumentLineResponse `json:"lines"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// DocumentListResponse represents a paginated document listing
type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	PageSize  int                `json:"page_size"`
}

// ToDocumentResponse converts a document aggregate to its response form
func ToDocumentResponse(d *document.Document) DocumentResponse {
	lines := make([]DocumentLineResponse, 0, len(d.Lines))
	for _, line := range d.Lines {
		lines = append(lines, DocumentLineResponse{
			ID:                line.ID,
			ItemID:            line.ItemID,
			Description:       line.Description,
			Quantity:          line.Quantity,
			ServedQuantity:    line.ServedQuantity,
			UnitPrice:         line.UnitPrice,
			Discount1:         line.Discount1,
			Discount2:         line.Discount2,
			TaxRate:           line.TaxRate,
			WithholdingRate:   line.WithholdingRate,
			SurchargeRate:     line.SurchargeRate,
			NetBeforeDiscount: line.NetBeforeDiscount,
			Net:               line.Net,
			Supplied:          line.Supplied,
			Position:          line.Position,
		})
	}

	return DocumentResponse{
		ID:                d.ID,
		Kind:              d.Kind,
		Code:              d.Code,
		Series:            d.Series,
		Number:            d.Number,
		CompanyID:         d.CompanyID,
		CounterpartyID:    d.CounterpartyID,
		WarehouseID:       d.WarehouseID,
		PaymentTermID:     d.PaymentTermID,
		CurrencyCode:      d.CurrencyCode,
		ExchangeRate:      d.ExchangeRate,
		Date:              d.Date,
		Hour:              d.Hour,
		StatusID:          d.StatusID,
		Editable:          d.Editable,
		Discount1:         d.Discount1,
		Discount2:         d.Discount2,
		Net:               d.Net,
		NetBeforeDiscount: d.NetBeforeDiscount,
		TaxTotal:          d.TaxTotal,
		WithholdingTotal:  d.WithholdingTotal,
		SurchargeTotal:    d.SurchargeTotal,
		SuppliedTotal:     d.SuppliedTotal,
		GrandTotal:        d.GrandTotal,
		GrandTotalBase:    d.GrandTotalBase,
		Notes:             d.Notes,
		EmailSent:         d.EmailSent,
		Paid:              d.Paid,
		RectifiesID:       d.RectifiesID,
		Lines:             lines,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}
