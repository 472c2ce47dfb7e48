package dto

import "net/http"

// Error codes raised by the HTTP layer itself. Domain errors carry their
// own codes and are mapped through ErrorCodeHTTPStatus below.
const (
	// ErrCodeBadRequest is used for malformed requests (bad JSON, bad params)
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeInternal is used for unexpected server errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes not listed here default to 422: they describe a request that was
// well-formed but rejected by a business rule.
var ErrorCodeHTTPStatus = map[string]int{
	// Transport errors
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeInternal:   http.StatusInternalServerError,

	// Missing resources -> 404 Not Found
	"NOT_FOUND":           http.StatusNotFound,
	"LINE_NOT_FOUND":      http.StatusNotFound,
	"PERIOD_NOT_FOUND":    http.StatusNotFound,
	"WAREHOUSE_NOT_FOUND": http.StatusNotFound,
	"CUSTOMER_NOT_FOUND":  http.StatusNotFound,

	// Conflicts with existing state -> 409 Conflict
	"ALREADY_EXISTS":               http.StatusConflict,
	"ALREADY_PAID":                 http.StatusConflict,
	"DOCUMENT_HAS_CHILDREN":        http.StatusConflict,
	"INVOICE_HAS_REFUNDS":          http.StatusConflict,
	"PAID_RECEIPTS_PREVENT_ACTION": http.StatusConflict,
	"NON_EDITABLE_DOCUMENT":        http.StatusConflict,
	"CANT_REMOVE_RECEIPT":          http.StatusConflict,
	"CANT_REMOVE_ACCOUNTING_ENTRY": http.StatusConflict,
	"OPTIMISTIC_LOCK_ERROR":        http.StatusConflict,

	// Malformed input -> 400 Bad Request
	"INVALID_INPUT":       http.StatusBadRequest,
	"INVALID_KIND":        http.StatusBadRequest,
	"INVALID_AMOUNT":      http.StatusBadRequest,
	"INVALID_QUANTITY":    http.StatusBadRequest,
	"INVALID_ITEM":        http.StatusBadRequest,
	"INVALID_STATUS":      http.StatusBadRequest,
	"INVALID_NUMBER":      http.StatusBadRequest,
	"INVALID_INSTALLMENT": http.StatusBadRequest,
	"INVALID_STOCK_MODE":  http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for a domain error code.
// Unknown codes are business-rule rejections and map to 422.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}
