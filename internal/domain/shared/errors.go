package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState  = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Errors raised by the document, stock and settlement core
var (
	ErrInvalidNumber              = NewDomainError("INVALID_NUMBER", "Document number must be 1 or greater")
	ErrDateOutOfRange             = NewDomainError("DATE_OUT_OF_RANGE", "Document date falls outside its accounting period")
	ErrBadTotal                   = NewDomainError("BAD_TOTAL", "Document totals do not match the sum of its lines")
	ErrPeriodNotFound             = NewDomainError("PERIOD_NOT_FOUND", "No accounting period covers the given date")
	ErrInsufficientStock          = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrNonEditableDocument        = NewDomainError("NON_EDITABLE_DOCUMENT", "Document is locked by its current status")
	ErrPaidReceiptsPreventAction  = NewDomainError("PAID_RECEIPTS_PREVENT_ACTION", "Paid receipts prevent this change")
	ErrCantRemoveReceipt          = NewDomainError("CANT_REMOVE_RECEIPT", "Receipt could not be removed")
	ErrCantRemoveAccountingEntry  = NewDomainError("CANT_REMOVE_ACCOUNTING_ENTRY", "Accounting entry could not be removed")
	ErrWarehouseNotFound          = NewDomainError("WAREHOUSE_NOT_FOUND", "Warehouse not found")
)
