package shared

// DomainError is an error with a stable machine-readable code. The HTTP
// layer maps codes to statuses; messages are safe to show to users.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError builds a DomainError with the given code and message
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Sentinel domain errors. Callers wanting a specific message build their
// own DomainError with the same code.
var (
	ErrNotFound                = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists           = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrValidation              = NewDomainError("VALIDATION_ERROR", "Invalid input provided")
	ErrConcurrencyConflict     = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized            = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden               = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState            = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInvalidBid              = NewDomainError("INVALID_BID", "Bid does not meet the current minimum")
	ErrDuplicatePendingRequest = NewDomainError("DUPLICATE_PENDING_REQUEST", "A pending request already exists")
	ErrAlreadyResolved         = NewDomainError("ALREADY_RESOLVED", "Request has already been resolved")
)
