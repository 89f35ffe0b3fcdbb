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
	ErrNotFound             = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists        = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput         = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict  = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState         = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInvalidTransition    = NewDomainError("INVALID_TRANSITION", "Status transition not permitted")
	ErrInsufficientStock    = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrOverAllocation       = NewDomainError("OVER_ALLOCATION", "Requested quantity exceeds remaining order quantity")
	ErrCapacityExceeded     = NewDomainError("CAPACITY_EXCEEDED", "Requested load exceeds vehicle capacity")
	ErrDuplicateApplication = NewDomainError("DUPLICATE_APPLICATION", "Operation already applied to this target")
)
