package dto

import "net/http"

// Transport-level error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeValidation is used when request validation fails
	ErrCodeValidation = "VALIDATION_FAILED"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeInternal is used for unexpected server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeRequestTooLarge is used when the request body exceeds the limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Ledger guards that reject a replayed or conflicting write map to 409;
// business rule violations map to 422.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	"NOT_FOUND": http.StatusNotFound,

	"ALREADY_EXISTS":        http.StatusConflict,
	"CONCURRENCY_CONFLICT":  http.StatusConflict,
	"DUPLICATE_APPLICATION": http.StatusConflict,

	"INVALID_INPUT":    http.StatusBadRequest,
	"INVALID_SKU":      http.StatusBadRequest,
	"INVALID_NAME":     http.StatusBadRequest,
	"INVALID_PRICE":    http.StatusBadRequest,
	"INVALID_QUANTITY": http.StatusBadRequest,
	"INVALID_AMOUNT":   http.StatusBadRequest,
	"INVALID_CAPACITY": http.StatusBadRequest,
	"INVALID_METHOD":   http.StatusBadRequest,
	"INVALID_STATUS":   http.StatusBadRequest,

	"INVALID_STATE":      http.StatusUnprocessableEntity,
	"INVALID_TRANSITION": http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK": http.StatusUnprocessableEntity,
	"OVER_ALLOCATION":    http.StatusUnprocessableEntity,
	"CAPACITY_EXCEEDED":  http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status for an error code. Domain error
// codes without an explicit mapping are business rule violations, so the
// fallback is 422 rather than 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}
