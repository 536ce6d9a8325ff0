package dto

import (
	"net/http"

	"github.com/mpvestiario/backend/internal/domain/shared"
)

// Error codes written in the response envelope. Domain codes are passed
// through unchanged; the transport adds a few of its own.
const (
	ErrCodeNotFound            = shared.CodeNotFound
	ErrCodeAlreadyExists       = shared.CodeAlreadyExists
	ErrCodeValidation          = shared.CodeValidation
	ErrCodeInvalidInput        = shared.CodeInvalidInput
	ErrCodeConcurrencyConflict = shared.CodeConcurrencyConflict
	ErrCodeInvalidState        = shared.CodeInvalidState
	ErrCodeInsufficientStock   = shared.CodeInsufficientStock
	ErrCodeStorage             = shared.CodeStorage

	// ErrCodeBadRequest is used for malformed requests (bad JSON, bad path params)
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeRateLimited is used when the client exceeds the request rate
	ErrCodeRateLimited = "RATE_LIMITED"
	// ErrCodeMaxConnections is used when the change stream is at capacity
	ErrCodeMaxConnections = "MAX_CONNECTIONS_REACHED"
	// ErrCodePayloadTooLarge is used when the request body exceeds the limit
	ErrCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeInvalidInput:        http.StatusBadRequest,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:   http.StatusUnprocessableEntity,
	ErrCodeStorage:             http.StatusInternalServerError,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeRateLimited:         http.StatusTooManyRequests,
	ErrCodeMaxConnections:      http.StatusServiceUnavailable,
	ErrCodePayloadTooLarge:     http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
