package dto

import (
	"net/http"

	"github.com/lumina/storefront/internal/domain/shared"
)

// Error codes returned in the response envelope. Domain codes are passed
// through unchanged; the HTTP layer adds the few that only it can raise.
const (
	ErrCodeValidation      = shared.CodeValidation
	ErrCodeNotFound        = shared.CodeNotFound
	ErrCodeAlreadyExists   = shared.CodeAlreadyExists
	ErrCodeConflict        = shared.CodeConflict
	ErrCodeInvalidState    = shared.CodeInvalidState
	ErrCodeOutOfStock      = shared.CodeOutOfStock
	ErrCodePaymentDeclined = shared.CodePaymentDeclined
	ErrCodeUnauthorized    = shared.CodeUnauthorized
	ErrCodeForbidden       = shared.CodeForbidden
	ErrCodeIntegration     = shared.CodeIntegration
	ErrCodeInternal        = shared.CodeInternal

	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeRateLimited is used when a client exceeds its request budget
	ErrCodeRateLimited = "RATE_LIMIT_EXCEEDED"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	// ErrCodeTokenExpired is used when the bearer token has expired
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeBadRequest: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound: http.StatusNotFound,

	// Conflicts with current state -> 409
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,
	ErrCodeInvalidState:  http.StatusConflict,
	ErrCodeOutOfStock:    http.StatusConflict,

	ErrCodePaymentDeclined: http.StatusPaymentRequired,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,

	ErrCodeIntegration: http.StatusBadGateway,
	ErrCodeInternal:    http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
