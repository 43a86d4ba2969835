package handler

import "github.com/lumina/storefront/internal/interfaces/http/dto"

// Envelope shapes for the generated OpenAPI document. Handlers write
// dto.Response; these only give swag concrete types to describe.

// APIResponse is the success envelope around a typed payload
// @Description Storefront response envelope; data holds the payload
type APIResponse[T any] struct {
	Success bool           `json:"success" example:"true"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// ErrorResponse is the failure envelope. error.code is one of the stable
// codes clients branch on, such as OUT_OF_STOCK or PAYMENT_DECLINED.
// @Description Failure envelope with a stable error code
type ErrorResponse struct {
	Success bool      `json:"success" example:"false"`
	Error   ErrorBody `json:"error"`
}

// ErrorBody documents dto.ErrorInfo with examples
type ErrorBody struct {
	Code      string                 `json:"code" example:"OUT_OF_STOCK"`
	Message   string                 `json:"message" example:"Only 2 left of MCL-GRY"`
	RequestID string                 `json:"request_id,omitempty" example:"3f6c1d2e-9b0a-4e47-8d1f-2a5b7c9e0f11"`
	Details   []dto.ValidationDetail `json:"details,omitempty"`
}

// ValidationErrorResponse is returned when the body fails binding; one
// detail per rejected field, named by its JSON path
// @Description VALIDATION_ERROR envelope, e.g. field "items[1].quantity"
type ValidationErrorResponse struct {
	Success bool      `json:"success" example:"false"`
	Error   ErrorBody `json:"error"`
}

// RateLimitedResponse is returned with 429 and a Retry-After header
// @Description RATE_LIMIT_EXCEEDED envelope
type RateLimitedResponse struct {
	Success bool      `json:"success" example:"false"`
	Error   ErrorBody `json:"error"`
}
