package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineInput is a requested cart line. Client-side prices are ignored.
type LineInput struct {
	VariantID uuid.UUID `json:"variantId" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=99"`
}

// ProcessCheckoutInput carries the cart and contact details of a checkout
type ProcessCheckoutInput struct {
	Items     []LineInput `json:"items" binding:"required,min=1,dive"`
	Email     string      `json:"email" binding:"required,email,max=254"`
	FirstName string      `json:"firstName" binding:"required,min=1,max=100"`
	LastName  string      `json:"lastName" binding:"required,min=1,max=100"`
	Address   string      `json:"address" binding:"required,min=1,max=255"`
	City      string      `json:"city" binding:"required,min=1,max=100"`
	Zip       string      `json:"zip" binding:"required,min=1,max=20"`

	// UserID links the order to a signed-in customer
	UserID *uuid.UUID `json:"-"`
}

// ProcessCheckoutResult is returned for a placed order
type ProcessCheckoutResult struct {
	OrderID       uuid.UUID       `json:"orderId"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
}

// CreateSessionInput is the cart priced for a payment session
type CreateSessionInput struct {
	Items []LineInput `json:"items" binding:"required,min=1,dive"`
}

// SessionResult is a mock payment intent for the priced cart
type SessionResult struct {
	ClientSecret string          `json:"clientSecret"`
	Total        decimal.Decimal `json:"total"`
}
