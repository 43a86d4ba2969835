package order

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/shared"
)

// TrackingBaseURL is the carrier tracking page prefix
const TrackingBaseURL = "https://track.mock.com/"

// Fulfillment records a successful hand-off of an order to a supplier
type Fulfillment struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	TrackingNumber    string
	Carrier           string
	TrackingURL       string
	EstimatedDelivery string
	CreatedAt         time.Time
}

// NewFulfillment creates a fulfillment record from supplier tracking data
func NewFulfillment(trackingNumber, carrier, estimatedDelivery string) (*Fulfillment, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, shared.NewValidationError("Tracking number is required")
	}

	return &Fulfillment{
		ID:                uuid.New(),
		TrackingNumber:    trackingNumber,
		Carrier:           strings.TrimSpace(carrier),
		TrackingURL:       TrackingBaseURL + url.PathEscape(trackingNumber),
		EstimatedDelivery: estimatedDelivery,
		CreatedAt:         time.Now(),
	}, nil
}
