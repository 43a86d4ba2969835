package notification

import (
	"context"
	"fmt"

	"github.com/lumina/storefront/internal/domain/order"
	"github.com/lumina/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// FulfillmentLogHandler records supplier outcomes in the log
type FulfillmentLogHandler struct {
	logger *zap.Logger
}

// NewFulfillmentLogHandler creates a new FulfillmentLogHandler
func NewFulfillmentLogHandler(logger *zap.Logger) *FulfillmentLogHandler {
	return &FulfillmentLogHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *FulfillmentLogHandler) EventTypes() []string {
	return []string{order.EventTypeOrderFulfilled, order.EventTypeFulfillmentFailed}
}

// Handle logs fulfilled and failed submissions
func (h *FulfillmentLogHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *order.OrderFulfilledEvent:
		h.logger.Info("Order shipped by supplier",
			zap.String("order_id", e.OrderID.String()),
			zap.String("tracking_number", e.TrackingNumber),
			zap.String("carrier", e.Carrier),
		)
	case *order.FulfillmentFailedEvent:
		level := h.logger.Warn
		if e.Escalated {
			level = h.logger.Error
		}
		level("Supplier fulfillment failed",
			zap.String("order_id", e.OrderID.String()),
			zap.String("reason", e.Reason),
			zap.Bool("escalated", e.Escalated),
		)
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	return nil
}
