package order

import (
	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeOrder is the aggregate type for order events
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderPlaced       = "order.placed"
	EventTypeOrderFulfilled    = "order.fulfilled"
	EventTypeFulfillmentFailed = "order.fulfillment_failed"
	EventTypeOrderCancelled    = "order.cancelled"
)

// PlacedLine is a purchased line carried by OrderPlacedEvent
type PlacedLine struct {
	VariantID uuid.UUID `json:"variant_id"`
	SKU       string    `json:"sku"`
	Quantity  int       `json:"quantity"`
}

// OrderPlacedEvent is published after a checkout commits
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID       `json:"order_id"`
	CustomerName string          `json:"customer_name"`
	Email        string          `json:"email"`
	Total        decimal.Decimal `json:"total"`
	Lines        []PlacedLine    `json:"lines"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	lines := make([]PlacedLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, PlacedLine{VariantID: item.VariantID, SKU: item.SKU, Quantity: item.Quantity})
	}
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		CustomerName:    o.CustomerName(),
		Email:           o.GuestEmail,
		Total:           o.Total,
		Lines:           lines,
	}
}

// OrderFulfilledEvent is published when the supplier accepted the order
type OrderFulfilledEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID `json:"order_id"`
	TrackingNumber string    `json:"tracking_number"`
	Carrier        string    `json:"carrier"`
}

// NewOrderFulfilledEvent creates a new OrderFulfilledEvent
func NewOrderFulfilledEvent(o *Order) *OrderFulfilledEvent {
	e := &OrderFulfilledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderFulfilled, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
	}
	if o.Fulfillment != nil {
		e.TrackingNumber = o.Fulfillment.TrackingNumber
		e.Carrier = o.Fulfillment.Carrier
	}
	return e
}

// FulfillmentFailedEvent is published when the supplier rejected the order
type FulfillmentFailedEvent struct {
	shared.BaseDomainEvent
	OrderID   uuid.UUID `json:"order_id"`
	Reason    string    `json:"reason"`
	Escalated bool      `json:"escalated"`
}

// NewFulfillmentFailedEvent creates a new FulfillmentFailedEvent
func NewFulfillmentFailedEvent(o *Order, reason string, escalated bool) *FulfillmentFailedEvent {
	return &FulfillmentFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFulfillmentFailed, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		Reason:          reason,
		Escalated:       escalated,
	}
}

// OrderCancelledEvent is published when an admin cancels an order
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID `json:"order_id"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(o *Order) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
	}
}
