package order

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ShippingAddress is the address snapshot taken at checkout
type ShippingAddress struct {
	Address string `json:"address"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
}

// Validate checks that all address fields are present
func (a ShippingAddress) Validate() error {
	if strings.TrimSpace(a.Address) == "" {
		return shared.NewValidationError("Shipping address is required")
	}
	if strings.TrimSpace(a.City) == "" {
		return shared.NewValidationError("Shipping city is required")
	}
	if strings.TrimSpace(a.Zip) == "" {
		return shared.NewValidationError("Shipping zip code is required")
	}
	return nil
}

// Customer identifies the buyer. UserID is set when the buyer was signed in.
type Customer struct {
	UserID *uuid.UUID
	Email  string
	Name   string
}

// Item is an order line with prices frozen at purchase time
type Item struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	VariantID    uuid.UUID
	ProductTitle string
	VariantName  string
	SKU          string
	Quantity     int
	UnitPrice    decimal.Decimal
	TotalPrice   decimal.Decimal
	CreatedAt    time.Time
}

// Order is the aggregate root for a customer purchase
type Order struct {
	shared.BaseAggregateRoot
	UserID          *uuid.UUID
	GuestEmail      string
	GuestName       string
	ShippingAddress ShippingAddress
	Total           decimal.Decimal
	Status          Status
	PaymentStatus   PaymentStatus
	Items           []Item
	Fulfillment     *Fulfillment
}

// NewOrder creates an empty order for a customer. Items are added with AddItem.
func NewOrder(customer Customer, address ShippingAddress) (*Order, error) {
	email := strings.ToLower(strings.TrimSpace(customer.Email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, shared.NewValidationError("A valid contact email is required")
	}
	if strings.TrimSpace(customer.Name) == "" {
		return nil, shared.NewValidationError("Customer name is required")
	}
	if err := address.Validate(); err != nil {
		return nil, err
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            customer.UserID,
		GuestEmail:        email,
		GuestName:         strings.TrimSpace(customer.Name),
		ShippingAddress:   address,
		Total:             decimal.Zero,
		Status:            StatusPending,
		PaymentStatus:     PaymentStatusUnpaid,
		Items:             make([]Item, 0),
	}, nil
}

// AddItem appends a line priced at unitPrice and recomputes the total
func (o *Order) AddItem(variantID uuid.UUID, productTitle, variantName, sku string, quantity int, unitPrice decimal.Decimal) error {
	if o.Status != StatusPending {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot add items to order in %s status", o.Status))
	}
	if quantity < 1 {
		return shared.NewValidationError("Quantity must be at least 1")
	}
	if unitPrice.IsNegative() {
		return shared.NewValidationError("Unit price cannot be negative")
	}

	o.Items = append(o.Items, Item{
		ID:           uuid.New(),
		OrderID:      o.ID,
		VariantID:    variantID,
		ProductTitle: productTitle,
		VariantName:  variantName,
		SKU:          sku,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		TotalPrice:   unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		CreatedAt:    time.Now(),
	})
	o.recalculateTotal()
	return nil
}

// ItemCount returns the total number of units across all lines
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// MarkPaid records a successful synchronous payment
func (o *Order) MarkPaid() error {
	if len(o.Items) == 0 {
		return shared.NewValidationError("Order must have at least one item")
	}
	if err := o.transition(StatusPaid); err != nil {
		return err
	}
	o.PaymentStatus = PaymentStatusPaid
	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return nil
}

// StartFulfillment claims the order for a supplier submission
func (o *Order) StartFulfillment() error {
	if o.Status != StatusPaid {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot fulfill order in %s status", o.Status))
	}
	return o.transition(StatusProcessingAtSupplier)
}

// CompleteFulfillment attaches tracking data and marks the order fulfilled
func (o *Order) CompleteFulfillment(f *Fulfillment) error {
	if f == nil {
		return shared.NewValidationError("Fulfillment record is required")
	}
	if o.Fulfillment != nil {
		return shared.NewDomainError(shared.CodeInvalidState, "Order already has a fulfillment record")
	}
	if err := o.transition(StatusFulfilled); err != nil {
		return err
	}
	f.OrderID = o.ID
	o.Fulfillment = f
	o.AddDomainEvent(NewOrderFulfilledEvent(o))
	return nil
}

// FailFulfillment returns the order to PAID, or to REQUIRES_ATTENTION when escalate is set
func (o *Order) FailFulfillment(reason string, escalate bool) error {
	target := StatusPaid
	if escalate {
		target = StatusRequiresAttention
	}
	if err := o.transition(target); err != nil {
		return err
	}
	o.AddDomainEvent(NewFulfillmentFailedEvent(o, reason, escalate))
	return nil
}

// ResetForRetry moves an escalated order back to PAID so it can be fulfilled again
func (o *Order) ResetForRetry() error {
	if o.Status != StatusRequiresAttention {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot reset order in %s status", o.Status))
	}
	return o.transition(StatusPaid)
}

// IsStalled reports whether a supplier submission has held the order for
// longer than after, which means its outcome was never recorded.
func (o *Order) IsStalled(now time.Time, after time.Duration) bool {
	return o.Status == StatusProcessingAtSupplier && now.Sub(o.UpdatedAt) > after
}

// RecoverStalled returns an order stuck at the supplier step to PAID.
// A submission that is still within its window cannot be recovered.
func (o *Order) RecoverStalled(now time.Time, after time.Duration) error {
	if o.Status != StatusProcessingAtSupplier {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot recover order in %s status", o.Status))
	}
	if !o.IsStalled(now, after) {
		return shared.NewDomainError(shared.CodeInvalidState, "Order is still being processed by the supplier")
	}
	return o.transition(StatusPaid)
}

// Cancel cancels a pre-fulfillment order. A paid order is marked refunded.
func (o *Order) Cancel() error {
	if o.Status == StatusProcessingAtSupplier {
		return shared.NewDomainError(shared.CodeInvalidState, "Cannot cancel order while it is being processed by the supplier")
	}
	if err := o.transition(StatusCancelled); err != nil {
		return err
	}
	if o.PaymentStatus == PaymentStatusPaid {
		o.PaymentStatus = PaymentStatusRefunded
	}
	o.AddDomainEvent(NewOrderCancelledEvent(o))
	return nil
}

// CustomerName returns the display name, "Guest" when unknown
func (o *Order) CustomerName() string {
	if o.GuestName == "" {
		return "Guest"
	}
	return o.GuestName
}

func (o *Order) transition(target Status) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot change order status from %s to %s", o.Status, target))
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.TotalPrice)
	}
	o.Total = total
}
