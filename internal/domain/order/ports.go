package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupplierLine is one item forwarded to the supplier
type SupplierLine struct {
	SKU      string
	Quantity int
}

// SupplierOrder is the payload submitted to the dropshipping supplier
type SupplierOrder struct {
	OrderID uuid.UUID
	Name    string
	Email   string
	Address ShippingAddress
	Lines   []SupplierLine
}

// NewSupplierOrder builds the supplier payload from an order
func NewSupplierOrder(o *Order) SupplierOrder {
	lines := make([]SupplierLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, SupplierLine{SKU: item.SKU, Quantity: item.Quantity})
	}
	return SupplierOrder{
		OrderID: o.ID,
		Name:    o.CustomerName(),
		Email:   o.GuestEmail,
		Address: o.ShippingAddress,
		Lines:   lines,
	}
}

// SupplierReceipt is what the supplier returns on success
type SupplierReceipt struct {
	TrackingNumber    string
	Carrier           string
	EstimatedDelivery string
}

// SupplierClient forwards orders to the external supplier. A non-nil error
// means the supplier did not accept the order.
type SupplierClient interface {
	SubmitOrder(ctx context.Context, order SupplierOrder) (*SupplierReceipt, error)

	// SyncInventory refreshes supplier stock levels and reports how many SKUs changed
	SyncInventory(ctx context.Context) (int, error)
}

// PaymentIntent is a client-side payment handle
type PaymentIntent struct {
	ClientSecret string
	Amount       decimal.Decimal
}

// PaymentGateway authorizes checkout payments
type PaymentGateway interface {
	// Authorize approves or declines a payment for the given payer.
	// A decline is reported as shared.ErrPaymentDeclined.
	Authorize(ctx context.Context, email string, amount decimal.Decimal) error

	// CreateIntent opens a payment intent for the amount
	CreateIntent(ctx context.Context, amount decimal.Decimal) (*PaymentIntent, error)
}
