package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/order"
	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used in order lists
const DateLayout = "2006-01-02"

// StatusAll disables the status filter of the admin order list
const StatusAll = "ALL"

// OrderRow is a line of the admin order list
type OrderRow struct {
	ID           uuid.UUID       `json:"id"`
	CustomerName string          `json:"customerName"`
	Date         string          `json:"date"`
	Total        decimal.Decimal `json:"total"`
	Status       string          `json:"status"`
	ItemsCount   int             `json:"itemsCount"`
}

// ItemResponse is an order line with frozen prices
type ItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	VariantID    uuid.UUID       `json:"variantId"`
	ProductTitle string          `json:"productTitle"`
	VariantName  string          `json:"variantName"`
	SKU          string          `json:"sku"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
}

// FulfillmentResponse carries tracking data of a fulfilled order
type FulfillmentResponse struct {
	TrackingNumber    string    `json:"trackingNumber"`
	Carrier           string    `json:"carrier"`
	TrackingURL       string    `json:"trackingUrl"`
	EstimatedDelivery string    `json:"estimatedDelivery"`
	CreatedAt         time.Time `json:"createdAt"`
}

// OrderDetail is the full view of an order
type OrderDetail struct {
	ID              uuid.UUID             `json:"id"`
	UserID          *uuid.UUID            `json:"userId,omitempty"`
	CustomerName    string                `json:"customerName"`
	Email           string                `json:"email"`
	ShippingAddress order.ShippingAddress `json:"shippingAddress"`
	Date            string                `json:"date"`
	Total           decimal.Decimal       `json:"total"`
	Status          string                `json:"status"`
	PaymentStatus   string                `json:"paymentStatus"`
	ItemsCount      int                   `json:"itemsCount"`
	Items           []ItemResponse        `json:"items"`
	Fulfillment     *FulfillmentResponse  `json:"fulfillment,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
	Version         int                   `json:"version"`
}

// Document is a rendered file returned to the client
type Document struct {
	ContentType string
	Filename    string
	Data        []byte
}

// ToOrderRow converts a domain order to an admin list row
func ToOrderRow(o *order.Order) OrderRow {
	return OrderRow{
		ID:           o.ID,
		CustomerName: o.CustomerName(),
		Date:         o.CreatedAt.UTC().Format(DateLayout),
		Total:        o.Total,
		Status:       string(o.Status),
		ItemsCount:   o.ItemCount(),
	}
}

// ToOrderRows converts a slice of domain orders
func ToOrderRows(orders []order.Order) []OrderRow {
	rows := make([]OrderRow, len(orders))
	for i := range orders {
		rows[i] = ToOrderRow(&orders[i])
	}
	return rows
}

// ToOrderDetail converts a domain order to the detail view
func ToOrderDetail(o *order.Order) OrderDetail {
	items := make([]ItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = ItemResponse{
			ID:           item.ID,
			VariantID:    item.VariantID,
			ProductTitle: item.ProductTitle,
			VariantName:  item.VariantName,
			SKU:          item.SKU,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			TotalPrice:   item.TotalPrice,
		}
	}

	detail := OrderDetail{
		ID:              o.ID,
		UserID:          o.UserID,
		CustomerName:    o.CustomerName(),
		Email:           o.GuestEmail,
		ShippingAddress: o.ShippingAddress,
		Date:            o.CreatedAt.UTC().Format(DateLayout),
		Total:           o.Total,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		ItemsCount:      o.ItemCount(),
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Version:         o.Version,
	}
	if f := o.Fulfillment; f != nil {
		detail.Fulfillment = &FulfillmentResponse{
			TrackingNumber:    f.TrackingNumber,
			Carrier:           f.Carrier,
			TrackingURL:       f.TrackingURL,
			EstimatedDelivery: f.EstimatedDelivery,
			CreatedAt:         f.CreatedAt,
		}
	}
	return detail
}

// ToOrderDetails converts a slice of domain orders
func ToOrderDetails(orders []order.Order) []OrderDetail {
	out := make([]OrderDetail, len(orders))
	for i := range orders {
		out[i] = ToOrderDetail(&orders[i])
	}
	return out
}
