package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/order"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate
type OrderModel struct {
	AggregateModel
	UserID          *uuid.UUID            `gorm:"type:uuid;index"`
	GuestEmail      string                `gorm:"type:varchar(255);not null;index"`
	GuestName       string                `gorm:"type:varchar(200);not null"`
	ShippingAddress order.ShippingAddress `gorm:"type:jsonb;serializer:json;not null"`
	Total           decimal.Decimal       `gorm:"type:decimal(12,2);not null"`
	Status          order.Status          `gorm:"type:varchar(30);not null;index"`
	PaymentStatus   order.PaymentStatus   `gorm:"type:varchar(20);not null"`
	Items           []OrderItemModel      `gorm:"foreignKey:OrderID"`
	Fulfillment     *FulfillmentModel     `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		UserID:            m.UserID,
		GuestEmail:        m.GuestEmail,
		GuestName:         m.GuestName,
		ShippingAddress:   m.ShippingAddress,
		Total:             m.Total,
		Status:            m.Status,
		PaymentStatus:     m.PaymentStatus,
		Items:             make([]order.Item, 0, len(m.Items)),
	}
	for i := range m.Items {
		o.Items = append(o.Items, m.Items[i].ToDomain())
	}
	if m.Fulfillment != nil {
		o.Fulfillment = m.Fulfillment.ToDomain()
	}
	return o
}

// FromDomain populates the persistence model, items included
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.UserID = o.UserID
	m.GuestEmail = o.GuestEmail
	m.GuestName = o.GuestName
	m.ShippingAddress = o.ShippingAddress
	m.Total = o.Total
	m.Status = o.Status
	m.PaymentStatus = o.PaymentStatus
	m.Items = make([]OrderItemModel, 0, len(o.Items))
	for _, item := range o.Items {
		m.Items = append(m.Items, OrderItemModelFromDomain(item))
	}
	if o.Fulfillment != nil {
		m.Fulfillment = FulfillmentModelFromDomain(o.Fulfillment)
	}
}

// OrderModelFromDomain creates a persistence model from a domain Order
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel stores an order line with frozen prices.
// VariantID is a plain reference so history survives variant removal.
type OrderItemModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariantID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductTitle string          `gorm:"type:varchar(200);not null"`
	VariantName  string          `gorm:"type:varchar(100);not null"`
	SKU          string          `gorm:"column:sku;type:varchar(64);not null"`
	Quantity     int             `gorm:"not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Item
func (m *OrderItemModel) ToDomain() order.Item {
	return order.Item{
		ID:           m.ID,
		OrderID:      m.OrderID,
		VariantID:    m.VariantID,
		ProductTitle: m.ProductTitle,
		VariantName:  m.VariantName,
		SKU:          m.SKU,
		Quantity:     m.Quantity,
		UnitPrice:    m.UnitPrice,
		TotalPrice:   m.TotalPrice,
		CreatedAt:    m.CreatedAt,
	}
}

// OrderItemModelFromDomain creates a persistence model from a domain Item
func OrderItemModelFromDomain(item order.Item) OrderItemModel {
	return OrderItemModel{
		ID:           item.ID,
		OrderID:      item.OrderID,
		VariantID:    item.VariantID,
		ProductTitle: item.ProductTitle,
		VariantName:  item.VariantName,
		SKU:          item.SKU,
		Quantity:     item.Quantity,
		UnitPrice:    item.UnitPrice,
		TotalPrice:   item.TotalPrice,
		CreatedAt:    item.CreatedAt,
	}
}

// FulfillmentModel stores supplier tracking data, at most one per order
type FulfillmentModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	TrackingNumber    string    `gorm:"type:varchar(64);not null"`
	Carrier           string    `gorm:"type:varchar(100);not null"`
	TrackingURL       string    `gorm:"column:tracking_url;type:varchar(500);not null"`
	EstimatedDelivery string    `gorm:"type:varchar(100)"`
	CreatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FulfillmentModel) TableName() string {
	return "fulfillments"
}

// ToDomain converts the persistence model to a domain Fulfillment
func (m *FulfillmentModel) ToDomain() *order.Fulfillment {
	return &order.Fulfillment{
		ID:                m.ID,
		OrderID:           m.OrderID,
		TrackingNumber:    m.TrackingNumber,
		Carrier:           m.Carrier,
		TrackingURL:       m.TrackingURL,
		EstimatedDelivery: m.EstimatedDelivery,
		CreatedAt:         m.CreatedAt,
	}
}

// FulfillmentModelFromDomain creates a persistence model from a domain Fulfillment
func FulfillmentModelFromDomain(f *order.Fulfillment) *FulfillmentModel {
	return &FulfillmentModel{
		ID:                f.ID,
		OrderID:           f.OrderID,
		TrackingNumber:    f.TrackingNumber,
		Carrier:           f.Carrier,
		TrackingURL:       f.TrackingURL,
		EstimatedDelivery: f.EstimatedDelivery,
		CreatedAt:         f.CreatedAt,
	}
}
