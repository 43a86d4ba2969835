package cart

import (
	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/cart"
	"github.com/shopspring/decimal"
)

// AddItemRequest adds a variant to the cart
type AddItemRequest struct {
	VariantID uuid.UUID `json:"variantId" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=99"`
}

// UpdateItemRequest sets a line quantity; zero removes the line
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0,max=99"`
}

// ItemResponse is one cart line
type ItemResponse struct {
	VariantID   uuid.UUID       `json:"variantId"`
	ProductID   uuid.UUID       `json:"productId"`
	Title       string          `json:"title"`
	VariantName string          `json:"variantName"`
	SKU         string          `json:"sku"`
	Image       string          `json:"image,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// Response is the cart as returned to the client
type Response struct {
	SessionID string          `json:"sessionId"`
	Items     []ItemResponse  `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

// ToResponse converts a domain cart to its response shape
func ToResponse(c *cart.Cart) *Response {
	items := make([]ItemResponse, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, ItemResponse{
			VariantID:   l.VariantID,
			ProductID:   l.ProductID,
			Title:       l.ProductTitle,
			VariantName: l.VariantName,
			SKU:         l.SKU,
			Image:       l.Image,
			Quantity:    l.Quantity,
			Price:       l.UnitPrice,
			LineTotal:   l.LineTotal(),
		})
	}
	return &Response{
		SessionID: c.SessionID,
		Items:     items,
		Total:     c.Total(),
		ItemCount: c.ItemCount(),
	}
}
