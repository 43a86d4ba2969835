// Package cart models the session-keyed shopping cart. Cart prices are
// informational only; checkout re-prices every line from the catalog.
package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MaxLineQuantity caps a single cart line
const MaxLineQuantity = 99

// Line is a variant held in a cart together with the price seen when it was added
type Line struct {
	VariantID    uuid.UUID       `json:"variant_id"`
	ProductID    uuid.UUID       `json:"product_id"`
	ProductTitle string          `json:"product_title"`
	VariantName  string          `json:"variant_name"`
	SKU          string          `json:"sku"`
	Image        string          `json:"image,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

// LineTotal returns unit price times quantity
func (l Line) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the set of lines kept for one client session
type Cart struct {
	SessionID string    `json:"session_id"`
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates an empty cart for the session
func New(sessionID string) *Cart {
	return &Cart{SessionID: sessionID, Lines: []Line{}, UpdatedAt: time.Now()}
}

// Add puts a line into the cart. Adding a variant already present increments
// its quantity and refreshes the captured price.
func (c *Cart) Add(line Line) error {
	if line.VariantID == uuid.Nil {
		return shared.NewValidationError("Variant ID is required")
	}
	if line.Quantity < 1 {
		return shared.NewValidationError("Quantity must be at least 1")
	}
	for i := range c.Lines {
		if c.Lines[i].VariantID == line.VariantID {
			qty := c.Lines[i].Quantity + line.Quantity
			if qty > MaxLineQuantity {
				return shared.NewValidationError("Quantity cannot exceed 99")
			}
			c.Lines[i].Quantity = qty
			c.Lines[i].UnitPrice = line.UnitPrice
			c.touch()
			return nil
		}
	}
	if line.Quantity > MaxLineQuantity {
		return shared.NewValidationError("Quantity cannot exceed 99")
	}
	c.Lines = append(c.Lines, line)
	c.touch()
	return nil
}

// SetQuantity changes the quantity of a line; zero removes it
func (c *Cart) SetQuantity(variantID uuid.UUID, quantity int) error {
	if quantity < 0 {
		return shared.NewValidationError("Quantity cannot be negative")
	}
	if quantity > MaxLineQuantity {
		return shared.NewValidationError("Quantity cannot exceed 99")
	}
	if quantity == 0 {
		return c.Remove(variantID)
	}
	for i := range c.Lines {
		if c.Lines[i].VariantID == variantID {
			c.Lines[i].Quantity = quantity
			c.touch()
			return nil
		}
	}
	return shared.NewNotFoundError("Cart item")
}

// Remove drops the line for the variant
func (c *Cart) Remove(variantID uuid.UUID) error {
	for i := range c.Lines {
		if c.Lines[i].VariantID == variantID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.touch()
			return nil
		}
	}
	return shared.NewNotFoundError("Cart item")
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Lines = []Line{}
	c.touch()
}

// Total sums every line total
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

// ItemCount sums line quantities
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now()
}
