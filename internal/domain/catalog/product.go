package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the publication status of a product
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "DRAFT"
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusArchived ProductStatus = "ARCHIVED"
)

// IsValid checks if the status is a valid ProductStatus
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusDraft, ProductStatusActive, ProductStatusArchived:
		return true
	}
	return false
}

// String returns the string representation of ProductStatus
func (s ProductStatus) String() string {
	return string(s)
}

// Variant is a purchasable SKU-level option of a product.
// Inventory never drops below zero.
type Variant struct {
	ID          uuid.UUID
	ProductID   uuid.UUID
	SKU         string
	Name        string
	Price       decimal.Decimal
	Inventory   int
	SupplierSKU string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewVariant creates a new variant
func NewVariant(sku, name string, price decimal.Decimal, inventory int) (*Variant, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, shared.NewValidationError("Variant SKU cannot be empty")
	}
	if len(sku) > 64 {
		return nil, shared.NewValidationError("Variant SKU cannot exceed 64 characters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("Variant name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewValidationError("Variant price cannot be negative")
	}
	if inventory < 0 {
		return nil, shared.NewValidationError("Variant inventory cannot be negative")
	}

	now := time.Now()
	return &Variant{
		ID:        uuid.New(),
		SKU:       strings.ToUpper(sku),
		Name:      strings.TrimSpace(name),
		Price:     price,
		Inventory: inventory,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// HasStock reports whether quantity units can be taken from the variant
func (v *Variant) HasStock(quantity int) bool {
	return quantity > 0 && v.Inventory >= quantity
}

// Product is the aggregate root of the catalog
type Product struct {
	shared.BaseAggregateRoot
	Slug           string
	Title          string
	Description    string
	Category       string
	Price          decimal.Decimal
	CompareAtPrice *decimal.Decimal
	Images         []string
	Status         ProductStatus
	Featured       bool
	Supplier       string
	Variants       []Variant
}

// NewProduct creates a new draft product with a generated slug
func NewProduct(title, category string, price decimal.Decimal) (*Product, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if strings.TrimSpace(category) == "" {
		return nil, shared.NewValidationError("Product category cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewValidationError("Product price cannot be negative")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Title:             strings.TrimSpace(title),
		Category:          strings.TrimSpace(category),
		Price:             price,
		Images:            []string{},
		Status:            ProductStatusDraft,
		Variants:          []Variant{},
	}
	product.Slug = GenerateSlug(product.Title, product.CreatedAt)

	return product, nil
}

// UpdateDetails updates title, description and category
func (p *Product) UpdateDetails(title, description, category string) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	if strings.TrimSpace(category) == "" {
		return shared.NewValidationError("Product category cannot be empty")
	}

	p.Title = strings.TrimSpace(title)
	p.Description = description
	p.Category = strings.TrimSpace(category)
	p.touch()
	return nil
}

// SetPricing sets the list price and the optional compare-at price
func (p *Product) SetPricing(price decimal.Decimal, compareAt *decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewValidationError("Product price cannot be negative")
	}
	if compareAt != nil && compareAt.IsNegative() {
		return shared.NewValidationError("Compare-at price cannot be negative")
	}

	p.Price = price
	p.CompareAtPrice = compareAt
	p.touch()
	return nil
}

// SetStatus changes the publication status
func (p *Product) SetStatus(status ProductStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError("Invalid product status: " + string(status))
	}
	p.Status = status
	p.touch()
	return nil
}

// SetImages replaces the ordered image list
func (p *Product) SetImages(images []string) {
	cleaned := make([]string, 0, len(images))
	for _, img := range images {
		if img = strings.TrimSpace(img); img != "" {
			cleaned = append(cleaned, img)
		}
	}
	p.Images = cleaned
	p.touch()
}

// SetFeatured toggles the featured flag
func (p *Product) SetFeatured(featured bool) {
	p.Featured = featured
	p.touch()
}

// SetSupplier sets the supplier name used for fulfillment routing
func (p *Product) SetSupplier(supplier string) {
	p.Supplier = strings.TrimSpace(supplier)
	p.touch()
}

// ReplaceVariants swaps the full variant set. SKUs must be unique within the product.
func (p *Product) ReplaceVariants(variants []Variant) error {
	seen := make(map[string]struct{}, len(variants))
	for i := range variants {
		sku := variants[i].SKU
		if _, dup := seen[sku]; dup {
			return shared.NewValidationError("Duplicate SKU in product variants: " + sku)
		}
		seen[sku] = struct{}{}
		variants[i].ProductID = p.ID
	}
	p.Variants = variants
	p.touch()
	return nil
}

// IsActive reports whether the product is visible on the storefront
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// IsSoldOut reports whether no variant has stock left
func (p *Product) IsSoldOut() bool {
	for _, v := range p.Variants {
		if v.Inventory > 0 {
			return false
		}
	}
	return true
}

// Thumbnail returns the first image, or empty
func (p *Product) Thumbnail() string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

// HoverImage returns the second image, or empty
func (p *Product) HoverImage() string {
	if len(p.Images) > 1 {
		return p.Images[1]
	}
	return ""
}

// FindVariant returns the variant with the given ID
func (p *Product) FindVariant(id uuid.UUID) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

func validateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewValidationError("Product title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewValidationError("Product title cannot exceed 200 characters")
	}
	return nil
}
