package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// VariantInput describes a variant in create and update requests
type VariantInput struct {
	SKU         string          `json:"sku" binding:"required,max=64,sku"`
	Name        string          `json:"name" binding:"required,min=1,max=100"`
	Price       decimal.Decimal `json:"price"`
	Inventory   int             `json:"inventory" binding:"min=0"`
	SupplierSKU string          `json:"supplierSku" binding:"max=64"`
}

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Title          string           `json:"title" binding:"required,min=1,max=200"`
	Description    string           `json:"description" binding:"max=5000"`
	Category       string           `json:"category" binding:"required,min=1,max=100"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice"`
	Images         []string         `json:"images" binding:"max=12,dive,max=2048"`
	Status         string           `json:"status" binding:"omitempty,oneof=DRAFT ACTIVE ARCHIVED"`
	Featured       bool             `json:"isFeatured"`
	Supplier       string           `json:"supplier" binding:"max=100"`
	Variants       []VariantInput   `json:"variants" binding:"dive"`
}

// UpdateProductRequest is a partial update. Variants, when supplied and
// non-empty, replace the whole variant set.
type UpdateProductRequest struct {
	Title          *string          `json:"title" binding:"omitempty,min=1,max=200"`
	Description    *string          `json:"description" binding:"omitempty,max=5000"`
	Category       *string          `json:"category" binding:"omitempty,min=1,max=100"`
	Price          *decimal.Decimal `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice"`
	Images         []string         `json:"images" binding:"omitempty,max=12,dive,max=2048"`
	Status         *string          `json:"status" binding:"omitempty,oneof=DRAFT ACTIVE ARCHIVED"`
	Featured       *bool            `json:"isFeatured"`
	Supplier       *string          `json:"supplier" binding:"omitempty,max=100"`
	Variants       []VariantInput   `json:"variants" binding:"omitempty,dive"`
}

// ProductCard is the storefront listing shape
type ProductCard struct {
	ID             uuid.UUID        `json:"id"`
	Slug           string           `json:"slug"`
	Title          string           `json:"title"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice,omitempty"`
	Thumbnail      string           `json:"thumbnail"`
	HoverImage     string           `json:"hoverImage"`
	IsNew          bool             `json:"isNew"`
	IsSoldOut      bool             `json:"isSoldOut"`
	Category       string           `json:"category"`
}

// VariantResponse represents a variant in API responses
type VariantResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"productId"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Inventory   int             `json:"inventory"`
	SupplierSKU string          `json:"supplierSku,omitempty"`
}

// ProductDetail is the storefront product page
type ProductDetail struct {
	ID              uuid.UUID         `json:"id"`
	Slug            string            `json:"slug"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Category        string            `json:"category"`
	Price           decimal.Decimal   `json:"price"`
	CompareAtPrice  *decimal.Decimal  `json:"compareAtPrice,omitempty"`
	Images          []string          `json:"images"`
	IsFeatured      bool              `json:"isFeatured"`
	IsSoldOut       bool              `json:"isSoldOut"`
	Variants        []VariantResponse `json:"variants"`
	RelatedProducts []ProductCard     `json:"relatedProducts"`
}

// AdminProductResponse is the back-office product shape
type AdminProductResponse struct {
	ID             uuid.UUID         `json:"id"`
	Slug           string            `json:"slug"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Category       string            `json:"category"`
	Price          decimal.Decimal   `json:"price"`
	CompareAtPrice *decimal.Decimal  `json:"compareAtPrice,omitempty"`
	Images         []string          `json:"images"`
	Status         string            `json:"status"`
	IsFeatured     bool              `json:"isFeatured"`
	Supplier       string            `json:"supplier"`
	Variants       []VariantResponse `json:"variants"`
	TotalInventory int               `json:"totalInventory"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
	Version        int               `json:"version"`
}

// AdminListFilter narrows the admin product list
type AdminListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=DRAFT ACTIVE ARCHIVED"`
	Category string `form:"category" binding:"max=100"`
	Search   string `form:"search" binding:"max=100"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=200"`
}

// SyncInventoryResult reports a supplier stock sync
type SyncInventoryResult struct {
	UpdatedCount int `json:"updatedCount"`
}

// UploadImageResult is returned after storing a product image
type UploadImageResult struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

// ToProductCard converts a domain product to its storefront listing shape
func ToProductCard(p *catalog.Product) ProductCard {
	return ProductCard{
		ID:             p.ID,
		Slug:           p.Slug,
		Title:          p.Title,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		Thumbnail:      p.Thumbnail(),
		HoverImage:     p.HoverImage(),
		IsNew:          p.Featured,
		IsSoldOut:      p.IsSoldOut(),
		Category:       p.Category,
	}
}

// ToProductCards converts a slice of domain products
func ToProductCards(products []catalog.Product) []ProductCard {
	cards := make([]ProductCard, len(products))
	for i := range products {
		cards[i] = ToProductCard(&products[i])
	}
	return cards
}

// ToVariantResponses converts domain variants
func ToVariantResponses(variants []catalog.Variant) []VariantResponse {
	out := make([]VariantResponse, len(variants))
	for i, v := range variants {
		out[i] = VariantResponse{
			ID:          v.ID,
			ProductID:   v.ProductID,
			SKU:         v.SKU,
			Name:        v.Name,
			Price:       v.Price,
			Inventory:   v.Inventory,
			SupplierSKU: v.SupplierSKU,
		}
	}
	return out
}

// ToProductDetail converts a product and its related products to the storefront detail shape
func ToProductDetail(p *catalog.Product, related []catalog.Product) ProductDetail {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return ProductDetail{
		ID:              p.ID,
		Slug:            p.Slug,
		Title:           p.Title,
		Description:     p.Description,
		Category:        p.Category,
		Price:           p.Price,
		CompareAtPrice:  p.CompareAtPrice,
		Images:          images,
		IsFeatured:      p.Featured,
		IsSoldOut:       p.IsSoldOut(),
		Variants:        ToVariantResponses(p.Variants),
		RelatedProducts: ToProductCards(related),
	}
}

// ToAdminProductResponse converts a domain product to the admin shape
func ToAdminProductResponse(p *catalog.Product) AdminProductResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	total := 0
	for _, v := range p.Variants {
		total += v.Inventory
	}
	return AdminProductResponse{
		ID:             p.ID,
		Slug:           p.Slug,
		Title:          p.Title,
		Description:    p.Description,
		Category:       p.Category,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		Images:         images,
		Status:         string(p.Status),
		IsFeatured:     p.Featured,
		Supplier:       p.Supplier,
		Variants:       ToVariantResponses(p.Variants),
		TotalInventory: total,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Version:        p.Version,
	}
}

// ToAdminProductResponses converts a slice of domain products
func ToAdminProductResponses(products []catalog.Product) []AdminProductResponse {
	out := make([]AdminProductResponse, len(products))
	for i := range products {
		out[i] = ToAdminProductResponse(&products[i])
	}
	return out
}
