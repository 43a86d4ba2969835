package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence.
// Products are always loaded together with their variants.
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindBySlug finds a product by its slug
	FindBySlug(ctx context.Context, slug string) (*Product, error)

	// FindActive returns ACTIVE products, newest first, optionally limited to a category
	FindActive(ctx context.Context, category string) ([]Product, error)

	// FindRelated returns up to limit ACTIVE products sharing the category of product
	FindRelated(ctx context.Context, product *Product, limit int) ([]Product, error)

	// FindAll returns products of any status matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// FindVariantByID finds a single variant
	FindVariantByID(ctx context.Context, id uuid.UUID) (*Variant, error)

	// FindVariantsByIDs finds variants by ID; missing IDs are simply absent from the result
	FindVariantsByIDs(ctx context.Context, ids []uuid.UUID) ([]Variant, error)

	// SKUTaken reports whether sku belongs to a variant of another product
	SKUTaken(ctx context.Context, sku string, excludeProductID uuid.UUID) (bool, error)

	// Save creates or updates a product and replaces its variant set
	Save(ctx context.Context, product *Product) error

	// CountByStatus counts products with the given status
	CountByStatus(ctx context.Context, status ProductStatus) (int64, error)

	// LowStockVariants returns variants among ids with inventory at or below threshold
	LowStockVariants(ctx context.Context, ids []uuid.UUID, threshold int) ([]Variant, error)
}
