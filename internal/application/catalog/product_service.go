package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/catalog"
	"github.com/lumina/storefront/internal/domain/shared"
	"github.com/lumina/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// RelatedProductsLimit caps the related products shown on a product page
const RelatedProductsLimit = 4

// InventorySyncer refreshes stock levels from the supplier
type InventorySyncer interface {
	SyncInventory(ctx context.Context) (int, error)
}

// ProductService handles storefront and admin catalog operations
type ProductService struct {
	productRepo     catalog.ProductRepository
	syncer          InventorySyncer
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, syncer InventorySyncer, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo: productRepo,
		syncer:      syncer,
		logger:      logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *ProductService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// ListStorefront returns ACTIVE products, newest first, optionally in one category
func (s *ProductService) ListStorefront(ctx context.Context, category string) ([]ProductCard, error) {
	products, err := s.productRepo.FindActive(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return ToProductCards(products), nil
}

// GetDetail returns an ACTIVE product by ID or slug together with related products
func (s *ProductService) GetDetail(ctx context.Context, idOrSlug string) (*ProductDetail, error) {
	product, err := s.findByIDOrSlug(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	if !product.IsActive() {
		return nil, shared.NewNotFoundError("Product")
	}

	related, err := s.productRepo.FindRelated(ctx, product, RelatedProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load related products: %w", err)
	}

	detail := ToProductDetail(product, related)
	return &detail, nil
}

func (s *ProductService) findByIDOrSlug(ctx context.Context, idOrSlug string) (*catalog.Product, error) {
	idOrSlug = strings.TrimSpace(idOrSlug)
	if idOrSlug == "" {
		return nil, shared.NewNotFoundError("Product")
	}

	var (
		product *catalog.Product
		err     error
	)
	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		product, err = s.productRepo.FindByID(ctx, id)
	} else {
		product, err = s.productRepo.FindBySlug(ctx, idOrSlug)
	}
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Product")
		}
		return nil, err
	}
	return product, nil
}

// AdminList returns products of every status, most recently updated first
func (s *ProductService) AdminList(ctx context.Context, f AdminListFilter) ([]AdminProductResponse, error) {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  "updated_at",
		OrderDir: "desc",
		Search:   f.Search,
		Filters:  map[string]interface{}{},
	}
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	if f.Category != "" {
		filter.Filters["category"] = f.Category
	}

	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return ToAdminProductResponses(products), nil
}

// AdminGet returns a product of any status
func (s *ProductService) AdminGet(ctx context.Context, id uuid.UUID) (*AdminProductResponse, error) {
	product, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToAdminProductResponse(product)
	return &resp, nil
}

func (s *ProductService) findByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Product")
		}
		return nil, err
	}
	return product, nil
}

// Create creates a product with a generated slug. Status defaults to DRAFT.
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*AdminProductResponse, error) {
	product, err := catalog.NewProduct(req.Title, req.Category, req.Price)
	if err != nil {
		return nil, err
	}
	if err := product.UpdateDetails(product.Title, req.Description, product.Category); err != nil {
		return nil, err
	}
	if err := product.SetPricing(req.Price, req.CompareAtPrice); err != nil {
		return nil, err
	}
	if req.Status != "" {
		if err := product.SetStatus(catalog.ProductStatus(req.Status)); err != nil {
			return nil, err
		}
	}
	product.SetImages(req.Images)
	product.SetFeatured(req.Featured)
	product.SetSupplier(req.Supplier)

	variants, err := s.buildVariants(ctx, product, req.Variants)
	if err != nil {
		return nil, err
	}
	if err := product.ReplaceVariants(variants); err != nil {
		return nil, err
	}

	if err := s.save(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("slug", product.Slug),
		zap.Int("variants", len(product.Variants)),
	)

	resp := ToAdminProductResponse(product)
	return &resp, nil
}

// Update applies a partial update. Supplied variants replace the variant set;
// variants keeping their SKU keep their ID so carts referencing them stay valid.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*AdminProductResponse, error) {
	product, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil || req.Description != nil || req.Category != nil {
		title, description, category := product.Title, product.Description, product.Category
		if req.Title != nil {
			title = *req.Title
		}
		if req.Description != nil {
			description = *req.Description
		}
		if req.Category != nil {
			category = *req.Category
		}
		if err := product.UpdateDetails(title, description, category); err != nil {
			return nil, err
		}
	}

	if req.Price != nil || req.CompareAtPrice != nil {
		price, compareAt := product.Price, product.CompareAtPrice
		if req.Price != nil {
			price = *req.Price
		}
		if req.CompareAtPrice != nil {
			compareAt = req.CompareAtPrice
			if compareAt.IsZero() {
				compareAt = nil
			}
		}
		if err := product.SetPricing(price, compareAt); err != nil {
			return nil, err
		}
	}

	if req.Status != nil {
		if err := product.SetStatus(catalog.ProductStatus(*req.Status)); err != nil {
			return nil, err
		}
	}
	if req.Images != nil {
		product.SetImages(req.Images)
	}
	if req.Featured != nil {
		product.SetFeatured(*req.Featured)
	}
	if req.Supplier != nil {
		product.SetSupplier(*req.Supplier)
	}

	if len(req.Variants) > 0 {
		variants, err := s.buildVariants(ctx, product, req.Variants)
		if err != nil {
			return nil, err
		}
		for i := range variants {
			if existing := findBySKU(product.Variants, variants[i].SKU); existing != nil {
				variants[i].ID = existing.ID
				variants[i].CreatedAt = existing.CreatedAt
			}
		}
		if err := product.ReplaceVariants(variants); err != nil {
			return nil, err
		}
	}

	if err := s.save(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product updated", zap.String("product_id", product.ID.String()))

	resp := ToAdminProductResponse(product)
	return &resp, nil
}

func (s *ProductService) buildVariants(ctx context.Context, product *catalog.Product, inputs []VariantInput) ([]catalog.Variant, error) {
	variants := make([]catalog.Variant, 0, len(inputs))
	for _, in := range inputs {
		v, err := catalog.NewVariant(in.SKU, in.Name, in.Price, in.Inventory)
		if err != nil {
			return nil, err
		}
		v.SupplierSKU = strings.TrimSpace(in.SupplierSKU)

		taken, err := s.productRepo.SKUTaken(ctx, v.SKU, product.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check sku: %w", err)
		}
		if taken {
			return nil, shared.NewDomainError(shared.CodeConflict, "SKU already in use: "+v.SKU)
		}
		variants = append(variants, *v)
	}
	return variants, nil
}

func (s *ProductService) save(ctx context.Context, product *catalog.Product) error {
	if err := s.productRepo.Save(ctx, product); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return shared.NewDomainError(shared.CodeConflict, "Product slug or SKU already exists")
		}
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

func findBySKU(variants []catalog.Variant, sku string) *catalog.Variant {
	for i := range variants {
		if variants[i].SKU == sku {
			return &variants[i]
		}
	}
	return nil
}

// SyncInventory asks the supplier to refresh stock levels
func (s *ProductService) SyncInventory(ctx context.Context) (*SyncInventoryResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "sync_inventory")
	defer span.End()

	if s.syncer == nil {
		return nil, shared.NewDomainError(shared.CodeIntegration, "No supplier is configured")
	}

	updated, err := s.syncer.SyncInventory(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("Supplier inventory sync failed", zap.Error(err))
		return nil, shared.NewDomainError(shared.CodeIntegration, "Supplier inventory sync failed: "+err.Error())
	}

	s.businessMetrics.RecordSupplierSync(ctx, updated)
	telemetry.SetAttribute(span, "updated_count", updated)
	telemetry.SetOK(span)

	s.logger.Info("Supplier inventory synced", zap.Int("updated", updated))
	return &SyncInventoryResult{UpdatedCount: updated}, nil
}
