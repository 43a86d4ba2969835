package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/catalog"
	"github.com/lumina/storefront/internal/domain/shared"
	"github.com/lumina/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) withVariants(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Variants", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, sku ASC")
	})
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.withVariants(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySlug finds a product by its slug
func (r *GormProductRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.withVariants(ctx).Where("slug = ?", slug).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive returns ACTIVE products newest first, optionally within a category
func (r *GormProductRepository) FindActive(ctx context.Context, category string) ([]catalog.Product, error) {
	query := r.withVariants(ctx).Where("status = ?", catalog.ProductStatusActive)
	if category = strings.TrimSpace(category); category != "" {
		query = query.Where("category = ?", category)
	}

	var rows []models.ProductModel
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainProducts(rows), nil
}

// FindRelated returns ACTIVE products of the same category, excluding the product itself
func (r *GormProductRepository) FindRelated(ctx context.Context, product *catalog.Product, limit int) ([]catalog.Product, error) {
	var rows []models.ProductModel
	err := r.withVariants(ctx).
		Where("status = ? AND category = ? AND id <> ?", catalog.ProductStatusActive, product.Category, product.ID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainProducts(rows), nil
}

// FindAll returns products of any status. Filters["status"] narrows by status
// and Search matches the title case-insensitively.
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	query := r.applyFilter(r.withVariants(ctx).Model(&models.ProductModel{}), filter)

	offset, limit := paginate(filter.Page, filter.PageSize)
	var rows []models.ProductModel
	err := query.
		Order(orderClause(filter.OrderBy, filter.OrderDir, ProductSortFields, "updated_at")).
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainProducts(rows), nil
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if status, ok := filter.Filters["status"]; ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if category, ok := filter.Filters["category"]; ok && category != "" {
		query = query.Where("category = ?", category)
	}
	return query
}

// FindVariantByID finds a single variant
func (r *GormProductRepository) FindVariantByID(ctx context.Context, id uuid.UUID) (*catalog.Variant, error) {
	var model models.VariantModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindVariantsByIDs finds variants by ID. Unknown IDs are absent from the result.
func (r *GormProductRepository) FindVariantsByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Variant, error) {
	if len(ids) == 0 {
		return []catalog.Variant{}, nil
	}
	var rows []models.VariantModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainVariants(rows), nil
}

// SKUTaken reports whether a variant of another product already uses sku
func (r *GormProductRepository) SKUTaken(ctx context.Context, sku string, excludeProductID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.VariantModel{}).
		Where("sku = ? AND product_id <> ?", strings.ToUpper(strings.TrimSpace(sku)), excludeProductID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates the product and replaces its variant set.
// Variants no longer present are deleted; order history keeps its own snapshot.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.ProductModelFromDomain(product)
		if err := tx.Omit("Variants").Save(model).Error; err != nil {
			return translateUniqueViolation(err)
		}

		keep := make([]uuid.UUID, 0, len(product.Variants))
		for i := range product.Variants {
			keep = append(keep, product.Variants[i].ID)
		}
		stale := tx.Where("product_id = ?", product.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&models.VariantModel{}).Error; err != nil {
			return err
		}

		for i := range product.Variants {
			v := &product.Variants[i]
			v.ProductID = product.ID
			if err := tx.Save(models.VariantModelFromDomain(v)).Error; err != nil {
				return translateUniqueViolation(err)
			}
		}
		return nil
	})
}

// CountByStatus counts products with the given status
func (r *GormProductRepository) CountByStatus(ctx context.Context, status catalog.ProductStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// LowStockVariants returns the variants among ids whose inventory is at or below threshold
func (r *GormProductRepository) LowStockVariants(ctx context.Context, ids []uuid.UUID, threshold int) ([]catalog.Variant, error) {
	if len(ids) == 0 {
		return []catalog.Variant{}, nil
	}
	var rows []models.VariantModel
	err := r.db.WithContext(ctx).
		Where("id IN ? AND inventory <= ?", ids, threshold).
		Order("inventory ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainVariants(rows), nil
}

// CountLowStock counts variants of any product whose inventory is at or below threshold
func (r *GormProductRepository) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.VariantModel{}).
		Where("inventory <= ?", threshold).
		Count(&count).Error
	return count, err
}

func toDomainProducts(rows []models.ProductModel) []catalog.Product {
	products := make([]catalog.Product, 0, len(rows))
	for i := range rows {
		products = append(products, *rows[i].ToDomain())
	}
	return products
}

func toDomainVariants(rows []models.VariantModel) []catalog.Variant {
	variants := make([]catalog.Variant, 0, len(rows))
	for i := range rows {
		variants = append(variants, *rows[i].ToDomain())
	}
	return variants
}

// translateUniqueViolation maps duplicate key errors from either driver to ErrAlreadyExists
func translateUniqueViolation(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint") {
		return shared.ErrAlreadyExists
	}
	return err
}

// Ensure GormProductRepository implements catalog.ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
