package models

import (
	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product aggregate
type ProductModel struct {
	AggregateModel
	Slug           string                `gorm:"type:varchar(255);not null;uniqueIndex"`
	Title          string                `gorm:"type:varchar(200);not null"`
	Description    string                `gorm:"type:text"`
	Category       string                `gorm:"type:varchar(100);not null;index"`
	Price          decimal.Decimal       `gorm:"type:decimal(12,2);not null"`
	CompareAtPrice *decimal.Decimal      `gorm:"type:decimal(12,2)"`
	Images         []string              `gorm:"type:jsonb;serializer:json;not null"`
	Status         catalog.ProductStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Featured       bool                  `gorm:"not null;default:false"`
	Supplier       string                `gorm:"type:varchar(100)"`
	Variants       []VariantModel        `gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Slug:              m.Slug,
		Title:             m.Title,
		Description:       m.Description,
		Category:          m.Category,
		Price:             m.Price,
		CompareAtPrice:    m.CompareAtPrice,
		Images:            m.Images,
		Status:            m.Status,
		Featured:          m.Featured,
		Supplier:          m.Supplier,
		Variants:          make([]catalog.Variant, 0, len(m.Variants)),
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	for i := range m.Variants {
		p.Variants = append(p.Variants, *m.Variants[i].ToDomain())
	}
	return p
}

// FromDomain populates the persistence model from a domain Product.
// Variants are mapped separately because the repository replaces them as a set.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Slug = p.Slug
	m.Title = p.Title
	m.Description = p.Description
	m.Category = p.Category
	m.Price = p.Price
	m.CompareAtPrice = p.CompareAtPrice
	m.Images = p.Images
	if m.Images == nil {
		m.Images = []string{}
	}
	m.Status = p.Status
	m.Featured = p.Featured
	m.Supplier = p.Supplier
}

// ProductModelFromDomain creates a persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// VariantModel is the persistence model for a product variant
type VariantModel struct {
	BaseModel
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU         string          `gorm:"column:sku;type:varchar(64);not null;uniqueIndex"`
	Name        string          `gorm:"type:varchar(100);not null"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Inventory   int             `gorm:"not null;default:0;check:inventory >= 0"`
	SupplierSKU string          `gorm:"column:supplier_sku;type:varchar(100)"`
}

// TableName returns the table name for GORM
func (VariantModel) TableName() string {
	return "variants"
}

// ToDomain converts the persistence model to a domain Variant
func (m *VariantModel) ToDomain() *catalog.Variant {
	return &catalog.Variant{
		ID:          m.ID,
		ProductID:   m.ProductID,
		SKU:         m.SKU,
		Name:        m.Name,
		Price:       m.Price,
		Inventory:   m.Inventory,
		SupplierSKU: m.SupplierSKU,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// VariantModelFromDomain creates a persistence model from a domain Variant
func VariantModelFromDomain(v *catalog.Variant) *VariantModel {
	return &VariantModel{
		BaseModel: BaseModel{
			ID:        v.ID,
			CreatedAt: v.CreatedAt,
			UpdatedAt: v.UpdatedAt,
		},
		ProductID:   v.ProductID,
		SKU:         v.SKU,
		Name:        v.Name,
		Price:       v.Price,
		Inventory:   v.Inventory,
		SupplierSKU: v.SupplierSKU,
	}
}
