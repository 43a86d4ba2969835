package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/lumina/storefront/internal/domain/catalog"
	"github.com/lumina/storefront/internal/domain/identity"
	"github.com/lumina/storefront/internal/domain/settings"
	"github.com/lumina/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type seedVariant struct {
	sku       string
	name      string
	price     string
	inventory int
}

type seedProduct struct {
	title          string
	slug           string
	description    string
	category       string
	price          string
	compareAtPrice string
	images         []string
	supplier       string
	status         catalog.ProductStatus
	featured       bool
	variants       []seedVariant
}

type seedUser struct {
	email string
	name  string
	role  identity.Role
}

var demoUsers = []seedUser{
	{email: "admin@lumina.store", name: "Admin User", role: identity.RoleAdmin},
	{email: "customer@lumina.store", name: "Alice Customer", role: identity.RoleCustomer},
}

var demoProducts = []seedProduct{
	{
		title:          "Eames-Style Lounge Chair",
		slug:           "eames-style-lounge-chair",
		description:    "Mid-century modern design icon. Premium leather upholstery with walnut wood veneer.",
		category:       "Furniture",
		price:          "1299.00",
		compareAtPrice: "1599.00",
		images: []string{
			"https://images.unsplash.com/photo-1598300042247-d088f8ab3a91?auto=format&fit=crop&w=800&q=80",
			"https://images.unsplash.com/photo-1580480055273-228ff5388ef8?auto=format&fit=crop&w=800&q=80",
		},
		supplier: "PremiumFurn",
		status:   catalog.ProductStatusActive,
		featured: true,
		variants: []seedVariant{
			{sku: "ELC-BLK", name: "Black Leather", price: "1299.00", inventory: 5},
			{sku: "ELC-WHT", name: "White Leather", price: "1299.00", inventory: 2},
		},
	},
	{
		title:       "Minimalist Concrete Lamp",
		slug:        "minimalist-concrete-lamp",
		description: "Hand-poured concrete base with an exposed filament bulb.",
		category:    "Lighting",
		price:       "89.00",
		images: []string{
			"https://images.unsplash.com/photo-1534353436294-0dbd4bdac845?auto=format&fit=crop&w=800&q=80",
		},
		supplier: "UrbanLight",
		status:   catalog.ProductStatusActive,
		variants: []seedVariant{
			{sku: "MCL-GRY", name: "Grey", price: "89.00", inventory: 20},
		},
	},
	{
		title:       "Ceramic Pour-Over Set",
		slug:        "ceramic-pour-over-set",
		description: "Artisan crafted ceramic coffee dripper and carafe.",
		category:    "Kitchen",
		price:       "45.00",
		images: []string{
			"https://images.unsplash.com/photo-1544510802-5dc38c242ea5?auto=format&fit=crop&w=800&q=80",
		},
		supplier: "KitchenCraft",
		status:   catalog.ProductStatusActive,
		featured: true,
		variants: []seedVariant{
			{sku: "CPO-BLK", name: "Matte Black", price: "45.00", inventory: 15},
			{sku: "CPO-WHT", name: "Speckled White", price: "45.00", inventory: 8},
		},
	},
	{
		title:       "Smart Air Purifier",
		slug:        "smart-air-purifier",
		description: "HEPA filtration with real-time air quality monitoring.",
		category:    "Electronics",
		price:       "199.00",
		images: []string{
			"https://images.unsplash.com/photo-1574634534894-89d7576c8259?auto=format&fit=crop&w=800&q=80",
		},
		supplier: "TechDrop",
		status:   catalog.ProductStatusDraft,
		variants: []seedVariant{
			{sku: "SAP-001", name: "Standard", price: "199.00", inventory: 0},
		},
	},
}

// SeedResult counts what a run inserted
type SeedResult struct {
	UsersCreated    int
	ProductsCreated int
	ProductsUpdated int
	SettingsCreated bool
}

// Seeder loads the demo catalog and accounts. Running it twice is safe:
// existing users and settings are left alone, existing products only get
// their images refreshed.
type Seeder struct {
	users    identity.UserRepository
	products catalog.ProductRepository
	settings settings.Repository
	password string
	logger   *zap.Logger
}

// NewSeeder creates a seeder; password is shared by every demo account
func NewSeeder(users identity.UserRepository, products catalog.ProductRepository, store settings.Repository, password string, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{users: users, products: products, settings: store, password: password, logger: logger}
}

// Run seeds users, settings and products in that order
func (s *Seeder) Run(ctx context.Context) (SeedResult, error) {
	var result SeedResult

	for _, u := range demoUsers {
		created, err := s.seedUser(ctx, u)
		if err != nil {
			return result, err
		}
		if created {
			result.UsersCreated++
		}
	}

	created, err := s.seedSettings(ctx)
	if err != nil {
		return result, err
	}
	result.SettingsCreated = created

	for _, p := range demoProducts {
		created, err := s.seedProduct(ctx, p)
		if err != nil {
			return result, err
		}
		if created {
			result.ProductsCreated++
		} else {
			result.ProductsUpdated++
		}
	}

	return result, nil
}

func (s *Seeder) seedUser(ctx context.Context, u seedUser) (bool, error) {
	exists, err := s.users.ExistsByEmail(ctx, u.email)
	if err != nil {
		return false, fmt.Errorf("check user %s: %w", u.email, err)
	}
	if exists {
		s.logger.Debug("User already present", zap.String("email", u.email))
		return false, nil
	}

	user, err := identity.NewUser(u.email, u.name, s.password, u.role)
	if err != nil {
		return false, fmt.Errorf("build user %s: %w", u.email, err)
	}
	if err := s.users.Create(ctx, user); err != nil {
		return false, fmt.Errorf("create user %s: %w", u.email, err)
	}
	s.logger.Info("Created user", zap.String("email", user.Email), zap.String("role", user.Role.String()))
	return true, nil
}

func (s *Seeder) seedSettings(ctx context.Context) (bool, error) {
	_, err := s.settings.Find(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return false, fmt.Errorf("load settings: %w", err)
	}
	if err := s.settings.Save(ctx, settings.Default()); err != nil {
		return false, fmt.Errorf("save settings: %w", err)
	}
	s.logger.Info("Created store settings")
	return true, nil
}

func (s *Seeder) seedProduct(ctx context.Context, p seedProduct) (bool, error) {
	existing, err := s.products.FindBySlug(ctx, p.slug)
	switch {
	case err == nil:
		existing.SetImages(p.images)
		if err := s.products.Save(ctx, existing); err != nil {
			return false, fmt.Errorf("update product %s: %w", p.slug, err)
		}
		s.logger.Info("Refreshed product images", zap.String("slug", p.slug))
		return false, nil
	case !errors.Is(err, shared.ErrNotFound):
		return false, fmt.Errorf("load product %s: %w", p.slug, err)
	}

	product, err := buildProduct(p)
	if err != nil {
		return false, err
	}
	if err := s.products.Save(ctx, product); err != nil {
		return false, fmt.Errorf("create product %s: %w", p.slug, err)
	}
	s.logger.Info("Created product", zap.String("title", product.Title), zap.Int("variants", len(product.Variants)))
	return true, nil
}

func buildProduct(p seedProduct) (*catalog.Product, error) {
	price, err := decimal.NewFromString(p.price)
	if err != nil {
		return nil, fmt.Errorf("product %s price: %w", p.slug, err)
	}
	product, err := catalog.NewProduct(p.title, p.category, price)
	if err != nil {
		return nil, err
	}
	product.Slug = p.slug

	var compareAt *decimal.Decimal
	if p.compareAtPrice != "" {
		c, err := decimal.NewFromString(p.compareAtPrice)
		if err != nil {
			return nil, fmt.Errorf("product %s compare-at price: %w", p.slug, err)
		}
		compareAt = &c
	}
	if err := product.SetPricing(price, compareAt); err != nil {
		return nil, err
	}
	if err := product.UpdateDetails(p.title, p.description, p.category); err != nil {
		return nil, err
	}
	product.SetImages(p.images)
	product.SetSupplier(p.supplier)
	product.SetFeatured(p.featured)

	variants := make([]catalog.Variant, 0, len(p.variants))
	for _, sv := range p.variants {
		vPrice, err := decimal.NewFromString(sv.price)
		if err != nil {
			return nil, fmt.Errorf("variant %s price: %w", sv.sku, err)
		}
		v, err := catalog.NewVariant(sv.sku, sv.name, vPrice, sv.inventory)
		if err != nil {
			return nil, err
		}
		variants = append(variants, *v)
	}
	if err := product.ReplaceVariants(variants); err != nil {
		return nil, err
	}
	if err := product.SetStatus(p.status); err != nil {
		return nil, err
	}
	return product, nil
}
