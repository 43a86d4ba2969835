// Package cart keeps session carts. Lines capture the variant price and title
// at the time they are added; checkout re-prices from the catalog.
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/cart"
	"github.com/lumina/storefront/internal/domain/catalog"
	"github.com/lumina/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// MaxSessionIDLength bounds client supplied session ids
const MaxSessionIDLength = 64

// CartService manages session carts
type CartService struct {
	store       cart.Store
	productRepo catalog.ProductRepository
	logger      *zap.Logger
	newSession  func() string
}

// NewCartService creates a new CartService
func NewCartService(store cart.Store, productRepo catalog.ProductRepository, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		store:       store,
		productRepo: productRepo,
		logger:      logger,
		newSession:  uuid.NewString,
	}
}

// Get returns the cart for the session. An unknown or empty session yields an
// empty cart without creating one.
func (s *CartService) Get(ctx context.Context, sessionID string) (*Response, error) {
	sessionID, err := normalizeSession(sessionID)
	if err != nil {
		return nil, err
	}
	if sessionID == "" {
		return ToResponse(cart.New("")), nil
	}
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return ToResponse(c), nil
}

// AddItem adds a variant of an ACTIVE product. A new session id is issued when
// sessionID is empty.
func (s *CartService) AddItem(ctx context.Context, sessionID string, req AddItemRequest) (*Response, error) {
	sessionID, err := s.sessionForWrite(sessionID)
	if err != nil {
		return nil, err
	}

	line, err := s.lineFor(ctx, req.VariantID, req.Quantity)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, sessionID, func(c *cart.Cart) error {
		return c.Add(line)
	})
}

// UpdateItem sets the quantity of a line; zero removes it
func (s *CartService) UpdateItem(ctx context.Context, sessionID string, variantID uuid.UUID, quantity int) (*Response, error) {
	sessionID, err := s.requireSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, sessionID, func(c *cart.Cart) error {
		return c.SetQuantity(variantID, quantity)
	})
}

// RemoveItem drops the line for a variant
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, variantID uuid.UUID) (*Response, error) {
	sessionID, err := s.requireSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, sessionID, func(c *cart.Cart) error {
		return c.Remove(variantID)
	})
}

// Clear deletes the stored cart
func (s *CartService) Clear(ctx context.Context, sessionID string) (*Response, error) {
	sessionID, err := s.requireSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}
	return ToResponse(cart.New(sessionID)), nil
}

func (s *CartService) mutate(ctx context.Context, sessionID string, fn func(*cart.Cart) error) (*Response, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, c); err != nil {
		s.logger.Error("Failed to save cart", zap.String("session_id", sessionID), zap.Error(err))
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return ToResponse(c), nil
}

func (s *CartService) lineFor(ctx context.Context, variantID uuid.UUID, quantity int) (cart.Line, error) {
	variant, err := s.productRepo.FindVariantByID(ctx, variantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return cart.Line{}, shared.NewNotFoundError("Variant")
		}
		return cart.Line{}, fmt.Errorf("failed to load variant: %w", err)
	}
	product, err := s.productRepo.FindByID(ctx, variant.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return cart.Line{}, shared.NewNotFoundError("Variant")
		}
		return cart.Line{}, fmt.Errorf("failed to load product: %w", err)
	}
	if !product.IsActive() {
		return cart.Line{}, shared.NewNotFoundError("Variant")
	}

	return cart.Line{
		VariantID:    variant.ID,
		ProductID:    product.ID,
		ProductTitle: product.Title,
		VariantName:  variant.Name,
		SKU:          variant.SKU,
		Image:        product.Thumbnail(),
		Quantity:     quantity,
		UnitPrice:    variant.Price,
	}, nil
}

func (s *CartService) sessionForWrite(sessionID string) (string, error) {
	sessionID, err := normalizeSession(sessionID)
	if err != nil {
		return "", err
	}
	if sessionID == "" {
		sessionID = s.newSession()
	}
	return sessionID, nil
}

func (s *CartService) requireSession(sessionID string) (string, error) {
	sessionID, err := normalizeSession(sessionID)
	if err != nil {
		return "", err
	}
	if sessionID == "" {
		return "", shared.NewValidationError("Cart session is required")
	}
	return sessionID, nil
}

func normalizeSession(sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if len(sessionID) > MaxSessionIDLength {
		return "", shared.NewValidationError("Cart session id is too long")
	}
	return sessionID, nil
}
