// Package checkout turns a cart into a paid order. Stock is taken with a
// compare-and-decrement inside the order transaction, so two buyers racing
// for the last unit produce exactly one order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/catalog"
	"github.com/lumina/storefront/internal/domain/order"
	"github.com/lumina/storefront/internal/domain/shared"
	"github.com/lumina/storefront/internal/infrastructure/logger"
	"github.com/lumina/storefront/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CheckoutService places orders and opens payment sessions
type CheckoutService struct {
	productRepo     catalog.ProductRepository
	txScope         order.TransactionScope
	gateway         order.PaymentGateway
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(
	productRepo catalog.ProductRepository,
	txScope order.TransactionScope,
	gateway order.PaymentGateway,
) *CheckoutService {
	return &CheckoutService{
		productRepo: productRepo,
		txScope:     txScope,
		gateway:     gateway,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CheckoutService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *CheckoutService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

type pricedLine struct {
	product  *catalog.Product
	variant  *catalog.Variant
	quantity int
}

// Process validates the cart against live inventory, prices it from current
// variant prices and creates a PAID order while decrementing stock, all in
// one transaction. Nothing is written when any line fails.
func (s *CheckoutService) Process(ctx context.Context, in ProcessCheckoutInput) (*ProcessCheckoutResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "process",
		telemetry.WithAttribute(telemetry.SpanAttrLineCount, len(in.Items)),
	)
	defer span.End()

	o, soldOut, err := s.process(ctx, in)
	if err != nil {
		s.businessMetrics.RecordCheckout(ctx, outcomeFor(err))
		telemetry.RecordError(span, err)
		logger.L(ctx).Info("Checkout rejected", zap.Error(err))
		return nil, err
	}

	s.businessMetrics.RecordCheckout(ctx, telemetry.CheckoutSucceeded)
	s.businessMetrics.RecordRevenue(ctx, o.Total)
	s.businessMetrics.RecordOrderTransition(ctx, string(o.Status))
	for _, sku := range soldOut {
		s.businessMetrics.RecordOutOfStock(ctx, sku)
	}

	s.publish(ctx, o)

	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, o.ID.String(),
		telemetry.SpanAttrAmount, o.Total.StringFixed(2),
	)
	telemetry.SetOK(span)

	logger.L(ctx).Info("Order placed",
		zap.String("order_id", o.ID.String()),
		zap.String("total", o.Total.StringFixed(2)),
		zap.Int("items", o.ItemCount()),
	)

	return &ProcessCheckoutResult{
		OrderID:       o.ID,
		Total:         o.Total,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
	}, nil
}

func (s *CheckoutService) process(ctx context.Context, in ProcessCheckoutInput) (*order.Order, []string, error) {
	lines, err := mergeLines(in.Items)
	if err != nil {
		return nil, nil, err
	}
	customer := order.Customer{
		UserID: in.UserID,
		Email:  in.Email,
		Name:   strings.TrimSpace(strings.TrimSpace(in.FirstName) + " " + strings.TrimSpace(in.LastName)),
	}
	address := order.ShippingAddress{
		Address: strings.TrimSpace(in.Address),
		City:    strings.TrimSpace(in.City),
		Zip:     strings.TrimSpace(in.Zip),
	}

	o, err := order.NewOrder(customer, address)
	if err != nil {
		return nil, nil, err
	}

	// The gate runs before any read so a declined payer leaves no trace.
	// The amount is unknown until lines are priced.
	if err := s.gateway.Authorize(ctx, o.GuestEmail, decimal.Zero); err != nil {
		return nil, nil, err
	}

	var soldOut []string
	err = s.txScope.Execute(ctx, func(repos order.TransactionalRepositories) error {
		priced, err := priceLines(ctx, repos.Products(), lines)
		if err != nil {
			return err
		}

		for _, pl := range priced {
			if !pl.variant.HasStock(pl.quantity) {
				return outOfStock(pl.variant.SKU)
			}
			if err := o.AddItem(pl.variant.ID, pl.product.Title, pl.variant.Name, pl.variant.SKU, pl.quantity, pl.variant.Price); err != nil {
				return err
			}
		}
		if err := o.MarkPaid(); err != nil {
			return err
		}
		if err := repos.Orders().Create(ctx, o); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, pl := range priced {
			ok, err := repos.Inventory().Decrement(ctx, pl.variant.ID, pl.quantity)
			if err != nil {
				return fmt.Errorf("failed to decrement inventory: %w", err)
			}
			if !ok {
				return outOfStock(pl.variant.SKU)
			}
			if pl.variant.Inventory == pl.quantity {
				soldOut = append(soldOut, pl.variant.SKU)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return o, soldOut, nil
}

// CreateSession prices the cart from current variant prices and opens a mock
// payment intent. Stock is not checked or reserved.
func (s *CheckoutService) CreateSession(ctx context.Context, in CreateSessionInput) (*SessionResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "create_session",
		telemetry.WithAttribute(telemetry.SpanAttrLineCount, len(in.Items)),
	)
	defer span.End()

	lines, err := mergeLines(in.Items)
	if err != nil {
		return nil, err
	}
	priced, err := priceLines(ctx, s.productRepo, lines)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	total := decimal.Zero
	for _, pl := range priced {
		total = total.Add(pl.variant.Price.Mul(decimal.NewFromInt(int64(pl.quantity))))
	}

	intent, err := s.gateway.CreateIntent(ctx, total)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrAmount, total.StringFixed(2))
	telemetry.SetOK(span)
	return &SessionResult{ClientSecret: intent.ClientSecret, Total: total}, nil
}

// mergeLines validates quantities and sums duplicate variants, keeping the
// order in which variants first appear
func mergeLines(items []LineInput) ([]LineInput, error) {
	if len(items) == 0 {
		return nil, shared.NewValidationError("Cart is empty")
	}

	merged := make([]LineInput, 0, len(items))
	index := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		if item.VariantID == uuid.Nil {
			return nil, shared.NewValidationError("Variant ID is required")
		}
		if item.Quantity < 1 {
			return nil, shared.NewValidationError("Quantity must be at least 1")
		}
		if i, ok := index[item.VariantID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.VariantID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

// priceLines loads each variant and its product. A missing variant or a
// product that is not ACTIVE is reported as not found.
func priceLines(ctx context.Context, products catalog.ProductRepository, lines []LineInput) ([]pricedLine, error) {
	cache := make(map[uuid.UUID]*catalog.Product)
	priced := make([]pricedLine, 0, len(lines))

	for _, line := range lines {
		variant, err := products.FindVariantByID(ctx, line.VariantID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewNotFoundError("Variant " + line.VariantID.String())
			}
			return nil, fmt.Errorf("failed to load variant: %w", err)
		}

		product, ok := cache[variant.ProductID]
		if !ok {
			product, err = products.FindByID(ctx, variant.ProductID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return nil, shared.NewNotFoundError("Variant " + line.VariantID.String())
				}
				return nil, fmt.Errorf("failed to load product: %w", err)
			}
			cache[variant.ProductID] = product
		}
		if !product.IsActive() {
			return nil, shared.NewNotFoundError("Variant " + line.VariantID.String())
		}

		priced = append(priced, pricedLine{product: product, variant: variant, quantity: line.Quantity})
	}
	return priced, nil
}

func outOfStock(sku string) error {
	return shared.NewDomainError(shared.CodeOutOfStock, "Out of stock: "+sku)
}

func outcomeFor(err error) telemetry.CheckoutOutcome {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case shared.CodeOutOfStock:
			return telemetry.CheckoutOutOfStock
		case shared.CodePaymentDeclined:
			return telemetry.CheckoutPaymentDeclined
		}
	}
	return telemetry.CheckoutFailed
}

func (s *CheckoutService) publish(ctx context.Context, o *order.Order) {
	events := o.GetDomainEvents()
	o.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("Failed to publish checkout events",
			zap.String("order_id", o.ID.String()),
			zap.Error(err),
		)
	}
}
