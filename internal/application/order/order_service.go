package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/order"
	"github.com/lumina/storefront/internal/domain/settings"
	"github.com/lumina/storefront/internal/domain/shared"
	"github.com/lumina/storefront/internal/infrastructure/logger"
	"github.com/lumina/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PackingSlipRenderer renders a printable packing slip for an order
type PackingSlipRenderer interface {
	RenderPackingSlip(ctx context.Context, o *order.Order, storeName string) (*Document, error)
}

// OrderService handles admin order management and customer order history
type OrderService struct {
	orderRepo       order.Repository
	settingsRepo    settings.Repository
	txScope         order.TransactionScope
	slips           PackingSlipRenderer
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	stalledAfter    time.Duration
	now             func() time.Time
}

// DefaultStalledAfter is how long an order may sit at the supplier step
// before an admin can reset it
const DefaultStalledAfter = 2 * time.Minute

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo order.Repository,
	settingsRepo settings.Repository,
	txScope order.TransactionScope,
	slips PackingSlipRenderer,
) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		settingsRepo: settingsRepo,
		txScope:      txScope,
		slips:        slips,
		stalledAfter: DefaultStalledAfter,
		now:          time.Now,
	}
}

// SetStalledAfter sets how long a supplier submission may run before the
// order counts as stalled. It should not be shorter than the fulfillment
// guard TTL.
func (s *OrderService) SetStalledAfter(d time.Duration) {
	if d > 0 {
		s.stalledAfter = d
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *OrderService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// AdminList returns orders newest first. An empty status or ALL lists every order.
func (s *OrderService) AdminList(ctx context.Context, status string) ([]OrderRow, error) {
	filter := shared.Filter{
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  map[string]interface{}{},
	}

	status = strings.ToUpper(strings.TrimSpace(status))
	if status != "" && status != StatusAll {
		if !order.Status(status).IsValid() {
			return nil, shared.NewValidationError("Invalid order status: " + status)
		}
		filter.Filters["status"] = status
	}

	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return ToOrderRows(orders), nil
}

// Get returns the full order
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*OrderDetail, error) {
	o, err := s.load(ctx, s.orderRepo, id)
	if err != nil {
		return nil, err
	}
	detail := ToOrderDetail(o)
	return &detail, nil
}

// ListForUser returns the orders placed by a signed-in customer, newest first
func (s *OrderService) ListForUser(ctx context.Context, userID uuid.UUID) ([]OrderDetail, error) {
	orders, err := s.orderRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list customer orders: %w", err)
	}
	return ToOrderDetails(orders), nil
}

// Cancel cancels an order that has not reached the supplier. Stock is
// returned and a paid order is refunded, atomically.
func (s *OrderService) Cancel(ctx context.Context, id uuid.UUID) (*OrderDetail, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "cancel",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, id.String()),
	)
	defer span.End()

	var cancelled *order.Order
	err := s.txScope.Execute(ctx, func(repos order.TransactionalRepositories) error {
		o, err := s.load(ctx, repos.Orders(), id)
		if err != nil {
			return err
		}
		if err := o.Cancel(); err != nil {
			return err
		}
		for _, item := range o.Items {
			if err := repos.Inventory().Restock(ctx, item.VariantID, item.Quantity); err != nil {
				return fmt.Errorf("failed to restock %s: %w", item.SKU, err)
			}
		}
		if err := repos.Orders().Save(ctx, o); err != nil {
			return err
		}
		cancelled = o
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.businessMetrics.RecordOrderTransition(ctx, string(order.StatusCancelled))
	s.publish(ctx, cancelled)

	logger.L(ctx).Info("Order cancelled",
		zap.String("order_id", id.String()),
		zap.String("payment_status", string(cancelled.PaymentStatus)),
	)
	telemetry.SetOK(span)

	detail := ToOrderDetail(cancelled)
	return &detail, nil
}

// ResetForRetry moves an order back to PAID. It accepts orders that need
// attention and orders whose supplier submission stalled without recording
// an outcome.
func (s *OrderService) ResetForRetry(ctx context.Context, id uuid.UUID) (*OrderDetail, error) {
	o, err := s.load(ctx, s.orderRepo, id)
	if err != nil {
		return nil, err
	}
	stalled := o.Status == order.StatusProcessingAtSupplier
	if stalled {
		err = o.RecoverStalled(s.now(), s.stalledAfter)
	} else {
		err = o.ResetForRetry()
	}
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	s.businessMetrics.RecordOrderTransition(ctx, string(order.StatusPaid))
	logger.L(ctx).Info("Order reset for fulfillment retry",
		zap.String("order_id", id.String()),
		zap.Bool("stalled", stalled),
	)

	detail := ToOrderDetail(o)
	return &detail, nil
}

// PackingSlip renders the packing slip of an order
func (s *OrderService) PackingSlip(ctx context.Context, id uuid.UUID) (*Document, error) {
	if s.slips == nil {
		return nil, shared.NewDomainError(shared.CodeIntegration, "Packing slips are not available")
	}

	o, err := s.load(ctx, s.orderRepo, id)
	if err != nil {
		return nil, err
	}

	storeName := settings.DefaultStoreName
	if s.settingsRepo != nil {
		st, err := s.settingsRepo.Find(ctx)
		switch {
		case err == nil:
			storeName = st.StoreName
		case !errors.Is(err, shared.ErrNotFound):
			return nil, fmt.Errorf("failed to load store settings: %w", err)
		}
	}

	doc, err := s.slips.RenderPackingSlip(ctx, o, storeName)
	if err != nil {
		return nil, fmt.Errorf("failed to render packing slip: %w", err)
	}
	return doc, nil
}

func (s *OrderService) load(ctx context.Context, repo order.Repository, id uuid.UUID) (*order.Order, error) {
	o, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Order")
		}
		return nil, err
	}
	return o, nil
}

func (s *OrderService) publish(ctx context.Context, o *order.Order) {
	events := o.GetDomainEvents()
	o.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("Failed to publish order events",
			zap.String("order_id", o.ID.String()),
			zap.Error(err),
		)
	}
}
