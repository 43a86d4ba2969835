// Package fulfillment forwards paid orders to the dropshipping supplier.
//
// An order is guarded twice: a keyed in-flight lock keeps one submission per
// order per guard backend, and a conditional PAID to PROCESSING_AT_SUPPLIER
// claim in the database makes the hand-off safe across processes that do not
// share the lock.
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/order"
	"github.com/lumina/storefront/internal/domain/shared"
	"github.com/lumina/storefront/internal/infrastructure/logger"
	"github.com/lumina/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const (
	// DefaultSupplierTimeout bounds one supplier submission
	DefaultSupplierTimeout = 10 * time.Second
	// DefaultGuardTTL bounds how long a crashed submission keeps an order locked
	DefaultGuardTTL = 60 * time.Second

	// TriggerAdmin marks fulfillments started from the admin console
	TriggerAdmin = "admin"
)

// Config tunes the fulfillment workflow
type Config struct {
	SupplierTimeout   time.Duration
	GuardTTL          time.Duration
	EscalateOnFailure bool
}

// Result describes a fulfilled order
type Result struct {
	OrderID           uuid.UUID `json:"orderId"`
	Status            string    `json:"status"`
	TrackingNumber    string    `json:"trackingNumber"`
	Carrier           string    `json:"carrier"`
	TrackingURL       string    `json:"trackingUrl"`
	EstimatedDelivery string    `json:"estimatedDelivery"`
}

// Service runs the admin-triggered supplier hand-off
type Service struct {
	orderRepo       order.Repository
	txScope         order.TransactionScope
	supplier        order.SupplierClient
	guard           shared.InFlightGuard
	cfg             Config
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	now             func() time.Time
}

// NewService creates a new fulfillment Service
func NewService(
	orderRepo order.Repository,
	txScope order.TransactionScope,
	supplier order.SupplierClient,
	guard shared.InFlightGuard,
	cfg Config,
) *Service {
	if cfg.SupplierTimeout <= 0 {
		cfg.SupplierTimeout = DefaultSupplierTimeout
	}
	if cfg.GuardTTL <= 0 {
		cfg.GuardTTL = DefaultGuardTTL
	}
	return &Service{
		orderRepo: orderRepo,
		txScope:   txScope,
		supplier:  supplier,
		guard:     guard,
		cfg:       cfg,
		now:       time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *Service) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Fulfill submits a PAID order to the supplier. On success the order is
// FULFILLED with tracking data. On failure it returns to PAID, or to
// REQUIRES_ATTENTION when escalation is on, and an INTEGRATION_ERROR carrying
// the supplier message is returned. Nothing is retried automatically.
func (s *Service) Fulfill(ctx context.Context, orderID uuid.UUID) (*Result, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fulfillment", "fulfill",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrTrigger, TriggerAdmin),
	)
	defer span.End()

	key := "fulfillment:" + orderID.String()
	token, acquired, err := s.guard.Acquire(ctx, key, s.cfg.GuardTTL)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to acquire fulfillment guard: %w", err)
	}
	if !acquired {
		s.businessMetrics.RecordFulfillment(ctx, telemetry.FulfillmentSkipped, TriggerAdmin, 0)
		err := shared.NewDomainError(shared.CodeConflict, "Fulfillment already in progress for this order")
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), key, token); err != nil {
			logger.L(ctx).Warn("Failed to release fulfillment guard",
				zap.String("order_id", orderID.String()),
				zap.Error(err),
			)
		}
	}()

	o, err := s.claim(ctx, orderID)
	if err != nil {
		s.businessMetrics.RecordFulfillment(ctx, telemetry.FulfillmentSkipped, TriggerAdmin, 0)
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.businessMetrics.RecordOrderTransition(ctx, string(order.StatusProcessingAtSupplier))

	started := s.now()
	receipt, submitErr := s.submit(ctx, o)
	elapsed := s.now().Sub(started)

	// The supplier call may have outlived the request; the outcome is still recorded.
	ctx = context.WithoutCancel(ctx)

	if submitErr != nil {
		err := s.fail(ctx, o, submitErr)
		s.businessMetrics.RecordFulfillment(ctx, telemetry.FulfillmentFailed, TriggerAdmin, elapsed)
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.complete(ctx, o, receipt); err != nil {
		s.escalate(ctx, orderID, receipt, err)
		s.businessMetrics.RecordFulfillment(ctx, telemetry.FulfillmentFailed, TriggerAdmin, elapsed)
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.businessMetrics.RecordFulfillment(ctx, telemetry.FulfillmentSucceeded, TriggerAdmin, elapsed)
	s.businessMetrics.RecordOrderTransition(ctx, string(order.StatusFulfilled))

	telemetry.SetAttribute(span, telemetry.SpanAttrTracking, o.Fulfillment.TrackingNumber)
	telemetry.SetOK(span)

	logger.L(ctx).Info("Order fulfilled",
		zap.String("order_id", o.ID.String()),
		zap.String("tracking_number", o.Fulfillment.TrackingNumber),
		zap.Duration("elapsed", elapsed),
	)

	return &Result{
		OrderID:           o.ID,
		Status:            string(o.Status),
		TrackingNumber:    o.Fulfillment.TrackingNumber,
		Carrier:           o.Fulfillment.Carrier,
		TrackingURL:       o.Fulfillment.TrackingURL,
		EstimatedDelivery: o.Fulfillment.EstimatedDelivery,
	}, nil
}

// claim checks the order is PAID and moves it to PROCESSING_AT_SUPPLIER.
// The returned order is reloaded so its version matches the claimed row.
func (s *Service) claim(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	o, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.StartFulfillment(); err != nil {
		return nil, err
	}

	claimed, err := s.orderRepo.ClaimStatus(ctx, orderID, order.StatusPaid, order.StatusProcessingAtSupplier)
	if err != nil {
		return nil, fmt.Errorf("failed to claim order: %w", err)
	}
	if !claimed {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Order is no longer awaiting fulfillment")
	}

	return s.load(ctx, orderID)
}

func (s *Service) submit(ctx context.Context, o *order.Order) (*order.SupplierReceipt, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.SupplierTimeout)
	defer cancel()

	receipt, err := s.supplier.SubmitOrder(ctx, order.NewSupplierOrder(o))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("supplier did not respond within %s", s.cfg.SupplierTimeout)
		}
		return nil, err
	}
	if receipt == nil {
		return nil, errors.New("supplier returned no receipt")
	}
	return receipt, nil
}

// fail records the rejection and returns the error shown to the admin
func (s *Service) fail(ctx context.Context, o *order.Order, cause error) error {
	reason := cause.Error()
	if err := o.FailFulfillment(reason, s.cfg.EscalateOnFailure); err != nil {
		return err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		logger.L(ctx).Error("Failed to record fulfillment failure",
			zap.String("order_id", o.ID.String()),
			zap.Error(err),
		)
		if !s.release(ctx, o.ID, o.Status) {
			return fmt.Errorf("failed to record fulfillment failure: %w", err)
		}
	}
	s.businessMetrics.RecordOrderTransition(ctx, string(o.Status))
	s.publish(ctx, o)

	logger.L(ctx).Warn("Supplier rejected order",
		zap.String("order_id", o.ID.String()),
		zap.String("status", string(o.Status)),
		zap.String("reason", reason),
	)
	return shared.NewDomainError(shared.CodeIntegration, reason)
}

func (s *Service) complete(ctx context.Context, o *order.Order, receipt *order.SupplierReceipt) error {
	err := s.txScope.Execute(ctx, func(repos order.TransactionalRepositories) error {
		f, err := order.NewFulfillment(receipt.TrackingNumber, receipt.Carrier, receipt.EstimatedDelivery)
		if err != nil {
			return err
		}
		if err := o.CompleteFulfillment(f); err != nil {
			return err
		}
		return repos.Orders().Save(ctx, o)
	})
	if err != nil {
		logger.L(ctx).Error("Failed to record fulfillment",
			zap.String("order_id", o.ID.String()),
			zap.String("tracking_number", receipt.TrackingNumber),
			zap.Error(err),
		)
		return fmt.Errorf("failed to record fulfillment: %w", err)
	}
	s.publish(ctx, o)
	return nil
}

// escalate parks an order the supplier accepted but that could not be marked
// FULFILLED, so it does not stay in PROCESSING_AT_SUPPLIER forever.
func (s *Service) escalate(ctx context.Context, orderID uuid.UUID, receipt *order.SupplierReceipt, cause error) {
	log := logger.L(ctx).With(
		zap.String("order_id", orderID.String()),
		zap.String("tracking_number", receipt.TrackingNumber),
	)
	o, err := s.load(ctx, orderID)
	if err != nil {
		log.Error("Failed to reload order for escalation", zap.Error(err))
		return
	}
	if err := o.FailFulfillment("Supplier accepted order but recording failed: "+cause.Error(), true); err != nil {
		log.Error("Failed to escalate order", zap.Error(err))
		return
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		log.Error("Failed to escalate order", zap.Error(err))
		if !s.release(ctx, orderID, order.StatusRequiresAttention) {
			return
		}
	}
	s.businessMetrics.RecordOrderTransition(ctx, string(o.Status))
	s.publish(ctx, o)
}

// release moves a claimed order out of PROCESSING_AT_SUPPLIER with a bare
// status write when the full save failed. Reports whether the order moved.
func (s *Service) release(ctx context.Context, orderID uuid.UUID, to order.Status) bool {
	released, err := s.orderRepo.ClaimStatus(ctx, orderID, order.StatusProcessingAtSupplier, to)
	if err != nil || !released {
		logger.L(ctx).Error("Order left at supplier step; reset it once the submission is stale",
			zap.String("order_id", orderID.String()),
			zap.String("target_status", string(to)),
			zap.Error(err),
		)
		return false
	}
	logger.L(ctx).Warn("Released order with a status-only write",
		zap.String("order_id", orderID.String()),
		zap.String("status", string(to)),
	)
	return true
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Order")
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return o, nil
}

func (s *Service) publish(ctx context.Context, o *order.Order) {
	events := o.GetDomainEvents()
	o.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("Failed to publish fulfillment events",
			zap.String("order_id", o.ID.String()),
			zap.Error(err),
		)
	}
}
