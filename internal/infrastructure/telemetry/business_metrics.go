package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// CheckoutOutcome labels the result of a checkout attempt.
type CheckoutOutcome string

const (
	CheckoutSucceeded       CheckoutOutcome = "success"
	CheckoutOutOfStock      CheckoutOutcome = "out_of_stock"
	CheckoutPaymentDeclined CheckoutOutcome = "payment_declined"
	CheckoutFailed          CheckoutOutcome = "error"
)

// FulfillmentOutcome labels the result of a fulfillment attempt.
type FulfillmentOutcome string

const (
	FulfillmentSucceeded FulfillmentOutcome = "fulfilled"
	FulfillmentFailed    FulfillmentOutcome = "failed"
	FulfillmentSkipped   FulfillmentOutcome = "skipped"
)

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter             metric.Meter
	Logger            *zap.Logger
	LowStockProvider  LowStockProvider
	LowStockThreshold int
}

// LowStockProvider reports how many variants sit at or below a stock threshold.
type LowStockProvider interface {
	CountLowStock(ctx context.Context, threshold int) (int64, error)
}

// BusinessMetrics records storefront counters and gauges. A nil
// *BusinessMetrics is valid and records nothing.
type BusinessMetrics struct {
	logger *zap.Logger

	checkoutTotal       *Counter
	revenueTotal        *FloatCounter
	orderTransitions    *Counter
	fulfillmentTotal    *Counter
	fulfillmentDuration *Histogram
	variantsOutOfStock  *Counter
	inventoryLowStock   *Gauge
	supplierSyncedTotal *Counter
	lowStockProvider    LowStockProvider
	lowStockThreshold   int
	collectOnce         sync.Once
	stopOnce            sync.Once
	stopChan            chan struct{}
}

// NewBusinessMetrics creates the storefront business instruments.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		logger:            logger,
		lowStockProvider:  cfg.LowStockProvider,
		lowStockThreshold: cfg.LowStockThreshold,
		stopChan:          make(chan struct{}),
	}

	var err error
	if bm.checkoutTotal, err = NewCounter(cfg.Meter,
		"lumina_checkout_total", "Checkout attempts by outcome", "{checkouts}"); err != nil {
		return nil, err
	}
	if bm.revenueTotal, err = NewFloatCounter(cfg.Meter,
		"lumina_revenue_total", "Revenue from placed orders", "USD"); err != nil {
		return nil, err
	}
	if bm.orderTransitions, err = NewCounter(cfg.Meter,
		"lumina_order_transitions_total", "Order status transitions by target status", "{transitions}"); err != nil {
		return nil, err
	}
	if bm.fulfillmentTotal, err = NewCounter(cfg.Meter,
		"lumina_fulfillment_total", "Fulfillment attempts by outcome and trigger", "{attempts}"); err != nil {
		return nil, err
	}
	if bm.fulfillmentDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "lumina_fulfillment_duration_seconds",
		Description: "Supplier round trip for fulfillment attempts",
		Unit:        "s",
		Boundaries:  SupplierDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if bm.variantsOutOfStock, err = NewCounter(cfg.Meter,
		"lumina_inventory_out_of_stock_total", "Variants whose stock reached zero", "{variants}"); err != nil {
		return nil, err
	}
	if bm.inventoryLowStock, err = NewGauge(cfg.Meter,
		"lumina_inventory_low_stock_count", "Variants at or below the low stock threshold", "{variants}"); err != nil {
		return nil, err
	}
	if bm.supplierSyncedTotal, err = NewCounter(cfg.Meter,
		"lumina_supplier_sync_total", "Variants updated by supplier inventory sync", "{variants}"); err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordCheckout records a checkout attempt.
func (bm *BusinessMetrics) RecordCheckout(ctx context.Context, outcome CheckoutOutcome) {
	if bm == nil {
		return
	}
	bm.checkoutTotal.Inc(ctx, AttrOutcome.String(string(outcome)))
}

// RecordRevenue adds an order total to the revenue counter.
func (bm *BusinessMetrics) RecordRevenue(ctx context.Context, amount decimal.Decimal) {
	if bm == nil {
		return
	}
	bm.revenueTotal.Add(ctx, amount.InexactFloat64())
}

// RecordOrderTransition records an order moving into status.
func (bm *BusinessMetrics) RecordOrderTransition(ctx context.Context, status string) {
	if bm == nil {
		return
	}
	bm.orderTransitions.Inc(ctx, AttrOrderStatus.String(status))
}

// RecordFulfillment records a fulfillment attempt and its supplier latency.
// Skipped attempts carry no latency.
func (bm *BusinessMetrics) RecordFulfillment(ctx context.Context, outcome FulfillmentOutcome, trigger string, elapsed time.Duration) {
	if bm == nil {
		return
	}
	bm.fulfillmentTotal.Inc(ctx,
		AttrOutcome.String(string(outcome)),
		AttrTrigger.String(trigger),
	)
	if outcome != FulfillmentSkipped {
		bm.fulfillmentDuration.RecordDuration(ctx, elapsed, AttrOutcome.String(string(outcome)))
	}
}

// RecordOutOfStock records a variant whose stock reached zero.
func (bm *BusinessMetrics) RecordOutOfStock(ctx context.Context, sku string) {
	if bm == nil {
		return
	}
	bm.variantsOutOfStock.Inc(ctx, AttrSKU.String(sku))
}

// RecordSupplierSync records the number of variants touched by a sync.
func (bm *BusinessMetrics) RecordSupplierSync(ctx context.Context, updated int) {
	if bm == nil {
		return
	}
	bm.supplierSyncedTotal.Add(ctx, int64(updated))
}

// RecordLowStockCount sets the low stock gauge.
func (bm *BusinessMetrics) RecordLowStockCount(ctx context.Context, count int64) {
	if bm == nil {
		return
	}
	bm.inventoryLowStock.Record(ctx, count)
}

// StartPeriodicCollection samples the low stock gauge every interval until
// Stop is called or ctx ends. Only the first call has an effect.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	if bm == nil {
		return
	}
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go bm.runPeriodicCollection(ctx, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collectLowStock(ctx)

	for {
		select {
		case <-bm.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			bm.collectLowStock(ctx)
		}
	}
}

func (bm *BusinessMetrics) collectLowStock(ctx context.Context) {
	if bm.lowStockProvider == nil {
		return
	}
	count, err := bm.lowStockProvider.CountLowStock(ctx, bm.lowStockThreshold)
	if err != nil {
		bm.logger.Warn("Failed to count low stock variants", zap.Error(err))
		return
	}
	bm.RecordLowStockCount(ctx, count)
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	if bm == nil {
		return
	}
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
