// Package supplier holds the dropshipping supplier adapter. The only
// implementation simulates a remote API with latency and random failures.
package supplier

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/lumina/storefront/internal/domain/order"
	"github.com/lumina/storefront/internal/infrastructure/config"
	"go.uber.org/zap"
)

// FailureMessage is returned when the simulated supplier rejects an order
const FailureMessage = "Supplier API Time-out / Out of Stock"

const trackingAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ErrRejected wraps every simulated supplier failure
var ErrRejected = errors.New(FailureMessage)

// Random is the subset of math/rand/v2 used by the simulation
type Random interface {
	Float64() float64
	IntN(n int) int
}

// Sleeper waits for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep is the default Sleeper
func ContextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Option configures a SimulatedClient
type Option func(*SimulatedClient)

// WithRandom replaces the random source
func WithRandom(r Random) Option {
	return func(c *SimulatedClient) {
		c.rnd = r
	}
}

// WithSleeper replaces the sleeper
func WithSleeper(s Sleeper) Option {
	return func(c *SimulatedClient) {
		c.sleep = s
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *SimulatedClient) {
		c.logger = l
	}
}

// SimulatedClient implements order.SupplierClient without any network I/O
type SimulatedClient struct {
	cfg    config.SupplierConfig
	mu     sync.Mutex // guards rnd
	rnd    Random
	sleep  Sleeper
	logger *zap.Logger
}

// NewSimulatedClient creates a simulated supplier
func NewSimulatedClient(cfg config.SupplierConfig, opts ...Option) *SimulatedClient {
	c := &SimulatedClient{
		cfg:    cfg,
		rnd:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
		sleep:  ContextSleep,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SubmitOrder waits a random latency, then either fails with FailureMessage
// or returns a fresh tracking number
func (c *SimulatedClient) SubmitOrder(ctx context.Context, o order.SupplierOrder) (*order.SupplierReceipt, error) {
	if err := c.sleep(ctx, c.latency()); err != nil {
		return nil, err
	}

	if c.float64() < c.cfg.FailureRate {
		c.logger.Warn("Supplier rejected order",
			zap.String("order_id", o.OrderID.String()),
			zap.Int("lines", len(o.Lines)),
		)
		return nil, ErrRejected
	}

	receipt := &order.SupplierReceipt{
		TrackingNumber:    "TRK" + c.randomCode(8),
		Carrier:           c.cfg.Carrier,
		EstimatedDelivery: c.cfg.EstimatedDelivery,
	}
	c.logger.Info("Supplier accepted order",
		zap.String("order_id", o.OrderID.String()),
		zap.String("tracking_number", receipt.TrackingNumber),
	)
	return receipt, nil
}

// SyncInventory pretends to pull stock levels and reports 1 to 5 changed SKUs
func (c *SimulatedClient) SyncInventory(ctx context.Context) (int, error) {
	if err := c.sleep(ctx, c.latency()/2); err != nil {
		return 0, err
	}
	c.mu.Lock()
	n := c.rnd.IntN(5) + 1
	c.mu.Unlock()
	return n, nil
}

func (c *SimulatedClient) latency() time.Duration {
	span := c.cfg.MaxLatency - c.cfg.MinLatency
	if span <= 0 {
		return c.cfg.MinLatency
	}
	return c.cfg.MinLatency + time.Duration(c.float64()*float64(span))
}

func (c *SimulatedClient) float64() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rnd.Float64()
}

func (c *SimulatedClient) randomCode(n int) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(trackingAlphabet[c.rnd.IntN(len(trackingAlphabet))])
	}
	return b.String()
}

var _ order.SupplierClient = (*SimulatedClient)(nil)
