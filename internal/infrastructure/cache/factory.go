package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lumina/storefront/internal/domain/cart"
	"github.com/lumina/storefront/internal/domain/shared"
	"github.com/lumina/storefront/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stores bundles the key-value backed components used by the API
type Stores struct {
	Guard  shared.InFlightGuard
	Carts  cart.Store
	Client *redis.Client // nil when running in memory
}

// Close releases the guard, the cart store and the shared client
func (s *Stores) Close() error {
	var errs []error
	if s.Guard != nil {
		errs = append(errs, s.Guard.Close())
	}
	if s.Carts != nil {
		errs = append(errs, s.Carts.Close())
	}
	if s.Client != nil {
		errs = append(errs, s.Client.Close())
	}
	return errors.Join(errs...)
}

// Factory creates stores based on configuration
type Factory struct {
	redisConfig           config.RedisConfig
	cartConfig            config.CartConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	pingTimeout           time.Duration
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores when
// Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(redisCfg config.RedisConfig, cartCfg config.CartConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           redisCfg,
		cartConfig:            cartCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		pingTimeout:           5 * time.Second,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Connect opens and pings a Redis client
func (f *Factory) Connect(ctx context.Context) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, f.pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// CreateInMemoryStores creates process-local stores.
// They do not share state across instances, so the fulfillment guard only
// protects within one process; the conditional status claim covers the rest.
func (f *Factory) CreateInMemoryStores() *Stores {
	return &Stores{
		Guard: NewInMemoryGuard(),
		Carts: NewInMemoryCartStore(f.cartConfig.TTL),
	}
}

// CreateStores uses Redis when enabled and reachable, otherwise falls back to
// in-memory stores if allowed
func (f *Factory) CreateStores(ctx context.Context) (*Stores, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("redis disabled, using in-memory cart store and fulfillment guard")
		return f.CreateInMemoryStores(), nil
	}

	client, err := f.Connect(ctx)
	if err == nil {
		f.logger.Info("using Redis cart store and fulfillment guard", zap.String("addr", f.redisConfig.Addr()))
		return &Stores{
			Guard:  NewRedisGuardWithClient(client, ""),
			Carts:  NewRedisCartStoreWithClient(client, f.cartConfig.KeyPrefix, f.cartConfig.TTL),
			Client: client,
		}, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
		"Carts will not be shared across instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryStores(), nil
}
