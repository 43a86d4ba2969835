package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const defaultGuardPrefix = "lumina:inflight:"

// releaseScript deletes the key only while it still carries the caller's token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard implements shared.InFlightGuard with SETNX so that every
// API instance sharing the redis sees the same holders.
type RedisGuard struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisGuardWithClient creates a guard on an existing client. The client
// is not closed by Close.
func NewRedisGuardWithClient(client *redis.Client, keyPrefix string) *RedisGuard {
	if keyPrefix == "" {
		keyPrefix = defaultGuardPrefix
	}
	return &RedisGuard{client: client, keyPrefix: keyPrefix}
}

// Acquire stores a fresh token under key only if absent, with ttl as a
// safety expiry
func (g *RedisGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, g.keyPrefix+key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire in-flight key: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release compares and deletes in one script so an expired holder cannot
// free a key someone else acquired since
func (g *RedisGuard) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, g.client, []string{g.keyPrefix + key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release in-flight key: %w", err)
	}
	return nil
}

// Close is a no-op; the shared client is closed by its owner
func (g *RedisGuard) Close() error {
	return nil
}

var _ shared.InFlightGuard = (*RedisGuard)(nil)
