package shared

import (
	"context"
	"time"
)

// InFlightGuard provides mutual exclusion for long-running operations keyed by
// an identifier (e.g. one supplier submission per order).
type InFlightGuard interface {
	// Acquire marks key as in flight for at most ttl. When ok is true the
	// caller holds the key and must pass token back to Release.
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)

	// Release frees key if token still identifies the holder. A holder whose
	// ttl ran out and whose key was taken by someone else releases nothing.
	Release(ctx context.Context, key, token string) error

	// Close releases resources held by the guard
	Close() error
}
