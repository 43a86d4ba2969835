package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/shared"
)

// hold is the current holder of a key
type hold struct {
	token     string
	expiresAt time.Time
}

// InMemoryGuard implements shared.InFlightGuard with a process-local map.
// Suitable for single-instance deployments and tests.
type InMemoryGuard struct {
	mu        sync.Mutex
	held      map[string]hold
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryGuard creates a guard and starts its expiry sweeper
func NewInMemoryGuard() *InMemoryGuard {
	g := &InMemoryGuard{
		held:     make(map[string]hold),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	g.wg.Add(1)
	go sweep(&g.wg, g.stopChan, time.Minute, g.cleanup)

	return g
}

// Acquire marks key as held for ttl. An expired holder is replaced.
func (g *InMemoryGuard) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if h, ok := g.held[key]; ok && now.Before(h.expiresAt) {
		return "", false, nil
	}
	token := uuid.NewString()
	g.held[key] = hold{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

// Release frees key when token matches the current holder
func (g *InMemoryGuard) Release(_ context.Context, key, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if h, ok := g.held[key]; ok && h.token == token {
		delete(g.held, key)
	}
	return nil
}

// Close stops the sweeper. Safe to call multiple times.
func (g *InMemoryGuard) Close() error {
	g.closeOnce.Do(func() {
		close(g.stopChan)
		g.wg.Wait()
	})
	return nil
}

// Size returns the number of held keys, expired ones included until swept
func (g *InMemoryGuard) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.held)
}

func (g *InMemoryGuard) cleanup() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for key, h := range g.held {
		if !now.Before(h.expiresAt) {
			delete(g.held, key)
		}
	}
}

// sweep runs fn every interval until stop is closed
func sweep(wg *sync.WaitGroup, stop <-chan struct{}, interval time.Duration, fn func()) {
	defer wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			fn()
		}
	}
}

var _ shared.InFlightGuard = (*InMemoryGuard)(nil)
