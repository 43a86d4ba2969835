package cache

import (
	"context"
	"sync"
	"time"

	"github.com/lumina/storefront/internal/domain/cart"
)

type cartEntry struct {
	cart      cart.Cart
	expiresAt time.Time
}

// InMemoryCartStore keeps carts in a process-local map with an idle TTL
type InMemoryCartStore struct {
	mu        sync.RWMutex
	entries   map[string]cartEntry
	ttl       time.Duration
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryCartStore creates a store whose carts expire ttl after their last save
func NewInMemoryCartStore(ttl time.Duration) *InMemoryCartStore {
	s := &InMemoryCartStore{
		entries:  make(map[string]cartEntry),
		ttl:      ttl,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	s.wg.Add(1)
	go sweep(&s.wg, s.stopChan, 5*time.Minute, s.cleanup)

	return s
}

// Load returns a copy of the stored cart or an empty one
func (s *InMemoryCartStore) Load(_ context.Context, sessionID string) (*cart.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[sessionID]
	if !ok || !s.now().Before(e.expiresAt) {
		return cart.New(sessionID), nil
	}
	c := e.cart
	c.Lines = append([]cart.Line(nil), e.cart.Lines...)
	return &c, nil
}

// Save stores a copy of the cart
func (s *InMemoryCartStore) Save(_ context.Context, c *cart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *c
	stored.Lines = append([]cart.Line(nil), c.Lines...)
	s.entries[c.SessionID] = cartEntry{cart: stored, expiresAt: s.now().Add(s.ttl)}
	return nil
}

// Delete removes the cart
func (s *InMemoryCartStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

// Close stops the sweeper. Safe to call multiple times.
func (s *InMemoryCartStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// Size returns the number of stored carts
func (s *InMemoryCartStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *InMemoryCartStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}

var _ cart.Store = (*InMemoryCartStore)(nil)
