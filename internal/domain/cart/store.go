package cart

import "context"

// Store persists carts by session id. Entries expire after an
// implementation-defined idle period.
type Store interface {
	// Load returns the cart for the session, or an empty cart when none is stored
	Load(ctx context.Context, sessionID string) (*Cart, error)

	// Save stores the cart and refreshes its expiry
	Save(ctx context.Context, cart *Cart) error

	// Delete removes the cart for the session
	Delete(ctx context.Context, sessionID string) error

	// Close releases resources held by the store
	Close() error
}
