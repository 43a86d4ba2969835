package settings

import "context"

// Repository persists the settings singleton
type Repository interface {
	// Find returns the stored settings or shared.ErrNotFound
	Find(ctx context.Context) (*StoreSettings, error)

	// Save inserts or updates the singleton
	Save(ctx context.Context, s *StoreSettings) error
}
