package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByID finds a user by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// ExistsByEmail checks whether an account uses the email
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Count returns the number of users
	Count(ctx context.Context) (int64, error)

	// Create inserts a new user
	Create(ctx context.Context, user *User) error
}
