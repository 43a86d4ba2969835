package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/catalog"
	"github.com/lumina/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Repository defines the interface for order persistence
type Repository interface {
	// FindByID loads an order with its items and fulfillment
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindAll returns orders newest first; Filters["status"] narrows by Status
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// FindByUser returns the orders placed by a signed-in customer
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)

	// Create inserts a new order with its items
	Create(ctx context.Context, order *Order) error

	// Save persists status, payment status and a newly attached fulfillment.
	// It fails with a conflict when the stored version differs from order.Version.
	Save(ctx context.Context, order *Order) error

	// ClaimStatus moves the order from one status to another only if it is
	// still in from, bumping the version. Returns false when another writer
	// got there first.
	ClaimStatus(ctx context.Context, id uuid.UUID, from, to Status) (bool, error)

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// SumTotal sums the totals of all orders
	SumTotal(ctx context.Context) (decimal.Decimal, error)
}

// InventoryLedger adjusts variant stock. Implementations must never let
// inventory go negative.
type InventoryLedger interface {
	// Decrement takes quantity units from the variant if enough remain.
	// Returns false, without changing anything, when stock is insufficient.
	Decrement(ctx context.Context, variantID uuid.UUID, quantity int) (bool, error)

	// Restock returns quantity units to the variant
	Restock(ctx context.Context, variantID uuid.UUID, quantity int) error
}

// TransactionalRepositories exposes repositories bound to a single transaction
type TransactionalRepositories interface {
	Orders() Repository
	Products() catalog.ProductRepository
	Inventory() InventoryLedger
}

// TransactionScope runs fn atomically. An error returned by fn rolls back
// every write made through the provided repositories.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}
