package persistence

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/catalog"
	"github.com/lumina/storefront/internal/domain/order"
	"github.com/lumina/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProduct(t *testing.T, repo *GormProductRepository, stock int) *catalog.Product {
	t.Helper()
	p := newTestProduct(t, "Smart Lamp "+uuid.NewString()[:6], "Home", catalog.ProductStatusActive, stock)
	require.NoError(t, repo.Save(context.Background(), p))
	return p
}

func TestGormOrderRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	products := NewGormProductRepository(db)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	p := seedProduct(t, products, 10)
	o := newTestOrder(t, p.Variants[0], 2)
	userID := uuid.New()
	o.UserID = &userID
	require.NoError(t, repo.Create(ctx, o))

	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, found.Status)
	assert.Equal(t, order.PaymentStatusPaid, found.PaymentStatus)
	assert.True(t, found.Total.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "Springfield", found.ShippingAddress.City)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 2, found.Items[0].Quantity)
	assert.Nil(t, found.Fulfillment)

	mine, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_FilterCountAndSum(t *testing.T) {
	db := setupTestDB(t)
	products := NewGormProductRepository(db)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	total, err := repo.SumTotal(ctx)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	p := seedProduct(t, products, 10)
	paid := newTestOrder(t, p.Variants[0], 1)
	cancelled := newTestOrder(t, p.Variants[0], 2)
	require.NoError(t, cancelled.Cancel())
	require.NoError(t, repo.Create(ctx, paid))
	require.NoError(t, repo.Create(ctx, cancelled))

	all, err := repo.FindAll(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	f := shared.DefaultFilter()
	f.Filters["status"] = string(order.StatusCancelled)
	filtered, err := repo.FindAll(ctx, f)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, cancelled.ID, filtered[0].ID)

	n, err := repo.Count(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	total, err = repo.SumTotal(ctx)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(150)), "got %s", total)
}

func TestGormOrderRepository_ClaimAndSave(t *testing.T) {
	db := setupTestDB(t)
	products := NewGormProductRepository(db)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	p := seedProduct(t, products, 10)
	o := newTestOrder(t, p.Variants[0], 1)
	require.NoError(t, repo.Create(ctx, o))

	t.Run("only one claimant wins", func(t *testing.T) {
		ok, err := repo.ClaimStatus(ctx, o.ID, order.StatusPaid, order.StatusProcessingAtSupplier)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.ClaimStatus(ctx, o.ID, order.StatusPaid, order.StatusProcessingAtSupplier)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		stale := *o
		err := repo.Save(ctx, &stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("save persists fulfillment and bumps version", func(t *testing.T) {
		current, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		require.Equal(t, order.StatusProcessingAtSupplier, current.Status)

		f, err := order.NewFulfillment("TRKABCDEFGH", "YunExpress", "12-15 Days")
		require.NoError(t, err)
		require.NoError(t, current.CompleteFulfillment(f))

		before := current.Version
		require.NoError(t, repo.Save(ctx, current))
		assert.Equal(t, before+1, current.Version)

		reloaded, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusFulfilled, reloaded.Status)
		assert.Equal(t, current.Version, reloaded.Version)
		require.NotNil(t, reloaded.Fulfillment)
		assert.Equal(t, "TRKABCDEFGH", reloaded.Fulfillment.TrackingNumber)
		assert.Equal(t, "https://track.mock.com/TRKABCDEFGH", reloaded.Fulfillment.TrackingURL)
	})
}

func TestGormInventoryLedger(t *testing.T) {
	db := setupTestDB(t)
	products := NewGormProductRepository(db)
	ledger := NewGormInventoryLedger(db)
	ctx := context.Background()

	p := seedProduct(t, products, 3)
	variantID := p.Variants[0].ID

	t.Run("decrements when enough stock", func(t *testing.T) {
		ok, err := ledger.Decrement(ctx, variantID, 2)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("refuses to go negative", func(t *testing.T) {
		ok, err := ledger.Decrement(ctx, variantID, 2)
		require.NoError(t, err)
		assert.False(t, ok)

		v, err := products.FindVariantByID(ctx, variantID)
		require.NoError(t, err)
		assert.Equal(t, 1, v.Inventory)
	})

	t.Run("restocks", func(t *testing.T) {
		require.NoError(t, ledger.Restock(ctx, variantID, 4))
		v, err := products.FindVariantByID(ctx, variantID)
		require.NoError(t, err)
		assert.Equal(t, 5, v.Inventory)
	})

	t.Run("rejects non-positive quantities", func(t *testing.T) {
		_, err := ledger.Decrement(ctx, variantID, 0)
		assert.Error(t, err)
		assert.Error(t, ledger.Restock(ctx, variantID, -1))
	})
}

func TestGormInventoryLedger_ConcurrentDecrements(t *testing.T) {
	db := setupTestDB(t)
	products := NewGormProductRepository(db)
	ledger := NewGormInventoryLedger(db)
	ctx := context.Background()

	p := seedProduct(t, products, 5)
	variantID := p.Variants[0].ID

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := ledger.Decrement(ctx, variantID, 1)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, successes)
	v, err := products.FindVariantByID(ctx, variantID)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Inventory)
}

func TestGormTransactionScope(t *testing.T) {
	db := setupTestDB(t)
	products := NewGormProductRepository(db)
	orders := NewGormOrderRepository(db)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()

	p := seedProduct(t, products, 1)
	variant := p.Variants[0]

	t.Run("rolls back every write on error", func(t *testing.T) {
		o := newTestOrder(t, variant, 1)
		err := scope.Execute(ctx, func(repos order.TransactionalRepositories) error {
			ok, err := repos.Inventory().Decrement(ctx, variant.ID, 1)
			require.NoError(t, err)
			require.True(t, ok)
			require.NoError(t, repos.Orders().Create(ctx, o))
			return shared.NewDomainError(shared.CodeOutOfStock, "second line failed")
		})
		require.Error(t, err)

		v, err := products.FindVariantByID(ctx, variant.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, v.Inventory)

		_, err = orders.FindByID(ctx, o.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("commits on success", func(t *testing.T) {
		o := newTestOrder(t, variant, 1)
		err := scope.Execute(ctx, func(repos order.TransactionalRepositories) error {
			if _, err := repos.Products().FindVariantByID(ctx, variant.ID); err != nil {
				return err
			}
			if _, err := repos.Inventory().Decrement(ctx, variant.ID, 1); err != nil {
				return err
			}
			return repos.Orders().Create(ctx, o)
		})
		require.NoError(t, err)

		v, err := products.FindVariantByID(ctx, variant.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, v.Inventory)

		_, err = orders.FindByID(ctx, o.ID)
		assert.NoError(t, err)
	})
}
