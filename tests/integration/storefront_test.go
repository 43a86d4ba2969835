package integration

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	cartapp "github.com/lumina/storefront/internal/application/cart"
	checkoutapp "github.com/lumina/storefront/internal/application/checkout"
	"github.com/lumina/storefront/internal/application/fulfillment"
	orderapp "github.com/lumina/storefront/internal/application/order"
	"github.com/lumina/storefront/internal/domain/catalog"
	"github.com/lumina/storefront/internal/domain/order"
	"github.com/lumina/storefront/internal/domain/shared"
	"github.com/lumina/storefront/internal/infrastructure/cache"
	"github.com/lumina/storefront/internal/infrastructure/config"
	"github.com/lumina/storefront/internal/infrastructure/migration"
	"github.com/lumina/storefront/internal/infrastructure/payment"
	"github.com/lumina/storefront/internal/infrastructure/persistence"
	"github.com/lumina/storefront/internal/infrastructure/printing"
	"github.com/lumina/storefront/internal/infrastructure/supplier"
	"github.com/lumina/storefront/migrations"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

func seedProduct(t *testing.T, db *gorm.DB, stock map[string]int) map[string]catalog.Variant {
	t.Helper()

	p, err := catalog.NewProduct("Smart Lamp "+uuid.NewString()[:6], "Lighting", decimal.NewFromInt(49))
	require.NoError(t, err)
	require.NoError(t, p.SetStatus(catalog.ProductStatusActive))

	variants := make([]catalog.Variant, 0, len(stock))
	for sku, qty := range stock {
		v, err := catalog.NewVariant(sku, sku, decimal.NewFromInt(49), qty)
		require.NoError(t, err)
		variants = append(variants, *v)
	}
	require.NoError(t, p.ReplaceVariants(variants))
	require.NoError(t, persistence.NewGormProductRepository(db).Save(context.Background(), p))

	bySKU := make(map[string]catalog.Variant, len(p.Variants))
	for _, v := range p.Variants {
		bySKU[v.SKU] = v
	}
	return bySKU
}

func checkoutInput(email string, lines ...checkoutapp.LineInput) checkoutapp.ProcessCheckoutInput {
	return checkoutapp.ProcessCheckoutInput{
		Items:     lines,
		Email:     email,
		FirstName: "Jane",
		LastName:  "Doe",
		Address:   "1 Main St",
		City:      "Springfield",
		Zip:       "12345",
	}
}

func newCheckout(db *gorm.DB) *checkoutapp.CheckoutService {
	return checkoutapp.NewCheckoutService(
		persistence.NewGormProductRepository(db),
		persistence.NewGormTransactionScope(db),
		payment.NewMockGateway("", zap.NewNop()),
	)
}

func TestMigrations_UpDown(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	m, err := migration.NewFromFS(testDB.SqlDB, migrations.FS, zap.NewNop())
	require.NoError(t, err)

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	require.NoError(t, m.Down())
	var tables int64
	require.NoError(t, testDB.DB.Raw(`SELECT COUNT(*) FROM pg_tables WHERE schemaname = 'public' AND tablename = 'orders'`).Scan(&tables).Error)
	assert.Zero(t, tables)

	require.NoError(t, m.Up())
	require.NoError(t, testDB.DB.Raw(`SELECT COUNT(*) FROM pg_tables WHERE schemaname = 'public' AND tablename = 'orders'`).Scan(&tables).Error)
	assert.Equal(t, int64(1), tables)
}

func TestCheckout_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewSharedTestDB(t)
	ctx := context.Background()
	products := persistence.NewGormProductRepository(testDB.DB)
	orders := persistence.NewGormOrderRepository(testDB.DB)
	svc := newCheckout(testDB.DB)

	t.Run("places order and decrements stock", func(t *testing.T) {
		stock := seedProduct(t, testDB.DB, map[string]int{"LAMP-WHT": 5})

		result, err := svc.Process(ctx, checkoutInput("jane@example.com",
			checkoutapp.LineInput{VariantID: stock["LAMP-WHT"].ID, Quantity: 2}))
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(98).Equal(result.Total))
		assert.Equal(t, string(order.StatusPaid), result.Status)

		v, err := products.FindVariantByID(ctx, stock["LAMP-WHT"].ID)
		require.NoError(t, err)
		assert.Equal(t, 3, v.Inventory)

		placed, err := orders.FindByID(ctx, result.OrderID)
		require.NoError(t, err)
		require.Len(t, placed.Items, 1)
		assert.Equal(t, "LAMP-WHT", placed.Items[0].SKU)
	})

	t.Run("partial cart rolls back", func(t *testing.T) {
		stock := seedProduct(t, testDB.DB, map[string]int{"MUG-RED": 4, "MUG-BLU": 1})
		before, err := orders.Count(ctx, shared.Filter{})
		require.NoError(t, err)

		_, err = svc.Process(ctx, checkoutInput("jane@example.com",
			checkoutapp.LineInput{VariantID: stock["MUG-RED"].ID, Quantity: 2},
			checkoutapp.LineInput{VariantID: stock["MUG-BLU"].ID, Quantity: 3},
		))
		require.ErrorIs(t, err, shared.ErrOutOfStock)

		red, err := products.FindVariantByID(ctx, stock["MUG-RED"].ID)
		require.NoError(t, err)
		assert.Equal(t, 4, red.Inventory)

		after, err := orders.Count(ctx, shared.Filter{})
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("declined payment leaves stock untouched", func(t *testing.T) {
		stock := seedProduct(t, testDB.DB, map[string]int{"VASE-1": 2})

		_, err := svc.Process(ctx, checkoutInput("jane+error@example.com",
			checkoutapp.LineInput{VariantID: stock["VASE-1"].ID, Quantity: 1}))
		require.ErrorIs(t, err, shared.ErrPaymentDeclined)

		v, err := products.FindVariantByID(ctx, stock["VASE-1"].ID)
		require.NoError(t, err)
		assert.Equal(t, 2, v.Inventory)
	})
}

func TestCheckout_Postgres_NoOversell(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewSharedTestDB(t)
	ctx := context.Background()
	stock := seedProduct(t, testDB.DB, map[string]int{"LAMP-LAST": 3})
	svc := newCheckout(testDB.DB)

	const buyers = 10
	errs := make([]error, buyers)
	var wg sync.WaitGroup
	for i := range buyers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Process(ctx, checkoutInput(fmt.Sprintf("buyer%d@example.com", i),
				checkoutapp.LineInput{VariantID: stock["LAMP-LAST"].ID, Quantity: 1}))
		}(i)
	}
	wg.Wait()

	var won int
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		assert.ErrorIs(t, err, shared.ErrOutOfStock)
	}
	assert.Equal(t, 3, won)

	v, err := persistence.NewGormProductRepository(testDB.DB).FindVariantByID(ctx, stock["LAMP-LAST"].ID)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Inventory)
}

func TestOrderLifecycle_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewSharedTestDB(t)
	ctx := context.Background()
	db := testDB.DB
	orderRepo := persistence.NewGormOrderRepository(db)
	txScope := persistence.NewGormTransactionScope(db)

	engine, err := printing.NewTemplateEngine()
	require.NoError(t, err)
	orders := orderapp.NewOrderService(orderRepo, persistence.NewGormSettingsRepository(db), txScope,
		printing.NewPackingSlipPrinter(engine, nil, zap.NewNop()))

	client := supplier.NewSimulatedClient(config.SupplierConfig{Carrier: "YunExpress", EstimatedDelivery: "12-15 Days"})
	fulfill := fulfillment.NewService(orderRepo, txScope, client, cache.NewInMemoryGuard(), fulfillment.Config{})

	stock := seedProduct(t, db, map[string]int{"LAMP-A": 5, "LAMP-B": 5})
	checkout := newCheckout(db)
	first, err := checkout.Process(ctx, checkoutInput("a@example.com", checkoutapp.LineInput{VariantID: stock["LAMP-A"].ID, Quantity: 1}))
	require.NoError(t, err)
	second, err := checkout.Process(ctx, checkoutInput("b@example.com", checkoutapp.LineInput{VariantID: stock["LAMP-B"].ID, Quantity: 2}))
	require.NoError(t, err)

	t.Run("fulfill records tracking", func(t *testing.T) {
		result, err := fulfill.Fulfill(ctx, first.OrderID)
		require.NoError(t, err)
		assert.Equal(t, string(order.StatusFulfilled), result.Status)
		assert.Equal(t, "YunExpress", result.Carrier)
		assert.NotEmpty(t, result.TrackingNumber)

		detail, err := orders.Get(ctx, first.OrderID)
		require.NoError(t, err)
		require.NotNil(t, detail.Fulfillment)
		assert.Equal(t, result.TrackingNumber, detail.Fulfillment.TrackingNumber)

		_, err = fulfill.Fulfill(ctx, first.OrderID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("cancel refunds and restocks", func(t *testing.T) {
		detail, err := orders.Cancel(ctx, second.OrderID)
		require.NoError(t, err)
		assert.Equal(t, string(order.StatusCancelled), detail.Status)
		assert.Equal(t, string(order.PaymentStatusRefunded), detail.PaymentStatus)

		v, err := persistence.NewGormProductRepository(db).FindVariantByID(ctx, stock["LAMP-B"].ID)
		require.NoError(t, err)
		assert.Equal(t, 5, v.Inventory)
	})

	t.Run("claim status is exclusive", func(t *testing.T) {
		third, err := checkout.Process(ctx, checkoutInput("c@example.com", checkoutapp.LineInput{VariantID: stock["LAMP-A"].ID, Quantity: 1}))
		require.NoError(t, err)

		var claimed int
		var mu sync.Mutex
		var wg sync.WaitGroup
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := orderRepo.ClaimStatus(ctx, third.OrderID, order.StatusPaid, order.StatusProcessingAtSupplier)
				assert.NoError(t, err)
				if ok {
					mu.Lock()
					claimed++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, claimed)
	})
}

func TestRedisStores(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client := NewTestRedis(t)
	testDB := NewSharedTestDB(t)
	ctx := context.Background()

	t.Run("cart survives in redis", func(t *testing.T) {
		stock := seedProduct(t, testDB.DB, map[string]int{"CANDLE-1": 10})
		store := cache.NewRedisCartStoreWithClient(client, "test:cart:", time.Hour)
		svc := cartapp.NewCartService(store, persistence.NewGormProductRepository(testDB.DB), zap.NewNop())

		created, err := svc.AddItem(ctx, "", cartapp.AddItemRequest{VariantID: stock["CANDLE-1"].ID, Quantity: 2})
		require.NoError(t, err)
		require.NotEmpty(t, created.SessionID)

		loaded, err := svc.Get(ctx, created.SessionID)
		require.NoError(t, err)
		require.Len(t, loaded.Items, 1)
		assert.Equal(t, 2, loaded.Items[0].Quantity)
		assert.True(t, decimal.NewFromInt(98).Equal(loaded.Total))

		ttl, err := client.TTL(ctx, "test:cart:"+created.SessionID).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, 59*time.Minute)

		cleared, err := svc.Clear(ctx, created.SessionID)
		require.NoError(t, err)
		assert.Empty(t, cleared.Items)
	})

	t.Run("guard admits one holder", func(t *testing.T) {
		guard := cache.NewRedisGuardWithClient(client, "test:guard:")
		key := uuid.NewString()

		token, ok, err := guard.Acquire(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)

		_, ok, err = guard.Acquire(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, guard.Release(ctx, key, "stale-token"))
		_, ok, err = guard.Acquire(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.False(t, ok, "a foreign token does not release the key")

		require.NoError(t, guard.Release(ctx, key, token))
		_, ok, err = guard.Acquire(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("expired holder cannot release its successor", func(t *testing.T) {
		guard := cache.NewRedisGuardWithClient(client, "test:guard:")
		key := uuid.NewString()

		stale, ok, err := guard.Acquire(ctx, key, 50*time.Millisecond)
		require.NoError(t, err)
		require.True(t, ok)
		time.Sleep(100 * time.Millisecond)

		fresh, ok, err := guard.Acquire(ctx, key, time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, guard.Release(ctx, key, stale))
		held, err := client.Get(ctx, "test:guard:"+key).Result()
		require.NoError(t, err)
		assert.Equal(t, fresh, held)
	})
}
