package persistence

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/catalog"
	"github.com/lumina/storefront/internal/domain/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a private in-memory SQLite database with the full schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, (&Database{DB: db}).AutoMigrate())
	return db
}

func newTestProduct(t *testing.T, title, category string, status catalog.ProductStatus, stock ...int) *catalog.Product {
	t.Helper()

	p, err := catalog.NewProduct(title, category, decimal.NewFromInt(50))
	require.NoError(t, err)
	require.NoError(t, p.SetStatus(status))
	p.SetImages([]string{"https://img.example/" + p.Slug + "-1.jpg", "https://img.example/" + p.Slug + "-2.jpg"})

	variants := make([]catalog.Variant, 0, len(stock))
	for i, qty := range stock {
		v, err := catalog.NewVariant(fmt.Sprintf("%s-%d", uuid.NewString()[:8], i), fmt.Sprintf("Option %d", i+1), decimal.NewFromInt(50), qty)
		require.NoError(t, err)
		variants = append(variants, *v)
	}
	require.NoError(t, p.ReplaceVariants(variants))
	return p
}

func newTestOrder(t *testing.T, variant catalog.Variant, qty int) *order.Order {
	t.Helper()

	o, err := order.NewOrder(
		order.Customer{Email: "jane@example.com", Name: "Jane Doe"},
		order.ShippingAddress{Address: "1 Main St", City: "Springfield", Zip: "12345"},
	)
	require.NoError(t, err)
	require.NoError(t, o.AddItem(variant.ID, "Smart Lamp", variant.Name, variant.SKU, qty, variant.Price))
	require.NoError(t, o.MarkPaid())
	return o
}
