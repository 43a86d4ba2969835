package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/order"
	"github.com/lumina/storefront/internal/domain/shared"
	"github.com/lumina/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInventoryLedger adjusts variant stock with single conditional UPDATEs,
// so concurrent checkouts can never drive inventory below zero.
type GormInventoryLedger struct {
	db *gorm.DB
}

// NewGormInventoryLedger creates a new GormInventoryLedger
func NewGormInventoryLedger(db *gorm.DB) *GormInventoryLedger {
	return &GormInventoryLedger{db: db}
}

// Decrement takes quantity units if at least that many remain
func (l *GormInventoryLedger) Decrement(ctx context.Context, variantID uuid.UUID, quantity int) (bool, error) {
	if quantity < 1 {
		return false, shared.NewValidationError("Quantity must be at least 1")
	}
	result := l.db.WithContext(ctx).Model(&models.VariantModel{}).
		Where("id = ? AND inventory >= ?", variantID, quantity).
		Updates(map[string]interface{}{
			"inventory":  gorm.Expr("inventory - ?", quantity),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Restock returns quantity units to the variant. A variant removed since the
// sale is skipped.
func (l *GormInventoryLedger) Restock(ctx context.Context, variantID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return shared.NewValidationError("Quantity must be at least 1")
	}
	return l.db.WithContext(ctx).Model(&models.VariantModel{}).
		Where("id = ?", variantID).
		Updates(map[string]interface{}{
			"inventory":  gorm.Expr("inventory + ?", quantity),
			"updated_at": time.Now(),
		}).Error
}

// Ensure GormInventoryLedger implements order.InventoryLedger
var _ order.InventoryLedger = (*GormInventoryLedger)(nil)
