package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/lumina/storefront/internal/domain/settings"
	"github.com/lumina/storefront/internal/domain/shared"
	"github.com/lumina/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSettingsRepository implements settings.Repository using GORM.
// The table holds at most one row.
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// Find returns the stored settings or shared.ErrNotFound
func (r *GormSettingsRepository) Find(ctx context.Context) (*settings.StoreSettings, error) {
	var model models.StoreSettingsModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save inserts or updates the singleton
func (r *GormSettingsRepository) Save(ctx context.Context, s *settings.StoreSettings) error {
	s.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(models.StoreSettingsModelFromDomain(s)).Error
}

// Ensure GormSettingsRepository implements settings.Repository
var _ settings.Repository = (*GormSettingsRepository)(nil)
