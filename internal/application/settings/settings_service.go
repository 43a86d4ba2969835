package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/lumina/storefront/internal/domain/settings"
	"github.com/lumina/storefront/internal/domain/shared"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// SettingsService reads and updates the store settings singleton
type SettingsService struct {
	repo   settings.Repository
	logger *zap.Logger
	group  singleflight.Group
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(repo settings.Repository, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, logger: logger}
}

// Get returns the settings with API keys masked
func (s *SettingsService) Get(ctx context.Context) (*SettingsResponse, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	return ToSettingsResponse(current), nil
}

// Current returns the stored settings, saving the defaults on first use
func (s *SettingsService) Current(ctx context.Context) (*settings.StoreSettings, error) {
	v, err, _ := s.group.Do("settings", func() (interface{}, error) {
		current, err := s.repo.Find(ctx)
		if err == nil {
			return current, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}

		defaults := settings.Default()
		if err := s.repo.Save(ctx, defaults); err != nil {
			return nil, fmt.Errorf("failed to save default settings: %w", err)
		}
		s.logger.Info("Default store settings created")
		return defaults, nil
	})
	if err != nil {
		return nil, err
	}
	// Callers sharing a flight get their own copy.
	copied := *v.(*settings.StoreSettings)
	return &copied, nil
}

// Save replaces the editable settings. A submitted API key equal to the masked
// stored key leaves the stored key unchanged, so the admin form can post back
// what it was shown.
func (s *SettingsService) Save(ctx context.Context, req SaveSettingsRequest) (*SettingsResponse, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	integrations := settings.Integrations{
		AliExpress:     mergeKey(current.Integrations.AliExpress, req.Integrations.AliExpress),
		CJDropshipping: mergeKey(current.Integrations.CJDropshipping, req.Integrations.CJDropshipping),
	}
	if err := current.Apply(req.StoreName, req.SupportEmail, req.Notifications, integrations); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, current); err != nil {
		s.logger.Error("Failed to save settings", zap.Error(err))
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	s.logger.Info("Store settings updated",
		zap.String("store_name", current.StoreName),
		zap.Bool("order_email", current.Notifications.OrderEmail),
		zap.Bool("low_stock", current.Notifications.LowStock))

	return ToSettingsResponse(current), nil
}

func mergeKey(stored settings.Integration, in IntegrationInput) settings.Integration {
	key := in.APIKey
	if stored.APIKey != "" && key == settings.MaskKey(stored.APIKey) {
		key = stored.APIKey
	}
	return settings.Integration{Connected: in.Connected, APIKey: key}
}
