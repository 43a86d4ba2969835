package models

import (
	"github.com/lumina/storefront/internal/domain/settings"
)

// StoreSettingsModel is the persistence model for the settings singleton
type StoreSettingsModel struct {
	BaseModel
	StoreName     string                 `gorm:"type:varchar(200);not null"`
	SupportEmail  string                 `gorm:"type:varchar(255);not null"`
	Notifications settings.Notifications `gorm:"type:jsonb;serializer:json;not null"`
	Integrations  settings.Integrations  `gorm:"type:jsonb;serializer:json;not null"`
}

// TableName returns the table name for GORM
func (StoreSettingsModel) TableName() string {
	return "store_settings"
}

// ToDomain converts the persistence model to domain StoreSettings
func (m *StoreSettingsModel) ToDomain() *settings.StoreSettings {
	return &settings.StoreSettings{
		ID:            m.ID,
		StoreName:     m.StoreName,
		SupportEmail:  m.SupportEmail,
		Notifications: m.Notifications,
		Integrations:  m.Integrations,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// StoreSettingsModelFromDomain creates a persistence model from domain StoreSettings
func StoreSettingsModelFromDomain(s *settings.StoreSettings) *StoreSettingsModel {
	return &StoreSettingsModel{
		BaseModel: BaseModel{
			ID:        s.ID,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		},
		StoreName:     s.StoreName,
		SupportEmail:  s.SupportEmail,
		Notifications: s.Notifications,
		Integrations:  s.Integrations,
	}
}
