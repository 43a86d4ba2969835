package settings

import (
	"time"

	"github.com/lumina/storefront/internal/domain/settings"
)

// IntegrationInput is a supplier connection as submitted by the admin
type IntegrationInput struct {
	Connected bool   `json:"connected"`
	APIKey    string `json:"apiKey" binding:"max=256"`
}

// IntegrationsInput holds the submitted supplier connections
type IntegrationsInput struct {
	AliExpress     IntegrationInput `json:"aliExpress"`
	CJDropshipping IntegrationInput `json:"cjDropshipping"`
}

// SaveSettingsRequest replaces the editable store settings
type SaveSettingsRequest struct {
	StoreName     string                 `json:"storeName" binding:"required,min=1,max=200"`
	SupportEmail  string                 `json:"supportEmail" binding:"omitempty,email,max=254"`
	Notifications settings.Notifications `json:"notifications"`
	Integrations  IntegrationsInput      `json:"integrations"`
}

// IntegrationResponse is a supplier connection with its key masked
type IntegrationResponse struct {
	Connected bool   `json:"connected"`
	APIKey    string `json:"apiKey"`
}

// SettingsResponse is the settings singleton as shown to admins
type SettingsResponse struct {
	StoreName     string                 `json:"storeName"`
	SupportEmail  string                 `json:"supportEmail"`
	Notifications settings.Notifications `json:"notifications"`
	Integrations  struct {
		AliExpress     IntegrationResponse `json:"aliExpress"`
		CJDropshipping IntegrationResponse `json:"cjDropshipping"`
	} `json:"integrations"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToSettingsResponse converts settings to the admin view, masking API keys
func ToSettingsResponse(s *settings.StoreSettings) *SettingsResponse {
	resp := &SettingsResponse{
		StoreName:     s.StoreName,
		SupportEmail:  s.SupportEmail,
		Notifications: s.Notifications,
		UpdatedAt:     s.UpdatedAt,
	}
	resp.Integrations.AliExpress = maskIntegration(s.Integrations.AliExpress)
	resp.Integrations.CJDropshipping = maskIntegration(s.Integrations.CJDropshipping)
	return resp
}

func maskIntegration(i settings.Integration) IntegrationResponse {
	return IntegrationResponse{Connected: i.Connected, APIKey: settings.MaskKey(i.APIKey)}
}
