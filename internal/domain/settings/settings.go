package settings

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/shared"
)

// Default store profile values
const (
	DefaultStoreName    = "Lumina Store"
	DefaultSupportEmail = "support@lumina.store"
)

// Notifications holds admin notification toggles
type Notifications struct {
	OrderEmail bool `json:"orderEmail"`
	LowStock   bool `json:"lowStock"`
}

// Integration is a supplier connection
type Integration struct {
	Connected bool   `json:"connected"`
	APIKey    string `json:"apiKey"`
}

// Integrations holds the supported supplier connections
type Integrations struct {
	AliExpress     Integration `json:"aliExpress"`
	CJDropshipping Integration `json:"cjDropshipping"`
}

// StoreSettings is the store-wide configuration singleton
type StoreSettings struct {
	ID            uuid.UUID
	StoreName     string
	SupportEmail  string
	Notifications Notifications
	Integrations  Integrations
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Default returns the settings used when none were saved yet
func Default() *StoreSettings {
	now := time.Now()
	return &StoreSettings{
		ID:           uuid.New(),
		StoreName:    DefaultStoreName,
		SupportEmail: DefaultSupportEmail,
		Notifications: Notifications{
			OrderEmail: true,
			LowStock:   true,
		},
		Integrations: Integrations{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Apply overwrites the editable fields, keeping identity and creation time
func (s *StoreSettings) Apply(storeName, supportEmail string, n Notifications, i Integrations) error {
	storeName = strings.TrimSpace(storeName)
	if storeName == "" {
		return shared.NewValidationError("Store name is required")
	}
	supportEmail = strings.TrimSpace(supportEmail)
	if supportEmail != "" {
		if _, err := mail.ParseAddress(supportEmail); err != nil {
			return shared.NewValidationError("Invalid support email")
		}
	}
	i.AliExpress.APIKey = strings.TrimSpace(i.AliExpress.APIKey)
	i.CJDropshipping.APIKey = strings.TrimSpace(i.CJDropshipping.APIKey)

	s.StoreName = storeName
	s.SupportEmail = supportEmail
	s.Notifications = n
	s.Integrations = i
	s.UpdatedAt = time.Now()
	return nil
}

// MaskKey hides all but the last four characters of an API key
func MaskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
