package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	s := Default()
	assert.Equal(t, "Lumina Store", s.StoreName)
	assert.True(t, s.Notifications.OrderEmail)
	assert.True(t, s.Notifications.LowStock)
	assert.False(t, s.Integrations.AliExpress.Connected)
	assert.Empty(t, s.Integrations.CJDropshipping.APIKey)
}

func TestStoreSettings_Apply(t *testing.T) {
	s := Default()
	id := s.ID

	err := s.Apply(" My Shop ", "help@shop.io", Notifications{LowStock: true},
		Integrations{AliExpress: Integration{Connected: true, APIKey: " key-1234 "}})
	require.NoError(t, err)

	assert.Equal(t, id, s.ID)
	assert.Equal(t, "My Shop", s.StoreName)
	assert.False(t, s.Notifications.OrderEmail)
	assert.Equal(t, "key-1234", s.Integrations.AliExpress.APIKey)

	assert.Error(t, s.Apply("", "", Notifications{}, Integrations{}))
	assert.Error(t, s.Apply("Shop", "not an email", Notifications{}, Integrations{}))
	assert.Equal(t, "My Shop", s.StoreName)
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "", MaskKey(""))
	assert.Equal(t, "***", MaskKey("abc"))
	assert.Equal(t, "****5678", MaskKey("12345678"))
}
