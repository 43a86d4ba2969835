package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("hashes password and normalizes email", func(t *testing.T) {
		u, err := NewUser(" Admin@Lumina.Store ", "Admin", "password", RoleAdmin)
		require.NoError(t, err)

		assert.Equal(t, "admin@lumina.store", u.Email)
		assert.NotEqual(t, "password", u.PasswordHash)
		assert.True(t, u.VerifyPassword("password"))
		assert.False(t, u.VerifyPassword("wrong"))
		assert.True(t, u.IsAdmin())
	})

	tests := []struct {
		name     string
		email    string
		userName string
		password string
		role     Role
		wantErr  string
	}{
		{"empty email", "", "A", "password", RoleCustomer, "Email is required"},
		{"bad email", "not-an-email", "A", "password", RoleCustomer, "Invalid email"},
		{"empty name", "a@b.co", " ", "password", RoleCustomer, "Name is required"},
		{"short password", "a@b.co", "A", "123", RoleCustomer, "at least 6"},
		{"bad role", "a@b.co", "A", "password", Role("ROOT"), "Invalid role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.email, tt.userName, tt.password, tt.role)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCanAccess(t *testing.T) {
	admin := &Principal{UserID: uuid.New(), Role: RoleAdmin}
	customer := &Principal{UserID: uuid.New(), Role: RoleCustomer}

	tests := []struct {
		name      string
		principal *Principal
		resource  string
		action    string
		want      bool
	}{
		{"admin reads stats", admin, ResourceStats, ActionRead, true},
		{"admin fulfills orders", admin, ResourceOrders, ActionFulfill, true},
		{"admin updates settings", admin, ResourceSettings, ActionUpdate, true},
		{"customer reads own account", customer, ResourceAccount, ActionRead, true},
		{"customer cannot read stats", customer, ResourceStats, ActionRead, false},
		{"customer cannot fulfill", customer, ResourceOrders, ActionFulfill, false},
		{"customer cannot create products", customer, ResourceProducts, ActionCreate, false},
		{"anonymous denied", nil, ResourceProducts, ActionRead, false},
		{"nil user id denied", &Principal{Role: RoleAdmin}, ResourceStats, ActionRead, false},
		{"unknown role denied", &Principal{UserID: uuid.New(), Role: "GUEST"}, ResourceAccount, ActionRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccess(tt.principal, tt.resource, tt.action))
		})
	}
}
