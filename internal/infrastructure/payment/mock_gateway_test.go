package payment

import (
	"context"
	"testing"
	"time"

	"github.com/lumina/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGateway_Authorize(t *testing.T) {
	g := NewMockGateway("", nil)
	ctx := context.Background()
	amount := decimal.NewFromInt(42)

	tests := []struct {
		email    string
		declined bool
	}{
		{"buyer@example.com", false},
		{"test+error@x.com", true},
		{"TEST+ERROR@X.COM", true},
		{"error@x.com", false},
		{"a+error.b@x.com", false},
		{"terror@x.com", false},
		{"shopper@error.example", false},
		{"+error@x.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := g.Authorize(ctx, tt.email, amount)
			if tt.declined {
				assert.ErrorIs(t, err, shared.ErrPaymentDeclined)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMockGateway_CustomTag(t *testing.T) {
	g := NewMockGateway("+decline", nil)
	assert.True(t, g.Declines("x+decline@y.z"))
	assert.False(t, g.Declines("x+error@y.z"))
}

func TestMockGateway_CreateIntent(t *testing.T) {
	g := NewMockGateway("", nil)
	g.now = func() time.Time { return time.UnixMilli(1700000000123) }

	intent, err := g.CreateIntent(context.Background(), decimal.RequireFromString("19.99"))
	require.NoError(t, err)
	assert.Equal(t, "mock_pi_1700000000123", intent.ClientSecret)
	assert.Equal(t, "19.99", intent.Amount.StringFixed(2))

	_, err = g.CreateIntent(context.Background(), decimal.NewFromInt(-1))
	assert.Error(t, err)
}
