// Package payment provides the checkout payment gateway. Only a mock is
// implemented; it authorizes synchronously and never contacts a provider.
package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lumina/storefront/internal/domain/order"
	"github.com/lumina/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultDeclineTag makes the mock decline payers whose email local part ends with it
const DefaultDeclineTag = "+error"

// MockGateway implements order.PaymentGateway
type MockGateway struct {
	declineTag string
	now        func() time.Time
	logger     *zap.Logger
}

// NewMockGateway creates a mock gateway. An empty tag uses DefaultDeclineTag.
func NewMockGateway(declineTag string, logger *zap.Logger) *MockGateway {
	if declineTag == "" {
		declineTag = DefaultDeclineTag
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MockGateway{declineTag: declineTag, now: time.Now, logger: logger}
}

// Authorize declines when the email local part ends with the decline tag
func (g *MockGateway) Authorize(_ context.Context, email string, amount decimal.Decimal) error {
	if g.Declines(email) {
		g.logger.Info("Mock payment declined", zap.String("email", email), zap.String("amount", amount.StringFixed(2)))
		return shared.ErrPaymentDeclined
	}
	return nil
}

// Declines reports whether the payer would be declined
func (g *MockGateway) Declines(email string) bool {
	local := strings.ToLower(strings.TrimSpace(email))
	if at := strings.LastIndex(local, "@"); at >= 0 {
		local = local[:at]
	}
	return strings.HasSuffix(local, strings.ToLower(g.declineTag))
}

// CreateIntent returns a client secret of the form mock_pi_<unix-millis>
func (g *MockGateway) CreateIntent(_ context.Context, amount decimal.Decimal) (*order.PaymentIntent, error) {
	if amount.IsNegative() {
		return nil, shared.NewValidationError("Payment amount cannot be negative")
	}
	return &order.PaymentIntent{
		ClientSecret: fmt.Sprintf("mock_pi_%d", g.now().UnixMilli()),
		Amount:       amount,
	}, nil
}

var _ order.PaymentGateway = (*MockGateway)(nil)
