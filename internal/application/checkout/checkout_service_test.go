package checkout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/catalog"
	"github.com/lumina/storefront/internal/domain/order"
	"github.com/lumina/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	products  *MockProductRepository
	orders    *MockOrderRepository
	ledger    *mockLedger
	gateway   *mockGateway
	tx        *fakeTxScope
	publisher *recordingPublisher
	svc       *CheckoutService
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		products:  new(MockProductRepository),
		orders:    new(MockOrderRepository),
		ledger:    new(mockLedger),
		gateway:   new(mockGateway),
		publisher: &recordingPublisher{},
	}
	f.tx = &fakeTxScope{repos: &fakeTxRepos{orders: f.orders, products: f.products, inventory: f.ledger}}
	f.svc = NewCheckoutService(f.products, f.tx, f.gateway)
	f.svc.SetEventPublisher(f.publisher)
	return f
}

// stock registers an ACTIVE product with one variant on the product mock
func (f *checkoutFixture) stock(t *testing.T, sku string, price int64, inventory int) *catalog.Variant {
	t.Helper()
	p, err := catalog.NewProduct("Product "+sku, "Home", decimal.NewFromInt(price))
	require.NoError(t, err)
	require.NoError(t, p.SetStatus(catalog.ProductStatusActive))
	v, err := catalog.NewVariant(sku, "Default", decimal.NewFromInt(price), inventory)
	require.NoError(t, err)
	require.NoError(t, p.ReplaceVariants([]catalog.Variant{*v}))

	variant := p.Variants[0]
	f.products.On("FindVariantByID", mock.Anything, variant.ID).Return(&variant, nil)
	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	return &variant
}

func validInput(items ...LineInput) ProcessCheckoutInput {
	return ProcessCheckoutInput{
		Items:     items,
		Email:     "Jane@Example.com",
		FirstName: "Jane",
		LastName:  "Doe",
		Address:   "1 Main St",
		City:      "Springfield",
		Zip:       "12345",
	}
}

func TestCheckoutService_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("places paid order priced from the catalog", func(t *testing.T) {
		f := newCheckoutFixture()
		lamp := f.stock(t, "LAMP-1", 49, 5)
		mug := f.stock(t, "MUG-1", 18, 1)

		f.gateway.On("Authorize", mock.Anything, "jane@example.com", decimal.Zero).Return(nil)
		f.orders.On("Create", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)
		f.ledger.On("Decrement", mock.Anything, lamp.ID, 3).Return(true, nil)
		f.ledger.On("Decrement", mock.Anything, mug.ID, 1).Return(true, nil)

		userID := uuid.New()
		in := validInput(
			LineInput{VariantID: lamp.ID, Quantity: 1},
			LineInput{VariantID: mug.ID, Quantity: 1},
			LineInput{VariantID: lamp.ID, Quantity: 2},
		)
		in.UserID = &userID

		result, err := f.svc.Process(ctx, in)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, result.OrderID)
		assert.True(t, decimal.NewFromInt(165).Equal(result.Total), "3 x 49 + 18")
		assert.Equal(t, "PAID", result.Status)
		assert.Equal(t, "PAID", result.PaymentStatus)
		assert.Equal(t, 1, f.tx.calls)

		created := f.orders.Calls[0].Arguments.Get(1).(*order.Order)
		assert.Equal(t, &userID, created.UserID)
		assert.Equal(t, "Jane Doe", created.GuestName)
		require.Len(t, created.Items, 2)
		assert.Equal(t, 3, created.Items[0].Quantity)
		assert.Equal(t, "Product LAMP-1", created.Items[0].ProductTitle)

		require.Len(t, f.publisher.events, 1)
		assert.Equal(t, order.EventTypeOrderPlaced, f.publisher.events[0].EventType())
		f.ledger.AssertExpectations(t)
	})

	t.Run("declined payment touches nothing", func(t *testing.T) {
		f := newCheckoutFixture()
		f.gateway.On("Authorize", mock.Anything, "test+error@x.com", decimal.Zero).Return(shared.ErrPaymentDeclined)

		in := validInput(LineInput{VariantID: uuid.New(), Quantity: 1})
		in.Email = "test+error@x.com"

		_, err := f.svc.Process(ctx, in)
		assert.ErrorIs(t, err, shared.ErrPaymentDeclined)
		assert.Equal(t, 0, f.tx.calls)
		f.products.AssertNotCalled(t, "FindVariantByID", mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.events)
	})

	t.Run("insufficient stock names the sku", func(t *testing.T) {
		f := newCheckoutFixture()
		lamp := f.stock(t, "LAMP-1", 49, 1)
		f.gateway.On("Authorize", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		_, err := f.svc.Process(ctx, validInput(LineInput{VariantID: lamp.ID, Quantity: 2}))
		require.ErrorIs(t, err, shared.ErrOutOfStock)
		assert.Contains(t, err.Error(), "LAMP-1")
		f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.events)
	})

	t.Run("lost decrement race is out of stock", func(t *testing.T) {
		f := newCheckoutFixture()
		lamp := f.stock(t, "LAMP-1", 49, 1)
		f.gateway.On("Authorize", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.orders.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.ledger.On("Decrement", mock.Anything, lamp.ID, 1).Return(false, nil)

		_, err := f.svc.Process(ctx, validInput(LineInput{VariantID: lamp.ID, Quantity: 1}))
		assert.ErrorIs(t, err, shared.ErrOutOfStock)
		assert.Empty(t, f.publisher.events)
	})

	t.Run("unknown variant", func(t *testing.T) {
		f := newCheckoutFixture()
		missing := uuid.New()
		f.gateway.On("Authorize", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.products.On("FindVariantByID", mock.Anything, missing).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Process(ctx, validInput(LineInput{VariantID: missing, Quantity: 1}))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("variant of draft product is not sold", func(t *testing.T) {
		f := newCheckoutFixture()
		p, err := catalog.NewProduct("Hidden", "Home", decimal.NewFromInt(10))
		require.NoError(t, err)
		v, err := catalog.NewVariant("HIDDEN-1", "Default", decimal.NewFromInt(10), 10)
		require.NoError(t, err)
		require.NoError(t, p.ReplaceVariants([]catalog.Variant{*v}))
		variant := p.Variants[0]

		f.gateway.On("Authorize", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.products.On("FindVariantByID", mock.Anything, variant.ID).Return(&variant, nil)
		f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)

		_, err = f.svc.Process(ctx, validInput(LineInput{VariantID: variant.ID, Quantity: 1}))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	validation := []struct {
		name   string
		mutate func(*ProcessCheckoutInput)
	}{
		{"empty cart", func(in *ProcessCheckoutInput) { in.Items = nil }},
		{"zero quantity", func(in *ProcessCheckoutInput) { in.Items[0].Quantity = 0 }},
		{"missing email", func(in *ProcessCheckoutInput) { in.Email = "" }},
		{"missing name", func(in *ProcessCheckoutInput) { in.FirstName, in.LastName = " ", "" }},
		{"missing address", func(in *ProcessCheckoutInput) { in.Address = "" }},
		{"missing city", func(in *ProcessCheckoutInput) { in.City = "" }},
		{"missing zip", func(in *ProcessCheckoutInput) { in.Zip = " " }},
	}
	for _, tt := range validation {
		t.Run("validation/"+tt.name, func(t *testing.T) {
			f := newCheckoutFixture()
			in := validInput(LineInput{VariantID: uuid.New(), Quantity: 1})
			tt.mutate(&in)

			_, err := f.svc.Process(ctx, in)
			assert.ErrorIs(t, err, shared.ErrInvalidInput)
			f.gateway.AssertNotCalled(t, "Authorize", mock.Anything, mock.Anything, mock.Anything)
			assert.Equal(t, 0, f.tx.calls)
		})
	}
}

func TestCheckoutService_CreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("prices from variants", func(t *testing.T) {
		f := newCheckoutFixture()
		lamp := f.stock(t, "LAMP-1", 49, 0)
		f.gateway.On("CreateIntent", mock.Anything, mock.MatchedBy(func(d decimal.Decimal) bool {
			return d.Equal(decimal.NewFromInt(98))
		})).Return(&order.PaymentIntent{ClientSecret: "mock_pi_1700000000000", Amount: decimal.NewFromInt(98)}, nil)

		session, err := f.svc.CreateSession(ctx, CreateSessionInput{Items: []LineInput{{VariantID: lamp.ID, Quantity: 2}}})
		require.NoError(t, err)
		assert.Equal(t, "mock_pi_1700000000000", session.ClientSecret)
		assert.True(t, decimal.NewFromInt(98).Equal(session.Total))
		assert.Equal(t, 0, f.tx.calls)
	})

	t.Run("unknown variant", func(t *testing.T) {
		f := newCheckoutFixture()
		missing := uuid.New()
		f.products.On("FindVariantByID", mock.Anything, missing).Return(nil, shared.ErrNotFound)

		_, err := f.svc.CreateSession(ctx, CreateSessionInput{Items: []LineInput{{VariantID: missing, Quantity: 1}}})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("empty cart", func(t *testing.T) {
		f := newCheckoutFixture()
		_, err := f.svc.CreateSession(ctx, CreateSessionInput{})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestMergeLines(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	merged, err := mergeLines([]LineInput{{a, 1}, {b, 2}, {a, 4}})
	require.NoError(t, err)
	assert.Equal(t, []LineInput{{a, 5}, {b, 2}}, merged)

	_, err = mergeLines([]LineInput{{uuid.Nil, 1}})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
