package fulfillment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/catalog"
	"github.com/lumina/storefront/internal/domain/order"
	"github.com/lumina/storefront/internal/domain/shared"
	"github.com/lumina/storefront/internal/infrastructure/cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) ClaimStatus(ctx context.Context, id uuid.UUID, from, to order.Status) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) SumTotal(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type mockSupplier struct {
	mock.Mock
}

func (m *mockSupplier) SubmitOrder(ctx context.Context, o order.SupplierOrder) (*order.SupplierReceipt, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.SupplierReceipt), args.Error(1)
}

func (m *mockSupplier) SyncInventory(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type fakeTxRepos struct {
	orders order.Repository
}

func (r *fakeTxRepos) Orders() order.Repository            { return r.orders }
func (r *fakeTxRepos) Products() catalog.ProductRepository { return nil }
func (r *fakeTxRepos) Inventory() order.InventoryLedger    { return nil }

type fakeTxScope struct {
	repos *fakeTxRepos
	calls int
}

func (s *fakeTxScope) Execute(_ context.Context, fn func(order.TransactionalRepositories) error) error {
	s.calls++
	return fn(s.repos)
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

type fixture struct {
	orders    *MockOrderRepository
	supplier  *mockSupplier
	guard     *cache.InMemoryGuard
	tx        *fakeTxScope
	publisher *recordingPublisher
	svc       *Service
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	f := &fixture{
		orders:    new(MockOrderRepository),
		supplier:  new(mockSupplier),
		guard:     cache.NewInMemoryGuard(),
		publisher: &recordingPublisher{},
	}
	t.Cleanup(func() { _ = f.guard.Close() })
	f.tx = &fakeTxScope{repos: &fakeTxRepos{orders: f.orders}}
	f.svc = NewService(f.orders, f.tx, f.supplier, f.guard, cfg)
	f.svc.SetEventPublisher(f.publisher)
	return f
}

func newPaidOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(
		order.Customer{Email: "jane@example.com", Name: "Jane Doe"},
		order.ShippingAddress{Address: "1 Main St", City: "Springfield", Zip: "12345"},
	)
	require.NoError(t, err)
	require.NoError(t, o.AddItem(uuid.New(), "Smart Lamp", "White", "LAMP-1", 2, decimal.NewFromInt(49)))
	require.NoError(t, o.MarkPaid())
	o.ClearDomainEvents()
	return o
}

// expectClaim wires the load, claim, reload sequence for a PAID order
func (f *fixture) expectClaim(t *testing.T) *order.Order {
	t.Helper()
	paid := newPaidOrder(t)
	claimed := *paid
	claimed.Status = order.StatusProcessingAtSupplier
	claimed.Version = paid.Version + 1

	f.orders.On("FindByID", mock.Anything, paid.ID).Return(paid, nil).Once()
	f.orders.On("ClaimStatus", mock.Anything, paid.ID, order.StatusPaid, order.StatusProcessingAtSupplier).Return(true, nil).Once()
	f.orders.On("FindByID", mock.Anything, paid.ID).Return(&claimed, nil).Once()
	return &claimed
}

func TestService_Fulfill(t *testing.T) {
	ctx := context.Background()

	t.Run("supplier accepts", func(t *testing.T) {
		f := newFixture(t, Config{})
		o := f.expectClaim(t)
		f.supplier.On("SubmitOrder", mock.Anything, mock.MatchedBy(func(so order.SupplierOrder) bool {
			return so.OrderID == o.ID && len(so.Lines) == 1 && so.Lines[0].SKU == "LAMP-1"
		})).Return(&order.SupplierReceipt{TrackingNumber: "TRKAB12CD34", Carrier: "YunExpress", EstimatedDelivery: "12-15 Days"}, nil)
		f.orders.On("Save", mock.Anything, o).Return(nil)

		result, err := f.svc.Fulfill(ctx, o.ID)
		require.NoError(t, err)

		assert.Equal(t, "FULFILLED", result.Status)
		assert.Equal(t, "TRKAB12CD34", result.TrackingNumber)
		assert.Equal(t, "https://track.mock.com/TRKAB12CD34", result.TrackingURL)
		assert.Equal(t, "YunExpress", result.Carrier)
		assert.Equal(t, "12-15 Days", result.EstimatedDelivery)
		assert.Equal(t, 1, f.tx.calls)

		require.Len(t, f.publisher.events, 1)
		assert.Equal(t, order.EventTypeOrderFulfilled, f.publisher.events[0].EventType())

		_, acquired, err := f.guard.Acquire(ctx, "fulfillment:"+o.ID.String(), time.Minute)
		require.NoError(t, err)
		assert.True(t, acquired, "guard is released after the attempt")
	})

	t.Run("supplier rejects and order returns to paid", func(t *testing.T) {
		f := newFixture(t, Config{})
		o := f.expectClaim(t)
		f.supplier.On("SubmitOrder", mock.Anything, mock.Anything).
			Return(nil, errors.New("Supplier API Time-out / Out of Stock"))
		f.orders.On("Save", mock.Anything, mock.MatchedBy(func(saved *order.Order) bool {
			return saved.Status == order.StatusPaid && saved.Fulfillment == nil
		})).Return(nil)

		_, err := f.svc.Fulfill(ctx, o.ID)
		require.ErrorIs(t, err, shared.ErrIntegration)
		assert.Equal(t, "Supplier API Time-out / Out of Stock", err.Error())
		assert.Equal(t, 0, f.tx.calls)

		require.Len(t, f.publisher.events, 1)
		failed, ok := f.publisher.events[0].(*order.FulfillmentFailedEvent)
		require.True(t, ok)
		assert.False(t, failed.Escalated)
		f.orders.AssertExpectations(t)
	})

	t.Run("supplier rejects with escalation", func(t *testing.T) {
		f := newFixture(t, Config{EscalateOnFailure: true})
		o := f.expectClaim(t)
		f.supplier.On("SubmitOrder", mock.Anything, mock.Anything).Return(nil, errors.New("rejected"))
		f.orders.On("Save", mock.Anything, mock.MatchedBy(func(saved *order.Order) bool {
			return saved.Status == order.StatusRequiresAttention
		})).Return(nil)

		_, err := f.svc.Fulfill(ctx, o.ID)
		assert.ErrorIs(t, err, shared.ErrIntegration)
		f.orders.AssertExpectations(t)
	})

	t.Run("supplier timeout counts as failure", func(t *testing.T) {
		f := newFixture(t, Config{SupplierTimeout: 20 * time.Millisecond})
		o := f.expectClaim(t)
		f.supplier.On("SubmitOrder", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				<-args.Get(0).(context.Context).Done()
			}).
			Return(nil, context.DeadlineExceeded)
		f.orders.On("Save", mock.Anything, mock.MatchedBy(func(saved *order.Order) bool {
			return saved.Status == order.StatusPaid
		})).Return(nil)

		_, err := f.svc.Fulfill(ctx, o.ID)
		require.ErrorIs(t, err, shared.ErrIntegration)
		assert.Contains(t, err.Error(), "did not respond")
	})

	t.Run("recording failure escalates accepted order", func(t *testing.T) {
		f := newFixture(t, Config{})
		o := f.expectClaim(t)
		reloaded := *o
		reloaded.Fulfillment = nil
		f.supplier.On("SubmitOrder", mock.Anything, mock.Anything).
			Return(&order.SupplierReceipt{TrackingNumber: "TRK00000001", Carrier: "YunExpress"}, nil)
		f.orders.On("Save", mock.Anything, o).Return(errors.New("disk full")).Once()
		f.orders.On("FindByID", mock.Anything, o.ID).Return(&reloaded, nil).Once()
		f.orders.On("Save", mock.Anything, &reloaded).Return(nil).Once()

		_, err := f.svc.Fulfill(ctx, o.ID)
		require.Error(t, err)
		assert.Equal(t, order.StatusRequiresAttention, reloaded.Status)
		f.orders.AssertExpectations(t)
	})

	t.Run("failure record falls back to status write", func(t *testing.T) {
		f := newFixture(t, Config{})
		o := f.expectClaim(t)
		f.supplier.On("SubmitOrder", mock.Anything, mock.Anything).Return(nil, errors.New("rejected"))
		f.orders.On("Save", mock.Anything, o).Return(errors.New("connection reset")).Once()
		f.orders.On("ClaimStatus", mock.Anything, o.ID, order.StatusProcessingAtSupplier, order.StatusPaid).Return(true, nil).Once()

		_, err := f.svc.Fulfill(ctx, o.ID)
		require.ErrorIs(t, err, shared.ErrIntegration)
		assert.Equal(t, order.StatusPaid, o.Status)
		f.orders.AssertExpectations(t)
	})

	t.Run("failure record and fallback both fail", func(t *testing.T) {
		f := newFixture(t, Config{EscalateOnFailure: true})
		o := f.expectClaim(t)
		f.supplier.On("SubmitOrder", mock.Anything, mock.Anything).Return(nil, errors.New("rejected"))
		f.orders.On("Save", mock.Anything, o).Return(errors.New("connection reset")).Once()
		f.orders.On("ClaimStatus", mock.Anything, o.ID, order.StatusProcessingAtSupplier, order.StatusRequiresAttention).
			Return(false, errors.New("connection reset")).Once()

		_, err := f.svc.Fulfill(ctx, o.ID)
		require.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrIntegration)
		assert.Contains(t, err.Error(), "failed to record fulfillment failure")
		assert.Empty(t, f.publisher.events)
		f.orders.AssertExpectations(t)
	})

	t.Run("in flight elsewhere", func(t *testing.T) {
		f := newFixture(t, Config{})
		id := uuid.New()
		_, acquired, err := f.guard.Acquire(ctx, "fulfillment:"+id.String(), time.Minute)
		require.NoError(t, err)
		require.True(t, acquired)

		_, err = f.svc.Fulfill(ctx, id)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		f.orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("order not found", func(t *testing.T) {
		f := newFixture(t, Config{})
		id := uuid.New()
		f.orders.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Fulfill(ctx, id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("only paid orders are fulfilled", func(t *testing.T) {
		f := newFixture(t, Config{})
		o := newPaidOrder(t)
		require.NoError(t, o.Cancel())
		f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := f.svc.Fulfill(ctx, o.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		f.orders.AssertNotCalled(t, "ClaimStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.supplier.AssertNotCalled(t, "SubmitOrder", mock.Anything, mock.Anything)
	})

	t.Run("lost claim", func(t *testing.T) {
		f := newFixture(t, Config{})
		o := newPaidOrder(t)
		f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.orders.On("ClaimStatus", mock.Anything, o.ID, order.StatusPaid, order.StatusProcessingAtSupplier).Return(false, nil)

		_, err := f.svc.Fulfill(ctx, o.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		f.supplier.AssertNotCalled(t, "SubmitOrder", mock.Anything, mock.Anything)
	})
}
