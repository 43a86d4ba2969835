// Package dashboard aggregates the admin overview figures.
package dashboard

import (
	"context"
	"fmt"

	"github.com/lumina/storefront/internal/domain/catalog"
	"github.com/lumina/storefront/internal/domain/shared"
	"github.com/lumina/storefront/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
)

// conversionRatePercent is a fixed placeholder until storefront visits are tracked
const conversionRatePercent = "2.4"

// OrderTotals is the slice of the order repository the dashboard reads
type OrderTotals interface {
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	SumTotal(ctx context.Context) (decimal.Decimal, error)
}

// ProductCounts is the slice of the product repository the dashboard reads
type ProductCounts interface {
	CountByStatus(ctx context.Context, status catalog.ProductStatus) (int64, error)
}

// Stats is the admin overview
type Stats struct {
	Revenue        decimal.Decimal `json:"revenue"`
	Orders         int64           `json:"orders"`
	ActiveProducts int64           `json:"activeProducts"`
	ConversionRate decimal.Decimal `json:"conversionRate"`
}

// DashboardService computes overview statistics on every call
type DashboardService struct {
	orders   OrderTotals
	products ProductCounts
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(orders OrderTotals, products ProductCounts) *DashboardService {
	return &DashboardService{orders: orders, products: products}
}

// Stats sums order totals and counts orders and ACTIVE products
func (s *DashboardService) Stats(ctx context.Context) (*Stats, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "dashboard", "stats")
	defer span.End()

	revenue, err := s.orders.SumTotal(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	orders, err := s.orders.Count(ctx, shared.Filter{})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	active, err := s.products.CountByStatus(ctx, catalog.ProductStatusActive)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	telemetry.SetOK(span)
	return &Stats{
		Revenue:        revenue,
		Orders:         orders,
		ActiveProducts: active,
		ConversionRate: decimal.RequireFromString(conversionRatePercent),
	}, nil
}
