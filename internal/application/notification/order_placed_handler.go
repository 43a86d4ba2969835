// Package notification reacts to order events: confirmation emails, low
// stock warnings and fulfillment logging.
package notification

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/catalog"
	"github.com/lumina/storefront/internal/domain/order"
	"github.com/lumina/storefront/internal/domain/settings"
	"github.com/lumina/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultLowStockThreshold is the inventory level at or below which a sale warns
const DefaultLowStockThreshold = 3

// Mailer delivers outbound email
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SettingsSource provides the current store settings
type SettingsSource interface {
	Current(ctx context.Context) (*settings.StoreSettings, error)
}

// StockReader looks up variants that ran low
type StockReader interface {
	LowStockVariants(ctx context.Context, ids []uuid.UUID, threshold int) ([]catalog.Variant, error)
}

var confirmationTemplate = template.Must(template.New("confirmation").Parse(
	`Hi {{.CustomerName}},

Thanks for shopping with {{.StoreName}}. We received your order {{.OrderID}}.
{{range .Lines}}
  {{.Quantity}} x {{.SKU}}{{end}}

Order total: {{.Total}}

We will email you again once your order ships.
{{if .SupportEmail}}Questions? Reply to {{.SupportEmail}}.
{{end}}`))

type confirmationData struct {
	CustomerName string
	StoreName    string
	SupportEmail string
	OrderID      string
	Total        string
	Lines        []order.PlacedLine
}

// OrderPlacedHandler sends order confirmations and warns about low stock
type OrderPlacedHandler struct {
	mailer    Mailer
	settings  SettingsSource
	stock     StockReader
	threshold int
	logger    *zap.Logger
}

// NewOrderPlacedHandler creates a new handler for order.placed events
func NewOrderPlacedHandler(mailer Mailer, source SettingsSource, stock StockReader, threshold int, logger *zap.Logger) *OrderPlacedHandler {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return &OrderPlacedHandler{
		mailer:    mailer,
		settings:  source,
		stock:     stock,
		threshold: threshold,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderPlacedHandler) EventTypes() []string {
	return []string{order.EventTypeOrderPlaced}
}

// Handle processes an OrderPlacedEvent
func (h *OrderPlacedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	placed, ok := event.(*order.OrderPlacedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			order.EventTypeOrderPlaced, event.EventType())
	}

	current, err := h.settings.Current(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	var errs []string
	if current.Notifications.OrderEmail {
		if err := h.sendConfirmation(ctx, placed, current); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if current.Notifications.LowStock {
		if err := h.warnLowStock(ctx, placed); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("order.placed notifications: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (h *OrderPlacedHandler) sendConfirmation(ctx context.Context, placed *order.OrderPlacedEvent, current *settings.StoreSettings) error {
	var body bytes.Buffer
	err := confirmationTemplate.Execute(&body, confirmationData{
		CustomerName: placed.CustomerName,
		StoreName:    current.StoreName,
		SupportEmail: current.SupportEmail,
		OrderID:      placed.OrderID.String(),
		Total:        placed.Total.StringFixed(2),
		Lines:        placed.Lines,
	})
	if err != nil {
		return fmt.Errorf("failed to render confirmation: %w", err)
	}

	subject := fmt.Sprintf("%s order confirmation", current.StoreName)
	if err := h.mailer.Send(ctx, placed.Email, subject, body.String()); err != nil {
		return fmt.Errorf("failed to send confirmation: %w", err)
	}
	return nil
}

func (h *OrderPlacedHandler) warnLowStock(ctx context.Context, placed *order.OrderPlacedEvent) error {
	if h.stock == nil || len(placed.Lines) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(placed.Lines))
	for _, line := range placed.Lines {
		ids = append(ids, line.VariantID)
	}

	low, err := h.stock.LowStockVariants(ctx, ids, h.threshold)
	if err != nil {
		return fmt.Errorf("failed to check stock levels: %w", err)
	}
	for _, v := range low {
		h.logger.Warn("Low stock after sale",
			zap.String("order_id", placed.OrderID.String()),
			zap.String("sku", v.SKU),
			zap.Int("inventory", v.Inventory),
			zap.Int("threshold", h.threshold),
		)
	}
	return nil
}
