package printing

import (
	"context"
	"fmt"
	"time"

	orderapp "github.com/lumina/storefront/internal/application/order"
	"github.com/lumina/storefront/internal/domain/order"
	"go.uber.org/zap"
)

// TemplatePackingSlip names the packing slip template
const TemplatePackingSlip = "packing_slip"

const (
	contentTypePDF  = "application/pdf"
	contentTypeHTML = "text/html; charset=utf-8"
)

// PackingSlipData is the template model for a packing slip
type PackingSlipData struct {
	StoreName   string
	Order       *order.Order
	PrintedAt   time.Time
	ItemCount   int
	Fulfillment *order.Fulfillment
}

// PackingSlipPrinter implements orderapp.PackingSlipRenderer
type PackingSlipPrinter struct {
	engine   *TemplateEngine
	renderer PDFRenderer
	logger   *zap.Logger
	now      func() time.Time
}

var _ orderapp.PackingSlipRenderer = (*PackingSlipPrinter)(nil)

// NewPackingSlipPrinter creates a printer. A nil renderer produces HTML only.
func NewPackingSlipPrinter(engine *TemplateEngine, renderer PDFRenderer, logger *zap.Logger) *PackingSlipPrinter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PackingSlipPrinter{engine: engine, renderer: renderer, logger: logger, now: time.Now}
}

// RenderPackingSlip renders the slip as PDF, or as HTML when PDF output is
// disabled or the browser fails
func (p *PackingSlipPrinter) RenderPackingSlip(ctx context.Context, o *order.Order, storeName string) (*orderapp.Document, error) {
	html, err := p.engine.Render(TemplatePackingSlip, PackingSlipData{
		StoreName:   storeName,
		Order:       o,
		PrintedAt:   p.now(),
		ItemCount:   o.ItemCount(),
		Fulfillment: o.Fulfillment,
	})
	if err != nil {
		return nil, err
	}

	base := fmt.Sprintf("packing-slip-%s", shortID(o.ID))
	htmlDoc := &orderapp.Document{
		ContentType: contentTypeHTML,
		Filename:    base + ".html",
		Data:        []byte(html),
	}
	if p.renderer == nil {
		return htmlDoc, nil
	}

	result, err := p.renderer.Render(ctx, &RenderRequest{
		HTML:      html,
		Title:     "Packing slip " + shortID(o.ID),
		PaperSize: PaperSizeA4,
		Margins:   DefaultMargins(),
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.logger.Warn("PDF rendering failed, returning HTML packing slip",
			zap.String("order_id", o.ID.String()),
			zap.Error(err),
		)
		return htmlDoc, nil
	}

	return &orderapp.Document{
		ContentType: contentTypePDF,
		Filename:    base + ".pdf",
		Data:        result.PDFData,
	}, nil
}

const packingSlipTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Packing slip {{shortID .Order.ID}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; color: #111; }
h1 { font-size: 20px; margin: 0 0 4px; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th, td { text-align: left; padding: 6px 4px; border-bottom: 1px solid #ddd; }
td.qty, th.qty { text-align: right; }
.muted { color: #666; }
.grid { display: flex; justify-content: space-between; margin-top: 16px; }
</style>
</head>
<body>
<h1>{{.StoreName}}</h1>
<div class="muted">Packing slip &middot; Order #{{shortID .Order.ID}} &middot; {{formatDate .Order.CreatedAt}}</div>
<div class="grid">
  <div>
    <strong>Ship to</strong><br>
    {{title .Order.GuestName}}<br>
    {{.Order.ShippingAddress.Address}}<br>
    {{.Order.ShippingAddress.City}} {{.Order.ShippingAddress.Zip}}<br>
    <span class="muted">{{.Order.GuestEmail}}</span>
  </div>
  <div>
    <strong>Status</strong><br>
    {{status .Order.Status}}<br>
    {{if .Fulfillment}}{{.Fulfillment.Carrier}} {{.Fulfillment.TrackingNumber}}<br>
    <span class="muted">Est. {{.Fulfillment.EstimatedDelivery}}</span>{{end}}
  </div>
</div>
<table>
  <thead><tr><th>Item</th><th>Variant</th><th>SKU</th><th class="qty">Qty</th></tr></thead>
  <tbody>
  {{range .Order.Items}}<tr><td>{{.ProductTitle}}</td><td>{{.VariantName}}</td><td>{{.SKU}}</td><td class="qty">{{.Quantity}}</td></tr>
  {{end}}</tbody>
</table>
<p><strong>{{.ItemCount}}</strong> item(s). Order total {{formatMoney .Order.Total}}.</p>
<p class="muted">Printed {{formatDate .PrintedAt}}</p>
</body>
</html>`
