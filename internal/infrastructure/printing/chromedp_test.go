package printing

import (
	"context"
	"testing"
	"time"

	"github.com/lumina/storefront/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequest(t *testing.T) {
	var renderErr *RenderError

	err := validateRequest(nil)
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)

	err = validateRequest(&RenderRequest{HTML: "  "})
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)

	err = validateRequest(&RenderRequest{HTML: "<p>x</p>", PaperSize: "B9"})
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeInvalidPaperSize, renderErr.Code)

	req := &RenderRequest{HTML: "<p>x</p>"}
	require.NoError(t, validateRequest(req))
	assert.Equal(t, PaperSizeA4, req.PaperSize)
}

func TestBuildPrintParams(t *testing.T) {
	params := buildPrintParams(&RenderRequest{PaperSize: PaperSizeA4, Margins: DefaultMargins()})
	assert.InDelta(t, 8.27, params.paperWidth, 0.01)
	assert.InDelta(t, 11.69, params.paperHeight, 0.01)
	assert.InDelta(t, 0.47, params.marginTop, 0.01)
	assert.False(t, params.landscape)

	letter := buildPrintParams(&RenderRequest{PaperSize: PaperSizeLetter, Landscape: true})
	assert.InDelta(t, 8.5, letter.paperWidth, 0.01)
	assert.True(t, letter.landscape)
}

func TestCompleteHTML(t *testing.T) {
	full := "<!DOCTYPE html><html><body>x</body></html>"
	assert.Equal(t, full, completeHTML(&RenderRequest{HTML: full}))

	wrapped := completeHTML(&RenderRequest{HTML: "<p>x</p>", Title: "A & B"})
	assert.Contains(t, wrapped, "<title>A &amp; B</title>")
	assert.Contains(t, wrapped, "<body><p>x</p></body>")
}

func TestEstimatePageCount(t *testing.T) {
	assert.Equal(t, 1, estimatePageCount([]byte("garbage")))
	pdf := []byte("/Type /Pages /Type /Page /Type /Page /Type /Page")
	assert.Equal(t, 3, estimatePageCount(pdf))
}

func TestChromedpRenderer_RejectsInvalidRequestWithoutBrowser(t *testing.T) {
	r := NewChromedpRenderer(config.PrintingConfig{Timeout: time.Second}, nil)
	defer r.Close()

	_, err := r.Render(context.Background(), &RenderRequest{})
	assert.Error(t, err)
	assert.Equal(t, time.Second, r.timeout)
}
