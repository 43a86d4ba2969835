package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lumina/storefront/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunked hides the length so only the limited reader can stop the body
type chunked struct{ io.Reader }

func TestBodyLimit_Checkout(t *testing.T) {
	limit := int64(len(validCheckout) + 16)
	router := newBindingRouter(limit)
	router.GET("/api/v1/products", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse([]string{}))
	})

	oversized := strings.Replace(validCheckout, `"1 Main St"`, `"`+strings.Repeat("9", 512)+` Main St"`, 1)

	t.Run("checkout within the limit is processed", func(t *testing.T) {
		w, resp := postJSON(router, "/api/v1/checkout/process", validCheckout)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, resp.Success)
	})

	t.Run("declared length over the limit is refused before binding", func(t *testing.T) {
		w, resp := postJSON(router, "/api/v1/checkout/process", oversized)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeRequestTooLarge, resp.Error.Code)
		assert.Equal(t, "req-42", resp.Error.RequestID)
	})

	t.Run("chunked body is cut off while binding", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/process", chunked{strings.NewReader(oversized)})
		req.ContentLength = -1
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, dto.ErrCodeRequestTooLarge, resp.Error.Code)
		assert.Empty(t, resp.Error.Details)
	})

	t.Run("catalog reads have no body to limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
