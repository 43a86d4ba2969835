package router

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	ping := NewDomainGroup("ping", "/ping")
	ping.GET("", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	echo := NewDomainGroup("echo", "/echo")
	echo.POST("/:word", func(c *gin.Context) { c.String(http.StatusOK, c.Param("word")) })

	r.Register(ping).Register(echo)
	assert.Len(t, r.registrars, 2)
	r.Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/echo/lamp", nil))
	assert.Equal(t, "lamp", w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDomainGroup_MethodsAndMiddleware(t *testing.T) {
	engine := gin.New()
	var trail []string
	mark := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) { trail = append(trail, name) }
	}
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	group := NewDomainGroup("cart", "/cart").Use(mark("group"), nil)
	group.GET("", ok).POST("", ok).PATCH("/:id", ok).DELETE("/:id", ok)
	sub := group.Group("cart-items", "/items").Use(mark("sub"))
	sub.GET("", mark("route"), ok)

	assert.Equal(t, "cart", group.Name())
	assert.Equal(t, "/cart", group.Prefix())

	NewRouter(engine).Register(group).Setup()

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/cart"},
		{http.MethodPost, "/api/v1/cart"},
		{http.MethodPatch, "/api/v1/cart/1"},
		{http.MethodDelete, "/api/v1/cart/1"},
	} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusNoContent, w.Code, "%s %s", tc.method, tc.path)
	}

	trail = nil
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cart/items", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"group", "sub", "route"}, trail)
}

func TestAPIGroups_RouteTable(t *testing.T) {
	engine := gin.New()
	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }
	NewRouter(engine).Register(APIGroups(Handlers{}, Guards{RequireAuth: deny, OptionalAuth: func(*gin.Context) {}})...).Setup()

	var got []string
	for _, route := range engine.Routes() {
		got = append(got, route.Method+" "+route.Path)
	}
	sort.Strings(got)

	want := []string{
		"DELETE /api/v1/cart",
		"DELETE /api/v1/cart/items/:variantId",
		"GET /api/v1/account/orders",
		"GET /api/v1/admin/orders",
		"GET /api/v1/admin/orders/:id",
		"GET /api/v1/admin/orders/:id/packing-slip",
		"GET /api/v1/admin/products",
		"GET /api/v1/admin/products/:id",
		"GET /api/v1/admin/settings",
		"GET /api/v1/admin/stats",
		"GET /api/v1/auth/me",
		"GET /api/v1/cart",
		"GET /api/v1/products",
		"GET /api/v1/products/:id",
		"PATCH /api/v1/admin/products/:id",
		"PATCH /api/v1/cart/items/:variantId",
		"POST /api/v1/admin/orders/:id/cancel",
		"POST /api/v1/admin/orders/:id/fulfill",
		"POST /api/v1/admin/orders/:id/reset",
		"POST /api/v1/admin/products",
		"POST /api/v1/admin/products/sync-inventory",
		"POST /api/v1/admin/settings",
		"POST /api/v1/admin/uploads",
		"POST /api/v1/auth/login",
		"POST /api/v1/auth/register",
		"POST /api/v1/cart/items",
		"POST /api/v1/checkout/process",
		"POST /api/v1/checkout/session",
	}
	require.Equal(t, want, got)

	for _, path := range []string{"/api/v1/admin/stats", "/api/v1/account/orders", "/api/v1/auth/me", "/api/v1/admin/orders"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestRateLimited(t *testing.T) {
	h := func(*gin.Context) {}
	assert.Len(t, rateLimited(nil, h), 1)
	assert.Len(t, rateLimited(func(*gin.Context) {}, h), 2)
}
