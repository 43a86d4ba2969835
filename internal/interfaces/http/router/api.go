package router

import (
	"github.com/gin-gonic/gin"
	"github.com/lumina/storefront/internal/domain/identity"
	"github.com/lumina/storefront/internal/interfaces/http/handler"
	"github.com/lumina/storefront/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers bundles the handlers mounted by APIGroups
type Handlers struct {
	Products *handler.ProductHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Auth     *handler.AuthHandler
	Orders   *handler.OrderHandler
	Admin    *handler.AdminHandler
}

// Guards are the authentication middlewares applied per group
type Guards struct {
	RequireAuth  gin.HandlerFunc
	OptionalAuth gin.HandlerFunc
	// AuthRateLimit throttles login and registration; nil disables it
	AuthRateLimit gin.HandlerFunc
	Logger        *zap.Logger
}

// APIGroups returns the storefront, account and admin route groups
func APIGroups(h Handlers, g Guards) []RouteRegistrar {
	allow := func(resource, action string) gin.HandlerFunc {
		return middleware.AuthorizeWithConfig(middleware.AuthorizeConfig{Logger: g.Logger}, resource, action)
	}

	products := NewDomainGroup("products", "/products")
	products.GET("", h.Products.ListStorefront)
	products.GET("/:id", h.Products.GetDetail)

	cart := NewDomainGroup("cart", "/cart")
	cart.GET("", h.Cart.Get)
	cart.DELETE("", h.Cart.Clear)
	cart.POST("/items", h.Cart.AddItem)
	cart.PATCH("/items/:variantId", h.Cart.UpdateItem)
	cart.DELETE("/items/:variantId", h.Cart.RemoveItem)

	checkout := NewDomainGroup("checkout", "/checkout").Use(g.OptionalAuth)
	checkout.POST("/session", h.Checkout.CreateSession)
	checkout.POST("/process", h.Checkout.Process)

	auth := NewDomainGroup("auth", "/auth")
	auth.POST("/login", rateLimited(g.AuthRateLimit, h.Auth.Login)...)
	auth.POST("/register", rateLimited(g.AuthRateLimit, h.Auth.Register)...)
	auth.GET("/me", g.RequireAuth, h.Auth.Me)

	account := NewDomainGroup("account", "/account").Use(g.RequireAuth)
	account.GET("/orders", allow(identity.ResourceAccount, identity.ActionRead), h.Orders.ListMine)

	admin := NewDomainGroup("admin", "/admin").Use(g.RequireAuth)
	admin.GET("/stats", allow(identity.ResourceStats, identity.ActionRead), h.Admin.Stats)
	admin.GET("/settings", allow(identity.ResourceSettings, identity.ActionRead), h.Admin.GetSettings)
	admin.POST("/settings", allow(identity.ResourceSettings, identity.ActionUpdate), h.Admin.SaveSettings)
	admin.POST("/uploads", allow(identity.ResourceUploads, identity.ActionCreate), h.Products.UploadImage)

	adminProducts := admin.Group("admin-products", "/products")
	adminProducts.GET("", allow(identity.ResourceProducts, identity.ActionRead), h.Products.AdminList)
	adminProducts.POST("", allow(identity.ResourceProducts, identity.ActionCreate), h.Products.Create)
	adminProducts.POST("/sync-inventory", allow(identity.ResourceProducts, identity.ActionUpdate), h.Products.SyncInventory)
	adminProducts.GET("/:id", allow(identity.ResourceProducts, identity.ActionRead), h.Products.AdminGet)
	adminProducts.PATCH("/:id", allow(identity.ResourceProducts, identity.ActionUpdate), h.Products.Update)

	adminOrders := admin.Group("admin-orders", "/orders")
	adminOrders.GET("", allow(identity.ResourceOrders, identity.ActionRead), h.Orders.AdminList)
	adminOrders.GET("/:id", allow(identity.ResourceOrders, identity.ActionRead), h.Orders.Get)
	adminOrders.GET("/:id/packing-slip", allow(identity.ResourceOrders, identity.ActionRead), h.Orders.PackingSlip)
	adminOrders.POST("/:id/fulfill", allow(identity.ResourceOrders, identity.ActionFulfill), h.Orders.Fulfill)
	adminOrders.POST("/:id/cancel", allow(identity.ResourceOrders, identity.ActionCancel), h.Orders.Cancel)
	adminOrders.POST("/:id/reset", allow(identity.ResourceOrders, identity.ActionUpdate), h.Orders.Reset)

	return []RouteRegistrar{products, cart, checkout, auth, account, admin}
}

func rateLimited(limit gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	if limit == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{limit, h}
}
