package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	cartapp "github.com/lumina/storefront/internal/application/cart"
	"github.com/lumina/storefront/internal/interfaces/http/middleware"
)

// CartHandler serves the anonymous session cart. The session id travels in
// the X-Cart-Session header and is echoed on every response.
type CartHandler struct {
	BaseHandler
	cartService *cartapp.CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *cartapp.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

func (h *CartHandler) respond(c *gin.Context, cart *cartapp.Response, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if cart.SessionID != "" {
		c.Header(middleware.CartSessionHeader, cart.SessionID)
	}
	h.Success(c, cart)
}

func session(c *gin.Context) string {
	return c.GetHeader(middleware.CartSessionHeader)
}

// Get godoc
// @ID           getCart
// @Summary      Get cart
// @Tags         cart
// @Produce      json
// @Param        X-Cart-Session header string false "Cart session"
// @Success      200 {object} APIResponse[cartapp.Response]
// @Router       /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	cart, err := h.cartService.Get(c.Request.Context(), session(c))
	h.respond(c, cart, err)
}

// AddItem godoc
// @ID           addCartItem
// @Summary      Add item to cart
// @Description  Adds a variant; an existing line is incremented. A session is created when none is sent.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Cart-Session header string false "Cart session"
// @Param        request body cartapp.AddItemRequest true "Item"
// @Success      200 {object} APIResponse[cartapp.Response]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req cartapp.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	cart, err := h.cartService.AddItem(c.Request.Context(), session(c), req)
	h.respond(c, cart, err)
}

// UpdateItem godoc
// @ID           updateCartItem
// @Summary      Set item quantity
// @Description  Quantity 0 removes the line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Cart-Session header string true "Cart session"
// @Param        variantId path string true "Variant ID"
// @Param        request body cartapp.UpdateItemRequest true "Quantity"
// @Success      200 {object} APIResponse[cartapp.Response]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /cart/items/{variantId} [patch]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	variantID, ok := h.variantParam(c)
	if !ok {
		return
	}
	var req cartapp.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	cart, err := h.cartService.UpdateItem(c.Request.Context(), session(c), variantID, *req.Quantity)
	h.respond(c, cart, err)
}

// RemoveItem godoc
// @ID           removeCartItem
// @Summary      Remove item
// @Tags         cart
// @Produce      json
// @Param        X-Cart-Session header string true "Cart session"
// @Param        variantId path string true "Variant ID"
// @Success      200 {object} APIResponse[cartapp.Response]
// @Failure      404 {object} ErrorResponse
// @Router       /cart/items/{variantId} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	variantID, ok := h.variantParam(c)
	if !ok {
		return
	}
	cart, err := h.cartService.RemoveItem(c.Request.Context(), session(c), variantID)
	h.respond(c, cart, err)
}

// Clear godoc
// @ID           clearCart
// @Summary      Clear cart
// @Tags         cart
// @Produce      json
// @Param        X-Cart-Session header string true "Cart session"
// @Success      200 {object} APIResponse[cartapp.Response]
// @Router       /cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	cart, err := h.cartService.Clear(c.Request.Context(), session(c))
	h.respond(c, cart, err)
}

func (h *CartHandler) variantParam(c *gin.Context) (uuid.UUID, bool) {
	return h.ParseUUIDParam(c, "variantId")
}
