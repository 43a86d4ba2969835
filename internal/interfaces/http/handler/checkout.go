package handler

import (
	"github.com/gin-gonic/gin"
	checkoutapp "github.com/lumina/storefront/internal/application/checkout"
	"github.com/lumina/storefront/internal/interfaces/http/middleware"
)

// CheckoutHandler prices carts and places orders
type CheckoutHandler struct {
	BaseHandler
	checkoutService *checkoutapp.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *checkoutapp.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// CreateSession godoc
// @ID           createCheckoutSession
// @Summary      Create payment session
// @Description  Prices the cart from current catalog data and returns a mock client secret
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request body checkoutapp.CreateSessionInput true "Cart lines"
// @Success      200 {object} APIResponse[checkoutapp.SessionResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /checkout/session [post]
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	var req checkoutapp.CreateSessionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.checkoutService.CreateSession(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Process godoc
// @ID           processCheckout
// @Summary      Place order
// @Description  Re-prices the cart, authorizes payment, reserves stock and records the order atomically.
// @Description  A signed-in customer's order is linked to the account.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request body checkoutapp.ProcessCheckoutInput true "Checkout"
// @Success      200 {object} APIResponse[checkoutapp.ProcessCheckoutResult]
// @Failure      400 {object} ValidationErrorResponse
// @Failure      402 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Router       /checkout/process [post]
func (h *CheckoutHandler) Process(c *gin.Context) {
	var req checkoutapp.ProcessCheckoutInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if principal := middleware.GetPrincipal(c); principal != nil {
		userID := principal.UserID
		req.UserID = &userID
	}

	result, err := h.checkoutService.Process(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
