package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lumina/storefront/internal/application/fulfillment"
	orderapp "github.com/lumina/storefront/internal/application/order"
)

// OrderHandler serves the admin order console and the customer order history
type OrderHandler struct {
	BaseHandler
	orderService       *orderapp.OrderService
	fulfillmentService *fulfillment.Service
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.OrderService, fulfillmentService *fulfillment.Service) *OrderHandler {
	return &OrderHandler{
		orderService:       orderService,
		fulfillmentService: fulfillmentService,
	}
}

// AdminList godoc
// @ID           listAdminOrders
// @Summary      List orders
// @Description  Newest first; status ALL or empty disables the filter
// @Tags         admin-orders
// @Produce      json
// @Param        status query string false "Order status or ALL"
// @Success      200 {object} APIResponse[[]orderapp.OrderRow]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders [get]
func (h *OrderHandler) AdminList(c *gin.Context) {
	rows, err := h.orderService.AdminList(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// Get godoc
// @ID           getAdminOrder
// @Summary      Get order
// @Tags         admin-orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} APIResponse[orderapp.OrderDetail]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.orderService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// Fulfill godoc
// @ID           fulfillOrder
// @Summary      Fulfill order
// @Description  Submits a PAID order to the supplier and records tracking data
// @Tags         admin-orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} APIResponse[fulfillment.Result]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders/{id}/fulfill [post]
func (h *OrderHandler) Fulfill(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.fulfillmentService.Fulfill(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Cancel godoc
// @ID           cancelOrder
// @Summary      Cancel order
// @Description  Restocks every line and refunds a paid order
// @Tags         admin-orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} APIResponse[orderapp.OrderDetail]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.orderService.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// Reset godoc
// @ID           resetOrder
// @Summary      Retry fulfillment
// @Description  Returns a REQUIRES_ATTENTION order to PAID
// @Tags         admin-orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} APIResponse[orderapp.OrderDetail]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders/{id}/reset [post]
func (h *OrderHandler) Reset(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.orderService.ResetForRetry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// PackingSlip godoc
// @ID           getPackingSlip
// @Summary      Packing slip
// @Description  PDF when printing is enabled, HTML otherwise
// @Tags         admin-orders
// @Produce      application/pdf
// @Produce      text/html
// @Param        id path string true "Order ID"
// @Success      200 {file} file
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders/{id}/packing-slip [get]
func (h *OrderHandler) PackingSlip(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	doc, err := h.orderService.PackingSlip(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+doc.Filename+`"`)
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}

// ListMine godoc
// @ID           listAccountOrders
// @Summary      My orders
// @Description  Orders placed while signed in, newest first
// @Tags         account
// @Produce      json
// @Success      200 {object} APIResponse[[]orderapp.OrderDetail]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /account/orders [get]
func (h *OrderHandler) ListMine(c *gin.Context) {
	principal, ok := h.Principal(c)
	if !ok {
		return
	}
	orders, err := h.orderService.ListForUser(c.Request.Context(), principal.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}
