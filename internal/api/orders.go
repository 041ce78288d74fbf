package api

import (
	"net/http"

	"marketplace-service/internal/service"

	"github.com/gin-gonic/gin"
)

// createOrder handles order creation. The buyer is the authenticated caller.
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Orders.CreateOrder(c.Request.Context(), claimsFrom(c).UserID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.svc.Orders.GetOrders(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	orderID, ok := h.pathID(c)
	if !ok {
		return
	}

	order, err := h.svc.Orders.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	orderID, ok := h.pathID(c)
	if !ok {
		return
	}
	var req service.UpdateOrderStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.svc.Orders.UpdateOrderStatus(c.Request.Context(), orderID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
