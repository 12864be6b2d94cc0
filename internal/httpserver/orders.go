package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ordersvc "latthi-storefront/internal/service/order"
	refundsvc "latthi-storefront/internal/service/refund"
)

func (h *handlers) myOrders(c *gin.Context) {
	ctx := c.Request.Context()
	orders, err := h.deps.Orders.ListForUser(ctx, userFromContext(ctx))
	if err != nil {
		h.failRead(c, "my orders", err)
		return
	}
	c.JSON(http.StatusOK, listResponse{Total: len(orders), Results: orders})
}

func (h *handlers) myOrder(c *gin.Context) {
	ctx := c.Request.Context()
	t, err := h.deps.Orders.Get(ctx, userFromContext(ctx), c.Param("id"))
	if err != nil {
		h.failRead(c, "my order", err)
		return
	}
	c.JSON(http.StatusOK, t)
}

type refundRequestBody struct {
	Reason string `json:"reason"`
}

func (h *handlers) requestRefund(c *gin.Context) {
	var in refundRequestBody
	if !bindJSON(c, &in) {
		return
	}
	ctx := c.Request.Context()
	req, err := h.deps.Refunds.Request(ctx, userFromContext(ctx), c.Param("id"), in.Reason)
	if err != nil {
		h.fail(c, "request refund", err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (h *handlers) allOrders(c *gin.Context) {
	orders, err := h.deps.Orders.ListAll(c.Request.Context())
	if err != nil {
		h.failRead(c, "all orders", err)
		return
	}
	c.JSON(http.StatusOK, listResponse{Total: len(orders), Results: orders})
}

func (h *handlers) updateOrderStatus(c *gin.Context) {
	var in ordersvc.StatusUpdate
	if !bindJSON(c, &in) {
		return
	}
	if err := h.deps.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), in); err != nil {
		h.fail(c, "update order status", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": in.Status, "sourcePath": in.SourcePath})
}

func (h *handlers) decideRefund(c *gin.Context) {
	var in refundsvc.Decision
	if !bindJSON(c, &in) {
		return
	}
	o, err := h.deps.Refunds.Decide(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, "decide refund", err)
		return
	}
	c.JSON(http.StatusOK, o)
}
