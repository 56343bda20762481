package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mimos-de-madera/backoffice-service/internal/logging"
	"github.com/mimos-de-madera/backoffice-service/internal/models"
)

// CreateOrder handles POST /api/orders
func (h *Handlers) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if !bindJSON(c, &req) {
		h.logger.Error("Failed to bind order request", logging.Fields{"path": c.FullPath()})
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GetOrder handles GET /api/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// ListOrders handles GET /api/orders
func (h *Handlers) ListOrders(c *gin.Context) {
	skip, limit := pagination(c)

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), skip, limit)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  total,
		"skip":   skip,
		"limit":  limit,
	})
}

// SearchOrders handles GET /api/orders/search
func (h *Handlers) SearchOrders(c *gin.Context) {
	skip, limit := pagination(c)
	query := c.Query("q")
	searchType := models.SearchType(c.Query("search_type"))

	orders, err := h.orderService.SearchOrders(c.Request.Context(), query, searchType, skip, limit)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// UpdateOrder handles PUT /api/orders/:id
func (h *Handlers) UpdateOrder(c *gin.Context) {
	var req models.UpdateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/orders/:id
func (h *Handlers) DeleteOrder(c *gin.Context) {
	if err := h.orderService.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
}

// RecordPayment handles POST /api/orders/:id/payments
func (h *Handlers) RecordPayment(c *gin.Context) {
	var req models.RecordPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.RecordPayment(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// ListPaymentEvents handles GET /api/orders/:id/payments
func (h *Handlers) ListPaymentEvents(c *gin.Context) {
	events, err := h.orderService.ListPaymentEvents(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

// CreateRefund handles POST /api/payments/refund
func (h *Handlers) CreateRefund(c *gin.Context) {
	var req models.RefundRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.RecordRefund(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// RefundStatus handles GET /api/payments/refund/:orderId
func (h *Handlers) RefundStatus(c *gin.Context) {
	status, err := h.orderService.RefundStatus(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func pagination(c *gin.Context) (skip, limit int) {
	skip, _ = strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	return skip, limit
}
