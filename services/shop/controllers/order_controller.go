package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shoparak/shop-backend/services/shop/models"
	"github.com/shoparak/shop-backend/services/shop/services"
)

// OrderController handles HTTP requests for order operations.
type OrderController struct {
	orderService services.OrderService
}

func NewOrderController(orderService services.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// CreateOrder handles POST /orders, the storefront checkout submission.
func (oc *OrderController) CreateOrder(ctx *gin.Context) {
	var req models.CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid order payload", "details": err.Error()})
		return
	}

	receipt, svcErr := oc.orderService.CreateOrder(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"success": false, "message": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Order registered successfully",
		"order":   receipt,
	})
}

// ListOrders handles GET /orders (admin), optionally filtered by status.
func (oc *OrderController) ListOrders(ctx *gin.Context) {
	status := ctx.Query("status")
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))

	orders, svcErr := oc.orderService.ListOrders(ctx.Request.Context(), status, limit)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"success": false, "message": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

// TrackOrder handles GET /orders/:orderNumber.
func (oc *OrderController) TrackOrder(ctx *gin.Context) {
	orderNumber := ctx.Param("orderNumber")
	if orderNumber == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Order number is required"})
		return
	}

	order, svcErr := oc.orderService.TrackOrder(ctx.Request.Context(), orderNumber)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"success": false, "message": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// UpdateOrderStatus handles PATCH /orders/:orderNumber/status (admin).
func (oc *OrderController) UpdateOrderStatus(ctx *gin.Context) {
	orderNumber := ctx.Param("orderNumber")
	if orderNumber == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Order number is required"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request", "details": err.Error()})
		return
	}

	if svcErr := oc.orderService.UpdateOrderStatus(ctx.Request.Context(), orderNumber, req.Status); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"success": false, "message": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Order status updated"})
}
