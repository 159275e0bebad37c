// internal/handlers/order.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ghanadude/backend/internal/models"
	"github.com/ghanadude/backend/internal/services"
	"github.com/ghanadude/backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// GET /v1/orders
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	orders, total, err := h.orderService.GetUserOrders(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to fetch orders")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(orders, total, params))
}

// GET /v1/bulk-orders
func (h *OrderHandler) GetMyBulkOrders(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	orders, total, err := h.orderService.GetUserBulkOrders(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to fetch bulk orders")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(orders, total, params))
}

// GET /v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order id", nil)
		return
	}

	order, err := h.orderService.GetOrder(userID, id)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.NotFoundResponse(c, "Order")
			return
		}
		utils.InternalErrorResponse(c, "Failed to fetch order")
		return
	}

	utils.SuccessResponse(c, order)
}

// GET /v1/bulk-orders/:id
func (h *OrderHandler) GetBulkOrder(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, "Invalid bulk order id", nil)
		return
	}

	order, err := h.orderService.GetBulkOrder(userID, id)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.NotFoundResponse(c, "Bulk order")
			return
		}
		utils.InternalErrorResponse(c, "Failed to fetch bulk order")
		return
	}

	utils.SuccessResponse(c, order)
}

// POST /v1/orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order id", nil)
		return
	}

	order, err := h.orderService.CancelOrder(userID, id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			utils.NotFoundResponse(c, "Order")
		case errors.Is(err, services.ErrInvalidTransition):
			utils.ConflictResponse(c, "Order can no longer be cancelled")
		default:
			utils.InternalErrorResponse(c, "Failed to cancel order")
		}
		return
	}

	utils.SuccessResponse(c, order)
}

// POST /v1/bulk-orders/:id/cancel
func (h *OrderHandler) CancelBulkOrder(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, "Invalid bulk order id", nil)
		return
	}

	order, err := h.orderService.CancelBulkOrder(userID, id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			utils.NotFoundResponse(c, "Bulk order")
		case errors.Is(err, services.ErrInvalidTransition):
			utils.ConflictResponse(c, "Bulk order can no longer be cancelled")
		default:
			utils.InternalErrorResponse(c, "Failed to cancel bulk order")
		}
		return
	}

	utils.SuccessResponse(c, order)
}

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// PATCH /v1/orders/:id/status (admin)
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order id", nil)
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "status is required", nil)
		return
	}

	order, err := h.orderService.UpdateOrderStatus(id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			utils.NotFoundResponse(c, "Order")
		case errors.Is(err, services.ErrInvalidTransition):
			utils.ConflictResponse(c, fmt.Sprintf("Cannot transition to %s", req.Status))
		default:
			utils.InternalErrorResponse(c, "Failed to update order status")
		}
		return
	}

	utils.SuccessResponse(c, order)
}

// PATCH /v1/bulk-orders/:id/status (admin)
func (h *OrderHandler) UpdateBulkOrderStatus(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, "Invalid bulk order id", nil)
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "status is required", nil)
		return
	}

	order, err := h.orderService.UpdateBulkOrderStatus(id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			utils.NotFoundResponse(c, "Bulk order")
		case errors.Is(err, services.ErrInvalidTransition):
			utils.ConflictResponse(c, fmt.Sprintf("Cannot transition to %s", req.Status))
		default:
			utils.InternalErrorResponse(c, "Failed to update bulk order status")
		}
		return
	}

	utils.SuccessResponse(c, order)
}

// POST /v1/orders/:id/dispatch (admin)
func (h *OrderHandler) DispatchOrder(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order id", nil)
		return
	}

	order, err := h.orderService.DispatchOrder(id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			utils.NotFoundResponse(c, "Order")
		case errors.Is(err, services.ErrInvalidTransition):
			utils.ConflictResponse(c, "Order is not ready for dispatch")
		case errors.Is(err, services.ErrAlreadyDispatched):
			utils.ConflictResponse(c, "Order has already been dispatched")
		default:
			utils.InternalErrorResponse(c, "Failed to dispatch order")
		}
		return
	}

	utils.SuccessResponse(c, order)
}

// POST /v1/bulk-orders/:id/dispatch (admin)
func (h *OrderHandler) DispatchBulkOrder(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, "Invalid bulk order id", nil)
		return
	}

	order, err := h.orderService.DispatchBulkOrder(id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			utils.NotFoundResponse(c, "Bulk order")
		case errors.Is(err, services.ErrInvalidTransition):
			utils.ConflictResponse(c, "Bulk order is not ready for dispatch")
		case errors.Is(err, services.ErrAlreadyDispatched):
			utils.ConflictResponse(c, "Bulk order has already been dispatched")
		default:
			utils.InternalErrorResponse(c, "Failed to dispatch bulk order")
		}
		return
	}

	utils.SuccessResponse(c, order)
}

// GET /v1/orders/:id/invoice
func (h *OrderHandler) DownloadInvoice(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order id", nil)
		return
	}

	data, contentType, err := h.orderService.DownloadInvoice(userID, id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			utils.NotFoundResponse(c, "Order")
		case errors.Is(err, services.ErrInvoiceNotReady):
			utils.NotFoundResponse(c, "Invoice")
		default:
			utils.InternalErrorResponse(c, "Failed to fetch invoice")
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=INV-%d.pdf", id))
	c.Data(http.StatusOK, contentType, data)
}

// GET /v1/bulk-orders/:id/invoice
func (h *OrderHandler) DownloadBulkInvoice(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, "Invalid bulk order id", nil)
		return
	}

	data, contentType, err := h.orderService.DownloadBulkInvoice(userID, id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			utils.NotFoundResponse(c, "Bulk order")
		case errors.Is(err, services.ErrInvoiceNotReady):
			utils.NotFoundResponse(c, "Invoice")
		default:
			utils.InternalErrorResponse(c, "Failed to fetch invoice")
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=BINV-%d.pdf", id))
	c.Data(http.StatusOK, contentType, data)
}
