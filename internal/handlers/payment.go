// internal/handlers/payment.go
package handlers

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ghanadude/backend/internal/gateway"
	"github.com/ghanadude/backend/internal/services"
	"github.com/ghanadude/backend/internal/utils"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// POST /v1/payments/notify is the gateway's server-to-server webhook.
// The response code steers the gateway's retry behavior: 400 for a
// malformed payload it must not retry, 404 when the reference resolves
// to nothing, 500 for transient failures it should retry.
func (h *PaymentHandler) Notify(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	form, order, err := parseOrderedForm(string(body))
	if err != nil {
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	if err := h.paymentService.HandleNotify(form, order); err != nil {
		var refErr *gateway.ErrInvalidReference
		switch {
		case errors.As(err, &refErr):
			c.String(http.StatusBadRequest, "invalid reference")
		case errors.Is(err, services.ErrOrderNotFound):
			c.String(http.StatusNotFound, "unknown reference")
		default:
			c.String(http.StatusInternalServerError, "internal error")
		}
		return
	}

	c.String(http.StatusOK, "OK")
}

// parseOrderedForm decodes a urlencoded body keeping the parameter
// order, which the webhook signature is computed over.
func parseOrderedForm(body string) (url.Values, []string, error) {
	values := make(url.Values)
	var order []string

	for _, pair := range strings.Split(body, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")

		decodedKey, err := url.QueryUnescape(key)
		if err != nil {
			return nil, nil, err
		}
		decodedValue, err := url.QueryUnescape(value)
		if err != nil {
			return nil, nil, err
		}

		values.Add(decodedKey, decodedValue)
		order = append(order, decodedKey)
	}

	return values, order, nil
}

// GET /v1/payments/gateway
func (h *PaymentHandler) GatewayConfig(c *gin.Context) {
	utils.SuccessResponse(c, h.paymentService.GatewayConfig())
}

// POST /v1/payments/intent
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	result, err := h.paymentService.CreatePaymentIntent(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			utils.NotFoundResponse(c, "Order")
		case errors.Is(err, services.ErrInvalidTransition):
			utils.ConflictResponse(c, "Order is not awaiting payment")
		default:
			utils.InternalErrorResponse(c, "Failed to create payment intent")
		}
		return
	}

	utils.SuccessResponse(c, result)
}

type confirmIntentRequest struct {
	IntentID string `json:"intent_id" binding:"required"`
}

// POST /v1/payments/confirm
func (h *PaymentHandler) ConfirmIntent(c *gin.Context) {
	var req confirmIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "intent_id is required", nil)
		return
	}

	if err := h.paymentService.ConfirmPaymentIntent(req.IntentID); err != nil {
		var refErr *gateway.ErrInvalidReference
		switch {
		case errors.As(err, &refErr):
			utils.BadRequestResponse(c, "Payment intent carries no valid order reference", nil)
		case errors.Is(err, services.ErrOrderNotFound):
			utils.NotFoundResponse(c, "Order")
		case strings.Contains(err.Error(), "not succeeded"):
			utils.ConflictResponse(c, "Payment has not succeeded yet")
		default:
			utils.InternalErrorResponse(c, "Failed to confirm payment")
		}
		return
	}

	utils.SuccessResponse(c, gin.H{"confirmed": true})
}

type refundRequest struct {
	IntentID string `json:"intent_id" binding:"required"`
}

// POST /v1/payments/refund (admin)
func (h *PaymentHandler) Refund(c *gin.Context) {
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "intent_id is required", nil)
		return
	}

	if err := h.paymentService.RefundPaymentIntent(req.IntentID); err != nil {
		utils.InternalErrorResponse(c, "Failed to issue refund")
		return
	}

	utils.SuccessResponse(c, gin.H{"refunded": true})
}
