// internal/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ghanadude/backend/internal/services"
	"github.com/ghanadude/backend/internal/utils"
)

type CheckoutHandler struct {
	checkoutService *services.CheckoutService
	storageService  *services.StorageService
}

func NewCheckoutHandler(checkoutService *services.CheckoutService, storageService *services.StorageService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		storageService:  storageService,
	}
}

// POST /v1/checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	result, err := h.checkoutService.Checkout(userID, &req)
	if err != nil {
		var stockErr *services.InsufficientStockError
		var validationErr *services.ValidationError

		switch {
		case errors.Is(err, services.ErrEmptyCart):
			utils.BadRequestResponse(c, "Cart contains no items", nil)
		case errors.As(err, &validationErr):
			utils.BadRequestResponse(c, validationErr.Error(), validationErr.Fields)
		case errors.As(err, &stockErr):
			utils.ErrorResponse(c, http.StatusBadRequest, "INSUFFICIENT_STOCK", stockErr.Error(), stockErr)
		case errors.Is(err, services.ErrProductNotFound):
			utils.NotFoundResponse(c, "Product")
		case errors.Is(err, services.ErrDesignerNotFound):
			utils.NotFoundResponse(c, "Designer")
		case errors.Is(err, services.ErrUserNotFound):
			utils.NotFoundResponse(c, "User")
		default:
			utils.InternalErrorResponse(c, "Checkout failed")
		}
		return
	}

	utils.CreatedResponse(c, result)
}

// POST /v1/checkout/artwork uploads a brand logo or custom design ahead
// of a bulk checkout and returns the storage key to reference in the
// cart.
func (h *CheckoutHandler) UploadArtwork(c *gin.Context) {
	if _, ok := utils.GetUserIDFromContext(c); !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	kind := c.PostForm("kind")
	if kind != "brand_logo" && kind != "custom_design" {
		utils.BadRequestResponse(c, "kind must be brand_logo or custom_design", nil)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "Artwork file is required", nil)
		return
	}
	defer file.Close()

	category := "brand_logos"
	if kind == "custom_design" {
		category = "custom_designs"
	}

	result, err := h.storageService.UploadFile(file, header, h.storageService.GetDefaultUploadOptions(category))
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{"key": result.Key, "kind": kind})
}
