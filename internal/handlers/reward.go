// internal/handlers/reward.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ghanadude/backend/internal/services"
	"github.com/ghanadude/backend/internal/utils"
)

type RewardHandler struct {
	rewardService *services.RewardService
}

func NewRewardHandler(rewardService *services.RewardService) *RewardHandler {
	return &RewardHandler{rewardService: rewardService}
}

// GET /v1/rewards
func (h *RewardHandler) GetEligibility(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	eligibility, err := h.rewardService.Eligibility(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			utils.NotFoundResponse(c, "Profile")
			return
		}
		utils.InternalErrorResponse(c, "Failed to fetch reward balance")
		return
	}

	utils.SuccessResponse(c, eligibility)
}

// POST /v1/rewards/redeem
func (h *RewardHandler) Redeem(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	coupon, err := h.rewardService.RedeemCoupon(userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotEnoughPoints):
			utils.BadRequestResponse(c, "Not enough reward balance to redeem", nil)
		case errors.Is(err, services.ErrCouponOutstanding):
			utils.ConflictResponse(c, "An unredeemed coupon already exists")
		case errors.Is(err, services.ErrUserNotFound):
			utils.NotFoundResponse(c, "Profile")
		default:
			utils.InternalErrorResponse(c, "Failed to redeem reward")
		}
		return
	}

	utils.CreatedResponse(c, coupon)
}

// GET /v1/rewards/coupons
func (h *RewardHandler) ListCoupons(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	coupons, err := h.rewardService.ListCoupons(userID)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to fetch coupons")
		return
	}

	utils.SuccessResponse(c, coupons)
}
