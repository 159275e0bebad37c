// internal/services/reward_service.go
package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/ghanadude/backend/internal/config"
	"github.com/ghanadude/backend/internal/models"
	"github.com/ghanadude/backend/internal/pricing"
	"github.com/ghanadude/backend/internal/utils"
)

// RewardService manages the store-credit balance and its conversion into
// single-use coupons. Balance mutations are single-statement UPDATEs so
// concurrent accruals never lose increments.
type RewardService struct {
	db     *gorm.DB
	config *config.Config
}

func NewRewardService(db *gorm.DB, cfg *config.Config) *RewardService {
	return &RewardService{db: db, config: cfg}
}

// Accrue credits cashback for a completed order. The caller is
// responsible for the grant-once guard on the order itself.
func (s *RewardService) Accrue(userID uint, totalPrice float64) error {
	cashback := pricing.Round2(totalPrice * s.config.Reward.CashbackPercent / 100)
	if cashback <= 0 {
		return nil
	}

	res := s.db.Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Update("reward_balance", gorm.Expr("reward_balance + ?", cashback))
	if res.Error != nil {
		return fmt.Errorf("failed to accrue reward: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

type RewardEligibility struct {
	Balance     float64 `json:"balance"`
	Points      int     `json:"points"`
	CouponValue float64 `json:"coupon_value"`
	CanRedeem   bool    `json:"can_redeem"`
}

// Eligibility reports the current balance and whether it can be
// converted into a coupon right now.
func (s *RewardService) Eligibility(userID uint) (*RewardEligibility, error) {
	var profile models.Profile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	points := int(math.Floor(profile.RewardBalance))
	return &RewardEligibility{
		Balance:     profile.RewardBalance,
		Points:      points,
		CouponValue: s.config.Reward.CouponValue,
		CanRedeem:   s.canRedeem(profile.RewardBalance),
	}, nil
}

func (s *RewardService) canRedeem(balance float64) bool {
	points := int(math.Floor(balance))
	return balance >= s.config.Reward.CouponValue && points >= s.config.Reward.MinRedeemPoints
}

// RedeemCoupon converts part of the balance into a fixed-value coupon.
// Only one unredeemed, unexpired coupon may exist per user at a time.
func (s *RewardService) RedeemCoupon(userID uint) (*models.Coupon, error) {
	var profile models.Profile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !s.canRedeem(profile.RewardBalance) {
		return nil, ErrNotEnoughPoints
	}

	var outstanding int64
	err = s.db.Model(&models.Coupon{}).
		Where("user_id = ? AND is_redeemed = false AND (expires_at IS NULL OR expires_at > ?)",
			userID, time.Now()).
		Count(&outstanding).Error
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if outstanding > 0 {
		return nil, ErrCouponOutstanding
	}

	code, err := utils.GenerateCouponCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate coupon code: %w", err)
	}

	expiresAt := time.Now().AddDate(0, 0, s.config.Reward.CouponValidityDays)
	coupon := &models.Coupon{
		Code:      code,
		UserID:    userID,
		Value:     s.config.Reward.CouponValue,
		ExpiresAt: &expiresAt,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Profile{}).
			Where("user_id = ? AND reward_balance >= ?", userID, s.config.Reward.CouponValue).
			Update("reward_balance", gorm.Expr("reward_balance - ?", s.config.Reward.CouponValue))
		if res.Error != nil {
			return fmt.Errorf("failed to deduct balance: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Balance moved under us between the read and the deduction.
			return ErrNotEnoughPoints
		}

		return tx.Create(coupon).Error
	})
	if err != nil {
		return nil, err
	}

	return coupon, nil
}

// IssueIfEligible converts balance into a coupon automatically after a
// completed order. Not being eligible yet, or already holding an
// outstanding coupon, is a normal outcome rather than an error.
func (s *RewardService) IssueIfEligible(userID uint) (*models.Coupon, error) {
	coupon, err := s.RedeemCoupon(userID)
	if errors.Is(err, ErrNotEnoughPoints) || errors.Is(err, ErrCouponOutstanding) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return coupon, nil
}

// ListCoupons returns the user's coupons, newest first.
func (s *RewardService) ListCoupons(userID uint) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&coupons).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch coupons: %w", err)
	}
	return coupons, nil
}
