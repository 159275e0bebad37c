// internal/models/coupon.go
package models

import (
	"time"
)

// Coupon is a single-use discount code tied to one user. Created on order
// completion or explicit reward redemption; consumed at most once, at
// checkout time.
type Coupon struct {
	BaseModel
	Code       string     `json:"code" gorm:"uniqueIndex;size:20;not null"`
	UserID     uint       `json:"user_id" gorm:"not null;index"`
	Value      float64    `json:"value" gorm:"type:decimal(6,2);default:50"`
	IsRedeemed bool       `json:"is_redeemed" gorm:"default:false"`
	ExpiresAt  *time.Time `json:"expires_at"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (c *Coupon) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// Usable reports whether the coupon can still be applied at checkout.
func (c *Coupon) Usable(now time.Time) bool {
	return !c.IsRedeemed && !c.IsExpired(now)
}
