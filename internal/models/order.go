// internal/models/order.go
package models

import (
	"math"
)

// Order is the aggregate for regular retail purchases. It is created by
// the checkout orchestrator, its status is advanced by the payment
// callback handler and fulfillment, and the dispatch operation sets the
// pin code. Item prices are snapshots taken at checkout time and are
// never recomputed from the live product.
type Order struct {
	BaseModel
	UserID         uint          `json:"user_id" gorm:"not null;index"`
	TotalPrice     float64       `json:"total_price" gorm:"type:decimal(10,2);not null"`
	Address        string        `json:"address" gorm:"size:255"`
	City           string        `json:"city" gorm:"size:100"`
	PostalCode     string        `json:"postal_code" gorm:"size:20"`
	Country        string        `json:"country" gorm:"size:100"`
	CouponID       *uint         `json:"coupon_id" gorm:"index"`
	DiscountAmount float64       `json:"discount_amount" gorm:"type:decimal(10,2);default:0"`
	PaymentMethod  PaymentMethod `json:"payment_method" gorm:"type:varchar(50)"`
	Status         OrderStatus   `json:"status" gorm:"type:varchar(20);default:'Pending';index"`
	OrderType      OrderType     `json:"order_type" gorm:"type:varchar(20);default:'delivery'"`
	RewardApplied  float64       `json:"reward_applied" gorm:"type:decimal(10,2);default:0"`
	RewardGranted  bool          `json:"reward_granted" gorm:"default:false"`
	DeliveryFee    float64       `json:"delivery_fee" gorm:"type:decimal(10,2);default:0"`
	VATAmount      float64       `json:"vat_amount" gorm:"type:decimal(10,2);default:0"`
	InvoiceKey     string        `json:"invoice_key" gorm:"size:255"`
	PinCode        string        `json:"pin_code" gorm:"size:6"`
	IsDispatched   bool          `json:"is_dispatched" gorm:"default:false"`

	// Relationships
	User   User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Coupon *Coupon     `json:"coupon,omitempty" gorm:"foreignKey:CouponID"`
	Items  []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// EarnedPoints is the reward-point figure for a completed order:
// one point per whole 100 of total price.
func (o *Order) EarnedPoints() int {
	return int(math.Floor(o.TotalPrice / 100))
}

type OrderItem struct {
	BaseModel
	OrderID      uint    `json:"order_id" gorm:"not null;index"`
	ProductID    uint    `json:"product_id" gorm:"not null;index"`
	Quantity     int     `json:"quantity" gorm:"not null"`
	Price        float64 `json:"price" gorm:"type:decimal(10,2);not null"` // unit price snapshot
	SelectedSize string  `json:"selected_size" gorm:"size:20"`

	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
