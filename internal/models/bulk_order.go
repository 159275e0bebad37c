// internal/models/bulk_order.go
package models

import (
	"math"
)

// BulkOrder is the aggregate for large-quantity and custom-branded
// purchases. It shares the Order status state machine. Items may carry no
// product reference at all when they are pure artwork lines (a brand logo
// or custom design upload priced from store settings).
type BulkOrder struct {
	BaseModel
	UserID        uint          `json:"user_id" gorm:"not null;index"`
	TotalPrice    float64       `json:"total_price" gorm:"type:decimal(10,2);not null"`
	Quantity      int           `json:"quantity" gorm:"not null"`
	Address       string        `json:"address" gorm:"size:255"`
	City          string        `json:"city" gorm:"size:100"`
	PostalCode    string        `json:"postal_code" gorm:"size:20"`
	Country       string        `json:"country" gorm:"size:100"`
	PaymentMethod PaymentMethod `json:"payment_method" gorm:"type:varchar(50)"`
	Status        OrderStatus   `json:"status" gorm:"type:varchar(20);default:'Pending';index"`
	OrderType     OrderType     `json:"order_type" gorm:"type:varchar(20);default:'delivery'"`
	RewardGranted bool          `json:"reward_granted" gorm:"default:false"`
	DeliveryFee   float64       `json:"delivery_fee" gorm:"type:decimal(10,2);default:0"`
	VATAmount     float64       `json:"vat_amount" gorm:"type:decimal(10,2);default:0"`
	InvoiceKey    string        `json:"invoice_key" gorm:"size:255"`
	PinCode       string        `json:"pin_code" gorm:"size:6"`
	IsDispatched  bool          `json:"is_dispatched" gorm:"default:false"`

	// Relationships
	User  User            `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Items []BulkOrderItem `json:"items,omitempty" gorm:"foreignKey:BulkOrderID"`
}

func (o *BulkOrder) EarnedPoints() int {
	return int(math.Floor(o.TotalPrice / 100))
}

type BulkOrderItem struct {
	BaseModel
	BulkOrderID     uint    `json:"bulk_order_id" gorm:"not null;index"`
	ProductID       *uint   `json:"product_id" gorm:"index"` // nil for artwork-only lines
	Quantity        int     `json:"quantity" gorm:"not null"`
	Price           float64 `json:"price" gorm:"type:decimal(10,2);not null"` // unit price snapshot
	SelectedSize    string  `json:"selected_size" gorm:"size:20"`
	BrandLogoKey    string  `json:"brand_logo_key" gorm:"size:255"`
	CustomDesignKey string  `json:"custom_design_key" gorm:"size:255"`
	DesignerID      *uint   `json:"designer_id" gorm:"index"`

	Product  *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Designer *Designer `json:"designer,omitempty" gorm:"foreignKey:DesignerID"`
}
