// internal/models/product.go
package models

import (
	"github.com/lib/pq"
)

type Category struct {
	BaseModel
	Name string `json:"name" gorm:"uniqueIndex;size:255;not null"`
}

type Brand struct {
	BaseModel
	Name    string `json:"name" gorm:"uniqueIndex;size:255;not null"`
	LogoKey string `json:"logo_key" gorm:"size:255"`
}

type Designer struct {
	BaseModel
	Name    string `json:"name" gorm:"size:255;not null"`
	BrandID uint   `json:"brand_id" gorm:"not null;index"`

	Brand Brand `json:"brand,omitempty" gorm:"foreignKey:BrandID"`
}

type Product struct {
	BaseModel
	Name               string         `json:"name" gorm:"size:255;not null"`
	Description        string         `json:"description" gorm:"type:text"`
	Price              float64        `json:"price" gorm:"type:decimal(10,2);not null"`
	Percentage         float64        `json:"percentage" gorm:"type:decimal(5,2);default:0"` // dev commission percent
	CategoryID         uint           `json:"category_id" gorm:"not null;index"`
	BrandID            uint           `json:"brand_id" gorm:"not null;index"`
	Stock              int            `json:"stock" gorm:"default:0;check:stock >= 0"`
	OnSale             bool           `json:"on_sale" gorm:"default:false"`
	DiscountPercentage int            `json:"discount_percentage" gorm:"default:0"`
	BulkSale           bool           `json:"bulk_sale" gorm:"default:false"`
	Season             Season         `json:"season" gorm:"type:varchar(20);default:'all_seasons'"`
	Sizes              pq.StringArray `json:"sizes" gorm:"type:text[]"`

	// Relationships
	Category Category       `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Brand    Brand          `json:"brand,omitempty" gorm:"foreignKey:BrandID"`
	Images   []ProductImage `json:"images,omitempty" gorm:"foreignKey:ProductID"`
}

type ProductImage struct {
	BaseModel
	ProductID uint   `json:"product_id" gorm:"not null;index"`
	ImageKey  string `json:"image_key" gorm:"size:255;not null"`
}
