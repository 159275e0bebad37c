// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username     string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	FirstName    string     `json:"first_name" gorm:"size:100"`
	LastName     string     `json:"last_name" gorm:"size:100"`
	UserType     UserType   `json:"user_type" gorm:"type:varchar(20);default:'customer'"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// Relationships
	Profile    Profile     `json:"profile,omitempty" gorm:"foreignKey:UserID"`
	Orders     []Order     `json:"orders,omitempty" gorm:"foreignKey:UserID"`
	BulkOrders []BulkOrder `json:"bulk_orders,omitempty" gorm:"foreignKey:UserID"`
	Coupons    []Coupon    `json:"coupons,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}

// Profile carries the store-credit reward balance accrued on completed
// orders. The balance is only ever changed with single-statement UPDATEs
// so concurrent checkouts cannot lose increments, and it is clamped at
// zero on deduction.
type Profile struct {
	BaseModel
	UserID        uint    `json:"user_id" gorm:"uniqueIndex;not null"`
	Phone         string  `json:"phone" gorm:"size:30"`
	RewardBalance float64 `json:"reward_balance" gorm:"type:decimal(10,2);default:0"`
}
