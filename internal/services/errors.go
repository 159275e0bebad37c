// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrDesignerNotFound  = errors.New("designer not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadyDispatched = errors.New("order not found or already dispatched")
	ErrInvoiceNotReady   = errors.New("invoice not available")
	ErrNotEnoughPoints   = errors.New("not enough points to redeem")
	ErrCouponOutstanding = errors.New("an unredeemed coupon already exists")
	ErrEmptyCart         = errors.New("cart contains no items")
)

// InsufficientStockError aborts the entire checkout transaction; it
// carries the product identity and the quantities involved so the client
// can tell the customer which line failed.
type InsufficientStockError struct {
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	Requested   int     `json:"requested"`
	Available   int     `json:"available"`
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// ValidationError reports missing or malformed order-level fields caught
// before any mutation happens.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %v", e.Fields)
}
