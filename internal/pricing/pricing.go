// internal/pricing/pricing.go

// Package pricing computes effective item prices, line totals and order
// totals. Every function is pure: no database access, no side effects.
// Currency rounding (2 decimal places) happens exactly once, at line-item
// granularity; aggregated totals are never re-rounded.
package pricing

import (
	"errors"

	"math"

	"github.com/ghanadude/backend/internal/models"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrNilProduct      = errors.New("product does not resolve")
)

// Round2 rounds to currency precision (2 decimal places).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// EffectiveUnitPrice is the sale-adjusted unit price of a product.
func EffectiveUnitPrice(p *models.Product) (float64, error) {
	if p == nil {
		return 0, ErrNilProduct
	}
	if p.OnSale && p.DiscountPercentage > 0 {
		return Round2(p.Price * (1 - float64(p.DiscountPercentage)/100)), nil
	}
	return Round2(p.Price), nil
}

// LineTotal is the effective unit price multiplied by quantity.
func LineTotal(p *models.Product, quantity int) (float64, error) {
	if quantity <= 0 {
		return 0, ErrInvalidQuantity
	}
	unit, err := EffectiveUnitPrice(p)
	if err != nil {
		return 0, err
	}
	return unit * float64(quantity), nil
}

// OrderTotal sums already-rounded line totals, adds the delivery fee and
// VAT amount and subtracts the applied reward and coupon discount. The
// result is clamped at zero.
func OrderTotal(lineTotals []float64, deliveryFee, vatAmount, rewardApplied, discount float64) float64 {
	var subtotal float64
	for _, lt := range lineTotals {
		subtotal += lt
	}

	total := subtotal + deliveryFee + vatAmount - rewardApplied - discount
	if total < 0 {
		return 0
	}
	return total
}

// DevEarnings is the commission figure for a line: unit price snapshot
// times quantity times the product's commission percentage.
func DevEarnings(unitPrice float64, quantity int, percentage float64) float64 {
	return Round2(unitPrice * float64(quantity) * percentage / 100)
}
