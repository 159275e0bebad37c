// internal/pricing/pricing_test.go
package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ghanadude/backend/internal/models"
)

func TestEffectiveUnitPrice(t *testing.T) {
	regular := &models.Product{Price: 100.00}
	price, err := EffectiveUnitPrice(regular)
	assert.NoError(t, err)
	assert.InDelta(t, 100.00, price, 1e-9)

	onSale := &models.Product{Price: 200.00, OnSale: true, DiscountPercentage: 25}
	price, err = EffectiveUnitPrice(onSale)
	assert.NoError(t, err)
	assert.InDelta(t, 150.00, price, 1e-9)

	oddSale := &models.Product{Price: 199.99, OnSale: true, DiscountPercentage: 25}
	price, err = EffectiveUnitPrice(oddSale)
	assert.NoError(t, err)
	assert.InDelta(t, 149.99, price, 1e-9)

	// On-sale flag without a discount percentage changes nothing
	flagOnly := &models.Product{Price: 80.00, OnSale: true}
	price, err = EffectiveUnitPrice(flagOnly)
	assert.NoError(t, err)
	assert.InDelta(t, 80.00, price, 1e-9)

	_, err = EffectiveUnitPrice(nil)
	assert.ErrorIs(t, err, ErrNilProduct)
}

func TestLineTotal(t *testing.T) {
	p := &models.Product{Price: 33.33}

	total, err := LineTotal(p, 3)
	assert.NoError(t, err)
	assert.InDelta(t, 99.99, total, 1e-9)

	_, err = LineTotal(p, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = LineTotal(p, -2)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = LineTotal(nil, 1)
	assert.ErrorIs(t, err, ErrNilProduct)
}

func TestLineTotalRoundsOnceAtLineGranularity(t *testing.T) {
	// 149.9925 rounds to 149.99 as a unit price; the line multiplies the
	// rounded unit instead of rounding the product of raw values.
	p := &models.Product{Price: 199.99, OnSale: true, DiscountPercentage: 25}

	total, err := LineTotal(p, 100)
	assert.NoError(t, err)
	assert.InDelta(t, 14999.00, total, 1e-6)
}

func TestOrderTotal(t *testing.T) {
	// Scenario A: 3 x 100.00 plus delivery 20 and VAT 15
	total := OrderTotal([]float64{300.00}, 20, 15, 0, 0)
	assert.InDelta(t, 335.00, total, 1e-9)

	// Reward and coupon deductions
	total = OrderTotal([]float64{300.00}, 20, 15, 50, 50)
	assert.InDelta(t, 235.00, total, 1e-9)

	// Clamped at zero when deductions exceed the subtotal
	total = OrderTotal([]float64{40.00}, 0, 0, 100, 0)
	assert.Zero(t, total)

	// Empty cart
	total = OrderTotal(nil, 0, 0, 0, 0)
	assert.Zero(t, total)
}

func TestDevEarnings(t *testing.T) {
	assert.InDelta(t, 30.00, DevEarnings(100.00, 3, 10), 1e-9)
	assert.Zero(t, DevEarnings(100.00, 3, 0))
	assert.InDelta(t, 4.50, DevEarnings(29.99, 3, 5), 1e-9)
}

func TestRound2(t *testing.T) {
	assert.InDelta(t, 1.01, Round2(1.014), 1e-9)
	assert.InDelta(t, 1.02, Round2(1.016), 1e-9)
	assert.InDelta(t, -1.0, Round2(-1.004), 1e-9)
}
