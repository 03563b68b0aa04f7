package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Tolerance is the band within which two independently computed currency totals
// are treated as equal (guards against float drift between client and server).
var Tolerance = decimal.NewFromFloat(0.01)

// UtilityCost computes usage * rate, rounded to 2 decimals half away from zero.
// Rounding happens per cost component, so the stored total is always the exact
// sum of the stored components.
func UtilityCost(usage float64, rate decimal.Decimal) (decimal.Decimal, error) {
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: got %s", ErrInvalidRate, rate)
	}
	if usage < 0 {
		return decimal.Zero, fmt.Errorf("%w: usage %v is negative", ErrInvalidCostComponent, usage)
	}
	return decimal.NewFromFloat(usage).Mul(rate).Round(2), nil
}

// Total sums the four invoice cost components. Every component must be non-negative.
func Total(roomPrice, electricCost, waterCost, serviceCost decimal.Decimal) (decimal.Decimal, error) {
	for _, c := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"room price", roomPrice},
		{"electric cost", electricCost},
		{"water cost", waterCost},
		{"service cost", serviceCost},
	} {
		if c.value.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: %s is %s", ErrInvalidCostComponent, c.name, c.value)
		}
	}
	return roomPrice.Add(electricCost).Add(waterCost).Add(serviceCost), nil
}

// WithinTolerance reports whether two amounts differ by at most Tolerance.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}
