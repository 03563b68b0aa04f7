package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestUtilityCost(t *testing.T) {
	t.Run("multiplies usage by rate", func(t *testing.T) {
		cost, err := UtilityCost(42.5, dec("3500"))
		require.NoError(t, err)
		assert.True(t, cost.Equal(dec("148750")), "got %s", cost)
	})

	t.Run("rounds to 2 decimals half away from zero", func(t *testing.T) {
		cost, err := UtilityCost(3, dec("0.125"))
		require.NoError(t, err)
		assert.Equal(t, "0.38", cost.StringFixed(2))
	})

	t.Run("zero usage costs nothing", func(t *testing.T) {
		cost, err := UtilityCost(0, dec("3500"))
		require.NoError(t, err)
		assert.True(t, cost.IsZero())
	})

	t.Run("rejects negative rate", func(t *testing.T) {
		_, err := UtilityCost(10, dec("-1"))
		assert.ErrorIs(t, err, ErrInvalidRate)
	})

	t.Run("rejects negative usage", func(t *testing.T) {
		_, err := UtilityCost(-1, dec("3500"))
		assert.ErrorIs(t, err, ErrInvalidCostComponent)
	})
}

func TestTotal(t *testing.T) {
	t.Run("sums all components", func(t *testing.T) {
		total, err := Total(dec("2000000"), dec("148750"), dec("80000"), dec("150000"))
		require.NoError(t, err)
		assert.True(t, total.Equal(dec("2378750")), "got %s", total)
	})

	t.Run("rejects any negative component", func(t *testing.T) {
		_, err := Total(dec("2000000"), dec("-1"), dec("0"), dec("0"))
		assert.ErrorIs(t, err, ErrInvalidCostComponent)

		_, err = Total(dec("2000000"), dec("0"), dec("0"), dec("-0.01"))
		assert.ErrorIs(t, err, ErrInvalidCostComponent)
	})
}

func TestWithinTolerance(t *testing.T) {
	assert.True(t, WithinTolerance(dec("100.00"), dec("100.01")))
	assert.True(t, WithinTolerance(dec("100.01"), dec("100.00")))
	assert.False(t, WithinTolerance(dec("100.00"), dec("100.02")))
}
