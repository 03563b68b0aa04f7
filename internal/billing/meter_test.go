package billing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func TestResolvePreviousReading(t *testing.T) {
	t.Run("uses now when after is unset", func(t *testing.T) {
		assert.Equal(t, 120.0, ResolvePreviousReading(120, nil))
	})

	t.Run("after wins when set", func(t *testing.T) {
		assert.Equal(t, 135.5, ResolvePreviousReading(120, f64(135.5)))
	})

	t.Run("after wins even when zero", func(t *testing.T) {
		// A meter replacement legitimately resets the counter to zero.
		assert.Equal(t, 0.0, ResolvePreviousReading(120, f64(0)))
	})
}

func TestValidateReading(t *testing.T) {
	t.Run("returns usage delta", func(t *testing.T) {
		usage, err := ValidateReading(100, 142.5)
		require.NoError(t, err)
		assert.Equal(t, 42.5, usage)
	})

	t.Run("equal readings mean zero usage", func(t *testing.T) {
		usage, err := ValidateReading(100, 100)
		require.NoError(t, err)
		assert.Equal(t, 0.0, usage)
	})

	t.Run("rejects regression", func(t *testing.T) {
		_, err := ValidateReading(100, 99.9)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMeterRegression)
	})

	t.Run("rejects NaN and infinite readings", func(t *testing.T) {
		_, err := ValidateReading(100, math.NaN())
		assert.ErrorIs(t, err, ErrInvalidMeterReading)

		_, err = ValidateReading(100, math.Inf(1))
		assert.ErrorIs(t, err, ErrInvalidMeterReading)

		_, err = ValidateReading(math.NaN(), 100)
		assert.ErrorIs(t, err, ErrInvalidMeterReading)
	})
}
