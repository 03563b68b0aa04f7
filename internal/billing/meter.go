package billing

import (
	"fmt"
	"math"
)

// ResolvePreviousReading picks the baseline for the next billing period.
// Precedence: the "after" reading wins when set (a newer reading was recorded
// outside invoicing), otherwise the period-opening "now" reading.
func ResolvePreviousReading(now float64, after *float64) float64 {
	if after != nil {
		return *after
	}
	return now
}

// ValidateReading checks a proposed reading against the previous baseline and
// returns the usage delta. Cumulative counters never decrease, so a regression
// means a data-entry mistake rather than negative consumption.
func ValidateReading(prev, next float64) (float64, error) {
	if math.IsNaN(next) || math.IsInf(next, 0) {
		return 0, fmt.Errorf("%w: reading %v is not a finite number", ErrInvalidMeterReading, next)
	}
	if math.IsNaN(prev) || math.IsInf(prev, 0) {
		return 0, fmt.Errorf("%w: previous reading %v is not a finite number", ErrInvalidMeterReading, prev)
	}
	if next < prev {
		return 0, fmt.Errorf("%w: new reading %v < previous %v", ErrMeterRegression, next, prev)
	}
	return next - prev, nil
}
