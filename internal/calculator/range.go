package calculator

import (
	"errors"
	"fmt"
	"math"

	"CoinScout/internal/model"
)

// TrailingRange scans the last n values and returns their high and low.
func TrailingRange(values []float64, n int) (high, low float64, err error) {
	if n <= 0 {
		return 0, 0, errors.New("window must be positive")
	}
	if len(values) < n {
		return 0, 0, fmt.Errorf("%w: need %d values for range, have %d", model.ErrCompute, n, len(values))
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := len(values) - n; i < len(values); i++ {
		if values[i] > high {
			high = values[i]
		}
		if values[i] < low {
			low = values[i]
		}
	}
	return high, low, nil
}

// RangePosition maps current into [-1, 1] relative to the range, where low
// maps to -1 and high to +1. A degenerate range yields 0.
func RangePosition(current, high, low float64) float64 {
	v := 2 * ((current-low)/(high-low) - 0.5)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
