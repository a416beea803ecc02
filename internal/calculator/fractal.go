package calculator

import (
	"fmt"

	"CoinScout/internal/model"
)

// fractalMargin is the number of bars required on each side of a fractal.
const fractalMargin = 2

// WilliamsFractal scans the series oldest to newest and reports the first
// fractal found: -1 for a bearish (high) fractal, +1 for a bullish (low)
// fractal. At a given bar the bearish test runs first. No fractal yields 0.
func WilliamsFractal(series model.Series) (float64, error) {
	n := series.Len()
	if n < 2*fractalMargin+1 {
		return 0, fmt.Errorf("fractal: %w: %d bars", model.ErrCompute, n)
	}
	highs := series.Highs()
	lows := series.Lows()
	for i := fractalMargin; i < n-fractalMargin; i++ {
		if isPeak(highs, i) {
			return -1, nil
		}
		if isTrough(lows, i) {
			return 1, nil
		}
	}
	return 0, nil
}

func isPeak(v []float64, i int) bool {
	for d := 1; d <= fractalMargin; d++ {
		if v[i] <= v[i-d] || v[i] <= v[i+d] {
			return false
		}
	}
	return true
}

func isTrough(v []float64, i int) bool {
	for d := 1; d <= fractalMargin; d++ {
		if v[i] >= v[i-d] || v[i] >= v[i+d] {
			return false
		}
	}
	return true
}
