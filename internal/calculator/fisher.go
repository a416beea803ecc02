package calculator

import (
	"fmt"
	"math"

	"CoinScout/internal/model"
)

// FisherPeriod is the trailing window used by the engine.
const FisherPeriod = 10

// fisherClamp keeps atanh finite.
const fisherClamp = 0.999

// FisherTransform returns the Fisher Transform of the median price at the
// most recent bar, using the min/max of the last n median prices.
// A series shorter than n yields 0 and an ErrCompute error.
func FisherTransform(series model.Series, n int) (float64, error) {
	if series.Len() < n {
		return 0, fmt.Errorf("fisher(%d): %w: %d bars", n, model.ErrCompute, series.Len())
	}
	hl2 := series.HL2s()
	high, low, err := TrailingRange(hl2, n)
	if err != nil {
		return 0, fmt.Errorf("fisher(%d): %w", n, err)
	}
	v := RangePosition(hl2[len(hl2)-1], high, low)
	v = math.Max(-fisherClamp, math.Min(fisherClamp, v))
	return math.Atanh(v), nil
}
