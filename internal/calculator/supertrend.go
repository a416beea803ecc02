package calculator

import (
	"fmt"

	"CoinScout/internal/model"
)

const (
	// SuperTrendPeriod is the ATR period used by the engine.
	SuperTrendPeriod = 10
	// SuperTrendMultiplier scales the ATR band.
	SuperTrendMultiplier = 3.0
)

// SuperTrendSignal returns +1 when the latest close sits above the lower
// SuperTrend band (hl2 - multiplier*ATR), -1 otherwise. Without enough bars
// for the ATR it returns 0 and an ErrCompute error.
func SuperTrendSignal(series model.Series, period int, multiplier float64) (float64, error) {
	atr, err := CalculateATR(series, period)
	if err != nil {
		return 0, fmt.Errorf("supertrend(%d): %w", period, err)
	}
	last := series.Last()
	lowerBand := last.HL2() - multiplier*atr
	if last.Close > lowerBand {
		return 1, nil
	}
	return -1, nil
}
