package calculator

import (
	"errors"
	"fmt"

	"CoinScout/internal/model"
)

// CalculateSMA computes the simple moving average of the last period values.
func CalculateSMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, fmt.Errorf("%w: need %d values for SMA, have %d", model.ErrCompute, period, len(values))
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// TrueRanges returns the true range of every bar. The first bar has no
// previous close and contributes High-Low.
func TrueRanges(series model.Series) []float64 {
	trs := make([]float64, series.Len())
	for i, b := range series.Bars {
		tr := b.High - b.Low
		if i > 0 {
			prev := series.Bars[i-1].Close
			tr = max(tr, abs(b.High-prev), abs(b.Low-prev))
		}
		trs[i] = tr
	}
	return trs
}

// CalculateATR returns the simple rolling mean of the last period true ranges.
func CalculateATR(series model.Series, period int) (float64, error) {
	return CalculateSMA(TrueRanges(series), period)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
