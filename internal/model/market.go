package model

import (
	"sort"
	"time"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// HL2 returns the median price of the bar.
func (b OHLCV) HL2() float64 {
	return (b.High + b.Low) / 2
}

// Series is the candle history of one asset, ascending by time with no
// duplicate timestamps. Treat it as read-only once built.
type Series struct {
	Symbol string
	Bars   []OHLCV
}

// NewSeries copies bars into a Series, sorting them by time and keeping the
// last bar seen for any repeated timestamp.
func NewSeries(symbol string, bars []OHLCV) Series {
	sorted := make([]OHLCV, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	out := sorted[:0]
	for _, b := range sorted {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return Series{Symbol: symbol, Bars: out}
}

// Len returns the number of bars.
func (s Series) Len() int { return len(s.Bars) }

// Empty reports whether the series holds no bars.
func (s Series) Empty() bool { return len(s.Bars) == 0 }

// Last returns the most recent bar. It panics on an empty series.
func (s Series) Last() OHLCV { return s.Bars[len(s.Bars)-1] }

// Highs returns the high of every bar.
func (s Series) Highs() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.High
	}
	return out
}

// Lows returns the low of every bar.
func (s Series) Lows() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Low
	}
	return out
}

// Closes returns the close of every bar.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// HL2s returns the median price of every bar.
func (s Series) HL2s() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.HL2()
	}
	return out
}
