package model

// IndicatorSet holds the per-asset component scores of one cycle.
type IndicatorSet struct {
	Fisher     float64
	SuperTrend float64 // -1, 0 or +1
	Fractal    float64 // -1, 0 or +1
	Sentiment  float64 // roughly -1 .. +1
	LastPrice  float64
	Candles    int
}
