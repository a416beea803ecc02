package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"CoinScout/internal/calculator"
	"CoinScout/internal/model"
)

// SentimentScorer yields the headline sentiment of one asset. It never fails.
type SentimentScorer interface {
	Score(ctx context.Context, symbol string) float64
}

// Options configures the data window a Collector requests.
type Options struct {
	Lookback    time.Duration
	Granularity time.Duration
}

// Collector orchestrates data fetching and indicator computation for one asset.
type Collector struct {
	Fetcher   Fetcher
	Sentiment SentimentScorer
	Clock     clockwork.Clock
	opts      Options
	log       zerolog.Logger
}

// NewCollector creates a new Collector. sentiment may be nil.
func NewCollector(fetcher Fetcher, sentiment SentimentScorer, clk clockwork.Clock, opts Options, logger zerolog.Logger) *Collector {
	if opts.Lookback <= 0 {
		opts.Lookback = 5 * 24 * time.Hour
	}
	if opts.Granularity <= 0 {
		opts.Granularity = time.Hour
	}
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	return &Collector{
		Fetcher:   fetcher,
		Sentiment: sentiment,
		Clock:     clk,
		opts:      opts,
		log:       logger.With().Str("component", "collector").Logger(),
	}
}

// Collect fetches market data for symbol and computes all indicators.
// Fetch failures and empty series are returned wrapped in model.ErrDataFetch;
// indicator failures only zero the affected indicator.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.IndicatorSet, error) {
	symbol = strings.ToUpper(symbol)
	log := c.log.With().Str("symbol", symbol).Logger()

	since := c.Clock.Now().Add(-c.opts.Lookback)
	series, err := c.Fetcher.FetchCandles(ctx, symbol, since, c.opts.Granularity)
	if err != nil {
		return nil, fmt.Errorf("fetch candles %s: %w: %w", symbol, model.ErrDataFetch, err)
	}
	if series.Empty() {
		return nil, fmt.Errorf("fetch candles %s: %w", symbol, model.ErrEmptySeries)
	}
	price, err := c.Fetcher.FetchLastPrice(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch last price %s: %w: %w", symbol, model.ErrDataFetch, err)
	}

	ind := &model.IndicatorSet{LastPrice: price, Candles: series.Len()}

	if v, err := calculator.FisherTransform(series, calculator.FisherPeriod); err != nil {
		log.Warn().Err(err).Msg("fisher transform unavailable, using 0")
	} else {
		ind.Fisher = v
	}

	if v, err := calculator.SuperTrendSignal(series, calculator.SuperTrendPeriod, calculator.SuperTrendMultiplier); err != nil {
		log.Warn().Err(err).Msg("supertrend unavailable, using 0")
	} else {
		ind.SuperTrend = v
	}

	if v, err := calculator.WilliamsFractal(series); err != nil {
		log.Warn().Err(err).Msg("williams fractal unavailable, using 0")
	} else {
		ind.Fractal = v
	}

	if c.Sentiment != nil {
		ind.Sentiment = c.Sentiment.Score(ctx, symbol)
	}

	log.Debug().
		Int("candles", ind.Candles).
		Float64("price", price).
		Float64("fisher", ind.Fisher).
		Float64("supertrend", ind.SuperTrend).
		Float64("fractal", ind.Fractal).
		Float64("sentiment", ind.Sentiment).
		Msg("indicators computed")
	return ind, nil
}
