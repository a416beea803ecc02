package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinScout/internal/model"
)

type fixedSentiment float64

func (f fixedSentiment) Score(context.Context, string) float64 { return float64(f) }

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestCollector(f Fetcher, s SentimentScorer) *Collector {
	return NewCollector(f, s, clockwork.NewFakeClockAt(now), Options{}, zerolog.Nop())
}

func TestCollect_ComputesIndicators(t *testing.T) {
	f := &MockFetcher{Price: 100}
	ind, err := newTestCollector(f, fixedSentiment(0.4)).Collect(context.Background(), "btc")
	require.NoError(t, err)

	assert.Equal(t, 120, ind.Candles)
	assert.Equal(t, 100.0, ind.LastPrice)
	assert.Equal(t, 0.4, ind.Sentiment)
	assert.Contains(t, []float64{-1, 0, 1}, ind.SuperTrend)
	assert.Contains(t, []float64{-1, 0, 1}, ind.Fractal)
	assert.Equal(t, []string{"BTC"}, f.Calls())
}

func TestCollect_ShortHistoryStillScores(t *testing.T) {
	bars := []model.OHLCV{
		{Time: now.Add(-2 * time.Hour), High: 2, Low: 1, Close: 1.5},
		{Time: now.Add(-time.Hour), High: 3, Low: 2, Close: 2.5},
	}
	f := &MockFetcher{Price: 2.5, Bars: map[string][]model.OHLCV{"ETH": bars}}
	ind, err := newTestCollector(f, nil).Collect(context.Background(), "eth")
	require.NoError(t, err)
	assert.Equal(t, 0.0, ind.Fisher)
	assert.Equal(t, 0.0, ind.SuperTrend)
	assert.Equal(t, 0.0, ind.Fractal)
	assert.Equal(t, 2, ind.Candles)
}

func TestCollect_FetchFailures(t *testing.T) {
	boom := errors.New("connection reset")
	tests := []struct {
		name  string
		f     *MockFetcher
		empty bool
	}{
		{"candles", &MockFetcher{Price: 1, CandleErrs: map[string]error{"XRP": boom}}, false},
		{"price", &MockFetcher{Price: 1, PriceErrs: map[string]error{"XRP": boom}}, false},
		{"empty series", &MockFetcher{Price: 1, Bars: map[string][]model.OHLCV{"XRP": {}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestCollector(tt.f, nil).Collect(context.Background(), "xrp")
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrDataFetch)
			assert.Equal(t, tt.empty, errors.Is(err, model.ErrEmptySeries))
		})
	}
}

func TestCollect_RequestsLookbackWindow(t *testing.T) {
	var gotSince time.Time
	f := &recordingFetcher{MockFetcher: MockFetcher{Price: 10}, since: &gotSince}
	_, err := newTestCollector(f, nil).Collect(context.Background(), "sol")
	require.NoError(t, err)
	assert.Equal(t, now.Add(-5*24*time.Hour), gotSince)
}

type recordingFetcher struct {
	MockFetcher
	since *time.Time
}

func (r *recordingFetcher) FetchCandles(ctx context.Context, symbol string, since time.Time, g time.Duration) (model.Series, error) {
	*r.since = since
	return r.MockFetcher.FetchCandles(ctx, symbol, since, g)
}
