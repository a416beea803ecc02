package collector

import (
	"context"
	"strings"
	"sync"
	"time"

	"CoinScout/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	mu sync.Mutex

	Price      float64
	Prices     map[string]float64
	Bars       map[string][]model.OHLCV
	CandleErrs map[string]error
	PriceErrs  map[string]error
	// OnFetch runs before candles are returned for a symbol.
	OnFetch func(symbol string)

	calls []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCandles(_ context.Context, symbol string, since time.Time, granularity time.Duration) (model.Series, error) {
	key := strings.ToUpper(symbol)
	m.mu.Lock()
	m.calls = append(m.calls, key)
	hook := m.OnFetch
	err := m.CandleErrs[key]
	bars, ok := m.Bars[key]
	price := m.priceLocked(key)
	m.mu.Unlock()

	if hook != nil {
		hook(key)
	}
	if err != nil {
		return model.Series{}, err
	}
	if !ok {
		bars = generateMockBars(price, since, granularity, 120)
	}
	return model.NewSeries(key, bars), nil
}

func (m *MockFetcher) FetchLastPrice(_ context.Context, symbol string) (float64, error) {
	key := strings.ToUpper(symbol)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.PriceErrs[key]; err != nil {
		return 0, err
	}
	return m.priceLocked(key), nil
}

// Calls returns the symbols whose candles were requested, in order.
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockFetcher) priceLocked(key string) float64 {
	if p, ok := m.Prices[key]; ok {
		return p
	}
	return m.Price
}

func generateMockBars(basePrice float64, since time.Time, step time.Duration, count int) []model.OHLCV {
	if step <= 0 {
		step = time.Hour
	}
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   since.Add(time.Duration(i) * step),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
