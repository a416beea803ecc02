package collector

import (
	"context"
	"time"

	"CoinScout/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchCandles(ctx context.Context, symbol string, since time.Time, granularity time.Duration) (model.Series, error)
	FetchLastPrice(ctx context.Context, symbol string) (float64, error)
	Name() string
}
