package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"CoinScout/internal/httpclient"
	"CoinScout/internal/model"
)

// BinanceFetcher implements Fetcher using the Binance spot REST API.
type BinanceFetcher struct {
	BaseURL string
	Quote   string
	Client  *httpclient.Client
}

// NewBinanceFetcher creates a new fetcher quoting every asset against quote (e.g. USDT).
func NewBinanceFetcher(baseURL, quote string, client *httpclient.Client) *BinanceFetcher {
	return &BinanceFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Quote:   strings.ToUpper(quote),
		Client:  client,
	}
}

func (f *BinanceFetcher) Name() string { return "binance" }

// Pair maps an asset symbol to the exchange pair, e.g. btc -> BTCUSDT.
func (f *BinanceFetcher) Pair(symbol string) string {
	return strings.ToUpper(symbol) + f.Quote
}

var binanceIntervals = map[time.Duration]string{
	time.Minute:      "1m",
	5 * time.Minute:  "5m",
	15 * time.Minute: "15m",
	30 * time.Minute: "30m",
	time.Hour:        "1h",
	4 * time.Hour:    "4h",
	24 * time.Hour:   "1d",
}

// FetchCandles returns klines opened at or after since.
func (f *BinanceFetcher) FetchCandles(ctx context.Context, symbol string, since time.Time, granularity time.Duration) (model.Series, error) {
	interval, ok := binanceIntervals[granularity]
	if !ok {
		return model.Series{}, fmt.Errorf("binance: unsupported granularity %s", granularity)
	}
	q := url.Values{}
	q.Set("symbol", f.Pair(symbol))
	q.Set("interval", interval)
	q.Set("startTime", strconv.FormatInt(since.UnixMilli(), 10))
	q.Set("limit", "1000")
	endpoint := f.BaseURL + "/api/v3/klines?" + q.Encode()

	resp, err := f.Client.Get(ctx, endpoint, nil)
	if err != nil {
		return model.Series{}, fmt.Errorf("binance klines %s: %w", f.Pair(symbol), err)
	}
	defer resp.Body.Close()

	var rows [][]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return model.Series{}, fmt.Errorf("binance decode klines: %w", err)
	}
	bars := make([]model.OHLCV, 0, len(rows))
	for i, row := range rows {
		bar, err := parseKline(row)
		if err != nil {
			return model.Series{}, fmt.Errorf("binance kline %d: %w", i, err)
		}
		bars = append(bars, bar)
	}
	return model.NewSeries(strings.ToUpper(symbol), bars), nil
}

// FetchLastPrice returns the latest trade price of the pair.
func (f *BinanceFetcher) FetchLastPrice(ctx context.Context, symbol string) (float64, error) {
	endpoint := f.BaseURL + "/api/v3/ticker/price?symbol=" + url.QueryEscape(f.Pair(symbol))
	resp, err := f.Client.Get(ctx, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("binance ticker %s: %w", f.Pair(symbol), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("binance read ticker: %w", err)
	}
	var result struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("binance decode ticker: %w", err)
	}
	price, err := strconv.ParseFloat(result.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("binance ticker price %q: %w", result.Price, err)
	}
	return price, nil
}

// parseKline decodes [openTime, "open", "high", "low", "close", "volume", ...].
func parseKline(row []json.RawMessage) (model.OHLCV, error) {
	if len(row) < 6 {
		return model.OHLCV{}, fmt.Errorf("expected at least 6 fields, got %d", len(row))
	}
	var openTime int64
	if err := json.Unmarshal(row[0], &openTime); err != nil {
		return model.OHLCV{}, fmt.Errorf("open time: %w", err)
	}
	var fields [5]float64
	for i := range fields {
		var s string
		if err := json.Unmarshal(row[i+1], &s); err != nil {
			return model.OHLCV{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.OHLCV{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		fields[i] = v
	}
	return model.OHLCV{
		Time:   time.UnixMilli(openTime).UTC(),
		Open:   fields[0],
		High:   fields[1],
		Low:    fields[2],
		Close:  fields[3],
		Volume: fields[4],
	}, nil
}
