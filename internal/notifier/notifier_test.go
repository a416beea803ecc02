package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinScout/internal/httpclient"
	"CoinScout/internal/model"
	"CoinScout/internal/state"
)

func TestFormatSuggestion(t *testing.T) {
	got := FormatSuggestion("BTC", model.Suggestion{BuyPrice: "64123.46", SellPrice: "73741.97"})
	assert.Equal(t, "BTC $64123.46 al $73741.97 sat emri ver", got)
}

func TestFormatRanking(t *testing.T) {
	assert.Contains(t, FormatRanking(nil), "Henüz")

	r := &model.Ranking{
		FinishedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Top: []model.RankedAsset{
			{Rank: 1, Symbol: "XRP", Composite: 2.49, Confidence: 24},
			{Rank: 2, Symbol: "ETH", Composite: -0.35, Confidence: -3},
		},
		Notifications: []model.Notification{{Symbol: "XRP", Message: "XRP $0.51 al $0.59 sat emri ver"}},
		Skipped:       []model.SkippedAsset{{Symbol: "STORJ"}, {Symbol: "EIGEN"}},
	}
	out := FormatRanking(r)
	assert.Contains(t, out, "1. XRP  +2.490  %24 doğruluk")
	assert.Contains(t, out, "2. ETH  -0.350  %-3 doğruluk")
	assert.Contains(t, out, "XRP $0.51 al $0.59 sat emri ver")
	assert.Contains(t, out, "Atlanan: STORJ, EIGEN")
}

func TestFormatStatus(t *testing.T) {
	out := FormatStatus(state.Snapshot{
		Running:   true,
		StartedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		Elapsed:   90 * time.Minute,
		Cycles:    1234,
	})
	assert.Contains(t, out, "Çalışıyor")
	assert.Contains(t, out, "1 hour (1h30m0s)")
	assert.Contains(t, out, "1,234")

	out = FormatStatus(state.Snapshot{LastError: "boom"})
	assert.Contains(t, out, "Durduruldu")
	assert.Contains(t, out, "Son hata: boom")
}

func TestPushbulletNotifier(t *testing.T) {
	var got pushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pushes", r.URL.Path)
		if r.Header.Get("Access-Token") != "secret" {
			http.Error(w, `{"error":{"code":"invalid_access_token"}}`, http.StatusUnauthorized)
			return
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"active":true,"type":"note"}`)
	}))
	defer srv.Close()

	client := httpclient.New(httpclient.Options{Timeout: 2 * time.Second, RequestsPerSec: 100})
	p := NewPushbulletNotifier(srv.URL, "secret", client)
	require.NoError(t, p.Send(context.Background(), "pol", "BTC $1.00 al $1.15 sat emri ver"))
	assert.Equal(t, pushRequest{Type: "note", Title: "pol", Body: "BTC $1.00 al $1.15 sat emri ver"}, got)

	bad := NewPushbulletNotifier(srv.URL, "wrong", client)
	err := bad.Send(context.Background(), "pol", "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNotificationDelivery)
	var statusErr *httpclient.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
}

func TestTelegramNotifier(t *testing.T) {
	var mu sync.Mutex
	var sent []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			fmt.Fprint(w, `{"ok":true,"result":{"id":7,"is_bot":true,"first_name":"coinscout","username":"coinscout_bot"}}`)
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			assert.Equal(t, "42", r.FormValue("chat_id"))
			mu.Lock()
			sent = append(sent, r.FormValue("text"))
			mu.Unlock()
			fmt.Fprint(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"},"text":"ok"}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tg, err := NewTelegramNotifier("123:abc", 42, srv.URL+"/bot%s/%s", srv.Client())
	require.NoError(t, err)
	assert.Equal(t, "coinscout_bot", tg.Bot.Self.UserName)

	require.NoError(t, tg.Send(context.Background(), "pol", "ETH $3150.42 al $3622.98 sat emri ver"))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"pol\nETH $3150.42 al $3622.98 sat emri ver"}, sent)
}

type flakyNotifier struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (f *flakyNotifier) Name() string { return "flaky" }

func (f *flakyNotifier) Send(context.Context, string, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return errors.New("unreachable")
	}
	return nil
}

func TestRetrying(t *testing.T) {
	flaky := &flakyNotifier{failures: 2}
	r := WithRetry(flaky, 3, time.Millisecond, zerolog.Nop())
	require.NoError(t, r.Send(context.Background(), "pol", "x"))
	assert.Equal(t, 3, flaky.calls)

	down := &flakyNotifier{failures: 100}
	r = WithRetry(down, 2, time.Millisecond, zerolog.Nop())
	err := r.Send(context.Background(), "pol", "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNotificationDelivery)
	assert.Equal(t, 3, down.calls)
}
