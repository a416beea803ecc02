package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"CoinScout/internal/collector"
	"CoinScout/internal/metrics"
	"CoinScout/internal/model"
	"CoinScout/internal/recorder"
	"CoinScout/internal/state"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// stubCollector returns canned indicator sets, optionally after a delay.
type stubCollector struct {
	sets   map[string]model.IndicatorSet
	errs   map[string]error
	delays map[string]time.Duration
	panics map[string]bool
}

func (s *stubCollector) Collect(_ context.Context, symbol string) (*model.IndicatorSet, error) {
	if d := s.delays[symbol]; d > 0 {
		time.Sleep(d)
	}
	if s.panics[symbol] {
		panic("corrupt series")
	}
	if err := s.errs[symbol]; err != nil {
		return nil, err
	}
	set, ok := s.sets[symbol]
	if !ok {
		return nil, model.ErrEmptySeries
	}
	return &set, nil
}

// recordingNotifier captures sent messages; symbols in fail are rejected.
type recordingNotifier struct {
	mu     sync.Mutex
	titles []string
	sent   []string
	fail   map[string]bool
}

func (n *recordingNotifier) Name() string { return "recording" }

func (n *recordingNotifier) Send(_ context.Context, title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	symbol, _, _ := strings.Cut(body, " ")
	if n.fail[symbol] {
		return errors.New("device unreachable")
	}
	n.titles = append(n.titles, title)
	n.sent = append(n.sent, body)
	return nil
}

func (n *recordingNotifier) Sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent...)
}

func newTestCycle(universe []string, col AssetCollector, n *recordingNotifier, rec recorder.Recorder,
	m *metrics.Recorder, clk clockwork.Clock, workers int) *Cycle {
	return NewCycle(universe, col, n, rec, m, clk, CycleOptions{TopK: 4, Markup: 0.15, Workers: workers}, zerolog.Nop())
}

func newMockCollector(f *collector.MockFetcher, clk clockwork.Clock) *collector.Collector {
	return collector.NewCollector(f, nil, clk, collector.Options{}, zerolog.Nop())
}

// waitForTimers blocks until exactly n timers are armed on clk.
func waitForTimers(t *testing.T, clk *clockwork.FakeClock, n int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, clk.BlockUntilContext(ctx, n), "waiting for %d armed timers", n)
}

func newTestScheduler(c *Cycle, clk clockwork.Clock) *Scheduler {
	return New(c, state.NewHolder(clk), clk, nil, nil, zerolog.Nop())
}

func set(composite, price float64) model.IndicatorSet {
	return model.IndicatorSet{Fisher: composite, LastPrice: price, Candles: 120}
}
