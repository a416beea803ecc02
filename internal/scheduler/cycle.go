package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"CoinScout/internal/metrics"
	"CoinScout/internal/model"
	"CoinScout/internal/notifier"
	"CoinScout/internal/recorder"
	"CoinScout/internal/strategy"
)

// AssetCollector fetches market data for one asset and computes its indicators.
type AssetCollector interface {
	Collect(ctx context.Context, symbol string) (*model.IndicatorSet, error)
}

// CycleOptions tunes an analysis cycle.
type CycleOptions struct {
	TopK    int
	Markup  float64
	Workers int
	Title   string
}

// Cycle runs one full analysis pass over the universe.
type Cycle struct {
	Universe  []string
	Collector AssetCollector
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Metrics   *metrics.Recorder
	Clock     clockwork.Clock
	opts      CycleOptions
	log       zerolog.Logger
}

// NewCycle creates a Cycle. rec and m may be nil.
func NewCycle(universe []string, col AssetCollector, n notifier.Notifier, rec recorder.Recorder,
	m *metrics.Recorder, clk clockwork.Clock, opts CycleOptions, logger zerolog.Logger) *Cycle {
	if opts.TopK <= 0 {
		opts.TopK = strategy.TopK
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Title == "" {
		opts.Title = "pol"
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if n == nil {
		n = notifier.Discard{}
	}
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	return &Cycle{
		Universe:  append([]string(nil), universe...),
		Collector: col,
		Notifier:  n,
		Recorder:  rec,
		Metrics:   m,
		Clock:     clk,
		opts:      opts,
		log:       logger.With().Str("component", "cycle").Logger(),
	}
}

// Run scores every asset, ranks them and notifies the top entries.
// interrupted is polled before each asset is started; once it reports true
// the assets already in progress finish and Run returns ErrCycleInterrupted
// without ranking or notifying.
func (c *Cycle) Run(ctx context.Context, interrupted func() bool) (*model.Ranking, error) {
	if interrupted == nil {
		interrupted = func() bool { return false }
	}
	ranking := &model.Ranking{
		CycleID:   uuid.NewString(),
		StartedAt: c.Clock.Now(),
	}
	log := c.log.With().Str("cycle_id", ranking.CycleID).Logger()
	log.Info().Int("assets", len(c.Universe)).Msg("analysis cycle started")

	results, aborted := c.scoreAll(ctx, interrupted)
	if aborted {
		err := model.ErrCycleInterrupted
		if ctx.Err() != nil {
			err = fmt.Errorf("%w: %w", model.ErrCycleInterrupted, ctx.Err())
		}
		c.finish(ctx, ranking, "interrupted")
		log.Info().Msg("analysis cycle interrupted")
		return nil, err
	}

	var scores []model.AssetScore
	for _, res := range results {
		if !res.OK() {
			reason := "not evaluated"
			if res.Err != nil {
				reason = res.Err.Error()
			}
			log.Warn().Str("symbol", res.Symbol).Str("reason", reason).Msg("asset skipped")
			ranking.Skipped = append(ranking.Skipped, model.SkippedAsset{Symbol: res.Symbol, Reason: reason})
			c.Metrics.RecordAsset(assetOutcome(res.Err))
			continue
		}
		scores = append(scores, *res.Score)
		c.Metrics.RecordAsset("scored")
		c.Metrics.RecordComposite(res.Symbol, res.Score.Composite)
	}

	ranking.Entries, ranking.Top = strategy.Rank(scores, c.opts.TopK)
	ranking.Notifications = c.notifyTop(ctx, ranking.CycleID, ranking.Top, log)

	c.finish(ctx, ranking, "completed")
	log.Info().
		Int("scored", len(ranking.Entries)).
		Int("skipped", len(ranking.Skipped)).
		Int("sent", len(ranking.Notifications)).
		Dur("took", ranking.FinishedAt.Sub(ranking.StartedAt)).
		Msg("analysis cycle finished")
	return ranking, nil
}

// scoreAll evaluates the universe on a fixed worker pool. Results keep
// universe order whatever the completion order.
func (c *Cycle) scoreAll(ctx context.Context, interrupted func() bool) ([]model.AssetResult, bool) {
	results := make([]model.AssetResult, len(c.Universe))
	for i, sym := range c.Universe {
		results[i] = model.AssetResult{Index: i, Symbol: sym}
	}

	var aborted atomic.Bool
	stopped := func() bool {
		if aborted.Load() {
			return true
		}
		if interrupted() || ctx.Err() != nil {
			aborted.Store(true)
			return true
		}
		return false
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(c.opts.Workers, max(len(c.Universe), 1)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if stopped() {
					continue
				}
				results[idx] = c.evaluate(ctx, idx, c.Universe[idx])
			}
		}()
	}

	for i := range c.Universe {
		if stopped() {
			break
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results, aborted.Load()
}

func (c *Cycle) evaluate(ctx context.Context, idx int, symbol string) (res model.AssetResult) {
	res = model.AssetResult{Index: idx, Symbol: symbol}
	defer func() {
		if r := recover(); r != nil {
			res.Score = nil
			res.Err = fmt.Errorf("%w: panic while scoring %s: %v", model.ErrCompute, symbol, r)
		}
	}()

	ind, err := c.Collector.Collect(ctx, symbol)
	if err != nil {
		res.Err = err
		return res
	}
	score := strategy.Evaluate(symbol, *ind)
	score.ComputedAt = c.Clock.Now()
	res.Score = score
	return res
}

// notifyTop sends one suggestion per top entry in rank order and returns
// the delivered ones.
func (c *Cycle) notifyTop(ctx context.Context, cycleID string, top []model.RankedAsset, log zerolog.Logger) []model.Notification {
	var sent []model.Notification
	for _, ra := range top {
		suggestion := strategy.Suggest(ra.LastPrice, c.opts.Markup)
		n := model.Notification{
			Symbol:     ra.Symbol,
			Title:      c.opts.Title,
			Message:    notifier.FormatSuggestion(ra.Symbol, suggestion),
			Suggestion: suggestion,
		}

		if err := c.Notifier.Send(ctx, n.Title, n.Message); err != nil {
			log.Warn().Err(err).Str("symbol", ra.Symbol).Str("sink", c.Notifier.Name()).Msg("notification not delivered")
			c.Metrics.RecordNotification("failed")
			continue
		}
		n.Delivered = true
		n.SentAt = c.Clock.Now()
		sent = append(sent, n)
		c.Metrics.RecordNotification("delivered")
		log.Info().Str("symbol", ra.Symbol).Str("message", n.Message).Msg("notification sent")

		if err := c.Recorder.RecordNotification(ctx, &recorder.NotificationRecord{
			CycleID:   cycleID,
			Symbol:    n.Symbol,
			BuyPrice:  suggestion.BuyPrice,
			SellPrice: suggestion.SellPrice,
			Message:   n.Message,
			Sink:      c.Notifier.Name(),
			SentAt:    n.SentAt,
		}); err != nil {
			log.Error().Err(err).Str("symbol", ra.Symbol).Msg("record notification")
		}
	}
	return sent
}

func (c *Cycle) finish(ctx context.Context, r *model.Ranking, outcome string) {
	r.FinishedAt = c.Clock.Now()
	c.Metrics.RecordCycle(outcome, r.FinishedAt.Sub(r.StartedAt))

	// The summary is written even if ctx was cancelled mid-cycle.
	if err := c.Recorder.RecordCycle(context.WithoutCancel(ctx), &recorder.CycleRecord{
		CycleID:    r.CycleID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Scored:     len(r.Entries),
		Skipped:    len(r.Skipped),
		Sent:       len(r.Notifications),
		Outcome:    outcome,
	}); err != nil {
		c.log.Error().Err(err).Str("cycle_id", r.CycleID).Msg("record cycle")
	}
}

func assetOutcome(err error) string {
	switch {
	case errors.Is(err, model.ErrDataFetch):
		return "skipped"
	case errors.Is(err, model.ErrCompute):
		return "failed"
	default:
		return "error"
	}
}
