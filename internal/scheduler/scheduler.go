// Package scheduler runs analysis cycles back to back while the bot is running.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"CoinScout/internal/metrics"
	"CoinScout/internal/model"
	"CoinScout/internal/state"
)

// NewSchedule returns the inter-cycle schedule: a constant delay of interval,
// or the standard five-field cron expression expr when it is set.
func NewSchedule(interval time.Duration, expr string) (cron.Schedule, error) {
	if expr != "" {
		s, err := cron.ParseStandard(expr)
		if err != nil {
			return nil, fmt.Errorf("%w: schedule %q: %w", model.ErrConfiguration, expr, err)
		}
		return s, nil
	}
	return cron.Every(interval), nil
}

// Scheduler drives Cycle on a dedicated worker goroutine.
// It has two states, Running and Stopped, kept in a state.Holder.
type Scheduler struct {
	Cycle    *Cycle
	State    *state.Holder
	Clock    clockwork.Clock
	Schedule cron.Schedule
	Metrics  *metrics.Recorder
	log      zerolog.Logger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// New creates a stopped Scheduler.
func New(cycle *Cycle, holder *state.Holder, clk clockwork.Clock, schedule cron.Schedule,
	m *metrics.Recorder, logger zerolog.Logger) *Scheduler {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	if schedule == nil {
		schedule = cron.Every(time.Hour)
	}
	return &Scheduler{
		Cycle:    cycle,
		State:    holder,
		Clock:    clk,
		Schedule: schedule,
		Metrics:  m,
		log:      logger.With().Str("component", "scheduler").Logger(),
	}
}

// Start moves Stopped to Running and launches the worker. It returns false
// and does nothing if already running.
func (s *Scheduler) Start(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked(ctx)
}

// Stop moves Running to Stopped. The cycle in progress finishes the assets it
// has started and then ends; network calls are not cancelled.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked()
}

// Toggle flips the state and returns whether the scheduler is now running.
func (s *Scheduler) Toggle(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.State.Running() {
		s.stopLocked()
		return false
	}
	s.startLocked(ctx)
	return true
}

// Wait blocks until the current worker, if any, has exited.
func (s *Scheduler) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Snapshot returns the current run state and latest ranking.
func (s *Scheduler) Snapshot() state.Snapshot {
	return s.State.GetState()
}

func (s *Scheduler) startLocked(ctx context.Context) bool {
	if !s.State.MarkRunning(s.Clock.Now()) {
		s.log.Info().Msg("start ignored, already running")
		return false
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	prev := s.done
	s.stop, s.done = stop, done

	go s.loop(ctx, stop, done, prev)

	s.Metrics.SetRunning(true)
	s.log.Info().Msg("scheduler started")
	return true
}

func (s *Scheduler) stopLocked() bool {
	if !s.State.MarkStopped() {
		return false
	}
	close(s.stop)
	s.Metrics.SetRunning(false)
	s.log.Info().Msg("scheduler stopped")
	return true
}

func (s *Scheduler) loop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}, prev <-chan struct{}) {
	defer close(done)
	// A restarted scheduler waits for the previous worker to drain.
	if prev != nil {
		<-prev
	}

	interrupted := func() bool {
		select {
		case <-stop:
			return true
		default:
			return ctx.Err() != nil
		}
	}

	for {
		if interrupted() {
			s.exitOnCancel(ctx, stop)
			return
		}

		ranking, err := s.Cycle.Run(ctx, interrupted)
		if err != nil {
			s.State.SetError(err)
			s.log.Warn().Err(err).Msg("analysis cycle ended without ranking")
		} else {
			s.State.SetRanking(ranking)
		}
		if interrupted() {
			s.exitOnCancel(ctx, stop)
			return
		}

		now := s.Clock.Now()
		wait := s.Schedule.Next(now).Sub(now)
		s.log.Debug().Dur("wait", wait).Msg("waiting for next cycle")

		select {
		case <-stop:
			return
		case <-ctx.Done():
			s.exitOnCancel(ctx, stop)
			return
		case <-s.Clock.After(wait):
		}
	}
}

// exitOnCancel marks the scheduler stopped when the worker leaves because
// ctx ended rather than because Stop was called.
func (s *Scheduler) exitOnCancel(ctx context.Context, stop <-chan struct{}) {
	if ctx.Err() == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == stop {
		s.stopLocked()
	}
}
