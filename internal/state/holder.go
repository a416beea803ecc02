// Package state holds the run flag and the latest ranking shared between the
// analysis worker and the control surfaces.
package state

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"CoinScout/internal/model"
)

// Snapshot is a point-in-time copy of the run state.
type Snapshot struct {
	Running   bool           `json:"running"`
	StartedAt time.Time      `json:"started_at,omitempty"`
	Elapsed   time.Duration  `json:"elapsed"`
	Cycles    int            `json:"cycles"`
	LastError string         `json:"last_error,omitempty"`
	Latest    *model.Ranking `json:"latest,omitempty"`
}

// Holder guards the run state. The worker writes, everyone else reads copies.
type Holder struct {
	mu        sync.Mutex
	clock     clockwork.Clock
	running   bool
	startedAt time.Time
	cycles    int
	lastErr   string
	latest    *model.Ranking
}

// NewHolder creates a stopped Holder.
func NewHolder(clk clockwork.Clock) *Holder {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	return &Holder{clock: clk}
}

// MarkRunning moves Stopped to Running and records the start time.
// It returns false if already running.
func (h *Holder) MarkRunning(now time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return false
	}
	h.running = true
	h.startedAt = now
	return true
}

// MarkStopped moves Running to Stopped. It returns false if already stopped.
func (h *Holder) MarkStopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return false
	}
	h.running = false
	return true
}

// Running reports the run flag.
func (h *Holder) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

// SetRanking publishes the ranking of a finished cycle.
func (h *Holder) SetRanking(r *model.Ranking) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = r.Clone()
	h.cycles++
	h.lastErr = ""
}

// SetError records the failure of the last cycle attempt.
func (h *Holder) SetError(err error) {
	if err == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastErr = err.Error()
}

// Latest returns a copy of the most recent ranking, or nil.
func (h *Holder) Latest() *model.Ranking {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest.Clone()
}

// GetState returns a copy of the current state.
func (h *Holder) GetState() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := Snapshot{
		Running:   h.running,
		StartedAt: h.startedAt,
		Cycles:    h.cycles,
		LastError: h.lastErr,
		Latest:    h.latest.Clone(),
	}
	if h.running && !h.startedAt.IsZero() {
		s.Elapsed = h.clock.Now().Sub(h.startedAt)
	}
	return s
}
