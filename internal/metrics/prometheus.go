// Package metrics exposes Prometheus instrumentation of the analysis loop.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder records analysis metrics. A nil *Recorder discards everything.
type Recorder struct {
	cycles        *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	assets        *prometheus.CounterVec
	notifications *prometheus.CounterVec
	composite     *prometheus.GaugeVec
	running       prometheus.Gauge
}

// New registers the metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Recorder{
		cycles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinscout_cycles_total",
				Help: "Total number of analysis cycles by outcome",
			},
			[]string{"outcome"},
		),
		cycleDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "coinscout_cycle_duration_seconds",
				Help:    "Duration of analysis cycles in seconds",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
		),
		assets: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinscout_assets_total",
				Help: "Total number of per-asset evaluations by outcome",
			},
			[]string{"outcome"},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinscout_notifications_total",
				Help: "Total number of suggestion notifications by outcome",
			},
			[]string{"outcome"},
		),
		composite: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coinscout_composite_score",
				Help: "Latest composite score for a symbol",
			},
			[]string{"symbol"},
		),
		running: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "coinscout_running",
				Help: "1 while the analysis loop is running",
			},
		),
	}
}

// RecordCycle records a finished cycle with outcome completed or interrupted.
func (r *Recorder) RecordCycle(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.cycles.WithLabelValues(outcome).Inc()
	r.cycleDuration.Observe(d.Seconds())
}

// RecordAsset records one asset outcome: scored, skipped (market data
// unavailable), failed (compute error or panic) or error.
func (r *Recorder) RecordAsset(outcome string) {
	if r == nil {
		return
	}
	r.assets.WithLabelValues(outcome).Inc()
}

// RecordNotification records a delivered or failed notification.
func (r *Recorder) RecordNotification(outcome string) {
	if r == nil {
		return
	}
	r.notifications.WithLabelValues(outcome).Inc()
}

// RecordComposite records the latest composite score for a symbol.
func (r *Recorder) RecordComposite(symbol string, score float64) {
	if r == nil {
		return
	}
	r.composite.WithLabelValues(symbol).Set(score)
}

// SetRunning sets the running gauge.
func (r *Recorder) SetRunning(running bool) {
	if r == nil {
		return
	}
	if running {
		r.running.Set(1)
		return
	}
	r.running.Set(0)
}
