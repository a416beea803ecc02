// Package recorder keeps the history of delivered notifications and cycle summaries.
package recorder

import (
	"context"
	"time"
)

// NotificationRecord is one delivered order message.
type NotificationRecord struct {
	CycleID   string    `json:"cycle_id"`
	Symbol    string    `json:"symbol"`
	BuyPrice  string    `json:"buy_price"`
	SellPrice string    `json:"sell_price"`
	Message   string    `json:"message"`
	Sink      string    `json:"sink"`
	SentAt    time.Time `json:"sent_at"`
}

// CycleRecord summarizes one analysis cycle.
type CycleRecord struct {
	CycleID    string
	StartedAt  time.Time
	FinishedAt time.Time
	Scored     int
	Skipped    int
	Sent       int
	Outcome    string // "completed", "interrupted" or "failed"
}

// Recorder persists history for later review.
type Recorder interface {
	RecordNotification(ctx context.Context, rec *NotificationRecord) error
	RecordCycle(ctx context.Context, rec *CycleRecord) error
	RecentNotifications(ctx context.Context, limit int) ([]NotificationRecord, error)
	Close() error
}
