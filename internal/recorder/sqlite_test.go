package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRecorder(t *testing.T) {
	ctx := context.Background()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"), zerolog.Nop())
	require.NoError(t, err)
	defer r.Close()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, sym := range []string{"BTC", "ETH", "XRP"} {
		require.NoError(t, r.RecordNotification(ctx, &NotificationRecord{
			CycleID:   "cycle-1",
			Symbol:    sym,
			BuyPrice:  "1.00",
			SellPrice: "1.15",
			Message:   sym + " $1.00 al $1.15 sat emri ver",
			Sink:      "pushbullet",
			SentAt:    base.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, r.RecordCycle(ctx, &CycleRecord{
		CycleID: "cycle-1", StartedAt: base, FinishedAt: base.Add(time.Minute),
		Scored: 28, Skipped: 2, Sent: 3, Outcome: "completed",
	}))
	assert.Error(t, r.RecordCycle(ctx, &CycleRecord{CycleID: "cycle-1", StartedAt: base, FinishedAt: base}),
		"cycle ids are unique")

	got, err := r.RecentNotifications(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "XRP", got[0].Symbol)
	assert.Equal(t, "ETH", got[1].Symbol)
	assert.Equal(t, base.Add(2*time.Second), got[0].SentAt)
	assert.Equal(t, "XRP $1.00 al $1.15 sat emri ver", got[0].Message)

	var scored, sent int
	require.NoError(t, r.db.QueryRow(`SELECT scored, sent FROM cycles WHERE cycle_id = ?`, "cycle-1").Scan(&scored, &sent))
	assert.Equal(t, 28, scored)
	assert.Equal(t, 3, sent)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordNotification(context.Background(), &NotificationRecord{}))
	got, err := r.RecentNotifications(context.Background(), 10)
	assert.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, r.Close())
}
