package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger zerolog.Logger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: logger.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS notifications (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			cycle_id   TEXT NOT NULL,
			symbol     TEXT NOT NULL,
			buy_price  TEXT,
			sell_price TEXT,
			message    TEXT,
			sink       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_ts ON notifications(timestamp)`,

		`CREATE TABLE IF NOT EXISTS cycles (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id    TEXT NOT NULL UNIQUE,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			scored      INTEGER,
			skipped     INTEGER,
			sent        INTEGER,
			outcome     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_started ON cycles(started_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordNotification(ctx context.Context, rec *NotificationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO notifications
		(timestamp, cycle_id, symbol, buy_price, sell_price, message, sink)
		VALUES (?,?,?,?,?,?,?)`,
		rec.SentAt.UnixMilli(), rec.CycleID, rec.Symbol,
		rec.BuyPrice, rec.SellPrice, rec.Message, rec.Sink,
	)
	return err
}

func (r *SQLiteRecorder) RecordCycle(ctx context.Context, rec *CycleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO cycles
		(cycle_id, started_at, finished_at, scored, skipped, sent, outcome)
		VALUES (?,?,?,?,?,?,?)`,
		rec.CycleID, rec.StartedAt.UnixMilli(), rec.FinishedAt.UnixMilli(),
		rec.Scored, rec.Skipped, rec.Sent, rec.Outcome,
	)
	return err
}

// RecentNotifications returns up to limit notifications, newest first.
func (r *SQLiteRecorder) RecentNotifications(ctx context.Context, limit int) ([]NotificationRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT timestamp, cycle_id, symbol, buy_price, sell_price, message, sink
		FROM notifications ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var out []NotificationRecord
	for rows.Next() {
		var rec NotificationRecord
		var ts int64
		if err := rows.Scan(&ts, &rec.CycleID, &rec.Symbol, &rec.BuyPrice, &rec.SellPrice, &rec.Message, &rec.Sink); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		rec.SentAt = time.UnixMilli(ts).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
