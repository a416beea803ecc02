// Package notifier delivers suggestion messages to user devices.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"CoinScout/internal/model"
)

// Notifier delivers a titled short text message.
type Notifier interface {
	Send(ctx context.Context, title, body string) error
	Name() string
}

// Retrying retries a Notifier with exponential backoff.
type Retrying struct {
	Next            Notifier
	MaxRetries      int
	InitialInterval time.Duration
	log             zerolog.Logger
}

// WithRetry wraps next so each Send is attempted up to maxRetries+1 times.
func WithRetry(next Notifier, maxRetries int, initial time.Duration, logger zerolog.Logger) *Retrying {
	if initial <= 0 {
		initial = time.Second
	}
	return &Retrying{
		Next:            next,
		MaxRetries:      maxRetries,
		InitialInterval: initial,
		log:             logger.With().Str("component", "notifier").Str("sink", next.Name()).Logger(),
	}
}

func (r *Retrying) Name() string { return r.Next.Name() }

// Send returns the last error, wrapped in model.ErrNotificationDelivery, once retries are exhausted.
func (r *Retrying) Send(ctx context.Context, title, body string) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := r.Next.Send(ctx, title, body)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.InitialInterval
	strategy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(max(r.MaxRetries, 0))), ctx)

	notify := func(err error, wait time.Duration) {
		r.log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("send failed, retrying")
	}
	if err := backoff.RetryNotify(operation, strategy, notify); err != nil {
		if errors.Is(err, model.ErrNotificationDelivery) {
			return err
		}
		return fmt.Errorf("%w: %s after %d attempts: %w", model.ErrNotificationDelivery, r.Next.Name(), attempt, err)
	}
	return nil
}

// Discard accepts and drops every message.
type Discard struct{}

func (Discard) Name() string                               { return "discard" }
func (Discard) Send(context.Context, string, string) error { return nil }
