package scheduler

import (
	"context"
	"fmt"
	"strings"

	"CoinScout/internal/notifier"
)

const historyLimit = 10

// HandleCommand processes a chat command and returns the reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	// Telegram appends the bot name in group chats: /status@coinscout_bot.
	var cmd string
	if fields := strings.Fields(command); len(fields) > 0 {
		cmd, _, _ = strings.Cut(fields[0], "@")
	}

	switch strings.ToLower(cmd) {
	case "/start":
		if !s.Start(ctx) {
			return "Zaten çalışıyor."
		}
		return "▶️ Analiz başlatıldı."
	case "/stop":
		if !s.Stop() {
			return "Zaten durdurulmuş."
		}
		return "⏹ Analiz durduruldu, mevcut coin tamamlanınca döngü biter."
	case "/toggle":
		if s.Toggle(ctx) {
			return "▶️ Analiz başlatıldı."
		}
		return "⏹ Analiz durduruldu."
	case "/status":
		return notifier.FormatStatus(s.Snapshot())
	case "/ranking":
		return notifier.FormatRanking(s.State.Latest())
	case "/history":
		return s.formatHistory(ctx)
	default:
		return "Komutlar:\n/start\n/stop\n/toggle\n/status\n/ranking\n/history"
	}
}

func (s *Scheduler) formatHistory(ctx context.Context) string {
	recs, err := s.Cycle.Recorder.RecentNotifications(ctx, historyLimit)
	if err != nil {
		s.log.Error().Err(err).Msg("read notification history")
		return "Geçmiş okunamadı."
	}
	if len(recs) == 0 {
		return "Gönderilmiş emir yok."
	}
	var b strings.Builder
	for _, r := range recs {
		fmt.Fprintf(&b, "%s  %s\n", r.SentAt.Format("01-02 15:04"), r.Message)
	}
	return b.String()
}
