package notifier

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// CommandHandler is called when a user command is received and returns the reply.
type CommandHandler func(ctx context.Context, command string) string

// StartPolling long-polls for chat commands until ctx is cancelled. Messages
// from chats other than ChatID are ignored.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler, logger zerolog.Logger) {
	log := logger.With().Str("component", "telegram-polling").Logger()

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := t.Bot.GetUpdatesChan(cfg)
	defer t.Bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			msg := update.Message
			if msg == nil || msg.Text == "" {
				continue
			}
			if msg.Chat == nil || msg.Chat.ID != t.ChatID {
				log.Warn().Int64("chat_id", chatID(msg)).Msg("ignoring message from unknown chat")
				continue
			}
			text := strings.TrimSpace(msg.Text)
			log.Info().Str("command", text).Msg("received command")
			reply := handler(ctx, text)
			if reply == "" {
				continue
			}
			if _, err := t.Bot.Send(tgbotapi.NewMessage(t.ChatID, reply)); err != nil {
				log.Error().Err(err).Msg("send reply")
			}
		}
	}
}

func chatID(msg *tgbotapi.Message) int64 {
	if msg.Chat == nil {
		return 0
	}
	return msg.Chat.ID
}
