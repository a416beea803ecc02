package notifier

import (
	"context"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"CoinScout/internal/model"
)

// TelegramNotifier sends messages to one chat via the Telegram Bot API.
type TelegramNotifier struct {
	Bot    *tgbotapi.BotAPI
	ChatID int64
}

// NewTelegramNotifier authorizes the bot token. endpoint may be empty for the
// public API; client carries timeout and proxy settings.
func NewTelegramNotifier(token string, chatID int64, endpoint string, client *http.Client) (*TelegramNotifier, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("%w: telegram authorize: %w", model.ErrConfiguration, err)
	}
	return &TelegramNotifier{Bot: bot, ChatID: chatID}, nil
}

func (t *TelegramNotifier) Name() string { return "telegram" }

// Send posts title and body as one message. The bot API call does not take a
// context, so cancellation is only checked before sending.
func (t *TelegramNotifier) Send(ctx context.Context, title, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text := body
	if title != "" {
		text = title + "\n" + body
	}
	if _, err := t.Bot.Send(tgbotapi.NewMessage(t.ChatID, text)); err != nil {
		return fmt.Errorf("%w: telegram: %w", model.ErrNotificationDelivery, err)
	}
	return nil
}
