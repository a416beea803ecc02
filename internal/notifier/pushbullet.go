package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"CoinScout/internal/httpclient"
	"CoinScout/internal/model"
)

// DefaultPushbulletURL is the Pushbullet v2 API root.
const DefaultPushbulletURL = "https://api.pushbullet.com/v2"

// PushbulletNotifier pushes notes to every device of a Pushbullet account.
type PushbulletNotifier struct {
	BaseURL string
	Token   string
	Client  *httpclient.Client
}

// NewPushbulletNotifier creates a notifier authenticated with token.
func NewPushbulletNotifier(baseURL, token string, client *httpclient.Client) *PushbulletNotifier {
	if baseURL == "" {
		baseURL = DefaultPushbulletURL
	}
	return &PushbulletNotifier{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client:  client,
	}
}

func (p *PushbulletNotifier) Name() string { return "pushbullet" }

type pushRequest struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Send pushes a note with title and body.
func (p *PushbulletNotifier) Send(ctx context.Context, title, body string) error {
	payload, err := json.Marshal(pushRequest{Type: "note", Title: title, Body: body})
	if err != nil {
		return fmt.Errorf("marshal push: %w", err)
	}
	resp, err := p.Client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/pushes", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Access-Token", p.Token)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return fmt.Errorf("%w: pushbullet: %w", model.ErrNotificationDelivery, err)
	}
	resp.Body.Close()
	return nil
}
