package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dhdbtkd/courtauction-crawler/internal/model"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramMessenger delivers alerts through the Telegram Bot API. When a
// thumbnail is available the message goes out as a photo with a caption,
// otherwise as plain text.
type TelegramMessenger struct {
	token   string
	baseURL string
	client  *http.Client
}

// NewTelegramMessenger builds a messenger for the given bot token.
func NewTelegramMessenger(token string) *TelegramMessenger {
	return &TelegramMessenger{
		token:   token,
		baseURL: telegramAPIBase,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// NewTelegramMessengerWithBaseURL is used by tests to point at a stub server.
func NewTelegramMessengerWithBaseURL(token, baseURL string) *TelegramMessenger {
	m := NewTelegramMessenger(token)
	m.baseURL = baseURL
	return m
}

// Format renders the alert in Telegram Markdown.
func (m *TelegramMessenger) Format(auction model.AuctionRecord, rule model.NotificationRule) string {
	return telegramMessage(auction, rule)
}

// Deliver sends one alert to a chat, as a photo with caption when a
// thumbnail URL is available.
func (m *TelegramMessenger) Deliver(ctx context.Context, chatID, message, imageURL string) error {
	var method string
	var payload map[string]string

	if imageURL != "" {
		method = "sendPhoto"
		payload = map[string]string{
			"chat_id":    chatID,
			"photo":      imageURL,
			"caption":    message,
			"parse_mode": "Markdown",
		}
	} else {
		method = "sendMessage"
		payload = map[string]string{
			"chat_id":    chatID,
			"text":       message,
			"parse_mode": "Markdown",
		}
	}

	return m.call(ctx, method, payload)
}

// SendText sends a plain message without any photo. Used by the webhook
// handler for linking confirmations.
func (m *TelegramMessenger) SendText(ctx context.Context, chatID, text string) error {
	return m.call(ctx, "sendMessage", map[string]string{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	})
}

func (m *TelegramMessenger) call(ctx context.Context, method string, payload map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", m.baseURL, m.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram %s returned status %d: %s", method, resp.StatusCode, detail)
	}
	return nil
}
