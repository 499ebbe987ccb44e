package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dhdbtkd/courtauction-crawler/internal/model"
)

const slackPostMessageURL = "https://slack.com/api/chat.postMessage"

// SlackMessenger delivers alerts through the Slack Web API.
type SlackMessenger struct {
	token   string
	postURL string
	client  *http.Client
}

// NewSlackMessenger builds a messenger for the given bot token.
func NewSlackMessenger(token string) *SlackMessenger {
	return &SlackMessenger{
		token:   token,
		postURL: slackPostMessageURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// NewSlackMessengerWithURL is used by tests to point at a stub server.
func NewSlackMessengerWithURL(token, postURL string) *SlackMessenger {
	m := NewSlackMessenger(token)
	m.postURL = postURL
	return m
}

// Format renders the alert in Slack mrkdwn.
func (m *SlackMessenger) Format(auction model.AuctionRecord, rule model.NotificationRule) string {
	return slackMessage(auction, rule)
}

// Deliver posts one alert into a channel. Slack has no photo attachment in
// this flow — the thumbnail is linked inside the formatted message, so the
// imageURL capability parameter is ignored.
func (m *SlackMessenger) Deliver(ctx context.Context, channel, message, _ string) error {
	body, err := json.Marshal(map[string]string{
		"channel": channel,
		"text":    message,
	})
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.postURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.token)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack post returned status %d", resp.StatusCode)
	}

	// Slack reports API-level failures in the body with HTTP 200.
	var apiResp struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("decode slack response: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("slack post rejected: %s", apiResp.Error)
	}
	return nil
}
