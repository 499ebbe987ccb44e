package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dhdbtkd/courtauction-crawler/internal/model"
)

// ── fakes ──────────────────────────────────────────────────────────────

type fakeRuleStore struct {
	rules    []model.NotificationRule
	rulesErr error
	channels map[string][]model.NotificationChannel
	logs     []model.NotificationLog
	logErr   error
}

func (f *fakeRuleStore) GetActiveRules(context.Context) ([]model.NotificationRule, error) {
	return f.rules, f.rulesErr
}

func (f *fakeRuleStore) GetChannelsByUser(_ context.Context, userID string) ([]model.NotificationChannel, error) {
	return f.channels[userID], nil
}

func (f *fakeRuleStore) InsertNotificationLog(_ context.Context, entry model.NotificationLog) error {
	f.logs = append(f.logs, entry)
	return f.logErr
}

type delivery struct {
	identifier string
	message    string
	imageURL   string
}

type fakeMessenger struct {
	markup     string
	deliveries []delivery
	err        error
}

func (f *fakeMessenger) Format(auction model.AuctionRecord, rule model.NotificationRule) string {
	return f.markup + auction.CaseID
}

func (f *fakeMessenger) Deliver(_ context.Context, identifier, message, imageURL string) error {
	f.deliveries = append(f.deliveries, delivery{identifier, message, imageURL})
	return f.err
}

func newTestService(store *fakeRuleStore, messengers map[string]Messenger) *Service {
	svc := NewService(store, messengers, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return time.Date(2024, 11, 1, 10, 0, 0, 0, time.UTC) }
	return svc
}

// ── tests ──────────────────────────────────────────────────────────────

func TestProcessNewAuctionsDeliversAndLogs(t *testing.T) {
	auction := sampleAuction()
	auction.ID = 42
	auction.ThumbnailSrc = "http://img.example.com/a.jpg"

	store := &fakeRuleStore{
		rules: []model.NotificationRule{{ID: 7, UserID: "u1", Name: "해운대"}},
		channels: map[string][]model.NotificationChannel{
			"u1": {
				{ID: 1, UserID: "u1", Type: ChannelTelegram, Identifier: "chat-1", Enabled: true},
				{ID: 2, UserID: "u1", Type: ChannelSlack, Identifier: "#deals", Enabled: true},
			},
		},
	}
	tg := &fakeMessenger{markup: "tg:"}
	slack := &fakeMessenger{markup: "slack:"}
	svc := newTestService(store, map[string]Messenger{ChannelTelegram: tg, ChannelSlack: slack})

	svc.ProcessNewAuctions(context.Background(), []model.AuctionRecord{auction})

	if len(tg.deliveries) != 1 {
		t.Fatalf("telegram deliveries = %d, want 1", len(tg.deliveries))
	}
	if tg.deliveries[0].identifier != "chat-1" {
		t.Errorf("telegram identifier = %q", tg.deliveries[0].identifier)
	}
	if tg.deliveries[0].imageURL != "http://img.example.com/a.jpg" {
		t.Errorf("messenger should receive the thumbnail, got %q", tg.deliveries[0].imageURL)
	}

	if len(slack.deliveries) != 1 {
		t.Fatalf("slack deliveries = %d, want 1", len(slack.deliveries))
	}
	// Each channel delivers its own rendering of the alert.
	if tg.deliveries[0].message != "tg:2024타경1001" || slack.deliveries[0].message != "slack:2024타경1001" {
		t.Errorf("messages = %q / %q, want per-messenger formatting",
			tg.deliveries[0].message, slack.deliveries[0].message)
	}

	if len(store.logs) != 2 {
		t.Fatalf("notification logs = %d, want 2", len(store.logs))
	}
	log := store.logs[0]
	if log.UserID != "u1" || log.RuleID != 7 || log.AuctionID != 42 || log.ChannelID != 1 {
		t.Errorf("unexpected log row: %+v", log)
	}
	if log.IsRead {
		t.Error("new log rows must start unread")
	}
}

func TestProcessNewAuctionsSkipsNonMatching(t *testing.T) {
	store := &fakeRuleStore{
		rules: []model.NotificationRule{{ID: 1, UserID: "u1", Keyword: "강남"}},
		channels: map[string][]model.NotificationChannel{
			"u1": {{ID: 1, UserID: "u1", Type: ChannelTelegram, Identifier: "chat-1", Enabled: true}},
		},
	}
	tg := &fakeMessenger{}
	svc := newTestService(store, map[string]Messenger{ChannelTelegram: tg})

	svc.ProcessNewAuctions(context.Background(), []model.AuctionRecord{sampleAuction()})

	if len(tg.deliveries) != 0 {
		t.Errorf("non-matching rule should not deliver, got %d", len(tg.deliveries))
	}
	if len(store.logs) != 0 {
		t.Errorf("non-matching rule should not log, got %d", len(store.logs))
	}
}

func TestProcessNewAuctionsSkipsDisabledChannels(t *testing.T) {
	store := &fakeRuleStore{
		rules: []model.NotificationRule{{ID: 1, UserID: "u1"}},
		channels: map[string][]model.NotificationChannel{
			"u1": {{ID: 1, UserID: "u1", Type: ChannelTelegram, Identifier: "chat-1", Enabled: false}},
		},
	}
	tg := &fakeMessenger{}
	svc := newTestService(store, map[string]Messenger{ChannelTelegram: tg})

	svc.ProcessNewAuctions(context.Background(), []model.AuctionRecord{sampleAuction()})

	if len(tg.deliveries) != 0 {
		t.Errorf("disabled channel should not deliver, got %d", len(tg.deliveries))
	}
}

func TestProcessNewAuctionsLogsDespiteDeliveryFailure(t *testing.T) {
	store := &fakeRuleStore{
		rules: []model.NotificationRule{{ID: 1, UserID: "u1"}},
		channels: map[string][]model.NotificationChannel{
			"u1": {{ID: 1, UserID: "u1", Type: ChannelTelegram, Identifier: "chat-1", Enabled: true}},
		},
	}
	tg := &fakeMessenger{err: errors.New("telegram down")}
	svc := newTestService(store, map[string]Messenger{ChannelTelegram: tg})

	svc.ProcessNewAuctions(context.Background(), []model.AuctionRecord{sampleAuction()})

	if len(store.logs) != 1 {
		t.Errorf("log row should be written even when delivery fails, got %d", len(store.logs))
	}
}

func TestProcessNewAuctionsLogsWithoutMessenger(t *testing.T) {
	store := &fakeRuleStore{
		rules: []model.NotificationRule{{ID: 1, UserID: "u1"}},
		channels: map[string][]model.NotificationChannel{
			"u1": {{ID: 1, UserID: "u1", Type: ChannelTelegram, Identifier: "chat-1", Enabled: true}},
		},
	}
	svc := newTestService(store, map[string]Messenger{})

	// No messenger registered for the type (bot token unconfigured): the
	// delivery is skipped but the log row is still written.
	svc.ProcessNewAuctions(context.Background(), []model.AuctionRecord{sampleAuction()})

	if len(store.logs) != 1 {
		t.Fatalf("notification log rows = %d, want 1 per (rule, channel) regardless of delivery", len(store.logs))
	}
	if !strings.Contains(store.logs[0].Message, "새 매물 알림") {
		t.Errorf("logged message should carry the default rendering, got %q", store.logs[0].Message)
	}
}

func TestProcessNewAuctionsRuleFetchFailure(t *testing.T) {
	store := &fakeRuleStore{rulesErr: errors.New("db down")}
	tg := &fakeMessenger{}
	svc := newTestService(store, map[string]Messenger{ChannelTelegram: tg})

	svc.ProcessNewAuctions(context.Background(), []model.AuctionRecord{sampleAuction()})

	if len(tg.deliveries) != 0 {
		t.Errorf("rule fetch failure should abort fan-out, got %d deliveries", len(tg.deliveries))
	}
}
