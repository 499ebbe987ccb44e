// Package notify matches newly stored auctions against user rules and
// fans alerts out to each user's registered channels.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/dhdbtkd/courtauction-crawler/internal/model"
)

// RuleStore provides the rules, channels and delivery log backing the
// fan-out.
type RuleStore interface {
	GetActiveRules(ctx context.Context) ([]model.NotificationRule, error)
	GetChannelsByUser(ctx context.Context, userID string) ([]model.NotificationChannel, error)
	InsertNotificationLog(ctx context.Context, entry model.NotificationLog) error
}

// Messenger is the capability of one channel kind: render the alert in
// the channel's markup and deliver it to a channel-specific identifier.
// Implementations decide for themselves what to do with the thumbnail URL
// (Telegram attaches it as a photo, Slack links it in the text).
type Messenger interface {
	Format(auction model.AuctionRecord, rule model.NotificationRule) string
	Deliver(ctx context.Context, identifier, message, imageURL string) error
}

// Service walks rules × auctions and delivers an alert for every match.
// Delivery failures are logged and never abort the remaining fan-out.
type Service struct {
	store      RuleStore
	messengers map[string]Messenger
	log        *slog.Logger
	now        func() time.Time
}

// NewService wires the fan-out. messengers is keyed by channel type;
// channels whose type has no registered messenger are logged but not
// delivered to.
func NewService(store RuleStore, messengers map[string]Messenger, log *slog.Logger) *Service {
	return &Service{
		store:      store,
		messengers: messengers,
		log:        log,
		now:        time.Now,
	}
}

// ProcessNewAuctions checks every active rule against every new auction
// and delivers to each enabled channel of the rule's owner. A log row is
// written per (rule, channel, auction) whether or not delivery succeeded.
func (s *Service) ProcessNewAuctions(ctx context.Context, auctions []model.AuctionRecord) {
	if len(auctions) == 0 {
		return
	}

	rules, err := s.store.GetActiveRules(ctx)
	if err != nil {
		s.log.Error("failed to load notification rules", "error", err)
		return
	}
	s.log.Info("checking notification rules", "rules", len(rules), "auctions", len(auctions))

	for _, rule := range rules {
		for _, auction := range auctions {
			if !MatchesRule(rule, auction) {
				continue
			}

			channels, err := s.store.GetChannelsByUser(ctx, rule.UserID)
			if err != nil {
				s.log.Error("failed to load channels", "user_id", rule.UserID, "error", err)
				continue
			}

			for _, ch := range channels {
				if !ch.Enabled {
					continue
				}

				// The log row is written even when no messenger handles
				// the type (e.g. the bot token is unconfigured): the
				// attempt stays auditable either way.
				var message string
				if messenger, ok := s.messengers[ch.Type]; ok {
					message = messenger.Format(auction, rule)
					if err := messenger.Deliver(ctx, ch.Identifier, message, auction.ThumbnailSrc); err != nil {
						s.log.Error("notification delivery failed",
							"type", ch.Type, "user_id", rule.UserID, "auction", auction.CaseID, "error", err)
					}
				} else {
					message = telegramMessage(auction, rule)
					s.log.Warn("no messenger for channel type, recorded without delivery", "type", ch.Type)
				}

				entry := model.NotificationLog{
					UserID:    rule.UserID,
					RuleID:    rule.ID,
					AuctionID: auction.ID,
					ChannelID: ch.ID,
					Message:   message,
					SentAt:    s.now(),
					IsRead:    false,
				}
				if err := s.store.InsertNotificationLog(ctx, entry); err != nil {
					s.log.Error("failed to record notification log",
						"user_id", rule.UserID, "rule_id", rule.ID, "error", err)
				}
			}
		}
	}
}
