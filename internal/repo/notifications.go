package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dhdbtkd/courtauction-crawler/internal/model"
)

// Notifications reads per-user rules and channels and records deliveries.
type Notifications struct {
	pool *pgxpool.Pool
}

// NewNotifications constructs the notifications repository.
func NewNotifications(pool *pgxpool.Pool) *Notifications {
	return &Notifications{pool: pool}
}

// GetActiveRules returns every enabled notification rule.
func (r *Notifications) GetActiveRules(ctx context.Context) ([]model.NotificationRule, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, name,
		        COALESCE(category, ''), COALESCE(sido_code, ''), COALESCE(sigu_code, ''),
		        price_min, price_max, area_min, area_max, COALESCE(keyword, '')
		 FROM notification_rules
		 WHERE enabled = true`,
	)
	if err != nil {
		return nil, fmt.Errorf("query notification rules: %w", err)
	}
	defer rows.Close()

	var rules []model.NotificationRule
	for rows.Next() {
		var rule model.NotificationRule
		if err := rows.Scan(
			&rule.ID, &rule.UserID, &rule.Name,
			&rule.Category, &rule.SidoCode, &rule.SiguCode,
			&rule.PriceMin, &rule.PriceMax, &rule.AreaMin, &rule.AreaMax, &rule.Keyword,
		); err != nil {
			return nil, fmt.Errorf("scan notification rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// GetChannelsByUser returns the user's enabled delivery channels.
func (r *Notifications) GetChannelsByUser(ctx context.Context, userID string) ([]model.NotificationChannel, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, type, identifier, enabled
		 FROM notification_channels
		 WHERE user_id = $1 AND enabled = true`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query notification channels: %w", err)
	}
	defer rows.Close()

	var channels []model.NotificationChannel
	for rows.Next() {
		var ch model.NotificationChannel
		if err := rows.Scan(&ch.ID, &ch.UserID, &ch.Type, &ch.Identifier, &ch.Enabled); err != nil {
			return nil, fmt.Errorf("scan notification channel: %w", err)
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// InsertNotificationLog records one delivery attempt.
func (r *Notifications) InsertNotificationLog(ctx context.Context, entry model.NotificationLog) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO notifications_log
		   (user_id, rule_id, auction_id, channel_id, message, sent_at, is_read)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.UserID, entry.RuleID, entry.AuctionID, entry.ChannelID,
		entry.Message, entry.SentAt, entry.IsRead,
	)
	if err != nil {
		return fmt.Errorf("insert notification log: %w", err)
	}
	return nil
}

// RuleCountsByUser returns, per user id, the number of rules they own.
// Used by the admin dashboard.
func (r *Notifications) RuleCountsByUser(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, COUNT(*) FROM notification_rules GROUP BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("query rule counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var userID string
		var count int
		if err := rows.Scan(&userID, &count); err != nil {
			return nil, fmt.Errorf("scan rule count: %w", err)
		}
		counts[userID] = count
	}
	return counts, rows.Err()
}

// ActiveRegionPairs returns the distinct (sido, sigu) codes of the enabled
// rules — the dynamic half of the region target set.
func (r *Notifications) ActiveRegionPairs(ctx context.Context) ([]model.RegionTarget, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT COALESCE(sido_code, ''), COALESCE(sigu_code, '')
		 FROM notification_rules
		 WHERE enabled = true AND sido_code IS NOT NULL AND sido_code <> ''`,
	)
	if err != nil {
		return nil, fmt.Errorf("query rule region pairs: %w", err)
	}
	defer rows.Close()

	var pairs []model.RegionTarget
	for rows.Next() {
		var t model.RegionTarget
		if err := rows.Scan(&t.SidoCode, &t.SiguCode); err != nil {
			return nil, fmt.Errorf("scan region pair: %w", err)
		}
		pairs = append(pairs, t)
	}
	return pairs, rows.Err()
}
