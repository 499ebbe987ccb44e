// Package model defines shared data structures for the crawler and its
// collaborators.
package model

import "time"

// Auction status values as published by the court-auction site.
const (
	StatusNewCase   = "신건" // no failed bidding rounds yet
	StatusFailedBid = "유찰" // at least one failed bidding round
)

// RegionTarget identifies one monitored administrative area by its
// province-level (sido) and city/district-level (sigu) codes.
type RegionTarget struct {
	SidoCode string
	SiguCode string
}

// AuctionRecord mirrors an auctions table row. Price fields stay as the
// strings the court API serves — they are parsed only where a numeric
// comparison is needed.
type AuctionRecord struct {
	ID                 int64
	CaseID             string // natural key, e.g. "2024타경1001"
	Court              string
	Category           string
	Address            string
	Area               string // decimal extracted from the building description, may be empty
	EstimatedPrice     string
	MinimumPrice       string
	Etc                string
	Status             string // StatusNewCase or StatusFailedBid
	FailedAuctionCount int
	AuctionDate        string // dotted form, YYYY.MM.DD
	SidoCode           string
	SiguCode           string
	ThumbnailSrc       string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AuctionUpdate is the partial update written when an already-stored case
// shows a changed failed-bid count. Only these fields are touched.
type AuctionUpdate struct {
	ID                 int64
	MinimumPrice       string
	Status             string
	FailedAuctionCount int
	UpdatedAt          time.Time
}

// NotificationRule is a per-user filter over newly found auctions.
// Nil bounds mean unbounded on that side.
type NotificationRule struct {
	ID       int64
	UserID   string
	Name     string
	Category string
	SidoCode string
	SiguCode string
	PriceMin *float64
	PriceMax *float64
	AreaMin  *float64
	AreaMax  *float64
	Keyword  string
}

// NotificationChannel is one delivery endpoint (telegram chat, slack
// channel, …) registered by a user.
type NotificationChannel struct {
	ID         int64
	UserID     string
	Type       string // "telegram", "slack"
	Identifier string // chat ID / channel name
	Enabled    bool
}

// NotificationLog records one delivery attempt per (rule, channel).
type NotificationLog struct {
	UserID    string
	RuleID    int64
	AuctionID int64
	ChannelID int64
	Message   string
	SentAt    time.Time
	IsRead    bool
}

// CrawlLog is one crawl_logs row, opened when a region's crawl starts and
// closed with the detected counts when it ends.
type CrawlLog struct {
	ID           int64
	SidoCode     string
	SiguCode     string
	SidoName     string
	SiguName     string
	StartedAt    time.Time
	EndedAt      *time.Time
	NewCount     int
	UpdatedCount int
}

// User is the subset of a users row needed for channel linking and the
// admin dashboard.
type User struct {
	ID           string
	Email        string
	Name         string
	ProviderName string
	CreatedAt    time.Time
	LastSigninAt *time.Time
}
