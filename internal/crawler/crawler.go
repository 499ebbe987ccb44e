package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dhdbtkd/courtauction-crawler/internal/courtauction"
	"github.com/dhdbtkd/courtauction-crawler/internal/model"
)

// SearchClient queries the external search API for one region.
type SearchClient interface {
	Search(ctx context.Context, region model.RegionTarget, windowStart, windowEnd time.Time) ([]courtauction.SearchResult, error)
}

// AuctionRepository is the persistence collaborator for auction records.
type AuctionRepository interface {
	FetchByDateRange(ctx context.Context, start, end time.Time) ([]model.AuctionRecord, error)
	InsertMany(ctx context.Context, records []model.AuctionRecord) ([]int64, error)
	UpdateByID(ctx context.Context, update model.AuctionUpdate, id int64) error
}

// CrawlLogRepository records per-region crawl runs for the admin dashboard.
type CrawlLogRepository interface {
	Start(ctx context.Context, region model.RegionTarget) (int64, error)
	Finish(ctx context.Context, logID int64, newCount, updatedCount int) error
}

// Notifier fans newly stored auctions out to subscribed users.
type Notifier interface {
	ProcessNewAuctions(ctx context.Context, auctions []model.AuctionRecord)
}

// TargetResolver produces the regions one cycle should visit.
type TargetResolver interface {
	Targets(ctx context.Context) []model.RegionTarget
}

// CycleSummary describes one completed crawl cycle.
type CycleSummary struct {
	CycleID      string
	Regions      int
	NewCount     int
	UpdatedCount int
	StartedAt    time.Time
	EndedAt      time.Time
}

// Crawler runs full crawl cycles: resolve targets, search each region
// sequentially, reconcile, persist deltas and trigger notifications.
type Crawler struct {
	search    SearchClient
	rec       *Reconciler
	auctions  AuctionRepository
	crawlLogs CrawlLogRepository // optional
	notifier  Notifier           // optional
	targets   TargetResolver

	cooldown   time.Duration // wait between region queries — the endpoint is ban-prone
	windowDays int
	debugDir   string // when set, raw results are dumped as JSON per region

	log *slog.Logger
	now func() time.Time
}

// Options carries the optional collaborators and tuning knobs of a Crawler.
type Options struct {
	CrawlLogs  CrawlLogRepository
	Notifier   Notifier
	Cooldown   time.Duration
	WindowDays int
	DebugDir   string
}

// New constructs a Crawler.
func New(
	search SearchClient,
	rec *Reconciler,
	auctions AuctionRepository,
	targets TargetResolver,
	opts Options,
	log *slog.Logger,
) *Crawler {
	windowDays := opts.WindowDays
	if windowDays <= 0 {
		windowDays = 15
	}
	return &Crawler{
		search:     search,
		rec:        rec,
		auctions:   auctions,
		crawlLogs:  opts.CrawlLogs,
		notifier:   opts.Notifier,
		targets:    targets,
		cooldown:   opts.Cooldown,
		windowDays: windowDays,
		debugDir:   opts.DebugDir,
		log:        log,
		now:        time.Now,
	}
}

// Run executes one full cycle. Regions are processed strictly one after
// another with a cooldown in between; a failure in one region is logged
// and never aborts the others. The error return covers only conditions
// that make the whole cycle unsafe (the existing-state snapshot could not
// be loaded, or persistence of new records failed).
func (c *Crawler) Run(ctx context.Context) (CycleSummary, error) {
	summary := CycleSummary{
		CycleID:   uuid.NewString(),
		StartedAt: c.now(),
	}
	log := c.log.With("cycle_id", summary.CycleID)

	today := c.now()
	windowStart := today.AddDate(0, 0, -c.windowDays)
	windowEnd := today.AddDate(0, 0, c.windowDays)

	// Snapshot of the stored state inside the lookback horizon. Without it
	// every result would be misclassified as new, so this failure aborts.
	existing, err := c.auctions.FetchByDateRange(ctx, windowStart, today)
	if err != nil {
		return summary, fmt.Errorf("load existing auctions: %w", err)
	}

	targets := c.targets.Targets(ctx)
	summary.Regions = len(targets)
	log.Info("crawl cycle started", "regions", len(targets), "known_records", len(existing))

	var allNew []model.AuctionRecord
	var allUpdated []model.AuctionUpdate

	for i, target := range targets {
		if i > 0 && c.cooldown > 0 {
			if err := c.sleep(ctx); err != nil {
				return summary, err
			}
		}

		regionLog := log.With("sido_code", target.SidoCode, "sigu_code", target.SiguCode)
		logID := c.startCrawlLog(ctx, regionLog, target)

		results, err := c.search.Search(ctx, target, today, windowEnd)
		if err != nil {
			regionLog.Warn("search failed, continuing with next region", "error", err)
			c.finishCrawlLog(ctx, regionLog, logID, 0, 0)
			continue
		}
		regionLog.Info("search results received", "count", len(results))
		c.debugDump(regionLog, target, results)

		newAuctions, updatedAuctions := c.rec.Reconcile(ctx, target, results, existing)
		c.finishCrawlLog(ctx, regionLog, logID, len(newAuctions), len(updatedAuctions))

		allNew = append(allNew, newAuctions...)
		allUpdated = append(allUpdated, updatedAuctions...)
	}

	summary.NewCount = len(allNew)
	summary.UpdatedCount = len(allUpdated)

	if len(allNew) > 0 {
		ids, err := c.auctions.InsertMany(ctx, allNew)
		if err != nil {
			return summary, fmt.Errorf("insert new auctions: %w", err)
		}
		for i := range allNew {
			if i < len(ids) {
				allNew[i].ID = ids[i]
			}
		}
		if c.notifier != nil {
			c.notifier.ProcessNewAuctions(ctx, allNew)
		}
	}

	for _, update := range allUpdated {
		if err := c.auctions.UpdateByID(ctx, update, update.ID); err != nil {
			log.Warn("auction update failed", "auction_id", update.ID, "error", err)
		}
	}

	summary.EndedAt = c.now()
	log.Info("crawl cycle complete",
		"new", summary.NewCount, "updated", summary.UpdatedCount,
		"duration", summary.EndedAt.Sub(summary.StartedAt).String())
	return summary, nil
}

func (c *Crawler) sleep(ctx context.Context) error {
	timer := time.NewTimer(c.cooldown)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Crawler) startCrawlLog(ctx context.Context, log *slog.Logger, target model.RegionTarget) int64 {
	if c.crawlLogs == nil {
		return 0
	}
	id, err := c.crawlLogs.Start(ctx, target)
	if err != nil {
		log.Warn("opening crawl log failed", "error", err)
		return 0
	}
	return id
}

func (c *Crawler) finishCrawlLog(ctx context.Context, log *slog.Logger, logID int64, newCount, updatedCount int) {
	if c.crawlLogs == nil || logID == 0 {
		return
	}
	if err := c.crawlLogs.Finish(ctx, logID, newCount, updatedCount); err != nil {
		log.Warn("closing crawl log failed", "error", err)
	}
}

// debugDump writes the raw region results to the debug directory so a
// misbehaving cycle can be replayed against fixtures.
func (c *Crawler) debugDump(log *slog.Logger, target model.RegionTarget, results []courtauction.SearchResult) {
	if c.debugDir == "" {
		return
	}
	if err := os.MkdirAll(c.debugDir, 0o755); err != nil {
		log.Warn("debug dump dir", "error", err)
		return
	}

	payload := struct {
		SidoCode   string                      `json:"sido_code"`
		SiguCode   string                      `json:"sigu_code"`
		RawResults []courtauction.SearchResult `json:"raw_results"`
	}{target.SidoCode, target.SiguCode, results}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		log.Warn("debug dump marshal", "error", err)
		return
	}

	name := fmt.Sprintf("%s_%s_%s.json", c.now().Format("20060102_150405"), target.SidoCode, target.SiguCode)
	if err := os.WriteFile(filepath.Join(c.debugDir, name), data, 0o644); err != nil {
		log.Warn("debug dump write", "error", err)
	}
}
