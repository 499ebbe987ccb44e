// Package scheduler wires up the cron job that periodically runs a crawl
// cycle. Schedules are normally evaluated in Asia/Seoul, matching the
// court's announcement rhythm.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/dhdbtkd/courtauction-crawler/internal/crawler"
)

const (
	// crawlLockKey guards against overlapping cycles when a crawl outlives
	// the tick interval or multiple instances share one Redis.
	crawlLockKey = "courtauction:crawl:lock"
	crawlLockTTL = 2 * time.Hour
)

// Runner is the crawl cycle the scheduler triggers.
type Runner interface {
	Run(ctx context.Context) (crawler.CycleSummary, error)
}

// Scheduler wraps robfig/cron and manages the crawl loop.
type Scheduler struct {
	cron   *cron.Cron
	rdb    *redis.Client // optional, enables the overlap lock
	runner Runner
	log    *slog.Logger
	spec   string // cron spec, e.g. "0 10 * * 1,4"
}

// New creates a Scheduler firing on the given cron spec in the named
// timezone. Falls back to UTC if the timezone database is unavailable.
func New(runner Runner, rdb *redis.Client, spec, timezone string, log *slog.Logger) *Scheduler {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.Warn("failed to load timezone, scheduling in UTC", "timezone", timezone, "error", err)
		loc = time.UTC
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		rdb:    rdb,
		runner: runner,
		log:    log,
		spec:   spec,
	}
}

// Start registers the job and starts the scheduler. Also runs one cycle
// immediately so a fresh deployment does not wait for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.log.Info("scheduler started", "spec", s.spec)

	go s.runCycle(ctx)

	return nil
}

// Stop halts tick scheduling. In-flight cycles are not awaited here; they
// run on the context passed to Start and end when the caller cancels it.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) runCycle(ctx context.Context) {
	if !s.acquireLock(ctx) {
		s.log.Warn("previous crawl cycle still running, skipping tick")
		return
	}
	defer s.releaseLock(ctx)

	summary, err := s.runner.Run(ctx)
	if err != nil {
		s.log.Error("crawl cycle failed", "error", err)
		return
	}
	s.log.Info("crawl cycle finished",
		"cycle_id", summary.CycleID,
		"regions", summary.Regions,
		"new", summary.NewCount,
		"updated", summary.UpdatedCount,
		"duration", summary.EndedAt.Sub(summary.StartedAt).Round(time.Second).String(),
	)
}

// acquireLock takes the Redis overlap lock. Without Redis (or when Redis
// is down) cycles run unguarded rather than not at all.
func (s *Scheduler) acquireLock(ctx context.Context) bool {
	if s.rdb == nil {
		return true
	}
	ok, err := s.rdb.SetNX(ctx, crawlLockKey, time.Now().UTC().Format(time.RFC3339), crawlLockTTL).Result()
	if err != nil {
		s.log.Warn("crawl lock unavailable, proceeding without it", "error", err)
		return true
	}
	return ok
}

func (s *Scheduler) releaseLock(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, crawlLockKey).Err(); err != nil {
		s.log.Warn("failed to release crawl lock", "error", err)
	}
}
