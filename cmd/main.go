// courtauction-crawler
//
// Watches the Korean court-auction site for newly listed and re-listed
// properties in the monitored regions, reconciles them against the
// database and alerts subscribed users over Telegram and Slack.
//
//   - crawl cycles run on a cron schedule (default Mon/Thu 10:00 KST)
//     plus once immediately on startup
//   - POST /            receives the Telegram webhook for account linking
//   - GET  /admin/...   serves the operator dashboard (x-api-key)
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dhdbtkd/courtauction-crawler/internal/config"
	"github.com/dhdbtkd/courtauction-crawler/internal/courtauction"
	"github.com/dhdbtkd/courtauction-crawler/internal/crawler"
	"github.com/dhdbtkd/courtauction-crawler/internal/db"
	"github.com/dhdbtkd/courtauction-crawler/internal/imagestore"
	"github.com/dhdbtkd/courtauction-crawler/internal/logging"
	"github.com/dhdbtkd/courtauction-crawler/internal/notify"
	"github.com/dhdbtkd/courtauction-crawler/internal/region"
	"github.com/dhdbtkd/courtauction-crawler/internal/repo"
	"github.com/dhdbtkd/courtauction-crawler/internal/scheduler"
	"github.com/dhdbtkd/courtauction-crawler/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Debug)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	log.Info("postgres connected")

	// ── Redis (optional) ─────────────────────────────────────────────────
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, running without cycle lock and name cache", "error", err)
			rdb = nil
		} else {
			defer rdb.Close()
			log.Info("redis connected")
		}
	}

	// ── Repositories ─────────────────────────────────────────────────────
	auctions := repo.NewAuctions(pool)
	notifications := repo.NewNotifications(pool)
	crawlLogs := repo.NewCrawlLogs(pool, rdb)
	users := repo.NewUsers(pool)

	// ── Crawl pipeline ───────────────────────────────────────────────────
	client := courtauction.NewClient(log)
	images := imagestore.New(cfg.ImageDir, cfg.ImageBaseURL)
	reconciler := crawler.NewReconciler(client, images, log)
	targets := region.NewResolver(notifications, log)

	messengers := map[string]notify.Messenger{}
	var telegram *notify.TelegramMessenger
	if cfg.TelegramBotToken != "" {
		telegram = notify.NewTelegramMessenger(cfg.TelegramBotToken)
		messengers[notify.ChannelTelegram] = telegram
	}
	if cfg.SlackToken != "" {
		messengers[notify.ChannelSlack] = notify.NewSlackMessenger(cfg.SlackToken)
	}
	notifier := notify.NewService(notifications, messengers, log)

	engine := crawler.New(client, reconciler, auctions, targets, crawler.Options{
		CrawlLogs:  crawlLogs,
		Notifier:   notifier,
		Cooldown:   time.Duration(cfg.RegionCooldownMinutes) * time.Minute,
		WindowDays: cfg.WindowDays,
		DebugDir:   cfg.DebugDir,
	}, log)

	// ── Scheduler ────────────────────────────────────────────────────────
	sched := scheduler.New(engine, rdb, cfg.CrawlSchedule, cfg.CrawlTimezone, log)
	if err := sched.Start(ctx); err != nil {
		log.Error("scheduler failed to start", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────
	var webhook *server.WebhookHandler
	if telegram != nil {
		webhook = server.NewWebhookHandler(users, telegram, log)
	} else {
		log.Warn("TELEGRAM_BOT_TOKEN not set, webhook disabled")
	}
	admin := server.NewAdminHandler(cfg.AdminSecret, crawlLogs, users, notifications, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      server.NewMux(webhook, admin),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info("http server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("stopped")
}
