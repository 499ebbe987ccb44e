// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an
// error. A local .env file is honoured when present.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the crawler service.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string // optional — cycle locking and name caching degrade gracefully without it

	TelegramBotToken string
	SlackToken       string
	AdminSecret      string

	ImageDir     string // physical storage root for downloaded thumbnails
	ImageBaseURL string // public prefix the stored paths are served under

	CrawlSchedule         string // cron spec, default Mon/Thu 10:00 in CrawlTimezone
	CrawlTimezone         string
	RegionCooldownMinutes int // delay between region queries — the endpoint is ban-prone
	WindowDays            int // lookback/lookahead horizon in days

	Debug    bool
	DebugDir string // when set, raw search responses are dumped here per cycle
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	// In production the variables are set directly; .env is a dev convenience.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	adminSecret := os.Getenv("ADMIN_SECRET")
	if adminSecret == "" {
		return nil, fmt.Errorf("ADMIN_SECRET is required")
	}

	cfg := &Config{
		Port:                  getEnv("PORT", "8080"),
		DatabaseURL:           dbURL,
		RedisURL:              os.Getenv("REDIS_URL"),
		TelegramBotToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		SlackToken:            os.Getenv("SLACK_TOKEN"),
		AdminSecret:           adminSecret,
		ImageDir:              getEnv("IMAGE_DIR", "./images"),
		ImageBaseURL:          getEnv("IMAGE_BASE_URL", "http://oracle.artchive.in/images"),
		CrawlSchedule:         getEnv("CRAWL_SCHEDULE", "0 10 * * 1,4"),
		CrawlTimezone:         getEnv("CRAWL_TIMEZONE", "Asia/Seoul"),
		RegionCooldownMinutes: getEnvInt("REGION_COOLDOWN_MINUTES", 2),
		WindowDays:            getEnvInt("WINDOW_DAYS", 15),
		Debug:                 getEnvBool("DEBUG", false),
		DebugDir:              os.Getenv("DEBUG_DIR"),
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return defaultValue
	}
	return v
}
