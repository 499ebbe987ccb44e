package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dhdbtkd/courtauction-crawler/internal/model"
)

// CrawlLogReader serves the crawl history shown on the admin pages.
type CrawlLogReader interface {
	Latest(ctx context.Context) (*model.CrawlLog, error)
	Recent(ctx context.Context, limit int) ([]model.CrawlLog, error)
}

// UserDirectory lists accounts and their rule counts for the dashboard.
type UserDirectory interface {
	List(ctx context.Context) ([]model.User, error)
}

// RuleCounter aggregates notification rules per user.
type RuleCounter interface {
	RuleCountsByUser(ctx context.Context) (map[string]int, error)
}

// AdminHandler implements the operator endpoints. Every route requires an
// x-api-key header matching the configured admin secret.
type AdminHandler struct {
	secret    string
	crawlLogs CrawlLogReader
	users     UserDirectory
	rules     RuleCounter
	log       *slog.Logger
}

// NewAdminHandler returns a configured AdminHandler.
func NewAdminHandler(secret string, crawlLogs CrawlLogReader, users UserDirectory, rules RuleCounter, log *slog.Logger) *AdminHandler {
	return &AdminHandler{secret: secret, crawlLogs: crawlLogs, users: users, rules: rules, log: log}
}

// RegisterRoutes mounts the admin routes on mux.
func (h *AdminHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/admin/crawler/status", h.requireAdmin(h.crawlerStatus))
	mux.HandleFunc("/admin/crawler/logs", h.requireAdmin(h.crawlerLogs))
	mux.HandleFunc("/admin/dashboard", h.requireAdmin(h.dashboard))
}

func (h *AdminHandler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if r.Header.Get("x-api-key") != h.secret {
			jsonError(w, "forbidden", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// ─── Response types ──────────────────────────────────────────────────────

type crawlerStatusResponse struct {
	ServerRunning    bool       `json:"server_running"`
	SchedulerEnabled bool       `json:"scheduler_enabled"`
	LastStarted      *time.Time `json:"last_started"`
	LastFinished     *time.Time `json:"last_finished"`
	Timestamp        time.Time  `json:"timestamp"`
}

type crawlLogResponse struct {
	ID           int64      `json:"id"`
	SidoCode     string     `json:"sido_code"`
	SiguCode     string     `json:"sigu_code"`
	SidoName     string     `json:"sido_name"`
	SiguName     string     `json:"sigu_name"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at"`
	NewCount     int        `json:"new_count"`
	UpdatedCount int        `json:"updated_count"`
}

type dashboardUser struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Provider     string     `json:"provider"`
	CreatedAt    time.Time  `json:"created_at"`
	LastSigninAt *time.Time `json:"last_signin_at"`
	RuleCount    int        `json:"rule_count"`
}

type dashboardResponse struct {
	Crawler crawlerStatusResponse `json:"crawler"`
	Logs    []crawlLogResponse    `json:"logs"`
	Summary struct {
		UserCount int `json:"user_count"`
		RuleCount int `json:"rule_count"`
	} `json:"summary"`
	Users     []dashboardUser `json:"users"`
	Timestamp time.Time       `json:"timestamp"`
}

// ─── Handlers ────────────────────────────────────────────────────────────

// crawlerStatus handles GET /admin/crawler/status
func (h *AdminHandler) crawlerStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.buildStatus(r.Context())
	if err != nil {
		h.log.Error("crawler status query failed", "error", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// crawlerLogs handles GET /admin/crawler/logs
func (h *AdminHandler) crawlerLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.crawlLogs.Recent(r.Context(), 100)
	if err != nil {
		h.log.Error("crawl log query failed", "error", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toLogResponses(logs))
}

// dashboard handles GET /admin/dashboard
func (h *AdminHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status, err := h.buildStatus(ctx)
	if err != nil {
		h.log.Error("crawler status query failed", "error", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	logs, err := h.crawlLogs.Recent(ctx, 20)
	if err != nil {
		h.log.Error("crawl log query failed", "error", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	users, err := h.users.List(ctx)
	if err != nil {
		h.log.Error("user listing failed", "error", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	ruleCounts, err := h.rules.RuleCountsByUser(ctx)
	if err != nil {
		h.log.Error("rule count query failed", "error", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	resp := dashboardResponse{
		Crawler:   status,
		Logs:      toLogResponses(logs),
		Timestamp: time.Now(),
	}
	totalRules := 0
	for _, u := range users {
		count := ruleCounts[u.ID]
		totalRules += count
		resp.Users = append(resp.Users, dashboardUser{
			ID:           u.ID,
			Email:        u.Email,
			Name:         u.Name,
			Provider:     u.ProviderName,
			CreatedAt:    u.CreatedAt,
			LastSigninAt: u.LastSigninAt,
			RuleCount:    count,
		})
	}
	resp.Summary.UserCount = len(users)
	resp.Summary.RuleCount = totalRules

	writeJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) buildStatus(ctx context.Context) (crawlerStatusResponse, error) {
	status := crawlerStatusResponse{
		ServerRunning:    true,
		SchedulerEnabled: true,
		Timestamp:        time.Now(),
	}
	last, err := h.crawlLogs.Latest(ctx)
	if err != nil {
		return crawlerStatusResponse{}, err
	}
	if last != nil {
		started := last.StartedAt
		status.LastStarted = &started
		status.LastFinished = last.EndedAt
	}
	return status, nil
}

func toLogResponses(logs []model.CrawlLog) []crawlLogResponse {
	out := make([]crawlLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, crawlLogResponse{
			ID:           l.ID,
			SidoCode:     l.SidoCode,
			SiguCode:     l.SiguCode,
			SidoName:     l.SidoName,
			SiguName:     l.SiguName,
			StartedAt:    l.StartedAt,
			EndedAt:      l.EndedAt,
			NewCount:     l.NewCount,
			UpdatedCount: l.UpdatedCount,
		})
	}
	return out
}
