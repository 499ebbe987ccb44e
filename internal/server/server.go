// Package server implements the HTTP surface of the crawler:
//
//	POST /                      → Telegram webhook (/start token linking)
//	GET  /health                → liveness probe
//	GET  /admin/crawler/status  → last crawl run (x-api-key)
//	GET  /admin/crawler/logs    → recent crawl history (x-api-key)
//	GET  /admin/dashboard       → users, rules and crawl summary (x-api-key)
package server

import (
	"encoding/json"
	"net/http"
)

const version = "1.0.0"

// NewMux assembles the full route table. webhook may be nil when no
// Telegram bot token is configured.
func NewMux(webhook *WebhookHandler, admin *AdminHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	if webhook != nil {
		mux.Handle("/", webhook)
	}
	admin.RegisterRoutes(mux)
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "courtauction-crawler",
		"version": version,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
