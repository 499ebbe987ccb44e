package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dhdbtkd/courtauction-crawler/internal/model"
	"github.com/dhdbtkd/courtauction-crawler/internal/repo"
)

// UserLinker resolves one-time auth tokens and registers telegram channels.
type UserLinker interface {
	FindByTelegramAuthToken(ctx context.Context, token string) (*model.User, error)
	LinkTelegramChannel(ctx context.Context, userID, chatID string) error
}

// Confirmer sends plain-text replies back into the chat that triggered
// the webhook.
type Confirmer interface {
	SendText(ctx context.Context, chatID, text string) error
}

// WebhookHandler processes Telegram bot updates. The only supported
// command is "/start <token>", which links the chat to the account that
// generated the token on the website.
type WebhookHandler struct {
	users    UserLinker
	telegram Confirmer
	log      *slog.Logger
}

// NewWebhookHandler returns a configured WebhookHandler.
func NewWebhookHandler(users UserLinker, telegram Confirmer, log *slog.Logger) *WebhookHandler {
	return &WebhookHandler{users: users, telegram: telegram, log: log}
}

// telegramUpdate is the slice of the Bot API update payload we care about.
// Chat IDs arrive as numbers and are kept as strings everywhere else.
type telegramUpdate struct {
	Message struct {
		Chat struct {
			ID json.Number `json:"id"`
		} `json:"chat"`
		Text string `json:"text"`
	} `json:"message"`
}

// ServeHTTP handles POST / from Telegram. It always answers 200 with an
// ok flag — Telegram retries anything else, and a malformed update will
// not get better on retry.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var update telegramUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.log.Warn("undecodable webhook payload", "error", err)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": false})
		return
	}

	chatID := update.Message.Chat.ID.String()
	text := strings.TrimSpace(update.Message.Text)
	if chatID == "" || text == "" {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": false})
		return
	}

	ctx := r.Context()
	if strings.HasPrefix(text, "/start") {
		h.handleStart(ctx, chatID, text)
	} else {
		h.reply(ctx, chatID, "🤖 명령어를 인식하지 못했습니다. /start 로 다시 시도해주세요.")
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *WebhookHandler) handleStart(ctx context.Context, chatID, text string) {
	parts := strings.Fields(text)
	if len(parts) < 2 {
		h.reply(ctx, chatID, "❌ 인증 토큰이 없습니다. 웹사이트에서 다시 연결해주세요.")
		return
	}
	token := parts[1]

	user, err := h.users.FindByTelegramAuthToken(ctx, token)
	if errors.Is(err, repo.ErrUserNotFound) {
		h.reply(ctx, chatID, "❌ 잘못된 토큰입니다. 다시 시도해주세요.")
		return
	}
	if err != nil {
		h.log.Error("token lookup failed", "error", err)
		h.reply(ctx, chatID, "⚠️ 일시적인 오류입니다. 잠시 후 다시 시도해주세요.")
		return
	}

	if err := h.users.LinkTelegramChannel(ctx, user.ID, chatID); err != nil {
		h.log.Error("channel linking failed", "user_id", user.ID, "error", err)
		h.reply(ctx, chatID, "⚠️ 일시적인 오류입니다. 잠시 후 다시 시도해주세요.")
		return
	}

	h.log.Info("telegram channel linked", "user_id", user.ID, "chat_id", chatID)
	h.reply(ctx, chatID, fmt.Sprintf("✅ 텔레그램 알림이 연결되었습니다!\n\n계정: %s", user.Email))
}

func (h *WebhookHandler) reply(ctx context.Context, chatID, text string) {
	if err := h.telegram.SendText(ctx, chatID, text); err != nil {
		h.log.Warn("webhook reply failed", "chat_id", chatID, "error", err)
	}
}
