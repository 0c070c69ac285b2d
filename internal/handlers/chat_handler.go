// File: internal/handlers/chat_handler.go
package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/yuin/goldmark"

	"github.com/iyunix/go-wellness/internal/domain"
	"github.com/iyunix/go-wellness/internal/dtos"
	"github.com/iyunix/go-wellness/internal/middleware"
	"github.com/iyunix/go-wellness/internal/services/chat"
)

type ChatHandler struct {
	chat     chat.Service
	markdown goldmark.Markdown
	logger   Logger
}

func NewChatHandler(service chat.Service, logger Logger) *ChatHandler {
	return &ChatHandler{
		chat:     service,
		markdown: goldmark.New(),
		logger:   logger,
	}
}

// HistoryTurn is one turn of the transcript as the chat widget renders it.
type HistoryTurn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	HTML      string    `json:"html,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// HandleChatMessage answers POST /api/chat. Any decodable body gets a 200:
// empty messages and completion failures come back as canned replies.
func (h *ChatHandler) HandleChatMessage(w http.ResponseWriter, r *http.Request) {
	var req dtos.ChatRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	caller := middleware.CallerFrom(r.Context())
	reply, err := h.chat.Reply(r.Context(), caller, req.Message)
	if err != nil {
		h.logger.Error("chat reply failed", "user_id", caller.UserID, "error", err)
		writeError(w, "Could not process message", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// GetHistory returns the caller's recent turns, oldest first.
func (h *ChatHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())
	turns, err := h.chat.History(r.Context(), caller)
	if err != nil {
		h.logger.Error("chat history failed", "user_id", caller.UserID, "error", err)
		writeError(w, "Could not retrieve history", http.StatusInternalServerError)
		return
	}

	out := make([]HistoryTurn, 0, len(turns))
	for _, t := range turns {
		turn := HistoryTurn{Role: t.Role, Content: t.Content, CreatedAt: t.CreatedAt}
		if t.Role == domain.RoleAssistant {
			turn.HTML = h.render(t.Content)
		}
		out = append(out, turn)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"turns": out})
}

// render converts assistant markdown to HTML. Raw HTML in the source is
// dropped by goldmark's default renderer.
func (h *ChatHandler) render(source string) string {
	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(source), &buf); err != nil {
		h.logger.Warn("markdown render failed", "error", err)
		return ""
	}
	return buf.String()
}
