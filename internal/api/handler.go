package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/replydesk/replydesk/internal/biz/domain"
	"github.com/replydesk/replydesk/pkg/metrics"
)

const defaultListLimit = 200

type suggestionDTO struct {
	ID            int64  `json:"id"`
	ChatID        int64  `json:"chat_id"`
	ChatTitle     string `json:"chat_title,omitempty"`
	SuggestedText string `json:"suggested_text"`
	Translation   string `json:"translation"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
	DecidedAt     string `json:"decided_at,omitempty"`
}

type chatDTO struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	IsSelected bool   `json:"is_selected"`
	LastRunAt  string `json:"last_run_at,omitempty"`
}

type settingsDTO struct {
	KMessages         int `json:"k_messages"`
	IntervalMinutes   int `json:"interval_minutes"`
	MaxPendingPerChat int `json:"max_pending_per_chat"`
	CooldownMinutes   int `json:"cooldown_minutes"`
}

func (s *Server) handleListSuggestions(w http.ResponseWriter, r *http.Request) {
	status := domain.SuggestionStatus(r.URL.Query().Get("status"))
	switch status {
	case "", domain.StatusPending, domain.StatusSent, domain.StatusDeclined:
	default:
		s.writeError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}

	listings, err := s.suggestionRepo.List(r.Context(), status, limit)
	if err != nil {
		s.writeInternalError(w, "list suggestions", err)
		return
	}

	out := make([]suggestionDTO, 0, len(listings))
	for _, l := range listings {
		dto := suggestionDTO{
			ID:            l.ID,
			ChatID:        l.ChatID,
			ChatTitle:     l.ChatTitle,
			SuggestedText: l.SuggestedText,
			Translation:   l.Translation,
			Status:        string(l.Status),
			CreatedAt:     l.CreatedAt.UTC().Format(time.RFC3339),
		}
		if l.DecidedAt != nil {
			dto.DecidedAt = l.DecidedAt.UTC().Format(time.RFC3339)
		}
		out = append(out, dto)
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"suggestions": out})
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	s.handleDecision(w, r, domain.DecisionSend)
}

func (s *Server) handleDecline(w http.ResponseWriter, r *http.Request) {
	s.handleDecision(w, r, domain.DecisionDecline)
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request, decision domain.Decision) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid suggestion id")
		return
	}

	suggestion, err := s.decisionUC.Apply(r.Context(), id, decision)
	if err != nil {
		metrics.RecordDecision(string(decision), "error")
		s.writeDecisionError(w, id, decision, err)
		return
	}

	metrics.RecordDecision(string(decision), "ok")
	dto := suggestionDTO{
		ID:            suggestion.ID,
		ChatID:        suggestion.ChatID,
		SuggestedText: suggestion.SuggestedText,
		Translation:   suggestion.Translation,
		Status:        string(suggestion.Status),
		CreatedAt:     suggestion.CreatedAt.UTC().Format(time.RFC3339),
	}
	if suggestion.DecidedAt != nil {
		dto.DecidedAt = suggestion.DecidedAt.UTC().Format(time.RFC3339)
	}
	s.writeJSON(w, http.StatusOK, dto)
}

func (s *Server) writeDecisionError(w http.ResponseWriter, id int64, decision domain.Decision, err error) {
	var transport *domain.TransportError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "suggestion not found")
	case errors.Is(err, domain.ErrNotActionable):
		s.writeError(w, http.StatusConflict, "suggestion is not pending")
	case errors.As(err, &transport):
		// The row stays pending; the operator can retry.
		s.log.Warn("decision post failed",
			zap.Int64("suggestion_id", id),
			zap.String("decision", string(decision)),
			zap.Error(err))
		s.writeError(w, http.StatusBadGateway, "failed to post message, suggestion still pending")
	default:
		s.writeInternalError(w, "apply decision", err)
	}
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settingsRepo.Get(r.Context())
	if err != nil {
		s.writeInternalError(w, "get settings", err)
		return
	}
	s.writeJSON(w, http.StatusOK, settingsDTO{
		KMessages:         settings.KMessages,
		IntervalMinutes:   settings.IntervalMinutes,
		MaxPendingPerChat: settings.MaxPendingPerChat,
		CooldownMinutes:   settings.CooldownMinutes,
	})
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var dto settingsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings := domain.Settings{
		KMessages:         dto.KMessages,
		IntervalMinutes:   dto.IntervalMinutes,
		MaxPendingPerChat: dto.MaxPendingPerChat,
		CooldownMinutes:   dto.CooldownMinutes,
	}
	if err := settings.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.settingsRepo.Save(r.Context(), settings); err != nil {
		s.writeInternalError(w, "save settings", err)
		return
	}
	s.writeJSON(w, http.StatusOK, dto)
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := s.chatsUC.ListChats(r.Context())
	if err != nil {
		s.writeInternalError(w, "list chats", err)
		return
	}

	out := make([]chatDTO, 0, len(chats))
	for _, c := range chats {
		dto := chatDTO{ID: c.ID, Title: c.Title, IsSelected: c.IsSelected}
		if c.LastRunAt != nil {
			dto.LastRunAt = c.LastRunAt.UTC().Format(time.RFC3339)
		}
		out = append(out, dto)
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"chats": out})
}

func (s *Server) handlePutSelection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ChatIDs []int64 `json:"chat_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.chatsUC.SetSelection(r.Context(), body.ChatIDs); err != nil {
		s.writeInternalError(w, "set selection", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"selected": len(body.ChatIDs)})
}

func (s *Server) handleSyncChats(w http.ResponseWriter, r *http.Request) {
	count, err := s.chatsUC.SyncDialogs(r.Context())
	if err != nil {
		s.writeInternalError(w, "sync dialogs", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"synced": count})
}

func (s *Server) handleRunNow(w http.ResponseWriter, r *http.Request) {
	s.scheduler.Wake()
	s.writeJSON(w, http.StatusAccepted, map[string]interface{}{"status": "scheduled"})
}

func (s *Server) handleGetPrompts(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"version":       s.prompts.Version(),
		"system_prompt": s.prompts.SystemPrompt(),
	})
}

func (s *Server) handleReloadPrompts(w http.ResponseWriter, r *http.Request) {
	if err := s.prompts.Reload(); err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"version": s.prompts.Version()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) writeInternalError(w http.ResponseWriter, op string, err error) {
	s.log.Error("request failed", zap.String("op", op), zap.Error(err))
	s.writeError(w, http.StatusInternalServerError, "internal error")
}
