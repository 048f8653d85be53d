package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/replydesk/replydesk/internal/biz/repo"
	"github.com/replydesk/replydesk/internal/biz/usecase"
	"github.com/replydesk/replydesk/internal/conf"
	"github.com/replydesk/replydesk/internal/service"
)

// Server provides the operator-facing JSON API.
type Server struct {
	suggestionRepo repo.SuggestionRepo
	settingsRepo   repo.SettingsRepo
	decisionUC     *usecase.DecisionUsecase
	chatsUC        *usecase.ChatsUsecase
	scheduler      *service.Scheduler
	prompts        *conf.PromptStore
	log            *zap.Logger

	server *http.Server
}

// NewServer creates a new API server.
func NewServer(
	suggestionRepo repo.SuggestionRepo,
	settingsRepo repo.SettingsRepo,
	decisionUC *usecase.DecisionUsecase,
	chatsUC *usecase.ChatsUsecase,
	scheduler *service.Scheduler,
	prompts *conf.PromptStore,
	log *zap.Logger,
	port int,
) *Server {
	s := &Server{
		suggestionRepo: suggestionRepo,
		settingsRepo:   settingsRepo,
		decisionUC:     decisionUC,
		chatsUC:        chatsUC,
		scheduler:      scheduler,
		prompts:        prompts,
		log:            log,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/suggestions", s.handleListSuggestions)
		r.Post("/suggestions/{id}/send", s.handleSend)
		r.Post("/suggestions/{id}/decline", s.handleDecline)

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)

		r.Get("/chats", s.handleListChats)
		r.Put("/chats/selection", s.handlePutSelection)
		r.Post("/chats/sync", s.handleSyncChats)

		r.Post("/run-now", s.handleRunNow)

		r.Get("/prompts", s.handleGetPrompts)
		r.Post("/prompts/reload", s.handleReloadPrompts)
	})

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.log.Info("api server listening", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Stop shuts the HTTP server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
