package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/replydesk/replydesk/internal/biz/domain"
	"github.com/replydesk/replydesk/internal/biz/repo"
	"github.com/replydesk/replydesk/internal/biz/usecase"
	"github.com/replydesk/replydesk/pkg/metrics"
)

// minWait floors the pause between ticks so a misconfigured interval cannot
// spin the loop.
const minWait = 30 * time.Second

// Scheduler drives the suggestion generator across all selected chats on a
// fixed interval. Ticks are serialized: a long tick delays the next start
// rather than overlapping it.
type Scheduler struct {
	chatRepo     repo.ChatRepo
	settingsRepo repo.SettingsRepo
	generator    *usecase.GeneratorUsecase
	log          *zap.Logger

	wake   chan struct{}
	tickMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a new scheduler.
func NewScheduler(
	chatRepo repo.ChatRepo,
	settingsRepo repo.SettingsRepo,
	generator *usecase.GeneratorUsecase,
	log *zap.Logger,
) *Scheduler {
	return &Scheduler{
		chatRepo:     chatRepo,
		settingsRepo: settingsRepo,
		generator:    generator,
		log:          log,
		wake:         make(chan struct{}, 1),
	}
}

// Start starts the scheduler loop. The first tick runs shortly after start.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.loop()
	s.log.Info("scheduler started")
}

// Stop stops the scheduler. An in-flight tick finishes its current chat and
// is not resumed.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

// Wake requests an immediate tick. If a tick is already running, the request
// coalesces with the next loop turn.
func (s *Scheduler) Wake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	for {
		interval := s.RunOnce(s.ctx)

		wait := interval
		if wait < minWait {
			wait = minWait
		}

		timer := time.NewTimer(wait)
		select {
		case <-s.ctx.Done():
			timer.Stop()
			return
		case <-s.wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// RunOnce executes a single tick and returns the poll interval from the
// settings snapshot it used. Concurrent callers are serialized.
func (s *Scheduler) RunOnce(ctx context.Context) time.Duration {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	metrics.TicksTotal.Inc()

	// One consistent snapshot per tick; mid-cycle edits apply next tick.
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		s.log.Error("failed to read settings", zap.Error(err))
		return domain.DefaultSettings().Interval()
	}

	chats, err := s.chatRepo.ListSelected(ctx)
	if err != nil {
		s.log.Error("failed to list selected chats", zap.Error(err))
		return settings.Interval()
	}

	if len(chats) == 0 {
		s.log.Debug("tick skipped: no selected chats")
		return settings.Interval()
	}

	s.log.Info("tick start",
		zap.Int("selected_chats", len(chats)),
		zap.Int("k_messages", settings.KMessages),
		zap.Int("max_pending", settings.MaxPendingPerChat))

	for _, chat := range chats {
		// Shutdown lets the current chat finish but does not start
		// the next one.
		if ctx.Err() != nil {
			s.log.Info("tick interrupted by shutdown")
			return settings.Interval()
		}
		s.runChat(ctx, chat, settings)
	}

	s.log.Info("tick done")
	return settings.Interval()
}

// runChat isolates one chat's generation: a failure is logged and counted
// and never stops the remaining chats or future ticks.
func (s *Scheduler) runChat(ctx context.Context, chat *domain.Chat, settings domain.Settings) {
	_, err := s.generator.GenerateForChat(ctx, chat, settings)
	switch {
	case err == nil:
		metrics.RecordGeneration(metrics.OutcomeCreated)
	case domain.IsCleanSkip(err):
		metrics.RecordGeneration(skipOutcome(err))
		s.log.Debug("chat skipped",
			zap.Int64("chat_id", chat.ID),
			zap.String("reason", err.Error()))
	default:
		metrics.RecordGeneration(metrics.OutcomeFailed)
		s.log.Error("generation failed",
			zap.Int64("chat_id", chat.ID),
			zap.String("chat_title", chat.Title),
			zap.Error(err))
	}
}

func skipOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrThrottled):
		return metrics.OutcomeThrottled
	case errors.Is(err, domain.ErrNoReplyNeeded):
		return metrics.OutcomeNoReply
	default:
		return metrics.OutcomeUnchanged
	}
}
