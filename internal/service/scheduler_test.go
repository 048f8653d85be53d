package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/replydesk/replydesk/internal/biz/domain"
	"github.com/replydesk/replydesk/internal/biz/repo"
	"github.com/replydesk/replydesk/internal/biz/usecase"
)

// Fakes

type fakeChatRepo struct {
	selected []*domain.Chat
	err      error
}

func (f *fakeChatRepo) Get(ctx context.Context, chatID int64) (*domain.Chat, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeChatRepo) ListAll(ctx context.Context) ([]*domain.Chat, error) {
	return f.selected, f.err
}

func (f *fakeChatRepo) ListSelected(ctx context.Context) ([]*domain.Chat, error) {
	return f.selected, f.err
}

func (f *fakeChatRepo) Upsert(ctx context.Context, chat *domain.Chat) error { return nil }

func (f *fakeChatRepo) SetSelection(ctx context.Context, chatIDs []int64) error { return nil }

type fakeSettingsRepo struct {
	settings domain.Settings
	err      error
}

func (f *fakeSettingsRepo) Get(ctx context.Context) (domain.Settings, error) {
	return f.settings, f.err
}

func (f *fakeSettingsRepo) Save(ctx context.Context, s domain.Settings) error { return nil }

type fakeSuggestionRepo struct {
	mu      sync.Mutex
	created []int64
}

func (f *fakeSuggestionRepo) Get(ctx context.Context, id int64) (*domain.Suggestion, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeSuggestionRepo) List(ctx context.Context, status domain.SuggestionStatus, limit int) ([]*repo.SuggestionListing, error) {
	return nil, nil
}

func (f *fakeSuggestionRepo) CreatePending(ctx context.Context, s *domain.Suggestion, runAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, s.ChatID)
	s.ID = int64(len(f.created))
	return nil
}

func (f *fakeSuggestionRepo) CountPending(ctx context.Context, chatID int64) (int, error) {
	return 0, nil
}

func (f *fakeSuggestionRepo) LatestCreatedAt(ctx context.Context, chatID int64) (time.Time, error) {
	return time.Time{}, nil
}

func (f *fakeSuggestionRepo) MarkDecided(ctx context.Context, id int64, status domain.SuggestionStatus, decidedAt time.Time) error {
	return nil
}

func (f *fakeSuggestionRepo) createdChats() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.created...)
}

// fakeChatClient serves a distinct window per chat and can fail selected
// chats. It also tracks fetch concurrency to verify tick serialization.
type fakeChatClient struct {
	failing map[int64]bool

	active  atomic.Int32
	overlap atomic.Bool
}

func (f *fakeChatClient) FetchRecent(ctx context.Context, chatID int64, count int) (domain.Window, error) {
	if f.active.Add(1) > 1 {
		f.overlap.Store(true)
	}
	defer f.active.Add(-1)
	time.Sleep(time.Millisecond)

	if f.failing[chatID] {
		return nil, &domain.TransportError{Op: "fetch", Err: errors.New("flood wait")}
	}
	return domain.Window{
		{ID: chatID*10 + 1, Text: fmt.Sprintf("ping from %d", chatID), SentAt: time.Now()},
	}, nil
}

func (f *fakeChatClient) SendText(ctx context.Context, chatID int64, text string) error {
	return nil
}

func (f *fakeChatClient) ListDialogs(ctx context.Context) ([]repo.DialogInfo, error) {
	return nil, nil
}

type fakeCompletion struct{}

func (f *fakeCompletion) SuggestReply(ctx context.Context, systemPrompt, userPrompt string) (*domain.ReplyDraft, error) {
	return &domain.ReplyDraft{SuggestedText: "ok", Translation: "ок"}, nil
}

type fakePrompts struct{}

func (f *fakePrompts) SystemPrompt() string { return "system" }

func (f *fakePrompts) RenderSuggestReply(chatTitle, languageHint, messagesJSON string) string {
	return "task"
}

func (f *fakePrompts) Version() int64 { return 1 }

// Helpers

func newTestScheduler(chats *fakeChatRepo, settings *fakeSettingsRepo, client *fakeChatClient) (*Scheduler, *fakeSuggestionRepo) {
	suggestions := &fakeSuggestionRepo{}
	generator := usecase.NewGeneratorUsecase(suggestions, client, &fakeCompletion{}, &fakePrompts{}, zap.NewNop())
	return NewScheduler(chats, settings, generator, zap.NewNop()), suggestions
}

// Tests

func TestRunOnce_ProcessesSelectedChats(t *testing.T) {
	chats := &fakeChatRepo{selected: []*domain.Chat{
		{ID: 1, Title: "Alex", IsSelected: true},
		{ID: 2, Title: "Work group", IsSelected: true},
	}}
	settings := &fakeSettingsRepo{settings: domain.DefaultSettings()}
	scheduler, suggestions := newTestScheduler(chats, settings, &fakeChatClient{})

	interval := scheduler.RunOnce(context.Background())
	if interval != 5*time.Minute {
		t.Errorf("Expected 5m interval, got %v", interval)
	}

	created := suggestions.createdChats()
	if len(created) != 2 {
		t.Fatalf("Expected suggestions for 2 chats, got %d", len(created))
	}
}

func TestRunOnce_FailureDoesNotStopOtherChats(t *testing.T) {
	chats := &fakeChatRepo{selected: []*domain.Chat{
		{ID: 1, Title: "Broken", IsSelected: true},
		{ID: 2, Title: "Healthy", IsSelected: true},
	}}
	settings := &fakeSettingsRepo{settings: domain.DefaultSettings()}
	client := &fakeChatClient{failing: map[int64]bool{1: true}}
	scheduler, suggestions := newTestScheduler(chats, settings, client)

	scheduler.RunOnce(context.Background())

	created := suggestions.createdChats()
	if len(created) != 1 || created[0] != 2 {
		t.Errorf("Expected the healthy chat to still generate, got %v", created)
	}

	// The failure is transient state, not poison: the next tick with a
	// recovered chat succeeds.
	client.failing = nil
	chats.selected[0].LastFingerprint = ""
	scheduler.RunOnce(context.Background())
	if len(suggestions.createdChats()) != 2 {
		t.Error("Recovered chat did not generate on the next tick")
	}
}

func TestRunOnce_SettingsFailureFallsBackToDefaultInterval(t *testing.T) {
	chats := &fakeChatRepo{}
	settings := &fakeSettingsRepo{err: errors.New("db locked")}
	scheduler, suggestions := newTestScheduler(chats, settings, &fakeChatClient{})

	interval := scheduler.RunOnce(context.Background())
	if interval != domain.DefaultSettings().Interval() {
		t.Errorf("Expected default interval, got %v", interval)
	}
	if len(suggestions.createdChats()) != 0 {
		t.Error("Tick generated without settings")
	}
}

func TestRunOnce_TicksAreSerialized(t *testing.T) {
	var selected []*domain.Chat
	for i := int64(1); i <= 5; i++ {
		selected = append(selected, &domain.Chat{ID: i, IsSelected: true})
	}
	chats := &fakeChatRepo{selected: selected}
	settings := &fakeSettingsRepo{settings: domain.Settings{
		KMessages: 20, IntervalMinutes: 5, MaxPendingPerChat: 10,
	}}
	client := &fakeChatClient{}
	scheduler, _ := newTestScheduler(chats, settings, client)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scheduler.RunOnce(context.Background())
		}()
	}
	wg.Wait()

	if client.overlap.Load() {
		t.Error("Concurrent RunOnce calls overlapped inside a tick")
	}
}

func TestRunOnce_StopsMidTickOnCancel(t *testing.T) {
	var selected []*domain.Chat
	for i := int64(1); i <= 10; i++ {
		selected = append(selected, &domain.Chat{ID: i, IsSelected: true})
	}
	chats := &fakeChatRepo{selected: selected}
	settings := &fakeSettingsRepo{settings: domain.DefaultSettings()}
	scheduler, suggestions := newTestScheduler(chats, settings, &fakeChatClient{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	scheduler.RunOnce(ctx)

	if len(suggestions.createdChats()) != 0 {
		t.Error("Cancelled tick still processed chats")
	}
}

func TestWakeCoalesces(t *testing.T) {
	chats := &fakeChatRepo{}
	settings := &fakeSettingsRepo{settings: domain.DefaultSettings()}
	scheduler, _ := newTestScheduler(chats, settings, &fakeChatClient{})

	// Repeated wakes while no loop is draining must not block.
	for i := 0; i < 5; i++ {
		scheduler.Wake()
	}
	if len(scheduler.wake) != 1 {
		t.Errorf("Expected a single coalesced wake, got %d", len(scheduler.wake))
	}
}

func TestStartStop(t *testing.T) {
	chats := &fakeChatRepo{}
	settings := &fakeSettingsRepo{settings: domain.DefaultSettings()}
	scheduler, _ := newTestScheduler(chats, settings, &fakeChatClient{})

	scheduler.Start(context.Background())
	scheduler.Stop()
}
