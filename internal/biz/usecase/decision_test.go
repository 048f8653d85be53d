package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/replydesk/replydesk/internal/biz/domain"
)

func seedPending(repo *mockSuggestionRepo) *domain.Suggestion {
	s := &domain.Suggestion{
		ChatID:        42,
		SuggestedText: "sure, noon works",
		Translation:   "конечно, полдень подходит",
		Status:        domain.StatusPending,
		CreatedAt:     time.Now(),
	}
	repo.CreatePending(context.Background(), s, time.Now())
	return s
}

func TestApply_SendPostsAndTransitions(t *testing.T) {
	suggestions := newMockSuggestionRepo()
	client := &mockChatClient{}
	uc := NewDecisionUsecase(suggestions, client, zap.NewNop())

	seeded := seedPending(suggestions)

	result, err := uc.Apply(context.Background(), seeded.ID, domain.DecisionSend)
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	if len(client.sent) != 1 {
		t.Fatalf("Expected one message posted, got %d", len(client.sent))
	}
	// The posted text is the reply, never the operator-facing translation.
	if client.sent[0] != "sure, noon works" {
		t.Errorf("Posted wrong text: %q", client.sent[0])
	}
	if client.sentTo[0] != 42 {
		t.Errorf("Posted to wrong chat: %d", client.sentTo[0])
	}
	if result.Status != domain.StatusSent {
		t.Errorf("Expected sent status, got %s", result.Status)
	}
	if result.DecidedAt == nil {
		t.Error("Decided time was not set")
	}

	stored, _ := suggestions.Get(context.Background(), seeded.ID)
	if stored.Status != domain.StatusSent {
		t.Errorf("Stored status not updated: %s", stored.Status)
	}
}

func TestApply_DeclineIsLocal(t *testing.T) {
	suggestions := newMockSuggestionRepo()
	client := &mockChatClient{}
	uc := NewDecisionUsecase(suggestions, client, zap.NewNop())

	seeded := seedPending(suggestions)

	result, err := uc.Apply(context.Background(), seeded.ID, domain.DecisionDecline)
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if len(client.sent) != 0 {
		t.Error("Decline must not post to the chat")
	}
	if result.Status != domain.StatusDeclined {
		t.Errorf("Expected declined status, got %s", result.Status)
	}
}

func TestApply_SendFailureKeepsRowPending(t *testing.T) {
	suggestions := newMockSuggestionRepo()
	client := &mockChatClient{sendErr: &domain.TransportError{Op: "send", Err: errors.New("flood wait")}}
	uc := NewDecisionUsecase(suggestions, client, zap.NewNop())

	seeded := seedPending(suggestions)

	_, err := uc.Apply(context.Background(), seeded.ID, domain.DecisionSend)
	if err == nil {
		t.Fatal("Expected failure")
	}
	var transport *domain.TransportError
	if !errors.As(err, &transport) {
		t.Errorf("Expected wrapped TransportError, got %v", err)
	}

	// The operator can retry: the row never left pending.
	stored, _ := suggestions.Get(context.Background(), seeded.ID)
	if stored.Status != domain.StatusPending {
		t.Errorf("Expected row to stay pending, got %s", stored.Status)
	}
	if len(suggestions.markDecided) != 0 {
		t.Error("Transition was recorded despite failed post")
	}
}

func TestApply_DoubleDecisionRejected(t *testing.T) {
	suggestions := newMockSuggestionRepo()
	client := &mockChatClient{}
	uc := NewDecisionUsecase(suggestions, client, zap.NewNop())

	seeded := seedPending(suggestions)

	if _, err := uc.Apply(context.Background(), seeded.ID, domain.DecisionDecline); err != nil {
		t.Fatalf("First decision failed: %v", err)
	}

	_, err := uc.Apply(context.Background(), seeded.ID, domain.DecisionSend)
	if !errors.Is(err, domain.ErrNotActionable) {
		t.Fatalf("Expected ErrNotActionable, got %v", err)
	}
	if len(client.sent) != 0 {
		t.Error("Second decision posted to the chat")
	}
}

func TestApply_RaceLostAtUpdateTime(t *testing.T) {
	// The row is pending when read but another decision lands before the
	// transition write. The guarded update reports it.
	suggestions := newMockSuggestionRepo()
	suggestions.markErr = domain.ErrNotActionable
	client := &mockChatClient{}
	uc := NewDecisionUsecase(suggestions, client, zap.NewNop())

	seeded := seedPending(suggestions)

	_, err := uc.Apply(context.Background(), seeded.ID, domain.DecisionDecline)
	if !errors.Is(err, domain.ErrNotActionable) {
		t.Fatalf("Expected ErrNotActionable, got %v", err)
	}
}

func TestApply_UnknownSuggestion(t *testing.T) {
	suggestions := newMockSuggestionRepo()
	uc := NewDecisionUsecase(suggestions, &mockChatClient{}, zap.NewNop())

	_, err := uc.Apply(context.Background(), 999, domain.DecisionSend)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestApply_UnknownDecision(t *testing.T) {
	suggestions := newMockSuggestionRepo()
	uc := NewDecisionUsecase(suggestions, &mockChatClient{}, zap.NewNop())

	seeded := seedPending(suggestions)

	if _, err := uc.Apply(context.Background(), seeded.ID, domain.Decision("approve")); err == nil {
		t.Fatal("Expected failure for unknown decision")
	}
}
