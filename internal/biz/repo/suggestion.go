package repo

import (
	"context"
	"time"

	"github.com/replydesk/replydesk/internal/biz/domain"
)

// SuggestionListing is a suggestion joined with its chat title for the
// operator queue.
type SuggestionListing struct {
	domain.Suggestion
	ChatTitle string
}

// SuggestionRepo is the suggestion repository interface.
// Responsible for suggestion persistence (SQLite).
type SuggestionRepo interface {
	// Get gets a suggestion by ID. Returns domain.ErrNotFound if missing.
	Get(ctx context.Context, id int64) (*domain.Suggestion, error)

	// List lists suggestions joined with chat titles, pending first then
	// newest first. An empty status lists all statuses.
	List(ctx context.Context, status domain.SuggestionStatus, limit int) ([]*SuggestionListing, error)

	// CreatePending inserts a pending suggestion and advances the owning
	// chat's last_fingerprint and last_run_at in one transaction. Either
	// both writes happen or neither.
	CreatePending(ctx context.Context, s *domain.Suggestion, runAt time.Time) error

	// CountPending returns a fresh count of pending suggestions for a chat.
	CountPending(ctx context.Context, chatID int64) (int, error)

	// LatestCreatedAt returns the creation time of the chat's newest
	// suggestion, or the zero time if the chat has none.
	LatestCreatedAt(ctx context.Context, chatID int64) (time.Time, error)

	// MarkDecided transitions a suggestion from pending to the given
	// terminal status. Returns domain.ErrNotActionable if the row is not
	// pending at update time.
	MarkDecided(ctx context.Context, id int64, status domain.SuggestionStatus, decidedAt time.Time) error
}
