package repo

import (
	"context"

	"github.com/replydesk/replydesk/internal/biz/domain"
)

// ChatRepo is the chat repository interface.
// Responsible for persisting monitored chats (SQLite).
type ChatRepo interface {
	// Get gets a chat by ID. Returns domain.ErrNotFound if missing.
	Get(ctx context.Context, chatID int64) (*domain.Chat, error)

	// ListAll lists all known chats ordered by title.
	ListAll(ctx context.Context) ([]*domain.Chat, error)

	// ListSelected lists chats with is_selected set.
	ListSelected(ctx context.Context) ([]*domain.Chat, error)

	// Upsert creates or refreshes a chat's identity fields (id, title).
	// Selection and fingerprint state are left untouched on update.
	Upsert(ctx context.Context, chat *domain.Chat) error

	// SetSelection replaces the selected set with the given chat IDs.
	SetSelection(ctx context.Context, chatIDs []int64) error
}
