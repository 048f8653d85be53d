package repo

import (
	"context"

	"github.com/replydesk/replydesk/internal/biz/domain"
)

// DialogInfo identifies a chat visible to the Telegram account.
type DialogInfo struct {
	ChatID int64
	Title  string
}

// ChatClientRepo is the chat platform adapter interface.
// Failures surface as *domain.TransportError.
type ChatClientRepo interface {
	// FetchRecent fetches up to count recent messages for a chat,
	// oldest first.
	FetchRecent(ctx context.Context, chatID int64, count int) (domain.Window, error)

	// SendText posts a text message into a chat.
	SendText(ctx context.Context, chatID int64, text string) error

	// ListDialogs lists the chats currently visible to the account.
	ListDialogs(ctx context.Context) ([]DialogInfo, error)
}
