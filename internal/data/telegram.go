package data

import (
	"context"

	"github.com/replydesk/replydesk/internal/biz/domain"
	"github.com/replydesk/replydesk/internal/biz/repo"
	"github.com/replydesk/replydesk/internal/infra/telegram"
)

// telegramRepo adapts the Telegram client to the chat adapter interface.
type telegramRepo struct {
	client *telegram.Client
}

// NewTelegramRepo creates a new chat adapter repository.
func NewTelegramRepo(client *telegram.Client) repo.ChatClientRepo {
	return &telegramRepo{client: client}
}

// FetchRecent fetches up to count recent messages for a chat, oldest first.
func (r *telegramRepo) FetchRecent(ctx context.Context, chatID int64, count int) (domain.Window, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.TransportError{Op: "fetch", Err: err}
	}

	records := r.client.Recent(chatID, count)
	window := make(domain.Window, 0, len(records))
	for _, rec := range records {
		window = append(window, domain.Message{
			ID:     rec.ID,
			Text:   rec.Text,
			Sender: rec.Sender,
			FromMe: rec.FromMe,
			SentAt: rec.SentAt,
		})
	}
	return window, nil
}

// SendText posts a text message into a chat.
func (r *telegramRepo) SendText(ctx context.Context, chatID int64, text string) error {
	if err := r.client.Send(ctx, chatID, text); err != nil {
		return &domain.TransportError{Op: "send", Err: err}
	}
	return nil
}

// ListDialogs lists the chats currently visible to the account.
func (r *telegramRepo) ListDialogs(ctx context.Context) ([]repo.DialogInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.TransportError{Op: "dialogs", Err: err}
	}

	dialogs := r.client.Dialogs()
	out := make([]repo.DialogInfo, 0, len(dialogs))
	for _, d := range dialogs {
		out = append(out, repo.DialogInfo{ChatID: d.ChatID, Title: d.Title})
	}
	return out, nil
}
