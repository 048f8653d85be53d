package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/replydesk/replydesk/internal/biz/domain"
	"github.com/replydesk/replydesk/internal/biz/repo"
)

// ChatsUsecase handles dialog sync and chat selection.
type ChatsUsecase struct {
	chatRepo   repo.ChatRepo
	chatClient repo.ChatClientRepo
	log        *zap.Logger
}

// NewChatsUsecase creates a new chats usecase.
func NewChatsUsecase(chatRepo repo.ChatRepo, chatClient repo.ChatClientRepo, log *zap.Logger) *ChatsUsecase {
	return &ChatsUsecase{
		chatRepo:   chatRepo,
		chatClient: chatClient,
		log:        log,
	}
}

// SyncDialogs upserts the chats currently visible to the Telegram account.
// Returns the number of dialogs processed.
func (uc *ChatsUsecase) SyncDialogs(ctx context.Context) (int, error) {
	dialogs, err := uc.chatClient.ListDialogs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list dialogs: %w", err)
	}

	for _, d := range dialogs {
		chat := &domain.Chat{ID: d.ChatID, Title: d.Title}
		if err := uc.chatRepo.Upsert(ctx, chat); err != nil {
			return 0, fmt.Errorf("upsert chat %d: %w", d.ChatID, err)
		}
	}

	uc.log.Info("dialogs synced", zap.Int("count", len(dialogs)))
	return len(dialogs), nil
}

// ListChats lists all known chats.
func (uc *ChatsUsecase) ListChats(ctx context.Context) ([]*domain.Chat, error) {
	return uc.chatRepo.ListAll(ctx)
}

// SetSelection replaces the monitored set with the given chat IDs.
func (uc *ChatsUsecase) SetSelection(ctx context.Context, chatIDs []int64) error {
	if err := uc.chatRepo.SetSelection(ctx, chatIDs); err != nil {
		return fmt.Errorf("set selection: %w", err)
	}
	uc.log.Info("chat selection updated", zap.Int("selected", len(chatIDs)))
	return nil
}
