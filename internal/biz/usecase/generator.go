package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/replydesk/replydesk/internal/biz/domain"
	"github.com/replydesk/replydesk/internal/biz/repo"
)

// GeneratorUsecase drives one chat through the suggestion pipeline:
// fetch, change check, throttle check, prompt render, completion, persist.
type GeneratorUsecase struct {
	suggestionRepo repo.SuggestionRepo
	chatClient     repo.ChatClientRepo
	completion     repo.CompletionRepo
	prompts        repo.PromptProvider
	log            *zap.Logger
	now            func() time.Time
}

// NewGeneratorUsecase creates a new generator usecase.
func NewGeneratorUsecase(
	suggestionRepo repo.SuggestionRepo,
	chatClient repo.ChatClientRepo,
	completion repo.CompletionRepo,
	prompts repo.PromptProvider,
	log *zap.Logger,
) *GeneratorUsecase {
	return &GeneratorUsecase{
		suggestionRepo: suggestionRepo,
		chatClient:     chatClient,
		completion:     completion,
		prompts:        prompts,
		log:            log,
		now:            time.Now,
	}
}

// sourceMessage is the persisted/prompted form of one window message.
type sourceMessage struct {
	ID     int64  `json:"id"`
	Date   string `json:"date"`
	FromMe bool   `json:"from_me"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// GenerateForChat runs one generation cycle for a single chat. It returns a
// clean-skip sentinel (ErrUnchanged, ErrThrottled, ErrNoReplyNeeded) for a
// deliberate no-op, or a failure that leaves the chat's state untouched so
// the next tick retries with the same input.
func (uc *GeneratorUsecase) GenerateForChat(ctx context.Context, chat *domain.Chat, settings domain.Settings) (*domain.Suggestion, error) {
	window, err := uc.chatClient.FetchRecent(ctx, chat.ID, settings.KMessages)
	if err != nil {
		return nil, fmt.Errorf("fetch recent messages: %w", err)
	}

	fingerprint := domain.Fingerprint(window)
	if !chat.NeedsGeneration(fingerprint) {
		return nil, domain.ErrUnchanged
	}

	if window.EndsWithOwn() {
		// No fingerprint advancement here: advancing without a
		// suggestion would break the atomic-advancement invariant.
		return nil, domain.ErrNoReplyNeeded
	}

	// Fresh count at check time; decisions may have landed since the
	// tick started.
	if err := uc.checkThrottle(ctx, chat.ID, settings); err != nil {
		return nil, err
	}

	messagesJSON, err := encodeWindow(window)
	if err != nil {
		return nil, fmt.Errorf("encode message window: %w", err)
	}

	userPrompt := uc.prompts.RenderSuggestReply(chat.Title, chat.LanguageHint, messagesJSON)

	draft, err := uc.completion.SuggestReply(ctx, uc.prompts.SystemPrompt(), userPrompt)
	if err != nil {
		return nil, fmt.Errorf("suggest reply: %w", err)
	}

	now := uc.now()
	suggestion := &domain.Suggestion{
		ChatID:        chat.ID,
		SuggestedText: draft.SuggestedText,
		Translation:   draft.Translation,
		Status:        domain.StatusPending,
		Fingerprint:   fingerprint,
		SourceJSON:    messagesJSON,
		CreatedAt:     now,
	}

	if err := uc.suggestionRepo.CreatePending(ctx, suggestion, now); err != nil {
		return nil, fmt.Errorf("persist suggestion: %w", err)
	}

	chat.LastFingerprint = fingerprint
	chat.LastRunAt = &now

	uc.log.Info("suggestion created",
		zap.Int64("chat_id", chat.ID),
		zap.Int64("suggestion_id", suggestion.ID))

	return suggestion, nil
}

func (uc *GeneratorUsecase) checkThrottle(ctx context.Context, chatID int64, settings domain.Settings) error {
	pending, err := uc.suggestionRepo.CountPending(ctx, chatID)
	if err != nil {
		return fmt.Errorf("count pending: %w", err)
	}
	if pending >= settings.MaxPendingPerChat {
		return domain.ErrThrottled
	}

	if cooldown := settings.Cooldown(); cooldown > 0 {
		latest, err := uc.suggestionRepo.LatestCreatedAt(ctx, chatID)
		if err != nil {
			return fmt.Errorf("latest suggestion time: %w", err)
		}
		if !latest.IsZero() && uc.now().Sub(latest) < cooldown {
			return domain.ErrThrottled
		}
	}
	return nil
}

func encodeWindow(w domain.Window) (string, error) {
	out := make([]sourceMessage, 0, len(w))
	for _, m := range w {
		sender := m.Sender
		if sender == "" {
			if m.FromMe {
				sender = "me"
			} else {
				sender = "other"
			}
		}
		out = append(out, sourceMessage{
			ID:     m.ID,
			Date:   m.SentAt.UTC().Format(time.RFC3339),
			FromMe: m.FromMe,
			Sender: sender,
			Text:   m.Text,
		})
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
