package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/replydesk/replydesk/internal/biz/domain"
	"github.com/replydesk/replydesk/internal/biz/repo"
)

// DecisionUsecase applies operator send/decline actions to suggestions.
type DecisionUsecase struct {
	suggestionRepo repo.SuggestionRepo
	chatClient     repo.ChatClientRepo
	log            *zap.Logger
	now            func() time.Time
}

// NewDecisionUsecase creates a new decision usecase.
func NewDecisionUsecase(suggestionRepo repo.SuggestionRepo, chatClient repo.ChatClientRepo, log *zap.Logger) *DecisionUsecase {
	return &DecisionUsecase{
		suggestionRepo: suggestionRepo,
		chatClient:     chatClient,
		log:            log,
		now:            time.Now,
	}
}

// Apply applies a decision to a suggestion. Send posts the suggested text
// (never the translation) to the chat first and only transitions the row on
// a successful post; a failed post leaves the row pending so the operator
// can retry. Decline is local. A non-pending row yields ErrNotActionable.
func (uc *DecisionUsecase) Apply(ctx context.Context, suggestionID int64, decision domain.Decision) (*domain.Suggestion, error) {
	status, ok := domain.StatusFor(decision)
	if !ok {
		return nil, fmt.Errorf("unknown decision %q", decision)
	}

	suggestion, err := uc.suggestionRepo.Get(ctx, suggestionID)
	if err != nil {
		return nil, fmt.Errorf("get suggestion: %w", err)
	}
	if !suggestion.IsActionable() {
		return nil, domain.ErrNotActionable
	}

	if decision == domain.DecisionSend {
		if err := uc.chatClient.SendText(ctx, suggestion.ChatID, suggestion.SuggestedText); err != nil {
			uc.log.Warn("send failed, suggestion stays pending",
				zap.Int64("suggestion_id", suggestionID),
				zap.Int64("chat_id", suggestion.ChatID),
				zap.Error(err))
			return nil, fmt.Errorf("post message: %w", err)
		}
	}

	decidedAt := uc.now()
	// The guarded update closes the double-submission window between the
	// pending check above and this write.
	if err := uc.suggestionRepo.MarkDecided(ctx, suggestionID, status, decidedAt); err != nil {
		return nil, err
	}

	suggestion.Status = status
	suggestion.DecidedAt = &decidedAt

	uc.log.Info("decision applied",
		zap.Int64("suggestion_id", suggestionID),
		zap.String("decision", string(decision)))

	return suggestion, nil
}
