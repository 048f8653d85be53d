package repo

import (
	"context"

	"github.com/replydesk/replydesk/internal/biz/domain"
)

// CompletionRepo is the completion service adapter interface.
// Failures surface as *domain.ServiceError; output that does not parse into
// the two-field draft unwraps to domain.ErrMalformedCompletion.
type CompletionRepo interface {
	// SuggestReply submits the rendered prompts and returns a validated
	// reply draft.
	SuggestReply(ctx context.Context, systemPrompt, userPrompt string) (*domain.ReplyDraft, error)
}
