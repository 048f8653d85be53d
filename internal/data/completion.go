package data

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/replydesk/replydesk/internal/biz/domain"
	"github.com/replydesk/replydesk/internal/biz/repo"
	"github.com/replydesk/replydesk/internal/infra/openai"
	"github.com/replydesk/replydesk/pkg/metrics"
)

// completionRepo adapts the OpenAI client to the completion interface and
// validates its loosely-typed output into the fixed two-field draft before
// anything downstream sees it.
type completionRepo struct {
	client *openai.Client
}

// NewCompletionRepo creates a new completion adapter repository.
func NewCompletionRepo(client *openai.Client) repo.CompletionRepo {
	return &completionRepo{client: client}
}

// SuggestReply submits the rendered prompts and returns a validated draft.
func (r *completionRepo) SuggestReply(ctx context.Context, systemPrompt, userPrompt string) (*domain.ReplyDraft, error) {
	start := time.Now()
	content, err := r.client.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		metrics.RecordCompletion("error", time.Since(start).Seconds())
		return nil, &domain.ServiceError{Err: err}
	}
	metrics.RecordCompletion("ok", time.Since(start).Seconds())
	if content == "" {
		return nil, &domain.ServiceError{Err: fmt.Errorf("empty response: %w", domain.ErrMalformedCompletion)}
	}

	var draft domain.ReplyDraft
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return nil, &domain.ServiceError{Err: fmt.Errorf("parse response: %v: %w", err, domain.ErrMalformedCompletion)}
	}
	if err := draft.Validate(); err != nil {
		return nil, &domain.ServiceError{Err: err}
	}
	return &draft, nil
}
