package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	defaultModel       = "gpt-4o-mini"
	defaultTemperature = 0.7
	maxOutputTokens    = 600
	maxRetryDelay      = 8 * time.Second
)

// Client wraps the OpenAI chat completion API for reply drafting.
type Client struct {
	client     *openai.Client
	model      string
	timeout    time.Duration
	maxRetries int
	log        *zap.Logger
}

// NewClient creates a new completion client.
func NewClient(apiKey, model string, timeout time.Duration, maxRetries int, log *zap.Logger) *Client {
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		client:     openai.NewClient(apiKey),
		model:      model,
		timeout:    timeout,
		maxRetries: maxRetries,
		log:        log,
	}
}

// Complete sends the prompts in JSON mode and returns the raw response
// content. Transient failures are retried with capped exponential backoff.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		content, err := c.completeOnce(ctx, systemPrompt, userPrompt)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if attempt < c.maxRetries {
			delay := time.Duration(1<<uint(attempt)) * time.Second
			if delay > maxRetryDelay {
				delay = maxRetryDelay
			}
			c.log.Warn("completion attempt failed",
				zap.Int("attempt", attempt+1),
				zap.Duration("retry_in", delay),
				zap.Error(err))

			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return "", lastErr
}

func (c *Client) completeOnce(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: defaultTemperature,
		MaxTokens:   maxOutputTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}
	return resp.Choices[0].Message.Content, nil
}
