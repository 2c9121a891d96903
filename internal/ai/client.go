// Package ai wraps the OpenAI SDK behind the CompletionGateway interface.
// It performs no retries; fallback policy belongs to the orchestrator.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/medreport-assistant-server/internal/domain"
)

// Client is a completion gateway backed by the OpenAI API. A client built
// without an API key is permanently unavailable and callers are expected to
// take the offline path without invoking Complete.
type Client struct {
	api         *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	logger      *logrus.Logger
}

// NewClient creates a completion gateway from configuration.
func NewClient(cfg *domain.AIConfig, logger *logrus.Logger) *Client {
	c := &Client{
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      logger,
	}
	if cfg.APIKey != "" {
		c.api = openai.NewClient(cfg.APIKey)
	} else {
		logger.Warn("no AI API key configured, running in offline mode")
	}
	return c
}

// Available reports whether the gateway is configured for remote completion.
func (c *Client) Available() bool {
	return c.api != nil
}

// Complete sends a prompt and returns the model's text answer. Failures are
// tagged with a RemoteErrorKind so the caller can branch deterministically:
// quota exhaustion must not be retried, anything else falls back offline.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.api == nil {
		return "", domain.NewRemoteError(domain.ErrKindUnavailable, "ai.complete", nil)
	}

	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.NewRemoteError(domain.ErrKindTransient, "ai.complete",
			fmt.Errorf("completion returned no choices"))
	}
	return resp.Choices[0].Message.Content, nil
}

// requestContext bounds one completion call by the configured timeout.
func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// classifyError maps SDK errors onto the domain error taxonomy.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return domain.NewRemoteError(domain.ErrKindQuota, "ai.complete", err)
	}
	return domain.NewRemoteError(domain.ErrKindTransient, "ai.complete", err)
}
