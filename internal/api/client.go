// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

// Package api wraps the OpenAI chat completion endpoint behind a small
// interface the rest of the client depends on.
package api

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/aldev/gpterm/internal/model"
)

// ErrMissingCredential is returned when no API key is configured. The client
// still starts without one; only sending is disabled.
var ErrMissingCredential = errors.New("no API key set (define OPENAI_API_KEY)")

// APIError wraps a failure reported by the completion endpoint or the
// transport underneath it.
type APIError struct {
	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("api request failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error {
	return e.Err
}

// =============================================================================
// CLIENT
// =============================================================================

const (
	maxRetries     = 3
	initialBackoff = 500 * time.Millisecond
)

// completionAPI is the slice of the OpenAI SDK the client uses. Narrowed to
// an interface so tests can substitute a fake.
type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client sends chat completion requests with retry on transient failures.
type Client struct {
	api     completionAPI
	backoff time.Duration
}

// New creates a client with the given API key.
func New(apiKey string) *Client {
	return &Client{
		api:     openai.NewClient(apiKey),
		backoff: initialBackoff,
	}
}

// NewFromEnv creates a client from the OPENAI_API_KEY environment variable.
// Returns ErrMissingCredential when the variable is unset or blank.
func NewFromEnv() (*Client, error) {
	key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if key == "" {
		return nil, ErrMissingCredential
	}
	return New(key), nil
}

// =============================================================================
// SEND
// =============================================================================

// Send submits the system prompt plus conversation history and returns the
// assistant reply text. Transient failures (rate limits, 5xx, network) are
// retried with exponential backoff; the context cancels both the in-flight
// request and any remaining retries.
func (c *Client) Send(ctx context.Context, systemPrompt string, history []model.Message, modelName string, maxTokens int) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:     modelName,
		MaxTokens: maxTokens,
		Messages:  buildMessages(systemPrompt, history),
	}

	var lastErr error
	backoff := c.backoff
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", &APIError{Err: errors.New("response contained no choices")}
			}
			return resp.Choices[0].Message.Content, nil
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
		if !isRetryable(err) {
			break
		}
	}
	return "", &APIError{Err: lastErr}
}

// buildMessages flattens the system prompt and history into wire order: the
// system message first, then every user/assistant turn as appended.
func buildMessages(systemPrompt string, history []model.Message) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	if systemPrompt != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	for _, m := range history {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return msgs
}

// isRetryable reports whether a completion error is worth retrying.
func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	// Anything that is not a structured API rejection is assumed to be a
	// transport hiccup.
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 429 || reqErr.HTTPStatusCode >= 500
	}
	return true
}
