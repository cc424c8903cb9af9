// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

package api

import (
	"context"
	"errors"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/aldev/gpterm/internal/model"
)

// fakeAPI scripts a sequence of responses for successive calls.
type fakeAPI struct {
	calls    int
	requests []openai.ChatCompletionRequest
	results  []fakeResult
}

type fakeResult struct {
	content string
	err     error
}

func (f *fakeAPI) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.requests = append(f.requests, req)
	i := f.calls
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	f.calls++
	r := f.results[i]
	if r.err != nil {
		return openai.ChatCompletionResponse{}, r.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: r.content}},
		},
	}, nil
}

func newTestClient(results ...fakeResult) (*Client, *fakeAPI) {
	f := &fakeAPI{results: results}
	return &Client{api: f, backoff: time.Millisecond}, f
}

func TestSendBuildsRequest(t *testing.T) {
	c, f := newTestClient(fakeResult{content: "hi there"})

	history := []model.Message{
		model.NewMessage(model.RoleUser, "hello"),
		model.NewMessage(model.RoleAssistant, "hi"),
		model.NewMessage(model.RoleUser, "continue"),
	}
	reply, err := c.Send(context.Background(), "be brief", history, "gpt-4o-mini", 150)
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if reply != "hi there" {
		t.Errorf("Send() = %q, want hi there", reply)
	}

	req := f.requests[0]
	if req.Model != "gpt-4o-mini" || req.MaxTokens != 150 {
		t.Errorf("request model/maxTokens = %q/%d", req.Model, req.MaxTokens)
	}
	if len(req.Messages) != 4 {
		t.Fatalf("request has %d messages, want 4", len(req.Messages))
	}
	if req.Messages[0].Role != openai.ChatMessageRoleSystem || req.Messages[0].Content != "be brief" {
		t.Errorf("first message = %+v, want system prompt", req.Messages[0])
	}
	if req.Messages[1].Role != "user" || req.Messages[3].Content != "continue" {
		t.Errorf("history not replayed in order: %+v", req.Messages[1:])
	}
}

func TestSendRetriesTransientErrors(t *testing.T) {
	c, f := newTestClient(
		fakeResult{err: &openai.APIError{HTTPStatusCode: 429}},
		fakeResult{err: &openai.APIError{HTTPStatusCode: 500}},
		fakeResult{content: "finally"},
	)

	reply, err := c.Send(context.Background(), "", nil, "gpt-4o-mini", 150)
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if reply != "finally" {
		t.Errorf("Send() = %q, want finally", reply)
	}
	if f.calls != 3 {
		t.Errorf("made %d calls, want 3", f.calls)
	}
}

func TestSendDoesNotRetryClientErrors(t *testing.T) {
	c, f := newTestClient(fakeResult{err: &openai.APIError{HTTPStatusCode: 401}})

	_, err := c.Send(context.Background(), "", nil, "gpt-4o-mini", 150)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Send() error = %v, want *APIError", err)
	}
	if f.calls != 1 {
		t.Errorf("made %d calls, want 1", f.calls)
	}
}

func TestSendGivesUpAfterMaxRetries(t *testing.T) {
	c, f := newTestClient(fakeResult{err: &openai.APIError{HTTPStatusCode: 503}})

	_, err := c.Send(context.Background(), "", nil, "gpt-4o-mini", 150)
	if err == nil {
		t.Fatal("Send() returned nil error")
	}
	if f.calls != maxRetries+1 {
		t.Errorf("made %d calls, want %d", f.calls, maxRetries+1)
	}
}

func TestSendHonorsContextCancellation(t *testing.T) {
	c, _ := newTestClient(fakeResult{err: &openai.APIError{HTTPStatusCode: 503}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Send(ctx, "", nil, "gpt-4o-mini", 150)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Send() error = %v, want context.Canceled", err)
	}
}

func TestSendEmptyChoices(t *testing.T) {
	c := &Client{
		api: apiFunc(func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
			return openai.ChatCompletionResponse{}, nil
		}),
		backoff: time.Millisecond,
	}

	_, err := c.Send(context.Background(), "", nil, "gpt-4o-mini", 150)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Errorf("Send() error = %v, want *APIError", err)
	}
}

type apiFunc func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)

func (f apiFunc) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return f(ctx, req)
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewFromEnv(); !errors.Is(err, ErrMissingCredential) {
		t.Errorf("NewFromEnv() error = %v, want ErrMissingCredential", err)
	}

	t.Setenv("OPENAI_API_KEY", "sk-test")
	c, err := NewFromEnv()
	if err != nil {
		t.Fatalf("NewFromEnv() error: %v", err)
	}
	if c == nil {
		t.Fatal("NewFromEnv() returned nil client")
	}
}
