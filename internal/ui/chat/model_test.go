// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

package chat

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/aldev/gpterm/internal/chat"
	"github.com/aldev/gpterm/internal/export"
	"github.com/aldev/gpterm/internal/model"
	"github.com/aldev/gpterm/internal/personality"
	"github.com/aldev/gpterm/internal/store"
)

type fixedSender struct {
	reply string
}

func (s *fixedSender) Send(ctx context.Context, systemPrompt string, history []model.Message, modelName string, maxTokens int) (string, error) {
	return s.reply, nil
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	catalog := personality.Fallback()
	orch := chat.New(chat.Options{
		Catalog:   catalog,
		Store:     store.New(t.TempDir()),
		Sender:    &fixedSender{reply: "hello"},
		Logger:    zerolog.Nop(),
		Model:     "gpt-4o-mini",
		MaxTokens: 150,
	})
	m := New(orch, catalog, export.DefaultOptions())
	sized, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return sized.(Model)
}

func submit(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(text)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(Model), cmd
}

func TestSubmitChatMessageStartsTurn(t *testing.T) {
	m := newTestModel(t)

	m, cmd := submit(t, m, "hi there")
	if !m.waiting {
		t.Error("model not waiting after submit")
	}
	if cmd == nil {
		t.Fatal("submit returned no command")
	}
	if m.orch.Conversation().Len() != 1 {
		t.Errorf("conversation has %d messages, want the user turn", m.orch.Conversation().Len())
	}
	if !strings.Contains(m.viewport.View(), "hi there") {
		t.Error("user turn not rendered before reply")
	}
}

func TestReplyAppliedOnEventLoop(t *testing.T) {
	m := newTestModel(t)
	m, _ = submit(t, m, "hi there")

	// Simulate the background command: it fetches the reply but must not
	// touch the conversation itself.
	done := m.completeTurn()()
	if got := m.orch.Conversation().Len(); got != 1 {
		t.Fatalf("conversation has %d messages after fetch, want only the user turn", got)
	}

	updated, _ := m.Update(done)
	m = updated.(Model)
	if m.waiting {
		t.Error("still waiting after the reply was applied")
	}
	if got := m.orch.Conversation().Len(); got != 2 {
		t.Fatalf("conversation has %d messages, want user turn plus reply", got)
	}
	if !strings.Contains(m.viewport.View(), "hello") {
		t.Error("reply not rendered")
	}
}

func TestAbandonedReplyDropsQuietly(t *testing.T) {
	m := newTestModel(t)
	m, _ = submit(t, m, "question")

	done := m.completeTurn()()
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)

	updated, _ = m.Update(done)
	m = updated.(Model)
	if m.lastErr != "" {
		t.Errorf("dropped reply surfaced an error: %q", m.lastErr)
	}
	if got := m.orch.Conversation().Len(); got != 1 {
		t.Errorf("conversation has %d messages, want only the abandoned user turn", got)
	}
}

func TestSubmitEmptyIsNoop(t *testing.T) {
	m := newTestModel(t)

	m, _ = submit(t, m, "   ")
	if m.waiting || m.lastErr != "" {
		t.Errorf("empty submit: waiting=%v lastErr=%q", m.waiting, m.lastErr)
	}
}

func TestSubmitWhileWaiting(t *testing.T) {
	m := newTestModel(t)

	m, _ = submit(t, m, "first")
	m, _ = submit(t, m, "second")
	if m.lastErr == "" {
		t.Error("second submit while waiting produced no feedback")
	}
}

func TestEscAbandonsTurn(t *testing.T) {
	m := newTestModel(t)

	m, _ = submit(t, m, "question")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)

	if m.waiting {
		t.Error("still waiting after esc")
	}
	if m.orch.Awaiting() {
		t.Error("orchestrator still has a pending turn after esc")
	}
}

func TestUnknownCommand(t *testing.T) {
	m := newTestModel(t)

	m, _ = submit(t, m, "/frobnicate")
	if !strings.Contains(m.lastErr, "unknown command") {
		t.Errorf("lastErr = %q, want unknown command feedback", m.lastErr)
	}
}

func TestPersonalityCommand(t *testing.T) {
	m := newTestModel(t)

	m, _ = submit(t, m, "/personality bored")
	if m.lastErr != "" {
		t.Fatalf("lastErr = %q", m.lastErr)
	}
	if got := m.orch.Conversation().Personality(); got != "bored" {
		t.Errorf("personality = %q, want bored", got)
	}

	m, _ = submit(t, m, "/personality nonexistent")
	if m.lastErr == "" {
		t.Error("unknown personality produced no feedback")
	}
}

func TestTokensCommand(t *testing.T) {
	m := newTestModel(t)

	m, _ = submit(t, m, "/tokens 300")
	if got := m.orch.Conversation().MaxTokens(); got != 300 {
		t.Errorf("max tokens = %d, want 300", got)
	}

	m, _ = submit(t, m, "/tokens zero")
	if m.lastErr == "" {
		t.Error("bad token count produced no feedback")
	}
}

func TestLiteCommandTogglesBadge(t *testing.T) {
	m := newTestModel(t)

	m, _ = submit(t, m, "/lite")
	if !m.orch.Conversation().Lite() {
		t.Fatal("conversation not in lite mode")
	}
	if !strings.Contains(m.View(), "LITE") {
		t.Error("lite badge not shown")
	}

	m, _ = submit(t, m, "/save nope")
	if m.lastErr == "" {
		t.Error("saving in lite mode produced no feedback")
	}
}

func TestSaveAndSessionsCommands(t *testing.T) {
	m := newTestModel(t)

	m, _ = submit(t, m, "/save my notes")
	if m.lastErr == "" {
		// /save takes exactly one argument
		t.Error("two-word unquoted name produced no usage feedback")
	}

	m, _ = submit(t, m, `/save "my notes"`)
	if m.lastErr != "" {
		t.Fatalf("save failed: %q", m.lastErr)
	}
	if name, ok := m.orch.Conversation().SessionName(); !ok || name != "my_notes" {
		t.Errorf("session name = %q, want my_notes", name)
	}

	m, _ = submit(t, m, "/sessions")
	if !strings.Contains(m.status, "my_notes") {
		t.Errorf("sessions output = %q, want my_notes listed", m.status)
	}
}

func TestStatusCommand(t *testing.T) {
	m := newTestModel(t)

	m, _ = submit(t, m, "/status")
	for _, want := range []string{"gpt-4o-mini", "neutral", "normal mode"} {
		if !strings.Contains(m.status, want) {
			t.Errorf("status %q missing %q", m.status, want)
		}
	}
}
