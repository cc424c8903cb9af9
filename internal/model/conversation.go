// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

package model

import (
	"errors"
	"strings"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyMessage is returned when a user turn is blank after trimming.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrInvalidMaxTokens is returned for a non-positive token limit.
	ErrInvalidMaxTokens = errors.New("max tokens must be positive")

	// ErrLiteSession is returned when naming a lite-mode conversation.
	// Lite conversations are ephemeral and never map to a session file.
	ErrLiteSession = errors.New("lite conversation cannot be named")
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is the in-memory state of one chat: the ordered message log
// plus the active parameters (model, max tokens, personality, mode).
//
// Invariants:
//   - messages are append-only; they are never reordered or mutated in
//     place, only appended or wholly replaced by Reset/Restore.
//   - lite mode implies the conversation has no session name.
//
// Conversation is not safe for concurrent use; the orchestrator serializes
// access (there is exactly one active conversation per process).
type Conversation struct {
	messages []Message

	personality  string
	maxTokens    int
	model        string
	systemSuffix string

	lite        bool
	sessionName string
	named       bool

	// generation increments whenever the message log is replaced. In-flight
	// replies carry the generation they were built against and are discarded
	// if it no longer matches.
	generation uint64

	checkPersonality func(name string) error
}

// Option configures a new Conversation.
type Option func(*Conversation)

// WithModel sets the model identifier sent to the API.
func WithModel(name string) Option {
	return func(c *Conversation) { c.model = name }
}

// WithMaxTokens sets the initial response token cap.
func WithMaxTokens(n int) Option {
	return func(c *Conversation) { c.maxTokens = n }
}

// WithPersonality sets the initial personality name.
func WithPersonality(name string) Option {
	return func(c *Conversation) { c.personality = name }
}

// WithPersonalityCheck installs a validator consulted by SetPersonality.
func WithPersonalityCheck(fn func(name string) error) Option {
	return func(c *Conversation) { c.checkPersonality = fn }
}

// WithLite starts the conversation in lite (ephemeral) mode.
func WithLite(on bool) Option {
	return func(c *Conversation) { c.lite = on }
}

// NewConversation creates an empty conversation.
func NewConversation(opts ...Option) *Conversation {
	c := &Conversation{
		maxTokens: 150,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =============================================================================
// MESSAGE LOG
// =============================================================================

// AppendUser appends a user turn. The text is trimmed; a blank message is
// rejected with ErrEmptyMessage before any mutation.
func (c *Conversation) AppendUser(text string) (Message, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Message{}, ErrEmptyMessage
	}
	msg := NewMessage(RoleUser, trimmed)
	c.messages = append(c.messages, msg)
	return msg, nil
}

// AppendAssistant appends an assistant turn. Remote replies are trusted
// as-is; an empty reply is still recorded as a visible empty turn.
func (c *Conversation) AppendAssistant(text string) Message {
	msg := NewMessage(RoleAssistant, text)
	msg.Personality = c.personality
	c.messages = append(c.messages, msg)
	return msg
}

// Messages returns a copy of the message log.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// LastMessage returns the most recent message, if any.
func (c *Conversation) LastMessage() (Message, bool) {
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// Reset replaces the message log with an empty one.
func (c *Conversation) Reset() {
	c.messages = nil
	c.generation++
}

// =============================================================================
// PARAMETERS
// =============================================================================

// SetPersonality switches the active personality. Already-recorded messages
// are untouched; only future API calls see the new system prompt.
func (c *Conversation) SetPersonality(name string) error {
	if c.checkPersonality != nil {
		if err := c.checkPersonality(name); err != nil {
			return err
		}
	}
	c.personality = name
	return nil
}

// Personality returns the active personality name.
func (c *Conversation) Personality() string {
	return c.personality
}

// SetMaxTokens sets the response token cap.
func (c *Conversation) SetMaxTokens(n int) error {
	if n <= 0 {
		return ErrInvalidMaxTokens
	}
	c.maxTokens = n
	return nil
}

// MaxTokens returns the response token cap.
func (c *Conversation) MaxTokens() int {
	return c.maxTokens
}

// Model returns the model identifier.
func (c *Conversation) Model() string {
	return c.model
}

// SetModel sets the model identifier.
func (c *Conversation) SetModel(name string) {
	c.model = name
}

// SystemSuffix returns the additional per-session system prompt text.
func (c *Conversation) SystemSuffix() string {
	return c.systemSuffix
}

// SetSystemSuffix sets the additional per-session system prompt text.
func (c *Conversation) SetSystemSuffix(s string) {
	c.systemSuffix = strings.TrimSpace(s)
}

// =============================================================================
// MODE AND SESSION NAME
// =============================================================================

// Lite reports whether the conversation is in lite (ephemeral) mode.
func (c *Conversation) Lite() bool {
	return c.lite
}

// EnterLite switches to lite mode. This is a hard reset: the message log is
// cleared and the session name dropped, with no save of the prior state.
func (c *Conversation) EnterLite() {
	c.lite = true
	c.clearName()
	c.Reset()
}

// ExitLite switches back to normal mode with a fresh unnamed conversation.
func (c *Conversation) ExitLite() {
	c.lite = false
	c.clearName()
	c.Reset()
}

// SessionName returns the backing session name, if one is set.
func (c *Conversation) SessionName() (string, bool) {
	return c.sessionName, c.named
}

// SetSessionName binds the conversation to a named session file.
func (c *Conversation) SetSessionName(name string) error {
	if c.lite {
		return ErrLiteSession
	}
	c.sessionName = name
	c.named = true
	return nil
}

// ClearSessionName detaches the conversation from its session file.
func (c *Conversation) ClearSessionName() {
	c.clearName()
}

func (c *Conversation) clearName() {
	c.sessionName = ""
	c.named = false
}

// Generation returns the replacement counter of the message log.
func (c *Conversation) Generation() uint64 {
	return c.generation
}

// =============================================================================
// TOKEN ACCOUNTING
// =============================================================================

// EstimateTokens estimates the token footprint of the whole history,
// including a small per-message structural overhead.
func (c *Conversation) EstimateTokens() int {
	total := 0
	for _, msg := range c.messages {
		total += msg.EstimateTokens() + 4
	}
	return total
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// Snapshot is the persistable projection of a Conversation. Lite mode and
// the session name are deliberately absent: lite sessions do not exist as
// files, and the name is the file, not part of its contents.
type Snapshot struct {
	Model        string    `json:"model"`
	Personality  string    `json:"personality"`
	MaxTokens    int       `json:"max_tokens"`
	SystemSuffix string    `json:"system_suffix,omitempty"`
	Messages     []Message `json:"messages"`
}

// Snapshot captures the persistable state of the conversation.
func (c *Conversation) Snapshot() Snapshot {
	return Snapshot{
		Model:        c.model,
		Personality:  c.personality,
		MaxTokens:    c.maxTokens,
		SystemSuffix: c.systemSuffix,
		Messages:     c.Messages(),
	}
}

// Restore replaces the conversation state from a snapshot. Fields that fail
// validation (unknown personality, non-positive token cap) keep their
// current values so a slightly off session file still loads.
func (c *Conversation) Restore(s Snapshot) {
	c.messages = make([]Message, len(s.Messages))
	copy(c.messages, s.Messages)
	c.generation++

	if s.Model != "" {
		c.model = s.Model
	}
	if s.MaxTokens > 0 {
		c.maxTokens = s.MaxTokens
	}
	if s.Personality != "" {
		if c.checkPersonality == nil || c.checkPersonality(s.Personality) == nil {
			c.personality = s.Personality
		}
	}
	c.systemSuffix = s.SystemSuffix
}
