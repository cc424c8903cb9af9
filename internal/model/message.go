// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

// Package model contains the conversation state and message types.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/aldev/gpterm/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role identifies the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the wire representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "GPT"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is one turn of a conversation. Messages are immutable once
// appended; the append order is the conversation order and is exactly what
// gets replayed to the API.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Personality records which personality was active when an assistant
	// turn was produced. Empty for user turns.
	Personality string `json:"personality,omitempty"`
}

// NewMessage creates a message with a generated ID and current timestamp.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        "msg_" + uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// Preview returns a single-line preview of the message content.
func (m Message) Preview(max int) string {
	oneLine := m.Content
	for i, r := range oneLine {
		if r == '\n' || r == '\r' {
			oneLine = oneLine[:i] + " " + sanitizeTail(oneLine[i+1:])
			break
		}
	}
	return util.Truncate(oneLine, max)
}

// EstimateTokens returns the approximate token count of the message content.
func (m Message) EstimateTokens() int {
	return CountTokens(m.Content)
}

func sanitizeTail(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' {
			r = ' '
		}
		out = append(out, r)
	}
	return string(out)
}
