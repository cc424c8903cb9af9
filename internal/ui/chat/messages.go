// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

package chat

import "github.com/aldev/gpterm/internal/chat"

// =============================================================================
// BUBBLE TEA MESSAGES
// =============================================================================

// turnDoneMsg carries the API outcome of an in-flight turn back to the
// Update loop. Update applies it there, so the conversation is only ever
// mutated on the event loop.
type turnDoneMsg struct {
	result chat.TurnResult
}

// SaveWarnMsg reports a failed autosave. The chat keeps going; the warning
// shows in the status line.
type SaveWarnMsg struct {
	Err error
}

// SessionsChangedMsg fires when a session file changes on disk.
type SessionsChangedMsg struct {
	Name string
}

// StatusMsg sets a transient status line.
type StatusMsg struct {
	Text string
}
