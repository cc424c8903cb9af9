// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aldev/gpterm/internal/chat"
	"github.com/aldev/gpterm/internal/model"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case turnDoneMsg:
		return m.handleTurnDone(msg), nil

	case SaveWarnMsg:
		m.status = "autosave failed: " + msg.Err.Error()
		return m, nil

	case SessionsChangedMsg:
		m.status = fmt.Sprintf("session %q changed on disk", msg.Name)
		return m, nil

	case StatusMsg:
		m.status = msg.Text
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.cancelMgr.cancel()
		return m, tea.Quit

	case "esc":
		if m.waiting {
			m.orch.Abandon()
			m.cancelMgr.cancel()
			m.waiting = false
			m.status = "reply abandoned"
		}
		return m, nil

	case "enter":
		return m.handleSubmit()

	case "pgup":
		m.viewport.HalfViewUp()
		return m, nil

	case "pgdown":
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleTurnDone applies a fetched reply on the event loop. Stale and
// cancelled turns render nothing.
func (m Model) handleTurnDone(msg turnDoneMsg) Model {
	m.waiting = false
	_, err := m.orch.Resolve(msg.result)
	switch {
	case errors.Is(err, chat.ErrStaleReply), errors.Is(err, context.Canceled):
	case err != nil:
		m.lastErr = errorText(err)
	default:
		m.lastErr = ""
		m.refreshViewport(true)
	}
	return m
}

// handleSubmit routes the input line to either the command system or a chat
// turn.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	m.input.SetValue("")
	m.status = ""
	m.lastErr = ""

	result := m.parser.Parse(text)
	if result.IsCommand {
		if result.Error != nil {
			m.lastErr = result.Error.Error()
			return m, nil
		}
		return m.executeCommand(result)
	}
	return m.beginTurn(text)
}

// beginTurn appends the user message and kicks off the API request. The user
// turn shows immediately; the reply lands later as a turnDoneMsg.
func (m Model) beginTurn(text string) (tea.Model, tea.Cmd) {
	if _, err := m.orch.Begin(text); err != nil {
		switch {
		case errors.Is(err, model.ErrEmptyMessage):
			// An empty line is a no-op, not an error.
		case errors.Is(err, chat.ErrAwaitingReply):
			m.lastErr = "still waiting for the previous reply (esc to abandon it)"
		default:
			m.lastErr = errorText(err)
		}
		return m, nil
	}

	m.waiting = true
	m.refreshViewport(true)
	return m, tea.Batch(m.completeTurn(), m.spinner.Tick)
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	viewportHeight := msg.Height - chromeHeight
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	if !m.ready {
		m.viewport = viewport.New(msg.Width, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = viewportHeight
	}
	m.input.Width = msg.Width - 4
	m.refreshViewport(false)
	return m
}

func errorText(err error) string {
	return err.Error()
}
