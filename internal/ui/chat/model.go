// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

// Package chat provides the terminal chat view.
package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aldev/gpterm/internal/chat"
	"github.com/aldev/gpterm/internal/commands"
	"github.com/aldev/gpterm/internal/export"
	"github.com/aldev/gpterm/internal/personality"
	"github.com/aldev/gpterm/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// Collaborators
	orch       *chat.Orchestrator
	catalog    *personality.Catalog
	parser     *commands.Parser
	registry   *commands.Registry
	exportOpts *export.Options

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int
	ready  bool

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// In-flight request
	waiting   bool
	cancelMgr *cancelManager

	// Transient feedback shown above the input
	status  string
	lastErr string
}

// New creates the chat view.
func New(orch *chat.Orchestrator, catalog *personality.Catalog, exportOpts *export.Options) Model {
	registry := commands.NewRegistry()

	input := textinput.New()
	input.Placeholder = "Type a message or /help"
	input.Prompt = "> "
	input.CharLimit = 0
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	theme := styles.Default()
	sp.Style = theme.Spinner

	return Model{
		orch:       orch,
		catalog:    catalog,
		parser:     commands.NewParser(registry),
		registry:   registry,
		exportOpts: exportOpts,
		theme:      theme,
		input:      input,
		spinner:    sp,
		cancelMgr:  newCancelManager(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// =============================================================================
// TURN COMMANDS
// =============================================================================

// completeTurn runs the armed turn's API call off the Update loop. Only the
// raw outcome crosses back; handleTurnDone applies it to the conversation.
func (m *Model) completeTurn() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelMgr.set(cancel)
	orch := m.orch

	return func() tea.Msg {
		defer cancel()
		return turnDoneMsg{result: orch.Fetch(ctx)}
	}
}
