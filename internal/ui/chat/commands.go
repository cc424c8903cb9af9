// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

package chat

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aldev/gpterm/internal/commands"
	"github.com/aldev/gpterm/internal/export"
)

// executeCommand dispatches a parsed slash command.
func (m Model) executeCommand(result commands.ParseResult) (tea.Model, tea.Cmd) {
	args := result.Args

	switch result.Command.Name {
	case "/quit":
		m.cancelMgr.cancel()
		return m, tea.Quit

	case "/help":
		m.status = ""
		m.lastErr = ""
		m.refreshViewport(false)
		return m, func() tea.Msg { return StatusMsg{Text: m.helpText()} }

	case "/new":
		m.cancelMgr.cancel()
		m.orch.NewSession()
		m.waiting = false
		m.status = "started a fresh conversation"
		m.refreshViewport(true)
		return m, nil

	case "/continue":
		return m.beginTurn("continue")

	case "/sessions":
		infos, err := m.orch.Sessions()
		if err != nil {
			m.lastErr = err.Error()
			return m, nil
		}
		if len(infos) == 0 {
			m.status = "no saved sessions"
			return m, nil
		}
		var sb strings.Builder
		sb.WriteString("saved sessions: ")
		for i, info := range infos {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s (%d msgs)", info.Name, info.MessageCount)
		}
		m.status = sb.String()
		return m, nil

	case "/save":
		name, err := m.orch.SaveSessionAs(args[0])
		if err != nil {
			m.lastErr = err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("saved as %q", name)
		return m, nil

	case "/load":
		if err := m.orch.LoadSession(args[0]); err != nil {
			m.lastErr = err.Error()
			return m, nil
		}
		m.waiting = false
		m.cancelMgr.cancel()
		m.status = fmt.Sprintf("loaded %q", args[0])
		m.refreshViewport(true)
		return m, nil

	case "/delete":
		if err := m.orch.DeleteSession(args[0]); err != nil {
			m.lastErr = err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("deleted %q", args[0])
		return m, nil

	case "/rename":
		newName, err := m.orch.RenameSession(args[0], args[1])
		if err != nil {
			m.lastErr = err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("renamed %q to %q", args[0], newName)
		return m, nil

	case "/personality":
		if len(args) == 0 {
			m.status = fmt.Sprintf("personality: %s (available: %s)",
				m.orch.Conversation().Personality(),
				strings.Join(m.catalog.Names(), ", "))
			return m, nil
		}
		if err := m.orch.SetPersonality(args[0]); err != nil {
			m.lastErr = err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("personality set to %q", args[0])
		return m, nil

	case "/tokens":
		if len(args) == 0 {
			conv := m.orch.Conversation()
			m.status = fmt.Sprintf("reply limit %d tokens, history ~%d tokens",
				conv.MaxTokens(), conv.EstimateTokens())
			return m, nil
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			m.lastErr = fmt.Sprintf("not a number: %q", args[0])
			return m, nil
		}
		if err := m.orch.SetMaxTokens(n); err != nil {
			m.lastErr = err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("reply limit set to %d tokens", n)
		return m, nil

	case "/sys":
		m.orch.SetSystemSuffix(result.RawArgs)
		m.status = "system prompt addition set"
		return m, nil

	case "/lite":
		m.cancelMgr.cancel()
		m.waiting = false
		if m.orch.ToggleLite() {
			m.status = "lite mode on: nothing will be read from or written to disk"
		} else {
			m.status = "lite mode off"
		}
		m.refreshViewport(true)
		return m, nil

	case "/export":
		format := "txt"
		if len(args) > 0 {
			format = args[0]
		}
		exporter, err := export.ForFormat(format, m.exportOpts)
		if err != nil {
			m.lastErr = err.Error()
			return m, nil
		}
		conv := m.orch.Conversation()
		title, _ := conv.SessionName()
		path, err := export.ToFile(title, conv.Snapshot(), exporter, m.exportOpts)
		if err != nil {
			m.lastErr = err.Error()
			return m, nil
		}
		m.status = "exported to " + path
		return m, nil

	case "/status":
		m.status = m.statusSummary()
		return m, nil
	}

	m.lastErr = "unknown command " + result.CommandName
	return m, nil
}

func (m Model) helpText() string {
	var sb strings.Builder
	sb.WriteString("commands: ")
	for i, cmd := range m.registry.All() {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(cmd.Usage)
	}
	return sb.String()
}

func (m Model) statusSummary() string {
	conv := m.orch.Conversation()
	name, named := conv.SessionName()
	if !named {
		name = "(unsaved)"
	}
	mode := "normal"
	if conv.Lite() {
		mode = "lite"
	}
	return fmt.Sprintf("session %s | model %s | personality %s | %d messages | ~%d tokens | %s mode",
		name, conv.Model(), conv.Personality(), conv.Len(), conv.EstimateTokens(), mode)
}
