// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

package chat

import (
	"strings"

	"github.com/aldev/gpterm/internal/model"
	"github.com/aldev/gpterm/internal/util"
)

// chromeHeight is the number of rows taken by everything below the
// conversation viewport: spinner/feedback line, input frame and status bar.
const chromeHeight = 5

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}

	var sb strings.Builder
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")

	switch {
	case m.waiting:
		sb.WriteString(m.spinner.View() + " waiting for reply (esc to abandon)")
	case m.lastErr != "":
		sb.WriteString(m.theme.Error.Render(m.lastErr))
	case m.status != "":
		sb.WriteString(m.theme.Info.Render(m.status))
	}
	sb.WriteString("\n")

	sb.WriteString(m.theme.InputFrame.Width(m.width - 2).Render(m.input.View()))
	sb.WriteString("\n")
	sb.WriteString(m.statusBar())
	return sb.String()
}

// refreshViewport re-renders the conversation into the viewport. Pass
// follow=true to keep the view pinned to the newest message.
func (m *Model) refreshViewport(follow bool) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderConversation())
	if follow {
		m.viewport.GotoBottom()
	}
}

// renderConversation formats the message history for display.
func (m *Model) renderConversation() string {
	msgs := m.orch.Conversation().Messages()
	if len(msgs) == 0 {
		return m.theme.Help.Render("No messages yet. Type something, or /help for commands.")
	}

	width := m.viewport.Width
	var sb strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			sb.WriteString("\n")
		}
		label := msg.Role.DisplayName()
		switch msg.Role {
		case model.RoleUser:
			label = m.theme.UserLabel.Render(label)
		case model.RoleAssistant:
			label = m.theme.AssistantLabel.Render(label)
		default:
			label = m.theme.SystemLabel.Render(label)
		}
		body := msg.Content
		if width > 4 {
			body = util.WrapToWidth(body, width-2)
		}
		sb.WriteString(label + "\n")
		sb.WriteString(m.theme.MessageBody.Render(body) + "\n")
	}
	return sb.String()
}

// statusBar renders the bottom chrome line.
func (m *Model) statusBar() string {
	conv := m.orch.Conversation()

	name, named := conv.SessionName()
	if !named {
		name = "unsaved"
	}

	parts := []string{
		m.theme.StatusKey.Render(name),
		conv.Model(),
		conv.Personality(),
	}
	bar := m.theme.StatusBar.Render(strings.Join(parts, " | "))
	if conv.Lite() {
		bar = m.theme.LiteBadge.Render("LITE") + bar
	}
	return bar
}
