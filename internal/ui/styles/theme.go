// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

// Package styles provides the visual styling for the gpterm TUI.
package styles

import "github.com/charmbracelet/lipgloss"

// Theme holds all styled components for the application.
type Theme struct {
	// Message labels
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	SystemLabel    lipgloss.Style

	// Message bodies
	MessageBody lipgloss.Style

	// Feedback
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Chrome
	StatusBar  lipgloss.Style
	StatusKey  lipgloss.Style
	LiteBadge  lipgloss.Style
	InputFrame lipgloss.Style
	Spinner    lipgloss.Style
	Help       lipgloss.Style
}

// Default returns the standard theme. Colors use the ANSI 256 palette so
// they degrade sanely on plain terminals.
func Default() *Theme {
	return &Theme{
		UserLabel:      lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		AssistantLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		SystemLabel:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),

		MessageBody: lipgloss.NewStyle(),

		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

		StatusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Background(lipgloss.Color("236")).
			Padding(0, 1),
		StatusKey: lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		LiteBadge: lipgloss.NewStyle().
			Foreground(lipgloss.Color("232")).
			Background(lipgloss.Color("214")).
			Padding(0, 1).
			Bold(true),
		InputFrame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		Spinner: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Help:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}
