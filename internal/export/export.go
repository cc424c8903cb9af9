// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

// Package export renders conversations to plain text, Markdown and JSON
// files for use outside the client.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aldev/gpterm/internal/model"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter renders a conversation snapshot into a target format.
type Exporter interface {
	// Export converts a conversation to the target format.
	Export(title string, snap model.Snapshot) ([]byte, error)

	// FileExtension returns the extension for the format (e.g. ".md").
	FileExtension() string
}

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files are written.
	// Default: current working directory.
	OutputDir string

	// LineLength re-wraps message text to this width in the text format.
	// Zero disables wrapping.
	LineLength int

	// FoldContinues merges replies to "continue" prompts into the reply
	// they extend, so exported text reads as one uninterrupted answer.
	FoldContinues bool

	// IncludeMetadata includes a header with model and timestamps.
	IncludeMetadata bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:       ".",
		LineLength:      80,
		FoldContinues:   true,
		IncludeMetadata: true,
	}
}

// ForFormat returns the exporter for a format name: "txt", "md" or "json".
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(format) {
	case "txt", "text":
		return NewTextExporter(opts), nil
	case "md", "markdown":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// =============================================================================
// FILE EXPORT
// =============================================================================

// ToFile renders a conversation with the given exporter and writes it to a
// timestamped file in the output directory, returning the file path.
func ToFile(title string, snap model.Snapshot, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(title, snap)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s%s",
		filenameStem(title),
		time.Now().Format("20060102_150405"),
		exporter.FileExtension(),
	)
	path := filepath.Join(opts.OutputDir, filename)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// filenameStem turns a session title into a safe filename stem.
func filenameStem(title string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '_' || r == '-':
			sb.WriteRune(r)
		case r == ' ':
			sb.WriteRune('_')
		}
	}
	stem := sb.String()
	if stem == "" {
		return "conversation"
	}
	if len(stem) > 50 {
		stem = stem[:50]
	}
	return stem
}

// =============================================================================
// CONTINUE FOLDING
// =============================================================================

// foldContinues removes user turns that merely said "continue" and glues the
// reply that followed onto the previous assistant message, restoring the
// answer the length limit split apart.
func foldContinues(msgs []model.Message) []model.Message {
	out := make([]model.Message, 0, len(msgs))
	for i := 0; i < len(msgs); i++ {
		m := msgs[i]
		if m.Role == model.RoleUser && isContinuePrompt(m.Content) &&
			len(out) > 0 && out[len(out)-1].Role == model.RoleAssistant &&
			i+1 < len(msgs) && msgs[i+1].Role == model.RoleAssistant {
			prev := &out[len(out)-1]
			prev.Content = joinContinued(prev.Content, msgs[i+1].Content)
			i++ // consume the folded reply
			continue
		}
		out = append(out, m)
	}
	return out
}

func isContinuePrompt(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), "continue")
}

// joinContinued concatenates a continuation onto its head, inserting a
// separating space unless a whitespace boundary already exists or the
// continuation picks up with punctuation.
func joinContinued(head, tail string) string {
	if head == "" {
		return tail
	}
	if tail == "" {
		return head
	}
	last := head[len(head)-1]
	first := tail[0]
	if last == ' ' || last == '\n' || first == ' ' || first == '\n' {
		return head + tail
	}
	if strings.ContainsRune(".,!?:;", rune(first)) {
		return head + tail
	}
	return head + " " + tail
}
