// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/aldev/gpterm/internal/model"
	"github.com/aldev/gpterm/internal/util"
)

// =============================================================================
// TEXT EXPORTER
// =============================================================================

// TextExporter renders conversations as plain text with wrapped lines, the
// same shape the terminal shows.
type TextExporter struct {
	options *Options
}

// NewTextExporter creates a plain-text exporter.
func NewTextExporter(opts *Options) *TextExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &TextExporter{options: opts}
}

// FileExtension returns ".txt".
func (e *TextExporter) FileExtension() string { return ".txt" }

// Export converts a conversation to plain text.
func (e *TextExporter) Export(title string, snap model.Snapshot) ([]byte, error) {
	if len(snap.Messages) == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}

	msgs := snap.Messages
	if e.options.FoldContinues {
		msgs = foldContinues(msgs)
	}

	var sb strings.Builder
	if e.options.IncludeMetadata {
		if title == "" {
			title = "unsaved conversation"
		}
		sb.WriteString(title + "\n")
		sb.WriteString("model: " + snap.Model + "\n")
		sb.WriteString("personality: " + snap.Personality + "\n")
		sb.WriteString("exported: " + time.Now().Format(time.RFC3339) + "\n")
		sb.WriteString(strings.Repeat("-", 40) + "\n\n")
	}

	for _, msg := range msgs {
		body := msg.Content
		if e.options.LineLength > 0 {
			body = util.WrapToWidth(body, e.options.LineLength)
		}
		sb.WriteString(msg.Role.DisplayName() + ":\n")
		sb.WriteString(body + "\n\n")
	}
	return []byte(sb.String()), nil
}
