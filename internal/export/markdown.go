// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/aldev/gpterm/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter renders conversations as a Markdown document.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// FileExtension returns ".md".
func (e *MarkdownExporter) FileExtension() string { return ".md" }

// Export converts a conversation to Markdown.
func (e *MarkdownExporter) Export(title string, snap model.Snapshot) ([]byte, error) {
	if len(snap.Messages) == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}

	msgs := snap.Messages
	if e.options.FoldContinues {
		msgs = foldContinues(msgs)
	}

	var sb strings.Builder
	if title == "" {
		title = "Unsaved conversation"
	}
	sb.WriteString("# " + title + "\n\n")

	if e.options.IncludeMetadata {
		sb.WriteString(fmt.Sprintf("- **Model**: %s\n", snap.Model))
		sb.WriteString(fmt.Sprintf("- **Personality**: %s\n", snap.Personality))
		sb.WriteString(fmt.Sprintf("- **Messages**: %d\n", len(msgs)))
		sb.WriteString(fmt.Sprintf("- **Exported**: %s\n", time.Now().Format(time.RFC3339)))
		sb.WriteString("\n---\n\n")
	}

	for _, msg := range msgs {
		sb.WriteString(fmt.Sprintf("### %s <sub>%s</sub>\n\n",
			msg.Role.DisplayName(),
			msg.Timestamp.Format("2006-01-02 15:04"),
		))
		sb.WriteString(msg.Content + "\n\n")
	}
	return []byte(sb.String()), nil
}
