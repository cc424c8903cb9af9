// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aldev/gpterm/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter renders conversations as pretty-printed JSON, suitable for
// feeding into other tools.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// FileExtension returns ".json".
func (e *JSONExporter) FileExtension() string { return ".json" }

// jsonDocument is the exported JSON shape.
type jsonDocument struct {
	Title       string          `json:"title,omitempty"`
	Model       string          `json:"model"`
	Personality string          `json:"personality"`
	MaxTokens   int             `json:"max_tokens"`
	ExportedAt  time.Time       `json:"exported_at"`
	Messages    []model.Message `json:"messages"`
}

// Export converts a conversation to JSON. Unlike the text and markdown
// exporters, continue turns are never folded: JSON is the lossless record
// of what was actually exchanged.
func (e *JSONExporter) Export(title string, snap model.Snapshot) ([]byte, error) {
	if len(snap.Messages) == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}

	doc := jsonDocument{
		Title:       title,
		Model:       snap.Model,
		Personality: snap.Personality,
		MaxTokens:   snap.MaxTokens,
		ExportedAt:  time.Now(),
		Messages:    snap.Messages,
	}
	return json.MarshalIndent(doc, "", "  ")
}
