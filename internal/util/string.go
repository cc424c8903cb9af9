// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Truncate shortens s to at most max display cells, appending "..." when
// anything was cut. Safe for multi-byte and wide characters.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= max {
		return s
	}
	if max <= 3 {
		return runewidth.Truncate(s, max, "")
	}
	return runewidth.Truncate(s, max, "...")
}

// PadRight pads s with spaces to the given display width.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// CollapseBlankLines squeezes runs of newlines down to a single newline.
func CollapseBlankLines(s string) string {
	for strings.Contains(s, "\n\n") {
		s = strings.ReplaceAll(s, "\n\n", "\n")
	}
	return s
}

// WrapToWidth re-wraps each line of text so no line exceeds width columns.
// Leading indentation of a line is preserved on its continuation lines.
func WrapToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}

	var out []string
	for _, line := range strings.Split(text, "\n") {
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		words := strings.Fields(line)
		if len(words) == 0 {
			out = append(out, line)
			continue
		}

		current := indent + words[0]
		for _, w := range words[1:] {
			if runewidth.StringWidth(current)+runewidth.StringWidth(w)+1 > width {
				out = append(out, current)
				current = indent + w
				continue
			}
			current += " " + w
		}
		out = append(out, current)
	}
	return strings.Join(out, "\n")
}

// LongestLineWidth returns the display width of the widest line in text.
func LongestLineWidth(text string) int {
	max := 0
	for _, line := range strings.Split(text, "\n") {
		if w := runewidth.StringWidth(line); w > max {
			max = w
		}
	}
	return max
}
