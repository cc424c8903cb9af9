// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

package commands

import (
	"fmt"
	"strings"
	"unicode"
)

// =============================================================================
// PARSE RESULT
// =============================================================================

// ParseResult contains the result of parsing user input.
type ParseResult struct {
	// IsCommand is true if the input starts with /
	IsCommand bool

	// Command is the matched command (nil if not found)
	Command *Command

	// CommandName is the raw command name (e.g. "/help")
	CommandName string

	// Args are the parsed arguments
	Args []string

	// RawArgs is the unparsed arguments portion, quotes intact
	RawArgs string

	// Error is set when the command is unknown or the arity is wrong
	Error error
}

// =============================================================================
// PARSER
// =============================================================================

// Parser turns user input into command invocations.
type Parser struct {
	registry *Registry
}

// NewParser creates a parser backed by the given registry.
func NewParser(registry *Registry) *Parser {
	return &Parser{registry: registry}
}

// Parse parses user input. IsCommand is false when the input does not start
// with a slash, meaning it is a chat message.
func (p *Parser) Parse(input string) ParseResult {
	input = strings.TrimSpace(input)
	result := ParseResult{}

	if !strings.HasPrefix(input, "/") {
		return result
	}
	result.IsCommand = true

	parts := splitCommandLine(input)
	if len(parts) == 0 {
		result.Error = fmt.Errorf("empty command")
		return result
	}

	result.CommandName = strings.ToLower(parts[0])
	result.Args = parts[1:]
	if rest := strings.TrimPrefix(input, parts[0]); rest != input {
		result.RawArgs = strings.TrimSpace(rest)
	}

	result.Command = p.registry.Get(result.CommandName)
	if result.Command == nil {
		result.Error = fmt.Errorf("unknown command %s (try /help)", result.CommandName)
		return result
	}

	if len(result.Args) < result.Command.MinArgs {
		result.Error = fmt.Errorf("usage: %s", result.Command.Usage)
	} else if result.Command.MaxArgs >= 0 && len(result.Args) > result.Command.MaxArgs {
		result.Error = fmt.Errorf("usage: %s", result.Command.Usage)
	}
	return result
}

// =============================================================================
// ARGUMENT PARSING
// =============================================================================

// splitCommandLine splits a command line into tokens. Single and double
// quotes group words so session names can contain spaces, and a backslash
// escapes a quote inside a quoted token.
func splitCommandLine(input string) []string {
	var tokens []string
	var cur strings.Builder
	var quote byte // active quote character, 0 outside quotes

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case quote == 0 && (c == '\'' || c == '"'):
			quote = c

		case quote == c:
			quote = 0

		case c == '\\' && quote != 0 && i+1 < len(input):
			if next := input[i+1]; next == '"' || next == '\'' || next == '\\' {
				cur.WriteByte(next)
				i++
			} else {
				cur.WriteByte(c)
			}

		case quote == 0 && unicode.IsSpace(rune(c)):
			flush()

		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return tokens
}
