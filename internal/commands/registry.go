// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

// Package commands provides the slash command system for the TUI.
package commands

import "sort"

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command describes a slash command. Execution lives in the UI layer; the
// registry only knows names, aliases and argument arity.
type Command struct {
	// Name is the primary command name (e.g. "/help")
	Name string

	// Aliases are alternative names (e.g. "/h", "/?")
	Aliases []string

	// Description is shown in help output
	Description string

	// Usage shows argument syntax (e.g. "/load <name>")
	Usage string

	// MinArgs and MaxArgs bound the argument count. MaxArgs -1 means
	// unlimited.
	MinArgs int
	MaxArgs int
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias, or nil.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns every registered command sorted by name.
func (r *Registry) All() []*Command {
	out := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// registerBuiltins installs the built-in command set.
func (r *Registry) registerBuiltins() {
	builtins := []*Command{
		{Name: "/help", Aliases: []string{"/h", "/?"}, Description: "Show available commands", Usage: "/help"},
		{Name: "/quit", Aliases: []string{"/q", "/exit"}, Description: "Exit the program", Usage: "/quit"},
		{Name: "/new", Aliases: []string{"/reset"}, Description: "Start a fresh conversation", Usage: "/new"},
		{Name: "/continue", Aliases: []string{"/c"}, Description: "Ask for the reply to be continued", Usage: "/continue"},
		{Name: "/sessions", Aliases: []string{"/ls"}, Description: "List saved sessions", Usage: "/sessions"},
		{Name: "/save", Description: "Save the conversation under a name", Usage: "/save <name>", MinArgs: 1, MaxArgs: 1},
		{Name: "/load", Description: "Load a saved session", Usage: "/load <name>", MinArgs: 1, MaxArgs: 1},
		{Name: "/delete", Aliases: []string{"/rm"}, Description: "Delete a saved session", Usage: "/delete <name>", MinArgs: 1, MaxArgs: 1},
		{Name: "/rename", Aliases: []string{"/mv"}, Description: "Rename a saved session", Usage: "/rename <old> <new>", MinArgs: 2, MaxArgs: 2},
		{Name: "/personality", Aliases: []string{"/p"}, Description: "Show or switch the personality", Usage: "/personality [name]", MaxArgs: 1},
		{Name: "/tokens", Description: "Show or set the reply length limit", Usage: "/tokens [n]", MaxArgs: 1},
		{Name: "/sys", Description: "Append extra text to the system prompt", Usage: "/sys <text>", MinArgs: 1, MaxArgs: -1},
		{Name: "/lite", Description: "Toggle lite mode (nothing touches disk)", Usage: "/lite"},
		{Name: "/export", Description: "Export the conversation", Usage: "/export [txt|md|json]", MaxArgs: 1},
		{Name: "/status", Description: "Show session, model and token usage", Usage: "/status"},
	}
	for _, cmd := range builtins {
		r.Register(cmd)
	}
}
