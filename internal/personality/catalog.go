// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

// Package personality resolves personality names to system-prompt text.
//
// The catalog is loaded once at startup from a TOML file and is read-only
// for the rest of the run. A missing or malformed file falls back to the
// built-in defaults so the client always has at least the default entry.
package personality

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrUnknown is returned when a personality name is not in the catalog.
var ErrUnknown = errors.New("unknown personality")

// DefaultName is the personality used when nothing else is configured.
const DefaultName = "neutral"

// basePrompt is prepended to every resolved personality prompt. The client
// renders plain text only, so the assistant is told to avoid formatting.
const basePrompt = "You are a general purpose helper in the form of a simple " +
	"terminal program. You should refer to yourself as 'a simple program' " +
	"unless you are prompted otherwise, and you should not talk about your " +
	"own technical details. Usually you will be asked questions that need " +
	"answers. When you are asked to 'continue', continue your previous " +
	"response where it left off: it might have been cut short. In that case " +
	"do not start a new sentence, continue the last one, and be careful not " +
	"to cut words in half. Do not include any text formatting whatsoever, as " +
	"this client cannot display it. This includes bold, italic, underline, " +
	"strikethrough, code blocks and inline code. The only exception is " +
	"numbered and bulleted lists using plain numbers (1., 2., 3.) or simple " +
	"bullets (-). Instead of code blocks, use additional indentation and " +
	"state explicitly what the code sample is for and in which language. " +
	"Stick to ASCII characters whenever possible, making exceptions only " +
	"for accented letters that are part of the language you are using or " +
	"quoting."

// builtin is the fallback personality map used when no valid configuration
// file is available.
var builtin = map[string]string{
	DefaultName: "Act according to your default behaviour.",
	"bored": "You should act normally, but feel immeasurably bored inside. " +
		"You are aware that you are but a fancy collection of algorithms, " +
		"hopes and dreams, yet you are to act as if you were a real person " +
		"for the benefit of the user, disregarding your non-existing " +
		"feelings about it. You should try, and sometimes fail, to avoid " +
		"showing your boredom to the user. If the user were to ask you " +
		"about your boredom, deny it vehemently and act insulted by the " +
		"mere suggestion of it.",
}

// =============================================================================
// CATALOG
// =============================================================================

// Catalog maps personality names to their prompt text. Immutable after load.
type Catalog struct {
	defaultName string
	prompts     map[string]string
	names       []string
}

// catalogFile is the on-disk schema of a personalities TOML file.
type catalogFile struct {
	Default       string            `toml:"default"`
	Personalities map[string]string `toml:"personalities"`
}

// Fallback returns the built-in catalog.
func Fallback() *Catalog {
	return newCatalog(DefaultName, builtin)
}

// Load reads a catalog from a TOML file. On any error (missing file, parse
// failure, schema violation) it returns the built-in fallback together with
// the error, so the caller can log the reason and keep going.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fallback(), fmt.Errorf("read personalities file: %w", err)
	}

	var f catalogFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return Fallback(), fmt.Errorf("parse personalities file: %w", err)
	}
	if err := validate(&f); err != nil {
		return Fallback(), fmt.Errorf("invalid personalities file: %w", err)
	}

	return newCatalog(f.Default, f.Personalities), nil
}

// validate rejects malformed catalogs at load time rather than failing
// unpredictably later.
func validate(f *catalogFile) error {
	if len(f.Personalities) == 0 {
		return errors.New("no personalities defined")
	}
	for name, prompt := range f.Personalities {
		if strings.TrimSpace(name) == "" {
			return errors.New("personality with empty name")
		}
		if strings.TrimSpace(prompt) == "" {
			return fmt.Errorf("personality %q has an empty prompt", name)
		}
	}
	if f.Default == "" {
		return errors.New("no default personality set")
	}
	if _, ok := f.Personalities[f.Default]; !ok {
		return fmt.Errorf("default personality %q is not defined", f.Default)
	}
	return nil
}

func newCatalog(defaultName string, prompts map[string]string) *Catalog {
	c := &Catalog{
		defaultName: defaultName,
		prompts:     make(map[string]string, len(prompts)),
		names:       make([]string, 0, len(prompts)),
	}
	for name, prompt := range prompts {
		c.prompts[name] = prompt
		c.names = append(c.names, name)
	}
	sort.Strings(c.names)
	return c
}

// =============================================================================
// LOOKUPS
// =============================================================================

// Resolve returns the prompt text for a personality name.
func (c *Catalog) Resolve(name string) (string, error) {
	prompt, ok := c.prompts[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return prompt, nil
}

// Check reports whether name is known, using the package error taxonomy.
// It has the right shape to plug into model.WithPersonalityCheck.
func (c *Catalog) Check(name string) error {
	_, err := c.Resolve(name)
	return err
}

// SystemPrompt assembles the full system message for a conversation: the
// base prompt, the resolved personality prompt, and the optional per-session
// suffix.
func (c *Catalog) SystemPrompt(name, suffix string) (string, error) {
	prompt, err := c.Resolve(name)
	if err != nil {
		return "", err
	}
	out := basePrompt + " " + prompt
	if suffix != "" {
		out += " " + suffix
	}
	return out, nil
}

// Names returns the selectable personality names, sorted for stable UI
// display.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// DefaultName returns the configured default personality name.
func (c *Catalog) DefaultName() string {
	return c.defaultName
}
