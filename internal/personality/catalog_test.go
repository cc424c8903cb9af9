// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

package personality

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "personalities.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write catalog file: %v", err)
	}
	return path
}

func TestFallbackCatalog(t *testing.T) {
	c := Fallback()

	if c.DefaultName() != DefaultName {
		t.Errorf("DefaultName() = %q, want %q", c.DefaultName(), DefaultName)
	}
	prompt, err := c.Resolve(DefaultName)
	if err != nil {
		t.Fatalf("Resolve(%q) error: %v", DefaultName, err)
	}
	if prompt == "" {
		t.Error("default prompt is empty")
	}
	if err := c.Check("bored"); err != nil {
		t.Errorf("Check(bored) error: %v", err)
	}
}

func TestResolveUnknown(t *testing.T) {
	c := Fallback()

	_, err := c.Resolve("nonexistent")
	if !errors.Is(err, ErrUnknown) {
		t.Errorf("Resolve(nonexistent) error = %v, want ErrUnknown", err)
	}
	if err := c.Check("nonexistent"); !errors.Is(err, ErrUnknown) {
		t.Errorf("Check(nonexistent) error = %v, want ErrUnknown", err)
	}
}

func TestLoadValidFile(t *testing.T) {
	path := writeCatalogFile(t, `
default = "pirate"

[personalities]
pirate = "Talk like a pirate."
formal = "Use formal language."
`)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.DefaultName() != "pirate" {
		t.Errorf("DefaultName() = %q, want pirate", c.DefaultName())
	}
	prompt, err := c.Resolve("formal")
	if err != nil {
		t.Fatalf("Resolve(formal) error: %v", err)
	}
	if prompt != "Use formal language." {
		t.Errorf("Resolve(formal) = %q", prompt)
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("Load() of missing file returned nil error")
	}
	if c == nil {
		t.Fatal("Load() of missing file returned nil catalog")
	}
	if _, rerr := c.Resolve(DefaultName); rerr != nil {
		t.Errorf("fallback catalog missing default: %v", rerr)
	}
}

func TestLoadInvalidFileFallsBack(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", `default = [[[`},
		{"no personalities", `default = "x"`},
		{"empty prompt", "default = \"a\"\n[personalities]\na = \"  \"\n"},
		{"unknown default", "default = \"b\"\n[personalities]\na = \"hi\"\n"},
		{"no default", "[personalities]\na = \"hi\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Load(writeCatalogFile(t, tt.content))
			if err == nil {
				t.Fatal("Load() returned nil error for invalid file")
			}
			if c.DefaultName() != DefaultName {
				t.Errorf("fallback DefaultName() = %q, want %q", c.DefaultName(), DefaultName)
			}
		})
	}
}

func TestSystemPrompt(t *testing.T) {
	c := Fallback()

	base, err := c.SystemPrompt(DefaultName, "")
	if err != nil {
		t.Fatalf("SystemPrompt() error: %v", err)
	}
	if !strings.Contains(base, "Act according to your default behaviour.") {
		t.Error("system prompt does not include the personality prompt")
	}

	withSuffix, err := c.SystemPrompt(DefaultName, "Answer in French.")
	if err != nil {
		t.Fatalf("SystemPrompt() with suffix error: %v", err)
	}
	if !strings.HasSuffix(withSuffix, "Answer in French.") {
		t.Errorf("system prompt does not end with suffix: %q", withSuffix)
	}
	if !strings.HasPrefix(withSuffix, base) {
		t.Error("suffix changed the prompt prefix")
	}

	if _, err := c.SystemPrompt("nonexistent", ""); !errors.Is(err, ErrUnknown) {
		t.Errorf("SystemPrompt(nonexistent) error = %v, want ErrUnknown", err)
	}
}

func TestNamesSorted(t *testing.T) {
	path := writeCatalogFile(t, `
default = "b"

[personalities]
c = "third"
a = "first"
b = "second"
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	names := c.Names()
	want := []string{"a", "b", "c"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
	}

	// Mutating the returned slice must not affect the catalog.
	names[0] = "zzz"
	if c.Names()[0] != "a" {
		t.Error("Names() returned internal slice")
	}
}
