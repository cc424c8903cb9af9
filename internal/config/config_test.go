// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q, want gpt-4o-mini", cfg.Model)
	}
	if cfg.MaxTokens != 150 {
		t.Errorf("MaxTokens = %d, want 150", cfg.MaxTokens)
	}
	if !cfg.Autosave {
		t.Error("Autosave = false, want true")
	}
	if cfg.Lite {
		t.Error("Lite = true, want false")
	}
}

func TestLoadFromPathMissingFile(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("missing file did not produce defaults: %+v", cfg)
	}
	if cfg.SessionsDir == "" || cfg.PersonalitiesPath == "" {
		t.Error("default paths not filled in")
	}
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
model = "gpt-4o"
max_tokens = 300
autosave = false
sessions_dir = "/tmp/sessions"

[export]
line_length = 100
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Model != "gpt-4o" || cfg.MaxTokens != 300 || cfg.Autosave {
		t.Errorf("loaded config = %+v", cfg)
	}
	if cfg.SessionsDir != "/tmp/sessions" {
		t.Errorf("SessionsDir = %q", cfg.SessionsDir)
	}
	if cfg.Export.LineLength != 100 {
		t.Errorf("Export.LineLength = %d, want 100", cfg.Export.LineLength)
	}
	// Unset fields keep defaults.
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadFromPathRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", `model = [[[`},
		{"empty model", `model = "  "`},
		{"bad max tokens", `max_tokens = 0`},
		{"bad log level", `log_level = "loud"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := LoadFromPath(path); err == nil {
				t.Error("LoadFromPath() returned nil error")
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("GPTERM_MODEL", "gpt-4o")
	t.Setenv("GPTERM_MAX_TOKENS", "500")
	t.Setenv("GPTERM_LITE", "true")
	t.Setenv("GPTERM_AUTOSAVE", "0")
	t.Setenv("GPTERM_SESSIONS_DIR", "/elsewhere")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Model != "gpt-4o" {
		t.Errorf("Model = %q, want gpt-4o", cfg.Model)
	}
	if cfg.MaxTokens != 500 {
		t.Errorf("MaxTokens = %d, want 500", cfg.MaxTokens)
	}
	if !cfg.Lite {
		t.Error("Lite = false, want true")
	}
	if cfg.Autosave {
		t.Error("Autosave = true, want false")
	}
	if cfg.SessionsDir != "/elsewhere" {
		t.Errorf("SessionsDir = %q, want /elsewhere", cfg.SessionsDir)
	}
}

func TestEnvOverrideIgnoresBadInt(t *testing.T) {
	t.Setenv("GPTERM_MAX_TOKENS", "lots")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if cfg.MaxTokens != 150 {
		t.Errorf("MaxTokens = %d, want 150", cfg.MaxTokens)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg := Default()
	cfg.Model = "gpt-4o"
	cfg.Export.Dir = "/exports"
	if err := SaveToPath(cfg, path); err != nil {
		t.Fatalf("SaveToPath() error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat config: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config permissions = %o, want 600", info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if loaded.Model != "gpt-4o" || loaded.Export.Dir != "/exports" {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestValidateMessages(t *testing.T) {
	cfg := Default()
	cfg.Model = ""
	cfg.MaxTokens = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() returned nil error")
	}
	if !strings.Contains(err.Error(), "model") || !strings.Contains(err.Error(), "max_tokens") {
		t.Errorf("Validate() error = %v, want both violations reported", err)
	}
}
