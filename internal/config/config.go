// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

// Package config provides configuration loading for gpterm.
//
// Configuration comes from ~/.gpterm/config.toml with built-in defaults and
// GPTERM_* environment variable overrides layered on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aldev/gpterm/internal/util"
)

// =============================================================================
// CONFIG STRUCTURE
// =============================================================================

// Config represents the complete gpterm configuration.
type Config struct {
	// Model is the chat completion model.
	Model string `toml:"model"`

	// MaxTokens limits the length of each assistant reply.
	MaxTokens int `toml:"max_tokens"`

	// Autosave re-saves the active named session after every completed turn.
	Autosave bool `toml:"autosave"`

	// Lite starts the client in lite mode: nothing is read from or written
	// to disk for the conversation.
	Lite bool `toml:"lite"`

	// SessionsDir is the directory holding saved sessions.
	// Default: ~/.gpterm/sessions
	SessionsDir string `toml:"sessions_dir"`

	// PersonalitiesPath is the personalities TOML file.
	// Default: ~/.gpterm/personalities.toml
	PersonalitiesPath string `toml:"personalities_path"`

	// LogLevel controls log verbosity: "debug", "info", "warn", "error"
	// or "off".
	LogLevel string `toml:"log_level"`

	// Export configures conversation export.
	Export ExportConfig `toml:"export"`
}

// ExportConfig contains export settings.
type ExportConfig struct {
	// Dir is the directory exported files are written to.
	// Default: current working directory.
	Dir string `toml:"dir"`

	// LineLength re-wraps plain-text exports to this width. 0 disables.
	LineLength int `toml:"line_length"`
}

// =============================================================================
// DEFAULTS AND PATHS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Model:     "gpt-4o-mini",
		MaxTokens: 150,
		Autosave:  true,
		LogLevel:  "info",
		Export: ExportConfig{
			Dir:        ".",
			LineLength: 80,
		},
	}
}

// Dir returns the gpterm configuration directory (~/.gpterm).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".gpterm"), nil
}

// Path returns the configuration file path (~/.gpterm/config.toml).
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration file from the default location, fills in
// defaults, applies environment overrides and validates the result. A
// missing file is not an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := cfg.fillPaths(); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillPaths resolves default paths that depend on the home directory.
func (c *Config) fillPaths() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if c.SessionsDir == "" {
		c.SessionsDir = filepath.Join(dir, "sessions")
	}
	if c.PersonalitiesPath == "" {
		c.PersonalitiesPath = filepath.Join(dir, "personalities.toml")
	}
	return nil
}

// ApplyEnvOverrides applies environment variable overrides:
//   - GPTERM_MODEL: overrides model
//   - GPTERM_MAX_TOKENS: overrides max_tokens
//   - GPTERM_SESSIONS_DIR: overrides sessions_dir
//   - GPTERM_LITE: set to "1" or "true" to start in lite mode
//   - GPTERM_AUTOSAVE: set to "0" or "false" to disable autosave
//   - GPTERM_LOG_LEVEL: overrides log_level
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("GPTERM_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("GPTERM_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxTokens = n
		}
	}
	if v := os.Getenv("GPTERM_SESSIONS_DIR"); v != "" {
		c.SessionsDir = v
	}
	if v := os.Getenv("GPTERM_LITE"); v != "" {
		c.Lite = isTruthy(v)
	}
	if v := os.Getenv("GPTERM_AUTOSAVE"); v != "" {
		c.Autosave = isTruthy(v)
	}
	if v := os.Getenv("GPTERM_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// =============================================================================
// VALIDATION
// =============================================================================

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "off": true,
}

// Validate checks the configuration for inconsistent values.
func (c *Config) Validate() error {
	var errs []string
	if strings.TrimSpace(c.Model) == "" {
		errs = append(errs, "model must not be empty")
	}
	if c.MaxTokens <= 0 {
		errs = append(errs, "max_tokens must be positive")
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q", c.LogLevel))
	}
	if c.Export.LineLength < 0 {
		errs = append(errs, "export.line_length must not be negative")
	}
	if len(errs) > 0 {
		return errors.New("invalid config: " + strings.Join(errs, "; "))
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to the default location with restrictive
// permissions.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration to a specific file path.
func SaveToPath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(sb.String()), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
