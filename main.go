// gpterm - a simple terminal client for OpenAI chat models.
//
// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/aldev/gpterm/internal/api"
	"github.com/aldev/gpterm/internal/chat"
	"github.com/aldev/gpterm/internal/config"
	"github.com/aldev/gpterm/internal/export"
	"github.com/aldev/gpterm/internal/logging"
	"github.com/aldev/gpterm/internal/model"
	"github.com/aldev/gpterm/internal/personality"
	"github.com/aldev/gpterm/internal/store"
	uichat "github.com/aldev/gpterm/internal/ui/chat"
)

// Version is set at build time.
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "gpterm:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		liteFlag    = flag.Bool("lite", false, "start in lite mode (nothing touches disk)")
		configPath  = flag.String("config", "", "config file path (default ~/.gpterm/config.toml)")
		sessionsDir = flag.String("sessions", "", "sessions directory override")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("gpterm", Version)
		return nil
	}

	// A .env in the working directory may carry OPENAI_API_KEY.
	_ = godotenv.Load()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *liteFlag {
		cfg.Lite = true
	}
	if *sessionsDir != "" {
		cfg.SessionsDir = *sessionsDir
	}

	logDir, err := config.Dir()
	if err != nil {
		return err
	}
	logger, closeLog, err := logging.Setup(logDir, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	defer closeLog()

	catalog, err := personality.Load(cfg.PersonalitiesPath)
	if err != nil {
		// The fallback catalog is already in place; just note why.
		logger.Warn().Err(err).Msg("using built-in personalities")
	}

	st := store.New(cfg.SessionsDir)

	switch flag.Arg(0) {
	case "sessions":
		return printSessions(st)
	case "export":
		return exportSession(st, cfg, flag.Args()[1:])
	case "":
		return runTUI(cfg, catalog, st, logger)
	default:
		return fmt.Errorf("unknown command %q", flag.Arg(0))
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// =============================================================================
// TUI
// =============================================================================

func runTUI(cfg *config.Config, catalog *personality.Catalog, st *store.Store, logger zerolog.Logger) error {
	client, err := api.NewFromEnv()
	if err != nil {
		if !errors.Is(err, api.ErrMissingCredential) {
			return err
		}
		// Start anyway so saved sessions stay readable; sending will fail
		// with a clear message.
		logger.Warn().Msg("no API key configured, sending is disabled")
	}

	var sender chat.Sender = client
	if client == nil {
		sender = disabledSender{}
	}

	var program *tea.Program

	orch := chat.New(chat.Options{
		Catalog:   catalog,
		Store:     st,
		Sender:    sender,
		Logger:    logger,
		Autosave:  cfg.Autosave,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		Lite:      cfg.Lite,
		OnSaveError: func(err error) {
			if program != nil {
				program.Send(uichat.SaveWarnMsg{Err: err})
			}
		},
	})

	exportOpts := &export.Options{
		OutputDir:       cfg.Export.Dir,
		LineLength:      cfg.Export.LineLength,
		FoldContinues:   true,
		IncludeMetadata: true,
	}

	ui := uichat.New(orch, catalog, exportOpts)
	program = tea.NewProgram(ui, tea.WithAltScreen())

	// Refresh the session list when another process writes a session.
	// Lite mode skips the watcher so nothing is created on disk.
	if !cfg.Lite {
		watcher, err := st.Watch(func(name string) {
			program.Send(uichat.SessionsChangedMsg{Name: name})
		})
		if err != nil {
			logger.Warn().Err(err).Msg("session watcher unavailable")
		} else {
			defer watcher.Close()
		}
	}

	_, err = program.Run()
	return err
}

// disabledSender rejects every turn with a configuration hint.
type disabledSender struct{}

func (disabledSender) Send(ctx context.Context, systemPrompt string, history []model.Message, modelName string, maxTokens int) (string, error) {
	return "", api.ErrMissingCredential
}

// =============================================================================
// SUBCOMMANDS
// =============================================================================

func printSessions(st *store.Store) error {
	infos, err := st.List()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("no saved sessions")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%-24s %3d msgs  %-12s %s\n",
			info.Name, info.MessageCount, info.Personality, info.Preview)
	}
	return nil
}

func exportSession(st *store.Store, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: gpterm export <session> [txt|md|json]")
	}
	name := args[0]
	format := "txt"
	if len(args) > 1 {
		format = args[1]
	}

	snap, clean, err := st.Load(name)
	if err != nil {
		return err
	}

	opts := &export.Options{
		OutputDir:       cfg.Export.Dir,
		LineLength:      cfg.Export.LineLength,
		FoldContinues:   true,
		IncludeMetadata: true,
	}
	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		return err
	}
	path, err := export.ToFile(clean, snap, exporter, opts)
	if err != nil {
		return err
	}
	fmt.Println("exported to", path)
	return nil
}
