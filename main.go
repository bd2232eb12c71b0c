// NutriSmart TUI - a terminal client for the NutriSmart nutrition assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/nutrismart-tui/internal/api"
	"github.com/jeranaias/nutrismart-tui/internal/auth"
	"github.com/jeranaias/nutrismart-tui/internal/bills"
	"github.com/jeranaias/nutrismart-tui/internal/config"
	"github.com/jeranaias/nutrismart-tui/internal/gateway"
	"github.com/jeranaias/nutrismart-tui/internal/realtime"
	"github.com/jeranaias/nutrismart-tui/internal/store"
	"github.com/jeranaias/nutrismart-tui/internal/ui/app"
	"github.com/jeranaias/nutrismart-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		configPath  string
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "", "path to a TOML or JSON config file")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.BoolVar(&showVersion, "v", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("nutrismart-tui %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if err := run(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "nutrismart-tui: %v\n", err)
		os.Exit(1)
	}
}

// tokenSource bridges the session manager to the HTTP clients: every
// request picks up the current session's (refreshed) ID token. Without a
// session requests go out unauthenticated, which the chat API accepts for
// anonymous use.
type tokenSource struct {
	client  *auth.Client
	manager *auth.Manager
}

func (t *tokenSource) Token(ctx context.Context) (string, error) {
	sess := t.manager.Current()
	if sess == nil {
		return "", nil
	}
	return t.client.IDToken(ctx, sess)
}

func run(configPath string) error {
	cfg, firstRun, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, closeLog, err := openLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	// Write the defaults on first run so the user has a file to edit. The
	// client runs fine without one.
	if firstRun {
		if err := config.Save(cfg); err != nil {
			logger.Printf("main: could not write default config: %v", err)
		}
	}

	// Identity.
	identity := auth.NewClient(cfg.Identity.Endpoint, cfg.Identity.APIKey)
	manager := auth.NewManager(identity)
	tokens := &tokenSource{client: identity, manager: manager}

	// Remote store and backend API.
	remote := store.NewRemote(cfg.Store.Endpoint, cfg.Store.ListenEndpoint, tokens)
	backend := api.NewClient(cfg.API.BaseURL, tokens)

	// Mirrored collections.
	stateDir, err := config.StateDir()
	if err != nil {
		return fmt.Errorf("resolving state dir: %w", err)
	}
	collections := realtime.NewCollections(remote, cfg.AppID, stateDir, logger)
	defer collections.Close()

	gw := gateway.New(backend, remote, manager, collections, cfg.AppID, logger)

	// Receipt inbox. A broken inbox is not fatal; the dashboard just won't
	// list receipts.
	var inbox *bills.Inbox
	if cfg.Bills.InboxDir != "" {
		inbox, err = bills.NewInbox(cfg.Bills.InboxDir, 0, logger)
		if err != nil {
			logger.Printf("main: receipt inbox disabled: %v", err)
			inbox = nil
		} else if err := inbox.Watch(); err != nil {
			logger.Printf("main: receipt inbox disabled: %v", err)
			inbox.Close()
			inbox = nil
		} else {
			defer inbox.Close()
		}
	}

	root := app.New(styles.NewTheme(cfg.UI.Theme), manager, gw, collections, inbox, cfg.UI.MarkdownWidth)
	program := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// loadConfig reads the config from an explicit path when one was given,
// otherwise from the default locations. firstRun reports that no config
// file exists yet.
func loadConfig(path string) (cfg *config.Config, firstRun bool, err error) {
	if path != "" {
		cfg, err = config.LoadFromPath(path)
		return cfg, false, err
	}

	firstRun = true
	for _, lookup := range []func() (string, error){config.PathTOML, config.PathJSON} {
		if p, err := lookup(); err == nil {
			if _, statErr := os.Stat(p); statErr == nil {
				firstRun = false
			}
		}
	}

	cfg, err = config.Load()
	return cfg, firstRun, err
}

// openLogger writes diagnostics to a file in the config dir; the alternate
// screen swallows anything written to stderr.
func openLogger() (*log.Logger, func(), error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, nil, fmt.Errorf("resolving config dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("creating config dir: %w", err)
	}

	path := filepath.Join(dir, "client.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return log.New(f, "", log.LstdFlags), func() { f.Close() }, nil
}
