package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coder/quartz"
	"github.com/lox/syncbingo/cmd/syncbingo/shared"
	"github.com/lox/syncbingo/internal/tui"
)

// WatchCmd runs the terminal watcher.
type WatchCmd struct {
	Name    string `help:"Player name shown when your card wins (overrides config)"`
	LogFile string `help:"Write debug logs to this file"`
}

func (c *WatchCmd) Run(g *Globals) error {
	cfg, resolver, _, err := g.setup()
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file or nowhere.
	var w io.Writer = io.Discard
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	logger := shared.NewLogger(w, cfg.Server.LogLevel)

	player := cfg.Player
	if c.Name != "" {
		player.Name = c.Name
	}
	if player.Name == "" {
		player.Name = "You"
	}

	model := tui.NewModel(tui.Options{
		Resolver:      resolver,
		Clock:         quartz.NewReal(),
		Logger:        logger,
		Player:        player,
		BetAmount:     cfg.Server.BetAmount,
		PayoutPercent: cfg.Server.PayoutPercent,
	})
	logger.Info("Starting watcher", "player", player.Name, "origin", cfg.Game.Origin)

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("watcher failed: %w", err)
	}
	return nil
}
