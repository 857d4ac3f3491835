package main

import (
	"time"

	"github.com/lox/syncbingo/cmd/syncbingo/shared"
	"github.com/lox/syncbingo/internal/server"
)

// ServeCmd runs the spectator server.
type ServeCmd struct {
	Addr string `short:"a" help:"Server address to bind to (overrides config)"`
	Seed *int64 `help:"Seed for random card assignment (optional)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, _, logger, err := g.setup()
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("Using deterministic seed", "seed", seed)
	}

	s, err := server.NewServer(cfg, logger, server.WithSeed(seed))
	if err != nil {
		return err
	}

	logger.Info("Starting syncbingo server",
		"address", cfg.Server.Address,
		"origin", cfg.Game.Origin,
		"round_period", cfg.Game.RoundPeriod,
		"min_competitors", cfg.Game.MinCompetitors,
		"max_card_id", cfg.Game.MaxCardID)

	ctx := shared.SetupSignalHandlerWithLogger(logger)
	return s.Run(ctx)
}
