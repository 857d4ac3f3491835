// Package config loads syncbingo settings from an HCL file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/syncbingo/internal/round"
)

// Config is the resolved configuration.
type Config struct {
	Game   GameSettings
	Server ServerSettings
	Player PlayerSettings
}

// GameSettings are the frozen round constants. Every cooperating client must
// use identical values.
type GameSettings struct {
	Origin              int64
	RoundPeriod         int64
	SelectionDuration   int64
	CallInterval        int64
	WinnerDuration      int64
	MinCompetitors      int
	MaxCardID           int
	RoundSeedMultiplier int64
	BotSeedMultiplier   int64
}

// ServerSettings configures the spectator server.
type ServerSettings struct {
	Address        string `hcl:"address,optional"`
	PollIntervalMs int    `hcl:"poll_interval_ms,optional"`
	LogLevel       string `hcl:"log_level,optional"`
	BetAmount      int    `hcl:"bet_amount,optional"`
	PayoutPercent  int    `hcl:"payout_percent,optional"`
}

// PlayerSettings configures the terminal watcher.
type PlayerSettings struct {
	Name string `hcl:"name,optional"`
	ID   string `hcl:"id,optional"`
}

// fileConfig mirrors the HCL layout. Every block and game attribute is
// optional; absent values fall back to DefaultConfig.
type fileConfig struct {
	Game   *fileGame       `hcl:"game,block"`
	Server *ServerSettings `hcl:"server,block"`
	Player *PlayerSettings `hcl:"player,block"`
}

type fileGame struct {
	Origin              *int64 `hcl:"origin,optional"`
	RoundPeriod         *int64 `hcl:"round_period,optional"`
	SelectionDuration   *int64 `hcl:"selection_duration,optional"`
	CallInterval        *int64 `hcl:"call_interval,optional"`
	WinnerDuration      *int64 `hcl:"winner_duration,optional"`
	MinCompetitors      *int   `hcl:"min_competitors,optional"`
	MaxCardID           *int   `hcl:"max_card_id,optional"`
	RoundSeedMultiplier *int64 `hcl:"round_seed_multiplier,optional"`
	BotSeedMultiplier   *int64 `hcl:"bot_seed_multiplier,optional"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	p := round.DefaultParams()
	return &Config{
		Game: GameSettings{
			Origin:              p.Origin,
			RoundPeriod:         p.RoundPeriod,
			SelectionDuration:   p.SelectionDuration,
			CallInterval:        p.CallInterval,
			WinnerDuration:      p.WinnerDuration,
			MinCompetitors:      p.MinCompetitors,
			MaxCardID:           p.MaxCardID,
			RoundSeedMultiplier: p.RoundSeedMultiplier,
			BotSeedMultiplier:   p.BotSeedMultiplier,
		},
		Server: ServerSettings{
			Address:        ":8080",
			PollIntervalMs: 1000,
			LogLevel:       "info",
			BetAmount:      10,
			PayoutPercent:  85,
		},
	}
}

// LoadConfig loads configuration from an HCL file. A missing file yields the
// defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := DefaultConfig()
	if g := fc.Game; g != nil {
		setInt64(&cfg.Game.Origin, g.Origin)
		setInt64(&cfg.Game.RoundPeriod, g.RoundPeriod)
		setInt64(&cfg.Game.SelectionDuration, g.SelectionDuration)
		setInt64(&cfg.Game.CallInterval, g.CallInterval)
		setInt64(&cfg.Game.WinnerDuration, g.WinnerDuration)
		setInt(&cfg.Game.MinCompetitors, g.MinCompetitors)
		setInt(&cfg.Game.MaxCardID, g.MaxCardID)
		setInt64(&cfg.Game.RoundSeedMultiplier, g.RoundSeedMultiplier)
		setInt64(&cfg.Game.BotSeedMultiplier, g.BotSeedMultiplier)
	}
	if s := fc.Server; s != nil {
		if s.Address != "" {
			cfg.Server.Address = s.Address
		}
		if s.PollIntervalMs != 0 {
			cfg.Server.PollIntervalMs = s.PollIntervalMs
		}
		if s.LogLevel != "" {
			cfg.Server.LogLevel = s.LogLevel
		}
		if s.BetAmount != 0 {
			cfg.Server.BetAmount = s.BetAmount
		}
		if s.PayoutPercent != 0 {
			cfg.Server.PayoutPercent = s.PayoutPercent
		}
	}
	if fc.Player != nil {
		cfg.Player = *fc.Player
	}

	return cfg, nil
}

func setInt64(dst *int64, v *int64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// Params converts the game block into resolver constants.
func (c *Config) Params() round.Params {
	g := c.Game
	return round.Params{
		Origin:              g.Origin,
		RoundPeriod:         g.RoundPeriod,
		SelectionDuration:   g.SelectionDuration,
		CallInterval:        g.CallInterval,
		WinnerDuration:      g.WinnerDuration,
		MinCompetitors:      g.MinCompetitors,
		MaxCardID:           g.MaxCardID,
		RoundSeedMultiplier: g.RoundSeedMultiplier,
		BotSeedMultiplier:   g.BotSeedMultiplier,
	}
}

// PollInterval returns how often hosts re-resolve the round.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Server.PollIntervalMs) * time.Millisecond
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("invalid game block: %w", err)
	}
	if c.Server.PollIntervalMs <= 0 {
		return fmt.Errorf("poll_interval_ms must be positive, got %d", c.Server.PollIntervalMs)
	}
	if c.Server.PayoutPercent < 0 || c.Server.PayoutPercent > 100 {
		return fmt.Errorf("payout_percent must be in [0, 100], got %d", c.Server.PayoutPercent)
	}
	if c.Server.BetAmount < 0 {
		return fmt.Errorf("bet_amount must be non-negative, got %d", c.Server.BetAmount)
	}
	return nil
}
