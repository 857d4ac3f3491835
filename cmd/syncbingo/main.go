package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/syncbingo/cmd/syncbingo/shared"
	"github.com/lox/syncbingo/internal/config"
	"github.com/lox/syncbingo/internal/round"
	"github.com/muesli/termenv"
)

// version is set by ldflags during build
var version = "dev"

// Globals are the flags shared by every command.
type Globals struct {
	Config   string `short:"c" default:"syncbingo.hcl" help:"Path to HCL configuration file"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	Origin   *int64 `help:"Unix second at which round 0 starts (overrides config)"`
	NoColor  bool   `help:"Disable colored output"`

	Stdout io.Writer `kong:"-"`
}

type CLI struct {
	Globals

	Version      kong.VersionFlag `short:"v" help:"Show version"`
	Resolve      ResolveCmd       `cmd:"" help:"Resolve the round at a point in time"`
	Card         CardCmd          `cmd:"" help:"Print a card"`
	Draws        DrawsCmd         `cmd:"" help:"Print the draw order of a round"`
	Participants ParticipantsCmd  `cmd:"" help:"List the participants of a round"`
	Watch        WatchCmd         `cmd:"" help:"Watch rounds in the terminal"`
	Serve        ServeCmd         `cmd:"" help:"Run the spectator server"`
	History      HistoryCmd       `cmd:"" help:"Export the rounds observed over a time range"`
}

func main() {
	cli := CLI{Globals: Globals{Stdout: os.Stdout}}
	ctx := kong.Parse(&cli,
		kong.Name("syncbingo"),
		kong.Description("Deterministic bingo rounds that every client resolves identically"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

func (g *Globals) out() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// load reads the config file and applies flag overrides.
func (g *Globals) load() (*config.Config, error) {
	cfg, err := config.LoadConfig(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Server.LogLevel = g.LogLevel
	}
	if g.Origin != nil {
		cfg.Game.Origin = *g.Origin
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (g *Globals) setup() (*config.Config, *round.Resolver, *log.Logger, error) {
	if g.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	cfg, err := g.load()
	if err != nil {
		return nil, nil, nil, err
	}
	resolver, err := round.NewResolver(cfg.Params())
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, resolver, shared.SetupLogger(cfg.Server.LogLevel), nil
}
