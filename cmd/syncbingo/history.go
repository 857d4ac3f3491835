package main

import (
	"fmt"
	"time"

	"github.com/lox/syncbingo/internal/history"
)

// HistoryCmd exports observed rounds to a JSON file.
type HistoryCmd struct {
	From  *int64 `help:"Start of the range in Unix seconds (default one hour before --to)"`
	To    *int64 `help:"End of the range in Unix seconds (default now)"`
	Out   string `short:"o" default:"history.json" help:"Output file"`
	Limit int    `default:"10000" help:"Maximum number of rounds to export"`
}

func (c *HistoryCmd) Run(g *Globals) error {
	_, resolver, logger, err := g.setup()
	if err != nil {
		return err
	}

	to := time.Now().Unix()
	if c.To != nil {
		to = *c.To
	}
	from := max(0, to-int64(time.Hour/time.Second))
	if c.From != nil {
		from = *c.From
	}

	entries, err := history.Collect(resolver, from, to, c.Limit)
	if err != nil {
		return err
	}
	if err := history.Write(c.Out, entries); err != nil {
		return err
	}

	stats := history.Stats(entries)
	logger.Info("Exported history", "rounds", len(entries), "from", from, "to", to, "file", c.Out)
	fmt.Fprintf(g.out(), "Wrote %d rounds to %s\n", len(entries), c.Out)
	fmt.Fprintln(g.out(), stats)
	for _, p := range stats.TopPatterns(3) {
		fmt.Fprintf(g.out(), "  %-10s %d\n", p.Label, p.Wins)
	}
	return nil
}
