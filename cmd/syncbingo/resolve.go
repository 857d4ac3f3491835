package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lox/syncbingo/internal/card"
	"github.com/lox/syncbingo/internal/round"
	"github.com/lox/syncbingo/internal/selection"
	"github.com/lox/syncbingo/internal/server"
)

// ResolveCmd prints the round at a moment in time.
type ResolveCmd struct {
	At    *int64 `help:"Unix time to resolve (default now)"`
	Cards []int  `sep:"," help:"Card ids to play, applied to the resolved round"`
	JSON  bool   `name:"json" help:"Print the view as JSON"`
}

func (c *ResolveCmd) Run(g *Globals) error {
	cfg, resolver, logger, err := g.setup()
	if err != nil {
		return err
	}
	p := resolver.Params()

	now := time.Now().Unix()
	if c.At != nil {
		now = *c.At
	}
	if err := p.ValidateAt(now); err != nil {
		return err
	}
	if err := validateCards(p, c.Cards); err != nil {
		return err
	}

	v, cards := resolver.ResolveCards(now, c.Cards)
	logger.Debug("Resolved round", "at", now, "round", v.ID, "advanced", v.Advanced)
	if len(c.Cards) > 0 && len(cards) == 0 {
		logger.Warn("Cards ended their round before the requested time, showing the next round without them", "round", v.ID)
	}

	if c.JSON {
		data := server.NewRoundViewData(v, p, cfg.Server, server.Viewer{
			Name:  cfg.Player.Name,
			ID:    cfg.Player.ID,
			Cards: cards,
		})
		enc := json.NewEncoder(g.out())
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}

	printView(g.out(), v, p, round.PrizePool(v.Participants.Len(), cfg.Server.BetAmount, cfg.Server.PayoutPercent))
	return nil
}

func validateCards(p round.Params, cards []int) error {
	if len(cards) > selection.MaxCards {
		return fmt.Errorf("at most %d cards may be played, got %d", selection.MaxCards, len(cards))
	}
	for _, id := range cards {
		if err := p.ValidateCard(id); err != nil {
			return err
		}
	}
	return nil
}

func stamp(unix int64) string {
	return fmt.Sprintf("%d (%s)", unix, time.Unix(unix, 0).UTC().Format(time.RFC3339))
}

func printView(w io.Writer, v round.View, p round.Params, pool int) {
	fmt.Fprintf(w, "Round #%d  %s  %s remaining\n", v.ID, v.Phase, round.FormatCountdown(v.Window.Remaining(v.Now)))
	fmt.Fprintf(w, "  selection  %s\n", stamp(v.Window.Start))
	fmt.Fprintf(w, "  playing    %s\n", stamp(v.Window.SelectionEnd))
	fmt.Fprintf(w, "  winner     %s\n", stamp(v.Window.PlayEnd))
	fmt.Fprintf(w, "  next       %s\n", stamp(v.Window.WinnerEnd))
	fmt.Fprintf(w, "Participants %d, prize pool $%d", v.Participants.Len(), pool)
	if v.Advanced > 0 {
		fmt.Fprintf(w, ", chained %d round(s) past the period start", v.Advanced)
	}
	fmt.Fprintln(w)

	if pr := v.Progress(p.CallInterval); len(pr.Called) > 0 {
		calls := make([]string, len(pr.Recent))
		for i, n := range pr.Recent {
			calls[i] = card.Call(n)
		}
		fmt.Fprintf(w, "Called %d, recent %s\n", len(pr.Called), strings.Join(calls, " "))
	}

	if out := v.Outcome; out != nil {
		fmt.Fprintf(w, "Outcome: card #%d completes %s on ball %d (%s)\n",
			out.CardID, strings.Join(out.Labels(), ", "), out.BallIndex+1, card.Call(v.Draws[out.BallIndex]))
	} else {
		fmt.Fprintln(w, "Outcome: no winner")
	}
}
