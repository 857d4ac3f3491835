package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/lox/syncbingo/internal/card"
	"github.com/lox/syncbingo/internal/round"
	"github.com/lox/syncbingo/internal/tui"
)

// CardCmd prints a card, optionally marked against a round's full draw.
type CardCmd struct {
	ID    int    `arg:"" help:"Card id"`
	Round *int64 `help:"Mark the numbers this round calls before its winning ball"`
}

func (c *CardCmd) Run(g *Globals) error {
	_, resolver, _, err := g.setup()
	if err != nil {
		return err
	}
	p := resolver.Params()
	if err := p.ValidateCard(c.ID); err != nil {
		return err
	}

	cd := card.Generate(c.ID)
	var marked [card.Size]bool
	if c.Round != nil {
		if err := p.ValidateRoundID(*c.Round); err != nil {
			return err
		}
		rd := resolver.Build(*c.Round, p.Origin, round.Selection{})
		marked = cd.Marked(rd.Draws[:min(rd.BallIndex()+1, len(rd.Draws))])
	}
	fmt.Fprintln(g.out(), tui.RenderCard(cd, marked, nil))
	return nil
}

// DrawsCmd prints the call order of a round.
type DrawsCmd struct {
	Round int64 `arg:"" help:"Round id"`
	JSON  bool  `name:"json" help:"Print the sequence as a JSON array"`
}

func (c *DrawsCmd) Run(g *Globals) error {
	_, resolver, _, err := g.setup()
	if err != nil {
		return err
	}
	p := resolver.Params()
	if err := p.ValidateRoundID(c.Round); err != nil {
		return err
	}

	seq := round.BuildDrawSequence(c.Round, p.RoundSeedMultiplier)
	if c.JSON {
		return json.NewEncoder(g.out()).Encode(seq.Slice())
	}
	calls := make([]string, len(seq))
	for i, n := range seq {
		calls[i] = fmt.Sprintf("%5s", card.Call(n))
	}
	printRows(g.out(), calls, 15)
	return nil
}

// ParticipantsCmd lists a round's participants in evaluation order.
type ParticipantsCmd struct {
	Round int64 `arg:"" help:"Round id"`
	Cards []int `sep:"," help:"Card ids played locally in this round"`
}

func (c *ParticipantsCmd) Run(g *Globals) error {
	_, resolver, _, err := g.setup()
	if err != nil {
		return err
	}
	p := resolver.Params()
	if err := p.ValidateRoundID(c.Round); err != nil {
		return err
	}
	if err := validateCards(p, c.Cards); err != nil {
		return err
	}

	set := round.BuildParticipants(p, c.Round, c.Cards)
	ids := make([]string, 0, set.Len())
	for _, id := range set.IDs() {
		s := fmt.Sprintf("%4d", id)
		if slices.Contains(c.Cards, id) {
			s += "*"
		} else {
			s += " "
		}
		ids = append(ids, s)
	}
	fmt.Fprintf(g.out(), "Round #%d: %d participants\n", c.Round, set.Len())
	printRows(g.out(), ids, 10)
	return nil
}

func printRows(w io.Writer, cells []string, perRow int) {
	for row := range slices.Chunk(cells, perRow) {
		fmt.Fprintln(w, strings.TrimRight(strings.Join(row, " "), " "))
	}
}
