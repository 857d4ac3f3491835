// Package evaluator decides who wins a round: the participant whose card first
// completes any pattern as the balls are called.
package evaluator

import (
	"slices"

	"github.com/lox/syncbingo/internal/card"
)

// Outcome is the result of a round.
type Outcome struct {
	CardID int
	// BallIndex is the 0-based position in Sequence of the ball that completed
	// the first pattern.
	BallIndex int
	Patterns  []Pattern
	// Cells is the sorted union of every matched pattern's cells.
	Cells    []int
	Sequence []int
}

// Labels returns the matched pattern labels in catalog order.
func (o Outcome) Labels() []string {
	labels := make([]string, len(o.Patterns))
	for i, p := range o.Patterns {
		labels[i] = p.Label()
	}
	return labels
}

// Called returns the balls drawn up to and including the winning ball.
func (o Outcome) Called() []int {
	return o.Sequence[:o.BallIndex+1]
}

type ballIndex [card.MaxNumber + 1]int

func indexSequence(sequence []int) *ballIndex {
	var idx ballIndex
	for i := range idx {
		idx[i] = -1
	}
	for pos, n := range sequence {
		if n >= 1 && n <= card.MaxNumber && idx[n] < 0 {
			idx[n] = pos
		}
	}
	return &idx
}

// completion returns the position at which p is complete on c, or false if some
// required number is never drawn.
func (idx *ballIndex) completion(c *card.Card, p Pattern) (int, bool) {
	last := 0
	for _, cell := range p.Cells {
		n := c.Numbers[cell]
		if n == card.FreeValue {
			continue
		}
		pos := idx[n]
		if pos < 0 {
			return 0, false
		}
		last = max(last, pos)
	}
	return last, true
}

// Evaluate finds the winner among participants for the given draw order.
// Participants are scanned in order and only a strictly earlier completion
// replaces the current best, so on a tie the first participant wins. It
// reports false when there are no participants or no pattern can complete.
func Evaluate(sequence []int, participants []int) (Outcome, bool) {
	if len(participants) == 0 {
		return Outcome{}, false
	}

	idx := indexSequence(sequence)
	best := len(sequence)
	winner := -1
	cards := make(map[int]*card.Card, len(participants))

	for _, id := range participants {
		c := card.Generate(id)
		cards[id] = &c
		for _, p := range catalog {
			pos, ok := idx.completion(&c, p)
			if ok && pos < best {
				best = pos
				winner = id
			}
		}
	}

	if winner < 0 {
		return Outcome{}, false
	}

	out := Outcome{
		CardID:    winner,
		BallIndex: best,
		Sequence:  sequence,
	}
	c := cards[winner]
	var cells []int
	for _, p := range catalog {
		if pos, ok := idx.completion(c, p); ok && pos <= best {
			out.Patterns = append(out.Patterns, p)
			for _, cell := range p.Cells {
				if !slices.Contains(cells, cell) {
					cells = append(cells, cell)
				}
			}
		}
	}
	slices.Sort(cells)
	out.Cells = cells

	return out, true
}
