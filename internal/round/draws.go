package round

import (
	"github.com/lox/syncbingo/internal/card"
	"github.com/lox/syncbingo/internal/precondition"
	"github.com/lox/syncbingo/internal/randutil"
)

// DrawSequence is the order in which the 75 balls are called in a round.
type DrawSequence [card.MaxNumber]int

// Slice returns the sequence as a slice.
func (d *DrawSequence) Slice() []int {
	return d[:]
}

// BuildDrawSequence derives the draw order for roundID by extracting balls from
// a shrinking pool with a generator seeded at roundID*multiplier.
func BuildDrawSequence(roundID, multiplier int64) DrawSequence {
	precondition.Check(roundID >= 0, "round.BuildDrawSequence", "round id must be non-negative, got %d", roundID)

	var seq DrawSequence
	pool := make([]int, card.MaxNumber)
	for i := range pool {
		pool[i] = i + 1
	}

	rng := randutil.NewLCG(roundID * multiplier)
	for i := range seq {
		j := rng.Intn(len(pool))
		seq[i] = pool[j]
		pool = append(pool[:j], pool[j+1:]...)
	}
	return seq
}
