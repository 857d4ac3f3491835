package evaluator

import (
	"testing"

	"github.com/lox/syncbingo/internal/card"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Draw order for round 0 under the default seed multiplier.
var roundZero = []int{16, 54, 41, 57, 63, 5, 28, 65, 73, 39, 14, 50, 47, 22, 44, 8, 42, 12, 26, 32, 60, 59, 20, 67, 62, 37, 66, 69, 43, 7, 27, 74, 6, 53, 72, 17, 29, 2, 70, 49, 40, 36, 11, 9, 46, 10, 71, 33, 3, 35, 38, 23, 21, 19, 30, 51, 75, 48, 64, 15, 31, 52, 24, 18, 13, 58, 55, 1, 68, 56, 34, 4, 25, 45, 61}

// Bot pool for round 0 (seed 0, 25 competitors, ids 1..500).
var roundZeroBots = []int{106, 355, 274, 370, 410, 32, 188, 422, 484, 269, 100, 337, 321, 152, 300, 52, 285, 82, 171, 210, 390, 386, 133, 433, 406}

func TestPatternCatalog(t *testing.T) {
	patterns := Patterns()
	require.Len(t, patterns, 13)

	assert.Equal(t, []int{0, 1, 2, 3, 4}, patterns[0].Cells)
	assert.Equal(t, "Column B", patterns[0].Name)
	assert.Equal(t, []int{20, 21, 22, 23, 24}, patterns[4].Cells)
	assert.Equal(t, []int{0, 5, 10, 15, 20}, patterns[5].Cells)
	assert.Equal(t, "Row 1", patterns[5].Name)
	assert.Equal(t, []int{0, 6, 12, 18, 24}, patterns[10].Cells)
	assert.Equal(t, []int{4, 8, 12, 16, 20}, patterns[11].Cells)
	assert.Equal(t, []int{0, 4, 20, 24}, patterns[12].Cells)

	for i, p := range patterns {
		assert.Equal(t, i+1, p.ID)
	}
	assert.Equal(t, "Pattern 13", patterns[12].Label())
}

func TestEvaluateRoundZero(t *testing.T) {
	out, ok := Evaluate(roundZero, roundZeroBots)
	require.True(t, ok)

	assert.Equal(t, 410, out.CardID)
	assert.Equal(t, 26, out.BallIndex)
	assert.Equal(t, []string{"Pattern 7"}, out.Labels())
	assert.Equal(t, []int{1, 6, 11, 16, 21}, out.Cells)
	assert.Len(t, out.Called(), 27)
	assert.Equal(t, 66, out.Called()[26])
}

func TestEvaluateSingleCard(t *testing.T) {
	out, ok := Evaluate(roundZero, []int{26})
	require.True(t, ok)

	assert.Equal(t, 26, out.CardID)
	assert.Equal(t, 13, out.BallIndex)
	assert.Equal(t, []string{"Pattern 12"}, out.Labels())
	assert.Equal(t, []int{4, 8, 12, 16, 20}, out.Cells)
}

func TestEvaluateTieGoesToFirstParticipant(t *testing.T) {
	// Cards 29, 39 and 48 all complete the four corners at ball index 23.
	tests := []struct {
		name         string
		participants []int
		winner       int
	}{
		{"29 first", []int{29, 39, 48}, 29},
		{"39 first", []int{39, 29}, 39},
		{"48 first", []int{48, 29, 39}, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok := Evaluate(roundZero, tt.participants)
			require.True(t, ok)
			assert.Equal(t, tt.winner, out.CardID)
			assert.Equal(t, 23, out.BallIndex)
			assert.Equal(t, []string{"Pattern 13"}, out.Labels())
			assert.Equal(t, []int{0, 4, 20, 24}, out.Cells)
		})
	}
}

func TestEvaluateEmptyParticipants(t *testing.T) {
	_, ok := Evaluate(roundZero, nil)
	assert.False(t, ok)
}

func TestEvaluateInfeasiblePatterns(t *testing.T) {
	// Card 26 completes the anti-diagonal at index 13; with only ten balls
	// drawn none of its patterns can complete.
	_, ok := Evaluate(roundZero[:10], []int{26})
	assert.False(t, ok)

	out, ok := Evaluate(roundZero[:20], []int{26})
	require.True(t, ok)
	assert.Equal(t, 13, out.BallIndex)

	// A pattern needing a number that is never drawn is never matched.
	c := card.Generate(26)
	missing := c.Numbers[4] // top of the anti-diagonal
	var seq []int
	for _, n := range roundZero {
		if n != missing {
			seq = append(seq, n)
		}
	}
	out, ok = Evaluate(seq, []int{26})
	require.True(t, ok)
	for _, p := range out.Patterns {
		assert.NotContains(t, p.Cells, 4, "pattern %s uses a cell whose number was never drawn", p.Name)
	}
}

func TestEvaluateMatchedPatternsCompleteByWinningBall(t *testing.T) {
	participants := []int{3, 17, 44, 120, 250, 333, 499}
	out, ok := Evaluate(roundZero, participants)
	require.True(t, ok)
	require.NotEmpty(t, out.Patterns)

	c := card.Generate(out.CardID)
	called := map[int]bool{}
	for _, n := range out.Called() {
		called[n] = true
	}
	for _, p := range out.Patterns {
		for _, cell := range p.Cells {
			n := c.Numbers[cell]
			assert.True(t, n == card.FreeValue || called[n], "pattern %s cell %d not called", p.Name, cell)
		}
	}

	// No participant completes anything earlier.
	for _, id := range participants {
		single, ok := Evaluate(roundZero, []int{id})
		require.True(t, ok)
		assert.GreaterOrEqual(t, single.BallIndex, out.BallIndex)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	a, okA := Evaluate(roundZero, roundZeroBots)
	b, okB := Evaluate(roundZero, roundZeroBots)
	require.True(t, okA)
	require.True(t, okB)
	assert.Equal(t, a, b)
}
