package history

import (
	"path/filepath"
	"testing"

	"github.com/lox/syncbingo/internal/round"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResolver(t *testing.T) *round.Resolver {
	t.Helper()
	p := round.DefaultParams()
	p.Origin = 0
	r, err := round.NewResolver(p)
	require.NoError(t, err)
	return r
}

func TestCollectFollowsObservedRounds(t *testing.T) {
	r := testResolver(t)

	entries, err := Collect(r, 0, 424, 0)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	first := entries[0]
	assert.Equal(t, int64(0), first.RoundID)
	assert.Equal(t, round.Window{Start: 0, SelectionEnd: 60, PlayEnd: 164, WinnerEnd: 179}, first.Window)
	assert.Equal(t, 410, first.WinnerCardID)
	assert.Equal(t, 26, first.BallIndex)
	assert.Equal(t, []string{"Pattern 7"}, first.Patterns)
	assert.Equal(t, []int{1, 6, 11, 16, 21}, first.Cells)
	assert.Equal(t, 25, first.Participants)
	require.Len(t, first.Called, 27)
	assert.Equal(t, []int{16, 54, 41}, first.Called[:3])
	assert.Equal(t, 66, first.Called[26])
	assert.Equal(t, int64(179), first.ShownUntil)
	assert.True(t, first.Completed)

	// Chained round cut short by the next period.
	second := entries[1]
	assert.Equal(t, int64(1), second.RoundID)
	assert.Equal(t, int64(179), second.Window.Start)
	assert.Equal(t, int64(300), second.ShownUntil)
	assert.False(t, second.Completed)
	assert.Equal(t, 8, second.WinnerCardID)

	third := entries[2]
	assert.Equal(t, int64(1), third.RoundID)
	assert.Equal(t, round.Window{Start: 300, SelectionEnd: 360, PlayEnd: 408, WinnerEnd: 423}, third.Window)
	assert.True(t, third.Completed)

	fourth := entries[3]
	assert.Equal(t, int64(2), fourth.RoundID)
	assert.Equal(t, int64(423), fourth.Window.Start)
}

func TestCollectIsContiguous(t *testing.T) {
	r := testResolver(t)

	entries, err := Collect(r, 1000, 5000, 0)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		assert.LessOrEqual(t, cur.Window.Start, prev.ShownUntil, "entry %d", i)
		assert.Greater(t, cur.ShownUntil, prev.ShownUntil, "entry %d", i)
	}
	assert.GreaterOrEqual(t, entries[len(entries)-1].ShownUntil, int64(5000))
}

func TestCollectRejectsBadInput(t *testing.T) {
	r := testResolver(t)

	_, err := Collect(r, 100, 100, 0)
	assert.ErrorIs(t, err, ErrEmptyRange)

	_, err = Collect(r, -1, 100, 0)
	assert.Error(t, err)
}

func TestCollectLimit(t *testing.T) {
	r := testResolver(t)

	entries, err := Collect(r, 0, 100000, 3)
	assert.Error(t, err)
	assert.Len(t, entries, 3)
}

func TestWriteAndRead(t *testing.T) {
	r := testResolver(t)
	entries, err := Collect(r, 0, 600, 0)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, Write(path, entries))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestStats(t *testing.T) {
	r := testResolver(t)
	entries, err := Collect(r, 0, 424, 0)
	require.NoError(t, err)

	s := Stats(entries)
	require.NoError(t, s.Validate())
	assert.Equal(t, 4, s.Rounds)
	assert.Equal(t, 1, s.Interrupted)
	assert.Equal(t, 27, s.MaxBalls)
	assert.Equal(t, 2, s.CardWins[8])
}
