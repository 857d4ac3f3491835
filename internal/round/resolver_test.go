package round

import (
	"testing"

	"github.com/lox/syncbingo/internal/precondition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFixture(t *testing.T) {
	r := MustNewResolver(fixtureParams())

	tests := []struct {
		now      int64
		id       int64
		phase    Phase
		window   Window
		winner   int
		ball     int
		advanced int
	}{
		{0, 0, PhaseSelection, Window{0, 60, 164, 179}, 410, 26, 0},
		{59, 0, PhaseSelection, Window{0, 60, 164, 179}, 410, 26, 0},
		{60, 0, PhasePlaying, Window{0, 60, 164, 179}, 410, 26, 0},
		{163, 0, PhasePlaying, Window{0, 60, 164, 179}, 410, 26, 0},
		{164, 0, PhaseWinnerAnnounced, Window{0, 60, 164, 179}, 410, 26, 0},
		{178, 0, PhaseWinnerAnnounced, Window{0, 60, 164, 179}, 410, 26, 0},
		{179, 1, PhaseSelection, Window{179, 239, 287, 302}, 8, 12, 1},
		{250, 1, PhasePlaying, Window{179, 239, 287, 302}, 8, 12, 1},
		{299, 1, PhaseWinnerAnnounced, Window{179, 239, 287, 302}, 8, 12, 1},
		{300, 1, PhaseSelection, Window{300, 360, 408, 423}, 8, 12, 0},
		{1000, 3, PhasePlaying, Window{900, 960, 1052, 1067}, 414, 23, 0},
	}

	for _, tt := range tests {
		v := r.Resolve(tt.now, Selection{})
		assert.Equal(t, tt.id, v.ID, "round at %d", tt.now)
		assert.Equal(t, tt.phase, v.Phase, "phase at %d", tt.now)
		assert.Equal(t, tt.window, v.Window, "window at %d", tt.now)
		require.NotNil(t, v.Outcome, "outcome at %d", tt.now)
		assert.Equal(t, tt.winner, v.Outcome.CardID, "winner at %d", tt.now)
		assert.Equal(t, tt.ball, v.Outcome.BallIndex, "ball at %d", tt.now)
		assert.Equal(t, tt.advanced, v.Advanced, "advanced at %d", tt.now)
		assert.Equal(t, 25, v.Participants.Len())
	}
}

func TestResolveWithSelection(t *testing.T) {
	r := MustNewResolver(fixtureParams())

	v := r.Resolve(10, NewSelection(0, []int{26}))
	require.NotNil(t, v.Outcome)
	assert.Equal(t, 26, v.Outcome.CardID)
	assert.Equal(t, 13, v.Outcome.BallIndex)
	assert.Equal(t, Window{0, 60, 112, 127}, v.Window)
	assert.Equal(t, 26, v.Participants.IDs()[0])

	// A selection made for another round is ignored.
	v = r.Resolve(10, NewSelection(1, []int{26}))
	assert.Equal(t, 410, v.Outcome.CardID)
	assert.False(t, v.Participants.Has(26))

	// A selection for the chained round applies once the search reaches it.
	v = r.Resolve(250, NewSelection(1, []int{26}))
	assert.Equal(t, int64(1), v.ID)
	assert.True(t, v.Participants.Has(26))
	assert.Equal(t, 8, v.Outcome.CardID)
}

func TestResolveIgnoresZeroSelection(t *testing.T) {
	r := MustNewResolver(fixtureParams())

	v := r.Resolve(10, Selection{CardIDs: []int{26}})
	assert.Equal(t, 410, v.Outcome.CardID)
	assert.False(t, v.Participants.Has(26))
}

func TestResolveCards(t *testing.T) {
	r := MustNewResolver(fixtureParams())

	t.Run("cards join the current round", func(t *testing.T) {
		v, cards := r.ResolveCards(10, []int{26})
		assert.Equal(t, int64(0), v.ID)
		assert.Equal(t, []int{26}, cards)
		assert.True(t, v.Participants.Has(26))
		assert.Equal(t, 26, v.Outcome.CardID)
	})

	t.Run("cards that end their round early are dropped", func(t *testing.T) {
		plain, _ := r.ResolveCards(170, nil)
		require.Equal(t, int64(0), plain.ID)

		v, cards := r.ResolveCards(170, []int{26})
		assert.Equal(t, int64(1), v.ID)
		assert.Empty(t, cards)
		assert.False(t, v.Participants.Has(26))
		assert.Equal(t, Window{127, 187, 235, 250}, v.Window)
		assert.Equal(t, PhaseSelection, v.Phase)
	})
}

func TestResolveDeterministic(t *testing.T) {
	a := MustNewResolver(DefaultParams())
	b := MustNewResolver(DefaultParams())

	now := DefaultParams().Origin + 86400*3 + 1234
	va := a.Resolve(now, Selection{})
	vb := b.Resolve(now, Selection{})
	assert.Equal(t, va.ID, vb.ID)
	assert.Equal(t, va.Window, vb.Window)
	assert.Equal(t, va.Draws, vb.Draws)
	assert.Equal(t, va.Participants.IDs(), vb.Participants.IDs())
	assert.Equal(t, va.Outcome, vb.Outcome)
}

func TestResolveWindowInvariants(t *testing.T) {
	p := DefaultParams()
	r := MustNewResolver(p)

	for now := p.Origin; now < p.Origin+6*3600; now += 97 {
		v := r.Resolve(now, Selection{})
		w := v.Window
		require.Less(t, w.Start, w.SelectionEnd)
		require.Less(t, w.SelectionEnd, w.PlayEnd)
		require.LessOrEqual(t, w.PlayEnd, w.WinnerEnd)
		require.Equal(t, int64(v.BallIndex())*p.CallInterval, w.PlayEnd-w.SelectionEnd)
		require.True(t, w.Contains(now), "window %+v does not contain %d", w, now)
		require.Equal(t, w.PhaseAt(now), v.Phase)
		require.GreaterOrEqual(t, v.Participants.Len(), p.MinCompetitors)
		require.GreaterOrEqual(t, v.ID, (now-p.Origin)/p.RoundPeriod)
	}
}

func TestResolveChainsWithoutGaps(t *testing.T) {
	r := MustNewResolver(fixtureParams())

	id, start := r.Candidate(5000)
	rd := r.Build(id, start, Selection{})
	for i := 0; i < 20; i++ {
		next := r.Next(rd, Selection{})
		assert.Equal(t, rd.ID+1, next.ID)
		assert.Equal(t, rd.Window.WinnerEnd, next.Window.Start)
		rd = next
	}
}

func TestResolveMonotonicAdvance(t *testing.T) {
	p := fixtureParams()
	r := MustNewResolver(p)

	for period := int64(0); period < 50; period++ {
		// Start of a period: the fresh candidate is the live round.
		at := period * p.RoundPeriod
		first := r.Resolve(at, Selection{})
		require.Equal(t, period, first.ID)

		later := r.Resolve(first.Window.WinnerEnd, Selection{})
		assert.Greater(t, later.ID, first.ID)

		muchLater := r.Resolve(first.Window.WinnerEnd+2*p.RoundPeriod, Selection{})
		assert.Greater(t, muchLater.ID, first.ID)
	}
}

func TestResolveBeforeOrigin(t *testing.T) {
	p := DefaultParams()
	r := MustNewResolver(p)

	v := r.Resolve(p.Origin-500, Selection{})
	assert.Equal(t, int64(0), v.ID)
	assert.Equal(t, p.Origin, v.Window.Start)
	assert.Equal(t, PhaseSelection, v.Phase)
}

func TestResolveWithoutParticipants(t *testing.T) {
	p := fixtureParams()
	p.MinCompetitors = 0
	r := MustNewResolver(p)

	v := r.Resolve(0, Selection{})
	assert.Nil(t, v.Outcome)
	assert.Equal(t, 0, v.Participants.Len())
	assert.Equal(t, 75, v.BallIndex())
	assert.Equal(t, Window{0, 60, 360, 375}, v.Window)

	pr := v.Progress(p.CallInterval)
	assert.Equal(t, -1, pr.BallIndex)

	v = r.Resolve(370, Selection{})
	assert.Equal(t, PhaseWinnerAnnounced, v.Phase)
	pr = v.Progress(p.CallInterval)
	assert.Len(t, pr.Called, 75)

	v = r.Resolve(10, NewSelection(0, []int{26}))
	require.NotNil(t, v.Outcome)
	assert.Equal(t, 26, v.Outcome.CardID)
}

func TestResolveRejectsNegativeTime(t *testing.T) {
	r := MustNewResolver(fixtureParams())
	defer func() {
		err, ok := recover().(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, precondition.ErrViolated)
	}()
	r.Resolve(-1, Selection{})
}

func TestProgress(t *testing.T) {
	p := fixtureParams()
	r := MustNewResolver(p)

	pr := r.Resolve(30, Selection{}).Progress(p.CallInterval)
	assert.Equal(t, -1, pr.BallIndex)
	assert.Empty(t, pr.Called)

	pr = r.Resolve(60, Selection{}).Progress(p.CallInterval)
	assert.Equal(t, 0, pr.BallIndex)
	assert.Equal(t, 16, pr.Current)
	assert.Equal(t, []int{16}, pr.Called)
	assert.Equal(t, int64(4), pr.NextCallIn)

	pr = r.Resolve(101, Selection{}).Progress(p.CallInterval)
	assert.Equal(t, 10, pr.BallIndex)
	assert.Equal(t, 14, pr.Current)
	assert.Len(t, pr.Called, 11)
	assert.Equal(t, []int{14, 39, 73, 65, 28, 5}, pr.Recent)
	assert.Equal(t, int64(3), pr.NextCallIn)

	pr = r.Resolve(170, Selection{}).Progress(p.CallInterval)
	assert.Equal(t, 26, pr.BallIndex)
	assert.Equal(t, 66, pr.Current)
	assert.Len(t, pr.Called, 27)
}
