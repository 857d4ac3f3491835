package round

import (
	"github.com/lox/syncbingo/internal/evaluator"
	"github.com/lox/syncbingo/internal/precondition"
)

// Selection is the caller's own card choice and the round it was made for.
// The cards only join the round whose id matches RoundID, and only when Valid
// is set. The zero value applies to no round.
type Selection struct {
	RoundID int64
	CardIDs []int
	Valid   bool
}

// NewSelection returns a valid selection of cards for round id.
func NewSelection(id int64, cards []int) Selection {
	return Selection{RoundID: id, CardIDs: cards, Valid: true}
}

func (s Selection) appliesTo(id int64) bool {
	return s.Valid && len(s.CardIDs) > 0 && s.RoundID == id
}

// Round is one fully derived candidate round.
type Round struct {
	ID           int64
	Window       Window
	Draws        DrawSequence
	Participants *ParticipantSet
	// Outcome is nil when nobody can win: no participants, or no pattern
	// completes within the draw.
	Outcome *evaluator.Outcome
}

// BallIndex returns the index of the ball that ends the playing phase: the
// winning ball, or the whole draw when there is no winner.
func (r Round) BallIndex() int {
	if r.Outcome == nil {
		return len(r.Draws)
	}
	return r.Outcome.BallIndex
}

// View is a resolved round at a specific time.
type View struct {
	Round
	Now   int64
	Phase Phase
	// Advanced counts the candidate rounds skipped before this one was found.
	Advanced int
}

// Resolver derives rounds from Params. It holds no mutable state and is safe
// for concurrent use.
type Resolver struct {
	params Params
}

// NewResolver validates p and returns a resolver for it.
func NewResolver(p Params) (*Resolver, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Resolver{params: p}, nil
}

// MustNewResolver is like NewResolver but panics on invalid params.
func MustNewResolver(p Params) *Resolver {
	r, err := NewResolver(p)
	if err != nil {
		panic(err)
	}
	return r
}

// Params returns the constants the resolver was built with.
func (r *Resolver) Params() Params {
	return r.params
}

// Candidate returns the first round id and start time considered for now.
func (r *Resolver) Candidate(now int64) (int64, int64) {
	p := r.params
	elapsed := max(0, now-p.Origin)
	id := elapsed / p.RoundPeriod
	start := max(p.Origin, p.Origin+id*p.RoundPeriod)
	return id, start
}

// Build derives the round with the given id starting at start.
func (r *Resolver) Build(id, start int64, sel Selection) Round {
	p := r.params
	var local []int
	if sel.appliesTo(id) {
		local = sel.CardIDs
	}

	rd := Round{
		ID:           id,
		Draws:        BuildDrawSequence(id, p.RoundSeedMultiplier),
		Participants: BuildParticipants(p, id, local),
	}
	if out, ok := evaluator.Evaluate(rd.Draws.Slice(), rd.Participants.IDs()); ok {
		rd.Outcome = &out
	}
	rd.Window = NewWindow(p, start, rd.BallIndex())
	return rd
}

// Next builds the round that follows prev without a gap.
func (r *Resolver) Next(prev Round, sel Selection) Round {
	return r.Build(prev.ID+1, prev.Window.WinnerEnd, sel)
}

// Resolve returns the round whose window contains now, with its phase.
func (r *Resolver) Resolve(now int64, sel Selection) View {
	precondition.Check(now >= 0, "round.Resolve", "time must be non-negative, got %d", now)

	id, start := r.Candidate(now)
	rd := r.Build(id, start, sel)
	advanced := 0

	// Each pass moves start forward by at least SelectionDuration+WinnerDuration.
	for now >= rd.Window.WinnerEnd {
		rd = r.Next(rd, sel)
		advanced++
	}

	return View{
		Round:    rd,
		Now:      now,
		Phase:    rd.Window.PhaseAt(now),
		Advanced: advanced,
	}
}

// ResolveCards resolves now with cards joining the round that now resolves to
// without them. When the cards end that round early enough that now falls in
// a later round, the selection is stale there and no cards are returned.
func (r *Resolver) ResolveCards(now int64, cards []int) (View, []int) {
	v := r.Resolve(now, Selection{})
	if len(cards) == 0 {
		return v, nil
	}
	played := r.Resolve(now, NewSelection(v.ID, cards))
	if played.ID != v.ID {
		return played, nil
	}
	return played, cards
}
