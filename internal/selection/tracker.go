// Package selection keeps a player's card choice for the current round.
//
// A player may hold up to MaxCards distinct cards, may only change them during
// the selection phase, and loses them as soon as the resolved round id changes.
// Tracker is not safe for concurrent use.
package selection

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"slices"

	"github.com/lox/syncbingo/internal/card"
	"github.com/lox/syncbingo/internal/round"
)

// MaxCards is the number of cards a player may hold in one round.
const MaxCards = round.MaxLocalCards

var (
	ErrSelectionClosed = errors.New("selection is closed for this round")
	ErrSelectionFull   = fmt.Errorf("at most %d cards per round", MaxCards)
)

// Tracker holds the cards chosen for one round.
type Tracker struct {
	maxCardID int
	roundID   int64
	known     bool
	phase     round.Phase
	cards     []int
}

// NewTracker returns an empty tracker for card ids in [1, maxCardID].
func NewTracker(maxCardID int) *Tracker {
	return &Tracker{maxCardID: maxCardID}
}

// Observe records the latest resolved view. It clears the selection and
// reports true when the round id differs from the previously observed one.
func (t *Tracker) Observe(v round.View) bool {
	t.phase = v.Phase
	if t.known && t.roundID == v.ID {
		return false
	}
	rolled := t.known
	t.known = true
	t.roundID = v.ID
	t.cards = nil
	return rolled
}

// RoundID returns the last observed round id.
func (t *Tracker) RoundID() int64 {
	return t.roundID
}

// Phase returns the phase of the last observed round.
func (t *Tracker) Phase() round.Phase {
	return t.phase
}

// Open reports whether cards can currently be changed.
func (t *Tracker) Open() bool {
	return t.known && t.phase == round.PhaseSelection
}

// Toggle adds id to the selection, or removes it if already selected.
func (t *Tracker) Toggle(id int) error {
	if err := card.ValidateID(id, t.maxCardID); err != nil {
		return err
	}
	if !t.Open() {
		return ErrSelectionClosed
	}
	if i := slices.Index(t.cards, id); i >= 0 {
		t.cards = slices.Delete(t.cards, i, i+1)
		return nil
	}
	if len(t.cards) >= MaxCards {
		return ErrSelectionFull
	}
	t.cards = append(t.cards, id)
	return nil
}

// Clear drops every selected card.
func (t *Tracker) Clear() error {
	if !t.Open() {
		return ErrSelectionClosed
	}
	t.cards = nil
	return nil
}

// RandomAssign replaces the selection with MaxCards distinct random cards.
func (t *Tracker) RandomAssign(rng *rand.Rand) error {
	if !t.Open() {
		return ErrSelectionClosed
	}
	cards := make([]int, 0, MaxCards)
	for len(cards) < min(MaxCards, t.maxCardID) {
		id := rng.IntN(t.maxCardID) + 1
		if !slices.Contains(cards, id) {
			cards = append(cards, id)
		}
	}
	t.cards = cards
	return nil
}

// Cards returns a copy of the selected cards in selection order.
func (t *Tracker) Cards() []int {
	return slices.Clone(t.cards)
}

// Selection returns the selection in the form the resolver consumes.
func (t *Tracker) Selection() round.Selection {
	return round.Selection{RoundID: t.roundID, CardIDs: t.Cards(), Valid: t.known}
}
