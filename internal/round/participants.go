package round

import (
	"github.com/lox/syncbingo/internal/precondition"
	"github.com/lox/syncbingo/internal/randutil"
)

// ParticipantSet is an insertion-ordered set of card ids. The order decides
// ties in evaluation, so it is part of the cross-client contract.
type ParticipantSet struct {
	ids  []int
	seen map[int]struct{}
}

// NewParticipantSet returns an empty set.
func NewParticipantSet() *ParticipantSet {
	return &ParticipantSet{seen: make(map[int]struct{})}
}

// Add inserts id if it is not present and reports whether it was added.
func (s *ParticipantSet) Add(id int) bool {
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

// Has reports whether id is in the set.
func (s *ParticipantSet) Has(id int) bool {
	_, ok := s.seen[id]
	return ok
}

// Len returns the number of ids.
func (s *ParticipantSet) Len() int {
	return len(s.ids)
}

// IDs returns the ids in insertion order. The slice must not be modified.
func (s *ParticipantSet) IDs() []int {
	return s.ids
}

// MaxLocalCards is the number of cards one player may bring into a round.
const MaxLocalCards = 2

// BuildParticipants returns the local selections followed by synthetic
// competitors drawn from a generator seeded at roundID*BotSeedMultiplier until
// the set holds MinCompetitors ids. Duplicate draws are skipped silently.
func BuildParticipants(p Params, roundID int64, local []int) *ParticipantSet {
	const op = "round.BuildParticipants"
	precondition.Check(roundID >= 0, op, "round id must be non-negative, got %d", roundID)
	precondition.Check(p.MinCompetitors <= p.MaxCardID, op, "min competitors %d exceeds max card id %d", p.MinCompetitors, p.MaxCardID)

	precondition.Check(len(local) <= MaxLocalCards, op, "at most %d local cards, got %d", MaxLocalCards, len(local))

	set := NewParticipantSet()
	for _, id := range local {
		precondition.Check(id >= 1 && id <= p.MaxCardID, op, "selected card %d outside [1, %d]", id, p.MaxCardID)
		set.Add(id)
	}

	rng := randutil.NewLCG(roundID * p.BotSeedMultiplier)
	for set.Len() < p.MinCompetitors {
		set.Add(rng.Intn(p.MaxCardID) + 1)
	}
	return set
}
