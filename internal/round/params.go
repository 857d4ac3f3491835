package round

import (
	"math"

	"github.com/lox/syncbingo/internal/card"
	"github.com/lox/syncbingo/internal/precondition"
	"github.com/lox/syncbingo/internal/randutil"
)

// Params are the constants every cooperating client must share exactly.
type Params struct {
	// Origin is the Unix second at which round 0 starts.
	Origin            int64
	RoundPeriod       int64
	SelectionDuration int64
	CallInterval      int64
	WinnerDuration    int64

	MinCompetitors int
	MaxCardID      int

	RoundSeedMultiplier int64
	BotSeedMultiplier   int64
}

// DefaultParams returns the production constants.
func DefaultParams() Params {
	return Params{
		Origin:              1735689600, // 2025-01-01T00:00:00Z
		RoundPeriod:         300,
		SelectionDuration:   60,
		CallInterval:        4,
		WinnerDuration:      15,
		MinCompetitors:      25,
		MaxCardID:           500,
		RoundSeedMultiplier: 987654,
		BotSeedMultiplier:   12345,
	}
}

// Validate checks the constants for values that would break resolution.
func (p Params) Validate() error {
	const op = "round.Params.Validate"
	switch {
	case p.Origin < 0:
		return precondition.Errorf(op, "origin must be non-negative, got %d", p.Origin)
	case p.RoundPeriod <= 0:
		return precondition.Errorf(op, "round period must be positive, got %d", p.RoundPeriod)
	case p.SelectionDuration <= 0:
		return precondition.Errorf(op, "selection duration must be positive, got %d", p.SelectionDuration)
	case p.CallInterval <= 0:
		return precondition.Errorf(op, "call interval must be positive, got %d", p.CallInterval)
	case p.WinnerDuration <= 0:
		return precondition.Errorf(op, "winner duration must be positive, got %d", p.WinnerDuration)
	case p.MaxCardID < 1 || p.MaxCardID > randutil.Modulus:
		return precondition.Errorf(op, "max card id must be in [1, %d], got %d", randutil.Modulus, p.MaxCardID)
	case p.MinCompetitors < 0 || p.MinCompetitors > p.MaxCardID:
		return precondition.Errorf(op, "min competitors must be in [0, %d], got %d", p.MaxCardID, p.MinCompetitors)
	case p.RoundSeedMultiplier < 0 || p.BotSeedMultiplier < 0:
		return precondition.Errorf(op, "seed multipliers must be non-negative")
	}
	return nil
}

// ValidateCard checks a caller-supplied card id against MaxCardID.
func (p Params) ValidateCard(id int) error {
	return card.ValidateID(id, p.MaxCardID)
}

// ValidateTime checks a caller-supplied Unix time.
func ValidateTime(now int64) error {
	if now < 0 {
		return precondition.Errorf("round.ValidateTime", "time must be non-negative, got %d", now)
	}
	return nil
}

// roundIDHeadroom leaves room for the rounds chained after a time's candidate.
const roundIDHeadroom = 1 << 20

// MaxRoundID is the largest round id whose seeds fit in an int64.
func (p Params) MaxRoundID() int64 {
	return math.MaxInt64 / max(p.RoundSeedMultiplier, p.BotSeedMultiplier, 1)
}

// ValidateRoundID checks a caller-supplied round id.
func (p Params) ValidateRoundID(id int64) error {
	if id < 0 || id > p.MaxRoundID() {
		return precondition.Errorf("round.ValidateRoundID", "round id must be in [0, %d], got %d", p.MaxRoundID(), id)
	}
	return nil
}

// ValidateAt checks a caller-supplied Unix time, rejecting times so far ahead
// that their round seeds would overflow.
func (p Params) ValidateAt(now int64) error {
	if err := ValidateTime(now); err != nil {
		return err
	}
	if max(0, now-p.Origin)/p.RoundPeriod > p.MaxRoundID()-roundIDHeadroom {
		return precondition.Errorf("round.ValidateAt", "time %d is too far past the origin", now)
	}
	return nil
}
