// Package history replays the rounds an observer would have seen over a time
// range and exports them.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/lox/syncbingo/internal/fileutil"
	"github.com/lox/syncbingo/internal/round"
	"github.com/lox/syncbingo/internal/statistics"
)

// DefaultLimit bounds how many rounds a single export may contain.
const DefaultLimit = 10000

var ErrEmptyRange = errors.New("empty time range")

// Entry is one round as it was shown to observers.
type Entry struct {
	RoundID      int64        `json:"roundId"`
	StartedAt    time.Time    `json:"startedAt"`
	Window       round.Window `json:"window"`
	Participants int          `json:"participants"`
	WinnerCardID int          `json:"winnerCardId,omitempty"`
	BallIndex    int          `json:"ballIndex"`
	Patterns     []string     `json:"patterns,omitempty"`
	Cells        []int        `json:"cells,omitempty"`
	Called       []int        `json:"called"`
	// ShownUntil is when observers stopped seeing this round. It is earlier
	// than Window.WinnerEnd when a new round period began first.
	ShownUntil int64 `json:"shownUntil"`
	Completed  bool  `json:"completed"`
}

// Collect returns the rounds observers saw in [from, to), in order. Resolution
// only changes at a round's WinnerEnd or at a round-period boundary, so those
// are the only instants that need resolving.
func Collect(r *round.Resolver, from, to int64, limit int) ([]Entry, error) {
	for _, t := range []int64{from, to} {
		if err := r.Params().ValidateAt(t); err != nil {
			return nil, err
		}
	}
	if to <= from {
		return nil, fmt.Errorf("%w: from %d, to %d", ErrEmptyRange, from, to)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	p := r.Params()
	var entries []Entry
	for t := from; t < to; {
		if len(entries) == limit {
			return entries, fmt.Errorf("history exceeds %d rounds, narrow the range", limit)
		}

		v := r.Resolve(t, round.Selection{})
		shownUntil := min(v.Window.WinnerEnd, nextBoundary(p, t))

		if n := len(entries); n > 0 && entries[n-1].RoundID == v.ID && entries[n-1].Window == v.Window {
			// Same round on both sides of a period boundary.
			entries[n-1].ShownUntil = shownUntil
			entries[n-1].Completed = shownUntil >= v.Window.WinnerEnd
		} else {
			entries = append(entries, newEntry(v, shownUntil))
		}
		t = shownUntil
	}
	return entries, nil
}

func nextBoundary(p round.Params, t int64) int64 {
	if t < p.Origin {
		return p.Origin
	}
	return p.Origin + ((t-p.Origin)/p.RoundPeriod+1)*p.RoundPeriod
}

func newEntry(v round.View, shownUntil int64) Entry {
	e := Entry{
		RoundID:      v.ID,
		StartedAt:    time.Unix(v.Window.Start, 0).UTC(),
		Window:       v.Window,
		Participants: v.Participants.Len(),
		BallIndex:    v.BallIndex(),
		ShownUntil:   shownUntil,
		Completed:    shownUntil >= v.Window.WinnerEnd,
	}
	called := min(v.BallIndex()+1, len(v.Draws))
	e.Called = append([]int(nil), v.Draws[:called]...)
	if out := v.Outcome; out != nil {
		e.WinnerCardID = out.CardID
		e.Patterns = out.Labels()
		e.Cells = out.Cells
	}
	return e
}

// Write stores entries as indented JSON at path, replacing it atomically.
func Write(path string, entries []Entry) error {
	if err := fileutil.WriteJSONAtomic(path, entries, 0o644); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

// Read loads entries previously written by Write.
func Read(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode history %s: %w", path, err)
	}
	return entries, nil
}

// Stats aggregates entries.
func Stats(entries []Entry) *statistics.Statistics {
	s := statistics.New()
	for _, e := range entries {
		s.Add(statistics.RoundResult{
			RoundID:      e.RoundID,
			Balls:        len(e.Called),
			WinnerCardID: e.WinnerCardID,
			Patterns:     e.Patterns,
			Participants: e.Participants,
			Interrupted:  !e.Completed,
		})
	}
	return s
}
