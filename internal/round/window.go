package round

import "fmt"

// Phase is the stage of a round at a point in time.
type Phase int

const (
	PhaseSelection Phase = iota
	PhasePlaying
	PhaseWinnerAnnounced
)

func (p Phase) String() string {
	switch p {
	case PhaseSelection:
		return "selection"
	case PhasePlaying:
		return "playing"
	case PhaseWinnerAnnounced:
		return "winner"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Window holds the phase boundaries of a round in Unix seconds. Each phase is
// half-open: selection is [Start, SelectionEnd) and so on.
type Window struct {
	Start        int64 `json:"start"`
	SelectionEnd int64 `json:"selectionEnd"`
	PlayEnd      int64 `json:"playEnd"`
	WinnerEnd    int64 `json:"winnerEnd"`
}

// NewWindow derives a window from its start and the number of call intervals
// before the winning ball.
func NewWindow(p Params, start int64, ballIndex int) Window {
	w := Window{Start: start}
	w.SelectionEnd = start + p.SelectionDuration
	w.PlayEnd = w.SelectionEnd + int64(ballIndex)*p.CallInterval
	w.WinnerEnd = w.PlayEnd + p.WinnerDuration
	return w
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t int64) bool {
	return t >= w.Start && t < w.WinnerEnd
}

// PhaseAt returns the phase at t. Times before Start report selection and
// times after WinnerEnd report the announcement.
func (w Window) PhaseAt(t int64) Phase {
	switch {
	case t >= w.PlayEnd:
		return PhaseWinnerAnnounced
	case t >= w.SelectionEnd:
		return PhasePlaying
	default:
		return PhaseSelection
	}
}

// Remaining returns the seconds left in the phase that contains t.
func (w Window) Remaining(t int64) int64 {
	var end int64
	switch w.PhaseAt(t) {
	case PhaseSelection:
		end = w.SelectionEnd
	case PhasePlaying:
		end = w.PlayEnd
	default:
		end = w.WinnerEnd
	}
	return max(0, end-t)
}

// Duration is the total length of the window.
func (w Window) Duration() int64 {
	return w.WinnerEnd - w.Start
}
