// Package round resolves which bingo round is running at a given moment.
//
// Everything here is a pure function of the wall-clock time, the frozen Params
// and the caller's own card selection. Independent processes that agree on the
// time and on Params derive the same round id, phase, draw order, competitor
// pool and winner without talking to each other.
//
// # Basic Usage
//
//	r, err := round.NewResolver(round.DefaultParams())
//	if err != nil {
//	    return err
//	}
//	view := r.Resolve(time.Now().Unix(), round.Selection{})
//	fmt.Println(view.RoundID, view.Phase, view.Window.SelectionEnd)
//
// # Resolution
//
// The first candidate round is the one whose period contains now:
// floor((now-origin)/RoundPeriod), starting at the start of that period. Its
// window is derived from its own outcome: a fixed selection phase, one call
// interval per ball up to the winning ball, then a fixed announcement. If now is
// past the announcement the next round starts exactly where the previous one
// ended and the search continues. Every window is at least
// SelectionDuration+WinnerDuration long, so the loop always terminates.
//
// Callers own the "last seen round" state and drop their card selection when
// the resolved round id changes; see the selection package.
package round
