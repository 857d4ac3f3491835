package round

// Progress describes how far the calling has got at the view's time.
type Progress struct {
	// BallIndex is the index of the most recent ball, or -1 before the first call.
	BallIndex int
	Current   int
	Called    []int
	// Recent holds up to six most recent balls, newest first.
	Recent []int
	// NextCallIn is the number of seconds until the next ball while playing.
	NextCallIn int64
}

const recentBalls = 6

// Progress returns the calling progress at v.Now. Balls are called one per
// CallInterval starting at SelectionEnd, and calling stops at the winning ball.
func (v View) Progress(callInterval int64) Progress {
	pr := Progress{BallIndex: -1}
	switch v.Phase {
	case PhaseSelection:
		return pr
	case PhasePlaying:
		elapsed := v.Now - v.Window.SelectionEnd
		pr.BallIndex = min(int(elapsed/callInterval), v.BallIndex())
		pr.NextCallIn = callInterval - elapsed%callInterval
	default:
		pr.BallIndex = v.BallIndex()
	}

	pr.BallIndex = min(pr.BallIndex, len(v.Draws)-1)
	pr.Called = v.Draws[:pr.BallIndex+1]
	pr.Current = pr.Called[len(pr.Called)-1]
	for i := len(pr.Called) - 1; i >= 0 && len(pr.Recent) < recentBalls; i-- {
		pr.Recent = append(pr.Recent, pr.Called[i])
	}
	return pr
}
