package round

import (
	"fmt"
	"slices"

	"github.com/lox/syncbingo/internal/card"
)

// PrizePool returns the amount paid out for a round: every participant's bet,
// less the house share.
func PrizePool(participants, bet, payoutPercent int) int {
	return participants * bet * payoutPercent / 100
}

// FormatCountdown renders seconds as mm:ss, clamping negatives to zero.
func FormatCountdown(seconds int64) string {
	seconds = max(0, seconds)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Summary is what the winner announcement shows.
type Summary struct {
	PlayerName string
	PlayerID   string
	IsLocal    bool
	CardID     int
	Card       card.Card
	Lines      []string
	Cells      []int
	// GameTime is the length of the playing phase in seconds.
	GameTime    int64
	CalledCount int
	Called      []int
}

// Summarize builds the winner announcement for v. The winning card is shown
// under the local player's name when it is one of localCards. It reports false
// when the round has no winner.
func Summarize(v View, localCards []int, playerName, playerID string) (Summary, bool) {
	out := v.Outcome
	if out == nil {
		return Summary{}, false
	}

	s := Summary{
		PlayerName:  fmt.Sprintf("Participant-%d", out.CardID),
		PlayerID:    fmt.Sprintf("UID-%d", out.CardID),
		CardID:      out.CardID,
		Card:        card.Generate(out.CardID),
		Lines:       out.Labels(),
		Cells:       out.Cells,
		GameTime:    v.Window.PlayEnd - v.Window.SelectionEnd,
		CalledCount: out.BallIndex + 1,
		Called:      out.Called(),
	}
	if slices.Contains(localCards, out.CardID) {
		s.IsLocal = true
		s.PlayerName = playerName
		s.PlayerID = playerID
	}
	return s, true
}
