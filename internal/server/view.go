package server

import (
	"github.com/lox/syncbingo/internal/card"
	"github.com/lox/syncbingo/internal/config"
	"github.com/lox/syncbingo/internal/round"
)

// RoundViewData is the JSON form of a resolved round as seen at Now.
// Winner details stay hidden until the winner phase.
type RoundViewData struct {
	RoundID      int64        `json:"roundId"`
	Now          int64        `json:"now"`
	Phase        round.Phase  `json:"phase"`
	Window       round.Window `json:"window"`
	Remaining    int64        `json:"remaining"`
	Countdown    string       `json:"countdown"`
	Advanced     int          `json:"advanced"`
	Participants int          `json:"participants"`
	PrizePool    int          `json:"prizePool"`
	Selection    []int        `json:"selection"`
	Current      int          `json:"current,omitempty"`
	Called       []int        `json:"called"`
	Recent       []int        `json:"recent"`
	NextCallIn   int64        `json:"nextCallIn,omitempty"`
	Winner       *WinnerData  `json:"winner,omitempty"`
	Tracked      *TrackedCard `json:"tracked,omitempty"`
}

// TrackedCard is a card a spectator follows, marked with the called numbers.
type TrackedCard struct {
	CardID  int             `json:"cardId"`
	Numbers [card.Size]int  `json:"numbers"`
	Marked  [card.Size]bool `json:"marked"`
}

type WinnerData struct {
	CardID      int            `json:"cardId"`
	PlayerName  string         `json:"playerName"`
	PlayerID    string         `json:"playerId"`
	IsLocal     bool           `json:"isLocal"`
	Lines       []string       `json:"lines"`
	Cells       []int          `json:"cells"`
	Numbers     [card.Size]int `json:"numbers"`
	GameTime    int64          `json:"gameTime"`
	CalledCount int            `json:"calledCount"`
}

// Viewer identifies whose perspective a view is rendered from.
type Viewer struct {
	Name  string
	ID    string
	Cards []int
	// Tracked is a card followed without playing it. It is ignored while the
	// viewer holds cards.
	Tracked int
}

func (s *Server) newRoundViewData(v round.View, who Viewer) RoundViewData {
	return NewRoundViewData(v, s.resolver.Params(), s.cfg.Server, who)
}

// NewRoundViewData converts v for transport. The prize pool uses the bet and
// payout from settings.
func NewRoundViewData(v round.View, p round.Params, settings config.ServerSettings, who Viewer) RoundViewData {
	pr := v.Progress(p.CallInterval)

	data := RoundViewData{
		RoundID:      v.ID,
		Now:          v.Now,
		Phase:        v.Phase,
		Window:       v.Window,
		Remaining:    v.Window.Remaining(v.Now),
		Countdown:    round.FormatCountdown(v.Window.Remaining(v.Now)),
		Advanced:     v.Advanced,
		Participants: v.Participants.Len(),
		PrizePool:    round.PrizePool(v.Participants.Len(), settings.BetAmount, settings.PayoutPercent),
		Selection:    append([]int{}, who.Cards...),
		Current:      pr.Current,
		Called:       append([]int{}, pr.Called...),
		Recent:       append([]int{}, pr.Recent...),
		NextCallIn:   pr.NextCallIn,
	}
	if who.Tracked > 0 && len(who.Cards) == 0 {
		c := card.Generate(who.Tracked)
		data.Tracked = &TrackedCard{CardID: c.ID, Numbers: c.Numbers, Marked: c.Marked(pr.Called)}
	}

	if v.Phase != round.PhaseWinnerAnnounced {
		return data
	}
	if sum, ok := round.Summarize(v, who.Cards, who.Name, who.ID); ok {
		data.Winner = &WinnerData{
			CardID:      sum.CardID,
			PlayerName:  sum.PlayerName,
			PlayerID:    sum.PlayerID,
			IsLocal:     sum.IsLocal,
			Lines:       sum.Lines,
			Cells:       sum.Cells,
			Numbers:     sum.Card.Numbers,
			GameTime:    sum.GameTime,
			CalledCount: sum.CalledCount,
		}
	}
	return data
}
