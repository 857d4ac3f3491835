package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/syncbingo/internal/card"
	"github.com/lox/syncbingo/internal/round"
)

const cellWidth = 5

// RenderCard draws c as a grid under its column letters. Cells listed in
// highlight use WinningStyle, other marked cells use MarkedStyle.
func RenderCard(c card.Card, marked [card.Size]bool, highlight []int) string {
	var b strings.Builder
	b.WriteString(InfoStyle.Render(fmt.Sprintf("Card #%d", c.ID)))
	b.WriteString("\n")
	for _, letter := range card.Letters() {
		b.WriteString(ColumnStyle.Render(fmt.Sprintf("%*s", cellWidth, letter)))
	}

	for row := range card.Rows {
		b.WriteString("\n")
		for col := range card.Columns {
			i := card.Index(col, row)
			cell := fmt.Sprintf("%*d", cellWidth, c.Numbers[i])
			if i == card.FreeIndex {
				cell = fmt.Sprintf("%*s", cellWidth, "FREE")
			}
			switch {
			case slices.Contains(highlight, i):
				cell = WinningStyle.Render(cell)
			case marked[i]:
				cell = MarkedStyle.Render(cell)
			}
			b.WriteString(cell)
		}
	}
	return b.String()
}

func phaseLabel(p round.Phase) string {
	return strings.ToUpper(p.String())
}

func renderHeader(v round.View, pool int) string {
	parts := []string{
		fmt.Sprintf("Round #%d", v.ID),
		phaseLabel(v.Phase),
		round.FormatCountdown(v.Window.Remaining(v.Now)),
		fmt.Sprintf("Players %d", v.Participants.Len()),
		fmt.Sprintf("Pool $%d", pool),
	}
	return HeaderStyle.Render(strings.Join(parts, " | "))
}

func renderCalls(balls []int) string {
	calls := make([]string, len(balls))
	for i, n := range balls {
		calls[i] = card.Call(n)
	}
	return strings.Join(calls, " ")
}

func renderSelection(cards []int, maxCardID int) string {
	var b strings.Builder
	b.WriteString(PhaseStyle.Render("Pick your cards"))
	b.WriteString("\n")
	if len(cards) == 0 {
		b.WriteString(InfoStyle.Render(fmt.Sprintf("No cards selected. Enter an id between 1 and %d.", maxCardID)))
	} else {
		ids := make([]string, len(cards))
		for i, id := range cards {
			ids[i] = fmt.Sprintf("#%d", id)
		}
		b.WriteString(SuccessStyle.Render("Your cards: " + strings.Join(ids, ", ")))
		for _, id := range cards {
			b.WriteString("\n\n")
			b.WriteString(RenderCard(card.Generate(id), [card.Size]bool{}, nil))
		}
	}
	return b.String()
}

func renderPlaying(pr round.Progress, cards []int, tracking, autoMark bool, marks func(card.Card) [card.Size]bool) string {
	var b strings.Builder
	b.WriteString(BallStyle.Render("Current: " + card.Call(pr.Current)))
	b.WriteString(InfoStyle.Render(fmt.Sprintf("  next in %ds", pr.NextCallIn)))
	b.WriteString("\n")
	b.WriteString("Recent: " + renderCalls(pr.Recent))
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render(fmt.Sprintf("Called %d of %d", len(pr.Called), card.MaxNumber)))

	if len(cards) == 0 {
		b.WriteString("\n\n")
		b.WriteString(InfoStyle.Render("Watching without cards. Enter a card id to track it."))
		return b.String()
	}

	b.WriteString("\n\n")
	if tracking {
		b.WriteString(PhaseStyle.Render(fmt.Sprintf("Tracking card #%d", cards[0])))
		b.WriteString("  ")
	}
	if autoMark {
		b.WriteString(InfoStyle.Render("Auto-mark on"))
	} else {
		b.WriteString(WarningStyle.Render("Manual marking"))
	}

	rendered := make([]string, 0, len(cards))
	for _, id := range cards {
		c := card.Generate(id)
		rendered = append(rendered, RenderCard(c, marks(c), nil))
	}
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, spaced(rendered)...))
	return b.String()
}

func renderWinner(s round.Summary, ok bool) string {
	if !ok {
		return WarningStyle.Render("No winner this round: every ball was called.")
	}

	var b strings.Builder
	who := fmt.Sprintf("%s (%s)", s.PlayerName, s.PlayerID)
	if s.IsLocal {
		b.WriteString(SuccessStyle.Render("BINGO! You win with card #" + fmt.Sprint(s.CardID)))
	} else {
		b.WriteString(PhaseStyle.Render("BINGO! Winner: " + who))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s | %d line(s)\n", strings.Join(s.Lines, ", "), len(s.Lines))
	fmt.Fprintf(&b, "Game time %s | %d balls called\n\n", round.FormatCountdown(s.GameTime), s.CalledCount)
	b.WriteString(RenderCard(s.Card, s.Card.Marked(s.Called), s.Cells))
	return b.String()
}

func spaced(blocks []string) []string {
	out := make([]string, 0, 2*len(blocks))
	for i, block := range blocks {
		if i > 0 {
			out = append(out, "   ")
		}
		out = append(out, block)
	}
	return out
}
