// Package tui is a terminal watcher for the current round. It resolves the
// round locally every second, so it needs no server.
package tui

import (
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/syncbingo/internal/card"
	"github.com/lox/syncbingo/internal/config"
	"github.com/lox/syncbingo/internal/randutil"
	"github.com/lox/syncbingo/internal/round"
	"github.com/lox/syncbingo/internal/selection"
)

const (
	pollInterval = time.Second
	maxEvents    = 200
	logHeight    = 5
)

// Options configures a Model.
type Options struct {
	Resolver      *round.Resolver
	Clock         quartz.Clock
	Logger        *log.Logger
	Player        config.PlayerSettings
	BetAmount     int
	PayoutPercent int
	Rand          *rand.Rand
}

// tickMsg is delivered once per poll interval.
type tickMsg time.Time

// Model is the Bubble Tea model for the watcher.
type Model struct {
	resolver *round.Resolver
	clock    quartz.Clock
	logger   *log.Logger
	player   config.PlayerSettings
	bet      int
	payout   int
	rng      *rand.Rand

	tracker *selection.Tracker
	view    round.View
	phase   round.Phase
	primed  bool

	// A spectator without cards may follow one card while balls are called.
	tracked  int
	autoMark bool
	manual   map[int]bool

	input   textinput.Model
	eventVP viewport.Model
	events  []string

	width    int
	height   int
	quitting bool
}

// NewModel builds the watcher and resolves the current round.
func NewModel(opts Options) *Model {
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Rand == nil {
		opts.Rand = randutil.New(time.Now().UnixNano())
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	ti := textinput.New()
	ti.Placeholder = "card id"
	ti.Prompt = "> "
	ti.CharLimit = 7
	ti.Width = 20
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.Focus()

	m := &Model{
		resolver: opts.Resolver,
		clock:    opts.Clock,
		logger:   opts.Logger.WithPrefix("tui"),
		player:   opts.Player,
		bet:      opts.BetAmount,
		payout:   opts.PayoutPercent,
		rng:      opts.Rand,
		tracker:  selection.NewTracker(opts.Resolver.Params().MaxCardID),
		autoMark: true,
		manual:   make(map[int]bool),
		input:    ti,
		eventVP:  viewport.New(10, logHeight),
	}
	m.Refresh()
	return m
}

// Init starts the poll loop.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitTick())
}

func (m *Model) waitTick() tea.Cmd {
	return func() tea.Msg {
		t := m.clock.NewTimer(pollInterval, "tui")
		return tickMsg(<-t.C)
	}
}

// Refresh resolves the round at the clock's current time.
func (m *Model) Refresh() {
	now := m.clock.Now().Unix()
	v := m.resolver.Resolve(now, m.tracker.Selection())

	if m.tracker.Observe(v) {
		m.tracked = 0
		clear(m.manual)
		m.addEvent(fmt.Sprintf("Round #%d opened, selection cleared", v.ID))
	} else if !m.primed {
		m.addEvent(fmt.Sprintf("Watching round #%d", v.ID))
	}

	if m.primed && v.Phase != m.phase {
		switch v.Phase {
		case round.PhasePlaying:
			m.addEvent(fmt.Sprintf("Round #%d calling started with %d players", v.ID, v.Participants.Len()))
		case round.PhaseWinnerAnnounced:
			if s, ok := m.summary(v); ok {
				m.addEvent(fmt.Sprintf("Round #%d won by %s with card #%d", v.ID, s.PlayerName, s.CardID))
			} else {
				m.addEvent(fmt.Sprintf("Round #%d ended without a winner", v.ID))
			}
		}
	}

	m.view, m.phase, m.primed = v, v.Phase, true
	m.logger.Debug("Resolved round", "round", v.ID, "phase", v.Phase, "advanced", v.Advanced)
}

func (m *Model) summary(v round.View) (round.Summary, bool) {
	return round.Summarize(v, m.tracker.Cards(), m.player.Name, m.player.ID)
}

// RoundView returns the last resolved round.
func (m *Model) RoundView() round.View {
	return m.view
}

// Cards returns the current selection.
func (m *Model) Cards() []int {
	return m.tracker.Cards()
}

// Tracked returns the card followed without playing it, or 0.
func (m *Model) Tracked() int {
	return m.tracked
}

// AutoMark reports whether called numbers are marked automatically.
func (m *Model) AutoMark() bool {
	return m.autoMark
}

// shownCards returns the cards drawn during play: the selection, or the
// tracked card when there is no selection.
func (m *Model) shownCards() []int {
	if cards := m.tracker.Cards(); len(cards) > 0 {
		return cards
	}
	if m.tracked > 0 {
		return []int{m.tracked}
	}
	return nil
}

// marks returns the covered cells of c. With auto-mark off only numbers the
// player marked by hand are covered.
func (m *Model) marks(c card.Card, called []int) [card.Size]bool {
	if m.autoMark {
		return c.Marked(called)
	}
	nums := make([]int, 0, len(m.manual))
	for n := range m.manual {
		nums = append(nums, n)
	}
	return c.Marked(nums)
}

// Events returns the event log, oldest first.
func (m *Model) Events() []string {
	return append([]string(nil), m.events...)
}

func (m *Model) addEvent(e string) {
	m.events = append(m.events, e)
	if len(m.events) > maxEvents {
		m.events = m.events[len(m.events)-maxEvents:]
	}
	m.eventVP.SetContent(strings.Join(m.events, "\n"))
	m.eventVP.GotoBottom()
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tickMsg:
		m.Refresh()
		return m, m.waitTick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.eventVP.Width = max(1, msg.Width-2)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			value := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if m.view.Phase == round.PhasePlaying {
				m.submitPlaying(value)
			} else {
				m.submit(value)
			}
			return m, nil
		case "ctrl+r":
			m.apply("Random cards assigned", m.tracker.RandomAssign(m.rng))
			return m, nil
		case "ctrl+x":
			if m.view.Phase == round.PhasePlaying && m.tracked > 0 {
				m.addEvent(fmt.Sprintf("Stopped tracking card #%d", m.tracked))
				m.tracked = 0
				clear(m.manual)
				return m, nil
			}
			m.apply("Selection cleared", m.tracker.Clear())
			return m, nil
		case "ctrl+a":
			if m.view.Phase == round.PhasePlaying {
				m.autoMark = !m.autoMark
				if m.autoMark {
					m.addEvent("Auto-mark on")
				} else {
					m.addEvent("Manual marking: enter a called number to mark it")
				}
			}
			return m, nil
		case "pgup":
			m.eventVP.HalfPageUp()
		case "pgdown":
			m.eventVP.HalfPageDown()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) submit(value string) {
	if value == "" {
		return
	}
	id, err := strconv.Atoi(value)
	if err != nil {
		m.addEvent(ErrorStyle.Render(fmt.Sprintf("%q is not a card id", value)))
		return
	}
	m.apply(fmt.Sprintf("Toggled card #%d", id), m.tracker.Toggle(id))
}

// submitPlaying handles input while balls are called. With manual marking the
// value is a ball number to mark; otherwise a spectator picks a card to track.
func (m *Model) submitPlaying(value string) {
	if value == "" {
		return
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		m.addEvent(ErrorStyle.Render(fmt.Sprintf("%q is not a number", value)))
		return
	}

	shown := m.shownCards()
	switch {
	case !m.autoMark && len(shown) > 0:
		m.toggleMark(n, shown)
	case len(m.tracker.Cards()) > 0:
		m.addEvent(WarningStyle.Render("Selection is closed until the next round"))
	default:
		if err := m.resolver.Params().ValidateCard(n); err != nil {
			m.addEvent(ErrorStyle.Render(err.Error()))
			return
		}
		m.tracked = n
		clear(m.manual)
		m.addEvent(fmt.Sprintf("Tracking card #%d", n))
	}
}

func (m *Model) toggleMark(n int, shown []int) {
	called := m.view.Progress(m.resolver.Params().CallInterval).Called
	if !slices.Contains(called, n) {
		m.addEvent(WarningStyle.Render(fmt.Sprintf("%d has not been called", n)))
		return
	}
	if !slices.ContainsFunc(shown, func(id int) bool { return card.Generate(id).Contains(n) }) {
		m.addEvent(WarningStyle.Render(fmt.Sprintf("%d is not on your cards", n)))
		return
	}
	if m.manual[n] {
		delete(m.manual, n)
		m.addEvent("Unmarked " + card.Call(n))
	} else {
		m.manual[n] = true
		m.addEvent("Marked " + card.Call(n))
	}
}

// apply logs the outcome of a selection change and re-resolves on success so
// the new cards show immediately.
func (m *Model) apply(okMsg string, err error) {
	switch {
	case errors.Is(err, selection.ErrSelectionClosed):
		m.addEvent(WarningStyle.Render("Selection is closed until the next round"))
	case err != nil:
		m.addEvent(ErrorStyle.Render(err.Error()))
	default:
		m.addEvent(okMsg)
		m.Refresh()
	}
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	v := m.view
	pool := round.PrizePool(v.Participants.Len(), m.bet, m.payout)

	var body string
	switch v.Phase {
	case round.PhaseSelection:
		body = renderSelection(m.tracker.Cards(), m.resolver.Params().MaxCardID)
	case round.PhasePlaying:
		pr := v.Progress(m.resolver.Params().CallInterval)
		body = renderPlaying(pr, m.shownCards(), m.tracked > 0 && len(m.tracker.Cards()) == 0, m.autoMark,
			func(c card.Card) [card.Size]bool { return m.marks(c, pr.Called) })
	default:
		body = renderWinner(m.summary(v))
	}

	width := max(1, m.width-2)
	sections := []string{
		renderHeader(v, pool),
		paneStyle.Width(width).Render(body),
		paneStyle.Width(width).Render(m.eventVP.View()),
	}
	if v.Phase != round.PhaseWinnerAnnounced {
		sections = append(sections, m.input.View())
	}
	sections = append(sections, InfoStyle.Render(m.help()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) help() string {
	switch m.view.Phase {
	case round.PhaseSelection:
		return "Enter toggles a card • Ctrl+R random • Ctrl+X clear • PgUp/PgDn log • Esc quit"
	case round.PhasePlaying:
		if !m.autoMark {
			return "Enter marks a number • Ctrl+A auto-mark • Ctrl+X stop tracking • PgUp/PgDn log • Esc quit"
		}
		return "Enter tracks a card • Ctrl+A manual marking • Ctrl+X stop tracking • PgUp/PgDn log • Esc quit"
	}
	return "PgUp/PgDn log • Esc quit"
}
