// Package statistics aggregates resolved rounds: how many balls it takes to
// produce a winner and which patterns win.
package statistics

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"sort"
)

// RoundResult is the outcome of one round.
type RoundResult struct {
	RoundID int64
	// Balls is the number of balls called before play stopped.
	Balls        int
	WinnerCardID int // 0 when nobody won
	Patterns     []string
	Participants int
	// Interrupted is set when a new round period began before the round ended.
	Interrupted bool
}

// Statistics tracks balls-to-win across rounds.
type Statistics struct {
	Rounds      int
	Winners     int
	NoWinner    int
	Interrupted int

	SumBalls  float64
	SumBalls2 float64 // Sum of squares for variance calculation
	Values    []float64

	MinBalls int
	MaxBalls int

	// PatternWins counts every completed pattern label across winning rounds.
	PatternWins map[string]int
	// CardWins counts wins per card id.
	CardWins map[int]int
}

// New returns empty statistics.
func New() *Statistics {
	return &Statistics{
		PatternWins: make(map[string]int),
		CardWins:    make(map[int]int),
	}
}

// Add incorporates a round result.
func (s *Statistics) Add(r RoundResult) {
	balls := float64(r.Balls)
	s.Rounds++
	s.SumBalls += balls
	s.SumBalls2 += balls * balls
	s.Values = append(s.Values, balls)

	if s.Rounds == 1 || r.Balls < s.MinBalls {
		s.MinBalls = r.Balls
	}
	s.MaxBalls = max(s.MaxBalls, r.Balls)

	if r.Interrupted {
		s.Interrupted++
	}
	if r.WinnerCardID == 0 {
		s.NoWinner++
		return
	}
	s.Winners++
	s.CardWins[r.WinnerCardID]++
	for _, p := range r.Patterns {
		s.PatternWins[p]++
	}
}

// Mean returns the mean number of balls per round.
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumBalls / float64(s.Rounds)
}

// Variance returns the sample variance of balls per round.
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumBalls2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation.
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(max(0, s.Variance()))
}

// StdError returns the standard error of the mean.
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean.
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median number of balls.
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the linearly interpolated value at p in [0, 1].
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := slices.Clone(s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// PatternCount is one row of TopPatterns.
type PatternCount struct {
	Label string
	Wins  int
}

// TopPatterns returns the n most frequent winning patterns, ties broken by
// label.
func (s *Statistics) TopPatterns(n int) []PatternCount {
	counts := make([]PatternCount, 0, len(s.PatternWins))
	for label, wins := range s.PatternWins {
		counts = append(counts, PatternCount{Label: label, Wins: wins})
	}
	slices.SortFunc(counts, func(a, b PatternCount) int {
		if c := cmp.Compare(b.Wins, a.Wins); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return counts[:min(n, len(counts))]
}

// Validate checks that the counters agree with each other.
func (s *Statistics) Validate() error {
	if s.Winners+s.NoWinner != s.Rounds {
		return fmt.Errorf("round count mismatch: winners %d + no winner %d != rounds %d", s.Winners, s.NoWinner, s.Rounds)
	}
	if len(s.Values) != s.Rounds {
		return fmt.Errorf("value count mismatch: %d values for %d rounds", len(s.Values), s.Rounds)
	}
	wins := 0
	for _, n := range s.CardWins {
		wins += n
	}
	if wins != s.Winners {
		return fmt.Errorf("card wins %d != winners %d", wins, s.Winners)
	}
	if s.Interrupted > s.Rounds {
		return fmt.Errorf("interrupted %d exceeds rounds %d", s.Interrupted, s.Rounds)
	}
	return nil
}

// String renders a one-line summary.
func (s *Statistics) String() string {
	if s.Rounds == 0 {
		return "no rounds"
	}
	lo, hi := s.ConfidenceInterval95()
	return fmt.Sprintf("%d rounds, %d won, balls mean %.1f (95%% CI %.1f-%.1f), median %.0f, range %d-%d",
		s.Rounds, s.Winners, s.Mean(), lo, hi, s.Median(), s.MinBalls, s.MaxBalls)
}
