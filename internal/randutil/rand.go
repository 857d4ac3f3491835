// Package randutil provides the random sources used across the engine.
//
// LCG is the fixed linear congruential generator every cooperating client
// shares. Its constants are a wire-level contract: changing them silently
// desynchronises card grids, draws and bot pools between independent processes.
// New returns an ordinary PCG-backed *rand.Rand for places where agreement
// between processes does not matter, such as picking random cards for a player.
package randutil

import (
	rand "math/rand/v2"

	"github.com/lox/syncbingo/internal/precondition"
)

const (
	Multiplier = 9301
	Increment  = 49297
	Modulus    = 233280

	goldenRatio64 = 0x9e3779b97f4a7c15
)

// Step advances an LCG state once and returns the produced value in [0,1)
// together with the new state.
func Step(state int64) (float64, int64) {
	next := (state*Multiplier + Increment) % Modulus
	return float64(next) / Modulus, next
}

// LCG is a seeded stream of [0,1) values. The zero value is the stream for seed 0.
type LCG struct {
	state int64
}

// NewLCG seeds a stream. The seed is reduced modulo Modulus first; the update
// rule is affine modulo Modulus, so the produced sequence is identical to using
// the raw seed while keeping the arithmetic well inside int64.
func NewLCG(seed int64) *LCG {
	precondition.Check(seed >= 0, "randutil.NewLCG", "seed must be non-negative, got %d", seed)
	return &LCG{state: seed % Modulus}
}

// Next returns the next value in [0,1).
func (g *LCG) Next() float64 {
	var v float64
	v, g.state = Step(g.state)
	return v
}

// Intn returns floor(Next()*n), an index into a pool of size n.
func (g *LCG) Intn(n int) int {
	precondition.Check(n > 0, "randutil.LCG.Intn", "pool size must be positive, got %d", n)
	return int(g.Next() * float64(n))
}

// State returns the current generator state.
func (g *LCG) State() int64 {
	return g.state
}

// New returns a *rand.Rand seeded deterministically from the provided int64.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
