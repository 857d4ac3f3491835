// Package card generates the fixed 5×5 bingo grid behind every card id.
//
// Cells are stored column-major: the linear index of (col, row) is col*5+row, so
// Numbers[0:5] is the B column. Index 12 is the free cell and always holds 0.
package card

import (
	"fmt"

	"github.com/lox/syncbingo/internal/precondition"
	"github.com/lox/syncbingo/internal/randutil"
)

const (
	Size       = 25
	Columns    = 5
	Rows       = 5
	ColumnSpan = 15
	MaxNumber  = Columns * ColumnSpan

	FreeIndex = 12
	FreeValue = 0

	// SeedMultiplier is the frozen card-id to generator-seed transform. It is
	// prime and coprime with randutil.Modulus, so ids below the modulus map to
	// distinct generator states.
	SeedMultiplier = 7919
)

var letters = [Columns]string{"B", "I", "N", "G", "O"}

// Card is a generated grid.
type Card struct {
	ID      int
	Numbers [Size]int
}

// Seed returns the generator seed for a card id.
func Seed(id int) int64 {
	return int64(id) * SeedMultiplier
}

// Generate builds the grid for id. Each column draws five distinct values from
// its fifteen-value range by repeated extraction from a shrinking pool.
func Generate(id int) Card {
	precondition.Check(id > 0, "card.Generate", "card id must be positive, got %d", id)

	c := Card{ID: id}
	rng := randutil.NewLCG(Seed(id))
	pool := make([]int, 0, ColumnSpan)

	for col := 0; col < Columns; col++ {
		pool = pool[:0]
		for v := col*ColumnSpan + 1; v <= (col+1)*ColumnSpan; v++ {
			pool = append(pool, v)
		}
		for row := 0; row < Rows; row++ {
			i := rng.Intn(len(pool))
			c.Numbers[col*Rows+row] = pool[i]
			pool = append(pool[:i], pool[i+1:]...)
		}
	}

	c.Numbers[FreeIndex] = FreeValue
	return c
}

// ValidateID reports whether id is a selectable card id in [1, maxID].
func ValidateID(id, maxID int) error {
	if id < 1 || id > maxID {
		return precondition.Errorf("card.ValidateID", "card id %d outside [1, %d]", id, maxID)
	}
	return nil
}

// Index returns the linear cell index for a column and row.
func Index(col, row int) int {
	return col*Rows + row
}

// Column returns the column (0-4) a ball number belongs to, or -1.
func Column(n int) int {
	if n < 1 || n > MaxNumber {
		return -1
	}
	return (n - 1) / ColumnSpan
}

// Letter returns the B/I/N/G/O column letter for a ball number.
func Letter(n int) string {
	col := Column(n)
	if col < 0 {
		return ""
	}
	return letters[col]
}

// Letters returns the column headers in order.
func Letters() [Columns]string {
	return letters
}

// Call formats a ball number the way callers announce it, e.g. "N-41".
func Call(n int) string {
	return fmt.Sprintf("%s-%d", Letter(n), n)
}

// At returns the value at a column and row.
func (c Card) At(col, row int) int {
	return c.Numbers[Index(col, row)]
}

// IndexOf returns the cell index holding n, or -1.
func (c Card) IndexOf(n int) int {
	if n == FreeValue {
		return -1
	}
	for i, v := range c.Numbers {
		if v == n {
			return i
		}
	}
	return -1
}

// Contains reports whether n is printed on the card.
func (c Card) Contains(n int) bool {
	return c.IndexOf(n) >= 0
}

// Marked returns which cells are covered once the given numbers have been
// called. The free cell is always covered.
func (c Card) Marked(called []int) [Size]bool {
	var marked [Size]bool
	marked[FreeIndex] = true
	for _, n := range called {
		if i := c.IndexOf(n); i >= 0 {
			marked[i] = true
		}
	}
	return marked
}
