package evaluator

import (
	"fmt"

	"github.com/lox/syncbingo/internal/card"
)

// Pattern is a set of cells that wins when all of them are covered.
type Pattern struct {
	ID    int
	Name  string
	Cells []int
}

// Label is the short name shown to players, e.g. "Pattern 13".
func (p Pattern) Label() string {
	return fmt.Sprintf("Pattern %d", p.ID)
}

var catalog = buildCatalog()

// Patterns returns the winning pattern catalog in evaluation order: the five
// columns B..O, the five rows, both diagonals, then the four corners.
func Patterns() []Pattern {
	return catalog
}

func buildCatalog() []Pattern {
	var patterns []Pattern
	add := func(name string, cells ...int) {
		patterns = append(patterns, Pattern{ID: len(patterns) + 1, Name: name, Cells: cells})
	}

	letters := card.Letters()
	for col := 0; col < card.Columns; col++ {
		cells := make([]int, 0, card.Rows)
		for row := 0; row < card.Rows; row++ {
			cells = append(cells, card.Index(col, row))
		}
		add("Column "+letters[col], cells...)
	}
	for row := 0; row < card.Rows; row++ {
		cells := make([]int, 0, card.Columns)
		for col := 0; col < card.Columns; col++ {
			cells = append(cells, card.Index(col, row))
		}
		add(fmt.Sprintf("Row %d", row+1), cells...)
	}
	add("Diagonal", 0, 6, 12, 18, 24)
	add("Anti-diagonal", 4, 8, 12, 16, 20)
	add("Four corners", 0, 4, 20, 24)

	return patterns
}
