// Package precondition holds the single contract-violation error class shared by
// the round engine. Violations are programmer errors: hosts validate input before
// calling into the engine, and the engine panics when they did not.
package precondition

import (
	"errors"
	"fmt"
)

// ErrViolated is wrapped by every contract-violation error.
var ErrViolated = errors.New("precondition violated")

// Error describes which operation rejected its input.
type Error struct {
	Op  string
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Op, ErrViolated, e.Msg)
}

func (e *Error) Unwrap() error {
	return ErrViolated
}

// Errorf builds a violation error for op.
func Errorf(op, format string, args ...any) error {
	return &Error{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Check panics with a violation error when ok is false.
func Check(ok bool, op, format string, args ...any) {
	if !ok {
		panic(Errorf(op, format, args...))
	}
}
