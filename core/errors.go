package core

import (
	"errors"
	"fmt"
)

// ParseError reports program text that does not assemble.
type ParseError struct {
	Line int    // 1-based line number
	Text string // offending line, trimmed
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RegisterError reports access to a register that does not exist.
type RegisterError struct {
	Name string
}

func (e *RegisterError) Error() string {
	return fmt.Sprintf("register %q does not exist", e.Name)
}

// ErrBudgetExceeded is matched by BudgetExceededError.
var ErrBudgetExceeded = errors.New("step budget exceeded")

// BudgetExceededError stops a run that used up its step budget. The
// interpreter is left resumable.
type BudgetExceededError struct {
	Budget uint64
	PC     int
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("step budget of %d exceeded at pc %d", e.Budget, e.PC)
}

func (e *BudgetExceededError) Is(target error) bool {
	return target == ErrBudgetExceeded
}
