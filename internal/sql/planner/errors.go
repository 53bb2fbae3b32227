package planner

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput means a parse tree node broke a shape the grammar
	// guarantees. It signals a parser defect, not a user error.
	ErrMalformedInput = errors.New("planner: malformed syntax tree")

	// ErrColumnNotFound is matched by every *ColumnNotFoundError.
	ErrColumnNotFound = errors.New("planner: column not found")
)

// ColumnNotFoundError names a PRIMARY KEY column that the table does not declare.
type ColumnNotFoundError struct {
	Name string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("planner: column %q does not exist", e.Name)
}

func (e *ColumnNotFoundError) Is(target error) bool { return target == ErrColumnNotFound }

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedInput, fmt.Sprintf(format, args...))
}
