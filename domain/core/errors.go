package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrParse         = errors.New("malformed input")
	ErrMissingColumn = fmt.Errorf("%w: missing column", ErrParse)
	ErrBadValue      = fmt.Errorf("%w: invalid value", ErrParse)
	ErrNoMatchingRow = errors.New("no rows match the requested experiment")

	// Statistical applicability errors
	ErrDegenerateSample = errors.New("degenerate sample")
	ErrTooFewGroups     = fmt.Errorf("%w: expected exactly two condition levels", ErrDegenerateSample)
	ErrEmptyGroup       = fmt.Errorf("%w: empty group", ErrDegenerateSample)
	ErrConstantData     = fmt.Errorf("%w: data are essentially constant", ErrDegenerateSample)

	// Optimizer errors
	ErrConvergence     = errors.New("optimizer did not converge")
	ErrSingularHessian = fmt.Errorf("%w: hessian is not positive definite", ErrConvergence)
	ErrSeparation      = fmt.Errorf("%w: groups are separated, coefficient estimate is infinite", ErrConvergence)
)

// Error constructors with context
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

func NewMissingColumnError(column string) error {
	return fmt.Errorf("%w %q", ErrMissingColumn, column)
}

func NewDuplicateColumnError(column string, first, second int) error {
	return fmt.Errorf("%w: duplicate column %q (columns %d and %d)", ErrParse, column, first, second)
}

func NewBadValueError(row int, column, value, reason string) error {
	return fmt.Errorf("%w in row %d, column %q (%q): %s", ErrBadValue, row, column, value, reason)
}

func NewNoMatchingRowError(experiment int) error {
	return fmt.Errorf("%w: experiment %d", ErrNoMatchingRow, experiment)
}

func NewDegenerateSampleError(reason string) error {
	return fmt.Errorf("%w: %s", ErrDegenerateSample, reason)
}

func NewConvergenceError(iterations int, maxGradient float64) error {
	return fmt.Errorf("%w after %d iterations (max |gradient| %.3g)", ErrConvergence, iterations, maxGradient)
}

// Error checking helpers
func IsParseError(err error) bool {
	return errors.Is(err, ErrParse)
}

func IsFilterError(err error) bool {
	return errors.Is(err, ErrNoMatchingRow)
}

func IsDegenerateSampleError(err error) bool {
	return errors.Is(err, ErrDegenerateSample)
}

func IsConvergenceError(err error) bool {
	return errors.Is(err, ErrConvergence)
}
