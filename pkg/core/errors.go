package core

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every error returned by the pipeline stages wraps exactly
// one of these so callers can branch with errors.Is.
var (
	// ErrInvalidConfiguration reports a bad parameter: unknown scaling method,
	// out-of-range ratio or proportion, conflicting column selections.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrSchemaMismatch reports a reference to a column the dataset does not
	// have, or a column whose kind does not fit the operation.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrDegenerateInput reports an empty dataset or column reaching a step
	// that divides by its size.
	ErrDegenerateInput = errors.New("degenerate input")
)

// ColumnError is returned when an operation references a column that is
// missing or has the wrong kind.
type ColumnError struct {
	Op     string
	Column string
	Reason string
	Err    error
}

func (e *ColumnError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: column %q: %s", e.Op, e.Column, e.Reason)
	}
	return fmt.Sprintf("%s: column %q: %v", e.Op, e.Column, e.Err)
}

func (e *ColumnError) Unwrap() error { return e.Err }

// ConfigError is returned when a parameter fails validation.
type ConfigError struct {
	Param  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Param, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfiguration }

// MissingColumn builds the error for a column absent from a dataset.
func MissingColumn(op, column string) error {
	return &ColumnError{Op: op, Column: column, Reason: "not found in dataset", Err: ErrSchemaMismatch}
}

// WrongKind builds the error for a column whose kind does not fit op.
func WrongKind(op, column string, want Kind) error {
	return &ColumnError{Op: op, Column: column, Reason: "expected " + want.String() + " column", Err: ErrSchemaMismatch}
}

// DuplicateColumn builds the error for adding a column whose name is taken.
func DuplicateColumn(op, column string) error {
	return &ColumnError{Op: op, Column: column, Reason: "already exists", Err: ErrSchemaMismatch}
}

// Degenerate builds an ErrDegenerateInput with context.
func Degenerate(op, format string, args ...any) error {
	return fmt.Errorf("%s: %s: %w", op, fmt.Sprintf(format, args...), ErrDegenerateInput)
}
