package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for the two fatal failure categories. Soft shortfalls are never errors:
// they surface as slack, and solver truncation surfaces as a status.
var (
	// ErrInputMalformed marks missing or inconsistent rows in the input tables
	ErrInputMalformed = errors.New("input malformed")
	// ErrStructural marks configuration that no solution can satisfy, e.g. an expansion
	// ceiling wider than its tiers
	ErrStructural = errors.New("structural configuration error")
)

// InputError points at the offending row of an input table
type InputError struct {
	Table  string
	Key    string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Table, e.Key, e.Reason)
}

// Unwrap lets errors.Is match ErrInputMalformed
func (e *InputError) Unwrap() error {
	return ErrInputMalformed
}

// StructuralError is a fatal configuration inconsistency on one entity
type StructuralError struct {
	Key string
	Err error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStructural, e.Key, e.Err)
}

// Is matches ErrStructural
func (e *StructuralError) Is(target error) bool {
	return target == ErrStructural
}

// Unwrap exposes the underlying cause
func (e *StructuralError) Unwrap() error {
	return e.Err
}

func inputErrorf(table, key, format string, args ...any) *InputError {
	return &InputError{Table: table, Key: key, Reason: fmt.Sprintf(format, args...)}
}
