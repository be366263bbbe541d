package core

import (
	"errors"
	"fmt"
)

// ErrNotFound is the normal negative result for lookups by identity. It is
// not a system fault and is never logged as one.
var ErrNotFound = errors.New("not found")

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
)

// ValidationError marks a caller mistake in the supplied fields: missing
// required data, out-of-range values, oversized text. Surfaced to the
// boundary as a 4xx failure, never retried.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Msg)
}

// NewValidationError builds a ValidationError for a field.
func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// ReferentialError marks a category or card reference that does not resolve
// to an existing record.
type ReferentialError struct {
	Entity string
	ID     int64
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("%s %d does not exist", e.Entity, e.ID)
}

// StorageError wraps a failure while coordinating with the external receipt
// file store. The expense record mutation that already succeeded is not
// rolled back; the two are independent resources.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("receipt storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a caller mistake (validation or
// referential), i.e. a 4xx-equivalent failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	var re *ReferentialError
	return errors.As(err, &ve) || errors.As(err, &re)
}
