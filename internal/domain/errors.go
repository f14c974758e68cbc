package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or missing fields.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an operation on an unknown id.
	ErrNotFound = errors.New("not found")
	// ErrStorage marks a failure of the persistence collaborator.
	ErrStorage = errors.New("storage failure")
	// ErrFormat marks an unsupported or unparseable import file.
	ErrFormat = errors.New("unsupported import format")
	// ErrUserExists is returned by CreateUser for a duplicate email.
	ErrUserExists = errors.New("user already exists")
)

// ValidationError reports a bad or missing field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError reports an unknown record id.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// StorageError wraps a persistence failure with the operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

// FormatError reports an import file that cannot be read at all.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *FormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFormat}
	}
	return []error{ErrFormat, e.Err}
}

// Storage wraps err as a StorageError unless it is nil or already carries a
// domain classification.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorage) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
