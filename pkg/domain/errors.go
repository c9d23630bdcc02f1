package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is against these to decide how to react to a failure.
var (
	// ErrValidation means the caller supplied bad or missing input.
	ErrValidation = errors.New("validation error")

	// ErrNotFound means a referenced linked bank does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStore means internal persistence is unavailable.
	ErrStore = errors.New("store error")

	// ErrProvider means the external banking-data source failed, was
	// rate limited or returned unusable data.
	ErrProvider = errors.New("provider error")
)

// Error carries the kind of a failure, the operation that failed and the
// underlying cause. It matches both Kind and Err under errors.Is.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewValidationError reports bad input for op.
func NewValidationError(op, msg string) error {
	return &Error{Kind: ErrValidation, Op: op, Err: errors.New(msg)}
}

// NewNotFoundError reports that op could not find what it was asked for.
func NewNotFoundError(op string, err error) error {
	return wrap(ErrNotFound, op, err)
}

// NewStoreError reports a persistence failure in op.
func NewStoreError(op string, err error) error {
	return wrap(ErrStore, op, err)
}

// NewProviderError reports a provider failure in op.
func NewProviderError(op string, err error) error {
	return wrap(ErrProvider, op, err)
}

// KindOf returns the kind sentinel of err, or nil if err carries none.
func KindOf(err error) error {
	for _, k := range []error{ErrValidation, ErrNotFound, ErrStore, ErrProvider} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// wrap tags err with kind unless it already carries one, so a store that
// reports ErrNotFound is not relabelled as a store outage.
func wrap(kind error, op string, err error) error {
	if err != nil && KindOf(err) != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
