package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrLoad marks a failure to produce a consistent container. It aborts a run.
	ErrLoad = errors.New("load failed")

	// ErrDuplicateIdentity is returned when a record's type and key are already registered.
	ErrDuplicateIdentity = errors.New("duplicate identity")

	// ErrNotFound is returned when a lookup target or a referenced parent is missing.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned when a backend rejects a write on schema or constraint grounds.
	ErrValidation = errors.New("validation failed")

	// ErrAlreadyExists is returned by a create whose entity is already present on the target.
	ErrAlreadyExists = errors.New("already exists")

	// ErrDependencyExists is returned by a delete blocked by associations on the target.
	ErrDependencyExists = errors.New("dependency exists")

	// ErrSkipped lets a record operation decline a change without failing it.
	ErrSkipped = errors.New("skipped")

	errUnknownType = errors.New("unknown record type")
)

// LoadError reports which source failed to load.
type LoadError struct {
	Source string
	Err    error
}

// NewLoadError wraps err as a load failure of source.
func NewLoadError(source string, err error) *LoadError {
	return &LoadError{Source: source, Err: err}
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrLoad) true for any LoadError.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoad
}
