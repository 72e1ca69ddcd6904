package resource

import (
	"errors"
	"fmt"
)

var (
	// ErrResourceNotFound is returned when an id has no table entry.
	ErrResourceNotFound = errors.New("resource: not found")

	// ErrTypeMismatch is returned when an id is stored under another kind.
	ErrTypeMismatch = errors.New("resource: type mismatch")

	// ErrCreationFailed wraps backend errors from object creation.
	ErrCreationFailed = errors.New("resource: creation failed")

	// ErrUnsupportedKind is returned by Insert for types the manager cannot store.
	ErrUnsupportedKind = errors.New("resource: unsupported kind")

	// ErrNilObject is returned by Insert for a nil object.
	ErrNilObject = errors.New("resource: nil object")
)

// Error describes a failed lookup. It unwraps to ErrResourceNotFound or
// ErrTypeMismatch.
type Error struct {
	Op   string
	ID   ID
	Want Kind
	Got  Kind // set for type mismatches
	Err  error
}

func (e *Error) Error() string {
	if errors.Is(e.Err, ErrTypeMismatch) {
		return fmt.Sprintf("resource: %s #%d: type mismatch: want %s, have %s", e.Op, e.ID, e.Want, e.Got)
	}
	return fmt.Sprintf("resource: %s %s#%d: not found", e.Op, e.Want, e.ID)
}

func (e *Error) Unwrap() error { return e.Err }

func creationError(kind Kind, label string, err error) error {
	return fmt.Errorf("%w: %s %q: %w", ErrCreationFailed, kind, label, err)
}
