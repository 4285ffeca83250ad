package repository

import (
	"errors"
	"fmt"
)

// Kind classifies repository failures so callers can branch without inspecting driver errors.
type Kind int

const (
	// KindStoreFailure is any persistence-layer error (constraint violation, lost connection, ...).
	KindStoreFailure Kind = iota
	// KindNotFound means the requested row does not exist.
	KindNotFound
	// KindInvalidArgument means the caller passed a nil entity or otherwise unusable input.
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidArgument:
		return "invalid_argument"
	default:
		return "store_failure"
	}
}

var (
	ErrNotFound      = errors.New("entity not found")
	ErrNilEntity     = errors.New("entity is nil")
	ErrUnknownColumn = errors.New("unknown column")
	ErrEmptyFilter   = errors.New("filter clause is empty")
)

// Error is returned by every Repository operation that fails.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with a kind and the name of the failed operation.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf reports the kind of err. Errors not produced by a repository are store failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStoreFailure
}

// IsNotFound reports whether err signals a missing entity.
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}

// IsInvalidArgument reports whether err was caused by unusable caller input.
func IsInvalidArgument(err error) bool {
	return err != nil && KindOf(err) == KindInvalidArgument
}
