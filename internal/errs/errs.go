package errs

import (
	"errors"
	"fmt"
)

// Kind categorizes the failures this engine surfaces to callers
type Kind int

const (
	// KindPersistence - a delete+insert replace or upsert failed; the
	// transaction was rolled back and no partial state was left behind
	KindPersistence Kind = iota
	// KindFileSystem - file I/O failure during test discovery
	KindFileSystem
	// KindValidation - invalid input (empty project, bad path)
	KindValidation
	// KindInternal - unexpected internal state
	KindInternal
)

// Error is a typed error with an underlying cause
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on Kind so callers can test errors.Is against a bare kind error
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New creates a new typed error
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap wraps an existing error; returns nil when err is nil
func Wrap(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Cause: err}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, kind Kind, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: err}
}

// Persistence wraps a storage failure
func Persistence(err error, message string) *Error {
	return Wrap(err, KindPersistence, message)
}

// IsKind reports whether err (or anything it wraps) carries the given kind
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
