package runtime

import (
	"errors"
	"fmt"
)

// ErrorKind classifies runtime failures. Kinds are stable identifiers, not
// exception class names.
type ErrorKind string

const (
	AttributeNotFound   ErrorKind = "AttributeNotFound"
	ImmutableAttribute  ErrorKind = "ImmutableAttribute"
	WrongReceiverType   ErrorKind = "WrongReceiverType"
	UnsafeConstruction  ErrorKind = "UnsafeConstruction"
	PropertyAccessError ErrorKind = "PropertyAccessError"
	ArityMismatch       ErrorKind = "ArityMismatch"
	AlreadyRunning      ErrorKind = "AlreadyRunning"
	InvalidResumeValue  ErrorKind = "InvalidResumeValue"
	IgnoredCancellation ErrorKind = "IgnoredCancellation"
	ConcurrentMutation  ErrorKind = "ConcurrentMutation"
	TypeError           ErrorKind = "TypeError"
	InternalError       ErrorKind = "InternalError"

	// StopIteration is the reserved completion signal.
	StopIteration ErrorKind = "StopIteration"
	// GeneratorExit is the reserved cancellation signal injected by close.
	GeneratorExit ErrorKind = "GeneratorExit"
)

// Error is the runtime's failure value. Cause is kept for errors.Unwrap.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
	// Payload carries an optional runtime value, e.g. a generator's return
	// value attached to StopIteration.
	Payload Value
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error of the same kind, so errors.Is(err,
// runtime.Signal(runtime.StopIteration)) works through wrapping.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind && (other.Message == "" || other.Message == e.Message)
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches cause to a new error of the given kind.
func Wrap(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Signal builds a message-less error of kind, used for reserved signals.
func Signal(kind ErrorKind) *Error {
	return &Error{Kind: kind}
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var rtErr *Error
	if errors.As(err, &rtErr) {
		return rtErr.Kind, true
	}
	return "", false
}

// IsKind reports whether the outermost *Error in err's chain has kind.
func IsKind(err error, kind ErrorKind) bool {
	got, ok := KindOf(err)
	return ok && got == kind
}

// NoAttribute is the canonical attribute-not-found failure.
func NoAttribute(v Value, name string) *Error {
	return Errorf(AttributeNotFound, "'%s' object has no attribute '%s'", TypeName(v), name)
}
