// Package validation defines the error taxonomy shared by every parser in this module.
//
// All validation failures are raised at parse or construction time. Once a value has been
// constructed it is valid, so no other operation in this module returns these errors.
// Callers that surface the errors to users (for example as 400-class API responses) can
// distinguish the kind with errors.Is against the exported sentinels and read the offending
// part of the input from [Error].
package validation

import (
	"errors"
	"fmt"
)

// Kind classifies a validation failure.
type Kind int

const (
	KindMalformedVersion Kind = iota + 1
	KindMalformedConstraint
	KindInvalidIdentifier
	KindMalformedDigest
)

var (
	ErrMalformedVersion    = errors.New("malformed version")
	ErrMalformedConstraint = errors.New("malformed constraint")
	ErrInvalidIdentifier   = errors.New("invalid identifier")
	ErrMalformedDigest     = errors.New("malformed digest")
)

func (k Kind) String() string {
	switch k {
	case KindMalformedVersion:
		return "MalformedVersion"
	case KindMalformedConstraint:
		return "MalformedConstraint"
	case KindInvalidIdentifier:
		return "InvalidIdentifier"
	case KindMalformedDigest:
		return "MalformedDigest"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindMalformedVersion:
		return ErrMalformedVersion
	case KindMalformedConstraint:
		return ErrMalformedConstraint
	case KindInvalidIdentifier:
		return ErrInvalidIdentifier
	case KindMalformedDigest:
		return ErrMalformedDigest
	default:
		return nil
	}
}

// Error is a typed validation failure.
type Error struct {
	Kind Kind
	// Input is the complete value that was being parsed.
	Input string
	// Offending is the part of Input that violated the grammar. It may be empty when
	// the violation is the absence of something (e.g. an empty identifier).
	Offending string
	// Reason is a short human readable description of the violation.
	Reason string
	// Cause is set when the failure was raised by a nested parser, e.g. the version
	// embedded in a coordinate.
	Cause error
}

// New creates a validation error of the given kind.
func New(kind Kind, input, offending, reason string) *Error {
	return &Error{Kind: kind, Input: input, Offending: offending, Reason: reason}
}

// Wrap creates a validation error of the given kind that carries a nested cause.
// If the cause is itself an *Error of the same kind, the returned error keeps the nested
// offending substring.
func Wrap(kind Kind, input string, cause error) *Error {
	e := &Error{Kind: kind, Input: input, Cause: cause}
	var nested *Error
	if errors.As(cause, &nested) {
		e.Offending = nested.Offending
		e.Reason = nested.Reason
	} else if cause != nil {
		e.Reason = cause.Error()
	}
	return e
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %q", e.Kind.sentinel(), e.Input)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Offending != "" && e.Offending != e.Input {
		msg += fmt.Sprintf(" (at %q)", e.Offending)
	}
	return msg
}

// Is reports whether the target is the sentinel matching the error kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf returns the kind of the first validation error in the chain of err.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
