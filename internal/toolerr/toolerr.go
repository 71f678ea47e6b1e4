// Package toolerr carries kind-tagged errors across the tool runtime.
//
// Components (evaluator, workspace, shell executor, memory store) return
// *Error values tagged with a Kind. Tools translate kinds into their JSON
// envelopes; the dispatcher converts anything left over into bounded text.
package toolerr

import (
	"errors"
	"fmt"
)

// Kind classifies a tool runtime failure.
type Kind string

const (
	KindValidation  Kind = "validation"   // malformed or out-of-range input
	KindSecurity    Kind = "security"     // rejected by a safety rule
	KindRuntime     Kind = "runtime"      // failed while executing
	KindMath        Kind = "math"         // division by zero, overflow
	KindUnknownTool Kind = "unknown_tool" // no such tool registered
	KindNotFound    Kind = "not_found"    // referenced file or scope missing
)

// Error is a kind-tagged error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a tagged error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a tagged error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags an underlying error.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, walking the wrap chain.
// Untagged errors report the empty kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Message returns the tagged message of err, or err.Error() when untagged.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsSecurity(err error) bool   { return KindOf(err) == KindSecurity }
func IsMath(err error) bool       { return KindOf(err) == KindMath }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
