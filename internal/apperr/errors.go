// Package apperr defines the error kinds returned by pack operations.
//
// Every failure that reaches the CLI boundary is either an *Error carrying a
// Kind or a plain error wrapping one. Callers classify errors with Is:
//
//	if apperr.Is(err, apperr.KindConflict) {
//	    fmt.Println("use `packsmith extend` instead")
//	}
package apperr

import (
	"errors"
	"fmt"
)

// Kind categorizes a failure.
type Kind string

const (
	// KindValidation indicates bad user input (name casing, empty list, malformed URL)
	KindValidation Kind = "validation"

	// KindNotFound indicates a file, image or model that must exist is missing
	KindNotFound Kind = "not_found"

	// KindConflict indicates a model or texture already exists
	KindConflict Kind = "conflict"

	// KindMismatch indicates a 3D layer count mismatch
	KindMismatch Kind = "mismatch"

	// KindIO indicates a filesystem or network failure
	KindIO Kind = "io"

	// KindParse indicates malformed JSON or image content
	KindParse Kind = "parse"
)

// Error is a classified failure.
type Error struct {
	Kind    Kind                   `json:"kind"`
	Message string                 `json:"message"`
	Details string                 `json:"details,omitempty"`
	Context map[string]interface{} `json:"context,omitempty"`
	Err     error                  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Details != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Details)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new classified error.
func New(kind Kind, message, details string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Details: details,
	}
}

// Common error constructors
func Validation(message string, value string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: message,
		Details: value,
		Context: map[string]interface{}{"value": value},
	}
}

func NotFound(resource, path string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Details: path,
		Context: map[string]interface{}{"path": path},
	}
}

func Conflict(message, details string) *Error {
	return New(KindConflict, message, details)
}

func Mismatch(what string, want, got int) *Error {
	return &Error{
		Kind:    KindMismatch,
		Message: fmt.Sprintf("%s mismatch: expected %d, got %d", what, want, got),
		Context: map[string]interface{}{"expected": want, "actual": got},
	}
}

func IO(op, path string, err error) *Error {
	return &Error{
		Kind:    KindIO,
		Message: fmt.Sprintf("failed to %s", op),
		Details: path,
		Err:     err,
	}
}

func Parse(what, path string, err error) *Error {
	return &Error{
		Kind:    KindParse,
		Message: fmt.Sprintf("failed to parse %s", what),
		Details: path,
		Err:     err,
	}
}

// Is reports whether any error in err's chain is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
