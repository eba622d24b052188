package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors.
//
// PROVIDER and RENDER faults stop the monitor loop. BACKUP, EMAIL and KILL
// faults are reported by the step that hit them and the loop carries on.
const (
	ErrConfig   = "CONFIG"
	ErrProvider = "PROVIDER"
	ErrRender   = "RENDER"
	ErrBackup   = "BACKUP"
	ErrEmail    = "EMAIL"
	ErrKill     = "KILL"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrProvider code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrProvider,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var spErr *Error
	if errors.As(err, &spErr) {
		return spErr.Code == code
	}
	return false
}

// Headline returns a one-line rendering of err for report lines.
// Structured errors yield their message followed by the cause's headline.
func Headline(err error) string {
	if err == nil {
		return ""
	}
	var spErr *Error
	if errors.As(err, &spErr) {
		if spErr.Cause != nil {
			return spErr.Message + ": " + Headline(spErr.Cause)
		}
		return spErr.Message
	}
	msg, _, _ := strings.Cut(err.Error(), "\n")
	return msg
}

// IsFatal reports whether err must stop the monitor loop.
// Unstructured errors are treated as fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var spErr *Error
	if !errors.As(err, &spErr) {
		return true
	}
	switch spErr.Code {
	case ErrBackup, ErrEmail, ErrKill:
		return false
	default:
		return true
	}
}
