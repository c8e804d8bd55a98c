// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies command errors so scripts can branch on the
// exit code (retry, fix input, escalate) without parsing message text.
type ErrorCategory string

const (
	// CategoryValidation indicates the caller provided invalid input:
	// unknown flags, wrong argument count, unparseable values. Fix the
	// input and retry. Exit code 2.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound indicates a referenced resource does not exist:
	// unknown machine serial, no machines on the account. Retrying
	// with the same parameters will not help. Exit code 3.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryTransient indicates a temporary failure: network error,
	// timeout, cloud-side 5xx. Back off and retry. Exit code 4.
	CategoryTransient ErrorCategory = "transient"

	// CategoryInternal indicates an unexpected error: bugs, I/O
	// failures, unreadable state. Exit code 1.
	CategoryInternal ErrorCategory = "internal"
)

// CommandError is a categorized error returned by CLI commands. The
// binary's main function maps the category to the process exit code.
//
// CommandError wraps an inner error, preserving the full chain for
// errors.Is/As. Use the category constructors (Validation, NotFound,
// Transient, Internal) rather than constructing it directly.
type CommandError struct {
	// Category classifies the error for exit-code mapping.
	Category ErrorCategory

	// Err is the underlying error with the human-readable message.
	Err error
}

// Error returns the underlying error message. The category travels in
// the exit code, not the text.
func (e *CommandError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error, allowing errors.Is and
// errors.As to walk the full chain through the CommandError wrapper.
func (e *CommandError) Unwrap() error { return e.Err }

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error: a referenced resource does not exist.
func NotFound(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Transient creates a transient error: a temporary failure that may succeed on retry.
func Transient(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryTransient, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error: an unexpected failure, bug, or I/O error.
func Internal(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// ExitCodeFor maps an error to the process exit code: a CommandError's
// category code, or 1 for everything else. ExitError is handled by the
// binary's main function before this is consulted.
func ExitCodeFor(err error) int {
	var commandError *CommandError
	if errors.As(err, &commandError) {
		switch commandError.Category {
		case CategoryValidation:
			return 2
		case CategoryNotFound:
			return 3
		case CategoryTransient:
			return 4
		default:
			return 1
		}
	}
	return 1
}
