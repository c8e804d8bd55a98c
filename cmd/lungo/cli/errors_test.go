// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorConstructorsSetCategory(t *testing.T) {
	tests := []struct {
		name     string
		err      *CommandError
		category ErrorCategory
	}{
		{"validation", Validation("bad input"), CategoryValidation},
		{"not_found", NotFound("no such machine"), CategoryNotFound},
		{"transient", Transient("timed out"), CategoryTransient},
		{"internal", Internal("unexpected state"), CategoryInternal},
	}
	for _, test := range tests {
		if test.err.Category != test.category {
			t.Errorf("%s: category = %q, want %q", test.name, test.err.Category, test.category)
		}
	}
}

func TestCommandErrorUnwrap(t *testing.T) {
	sentinel := errors.New("underlying cause")
	wrapped := Internal("operation failed: %w", sentinel)

	if !errors.Is(wrapped, sentinel) {
		t.Error("errors.Is should find the sentinel through the CommandError wrapper")
	}
	if wrapped.Error() != "operation failed: underlying cause" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation", Validation("bad flag"), 2},
		{"not_found", NotFound("missing"), 3},
		{"transient", Transient("retry later"), 4},
		{"internal", Internal("bug"), 1},
		{"plain error", errors.New("plain"), 1},
		{"nested", fmt.Errorf("context: %w", NotFound("missing")), 3},
	}
	for _, test := range tests {
		if got := ExitCodeFor(test.err); got != test.code {
			t.Errorf("%s: ExitCodeFor = %d, want %d", test.name, got, test.code)
		}
	}
}
