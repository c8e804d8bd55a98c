// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bufio"
	"bytes"
	"fmt"
	"os"

	"golang.org/x/term"
)

// ReadFromPath reads a secret from a file path, or from the first line
// of stdin if path is "-". Leading and trailing whitespace is trimmed;
// an empty result is an error. The returned buffer must be closed.
func ReadFromPath(path string) (*Buffer, error) {
	var data []byte

	if path == "-" {
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("reading stdin: %w", err)
			}
			return nil, fmt.Errorf("stdin is empty")
		}
		data = scanner.Bytes()
	} else {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		Zero(data)
		return nil, fmt.Errorf("secret is empty")
	}

	// NewFromBytes zeros trimmed; cover any whitespace prefix/suffix too.
	buffer, err := NewFromBytes(trimmed)
	Zero(data)
	if err != nil {
		return nil, err
	}
	return buffer, nil
}

// Prompt reads a secret interactively from the terminal with echo
// disabled, printing label to stderr first. Fails when stdin is not a
// terminal; scripted callers should use ReadFromPath instead.
func Prompt(label string) (*Buffer, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("stdin is not a terminal (pass the secret via a file or stdin)")
	}

	fmt.Fprintf(os.Stderr, "%s: ", label)
	line, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading from terminal: %w", err)
	}
	if len(bytes.TrimSpace(line)) == 0 {
		Zero(line)
		return nil, fmt.Errorf("secret is empty")
	}

	return NewFromBytes(line)
}
