// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework for the lungo binary: a
// declarative command tree with pflag-based flag binding from struct
// tags, structured help output, typo suggestions, categorized errors
// mapped to exit codes, and a TTY-aware structured logger.
package cli
