// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds passwords and tokens in memory that is locked
// against swapping and zeroed when released.
//
// Buffer allocates its backing memory with mmap(MAP_ANONYMOUS) outside
// the Go heap, pins it with mlock, and excludes it from core dumps with
// madvise(MADV_DONTDUMP). The garbage collector never sees the region,
// so it cannot copy the secret around before Close zeros it.
//
// Prompt and ReadFromPath are the two acquisition paths: an interactive
// no-echo terminal prompt, and a file (or stdin) read for scripted use.
package secret
