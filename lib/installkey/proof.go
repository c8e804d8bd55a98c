// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

package installkey

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

// SecretSize is the exact length of the proof secret in bytes.
const SecretSize = 32

// ErrInvalidKeyLength is returned when a proof secret is not exactly
// [SecretSize] bytes. This indicates corrupted key material or a
// programming error, never a retryable runtime condition.
var ErrInvalidKeyLength = errors.New("installkey: secret must be exactly 32 bytes")

// ComputeProof derives the vendor's request proof: a keyed digest
// binding input to a 32-byte secret.
//
// The algorithm mixes each input byte into a working copy of the
// secret (XOR with the byte-indexed slot, then an 8-bit left rotation
// by the low three bits of the following slot), hashes the final
// buffer with SHA-256, and base64-encodes the digest with standard
// alphabet and padding (always 44 characters).
//
// The byte mixing, rotation direction, and hash choice are fixed by
// the vendor's reference client; any deviation breaks interoperability.
func ComputeProof(input string, secret []byte) (string, error) {
	if len(secret) != SecretSize {
		return "", fmt.Errorf("%w (got %d)", ErrInvalidKeyLength, len(secret))
	}

	var work [SecretSize]byte
	copy(work[:], secret)

	for _, b := range []byte(input) {
		idx := int(b) % SecretSize
		shift := work[(idx+1)%SecretSize] & 0x07

		x := b ^ work[idx]
		if shift != 0 {
			x = x<<shift | x>>(8-shift)
		}
		work[idx] = x
	}

	digest := sha256.Sum256(work[:])
	return base64.StdEncoding.EncodeToString(digest[:]), nil
}
