// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

package installkey

import (
	"encoding/base64"
	"errors"
	"testing"
)

// TestComputeProofKnownVector pins the proof of "test.base.string"
// under an all-zero secret. This value was captured from the vendor's
// reference implementation; it must never change.
func TestComputeProofKnownVector(t *testing.T) {
	secret := make([]byte, SecretSize)

	proof, err := ComputeProof("test.base.string", secret)
	if err != nil {
		t.Fatalf("ComputeProof: %v", err)
	}

	const want = "LOOhrxj4hKeB+JBUB+193R9iZ0yeWEfCbMpqs+aqgKY="
	if proof != want {
		t.Errorf("proof = %q, want %q", proof, want)
	}
}

func TestComputeProofDeterministic(t *testing.T) {
	secret := make([]byte, SecretSize)
	for i := range secret {
		secret[i] = byte(i * 7)
	}

	first, err := ComputeProof("some.input.string", secret)
	if err != nil {
		t.Fatalf("ComputeProof: %v", err)
	}
	second, err := ComputeProof("some.input.string", secret)
	if err != nil {
		t.Fatalf("ComputeProof: %v", err)
	}
	if first != second {
		t.Errorf("identical inputs produced %q and %q", first, second)
	}
}

func TestComputeProofSensitivity(t *testing.T) {
	secret := make([]byte, SecretSize)
	base, err := ComputeProof("test.base.string", secret)
	if err != nil {
		t.Fatalf("ComputeProof: %v", err)
	}

	// One differing input byte.
	changedInput, err := ComputeProof("test.base.strinh", secret)
	if err != nil {
		t.Fatalf("ComputeProof: %v", err)
	}
	if changedInput == base {
		t.Error("changing one input byte did not change the proof")
	}

	// One differing secret byte.
	tweaked := make([]byte, SecretSize)
	tweaked[0] = 1
	changedSecret, err := ComputeProof("test.base.string", tweaked)
	if err != nil {
		t.Fatalf("ComputeProof: %v", err)
	}
	if changedSecret == base {
		t.Error("changing one secret byte did not change the proof")
	}
}

func TestComputeProofOutputShape(t *testing.T) {
	secret := make([]byte, SecretSize)
	proof, err := ComputeProof("anything", secret)
	if err != nil {
		t.Fatalf("ComputeProof: %v", err)
	}

	if len(proof) != 44 {
		t.Errorf("proof length = %d, want 44", len(proof))
	}
	digest, err := base64.StdEncoding.DecodeString(proof)
	if err != nil {
		t.Fatalf("proof is not valid base64: %v", err)
	}
	if len(digest) != 32 {
		t.Errorf("decoded digest length = %d, want 32", len(digest))
	}
}

func TestComputeProofRejectsBadSecretLength(t *testing.T) {
	for _, size := range []int{0, 1, 31, 33, 64} {
		_, err := ComputeProof("test", make([]byte, size))
		if !errors.Is(err, ErrInvalidKeyLength) {
			t.Errorf("secret of %d bytes: got %v, want ErrInvalidKeyLength", size, err)
		}
	}
}

func TestComputeProofEmptyInput(t *testing.T) {
	// An empty input hashes the untouched secret. Still a valid,
	// deterministic 44-character proof.
	secret := make([]byte, SecretSize)
	proof, err := ComputeProof("", secret)
	if err != nil {
		t.Fatalf("ComputeProof: %v", err)
	}
	if len(proof) != 44 {
		t.Errorf("proof length = %d, want 44", len(proof))
	}
}
