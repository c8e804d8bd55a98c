// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

// Package installkey implements the installation-key authentication
// scheme used by the La Marzocco cloud API.
//
// Each app installation owns a cryptographic identity: a P-256 ECDSA
// keypair plus a 32-byte secret derived from the installation ID and
// the public key. Every authenticated API call carries a header set
// proving possession of that identity:
//
//   - a "proof", a vendor-specific keyed digest of the request's
//     installation ID, nonce, and timestamp under the 32-byte secret
//     (not an HMAC — the exact byte-mixing algorithm is mandated by
//     the vendor protocol and must match it bit for bit), and
//   - an ECDSA signature over the proof-inclusive string, which the
//     server verifies against the public key registered at
//     installation time.
//
// Registration itself uses a single proof over the installation's
// base string, before any signing relationship exists server-side.
//
// All operations are pure functions of the immutable InstallationKey,
// the clock, and the process CSPRNG; they hold no state and are safe
// for concurrent use.
package installkey
