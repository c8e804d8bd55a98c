// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

package installkey

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Protocol-mandated header names. These must be emitted byte-exact.
const (
	HeaderInstallationID = "X-App-Installation-Id"
	HeaderTimestamp      = "X-Timestamp"
	HeaderNonce          = "X-Nonce"
	HeaderSignature      = "X-Request-Signature"

	// HeaderProof carries the registration-time proof. Used once, at
	// installation registration, instead of the four-header signed set.
	HeaderProof = "X-Request-Proof"
)

// RequestHeaders is the per-request signed header set. Created fresh
// for every outgoing call, never persisted, never reused: the
// nonce/timestamp pair bounds the server's replay window.
type RequestHeaders struct {
	InstallationID string
	Timestamp      string
	Nonce          string
	Signature      string
}

// SignRequest produces the header set accompanying an authenticated
// API call, proving possession of the installation key without
// transmitting it:
//
//  1. nonce: fresh lowercase UUID v4
//  2. timestamp: now, as decimal milliseconds since the Unix epoch
//  3. proof: ComputeProof(id + "." + nonce + "." + timestamp, secret)
//  4. signature: ECDSA-SHA256 over proofInput + "." + proof, DER, base64
//
// The proof (symmetric) and the signature (asymmetric) are layered:
// the server validates both.
func SignRequest(key *InstallationKey, now time.Time) (RequestHeaders, error) {
	nonce := NewInstallationID()
	timestamp := strconv.FormatInt(now.UnixMilli(), 10)

	proofInput := key.InstallationID + "." + nonce + "." + timestamp
	proof, err := ComputeProof(proofInput, key.Secret)
	if err != nil {
		return RequestHeaders{}, err
	}

	signatureData := proofInput + "." + proof
	digest := sha256.Sum256([]byte(signatureData))
	signature, err := ecdsa.SignASN1(rand.Reader, key.PrivateKey, digest[:])
	if err != nil {
		return RequestHeaders{}, fmt.Errorf("installkey: signing request: %w", err)
	}

	return RequestHeaders{
		InstallationID: key.InstallationID,
		Timestamp:      timestamp,
		Nonce:          nonce,
		Signature:      base64.StdEncoding.EncodeToString(signature),
	}, nil
}

// Apply sets the four signed headers on an outgoing request's header
// map.
func (h RequestHeaders) Apply(header http.Header) {
	header.Set(HeaderInstallationID, h.InstallationID)
	header.Set(HeaderTimestamp, h.Timestamp)
	header.Set(HeaderNonce, h.Nonce)
	header.Set(HeaderSignature, h.Signature)
}

// RegistrationProof computes the one-time proof sent with the
// registration request, binding the installation's base string to its
// derived secret before any signing relationship exists server-side.
func RegistrationProof(key *InstallationKey) (string, error) {
	base, err := key.BaseString()
	if err != nil {
		return "", err
	}
	return ComputeProof(base, key.Secret)
}
