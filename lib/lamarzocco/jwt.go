// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

package lamarzocco

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// tokenClaims is the subset of JWT claims the client reads: the
// username and the expiry. The signature is never verified here — the
// server is the authority on token validity; the client only needs the
// claims to decide when to refresh proactively.
type tokenClaims struct {
	Subject   string `json:"sub"`
	ExpiresAt int64  `json:"exp"`
}

// parseTokenClaims decodes the payload of a JWT without verifying its
// signature. Tokens that do not look like JWTs (no "ey" prefix, as
// issued by test servers) report ok=false and are treated as opaque.
func parseTokenClaims(token string) (claims tokenClaims, ok bool) {
	if !strings.HasPrefix(token, "ey") {
		return tokenClaims{}, false
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return tokenClaims{}, false
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return tokenClaims{}, false
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return tokenClaims{}, false
	}
	return claims, true
}

// tokenExpired reports whether a token is expired, or will expire
// within margin of now. Opaque (non-JWT) tokens never expire; JWTs
// whose payload cannot be decoded are treated as already expired.
func tokenExpired(token string, now time.Time, margin time.Duration) bool {
	if !strings.HasPrefix(token, "ey") {
		return false
	}
	claims, ok := parseTokenClaims(token)
	if !ok {
		return true
	}
	return !now.Add(margin).Before(time.Unix(claims.ExpiresAt, 0))
}

// usernameFromToken extracts the "sub" claim, or "" for opaque or
// malformed tokens.
func usernameFromToken(token string) string {
	claims, ok := parseTokenClaims(token)
	if !ok {
		return ""
	}
	return claims.Subject
}
