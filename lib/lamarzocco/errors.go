// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

package lamarzocco

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrReauthenticate signals that the stored session is no longer
// accepted by the cloud: the access token was rejected and the refresh
// token could not produce a new one. Callers should clear the stored
// credentials and direct the user to log in again.
var ErrReauthenticate = errors.New("lamarzocco: session rejected — log in again")

// APIError represents a non-2xx response from the cloud API. The
// vendor returns JSON error bodies with "error" and sometimes
// "message" fields; unparseable bodies are carried verbatim.
type APIError struct {
	// StatusCode is the HTTP response status code.
	StatusCode int

	// Message is the most specific description available: the body's
	// "message" field, its "error" field, or the raw body.
	Message string
}

func (err *APIError) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("lamarzocco: HTTP %d", err.StatusCode)
	}
	return fmt.Sprintf("lamarzocco: HTTP %d: %s", err.StatusCode, err.Message)
}

// IsNotFound reports whether err is a 404 response, which the things
// endpoints return for an unknown serial number.
func IsNotFound(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode == 404
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode == 401
}

// parseAPIError builds an *APIError from a response body, pulling the
// human-readable message out of the vendor's JSON error shape when
// possible.
func parseAPIError(statusCode int, body []byte) *APIError {
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return &APIError{StatusCode: statusCode, Message: parsed.Message}
		}
		if parsed.Error != "" {
			return &APIError{StatusCode: statusCode, Message: parsed.Error}
		}
	}
	return &APIError{StatusCode: statusCode, Message: strings.TrimSpace(string(body))}
}
