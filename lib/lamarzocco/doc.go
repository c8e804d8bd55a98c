// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

// Package lamarzocco is a typed client for the La Marzocco customer
// cloud API: installation registration, credential-based sign-in with
// JWT refresh, and the "things" endpoints for listing machines,
// reading dashboards, and sending power commands.
//
// Every request from an installation-key-equipped client carries the
// signed header set from lib/installkey in addition to the bearer
// token. The access token is checked before each call and refreshed
// automatically when it is within five minutes of expiry.
package lamarzocco
