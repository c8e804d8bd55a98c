// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

package lamarzocco

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/lungo-project/lungo/lib/credentials"
	"github.com/lungo-project/lungo/lib/installkey"
)

// tokenRefreshMargin is how far before expiry the access token is
// refreshed. Refreshing early avoids races where a token expires
// between the freshness check and the request reaching the server.
const tokenRefreshMargin = 5 * time.Minute

// Register announces a new installation key to the cloud. Sent once
// per installation, before any signing relationship exists
// server-side: the request carries the installation ID, the one-time
// registration proof, and the public key for the server to verify
// future signatures against.
func (client *Client) Register(ctx context.Context, key *installkey.InstallationKey) error {
	proof, err := installkey.RegistrationProof(key)
	if err != nil {
		return err
	}
	publicKey, err := key.PublicKeyBase64()
	if err != nil {
		return err
	}

	header := make(http.Header)
	header.Set(installkey.HeaderInstallationID, key.InstallationID)
	header.Set(installkey.HeaderProof, proof)

	requestBody := map[string]string{"pk": publicKey}
	if err := client.do(ctx, http.MethodPost, "/auth/init", requestBody, nil, header); err != nil {
		return fmt.Errorf("lamarzocco: registering installation: %w", err)
	}

	client.logger.Debug("installation registered", "installation_id", key.InstallationID)
	return nil
}

// tokenPair is the response shape shared by signin and refreshtoken.
type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Login exchanges a username and password for a token pair. The
// installation key, when present, signs the request and is carried
// into the returned credentials.
func (client *Client) Login(ctx context.Context, username, password string, key *installkey.InstallationKey) (*credentials.Credentials, error) {
	header, err := client.signedHeaders(key)
	if err != nil {
		return nil, err
	}

	requestBody := map[string]string{
		"username": username,
		"password": password,
	}

	var tokens tokenPair
	if err := client.do(ctx, http.MethodPost, "/auth/signin", requestBody, &tokens, header); err != nil {
		if IsUnauthorized(err) {
			return nil, fmt.Errorf("lamarzocco: invalid username or password")
		}
		return nil, fmt.Errorf("lamarzocco: signing in: %w", err)
	}

	client.logger.Debug("signin successful", "username", username)
	return &credentials.Credentials{
		Username:        username,
		AccessToken:     tokens.AccessToken,
		RefreshToken:    tokens.RefreshToken,
		InstallationKey: key,
	}, nil
}

// Refresh exchanges a refresh token for a fresh token pair. The
// username is recovered from the new access token's claims, since the
// refresh endpoint does not echo it.
func (client *Client) Refresh(ctx context.Context, refreshToken string, key *installkey.InstallationKey) (*credentials.Credentials, error) {
	header, err := client.signedHeaders(key)
	if err != nil {
		return nil, err
	}

	requestBody := map[string]string{"refreshToken": refreshToken}

	var tokens tokenPair
	if err := client.do(ctx, http.MethodPost, "/auth/refreshtoken", requestBody, &tokens, header); err != nil {
		return nil, fmt.Errorf("lamarzocco: refreshing token: %w", err)
	}

	username := usernameFromToken(tokens.AccessToken)
	if username == "" {
		username = "unknown"
	}

	client.logger.Debug("token refresh successful", "username", username)
	return &credentials.Credentials{
		Username:        username,
		AccessToken:     tokens.AccessToken,
		RefreshToken:    tokens.RefreshToken,
		InstallationKey: key,
	}, nil
}

// authHeaders returns the headers for an authenticated request: the
// bearer token, refreshed if near expiry, plus the installation-key
// signed set when a key exists. A failed refresh surfaces as
// ErrReauthenticate.
func (client *Client) authHeaders(ctx context.Context) (http.Header, error) {
	client.mu.Lock()
	defer client.mu.Unlock()

	if client.creds == nil {
		return nil, fmt.Errorf("lamarzocco: client has no credentials — sign in first")
	}

	if tokenExpired(client.creds.AccessToken, client.clock.Now(), tokenRefreshMargin) {
		client.logger.Debug("access token near expiry, refreshing")

		refreshed, err := client.Refresh(ctx, client.creds.RefreshToken, client.creds.InstallationKey)
		if err != nil {
			return nil, fmt.Errorf("lamarzocco: access token expired and refresh failed: %v: %w", err, ErrReauthenticate)
		}
		client.creds = refreshed

		if client.onTokensRefreshed != nil {
			if err := client.onTokensRefreshed(refreshed); err != nil {
				// The in-memory session still works; only persistence
				// failed.
				client.logger.Warn("persisting refreshed tokens failed", "error", err)
			}
		}
	}

	header, err := client.signedHeaders(client.creds.InstallationKey)
	if err != nil {
		return nil, err
	}
	if header == nil {
		header = make(http.Header)
	}
	header.Set("Authorization", "Bearer "+client.creds.AccessToken)
	return header, nil
}
