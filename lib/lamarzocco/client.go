// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

package lamarzocco

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lungo-project/lungo/lib/clock"
	"github.com/lungo-project/lungo/lib/credentials"
	"github.com/lungo-project/lungo/lib/installkey"
)

// DefaultBaseURL is the production customer-app API root.
const DefaultBaseURL = "https://lion.lamarzocco.io/api/customer-app"

// maxResponseBodySize bounds how much of any response body is read,
// guarding against a misbehaving server without constraining normal
// payloads. Error bodies are truncated further to maxErrorBodySize
// before landing in an APIError message.
const (
	maxResponseBodySize = 256 << 20
	maxErrorBodySize    = 64 * 1024
)

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the root URL for API requests. Defaults to
	// DefaultBaseURL.
	BaseURL string

	// HTTPClient is used for all HTTP requests. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client

	// Clock provides time operations: request signing timestamps and
	// token expiry checks. Defaults to clock.Real(). Inject
	// clock.Fake() in tests for deterministic behavior.
	Clock clock.Clock

	// Logger is used for structured logging. Defaults to
	// slog.Default().
	Logger *slog.Logger

	// Credentials is the stored session to authenticate with. Leave
	// nil for a client that only performs Register and Login.
	Credentials *credentials.Credentials

	// OnTokensRefreshed is called with the updated credentials after
	// an automatic token refresh, so the caller can persist them. A
	// persistence failure is logged, not fatal: the in-memory session
	// keeps working.
	OnTokensRefreshed func(*credentials.Credentials) error
}

// Client talks to the La Marzocco cloud. Unauthenticated clients can
// register installations and sign in; clients created with stored
// credentials additionally reach the things endpoints, refreshing the
// access token as needed. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	clock      clock.Clock
	logger     *slog.Logger

	onTokensRefreshed func(*credentials.Credentials) error

	mu    sync.Mutex
	creds *credentials.Credentials
}

// NewClient creates a cloud API client from the given configuration.
func NewClient(config Config) (*Client, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if config.OnTokensRefreshed != nil && config.Credentials == nil {
		return nil, fmt.Errorf("lamarzocco: OnTokensRefreshed requires Credentials")
	}

	return &Client{
		baseURL:           baseURL,
		httpClient:        httpClient,
		clock:             clk,
		logger:            logger,
		onTokensRefreshed: config.OnTokensRefreshed,
		creds:             config.Credentials,
	}, nil
}

// Now returns the current time from the client's clock. Callers
// rendering time-relative output (like a boiler's minutes-to-ready)
// use this instead of time.Now so the whole pipeline shares one
// clock.
func (client *Client) Now() time.Time {
	return client.clock.Now()
}

// Credentials returns the client's current session state: the
// configured credentials, updated by any automatic refreshes since.
// Nil for an unauthenticated client.
func (client *Client) Credentials() *credentials.Credentials {
	client.mu.Lock()
	defer client.mu.Unlock()
	return client.creds
}

// do executes a request against a path relative to the base URL and
// decodes the JSON response into result (which may be nil). The extra
// headers carry the installation-key material; authenticated requests
// additionally get a bearer token via the caller.
func (client *Client) do(ctx context.Context, method, path string, requestBody, result any, extra http.Header) error {
	body, err := client.doRaw(ctx, method, path, requestBody, extra)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("lamarzocco: decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// doRaw executes a request and returns the raw response body. Non-2xx
// responses become an *APIError.
func (client *Client) doRaw(ctx context.Context, method, path string, requestBody any, extra http.Header) ([]byte, error) {
	url := client.baseURL + path

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("lamarzocco: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("lamarzocco: creating request: %w", err)
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	for name, values := range extra {
		for _, value := range values {
			request.Header.Set(name, value)
		}
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("lamarzocco: %s %s: %w", method, url, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("lamarzocco: reading response body: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		if len(body) > maxErrorBodySize {
			body = body[:maxErrorBodySize]
		}
		apiError := parseAPIError(response.StatusCode, body)
		client.logger.Debug("api request failed",
			"method", method,
			"path", path,
			"status", response.StatusCode,
		)
		return nil, apiError
	}

	return body, nil
}

// signedHeaders builds the installation-key header set for the given
// key, or nil when no key exists.
func (client *Client) signedHeaders(key *installkey.InstallationKey) (http.Header, error) {
	if key == nil {
		return nil, nil
	}
	signed, err := installkey.SignRequest(key, client.clock.Now())
	if err != nil {
		return nil, err
	}
	header := make(http.Header)
	signed.Apply(header)
	return header, nil
}
