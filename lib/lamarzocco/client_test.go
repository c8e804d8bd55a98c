// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

package lamarzocco

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lungo-project/lungo/lib/clock"
	"github.com/lungo-project/lungo/lib/credentials"
	"github.com/lungo-project/lungo/lib/installkey"
)

var testEpoch = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

// newTestClient creates a Client backed by the given httptest.Server,
// authenticated with opaque test tokens and a fresh installation key.
func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()

	key, err := installkey.Generate(installkey.NewInstallationID())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	client, err := NewClient(Config{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Clock:      clock.Fake(testEpoch),
		Credentials: &credentials.Credentials{
			Username:        "barista@example.com",
			AccessToken:     "test-access-token",
			RefreshToken:    "test-refresh-token",
			InstallationKey: key,
		},
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

// newAnonymousClient creates a Client without credentials, for the
// register and signin flows.
func newAnonymousClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient(Config{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Clock:      clock.Fake(testEpoch),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(Config{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", client.baseURL, DefaultBaseURL)
	}
}

func TestNewClientCallbackRequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{
		OnTokensRefreshed: func(*credentials.Credentials) error { return nil },
	})
	if err == nil {
		t.Fatal("expected error for callback without credentials")
	}
}

func TestRegister(t *testing.T) {
	key, err := installkey.Generate(installkey.NewInstallationID())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	wantProof, err := installkey.RegistrationProof(key)
	if err != nil {
		t.Fatalf("RegistrationProof: %v", err)
	}
	wantPublicKey, err := key.PublicKeyBase64()
	if err != nil {
		t.Fatalf("PublicKeyBase64: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/init" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get(installkey.HeaderInstallationID); got != key.InstallationID {
			t.Errorf("installation id header = %q, want %q", got, key.InstallationID)
		}
		if got := r.Header.Get(installkey.HeaderProof); got != wantProof {
			t.Errorf("proof header = %q, want %q", got, wantProof)
		}

		var body struct {
			PK string `json:"pk"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		if body.PK != wantPublicKey {
			t.Errorf("pk = %q, want %q", body.PK, wantPublicKey)
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newAnonymousClient(t, server)
	if err := client.Register(context.Background(), key); err != nil {
		t.Fatalf("Register: %v", err)
	}
}

func TestLogin(t *testing.T) {
	key, err := installkey.Generate(installkey.NewInstallationID())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/signin" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		// The signed header set accompanies the login when a key
		// exists.
		for _, name := range []string{
			installkey.HeaderInstallationID,
			installkey.HeaderTimestamp,
			installkey.HeaderNonce,
			installkey.HeaderSignature,
		} {
			if r.Header.Get(name) == "" {
				t.Errorf("missing header %s", name)
			}
		}

		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		if body.Username != "barista@example.com" || body.Password != "hunter2" {
			t.Errorf("credentials = %q / %q", body.Username, body.Password)
		}

		json.NewEncoder(w).Encode(map[string]string{
			"accessToken":  "new-access",
			"refreshToken": "new-refresh",
		})
	}))
	defer server.Close()

	client := newAnonymousClient(t, server)
	creds, err := client.Login(context.Background(), "barista@example.com", "hunter2", key)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if creds.Username != "barista@example.com" {
		t.Errorf("Username = %q", creds.Username)
	}
	if creds.AccessToken != "new-access" || creds.RefreshToken != "new-refresh" {
		t.Error("token pair not carried from response")
	}
	if creds.InstallationKey != key {
		t.Error("installation key not carried into credentials")
	}
}

func TestLoginBadPassword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
	}))
	defer server.Close()

	client := newAnonymousClient(t, server)
	_, err := client.Login(context.Background(), "barista@example.com", "wrong", nil)
	if err == nil {
		t.Fatal("Login with bad password succeeded")
	}
	if !strings.Contains(err.Error(), "invalid username or password") {
		t.Errorf("error %q is not the friendly credential message", err)
	}
}

func TestRefreshRecoversUsernameFromJWT(t *testing.T) {
	accessToken := makeJWT("barista@example.com", testEpoch.Add(time.Hour))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/refreshtoken" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		if body.RefreshToken != "old-refresh" {
			t.Errorf("refreshToken = %q", body.RefreshToken)
		}

		json.NewEncoder(w).Encode(map[string]string{
			"accessToken":  accessToken,
			"refreshToken": "rotated-refresh",
		})
	}))
	defer server.Close()

	client := newAnonymousClient(t, server)
	creds, err := client.Refresh(context.Background(), "old-refresh", nil)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if creds.Username != "barista@example.com" {
		t.Errorf("Username = %q, want recovered from JWT", creds.Username)
	}
	if creds.RefreshToken != "rotated-refresh" {
		t.Errorf("RefreshToken = %q", creds.RefreshToken)
	}
}

func TestMachinesBareArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/things" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-access-token" {
			t.Errorf("Authorization = %q", got)
		}
		if r.Header.Get(installkey.HeaderSignature) == "" {
			t.Error("missing request signature header")
		}
		w.Write([]byte(`[{"serialNumber":"SN123","name":"Kitchen","modelName":"Linea Micra","connected":true}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	machines, err := client.Machines(context.Background())
	if err != nil {
		t.Fatalf("Machines: %v", err)
	}
	if len(machines) != 1 {
		t.Fatalf("got %d machines, want 1", len(machines))
	}
	if machines[0].SerialNumber != "SN123" || !machines[0].Connected {
		t.Errorf("machine = %+v", machines[0])
	}
}

func TestMachinesWrappedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"things":[{"serialNumber":"SN123","connected":false}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	machines, err := client.Machines(context.Background())
	if err != nil {
		t.Fatalf("Machines: %v", err)
	}
	if len(machines) != 1 || machines[0].SerialNumber != "SN123" {
		t.Errorf("machines = %+v", machines)
	}
}

func TestDashboard(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/things/SN123/dashboard" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"widgets":[
			{"code":"CMMachineStatus","output":{"status":"PoweredOn","mode":"BrewingMode"}},
			{"code":"CMCoffeeBoiler","output":{"status":"Ready"}}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	status, err := client.Dashboard(context.Background(), "SN123")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if !status.IsOn() || !status.IsReady() {
		t.Errorf("IsOn = %v, IsReady = %v, want both true", status.IsOn(), status.IsReady())
	}
}

func TestSetPower(t *testing.T) {
	var gotModes []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/things/SN123/command/CoffeeMachineChangeMode" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body struct {
			Mode string `json:"mode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		gotModes = append(gotModes, body.Mode)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	if err := client.SetPower(context.Background(), "SN123", true); err != nil {
		t.Fatalf("SetPower(on): %v", err)
	}
	if err := client.SetPower(context.Background(), "SN123", false); err != nil {
		t.Fatalf("SetPower(off): %v", err)
	}

	if len(gotModes) != 2 || gotModes[0] != "BrewingMode" || gotModes[1] != "StandBy" {
		t.Errorf("modes = %v, want [BrewingMode StandBy]", gotModes)
	}
}

func TestAPIErrorParsing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{
			"error":   "not_found",
			"message": "thing not found",
		})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.Dashboard(context.Background(), "MISSING")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound = false for %v", err)
	}

	var apiError *APIError
	if !errors.As(err, &apiError) {
		t.Fatalf("error %v is not an *APIError", err)
	}
	if apiError.Message != "thing not found" {
		t.Errorf("Message = %q", apiError.Message)
	}
}

func TestMachinesLargeResponseNotTruncated(t *testing.T) {
	// Well past the error-body cap; only error bodies are truncated.
	location := strings.Repeat("x", 128*1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Machine{
			{SerialNumber: "MR123456", Name: "Kitchen", Location: location},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	machines, err := client.Machines(context.Background())
	if err != nil {
		t.Fatalf("Machines: %v", err)
	}
	if len(machines) != 1 {
		t.Fatalf("got %d machines, want 1", len(machines))
	}
	if machines[0].Location != location {
		t.Errorf("location truncated: got %d bytes, want %d", len(machines[0].Location), len(location))
	}
}
