// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

// Package credentials persists the operator's cloud session state: the
// username, the OAuth token pair, and the installation key. Stored at
// the well-known path returned by FilePath and loaded automatically by
// commands that talk to the cloud. Analogous to SSH keys — set up once
// via "lungo login", then transparent.
package credentials

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lungo-project/lungo/lib/installkey"
)

// Credentials is the on-disk session state. The installation key is
// created on first login and survives logout: the vendor ties it to
// the registered installation, not to the token pair.
type Credentials struct {
	// Username is the account email the tokens were issued for.
	Username string `yaml:"username,omitempty"`

	// AccessToken is the short-lived bearer token for API calls.
	AccessToken string `yaml:"access_token,omitempty"`

	// RefreshToken exchanges for a fresh access token when the
	// current one expires.
	RefreshToken string `yaml:"refresh_token,omitempty"`

	// InstallationKey is the registered signing identity. nil until
	// the first login registers one.
	InstallationKey *installkey.InstallationKey `yaml:"installation_key,omitempty"`
}

// FilePath returns the path to the credentials file. Checks the
// LUNGO_CREDENTIALS_FILE environment variable first, then falls back
// to ~/.config/lungo/credentials.yaml (honoring XDG_CONFIG_HOME).
// Errors when no location can be resolved: the file holds a private
// key, so guessing a world-shared path is worse than failing.
func FilePath() (string, error) {
	if envPath := os.Getenv("LUNGO_CREDENTIALS_FILE"); envPath != "" {
		return envPath, nil
	}

	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locating credentials file: %w (set LUNGO_CREDENTIALS_FILE explicitly)", err)
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "lungo", "credentials.yaml"), nil
}

// Load reads the credentials from the well-known path. Returns a clear
// error directing the user to "lungo login" if no session exists.
func Load() (*Credentials, error) {
	path, err := FilePath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads credentials from a specific file path.
func LoadFrom(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("not logged in (no credentials at %s) — run \"lungo login\" first", path)
		}
		return nil, fmt.Errorf("reading credentials file %s: %w", path, err)
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parsing credentials file %s: %w", path, err)
	}

	if creds.AccessToken == "" || creds.RefreshToken == "" {
		return nil, fmt.Errorf("credentials file %s has no token pair — run \"lungo login\" again", path)
	}

	return &creds, nil
}

// Save writes the credentials to the well-known path. The parent
// directory is created with mode 0700; the file is written with mode
// 0600 since it holds tokens and a private key.
func Save(creds *Credentials) error {
	path, err := FilePath()
	if err != nil {
		return err
	}
	return SaveTo(creds, path)
}

// SaveTo writes credentials to a specific file path.
func SaveTo(creds *Credentials, path string) error {
	data, err := yaml.Marshal(creds)
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0700); err != nil {
		return fmt.Errorf("creating credentials directory %s: %w", directory, err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing credentials file %s: %w", path, err)
	}

	return nil
}

// Clear removes the token pair and username while preserving the
// installation key, then rewrites the file. Deletes the file entirely
// when no installation key exists either. Clearing a session that was
// never established is not an error.
func Clear() error {
	path, err := FilePath()
	if err != nil {
		return err
	}
	return ClearAt(path)
}

// ClearAt clears the session state at a specific file path.
func ClearAt(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading credentials file %s: %w", path, err)
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		// An unreadable file holds nothing worth preserving.
		return os.Remove(path)
	}

	if creds.InstallationKey == nil {
		return os.Remove(path)
	}

	creds.Username = ""
	creds.AccessToken = ""
	creds.RefreshToken = ""
	return SaveTo(&creds, path)
}

// LoadInstallationKey returns the persisted installation key, or nil
// when none has been registered yet. A missing credentials file is not
// an error: the key is simply absent.
func LoadInstallationKey() (*installkey.InstallationKey, error) {
	path, err := FilePath()
	if err != nil {
		return nil, err
	}
	return LoadInstallationKeyFrom(path)
}

// LoadInstallationKeyFrom reads the installation key from a specific
// file path.
func LoadInstallationKeyFrom(path string) (*installkey.InstallationKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading credentials file %s: %w", path, err)
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parsing credentials file %s: %w", path, err)
	}
	return creds.InstallationKey, nil
}

// SaveInstallationKey stores the installation key, preserving any
// existing token pair in the file.
func SaveInstallationKey(key *installkey.InstallationKey) error {
	path, err := FilePath()
	if err != nil {
		return err
	}
	return SaveInstallationKeyTo(key, path)
}

// SaveInstallationKeyTo stores the installation key at a specific file
// path.
func SaveInstallationKeyTo(key *installkey.InstallationKey, path string) error {
	creds := &Credentials{}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, creds); err != nil {
			return fmt.Errorf("parsing credentials file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("reading credentials file %s: %w", path, err)
	}

	creds.InstallationKey = key
	return SaveTo(creds, path)
}
