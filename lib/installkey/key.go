// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

package installkey

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ErrKeyDecoding is returned when persisted key material fails to
// parse back into valid cryptographic state (corrupted or
// foreign-format credential file). The caller should surface this as
// "credentials unreadable — re-register" rather than attempt recovery.
var ErrKeyDecoding = errors.New("installkey: persisted key material is unreadable")

// InstallationKey is the per-installation cryptographic identity:
// a P-256 ECDSA keypair and a 32-byte proof secret, bound to a stable
// installation ID. Immutable after creation; recomputed only when the
// installation is re-provisioned.
type InstallationKey struct {
	// InstallationID identifies this installation. Client-generated
	// (lowercase UUID v4) or server-assigned. Stable for the
	// installation's lifetime.
	InstallationID string

	// Secret is the 32-byte proof key, derived deterministically from
	// the installation ID and the public key at generation time.
	Secret []byte

	// PrivateKey is the P-256 ECDSA signing key. The public key is
	// always derived from it, never stored independently.
	PrivateKey *ecdsa.PrivateKey
}

// NewInstallationID returns a fresh random installation identifier:
// a lowercase UUID v4. Used when no server-assigned ID exists yet.
// The ID is purely an identifier, not bound to any key material.
func NewInstallationID() string {
	return strings.ToLower(uuid.NewString())
}

// Generate derives a fresh installation identity for the given
// installation ID: a random P-256 keypair from the process CSPRNG and
// a 32-byte secret computed as
//
//	SHA-256(id + "." + base64(spkiDER) + "." + base64(SHA-256(id)))
//
// where spkiDER is the public key's DER SubjectPublicKeyInfo encoding.
// The only failure mode is entropy exhaustion, which is fatal.
func Generate(installationID string) (*InstallationKey, error) {
	private, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("installkey: generating P-256 keypair: %w", err)
	}

	publicDER, err := x509.MarshalPKIXPublicKey(&private.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("installkey: encoding public key: %w", err)
	}

	return &InstallationKey{
		InstallationID: installationID,
		Secret:         deriveSecret(installationID, publicDER),
		PrivateKey:     private,
	}, nil
}

// deriveSecret computes the 32-byte proof secret from the installation
// ID and the public key's DER SubjectPublicKeyInfo bytes. The triple
// format matches the vendor's reference client exactly.
func deriveSecret(installationID string, publicDER []byte) []byte {
	instHash := sha256.Sum256([]byte(installationID))
	triple := installationID +
		"." + base64.StdEncoding.EncodeToString(publicDER) +
		"." + base64.StdEncoding.EncodeToString(instHash[:])
	secret := sha256.Sum256([]byte(triple))
	return secret[:]
}

// PublicKeyDER returns the public key encoded as a DER
// SubjectPublicKeyInfo structure. This exact encoding (not raw
// uncompressed-point bytes) is what the vendor registers and what the
// secret derivation hashes.
func (k *InstallationKey) PublicKeyDER() ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(&k.PrivateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("installkey: encoding public key: %w", err)
	}
	return der, nil
}

// PublicKeyBase64 returns the base64 (standard, padded) encoding of
// [InstallationKey.PublicKeyDER]. Sent as the "pk" field during
// registration.
func (k *InstallationKey) PublicKeyBase64() (string, error) {
	der, err := k.PublicKeyDER()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

// BaseString returns the registration proof input:
// installationID + "." + base64(SHA-256(publicKeyDER)).
func (k *InstallationKey) BaseString() (string, error) {
	der, err := k.PublicKeyDER()
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(der)
	return k.InstallationID + "." + base64.StdEncoding.EncodeToString(hash[:]), nil
}

// keyRecord is the persisted YAML form: secret and private key as
// base64 strings, installation ID as plain text.
type keyRecord struct {
	Secret         string `yaml:"secret"`
	PrivateKey     string `yaml:"private_key"`
	InstallationID string `yaml:"installation_id"`
}

// MarshalYAML encodes the key for the credential store: the secret as
// base64 and the private key as base64 of its PKCS#8 DER encoding.
func (k InstallationKey) MarshalYAML() (any, error) {
	privateDER, err := x509.MarshalPKCS8PrivateKey(k.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("installkey: encoding private key: %w", err)
	}
	return keyRecord{
		Secret:         base64.StdEncoding.EncodeToString(k.Secret),
		PrivateKey:     base64.StdEncoding.EncodeToString(privateDER),
		InstallationID: k.InstallationID,
	}, nil
}

// UnmarshalYAML reconstructs a key from its persisted form. Any
// malformed field yields [ErrKeyDecoding]; partially-decoded keys are
// never returned.
func (k *InstallationKey) UnmarshalYAML(value *yaml.Node) error {
	var record keyRecord
	if err := value.Decode(&record); err != nil {
		return fmt.Errorf("%w: %v", ErrKeyDecoding, err)
	}

	secret, err := base64.StdEncoding.DecodeString(record.Secret)
	if err != nil {
		return fmt.Errorf("%w: secret: %v", ErrKeyDecoding, err)
	}
	if len(secret) != SecretSize {
		return fmt.Errorf("%w: secret has %d bytes, want %d", ErrKeyDecoding, len(secret), SecretSize)
	}

	privateDER, err := base64.StdEncoding.DecodeString(record.PrivateKey)
	if err != nil {
		return fmt.Errorf("%w: private key: %v", ErrKeyDecoding, err)
	}
	parsed, err := x509.ParsePKCS8PrivateKey(privateDER)
	if err != nil {
		return fmt.Errorf("%w: private key: %v", ErrKeyDecoding, err)
	}
	private, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return fmt.Errorf("%w: private key is %T, want ECDSA", ErrKeyDecoding, parsed)
	}
	if private.Curve != elliptic.P256() {
		return fmt.Errorf("%w: private key curve is %s, want P-256", ErrKeyDecoding, private.Curve.Params().Name)
	}

	k.Secret = secret
	k.PrivateKey = private
	k.InstallationID = record.InstallationID
	return nil
}
