// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package keys

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v4"

	"github.com/stacklok/dcrgate/pkg/config"
	"github.com/stacklok/dcrgate/pkg/logger"
)

// KeyProvider provides the keys that sign and verify registration access
// tokens.
type KeyProvider interface {
	// SigningKey returns the key new tokens are signed with.
	SigningKey(ctx context.Context) (*SigningKeyData, error)

	// PublicKeys returns every key a token may have been signed with. The
	// signing key comes first.
	PublicKeys(ctx context.Context) ([]*PublicKeyData, error)
}

// JWKS returns the provider's public keys as a JSON Web Key Set.
func JWKS(ctx context.Context, p KeyProvider) (*jose.JSONWebKeySet, error) {
	pubKeys, err := p.PublicKeys(ctx)
	if err != nil {
		return nil, err
	}
	set := &jose.JSONWebKeySet{Keys: make([]jose.JSONWebKey, 0, len(pubKeys))}
	for _, k := range pubKeys {
		set.Keys = append(set.Keys, k.JWK())
	}
	return set, nil
}

// keyRing is an ordered, immutable list of keys. The first key signs.
type keyRing []*SigningKeyData

func (r keyRing) signingKey() *SigningKeyData {
	return r[0].clone()
}

func (r keyRing) publicKeys() []*PublicKeyData {
	out := make([]*PublicKeyData, len(r))
	for i, k := range r {
		out[i] = k.public()
	}
	return out
}

// FileProvider serves keys read from PEM files at construction time. Fallback
// keys keep tokens signed before a rotation verifiable.
type FileProvider struct {
	ring keyRing
}

// NewFileProvider loads cfg.SigningKeyFile and cfg.FallbackKeyFiles from
// cfg.KeyDir.
func NewFileProvider(cfg config.KeysConfig) (*FileProvider, error) {
	if cfg.SigningKeyFile == "" {
		return nil, fmt.Errorf("signing key file is required")
	}

	files := append([]string{cfg.SigningKeyFile}, cfg.FallbackKeyFiles...)
	ring := make(keyRing, 0, len(files))
	for i, name := range files {
		key, err := loadKeyFromFile(filepath.Join(cfg.KeyDir, name))
		if err != nil {
			if i == 0 {
				return nil, fmt.Errorf("failed to load signing key: %w", err)
			}
			return nil, fmt.Errorf("failed to load fallback key %s: %w", name, err)
		}
		ring = append(ring, key)
	}
	return &FileProvider{ring: ring}, nil
}

func loadKeyFromFile(path string) (*SigningKeyData, error) {
	signer, err := LoadSigningKey(path)
	if err != nil {
		return nil, err
	}
	algorithm, err := DeriveAlgorithm(signer)
	if err != nil {
		return nil, err
	}
	kid, err := DeriveKeyID(signer)
	if err != nil {
		return nil, err
	}
	return &SigningKeyData{KeyID: kid, Algorithm: algorithm, Key: signer, CreatedAt: time.Now()}, nil
}

// SigningKey returns a copy of the primary key.
func (p *FileProvider) SigningKey(context.Context) (*SigningKeyData, error) {
	return p.ring.signingKey(), nil
}

// PublicKeys returns the primary key followed by the fallback keys.
func (p *FileProvider) PublicKeys(context.Context) ([]*PublicKeyData, error) {
	return p.ring.publicKeys(), nil
}

// GeneratingProvider creates an ephemeral key on first use. Registration
// access tokens it signed stop verifying after a restart.
type GeneratingProvider struct {
	generate func() (keyRing, error)
}

// NewGeneratingProvider creates a provider for algorithm (ES256, ES384 or
// ES512). An empty algorithm selects DefaultAlgorithm.
func NewGeneratingProvider(algorithm string) *GeneratingProvider {
	if algorithm == "" {
		algorithm = DefaultAlgorithm
	}
	return &GeneratingProvider{
		generate: sync.OnceValues(func() (keyRing, error) {
			key, err := generateKey(algorithm)
			if err != nil {
				return nil, err
			}
			logger.Warnw("generated ephemeral signing key, registration access tokens will not survive a restart",
				"algorithm", key.Algorithm,
				"kid", key.KeyID,
			)
			return keyRing{key}, nil
		}),
	}
}

// SigningKey returns the generated key.
func (p *GeneratingProvider) SigningKey(context.Context) (*SigningKeyData, error) {
	ring, err := p.generate()
	if err != nil {
		return nil, err
	}
	return ring.signingKey(), nil
}

// PublicKeys returns the public half of the generated key.
func (p *GeneratingProvider) PublicKeys(context.Context) ([]*PublicKeyData, error) {
	ring, err := p.generate()
	if err != nil {
		return nil, err
	}
	return ring.publicKeys(), nil
}

var curves = map[string]elliptic.Curve{
	"ES256": elliptic.P256(),
	"ES384": elliptic.P384(),
	"ES512": elliptic.P521(),
}

func generateKey(algorithm string) (*SigningKeyData, error) {
	curve, ok := curves[algorithm]
	if !ok {
		return nil, fmt.Errorf("unsupported algorithm for key generation: %s", algorithm)
	}
	private, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	kid, err := DeriveKeyID(private)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key ID: %w", err)
	}
	return &SigningKeyData{KeyID: kid, Algorithm: algorithm, Key: private, CreatedAt: time.Now()}, nil
}

var (
	_ KeyProvider = (*FileProvider)(nil)
	_ KeyProvider = (*GeneratingProvider)(nil)
)
