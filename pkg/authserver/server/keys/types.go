// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package keys provides the key material that signs registration access
// tokens. Keys are loaded from PEM files or generated at startup, and their
// public halves are published as a JWKS.
package keys

import (
	"crypto"
	"time"

	"github.com/go-jose/go-jose/v4"
)

// DefaultAlgorithm is the signing algorithm for auto-generated keys.
const DefaultAlgorithm = "ES256"

// SigningKeyData is a private signing key with its metadata.
type SigningKeyData struct {
	// KeyID is the RFC 7638 thumbprint of the public key.
	KeyID string

	// Algorithm is the JWS algorithm (e.g., "ES256", "RS256").
	Algorithm string

	Key       crypto.Signer
	CreatedAt time.Time
}

// PublicKeyData is the public half of a signing key, safe to publish.
type PublicKeyData struct {
	KeyID     string
	Algorithm string
	PublicKey crypto.PublicKey
	CreatedAt time.Time
}

// JWK converts the key to its JSON Web Key form for the JWKS endpoint.
func (p *PublicKeyData) JWK() jose.JSONWebKey {
	return jose.JSONWebKey{
		Key:       p.PublicKey,
		KeyID:     p.KeyID,
		Algorithm: p.Algorithm,
		Use:       "sig",
	}
}

func (k *SigningKeyData) clone() *SigningKeyData {
	out := *k
	return &out
}

func (k *SigningKeyData) public() *PublicKeyData {
	return &PublicKeyData{
		KeyID:     k.KeyID,
		Algorithm: k.Algorithm,
		PublicKey: k.Key.Public(),
		CreatedAt: k.CreatedAt,
	}
}
