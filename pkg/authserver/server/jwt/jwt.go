// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package jwt signs and verifies registration access tokens with the keys
// of a keys.KeyProvider.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"slices"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/stacklok/dcrgate/pkg/authserver/server/keys"
)

// Common errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrUnknownKeyID = errors.New("unknown key id")
	ErrMissingKeyID = errors.New("token header missing kid")
)

// Claims are the claims of a registration access token.
type Claims struct {
	jwtv5.RegisteredClaims

	// Domain is the tenant that owns the client.
	Domain string `json:"domain,omitempty"`

	// Scope is a space-separated scope list.
	Scope string `json:"scope,omitempty"`
}

// Signer signs and verifies tokens with the provider's keys.
type Signer struct {
	keys keys.KeyProvider
}

// NewSigner creates a Signer backed by provider.
func NewSigner(provider keys.KeyProvider) *Signer {
	return &Signer{keys: provider}
}

// Sign signs claims with the current signing key. The kid header names the key.
func (s *Signer) Sign(ctx context.Context, claims *Claims) (string, error) {
	key, err := s.keys.SigningKey(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get signing key: %w", err)
	}

	method := jwtv5.GetSigningMethod(key.Algorithm)
	if method == nil {
		return "", fmt.Errorf("unsupported signing algorithm: %s", key.Algorithm)
	}

	token := jwtv5.NewWithClaims(method, claims)
	token.Header["kid"] = key.KeyID
	token.Header["typ"] = "JWT"

	signed, err := token.SignedString(key.Key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and time claims of raw and returns its claims.
// Tokens signed with any published key verify, so tokens survive rotation
// while the old key is kept as a fallback.
func (s *Signer) Verify(ctx context.Context, raw string, opts ...jwtv5.ParserOption) (*Claims, error) {
	pubKeys, err := s.keys.PublicKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get public keys: %w", err)
	}

	var methods []string
	for _, k := range pubKeys {
		if !slices.Contains(methods, k.Algorithm) {
			methods = append(methods, k.Algorithm)
		}
	}

	keyFunc := func(token *jwtv5.Token) (any, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, ErrMissingKeyID
		}
		for _, k := range pubKeys {
			if k.KeyID == kid {
				if token.Method.Alg() != k.Algorithm {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return k.PublicKey, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownKeyID, kid)
	}

	claims := &Claims{}
	opts = append([]jwtv5.ParserOption{jwtv5.WithValidMethods(methods), jwtv5.WithExpirationRequired()}, opts...)
	token, err := jwtv5.ParseWithClaims(raw, claims, keyFunc, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
