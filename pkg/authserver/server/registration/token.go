// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package registration

import (
	"context"
	"fmt"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/stacklok/dcrgate/pkg/authserver/client"
	"github.com/stacklok/dcrgate/pkg/authserver/server/jwt"
)

// RegistrationScope is the scope carried by registration access tokens.
const RegistrationScope = "dcr"

// TokenIssuer mints registration access tokens (RFC 7592 Section 3).
type TokenIssuer struct {
	signer JWTSigner
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// TokenIssuerOption configures a TokenIssuer.
type TokenIssuerOption func(*TokenIssuer)

// WithTokenClock sets the clock used for iat and exp.
func WithTokenClock(now func() time.Time) TokenIssuerOption {
	return func(t *TokenIssuer) {
		t.now = now
	}
}

// NewTokenIssuer creates a TokenIssuer. issuer is the server base URL that
// domain base paths are appended to.
func NewTokenIssuer(signer JWTSigner, issuer string, ttl time.Duration, opts ...TokenIssuerOption) *TokenIssuer {
	t := &TokenIssuer{
		signer: signer,
		issuer: strings.TrimSuffix(issuer, "/"),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Issuer returns the issuer URL of the domain served at basePath.
func (t *TokenIssuer) Issuer(basePath string) string {
	return t.issuer + basePath
}

// RegistrationEndpoint returns the registration endpoint of the domain served
// at basePath.
func (t *TokenIssuer) RegistrationEndpoint(basePath string) string {
	return t.Issuer(basePath) + "/register"
}

// Issue signs a new registration access token for c and stores it, along
// with the client configuration URI, on c.
func (t *TokenIssuer) Issue(ctx context.Context, basePath string, c *client.Client) error {
	now := t.now()
	claims := &jwt.Claims{
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    t.Issuer(basePath),
			Subject:   c.ClientID,
			Audience:  jwtv5.ClaimStrings{c.ClientID},
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(t.ttl)),
			ID:        uuid.NewString(),
		},
		Domain: c.DomainID,
		Scope:  RegistrationScope,
	}

	token, err := t.signer.Sign(ctx, claims)
	if err != nil {
		return fmt.Errorf("failed to sign registration access token: %w", err)
	}

	c.RegistrationAccessToken = token
	c.RegistrationClientURI = t.RegistrationEndpoint(basePath) + "/" + c.ClientID
	return nil
}
