// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package registration implements OAuth 2.0 Dynamic Client Registration per
// RFC 7591 and the client configuration endpoint of RFC 7592: request
// validation, template provisioning, registration access tokens and the
// service that ties them to storage.
package registration

//go:generate mockgen -destination=mocks/mock_registration.go -package=mocks -source=interfaces.go JWTSigner,JWKSFetcher,SectorVerifier

import (
	"context"

	"github.com/go-jose/go-jose/v4"

	"github.com/stacklok/dcrgate/pkg/authserver/server/jwt"
)

// JWTSigner signs registration access tokens.
type JWTSigner interface {
	Sign(ctx context.Context, claims *jwt.Claims) (string, error)
}

// JWKSFetcher resolves the key set published at a jwks_uri.
type JWKSFetcher interface {
	GetKeys(ctx context.Context, uri string) (*jose.JSONWebKeySet, error)
}

// SectorVerifier checks redirect URIs against a sector_identifier_uri document.
type SectorVerifier interface {
	Verify(ctx context.Context, sectorIdentifierURI string, redirectURIs []string) error
}
