// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package registration

import (
	"context"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/stacklok/dcrgate/pkg/logger"
	"github.com/stacklok/dcrgate/pkg/networking"
)

// SectorIdentifierVerifier fetches sector_identifier_uri documents (a JSON
// array of redirect URIs, OIDC Core Section 8.1) and checks that every
// requested redirect URI is listed.
type SectorIdentifierVerifier struct {
	client  networking.HTTPClient
	timeout time.Duration
}

// NewSectorIdentifierVerifier creates a verifier. A zero timeout leaves the
// fetch bounded only by ctx.
func NewSectorIdentifierVerifier(client networking.HTTPClient, timeout time.Duration) *SectorIdentifierVerifier {
	return &SectorIdentifierVerifier{client: client, timeout: timeout}
}

// Verify fetches sectorIdentifierURI and checks redirectURIs against it.
func (v *SectorIdentifierVerifier) Verify(ctx context.Context, sectorIdentifierURI string, redirectURIs []string) error {
	u, err := url.Parse(sectorIdentifierURI)
	if err != nil || !strings.EqualFold(u.Scheme, "https") {
		return NewInvalidClientMetadata("Scheme must be https for sector_identifier_uri : %s", sectorIdentifierURI)
	}

	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	allowed, err := networking.GetJSON[[]string](ctx, v.client, sectorIdentifierURI,
		networking.WithoutContentTypeValidation())
	if err != nil {
		logger.Debugw("failed to fetch sector identifier", "uri", sectorIdentifierURI, "error", err)
		return NewInvalidClientMetadata("Unable to parse sector_identifier_uri : %s", sectorIdentifierURI)
	}

	var missing []string
	for _, uri := range redirectURIs {
		if !slices.Contains(allowed, uri) {
			missing = append(missing, uri)
		}
	}
	if len(missing) > 0 {
		return NewInvalidRedirectURI(
			"redirect uris are not allowed according to sector_identifier_uri: %s", strings.Join(missing, " "))
	}
	return nil
}
