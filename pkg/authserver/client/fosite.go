// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/ory/fosite"
)

const schemeHTTP = "http"

// GetID returns the OAuth client_id.
func (c *Client) GetID() string { return c.ClientID }

// GetHashedSecret returns the active bcrypt secret, which is the only stored
// form fosite's default hasher can compare. Clients with NONE or ARGON2ID
// secrets authenticate through the secrets manager instead.
func (c *Client) GetHashedSecret() []byte {
	now := time.Now()
	for i := range c.Secrets {
		s := &c.Secrets[i]
		if s.Expired(now) {
			continue
		}
		if settings, ok := c.SettingsByID(s.SettingsID); ok && settings.Algorithm == SecretAlgorithmBcrypt {
			return []byte(s.Secret)
		}
	}
	return nil
}

// GetRedirectURIs returns the registered redirect URIs.
func (c *Client) GetRedirectURIs() []string { return c.RedirectURIs }

// GetGrantTypes returns the registered grant types.
func (c *Client) GetGrantTypes() fosite.Arguments { return c.GrantTypes }

// GetResponseTypes returns the registered response types.
func (c *Client) GetResponseTypes() fosite.Arguments { return c.ResponseTypes }

// GetScopes returns the registered scopes.
func (c *Client) GetScopes() fosite.Arguments { return c.Scopes }

// IsPublic reports whether the client authenticates without credentials.
func (c *Client) IsPublic() bool { return c.TokenEndpointAuthMethod == AuthMethodNone }

// GetAudience returns the client's audience, which is its own client_id.
func (c *Client) GetAudience() fosite.Arguments { return fosite.Arguments{c.ClientID} }

// MatchRedirectURI checks if the given redirect URI matches one of the client's
// registered redirect URIs, with RFC 8252 Section 7.3 loopback support: for
// loopback URIs the port may vary while scheme, host, path and query must match.
func (c *Client) MatchRedirectURI(requestedURI string) bool {
	for _, registeredURI := range c.RedirectURIs {
		if requestedURI == registeredURI || matchesAsLoopback(requestedURI, registeredURI) {
			return true
		}
	}
	return false
}

func matchesAsLoopback(requestedURI, registeredURI string) bool {
	requested, err := url.Parse(requestedURI)
	if err != nil {
		return false
	}
	registered, err := url.Parse(registeredURI)
	if err != nil {
		return false
	}

	if requested.Scheme != schemeHTTP || registered.Scheme != schemeHTTP {
		return false
	}
	if !IsLoopbackHost(requested.Hostname()) || !IsLoopbackHost(registered.Hostname()) {
		return false
	}
	if !strings.EqualFold(requested.Hostname(), registered.Hostname()) {
		return false
	}
	return requested.Path == registered.Path && requested.RawQuery == registered.RawQuery
}

// IsLoopbackHost checks if the hostname is "localhost" or a loopback IP.
func IsLoopbackHost(hostname string) bool {
	if strings.EqualFold(hostname, "localhost") {
		return true
	}
	ip := net.ParseIP(hostname)
	return ip != nil && ip.IsLoopback()
}

// Compile-time interface compliance check
var _ fosite.Client = (*Client)(nil)
