// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package client defines the registered OAuth client model together with the
// tenant (domain) entities that registration reads.
package client

import (
	"slices"
	"time"

	"github.com/go-jose/go-jose/v4"
)

// Secret hash algorithms.
const (
	// SecretAlgorithmNone stores the secret value as-is; it is compared in
	// constant time and can be returned to the client.
	SecretAlgorithmNone = "NONE"

	// SecretAlgorithmBcrypt stores a bcrypt hash.
	SecretAlgorithmBcrypt = "BCRYPT"

	// SecretAlgorithmArgon2id stores an argon2id PHC string.
	SecretAlgorithmArgon2id = "ARGON2ID"
)

// Token endpoint authentication methods (RFC 7591 Section 2, RFC 8705).
const (
	AuthMethodNone                    = "none"
	AuthMethodClientSecretBasic       = "client_secret_basic"
	AuthMethodClientSecretPost        = "client_secret_post"
	AuthMethodClientSecretJWT         = "client_secret_jwt"
	AuthMethodPrivateKeyJWT           = "private_key_jwt"
	AuthMethodTLSClientAuth           = "tls_client_auth"
	AuthMethodSelfSignedTLSClientAuth = "self_signed_tls_client_auth"
)

// Subject identifier types (OIDC Core Section 8).
const (
	SubjectTypePublic   = "public"
	SubjectTypePairwise = "pairwise"
)

// DefaultSecretName is the name given to secrets issued by registration.
const DefaultSecretName = "Default"

// RequiresSecret reports whether an auth method authenticates with a shared secret.
// An empty method means the RFC 7591 default, client_secret_basic.
func RequiresSecret(method string) bool {
	switch method {
	case "", AuthMethodClientSecretBasic, AuthMethodClientSecretPost, AuthMethodClientSecretJWT:
		return true
	default:
		return false
	}
}

// SecretExpiration is a secret lifetime policy. A nil policy, or one that is
// disabled, means secrets never expire.
type SecretExpiration struct {
	Enabled bool          `json:"enabled"`
	Expiry  time.Duration `json:"expiry"`
}

// ExpiresAt returns the expiry for a secret created at createdAt, or nil.
func (e *SecretExpiration) ExpiresAt(createdAt time.Time) *time.Time {
	if e == nil || !e.Enabled || e.Expiry <= 0 {
		return nil
	}
	t := createdAt.Add(e.Expiry)
	return &t
}

// SecretSettings describes how secret values bound to it are stored.
// ID is content-addressed over (Algorithm, Properties).
type SecretSettings struct {
	ID         string         `json:"id"`
	Algorithm  string         `json:"algorithm"`
	Properties map[string]any `json:"properties,omitempty"`
}

// ClientSecret is one stored credential of a client.
type ClientSecret struct {
	ID         string     `json:"id"`
	Name       string     `json:"name,omitempty"`
	Secret     string     `json:"secret"`
	SettingsID string     `json:"settings_id"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the secret is past its expiry at now.
func (s *ClientSecret) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// Client is a tenant-scoped OAuth/OIDC application.
type Client struct {
	// ID is the internal identifier. Template clients are addressed by it
	// through software_id.
	ID string `json:"id"`

	// ClientID is the OAuth client_id.
	ClientID string `json:"client_id"`

	// DomainID is the owning tenant.
	DomainID string `json:"domain"`

	// ClientSecret is the legacy single plaintext secret.
	ClientSecret string `json:"client_secret,omitempty"`

	// Secrets is nil for clients that never had a secret list.
	Secrets        []ClientSecret   `json:"client_secrets"`
	SecretSettings []SecretSettings `json:"secret_settings,omitempty"`

	ClientName string   `json:"client_name,omitempty"`
	ClientURI  string   `json:"client_uri,omitempty"`
	LogoURI    string   `json:"logo_uri,omitempty"`
	PolicyURI  string   `json:"policy_uri,omitempty"`
	TosURI     string   `json:"tos_uri,omitempty"`
	Contacts   []string `json:"contacts,omitempty"`

	RedirectURIs  []string `json:"redirect_uris,omitempty"`
	GrantTypes    []string `json:"grant_types,omitempty"`
	ResponseTypes []string `json:"response_types,omitempty"`
	Scopes        []string `json:"scopes,omitempty"`

	TokenEndpointAuthMethod     string `json:"token_endpoint_auth_method,omitempty"`
	TokenEndpointAuthSigningAlg string `json:"token_endpoint_auth_signing_alg,omitempty"`

	JWKS    *jose.JSONWebKeySet `json:"jwks,omitempty"`
	JWKSURI string              `json:"jwks_uri,omitempty"`

	RequestURIs         []string `json:"request_uris,omitempty"`
	SectorIdentifierURI string   `json:"sector_identifier_uri,omitempty"`
	SubjectType         string   `json:"subject_type,omitempty"`

	IDTokenSignedResponseAlg     string `json:"id_token_signed_response_alg,omitempty"`
	IDTokenEncryptedResponseAlg  string `json:"id_token_encrypted_response_alg,omitempty"`
	IDTokenEncryptedResponseEnc  string `json:"id_token_encrypted_response_enc,omitempty"`
	UserinfoSignedResponseAlg    string `json:"userinfo_signed_response_alg,omitempty"`
	UserinfoEncryptedResponseAlg string `json:"userinfo_encrypted_response_alg,omitempty"`
	UserinfoEncryptedResponseEnc string `json:"userinfo_encrypted_response_enc,omitempty"`

	TLSClientAuthSubjectDN                string `json:"tls_client_auth_subject_dn,omitempty"`
	TLSClientAuthSANDNS                   string `json:"tls_client_auth_san_dns,omitempty"`
	TLSClientAuthSANURI                   string `json:"tls_client_auth_san_uri,omitempty"`
	TLSClientAuthSANIP                    string `json:"tls_client_auth_san_ip,omitempty"`
	TLSClientAuthSANEmail                 string `json:"tls_client_auth_san_email,omitempty"`
	TLSClientCertificateBoundAccessTokens bool   `json:"tls_client_certificate_bound_access_tokens,omitempty"`

	Template        bool   `json:"template,omitempty"`
	SoftwareID      string `json:"software_id,omitempty"`
	SoftwareVersion string `json:"software_version,omitempty"`

	IdentityProviders []string          `json:"identity_providers,omitempty"`
	Certificate       string            `json:"certificate,omitempty"`
	SecretExpiration  *SecretExpiration `json:"secret_expiration,omitempty"`

	RegistrationAccessToken string `json:"registration_access_token,omitempty"`
	RegistrationClientURI   string `json:"registration_client_uri,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Version increments on every successful update and guards against
	// lost updates.
	Version int64 `json:"version"`
}

// Clone returns a deep copy of c. A nil Secrets list stays nil.
func (c *Client) Clone() *Client {
	if c == nil {
		return nil
	}
	out := *c
	out.Secrets = slices.Clone(c.Secrets)
	for i := range out.Secrets {
		if exp := out.Secrets[i].ExpiresAt; exp != nil {
			t := *exp
			out.Secrets[i].ExpiresAt = &t
		}
	}
	out.SecretSettings = slices.Clone(c.SecretSettings)
	for i := range out.SecretSettings {
		out.SecretSettings[i].Properties = cloneProperties(out.SecretSettings[i].Properties)
	}
	out.Contacts = slices.Clone(c.Contacts)
	out.RedirectURIs = slices.Clone(c.RedirectURIs)
	out.GrantTypes = slices.Clone(c.GrantTypes)
	out.ResponseTypes = slices.Clone(c.ResponseTypes)
	out.Scopes = slices.Clone(c.Scopes)
	out.RequestURIs = slices.Clone(c.RequestURIs)
	out.IdentityProviders = slices.Clone(c.IdentityProviders)
	if c.JWKS != nil {
		out.JWKS = &jose.JSONWebKeySet{Keys: slices.Clone(c.JWKS.Keys)}
	}
	if c.SecretExpiration != nil {
		exp := *c.SecretExpiration
		out.SecretExpiration = &exp
	}
	return &out
}

// SettingsByID returns the secret settings with the given id.
func (c *Client) SettingsByID(id string) (*SecretSettings, bool) {
	for i := range c.SecretSettings {
		if c.SecretSettings[i].ID == id {
			return &c.SecretSettings[i], true
		}
	}
	return nil, false
}

func cloneProperties(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
