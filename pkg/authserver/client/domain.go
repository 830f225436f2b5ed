// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import "slices"

// OIDCSettings are the per-domain settings registration consults.
type OIDCSettings struct {
	AllowedScopesEnabled bool     `json:"allowed_scopes_enabled"`
	AllowedScopes        []string `json:"allowed_scopes,omitempty"`
	DefaultScopes        []string `json:"default_scopes,omitempty"`

	DynamicClientRegistrationEnabled         bool `json:"dynamic_client_registration_enabled"`
	DynamicClientRegistrationTemplateEnabled bool `json:"dynamic_client_registration_template_enabled"`
}

// Domain is a tenant.
type Domain struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	OIDC OIDCSettings `json:"oidc"`

	// SecretExpiration is the default secret lifetime for the domain's clients.
	SecretExpiration *SecretExpiration `json:"secret_expiration,omitempty"`

	// SecretSettings selects how secrets issued at registration are stored.
	SecretSettings SecretSettings `json:"secret_settings"`
}

// Clone returns a deep copy of d.
func (d *Domain) Clone() *Domain {
	if d == nil {
		return nil
	}
	out := *d
	out.OIDC.AllowedScopes = slices.Clone(d.OIDC.AllowedScopes)
	out.OIDC.DefaultScopes = slices.Clone(d.OIDC.DefaultScopes)
	out.SecretSettings.Properties = cloneProperties(d.SecretSettings.Properties)
	if d.SecretExpiration != nil {
		exp := *d.SecretExpiration
		out.SecretExpiration = &exp
	}
	return &out
}

// IdentityProvider is a login source configured on a domain.
type IdentityProvider struct {
	ID       string `json:"id"`
	DomainID string `json:"domain"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	External bool   `json:"external"`
}

// Certificate is a signing certificate configured on a domain.
type Certificate struct {
	ID       string `json:"id"`
	DomainID string `json:"domain"`
	Name     string `json:"name"`
	System   bool   `json:"system"`
}

// Form is a customised page owned by a client.
type Form struct {
	ID       string `json:"id"`
	DomainID string `json:"domain"`
	ClientID string `json:"client"`
	Template string `json:"template"`
	Content  string `json:"content"`
}

// EmailTemplate is a customised email owned by a client.
type EmailTemplate struct {
	ID       string `json:"id"`
	DomainID string `json:"domain"`
	ClientID string `json:"client"`
	Template string `json:"template"`
	Subject  string `json:"subject"`
	Content  string `json:"content"`
}
