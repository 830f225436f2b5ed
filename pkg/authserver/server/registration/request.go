// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package registration

import (
	"strings"

	"github.com/go-jose/go-jose/v4"

	"github.com/stacklok/dcrgate/pkg/authserver/client"
)

// DCRRequest represents an OAuth 2.0 Dynamic Client Registration request
// per RFC 7591 Section 2, RFC 7592 and RFC 8705. Every field records whether
// it was sent so that PATCH only touches what the caller named.
type DCRRequest struct {
	RedirectURIs  Optional[[]string] `json:"redirect_uris,omitzero"`
	ResponseTypes Optional[[]string] `json:"response_types,omitzero"`
	GrantTypes    Optional[[]string] `json:"grant_types,omitzero"`

	ClientName Optional[string]   `json:"client_name,omitzero"`
	ClientURI  Optional[string]   `json:"client_uri,omitzero"`
	LogoURI    Optional[string]   `json:"logo_uri,omitzero"`
	PolicyURI  Optional[string]   `json:"policy_uri,omitzero"`
	TosURI     Optional[string]   `json:"tos_uri,omitzero"`
	Contacts   Optional[[]string] `json:"contacts,omitzero"`

	// Scope is a space-separated list of scope values.
	Scope Optional[string] `json:"scope,omitzero"`

	TokenEndpointAuthMethod     Optional[string] `json:"token_endpoint_auth_method,omitzero"`
	TokenEndpointAuthSigningAlg Optional[string] `json:"token_endpoint_auth_signing_alg,omitzero"`

	JWKS    Optional[*jose.JSONWebKeySet] `json:"jwks,omitzero"`
	JWKSURI Optional[string]              `json:"jwks_uri,omitzero"`

	RequestURIs         Optional[[]string] `json:"request_uris,omitzero"`
	SectorIdentifierURI Optional[string]   `json:"sector_identifier_uri,omitzero"`
	SubjectType         Optional[string]   `json:"subject_type,omitzero"`

	IDTokenSignedResponseAlg     Optional[string] `json:"id_token_signed_response_alg,omitzero"`
	IDTokenEncryptedResponseAlg  Optional[string] `json:"id_token_encrypted_response_alg,omitzero"`
	IDTokenEncryptedResponseEnc  Optional[string] `json:"id_token_encrypted_response_enc,omitzero"`
	UserinfoSignedResponseAlg    Optional[string] `json:"userinfo_signed_response_alg,omitzero"`
	UserinfoEncryptedResponseAlg Optional[string] `json:"userinfo_encrypted_response_alg,omitzero"`
	UserinfoEncryptedResponseEnc Optional[string] `json:"userinfo_encrypted_response_enc,omitzero"`

	TLSClientAuthSubjectDN                Optional[string] `json:"tls_client_auth_subject_dn,omitzero"`
	TLSClientAuthSANDNS                   Optional[string] `json:"tls_client_auth_san_dns,omitzero"`
	TLSClientAuthSANURI                   Optional[string] `json:"tls_client_auth_san_uri,omitzero"`
	TLSClientAuthSANIP                    Optional[string] `json:"tls_client_auth_san_ip,omitzero"`
	TLSClientAuthSANEmail                 Optional[string] `json:"tls_client_auth_san_email,omitzero"`
	TLSClientCertificateBoundAccessTokens Optional[bool]   `json:"tls_client_certificate_bound_access_tokens,omitzero"`

	// SoftwareID names the internal id of a template client when template
	// registration is enabled on the domain.
	SoftwareID      Optional[string] `json:"software_id,omitzero"`
	SoftwareVersion Optional[string] `json:"software_version,omitzero"`
}

// Apply merges the present fields of r onto c. Fields sent as null reset the
// client field to its zero value; absent fields are left untouched.
func (r *DCRRequest) Apply(c *client.Client) {
	applySlice(&c.RedirectURIs, r.RedirectURIs)
	applySlice(&c.ResponseTypes, r.ResponseTypes)
	applySlice(&c.GrantTypes, r.GrantTypes)

	apply(&c.ClientName, r.ClientName)
	apply(&c.ClientURI, r.ClientURI)
	apply(&c.LogoURI, r.LogoURI)
	apply(&c.PolicyURI, r.PolicyURI)
	apply(&c.TosURI, r.TosURI)
	applySlice(&c.Contacts, r.Contacts)

	if r.Scope.Present() {
		c.Scopes = strings.Fields(r.Scope.OrElse(""))
	}

	apply(&c.TokenEndpointAuthMethod, r.TokenEndpointAuthMethod)
	apply(&c.TokenEndpointAuthSigningAlg, r.TokenEndpointAuthSigningAlg)
	apply(&c.JWKS, r.JWKS)
	apply(&c.JWKSURI, r.JWKSURI)

	applySlice(&c.RequestURIs, r.RequestURIs)
	apply(&c.SectorIdentifierURI, r.SectorIdentifierURI)
	apply(&c.SubjectType, r.SubjectType)

	apply(&c.IDTokenSignedResponseAlg, r.IDTokenSignedResponseAlg)
	apply(&c.IDTokenEncryptedResponseAlg, r.IDTokenEncryptedResponseAlg)
	apply(&c.IDTokenEncryptedResponseEnc, r.IDTokenEncryptedResponseEnc)
	apply(&c.UserinfoSignedResponseAlg, r.UserinfoSignedResponseAlg)
	apply(&c.UserinfoEncryptedResponseAlg, r.UserinfoEncryptedResponseAlg)
	apply(&c.UserinfoEncryptedResponseEnc, r.UserinfoEncryptedResponseEnc)

	apply(&c.TLSClientAuthSubjectDN, r.TLSClientAuthSubjectDN)
	apply(&c.TLSClientAuthSANDNS, r.TLSClientAuthSANDNS)
	apply(&c.TLSClientAuthSANURI, r.TLSClientAuthSANURI)
	apply(&c.TLSClientAuthSANIP, r.TLSClientAuthSANIP)
	apply(&c.TLSClientAuthSANEmail, r.TLSClientAuthSANEmail)
	apply(&c.TLSClientCertificateBoundAccessTokens, r.TLSClientCertificateBoundAccessTokens)

	apply(&c.SoftwareID, r.SoftwareID)
	apply(&c.SoftwareVersion, r.SoftwareVersion)
}

func apply[T any](dst *T, o Optional[T]) {
	if !o.Present() {
		return
	}
	var zero T
	*dst = o.OrElse(zero)
}

func applySlice(dst *[]string, o Optional[[]string]) {
	if !o.Present() {
		return
	}
	if v, ok := o.Get(); ok {
		*dst = append([]string(nil), v...)
		return
	}
	*dst = nil
}

// DCRResponse represents a client information response per RFC 7591
// Section 3.2.1 and RFC 7592 Section 3.
type DCRResponse struct {
	// ClientID is the unique identifier for the client.
	ClientID string `json:"client_id"`

	// ClientSecret is only returned when its plain value is known, that is
	// when it was issued by this call or is stored unhashed.
	ClientSecret string `json:"client_secret,omitempty"`

	// ClientIDIssuedAt is the time at which the client identifier was issued,
	// as a Unix timestamp.
	ClientIDIssuedAt int64 `json:"client_id_issued_at,omitempty"`

	// ClientSecretExpiresAt is required alongside client_secret; 0 means
	// the secret never expires.
	ClientSecretExpiresAt *int64 `json:"client_secret_expires_at,omitempty"`

	RegistrationAccessToken string `json:"registration_access_token,omitempty"`
	RegistrationClientURI   string `json:"registration_client_uri,omitempty"`

	RedirectURIs  []string `json:"redirect_uris"`
	ResponseTypes []string `json:"response_types,omitempty"`
	GrantTypes    []string `json:"grant_types,omitempty"`

	ClientName string   `json:"client_name,omitempty"`
	ClientURI  string   `json:"client_uri,omitempty"`
	LogoURI    string   `json:"logo_uri,omitempty"`
	PolicyURI  string   `json:"policy_uri,omitempty"`
	TosURI     string   `json:"tos_uri,omitempty"`
	Contacts   []string `json:"contacts,omitempty"`
	Scope      string   `json:"scope,omitempty"`

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

	SoftwareID      string `json:"software_id,omitempty"`
	SoftwareVersion string `json:"software_version,omitempty"`
}

// NewResponse builds the client information response for reg.
func NewResponse(reg *Registration) *DCRResponse {
	c := reg.Client
	resp := &DCRResponse{
		ClientID:                              c.ClientID,
		ClientIDIssuedAt:                      c.CreatedAt.Unix(),
		RegistrationAccessToken:               c.RegistrationAccessToken,
		RegistrationClientURI:                 c.RegistrationClientURI,
		RedirectURIs:                          c.RedirectURIs,
		ResponseTypes:                         c.ResponseTypes,
		GrantTypes:                            c.GrantTypes,
		ClientName:                            c.ClientName,
		ClientURI:                             c.ClientURI,
		LogoURI:                               c.LogoURI,
		PolicyURI:                             c.PolicyURI,
		TosURI:                                c.TosURI,
		Contacts:                              c.Contacts,
		Scope:                                 strings.Join(c.Scopes, " "),
		TokenEndpointAuthMethod:               c.TokenEndpointAuthMethod,
		TokenEndpointAuthSigningAlg:           c.TokenEndpointAuthSigningAlg,
		JWKS:                                  c.JWKS,
		JWKSURI:                               c.JWKSURI,
		RequestURIs:                           c.RequestURIs,
		SectorIdentifierURI:                   c.SectorIdentifierURI,
		SubjectType:                           c.SubjectType,
		IDTokenSignedResponseAlg:              c.IDTokenSignedResponseAlg,
		IDTokenEncryptedResponseAlg:           c.IDTokenEncryptedResponseAlg,
		IDTokenEncryptedResponseEnc:           c.IDTokenEncryptedResponseEnc,
		UserinfoSignedResponseAlg:             c.UserinfoSignedResponseAlg,
		UserinfoEncryptedResponseAlg:          c.UserinfoEncryptedResponseAlg,
		UserinfoEncryptedResponseEnc:          c.UserinfoEncryptedResponseEnc,
		TLSClientAuthSubjectDN:                c.TLSClientAuthSubjectDN,
		TLSClientAuthSANDNS:                   c.TLSClientAuthSANDNS,
		TLSClientAuthSANURI:                   c.TLSClientAuthSANURI,
		TLSClientAuthSANIP:                    c.TLSClientAuthSANIP,
		TLSClientAuthSANEmail:                 c.TLSClientAuthSANEmail,
		TLSClientCertificateBoundAccessTokens: c.TLSClientCertificateBoundAccessTokens,
		SoftwareID:                            c.SoftwareID,
		SoftwareVersion:                       c.SoftwareVersion,
	}
	if resp.RedirectURIs == nil {
		resp.RedirectURIs = []string{}
	}

	if reg.Secret != "" {
		resp.ClientSecret = reg.Secret
		var expiresAt int64
		if reg.SecretExpiresAt != nil {
			expiresAt = reg.SecretExpiresAt.Unix()
		}
		resp.ClientSecretExpiresAt = &expiresAt
	}
	return resp
}
