// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package registration

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/dcrgate/pkg/authserver/client"
)

func decodeRequest(t *testing.T, body string) *DCRRequest {
	t.Helper()
	var req DCRRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return &req
}

func TestOptional_Unmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		body        string
		wantPresent bool
		wantNull    bool
		wantValue   string
	}{
		{name: "absent", body: `{}`},
		{name: "null", body: `{"client_name": null}`, wantPresent: true, wantNull: true},
		{name: "empty string", body: `{"client_name": ""}`, wantPresent: true},
		{name: "value", body: `{"client_name": "My App"}`, wantPresent: true, wantValue: "My App"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := decodeRequest(t, tt.body)
			assert.Equal(t, tt.wantPresent, req.ClientName.Present())
			assert.Equal(t, tt.wantNull, req.ClientName.IsNull())
			assert.Equal(t, tt.wantValue, req.ClientName.OrElse(""))
		})
	}
}

func TestOptional_UnmarshalTypeMismatch(t *testing.T) {
	t.Parallel()

	var req DCRRequest
	err := json.Unmarshal([]byte(`{"redirect_uris": "https://app.example.com/cb"}`), &req)
	assert.Error(t, err)
}

func TestOptional_MarshalOmitsAbsent(t *testing.T) {
	t.Parallel()

	req := DCRRequest{
		ClientName: Some("app"),
		LogoURI:    Null[string](),
	}
	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"client_name": "app", "logo_uri": null}`, string(data))
}

func TestDCRRequest_Apply(t *testing.T) {
	t.Parallel()

	existing := &client.Client{
		ClientID:     "client-1",
		ClientName:   "Old",
		LogoURI:      "https://app.example.com/logo.png",
		RedirectURIs: []string{"https://app.example.com/old"},
		GrantTypes:   []string{"authorization_code"},
		Scopes:       []string{"openid"},
		JWKSURI:      "https://app.example.com/jwks",
	}

	req := decodeRequest(t, `{
		"client_name": "New",
		"logo_uri": null,
		"redirect_uris": ["https://app.example.com/new"],
		"scope": "openid  profile",
		"tls_client_certificate_bound_access_tokens": true,
		"jwks": {"keys": []}
	}`)

	c := existing.Clone()
	req.Apply(c)

	assert.Equal(t, "New", c.ClientName)
	assert.Empty(t, c.LogoURI, "null resets the field")
	assert.Equal(t, []string{"https://app.example.com/new"}, c.RedirectURIs)
	assert.Equal(t, []string{"authorization_code"}, c.GrantTypes, "absent fields are untouched")
	assert.Equal(t, []string{"openid", "profile"}, c.Scopes)
	assert.True(t, c.TLSClientCertificateBoundAccessTokens)
	require.NotNil(t, c.JWKS)
	assert.Empty(t, c.JWKS.Keys)
	assert.Equal(t, "https://app.example.com/jwks", c.JWKSURI)
	assert.Equal(t, "Old", existing.ClientName, "source client is not modified")
}

func TestDCRRequest_ApplyNullList(t *testing.T) {
	t.Parallel()

	c := &client.Client{Contacts: []string{"ops@example.com"}, Scopes: []string{"openid"}}
	decodeRequest(t, `{"contacts": null, "scope": null}`).Apply(c)
	assert.Nil(t, c.Contacts)
	assert.Empty(t, c.Scopes)
}

func TestNewResponse(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	expires := created.Add(24 * time.Hour)
	c := &client.Client{
		ClientID:                "client-1",
		ClientName:              "app",
		Scopes:                  []string{"openid", "email"},
		JWKS:                    &jose.JSONWebKeySet{},
		RegistrationAccessToken: "token",
		RegistrationClientURI:   "https://auth.example.com/acme/oidc/register/client-1",
		CreatedAt:               created,
	}

	t.Run("without secret", func(t *testing.T) {
		t.Parallel()
		resp := NewResponse(&Registration{Client: c})
		assert.Equal(t, "client-1", resp.ClientID)
		assert.Equal(t, created.Unix(), resp.ClientIDIssuedAt)
		assert.Equal(t, "openid email", resp.Scope)
		assert.Empty(t, resp.ClientSecret)
		assert.Nil(t, resp.ClientSecretExpiresAt)
		assert.Equal(t, []string{}, resp.RedirectURIs)
	})

	t.Run("secret without expiry", func(t *testing.T) {
		t.Parallel()
		resp := NewResponse(&Registration{Client: c, Secret: "s3cret"})
		assert.Equal(t, "s3cret", resp.ClientSecret)
		require.NotNil(t, resp.ClientSecretExpiresAt)
		assert.Zero(t, *resp.ClientSecretExpiresAt)
	})

	t.Run("secret with expiry", func(t *testing.T) {
		t.Parallel()
		resp := NewResponse(&Registration{Client: c, Secret: "s3cret", SecretExpiresAt: &expires})
		require.NotNil(t, resp.ClientSecretExpiresAt)
		assert.Equal(t, expires.Unix(), *resp.ClientSecretExpiresAt)
	})
}
