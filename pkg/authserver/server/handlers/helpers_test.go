// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/dcrgate/pkg/authserver/client"
	"github.com/stacklok/dcrgate/pkg/authserver/secrets"
	"github.com/stacklok/dcrgate/pkg/authserver/server/jwt"
	"github.com/stacklok/dcrgate/pkg/authserver/server/keys"
	"github.com/stacklok/dcrgate/pkg/authserver/server/registration"
	"github.com/stacklok/dcrgate/pkg/authserver/storage"
)

const (
	testIssuer   = "https://auth.example.com"
	testDomainID = "acme"
)

// nopJWKS never finds keys; tests do not register jwks_uri clients.
type nopJWKS struct{}

func (nopJWKS) GetKeys(context.Context, string) (*jose.JSONWebKeySet, error) {
	return &jose.JSONWebKeySet{}, nil
}

type testServer struct {
	handler http.Handler
	store   *storage.MemoryStorage
	signer  *jwt.Signer
}

// newTestServer wires a Handler over in-memory storage with the domains
// "acme" (registration enabled) and "closed" (registration disabled).
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	store := storage.NewMemoryStorage()
	t.Cleanup(func() { _ = store.Close() })

	for _, d := range []*client.Domain{
		{
			ID: testDomainID,
			OIDC: client.OIDCSettings{
				DynamicClientRegistrationEnabled: true,
				AllowedScopesEnabled:             true,
				AllowedScopes:                    []string{"openid", "profile"},
			},
		},
		{ID: "closed"},
	} {
		_, err := store.CreateDomain(ctx, d)
		require.NoError(t, err)
	}

	provider := keys.NewGeneratingProvider(keys.DefaultAlgorithm)
	signer := jwt.NewSigner(provider)
	tokens := registration.NewTokenIssuer(signer, testIssuer, time.Hour)
	manager := secrets.NewManager()

	service := registration.NewService(registration.ServiceConfig{
		Validator: registration.NewValidator(
			registration.DefaultCatalog(),
			registration.NewSectorIdentifierVerifier(http.DefaultClient, time.Second),
			nopJWKS{},
		),
		Templates:         registration.NewTemplateProvisioner(store, store, store, manager, tokens),
		Tokens:            tokens,
		Secrets:           manager,
		Renewer:           secrets.NewRenewer(store, store, manager),
		Clients:           store,
		IdentityProviders: store,
		Certificates:      store,
	})

	return &testServer{
		handler: NewHandler(service, store, signer, provider).Routes(),
		store:   store,
		signer:  signer,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// register creates a client and returns the decoded response.
func (s *testServer) register(t *testing.T, body string) registration.DCRResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/acme/oidc/register", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeResponse(t, rec)
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) registration.DCRResponse {
	t.Helper()
	var resp registration.DCRResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) registration.DCRError {
	t.Helper()
	var dcrErr registration.DCRError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dcrErr))
	return dcrErr
}

func newRequest(t *testing.T, method, path, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(s *testServer, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}
