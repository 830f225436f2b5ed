// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package registration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/dcrgate/pkg/authserver/client"
	"github.com/stacklok/dcrgate/pkg/authserver/secrets"
	"github.com/stacklok/dcrgate/pkg/authserver/server/jwt"
	"github.com/stacklok/dcrgate/pkg/authserver/server/keys"
	"github.com/stacklok/dcrgate/pkg/authserver/server/registration/mocks"
	"github.com/stacklok/dcrgate/pkg/authserver/storage"
	dcrerrors "github.com/stacklok/dcrgate/pkg/errors"
)

const testBasePath = "/acme/oidc"

type serviceFixture struct {
	service *Service
	store   *storage.MemoryStorage
	signer  *jwt.Signer
	metrics *Metrics
	domain  *client.Domain
}

func newServiceFixture(t *testing.T, domain *client.Domain) *serviceFixture {
	t.Helper()
	ctx := context.Background()

	store := storage.NewMemoryStorage()
	t.Cleanup(func() { _ = store.Close() })
	if domain == nil {
		domain = &client.Domain{ID: "acme", OIDC: client.OIDCSettings{DynamicClientRegistrationEnabled: true}}
	}
	_, err := store.CreateDomain(ctx, domain)
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	signer := jwt.NewSigner(keys.NewGeneratingProvider("ES256"))
	tokens := NewTokenIssuer(signer, "https://auth.example.com", time.Hour)
	manager := secrets.NewManager()
	metrics, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	service := NewService(ServiceConfig{
		Validator:         NewValidator(DefaultCatalog(), mocks.NewMockSectorVerifier(ctrl), mocks.NewMockJWKSFetcher(ctrl)),
		Templates:         NewTemplateProvisioner(store, store, store, manager, tokens),
		Tokens:            tokens,
		Secrets:           manager,
		Renewer:           secrets.NewRenewer(store, store, manager),
		Clients:           store,
		IdentityProviders: store,
		Certificates:      store,
		Metrics:           metrics,
	})
	return &serviceFixture{service: service, store: store, signer: signer, metrics: metrics, domain: domain}
}

func (f *serviceFixture) count(operation, result string) float64 {
	return testutil.ToFloat64(f.metrics.operations.WithLabelValues(operation, result))
}

func (f *serviceFixture) create(t *testing.T, body string) *Registration {
	t.Helper()
	reg, err := f.service.Create(context.Background(), f.domain, decodeRequest(t, body), testBasePath)
	require.NoError(t, err)
	return reg
}

func TestService_Create(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, nil)
	ctx := context.Background()

	reg := f.create(t, `{"redirect_uris": ["https://app.example.com/cb"], "client_name": "App"}`)
	c := reg.Client

	assert.NotEmpty(t, c.ID)
	assert.NotEmpty(t, c.ClientID)
	assert.Equal(t, "acme", c.DomainID)
	assert.Equal(t, "App", c.ClientName)
	assert.Equal(t, []string{"code"}, c.ResponseTypes)
	assert.Equal(t, []string{GrantTypeAuthorizationCode}, c.GrantTypes)
	assert.Equal(t, client.AuthMethodClientSecretBasic, c.TokenEndpointAuthMethod)
	assert.Equal(t, int64(1), c.Version)

	require.NotEmpty(t, reg.Secret)
	ok, err := secrets.NewManager().Authenticate(c, reg.Secret)
	require.NoError(t, err)
	assert.True(t, ok)

	claims, err := f.signer.Verify(ctx, c.RegistrationAccessToken)
	require.NoError(t, err)
	assert.Equal(t, c.ClientID, claims.Subject)
	assert.Equal(t, "https://auth.example.com/acme/oidc/register/"+c.ClientID, c.RegistrationClientURI)

	stored, err := f.store.FindClientByClientID(ctx, "acme", c.ClientID)
	require.NoError(t, err)
	assert.Equal(t, c.RegistrationAccessToken, stored.RegistrationAccessToken)

	assert.Equal(t, float64(1), f.count(OperationCreate, ResultSuccess))
}

func TestService_CreatePublicClientHasNoSecret(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, nil)
	reg := f.create(t, `{"redirect_uris": ["https://app.example.com/cb"], "token_endpoint_auth_method": "none"}`)
	assert.Empty(t, reg.Secret)
	assert.Nil(t, reg.Client.Secrets)
}

func TestService_CreateHashedSecret(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, &client.Domain{
		ID:             "acme",
		SecretSettings: client.SecretSettings{Algorithm: client.SecretAlgorithmBcrypt, Properties: map[string]any{"rounds": 4}},
	})
	reg := f.create(t, `{"redirect_uris": []}`)

	require.NotEmpty(t, reg.Secret)
	assert.Empty(t, reg.Client.ClientSecret)
	require.Len(t, reg.Client.Secrets, 1)
	assert.NotEqual(t, reg.Secret, reg.Client.Secrets[0].Secret)

	// The hashed value cannot be revealed again.
	assert.Empty(t, f.service.Describe(reg.Client).Secret)
}

func TestService_CreateAssignsDefaultResources(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.store.CreateIdentityProvider(ctx, &client.IdentityProvider{ID: "social", DomainID: "acme", External: true}))
	require.NoError(t, f.store.CreateIdentityProvider(ctx, &client.IdentityProvider{ID: "local", DomainID: "acme"}))
	require.NoError(t, f.store.CreateIdentityProvider(ctx, &client.IdentityProvider{ID: "local-2", DomainID: "acme"}))
	require.NoError(t, f.store.CreateCertificate(ctx, &client.Certificate{ID: "cert-1", DomainID: "acme"}))
	require.NoError(t, f.store.CreateCertificate(ctx, &client.Certificate{ID: "cert-2", DomainID: "acme"}))

	reg := f.create(t, `{"redirect_uris": []}`)
	assert.Equal(t, []string{"local"}, reg.Client.IdentityProviders)
	assert.Equal(t, "cert-1", reg.Client.Certificate)
}

func TestService_CreateValidationFailureIsNotPersisted(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, nil)
	_, err := f.service.Create(context.Background(), f.domain, decodeRequest(t, `{"client_name": "x"}`), testBasePath)

	dcrErr, ok := AsDCRError(err)
	require.True(t, ok)
	assert.Equal(t, DCRErrorInvalidRedirectURI, dcrErr.Code)
	assert.Equal(t, float64(1), f.count(OperationCreate, ResultRejected))
}

func TestService_CreateUsesTemplateWhenEnabled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tmpl := templateClient()

	t.Run("enabled", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t, &client.Domain{
			ID:   "acme",
			OIDC: client.OIDCSettings{DynamicClientRegistrationTemplateEnabled: true},
		})
		_, err := f.store.CreateClient(ctx, tmpl)
		require.NoError(t, err)

		// No redirect_uris: template requests are validated like a patch.
		reg := f.create(t, `{"software_id": "tmpl-internal"}`)
		assert.Equal(t, "tmpl-internal", reg.Client.SoftwareID)
		assert.Equal(t, []string{"openid", "profile"}, reg.Client.Scopes)
	})

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t, nil)
		_, err := f.store.CreateClient(ctx, tmpl)
		require.NoError(t, err)

		reg := f.create(t, `{"software_id": "tmpl-internal", "redirect_uris": []}`)
		assert.Equal(t, "tmpl-internal", reg.Client.SoftwareID)
		assert.Empty(t, reg.Client.Scopes, "nothing was cloned")
	})
}

func TestService_CreateFromTemplateValidatesRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantCode   string
		wantScopes []string
		wantGrants []string
	}{
		{
			name:       "scopes narrowed to the allow-list",
			body:       `{"software_id": "tmpl-internal", "scope": "openid admin"}`,
			wantScopes: []string{"openid"},
			wantGrants: []string{"authorization_code", "refresh_token"},
		},
		{
			name:       "template scopes kept when none requested",
			body:       `{"software_id": "tmpl-internal"}`,
			wantScopes: []string{"openid", "profile"},
			wantGrants: []string{"authorization_code", "refresh_token"},
		},
		{
			name:     "redirect uri with fragment",
			body:     `{"software_id": "tmpl-internal", "redirect_uris": ["javascript:alert(1)#frag"]}`,
			wantCode: DCRErrorInvalidRedirectURI,
		},
		{
			name:     "unsupported grant type",
			body:     `{"software_id": "tmpl-internal", "grant_types": ["bogus"]}`,
			wantCode: DCRErrorInvalidClientMetadata,
		},
		{
			name:     "unsupported response type",
			body:     `{"software_id": "tmpl-internal", "response_types": ["bogus"]}`,
			wantCode: DCRErrorInvalidClientMetadata,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			f := newServiceFixture(t, &client.Domain{
				ID:   "acme",
				OIDC: client.OIDCSettings{
					DynamicClientRegistrationTemplateEnabled: true,
					AllowedScopesEnabled:                     true,
					AllowedScopes:                            []string{"openid", "profile"},
				},
			})
			_, err := f.store.CreateClient(ctx, templateClient())
			require.NoError(t, err)

			reg, err := f.service.Create(ctx, f.domain, decodeRequest(t, tt.body), testBasePath)
			if tt.wantCode != "" {
				dcrErr, ok := AsDCRError(err)
				require.True(t, ok, "got %v", err)
				assert.Equal(t, tt.wantCode, dcrErr.Code)
				assert.Equal(t, float64(1), f.count(OperationCreate, ResultRejected))
				assert.Equal(t, float64(0), f.count(OperationCreate, ResultSuccess))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantScopes, reg.Client.Scopes)
			assert.Equal(t, tt.wantGrants, reg.Client.GrantTypes)

			stored, err := f.store.FindClientByClientID(ctx, "acme", reg.Client.ClientID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantScopes, stored.Scopes)
		})
	}
}

func TestService_Patch(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, nil)
	ctx := context.Background()
	created := f.create(t, `{"redirect_uris": ["https://app.example.com/cb"], "client_name": "App", "logo_uri": "https://app.example.com/l.png"}`)

	reg, err := f.service.Patch(ctx, f.domain, created.Client,
		decodeRequest(t, `{"client_name": "Renamed", "logo_uri": null}`), testBasePath)
	require.NoError(t, err)

	c := reg.Client
	assert.Equal(t, "Renamed", c.ClientName)
	assert.Empty(t, c.LogoURI)
	assert.Equal(t, []string{"https://app.example.com/cb"}, c.RedirectURIs)
	assert.Equal(t, int64(2), c.Version)
	assert.NotEqual(t, created.Client.RegistrationAccessToken, c.RegistrationAccessToken, "token is reissued")

	// NONE secrets stay retrievable.
	assert.Equal(t, created.Secret, reg.Secret)
	assert.Equal(t, float64(1), f.count(OperationPatch, ResultSuccess))
}

func TestService_PatchWithoutScopeUsesDomainDefaults(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, &client.Domain{
		ID:   "acme",
		OIDC: client.OIDCSettings{DefaultScopes: []string{"openid"}},
	})
	created := f.create(t, `{"redirect_uris": [], "scope": "openid email"}`)
	require.Equal(t, []string{"openid", "email"}, created.Client.Scopes)

	reg, err := f.service.Patch(context.Background(), f.domain, created.Client,
		decodeRequest(t, `{"client_name": "Renamed"}`), testBasePath)
	require.NoError(t, err)
	assert.Equal(t, []string{"openid"}, reg.Client.Scopes)
}

func TestService_UpdateRequiresRedirectURIs(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, nil)
	created := f.create(t, `{"redirect_uris": ["https://app.example.com/cb"]}`)

	_, err := f.service.Update(context.Background(), f.domain, created.Client,
		decodeRequest(t, `{"client_name": "Renamed"}`), testBasePath)
	dcrErr, ok := AsDCRError(err)
	require.True(t, ok)
	assert.Equal(t, "Missing or invalid redirect_uris.", dcrErr.Description)

	reg, err := f.service.Update(context.Background(), f.domain, created.Client,
		decodeRequest(t, `{"redirect_uris": ["https://app.example.com/other"]}`), testBasePath)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://app.example.com/other"}, reg.Client.RedirectURIs)
}

func TestService_ModifyStaleClient(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, nil)
	ctx := context.Background()
	created := f.create(t, `{"redirect_uris": []}`)

	_, err := f.service.Patch(ctx, f.domain, created.Client, decodeRequest(t, `{"client_name": "first"}`), testBasePath)
	require.NoError(t, err)

	// created.Client still carries version 1.
	_, err = f.service.Patch(ctx, f.domain, created.Client, decodeRequest(t, `{"client_name": "second"}`), testBasePath)
	require.Error(t, err)
	assert.True(t, dcrerrors.IsConcurrentModification(err))
	assert.Equal(t, float64(1), f.count(OperationPatch, ResultConflict))
}

func TestService_PatchToSecretMethodIssuesSecret(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, nil)
	created := f.create(t, `{"redirect_uris": [], "token_endpoint_auth_method": "none"}`)
	require.Empty(t, created.Secret)

	reg, err := f.service.Patch(context.Background(), f.domain, created.Client,
		decodeRequest(t, `{"token_endpoint_auth_method": "client_secret_post"}`), testBasePath)
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Secret)
	assert.Len(t, reg.Client.Secrets, 1)
}

func TestService_Delete(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, nil)
	ctx := context.Background()
	created := f.create(t, `{"redirect_uris": []}`)

	deleted, err := f.service.Delete(ctx, created.Client)
	require.NoError(t, err)
	assert.Equal(t, created.Client.ClientID, deleted.ClientID)

	_, err = f.service.FindClient(ctx, "acme", created.Client.ClientID)
	assert.True(t, dcrerrors.IsNotFound(err))
	assert.Equal(t, float64(1), f.count(OperationDelete, ResultSuccess))
}

func TestService_RenewSecret(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, nil)
	ctx := context.Background()
	created := f.create(t, `{"redirect_uris": []}`)

	reg, err := f.service.RenewSecret(ctx, f.domain, created.Client, testBasePath)
	require.NoError(t, err)

	assert.NotEmpty(t, reg.Secret)
	assert.NotEqual(t, created.Secret, reg.Secret)
	require.Len(t, reg.Client.Secrets, 1)
	assert.NotEqual(t, created.Client.RegistrationAccessToken, reg.Client.RegistrationAccessToken)

	stored, err := f.store.FindClientByID(ctx, created.Client.ID)
	require.NoError(t, err)
	assert.Equal(t, reg.Client.RegistrationAccessToken, stored.RegistrationAccessToken)
	assert.Equal(t, reg.Client.Version, stored.Version)

	ok, err := secrets.NewManager().Authenticate(stored, created.Secret)
	require.NoError(t, err)
	assert.False(t, ok, "old secret no longer authenticates")
	assert.Equal(t, float64(1), f.count(OperationRenew, ResultSuccess))
}

func TestService_RenewSecretKeepsOldSecretWhenSigningFails(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, nil)
	ctx := context.Background()
	created := f.create(t, `{"redirect_uris": []}`)

	ctrl := gomock.NewController(t)
	signer := mocks.NewMockJWTSigner(ctrl)
	signer.EXPECT().Sign(gomock.Any(), gomock.Any()).Return("", errors.New("kms down"))
	f.service.tokens = NewTokenIssuer(signer, "https://auth.example.com", time.Hour)

	_, err := f.service.RenewSecret(ctx, f.domain, created.Client, testBasePath)
	require.Error(t, err)

	stored, err := f.store.FindClientByID(ctx, created.Client.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Client.Version, stored.Version)
	ok, err := secrets.NewManager().Authenticate(stored, created.Secret)
	require.NoError(t, err)
	assert.True(t, ok, "previous secret still authenticates")
	assert.Equal(t, float64(1), f.count(OperationRenew, ResultError))
}

func TestService_SignErrorCountsAsError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	signer := mocks.NewMockJWTSigner(ctrl)
	signer.EXPECT().Sign(gomock.Any(), gomock.Any()).Return("", errors.New("kms down"))

	f := newServiceFixture(t, nil)
	f.service.tokens = NewTokenIssuer(signer, "https://auth.example.com", time.Hour)

	_, err := f.service.Create(context.Background(), f.domain, decodeRequest(t, `{"redirect_uris": []}`), testBasePath)
	require.Error(t, err)
	assert.Equal(t, float64(1), f.count(OperationCreate, ResultError))
}

func TestNewMetrics_RegistersOnce(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	first, err := NewMetrics(registry)
	require.NoError(t, err)
	second, err := NewMetrics(registry)
	require.NoError(t, err)

	first.Observe(OperationCreate, nil)
	second.Observe(OperationCreate, nil)
	assert.Equal(t, float64(2), testutil.ToFloat64(first.operations.WithLabelValues(OperationCreate, ResultSuccess)))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.Observe(OperationCreate, nil) })
}
