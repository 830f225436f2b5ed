// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package authserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/stacklok/dcrgate/pkg/authserver/secrets"
	"github.com/stacklok/dcrgate/pkg/authserver/server/handlers"
	"github.com/stacklok/dcrgate/pkg/authserver/server/jwks"
	"github.com/stacklok/dcrgate/pkg/authserver/server/jwt"
	"github.com/stacklok/dcrgate/pkg/authserver/server/keys"
	"github.com/stacklok/dcrgate/pkg/authserver/server/registration"
	"github.com/stacklok/dcrgate/pkg/authserver/storage"
	"github.com/stacklok/dcrgate/pkg/config"
	"github.com/stacklok/dcrgate/pkg/logger"
	"github.com/stacklok/dcrgate/pkg/networking"
)

// server is the internal implementation of the Server interface.
type server struct {
	handler http.Handler
	storage storage.Storage
}

// newServer creates the registration server. On error every resource
// acquired so far is released.
func newServer(ctx context.Context, cfg *config.Config, opts ...Option) (_ *server, err error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	o := &options{registerer: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(o)
	}

	catalog, err := buildCatalog(cfg.Registration)
	if err != nil {
		return nil, err
	}

	stor := o.storage
	if stor == nil {
		logger.Debugw("creating storage backend", "type", cfg.Storage.Type)
		stor, err = storage.New(ctx, cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}
	defer func() {
		if err != nil {
			_ = stor.Close()
		}
	}()

	keyProvider := o.keyProvider
	if keyProvider == nil {
		keyProvider, err = keys.NewProviderFromConfig(cfg.Keys)
		if err != nil {
			return nil, fmt.Errorf("failed to create key provider: %w", err)
		}
	}
	signingKey, err := keyProvider.SigningKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get signing key: %w", err)
	}
	logger.Debugw("registration token signing key loaded",
		"kid", signingKey.KeyID,
		"algorithm", signingKey.Algorithm,
	)

	sectorClient, err := networking.NewHttpClientBuilder().
		WithTimeout(cfg.Registration.SectorIdentifierTimeout).
		WithCABundle(cfg.Registration.CABundle).
		WithPrivateIPs(cfg.Registration.AllowPrivateIPs).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create sector identifier client: %w", err)
	}
	jwksClient, err := networking.NewHttpClientBuilder().
		WithTimeout(cfg.Registration.JWKSTimeout).
		WithCABundle(cfg.Registration.CABundle).
		WithPrivateIPs(cfg.Registration.AllowPrivateIPs).
		WithInsecureScheme(true).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}
	fetcher, err := jwks.NewFetcher(ctx, jwksClient, cfg.Registration.JWKSTimeout)
	if err != nil {
		return nil, err
	}

	metrics, err := registration.NewMetrics(o.registerer)
	if err != nil {
		return nil, err
	}

	signer := jwt.NewSigner(keyProvider)
	tokens := registration.NewTokenIssuer(signer, cfg.Issuer, cfg.Registration.TokenTTL)
	manager := secrets.NewManager()

	service := registration.NewService(registration.ServiceConfig{
		Validator: registration.NewValidator(
			catalog,
			registration.NewSectorIdentifierVerifier(sectorClient, cfg.Registration.SectorIdentifierTimeout),
			fetcher,
		),
		Templates:         registration.NewTemplateProvisioner(stor, stor, stor, manager, tokens),
		Tokens:            tokens,
		Secrets:           manager,
		Renewer:           secrets.NewRenewer(stor, stor, manager),
		Clients:           stor,
		IdentityProviders: stor,
		Certificates:      stor,
		Metrics:           metrics,
	})

	if err := seed(ctx, stor, cfg.Domains); err != nil {
		return nil, fmt.Errorf("failed to seed storage: %w", err)
	}

	logger.Infow("registration server initialized",
		"issuer", cfg.Issuer,
		"storage", cfg.Storage.Type,
		"domains", len(cfg.Domains),
	)

	return &server{
		handler: handlers.NewHandler(service, stor, signer, keyProvider).Routes(),
		storage: stor,
	}, nil
}

// Handler returns the HTTP handler that serves all endpoints.
func (s *server) Handler() http.Handler {
	return s.handler
}

// Health reports whether the storage backend is reachable.
func (s *server) Health(ctx context.Context) error {
	return s.storage.Health(ctx)
}

// Close releases resources held by the server.
func (s *server) Close() error {
	logger.Debugw("closing registration server")
	return s.storage.Close()
}

// buildCatalog narrows the default catalog to the configured grant and
// response types. Unknown values are configuration errors.
func buildCatalog(cfg config.RegistrationConfig) (*registration.Catalog, error) {
	catalog := registration.DefaultCatalog()
	for _, gt := range cfg.GrantTypes {
		if !catalog.SupportsGrantType(gt) {
			return nil, fmt.Errorf("unsupported grant type in configuration: %s", gt)
		}
	}
	for _, rt := range cfg.ResponseTypes {
		if !catalog.SupportsResponseType(rt) {
			return nil, fmt.Errorf("unsupported response type in configuration: %s", rt)
		}
	}
	return catalog.WithGrantTypes(cfg.GrantTypes).WithResponseTypes(cfg.ResponseTypes), nil
}
