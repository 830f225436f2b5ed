// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/stacklok/dcrgate/pkg/authserver/client"
	"github.com/stacklok/dcrgate/pkg/authserver/server/jwt"
	"github.com/stacklok/dcrgate/pkg/authserver/server/keys"
	"github.com/stacklok/dcrgate/pkg/authserver/server/registration"
	"github.com/stacklok/dcrgate/pkg/authserver/storage"
	"github.com/stacklok/dcrgate/pkg/config"
)

// TokenVerifier verifies registration access tokens.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string, opts ...jwtv5.ParserOption) (*jwt.Claims, error)
}

// Handler provides HTTP handlers for the registration endpoints.
type Handler struct {
	service  *registration.Service
	domains  storage.DomainRepository
	verifier TokenVerifier
	keys     keys.KeyProvider
}

// NewHandler creates a new Handler with the given dependencies.
func NewHandler(
	service *registration.Service,
	domains storage.DomainRepository,
	verifier TokenVerifier,
	keyProvider keys.KeyProvider,
) *Handler {
	return &Handler{
		service:  service,
		domains:  domains,
		verifier: verifier,
		keys:     keyProvider,
	}
}

// Routes returns a router with all per-domain endpoints registered.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/{domain}/oidc", func(r chi.Router) {
		r.Use(h.loadDomain)
		h.WellKnownRoutes(r)
		h.RegistrationRoutes(r)
	})
	return r
}

// RegistrationRoutes registers the RFC 7591 and RFC 7592 endpoints on the
// provided router. The router must run loadDomain.
func (h *Handler) RegistrationRoutes(r chi.Router) {
	r.With(requireRegistrationEnabled).Post("/register", h.RegisterClientHandler)
	r.Route("/register/{client_id}", func(r chi.Router) {
		r.Use(requireRegistrationEnabled, h.authenticateClient)
		r.Get("/", h.ReadClientHandler)
		r.Put("/", h.UpdateClientHandler)
		r.Patch("/", h.PatchClientHandler)
		r.Delete("/", h.DeleteClientHandler)
		r.Post("/renew_secret", h.RenewSecretHandler)
	})
}

// WellKnownRoutes registers the discovery and JWKS endpoints on the provided router.
func (h *Handler) WellKnownRoutes(r chi.Router) {
	r.Get("/.well-known/jwks.json", h.JWKSHandler)
	r.Get("/.well-known/openid-configuration", h.OIDCDiscoveryHandler)
}

type contextKey int

const (
	domainKey contextKey = iota
	clientKey
)

func domainFrom(ctx context.Context) *client.Domain {
	d, _ := ctx.Value(domainKey).(*client.Domain)
	return d
}

func clientFrom(ctx context.Context) *client.Client {
	c, _ := ctx.Value(clientKey).(*client.Client)
	return c
}

// basePath returns the path prefix of the domain the request addresses.
func basePath(r *http.Request) string {
	return config.DomainBasePath(chi.URLParam(r, "domain"))
}
