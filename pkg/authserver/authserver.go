// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package authserver assembles the dynamic client registration server from
// configuration.
//
// The server exposes, per domain:
//   - POST /{domain}/oidc/register (RFC 7591)
//   - GET|PUT|PATCH|DELETE /{domain}/oidc/register/{client_id} (RFC 7592)
//   - POST /{domain}/oidc/register/{client_id}/renew_secret
//   - GET /{domain}/oidc/.well-known/openid-configuration
//   - GET /{domain}/oidc/.well-known/jwks.json
//
// # Usage
//
//	cfg, err := config.Load(path)
//	if err != nil {
//	    return err
//	}
//	srv, err := authserver.New(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer srv.Close()
//	mux.Handle("/", srv.Handler())
//
// # Storage
//
// Clients, domains and their resources live in memory (single instance) or
// in Redis (shared between replicas). Domains, identity providers,
// certificates and template clients listed in the configuration are seeded
// into storage at startup.
package authserver

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/stacklok/dcrgate/pkg/authserver/server/keys"
	"github.com/stacklok/dcrgate/pkg/authserver/storage"
	"github.com/stacklok/dcrgate/pkg/config"
	"github.com/stacklok/dcrgate/pkg/logger"
)

// Server is the dynamic client registration server.
type Server interface {
	// Handler returns an http.Handler that serves all registration and
	// discovery endpoints.
	Handler() http.Handler

	// Health reports whether the storage backend is reachable.
	Health(ctx context.Context) error

	// Close releases resources held by the server.
	Close() error
}

// Option configures the server during construction.
type Option func(*options)

type options struct {
	storage     storage.Storage
	keyProvider keys.KeyProvider
	registerer  prometheus.Registerer
}

// WithStorage uses stor instead of the backend selected by the
// configuration. The server takes ownership and closes it.
func WithStorage(stor storage.Storage) Option {
	return func(o *options) {
		o.storage = stor
	}
}

// WithKeyProvider overrides the signing keys selected by the configuration.
func WithKeyProvider(p keys.KeyProvider) Option {
	return func(o *options) {
		o.keyProvider = p
	}
}

// WithRegisterer registers the registration metrics with r instead of the
// default Prometheus registerer.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = r
	}
}

// New creates a registration server from cfg. Background work started by the
// server (JWKS refresh) stops when ctx is done.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (Server, error) {
	logger.Debugw("creating registration server")
	return newServer(ctx, cfg, opts...)
}
