// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/stacklok/dcrgate/pkg/authserver/server/registration"
	dcrerrors "github.com/stacklok/dcrgate/pkg/errors"
	"github.com/stacklok/dcrgate/pkg/logger"
)

// loadDomain resolves the {domain} path parameter.
func (h *Handler) loadDomain(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		domainID := chi.URLParam(r, "domain")
		domain, err := h.domains.FindDomainByID(r.Context(), domainID)
		if err != nil {
			if dcrerrors.IsNotFound(err) {
				http.NotFound(w, r)
				return
			}
			logger.Errorw("failed to load domain", "domain", domainID, "error", err)
			writeDCRError(w, http.StatusInternalServerError, &registration.DCRError{
				Code:        registration.DCRErrorServerError,
				Description: "failed to load domain",
			})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), domainKey, domain)))
	})
}

// requireRegistrationEnabled rejects registration calls on domains that have
// dynamic client registration switched off.
func requireRegistrationEnabled(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if domain := domainFrom(r.Context()); domain == nil || !domain.OIDC.DynamicClientRegistrationEnabled {
			writeDCRError(w, http.StatusForbidden, &registration.DCRError{
				Code:        registration.DCRErrorAccessDenied,
				Description: "dynamic client registration is disabled for this domain",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authenticateClient checks the registration access token of an RFC 7592
// request and loads the client it is bound to. Only the most recently issued
// token of a client is accepted.
func (h *Handler) authenticateClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		domain := domainFrom(ctx)
		clientID := chi.URLParam(r, "client_id")

		raw, ok := bearerToken(r)
		if !ok {
			writeUnauthorized(w, "missing registration access token")
			return
		}

		claims, err := h.verifier.Verify(ctx, raw,
			jwtv5.WithIssuer(h.service.Tokens().Issuer(basePath(r))),
			jwtv5.WithAudience(clientID),
			jwtv5.WithSubject(clientID),
		)
		if err != nil {
			logger.Debugw("rejected registration access token", "client_id", clientID, "error", err)
			writeUnauthorized(w, "invalid registration access token")
			return
		}
		if claims.Domain != domain.ID || !slices.Contains(strings.Fields(claims.Scope), registration.RegistrationScope) {
			writeUnauthorized(w, "invalid registration access token")
			return
		}

		c, err := h.service.FindClient(ctx, domain.ID, clientID)
		if err != nil {
			if dcrerrors.IsNotFound(err) {
				writeUnauthorized(w, "invalid registration access token")
				return
			}
			writeServiceError(w, err)
			return
		}
		if subtle.ConstantTimeCompare([]byte(c.RegistrationAccessToken), []byte(raw)) != 1 {
			writeUnauthorized(w, "registration access token has been superseded")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, clientKey, c)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
