// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/stacklok/dcrgate/pkg/authserver/client"
	"github.com/stacklok/dcrgate/pkg/authserver/server/keys"
	"github.com/stacklok/dcrgate/pkg/logger"
)

// Cache-Control max-age values for discovery endpoints.
const (
	// DefaultJWKSCacheMaxAge is the Cache-Control max-age for the JWKS endpoint (1 hour).
	DefaultJWKSCacheMaxAge = 3600

	// DefaultDiscoveryCacheMaxAge is the Cache-Control max-age for the discovery endpoint (1 hour).
	DefaultDiscoveryCacheMaxAge = 3600
)

var tokenEndpointAuthMethods = []string{
	client.AuthMethodClientSecretBasic,
	client.AuthMethodClientSecretPost,
	client.AuthMethodClientSecretJWT,
	client.AuthMethodPrivateKeyJWT,
	client.AuthMethodTLSClientAuth,
	client.AuthMethodSelfSignedTLSClientAuth,
	client.AuthMethodNone,
}

// discoveryDocument is the registration-related subset of an OIDC Discovery
// 1.0 provider metadata document.
type discoveryDocument struct {
	Issuer                                string   `json:"issuer"`
	RegistrationEndpoint                  string   `json:"registration_endpoint,omitempty"`
	JWKSURI                               string   `json:"jwks_uri"`
	ScopesSupported                       []string `json:"scopes_supported,omitempty"`
	ResponseTypesSupported                []string `json:"response_types_supported"`
	GrantTypesSupported                   []string `json:"grant_types_supported"`
	SubjectTypesSupported                 []string `json:"subject_types_supported"`
	IDTokenSigningAlgValuesSupported      []string `json:"id_token_signing_alg_values_supported"`
	IDTokenEncryptionAlgValuesSupported   []string `json:"id_token_encryption_alg_values_supported"`
	IDTokenEncryptionEncValuesSupported   []string `json:"id_token_encryption_enc_values_supported"`
	UserinfoSigningAlgValuesSupported     []string `json:"userinfo_signing_alg_values_supported"`
	UserinfoEncryptionAlgValuesSupported  []string `json:"userinfo_encryption_alg_values_supported"`
	UserinfoEncryptionEncValuesSupported  []string `json:"userinfo_encryption_enc_values_supported"`
	TokenEndpointAuthMethodsSupported     []string `json:"token_endpoint_auth_methods_supported"`
	TLSClientCertificateBoundAccessTokens bool     `json:"tls_client_certificate_bound_access_tokens"`
	RegistrationTokenSigningAlgsSupported []string `json:"registration_token_signing_alg_values_supported,omitempty"`
}

// JWKSHandler handles GET /{domain}/oidc/.well-known/jwks.json requests.
// It returns the public keys that verify registration access tokens.
func (h *Handler) JWKSHandler(w http.ResponseWriter, r *http.Request) {
	publicJWKS, err := keys.JWKS(r.Context(), h.keys)
	if err != nil {
		logger.Errorw("no public JWKS available", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	data, err := json.Marshal(publicJWKS)
	if err != nil {
		logger.Errorw("failed to encode JWKS",
			"error", err.Error(),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", DefaultJWKSCacheMaxAge))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = w.Write(data)
}

// OIDCDiscoveryHandler handles GET /{domain}/oidc/.well-known/openid-configuration
// requests. The registration endpoint is only advertised while registration
// is enabled on the domain.
func (h *Handler) OIDCDiscoveryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	domain := domainFrom(ctx)
	tokens := h.service.Tokens()
	catalog := h.service.Catalog()
	issuer := tokens.Issuer(basePath(r))

	doc := discoveryDocument{
		Issuer:                                issuer,
		JWKSURI:                               issuer + "/.well-known/jwks.json",
		ResponseTypesSupported:                catalog.ResponseTypes,
		GrantTypesSupported:                   catalog.GrantTypes,
		SubjectTypesSupported:                 catalog.SubjectTypes,
		IDTokenSigningAlgValuesSupported:      catalog.SigningAlgs,
		IDTokenEncryptionAlgValuesSupported:   catalog.EncryptionAlgs,
		IDTokenEncryptionEncValuesSupported:   catalog.EncryptionEncs,
		UserinfoSigningAlgValuesSupported:     catalog.SigningAlgs,
		UserinfoEncryptionAlgValuesSupported:  catalog.EncryptionAlgs,
		UserinfoEncryptionEncValuesSupported:  catalog.EncryptionEncs,
		TokenEndpointAuthMethodsSupported:     tokenEndpointAuthMethods,
		TLSClientCertificateBoundAccessTokens: true,
	}
	if domain.OIDC.DynamicClientRegistrationEnabled {
		doc.RegistrationEndpoint = tokens.RegistrationEndpoint(basePath(r))
	}
	if domain.OIDC.AllowedScopesEnabled {
		doc.ScopesSupported = domain.OIDC.AllowedScopes
	}
	if pubKeys, err := h.keys.PublicKeys(ctx); err == nil {
		for _, k := range pubKeys {
			doc.RegistrationTokenSigningAlgsSupported = append(doc.RegistrationTokenSigningAlgsSupported, k.Algorithm)
		}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		logger.Errorw("failed to encode discovery document",
			"error", err.Error(),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", DefaultDiscoveryCacheMaxAge))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = w.Write(data)
}
