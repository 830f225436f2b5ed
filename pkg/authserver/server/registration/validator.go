// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package registration

import (
	"context"
	"net/url"
	"slices"
	"strings"

	"github.com/stacklok/dcrgate/pkg/authserver/client"
	"github.com/stacklok/dcrgate/pkg/logger"
)

// ValidationContext carries what the rules need besides the request.
type ValidationContext struct {
	Domain *client.Domain

	// Patch relaxes the rules that only apply to full registrations.
	Patch bool
}

// Rule checks one aspect of a registration request. Rules may fill in
// defaults on req.
type Rule func(ctx context.Context, req *DCRRequest, vc *ValidationContext) error

// Validator runs the registration rules in order and stops at the first
// failure.
type Validator struct {
	catalog *Catalog
	sector  SectorVerifier
	jwks    JWKSFetcher
	rules   []Rule
}

// NewValidator creates a Validator for the given catalog.
func NewValidator(catalog *Catalog, sector SectorVerifier, jwks JWKSFetcher) *Validator {
	v := &Validator{catalog: catalog, sector: sector, jwks: jwks}
	v.rules = []Rule{
		v.validateRedirectURIs,
		v.validateResponseTypes,
		v.validateGrantTypes,
		v.validateSubjectType,
		v.validateRequestURIs,
		v.validateSectorIdentifierURI,
		v.validateJWKS,
		v.validateUserinfoSigningAlg,
		v.validateUserinfoEncryption,
		v.validateIDTokenAlgs,
		v.validateTLSClientAuth,
		v.validateSelfSignedTLSClientAuth,
	}
	return v
}

// Catalog returns the catalog the validator checks against.
func (v *Validator) Catalog() *Catalog { return v.catalog }

// Validate checks req and then narrows its scope to what the domain allows.
// Errors that describe the request are *DCRError values.
func (v *Validator) Validate(ctx context.Context, req *DCRRequest, vc *ValidationContext) error {
	for _, rule := range v.rules {
		if err := rule(ctx, req, vc); err != nil {
			logger.Debugw("rejected registration request", "patch", vc.Patch, "error", err)
			return err
		}
	}
	ShapeScopes(req, vc.Domain)
	return nil
}

func (*Validator) validateRedirectURIs(_ context.Context, req *DCRRequest, vc *ValidationContext) error {
	// redirect_uris is required except on patch, but may be empty.
	if !vc.Patch && !req.RedirectURIs.HasValue() {
		return NewInvalidRedirectURI("Missing or invalid redirect_uris.")
	}
	uris, _ := req.RedirectURIs.Get()
	for _, uri := range uris {
		u, err := url.Parse(uri)
		if err != nil || !u.IsAbs() || u.Fragment != "" || strings.Contains(uri, "#") {
			return NewInvalidRedirectURI("redirect_uri %s must be an absolute URI without fragment", uri)
		}
	}
	return nil
}

func (v *Validator) validateResponseTypes(_ context.Context, req *DCRRequest, _ *ValidationContext) error {
	types, _ := req.ResponseTypes.Get()
	for _, rt := range types {
		if !v.catalog.SupportsResponseType(rt) {
			return NewInvalidClientMetadata("Invalid response type.")
		}
	}
	return nil
}

func (v *Validator) validateGrantTypes(_ context.Context, req *DCRRequest, _ *ValidationContext) error {
	types, _ := req.GrantTypes.Get()
	for _, gt := range types {
		if !v.catalog.SupportsGrantType(gt) {
			return NewInvalidClientMetadata("Missing or invalid grant type.")
		}
	}
	return nil
}

func (v *Validator) validateSubjectType(_ context.Context, req *DCRRequest, _ *ValidationContext) error {
	if st, ok := req.SubjectType.Get(); ok && !v.catalog.SupportsSubjectType(st) {
		return NewInvalidClientMetadata("Unsupported subject type")
	}
	return nil
}

func (*Validator) validateRequestURIs(_ context.Context, req *DCRRequest, _ *ValidationContext) error {
	uris, _ := req.RequestURIs.Get()
	for _, uri := range uris {
		u, err := url.ParseRequestURI(uri)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return NewInvalidClientMetadata("request_uris: %s is not a valid URL", uri)
		}
	}
	return nil
}

func (v *Validator) validateSectorIdentifierURI(ctx context.Context, req *DCRRequest, _ *ValidationContext) error {
	uri, ok := req.SectorIdentifierURI.Get()
	if !ok || strings.TrimSpace(uri) == "" {
		return nil
	}
	return v.sector.Verify(ctx, uri, req.RedirectURIs.OrElse(nil))
}

func (v *Validator) validateJWKS(ctx context.Context, req *DCRRequest, _ *ValidationContext) error {
	if req.JWKS.HasValue() && req.JWKSURI.HasValue() {
		return NewInvalidClientMetadata("The jwks_uri and jwks parameters MUST NOT be used together.")
	}
	uri, ok := req.JWKSURI.Get()
	if !ok || strings.TrimSpace(uri) == "" {
		return nil
	}
	set, err := v.jwks.GetKeys(ctx, uri)
	if err != nil || set == nil || len(set.Keys) == 0 {
		logger.Debugw("no keys behind jwks_uri", "uri", uri, "error", err)
		return NewInvalidClientMetadata("No JWK found behind jws uri...")
	}
	return nil
}

func (v *Validator) validateUserinfoSigningAlg(_ context.Context, req *DCRRequest, _ *ValidationContext) error {
	if alg, ok := req.UserinfoSignedResponseAlg.Get(); ok && !v.catalog.SupportsSigningAlg(alg) {
		return NewInvalidClientMetadata("Unsupported userinfo signing algorithm")
	}
	return nil
}

func (v *Validator) validateUserinfoEncryption(_ context.Context, req *DCRRequest, _ *ValidationContext) error {
	return v.validateEncryption("userinfo", &req.UserinfoEncryptedResponseAlg, &req.UserinfoEncryptedResponseEnc)
}

func (v *Validator) validateIDTokenAlgs(_ context.Context, req *DCRRequest, _ *ValidationContext) error {
	if alg, ok := req.IDTokenSignedResponseAlg.Get(); ok && !v.catalog.SupportsSigningAlg(alg) {
		return NewInvalidClientMetadata("Unsupported id_token signing algorithm")
	}
	return v.validateEncryption("id_token", &req.IDTokenEncryptedResponseAlg, &req.IDTokenEncryptedResponseEnc)
}

// validateEncryption checks an *_encrypted_response_alg/enc pair. enc needs
// alg; alg without enc gets the catalog's default enc.
func (v *Validator) validateEncryption(prefix string, alg, enc *Optional[string]) error {
	algValue, hasAlg := alg.Get()
	encValue, hasEnc := enc.Get()

	if !hasAlg {
		if hasEnc {
			return NewInvalidClientMetadata(
				"When %s_encrypted_response_enc is included, %s_encrypted_response_alg MUST also be provided",
				prefix, prefix)
		}
		return nil
	}

	if !v.catalog.SupportsEncryptionAlg(algValue) {
		return NewInvalidClientMetadata("Unsupported %s_encrypted_response_alg value", prefix)
	}
	if !hasEnc {
		*enc = Some(v.catalog.DefaultEncryptionEnc)
		return nil
	}
	if !v.catalog.SupportsEncryptionEnc(encValue) {
		return NewInvalidClientMetadata("Unsupported %s_encrypted_response_enc value", prefix)
	}
	return nil
}

func (*Validator) validateTLSClientAuth(_ context.Context, req *DCRRequest, _ *ValidationContext) error {
	if method, _ := req.TokenEndpointAuthMethod.Get(); method != client.AuthMethodTLSClientAuth {
		return nil
	}

	set := 0
	for _, field := range []Optional[string]{
		req.TLSClientAuthSubjectDN,
		req.TLSClientAuthSANDNS,
		req.TLSClientAuthSANIP,
		req.TLSClientAuthSANEmail,
		req.TLSClientAuthSANURI,
	} {
		if value, ok := field.Get(); ok && strings.TrimSpace(value) != "" {
			set++
		}
	}

	switch {
	case set == 0:
		return NewInvalidClientMetadata("Missing TLS parameter for tls_client_auth.")
	case set > 1:
		return NewInvalidClientMetadata("The tls_client_auth must use exactly one of the TLS parameters.")
	}
	return nil
}

func (*Validator) validateSelfSignedTLSClientAuth(_ context.Context, req *DCRRequest, _ *ValidationContext) error {
	if method, _ := req.TokenEndpointAuthMethod.Get(); method != client.AuthMethodSelfSignedTLSClientAuth {
		return nil
	}
	uri, _ := req.JWKSURI.Get()
	if !req.JWKS.HasValue() && strings.TrimSpace(uri) == "" {
		return NewInvalidClientMetadata("The self_signed_tls_client_auth requires at least a jwks or a valid jwks_uri.")
	}
	return nil
}

// ShapeScopes drops requested scopes the domain does not allow and falls back
// to the domain's default scopes when nothing is left. It never fails.
func ShapeScopes(req *DCRRequest, domain *client.Domain) {
	if domain == nil {
		return
	}
	oidc := domain.OIDC

	if scope, ok := req.Scope.Get(); ok && oidc.AllowedScopesEnabled {
		kept := slices.DeleteFunc(strings.Fields(scope), func(s string) bool {
			return !slices.Contains(oidc.AllowedScopes, s)
		})
		req.Scope = Some(strings.Join(kept, " "))
	}

	if scope, _ := req.Scope.Get(); strings.TrimSpace(scope) == "" && len(oidc.DefaultScopes) > 0 {
		req.Scope = Some(strings.Join(oidc.DefaultScopes, " "))
	}
}
