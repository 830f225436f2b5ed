// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package registration

import (
	"slices"
	"strings"

	"github.com/go-jose/go-jose/v4"
)

// Grant types the server knows about.
const (
	GrantTypeAuthorizationCode = "authorization_code"
	GrantTypeImplicit          = "implicit"
	GrantTypeRefreshToken      = "refresh_token"
	GrantTypePassword          = "password"
	GrantTypeClientCredentials = "client_credentials"
	GrantTypeJWTBearer         = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	GrantTypeDeviceCode        = "urn:ietf:params:oauth:grant-type:device_code"
	GrantTypeTokenExchange     = "urn:ietf:params:oauth:grant-type:token-exchange"
)

// DefaultEncryptionEnc is the content encryption used when a client names an
// encryption alg without an enc.
const DefaultEncryptionEnc = string(jose.A128CBC_HS256)

// Catalog lists the metadata values registration accepts.
type Catalog struct {
	ResponseTypes  []string `json:"response_types_supported"`
	GrantTypes     []string `json:"grant_types_supported"`
	SubjectTypes   []string `json:"subject_types_supported"`
	SigningAlgs    []string `json:"signing_alg_values_supported"`
	EncryptionAlgs []string `json:"encryption_alg_values_supported"`
	EncryptionEncs []string `json:"encryption_enc_values_supported"`

	// DefaultEncryptionEnc fills in a missing *_encrypted_response_enc.
	DefaultEncryptionEnc string `json:"-"`
}

// DefaultCatalog returns the catalog of everything the server supports.
func DefaultCatalog() *Catalog {
	return &Catalog{
		ResponseTypes: []string{
			"code", "token", "id_token",
			"code token", "code id_token", "id_token token", "code id_token token",
			"none",
		},
		GrantTypes: []string{
			GrantTypeAuthorizationCode,
			GrantTypeImplicit,
			GrantTypeRefreshToken,
			GrantTypePassword,
			GrantTypeClientCredentials,
			GrantTypeJWTBearer,
			GrantTypeDeviceCode,
			GrantTypeTokenExchange,
		},
		SubjectTypes: []string{"public", "pairwise"},
		SigningAlgs: algNames(
			jose.RS256, jose.RS384, jose.RS512,
			jose.PS256, jose.PS384, jose.PS512,
			jose.ES256, jose.ES384, jose.ES512,
			jose.HS256, jose.HS384, jose.HS512,
			jose.EdDSA,
		),
		EncryptionAlgs: algNames(
			jose.RSA_OAEP, jose.RSA_OAEP_256,
			jose.ECDH_ES, jose.ECDH_ES_A128KW, jose.ECDH_ES_A192KW, jose.ECDH_ES_A256KW,
			jose.A128KW, jose.A192KW, jose.A256KW,
			jose.A128GCMKW, jose.A192GCMKW, jose.A256GCMKW,
			jose.DIRECT,
		),
		EncryptionEncs: algNames(
			jose.A128CBC_HS256, jose.A192CBC_HS384, jose.A256CBC_HS512,
			jose.A128GCM, jose.A192GCM, jose.A256GCM,
		),
		DefaultEncryptionEnc: DefaultEncryptionEnc,
	}
}

// WithGrantTypes returns a copy of c restricted to grantTypes. An empty list
// keeps c's grant types.
func (c *Catalog) WithGrantTypes(grantTypes []string) *Catalog {
	out := *c
	if len(grantTypes) > 0 {
		out.GrantTypes = slices.Clone(grantTypes)
	}
	return &out
}

// WithResponseTypes returns a copy of c restricted to responseTypes. An empty
// list keeps c's response types.
func (c *Catalog) WithResponseTypes(responseTypes []string) *Catalog {
	out := *c
	if len(responseTypes) > 0 {
		out.ResponseTypes = slices.Clone(responseTypes)
	}
	return &out
}

// SupportsResponseType reports whether rt is in the catalog. Multi-valued
// response types match regardless of word order.
func (c *Catalog) SupportsResponseType(rt string) bool {
	want := normalizeResponseType(rt)
	return slices.ContainsFunc(c.ResponseTypes, func(s string) bool {
		return normalizeResponseType(s) == want
	})
}

// SupportsGrantType reports whether gt is in the catalog.
func (c *Catalog) SupportsGrantType(gt string) bool { return slices.Contains(c.GrantTypes, gt) }

// SupportsSubjectType reports whether st is in the catalog.
func (c *Catalog) SupportsSubjectType(st string) bool { return slices.Contains(c.SubjectTypes, st) }

// SupportsSigningAlg reports whether alg is in the catalog.
func (c *Catalog) SupportsSigningAlg(alg string) bool { return slices.Contains(c.SigningAlgs, alg) }

// SupportsEncryptionAlg reports whether alg is in the catalog.
func (c *Catalog) SupportsEncryptionAlg(alg string) bool {
	return slices.Contains(c.EncryptionAlgs, alg)
}

// SupportsEncryptionEnc reports whether enc is in the catalog.
func (c *Catalog) SupportsEncryptionEnc(enc string) bool {
	return slices.Contains(c.EncryptionEncs, enc)
}

func normalizeResponseType(rt string) string {
	parts := strings.Fields(rt)
	slices.Sort(parts)
	return strings.Join(parts, " ")
}

func algNames[T ~string](algs ...T) []string {
	out := make([]string, len(algs))
	for i, a := range algs {
		out[i] = string(a)
	}
	return out
}
