// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"net/url"
	"strings"

	validation "github.com/jellydator/validation"
)

var secretAlgorithms = []any{"NONE", "BCRYPT", "ARGON2ID"}

// absoluteURL checks that a string is an absolute http(s) URL without a fragment.
var absoluteURL = validation.By(func(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") || u.Fragment != "" {
		return validation.NewError("validation_absolute_url", "must be an absolute http(s) URL without fragment")
	}
	return nil
})

// hashTagged requires a Redis Cluster {hash tag} in a key prefix.
var hashTagged = validation.By(func(value any) error {
	s, _ := value.(string)
	if s != "" && !HasHashTag(s) {
		return validation.NewError("validation_hash_tag", "must contain a {hash tag} in cluster mode")
	}
	return nil
})

// pathSegment rejects values that cannot be used as a single URL path segment.
var pathSegment = validation.By(func(value any) error {
	s, _ := value.(string)
	if strings.ContainsAny(s, "/?# ") {
		return validation.NewError("validation_path_segment", "must not contain '/', '?', '#' or spaces")
	}
	return nil
})

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.Issuer, validation.Required.Error("issuer is required"), absoluteURL),
		validation.Field(&c.ListenAddress, validation.Required),
		validation.Field(&c.Storage),
		validation.Field(&c.Keys),
		validation.Field(&c.Registration),
		validation.Field(&c.Domains),
	); err != nil {
		return err
	}
	return c.validateUniqueDomains()
}

func (c Config) validateUniqueDomains() error {
	seen := make(map[string]bool, len(c.Domains))
	for _, d := range c.Domains {
		if seen[d.ID] {
			return fmt.Errorf("duplicate domain id %q", d.ID)
		}
		seen[d.ID] = true
	}
	return nil
}

// Validate checks the storage section.
func (s StorageConfig) Validate() error {
	if err := validation.ValidateStruct(&s,
		validation.Field(&s.Type, validation.Required, validation.In(StorageTypeMemory, StorageTypeRedis)),
	); err != nil {
		return err
	}
	if s.Type == StorageTypeRedis {
		return validation.Errors{"redis": s.Redis.Validate()}.Filter()
	}
	return nil
}

// Validate checks the Redis section.
func (r RedisConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Addrs, validation.Required.Error("at least one redis address is required")),
		validation.Field(&r.KeyPrefix, validation.Required, validation.When(r.ClusterMode(), hashTagged)),
		validation.Field(&r.DB, validation.Min(0)),
	)
}

// Validate checks the keys section.
func (k KeysConfig) Validate() error {
	return validation.ValidateStruct(&k,
		validation.Field(&k.SigningKeyFile,
			validation.When(k.KeyDir != "", validation.Required.Error("is required when key_dir is set"))),
	)
}

// Validate checks the registration section.
func (r RegistrationConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TokenTTL, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.SectorIdentifierTimeout, validation.Required),
		validation.Field(&r.JWKSTimeout, validation.Required),
		validation.Field(&r.GrantTypes, validation.Each(validation.Required)),
		validation.Field(&r.ResponseTypes, validation.Each(validation.Required)),
	)
}

// Validate checks a seeded domain.
func (d DomainConfig) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ID, validation.Required, pathSegment),
		validation.Field(&d.Name, validation.Required),
		validation.Field(&d.SecretAlgorithm, validation.In(secretAlgorithms...)),
		validation.Field(&d.AllowedScopes,
			validation.When(d.AllowedScopesEnabled, validation.Required.Error("required when allowed_scopes_enabled is set"))),
		validation.Field(&d.IdentityProviders),
		validation.Field(&d.Certificates),
		validation.Field(&d.Templates),
	)
}

// Validate checks a seeded identity provider.
func (p IdentityProviderConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.Required),
		validation.Field(&p.Type, validation.Required),
	)
}

// Validate checks a seeded certificate.
func (c CertificateConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ID, validation.Required),
	)
}

// Validate checks a seeded template client.
func (t TemplateConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.ID, validation.Required),
		validation.Field(&t.ClientID, validation.Required),
		validation.Field(&t.RedirectURIs, validation.Each(absoluteURL)),
	)
}
