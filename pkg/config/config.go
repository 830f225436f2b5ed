// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config contains the definition of the dcrgate configuration
// structure and the logic required to load and validate it.
//
// Configuration is read from a YAML file and can be overridden with
// DCRGATE_ prefixed environment variables, where nested keys are joined
// with underscores:
//
//	DCRGATE_ISSUER=https://auth.example.com
//	DCRGATE_STORAGE_TYPE=redis
//	DCRGATE_REGISTRATION_SECTOR_IDENTIFIER_TIMEOUT=3s
package config

import (
	"strings"
	"time"
)

// StorageType defines the type of storage backend.
type StorageType string

const (
	// StorageTypeMemory uses in-memory storage (default).
	StorageTypeMemory StorageType = "memory"

	// StorageTypeRedis uses Redis for persistent storage.
	StorageTypeRedis StorageType = "redis"
)

const (
	// DefaultListenAddress is the address the HTTP server binds to.
	DefaultListenAddress = ":8080"

	// DefaultRegistrationTokenTTL is the lifetime of registration access tokens.
	DefaultRegistrationTokenTTL = 2 * 365 * 24 * time.Hour

	// DefaultSectorIdentifierTimeout bounds the sector_identifier_uri fetch.
	DefaultSectorIdentifierTimeout = 5 * time.Second

	// DefaultJWKSTimeout bounds the jwks_uri fetch.
	DefaultJWKSTimeout = 5 * time.Second

	// DefaultRedisKeyPrefix is the default key prefix for Redis storage. The
	// braces are a Redis Cluster hash tag: transactions watch several keys at
	// once, so every key must map to the same slot.
	DefaultRedisKeyPrefix = "dcrgate:{default}:"

	// DefaultRedisConnectAttempts is how many times startup tries to reach Redis.
	DefaultRedisConnectAttempts = 5

	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "DCRGATE"
)

// Config represents the configuration of the registration server.
type Config struct {
	// Issuer is the externally visible base URL. Per-domain issuers are
	// derived as Issuer + "/{domain}/oidc".
	Issuer string `mapstructure:"issuer" yaml:"issuer" json:"issuer"`

	// ListenAddress is the HTTP listen address.
	ListenAddress string `mapstructure:"listen_address" yaml:"listen_address" json:"listen_address"`

	Storage      StorageConfig      `mapstructure:"storage" yaml:"storage" json:"storage"`
	Keys         KeysConfig         `mapstructure:"keys" yaml:"keys" json:"keys"`
	Registration RegistrationConfig `mapstructure:"registration" yaml:"registration" json:"registration"`

	// Domains are seeded into storage at startup.
	Domains []DomainConfig `mapstructure:"domains" yaml:"domains" json:"domains"`
}

// StorageConfig configures the storage backend.
type StorageConfig struct {
	// Type specifies the storage backend type. Defaults to memory.
	Type StorageType `mapstructure:"type" yaml:"type" json:"type"`

	// Redis is required when Type is redis.
	Redis RedisConfig `mapstructure:"redis" yaml:"redis,omitempty" json:"redis"`
}

// RedisConfig holds Redis connection settings. When MasterName is set the
// addresses are treated as Sentinel addresses.
type RedisConfig struct {
	Addrs      []string `mapstructure:"addrs" yaml:"addrs,omitempty" json:"addrs"`
	MasterName string   `mapstructure:"master_name" yaml:"master_name,omitempty" json:"master_name"`
	Username   string   `mapstructure:"username" yaml:"username,omitempty" json:"username"`
	Password   string   `mapstructure:"password" yaml:"-" json:"-"`
	DB         int      `mapstructure:"db" yaml:"db,omitempty" json:"db"`
	KeyPrefix  string   `mapstructure:"key_prefix" yaml:"key_prefix,omitempty" json:"key_prefix"`

	// ConnectAttempts bounds the startup ping retries.
	ConnectAttempts uint `mapstructure:"connect_attempts" yaml:"connect_attempts,omitempty" json:"connect_attempts"`
}

// ClusterMode reports whether the addresses name Redis Cluster nodes.
func (r RedisConfig) ClusterMode() bool {
	return r.MasterName == "" && len(r.Addrs) > 1
}

// HasHashTag reports whether prefix contains a non-empty {hash tag}.
func HasHashTag(prefix string) bool {
	start := strings.IndexByte(prefix, '{')
	if start < 0 {
		return false
	}
	end := strings.IndexByte(prefix[start+1:], '}')
	return end > 0
}

// KeysConfig selects where the registration token signing key comes from.
// When KeyDir is empty an ephemeral key is generated.
type KeysConfig struct {
	KeyDir           string   `mapstructure:"key_dir" yaml:"key_dir,omitempty" json:"key_dir"`
	SigningKeyFile   string   `mapstructure:"signing_key_file" yaml:"signing_key_file,omitempty" json:"signing_key_file"`
	FallbackKeyFiles []string `mapstructure:"fallback_key_files" yaml:"fallback_key_files,omitempty" json:"fallback_key_files"`
}

// RegistrationConfig tunes the registration pipeline.
type RegistrationConfig struct {
	// TokenTTL is the registration access token lifetime.
	TokenTTL time.Duration `mapstructure:"token_ttl" yaml:"token_ttl" json:"token_ttl"`

	// SectorIdentifierTimeout bounds the sector_identifier_uri fetch.
	SectorIdentifierTimeout time.Duration `mapstructure:"sector_identifier_timeout" yaml:"sector_identifier_timeout" json:"sector_identifier_timeout"`

	// JWKSTimeout bounds the jwks_uri fetch.
	JWKSTimeout time.Duration `mapstructure:"jwks_timeout" yaml:"jwks_timeout" json:"jwks_timeout"`

	// AllowPrivateIPs lets outbound fetches reach private addresses.
	AllowPrivateIPs bool `mapstructure:"allow_private_ips" yaml:"allow_private_ips,omitempty" json:"allow_private_ips"`

	// CABundle is an optional PEM bundle for outbound TLS.
	CABundle string `mapstructure:"ca_bundle" yaml:"ca_bundle,omitempty" json:"ca_bundle"`

	// GrantTypes and ResponseTypes narrow the supported catalogs. Empty
	// keeps everything the server supports.
	GrantTypes    []string `mapstructure:"grant_types" yaml:"grant_types,omitempty" json:"grant_types"`
	ResponseTypes []string `mapstructure:"response_types" yaml:"response_types,omitempty" json:"response_types"`
}

// DomainConfig describes a tenant seeded at startup.
type DomainConfig struct {
	ID   string `mapstructure:"id" yaml:"id" json:"id"`
	Name string `mapstructure:"name" yaml:"name" json:"name"`

	DynamicClientRegistration bool `mapstructure:"dynamic_client_registration" yaml:"dynamic_client_registration" json:"dynamic_client_registration"`
	TemplatesEnabled          bool `mapstructure:"templates_enabled" yaml:"templates_enabled" json:"templates_enabled"`

	AllowedScopesEnabled bool     `mapstructure:"allowed_scopes_enabled" yaml:"allowed_scopes_enabled" json:"allowed_scopes_enabled"`
	AllowedScopes        []string `mapstructure:"allowed_scopes" yaml:"allowed_scopes,omitempty" json:"allowed_scopes"`
	DefaultScopes        []string `mapstructure:"default_scopes" yaml:"default_scopes,omitempty" json:"default_scopes"`

	// SecretAlgorithm is the hash algorithm for newly issued client secrets:
	// NONE, BCRYPT or ARGON2ID.
	SecretAlgorithm string `mapstructure:"secret_algorithm" yaml:"secret_algorithm,omitempty" json:"secret_algorithm"`

	// SecretProperties tunes the hash algorithm, e.g. {"rounds": 12} for
	// BCRYPT or {"policy": "moderate"} for ARGON2ID.
	SecretProperties map[string]any `mapstructure:"secret_properties" yaml:"secret_properties,omitempty" json:"secret_properties,omitempty"`

	// SecretExpiry is the default client secret lifetime. Zero never expires.
	SecretExpiry time.Duration `mapstructure:"secret_expiry" yaml:"secret_expiry,omitempty" json:"secret_expiry"`

	IdentityProviders []IdentityProviderConfig `mapstructure:"identity_providers" yaml:"identity_providers,omitempty" json:"identity_providers"`
	Certificates      []CertificateConfig      `mapstructure:"certificates" yaml:"certificates,omitempty" json:"certificates"`
	Templates         []TemplateConfig         `mapstructure:"templates" yaml:"templates,omitempty" json:"templates"`
}

// IdentityProviderConfig is an identity provider seeded into a domain.
type IdentityProviderConfig struct {
	ID       string `mapstructure:"id" yaml:"id" json:"id"`
	Name     string `mapstructure:"name" yaml:"name" json:"name"`
	Type     string `mapstructure:"type" yaml:"type" json:"type"`
	External bool   `mapstructure:"external" yaml:"external,omitempty" json:"external"`
}

// CertificateConfig is a signing certificate seeded into a domain.
type CertificateConfig struct {
	ID     string `mapstructure:"id" yaml:"id" json:"id"`
	Name   string `mapstructure:"name" yaml:"name" json:"name"`
	System bool   `mapstructure:"system" yaml:"system,omitempty" json:"system"`
}

// TemplateConfig is a template client that software_id registrations clone.
// ID is what callers pass as software_id.
type TemplateConfig struct {
	ID                      string   `mapstructure:"id" yaml:"id" json:"id"`
	ClientID                string   `mapstructure:"client_id" yaml:"client_id" json:"client_id"`
	ClientName              string   `mapstructure:"client_name" yaml:"client_name,omitempty" json:"client_name"`
	RedirectURIs            []string `mapstructure:"redirect_uris" yaml:"redirect_uris,omitempty" json:"redirect_uris"`
	GrantTypes              []string `mapstructure:"grant_types" yaml:"grant_types,omitempty" json:"grant_types"`
	ResponseTypes           []string `mapstructure:"response_types" yaml:"response_types,omitempty" json:"response_types"`
	Scopes                  []string `mapstructure:"scopes" yaml:"scopes,omitempty" json:"scopes"`
	TokenEndpointAuthMethod string   `mapstructure:"token_endpoint_auth_method" yaml:"token_endpoint_auth_method,omitempty" json:"token_endpoint_auth_method"`
	SoftwareVersion         string   `mapstructure:"software_version" yaml:"software_version,omitempty" json:"software_version"`

	Forms          []FormConfig          `mapstructure:"forms" yaml:"forms,omitempty" json:"forms"`
	EmailTemplates []EmailTemplateConfig `mapstructure:"email_templates" yaml:"email_templates,omitempty" json:"email_templates"`
}

// FormConfig is a customised page attached to a template client.
type FormConfig struct {
	Template string `mapstructure:"template" yaml:"template" json:"template"`
	Content  string `mapstructure:"content" yaml:"content" json:"content"`
}

// EmailTemplateConfig is a customised email attached to a template client.
type EmailTemplateConfig struct {
	Template string `mapstructure:"template" yaml:"template" json:"template"`
	Subject  string `mapstructure:"subject" yaml:"subject" json:"subject"`
	Content  string `mapstructure:"content" yaml:"content" json:"content"`
}

// DomainBasePath returns the URL path prefix of a domain's OIDC endpoints.
func DomainBasePath(domain string) string {
	return "/" + domain + "/oidc"
}
