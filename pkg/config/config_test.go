// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
issuer: https://auth.example.com/
storage:
  type: memory
registration:
  sector_identifier_timeout: 3s
domains:
  - id: acme
    name: Acme
    dynamic_client_registration: true
    templates_enabled: true
    allowed_scopes_enabled: true
    allowed_scopes: [openid, profile]
    default_scopes: [openid]
    secret_algorithm: bcrypt
    secret_expiry: 720h
    identity_providers:
      - id: idp-1
        name: Default
        type: memory-am-idp
    certificates:
      - id: cert-1
        name: Default
        system: true
    templates:
      - id: tpl-1
        client_id: tpl-client
        client_name: Mobile template
        grant_types: [authorization_code]
        forms:
          - template: LOGIN
            content: "<html></html>"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "https://auth.example.com", cfg.Issuer)
	assert.Equal(t, DefaultListenAddress, cfg.ListenAddress)
	assert.Equal(t, StorageTypeMemory, cfg.Storage.Type)
	assert.Equal(t, DefaultRegistrationTokenTTL, cfg.Registration.TokenTTL)
	assert.Equal(t, 3*time.Second, cfg.Registration.SectorIdentifierTimeout)
	assert.Equal(t, DefaultJWKSTimeout, cfg.Registration.JWKSTimeout)

	require.Len(t, cfg.Domains, 1)
	d := cfg.Domains[0]
	assert.Equal(t, "acme", d.ID)
	assert.Equal(t, "BCRYPT", d.SecretAlgorithm)
	assert.Equal(t, 720*time.Hour, d.SecretExpiry)
	assert.Equal(t, []string{"openid", "profile"}, d.AllowedScopes)
	require.Len(t, d.Templates, 1)
	assert.Equal(t, "tpl-client", d.Templates[0].ClientID)
	require.Len(t, d.Templates[0].Forms, 1)
	assert.Equal(t, "LOGIN", d.Templates[0].Forms[0].Template)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_EnvOverride(t *testing.T) { //nolint:paralleltest // uses t.Setenv
	t.Setenv("DCRGATE_ISSUER", "https://override.example.com")
	t.Setenv("DCRGATE_REGISTRATION_JWKS_TIMEOUT", "2s")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "https://override.example.com", cfg.Issuer)
	assert.Equal(t, 2*time.Second, cfg.Registration.JWKSTimeout)
}

func validConfig() Config {
	return Config{
		Issuer:        "https://auth.example.com",
		ListenAddress: ":8080",
		Storage:       StorageConfig{Type: StorageTypeMemory},
		Registration: RegistrationConfig{
			TokenTTL:                time.Hour,
			SectorIdentifierTimeout: time.Second,
			JWKSTimeout:             time.Second,
		},
		Domains: []DomainConfig{{ID: "acme", Name: "Acme", SecretAlgorithm: "NONE"}},
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing issuer",
			mutate:  func(c *Config) { c.Issuer = "" },
			wantErr: "issuer is required",
		},
		{
			name:    "relative issuer",
			mutate:  func(c *Config) { c.Issuer = "/auth" },
			wantErr: "absolute http(s) URL",
		},
		{
			name:    "unknown storage type",
			mutate:  func(c *Config) { c.Storage.Type = "etcd" },
			wantErr: "type",
		},
		{
			name:    "redis without addresses",
			mutate:  func(c *Config) { c.Storage.Type = StorageTypeRedis; c.Storage.Redis.KeyPrefix = "x:" },
			wantErr: "at least one redis address is required",
		},
		{
			name: "redis complete",
			mutate: func(c *Config) {
				c.Storage.Type = StorageTypeRedis
				c.Storage.Redis = RedisConfig{Addrs: []string{"localhost:6379"}, KeyPrefix: "x:"}
			},
		},
		{
			name: "redis cluster without hash tag",
			mutate: func(c *Config) {
				c.Storage.Type = StorageTypeRedis
				c.Storage.Redis = RedisConfig{Addrs: []string{"node-1:6379", "node-2:6379"}, KeyPrefix: "x:"}
			},
			wantErr: "must contain a {hash tag} in cluster mode",
		},
		{
			name: "redis cluster with hash tag",
			mutate: func(c *Config) {
				c.Storage.Type = StorageTypeRedis
				c.Storage.Redis = RedisConfig{Addrs: []string{"node-1:6379", "node-2:6379"}, KeyPrefix: "x:{acme}:"}
			},
		},
		{
			name: "redis sentinel without hash tag",
			mutate: func(c *Config) {
				c.Storage.Type = StorageTypeRedis
				c.Storage.Redis = RedisConfig{Addrs: []string{"s1:26379", "s2:26379"}, MasterName: "mymaster", KeyPrefix: "x:"}
			},
		},
		{
			name:    "key dir without signing key",
			mutate:  func(c *Config) { c.Keys.KeyDir = "/keys" },
			wantErr: "is required when key_dir is set",
		},
		{
			name:    "unknown secret algorithm",
			mutate:  func(c *Config) { c.Domains[0].SecretAlgorithm = "MD5" },
			wantErr: "secret_algorithm",
		},
		{
			name:    "domain id with slash",
			mutate:  func(c *Config) { c.Domains[0].ID = "a/b" },
			wantErr: "must not contain",
		},
		{
			name:    "allow-list enabled but empty",
			mutate:  func(c *Config) { c.Domains[0].AllowedScopesEnabled = true },
			wantErr: "required when allowed_scopes_enabled is set",
		},
		{
			name: "duplicate domain",
			mutate: func(c *Config) {
				c.Domains = append(c.Domains, DomainConfig{ID: "acme", Name: "Again", SecretAlgorithm: "NONE"})
			},
			wantErr: `duplicate domain id "acme"`,
		},
		{
			name: "template without client id",
			mutate: func(c *Config) {
				c.Domains[0].Templates = []TemplateConfig{{ID: "tpl"}}
			},
			wantErr: "client_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWriteYAML_OmitsPassword(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Storage.Redis.Password = "hunter2"

	var buf bytes.Buffer
	require.NoError(t, cfg.WriteYAML(&buf))
	assert.Contains(t, buf.String(), "issuer: https://auth.example.com")
	assert.NotContains(t, buf.String(), "hunter2")
}

func TestDomainBasePath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "/acme/oidc", DomainBasePath("acme"))
}

func TestHasHashTag(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		DefaultRedisKeyPrefix: true,
		"app:{tenant}:":       true,
		"app:":                false,
		"app:{}:":             false,
		"app:{open:":          false,
	}
	for prefix, want := range tests {
		assert.Equal(t, want, HasHashTag(prefix), prefix)
	}
}
