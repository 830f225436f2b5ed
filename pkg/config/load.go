// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads the configuration file at path (optional), applies
// DCRGATE_ environment overrides and defaults, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("issuer", "")
	v.SetDefault("listen_address", DefaultListenAddress)
	v.SetDefault("storage.type", string(StorageTypeMemory))
	v.SetDefault("storage.redis.addrs", []string{})
	v.SetDefault("storage.redis.master_name", "")
	v.SetDefault("storage.redis.username", "")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.key_prefix", DefaultRedisKeyPrefix)
	v.SetDefault("storage.redis.connect_attempts", DefaultRedisConnectAttempts)
	v.SetDefault("keys.key_dir", "")
	v.SetDefault("keys.signing_key_file", "")
	v.SetDefault("registration.token_ttl", DefaultRegistrationTokenTTL)
	v.SetDefault("registration.sector_identifier_timeout", DefaultSectorIdentifierTimeout)
	v.SetDefault("registration.jwks_timeout", DefaultJWKSTimeout)
	v.SetDefault("registration.allow_private_ips", false)
	v.SetDefault("registration.ca_bundle", "")
}

func (c *Config) normalize() {
	c.Issuer = strings.TrimSuffix(c.Issuer, "/")
	for i := range c.Domains {
		if c.Domains[i].SecretAlgorithm == "" {
			c.Domains[i].SecretAlgorithm = "NONE"
		}
		c.Domains[i].SecretAlgorithm = strings.ToUpper(c.Domains[i].SecretAlgorithm)
	}
}

// WriteYAML writes the effective configuration as YAML. Secrets are omitted.
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}
