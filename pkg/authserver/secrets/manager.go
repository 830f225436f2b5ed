// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stacklok/dcrgate/pkg/authserver/client"
	"github.com/stacklok/dcrgate/pkg/logger"
)

// secretLength is the number of random bytes in a generated secret.
const secretLength = 32

// Manager selects, issues and rotates client secrets.
type Manager struct {
	now func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClock overrides the time source used for secret timestamps.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a secret Manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GenerateSecret returns a new random secret: 32 bytes from crypto/rand,
// base64url encoded without padding.
func GenerateSecret() (string, error) {
	b := make([]byte, secretLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DetermineClientSecret returns the secret used for plaintext client
// authentication. It reports false when the client has no secret list at
// all. A stored secret equal to the legacy ClientSecret field wins;
// otherwise the first secret bound to NONE settings is returned.
func (*Manager) DetermineClientSecret(c *client.Client) (*client.ClientSecret, bool) {
	if c == nil || c.Secrets == nil {
		return nil, false
	}

	if c.ClientSecret != "" {
		for i := range c.Secrets {
			if c.Secrets[i].Secret == c.ClientSecret {
				return &c.Secrets[i], true
			}
		}
	}

	for i := range c.Secrets {
		settings, ok := c.SettingsByID(c.Secrets[i].SettingsID)
		if ok && settings.Algorithm == client.SecretAlgorithmNone {
			return &c.Secrets[i], true
		}
	}
	return nil, false
}

// RotateSecret prepares a fresh plaintext secret on c and returns the id of
// the settings it is bound to. When secretToRenew is given the caller has
// already chosen the target and its id is returned unchanged.
//
// Otherwise the client gets a NONE settings entry if it has none, the legacy
// ClientSecret is reused when set (or a new one generated), and Secrets is
// replaced with a single entry holding that value. Expiry follows the
// client's policy, falling back to the domain's.
func (m *Manager) RotateSecret(c *client.Client, secretToRenew *client.ClientSecret, domain *client.Domain) (string, error) {
	if secretToRenew != nil {
		return secretToRenew.ID, nil
	}

	settings, err := ensureSettings(c, client.SecretAlgorithmNone, nil)
	if err != nil {
		return "", err
	}

	raw := c.ClientSecret
	if strings.TrimSpace(raw) == "" {
		raw, err = GenerateSecret()
		if err != nil {
			return "", err
		}
	}

	c.Secrets = []client.ClientSecret{m.newSecret(c, domain, raw, settings.ID)}
	return settings.ID, nil
}

// IssueSecret stores a freshly generated secret on c, hashed with the
// domain's secret settings, and returns the plain value. The plain value is
// kept in the legacy ClientSecret field only when the algorithm is NONE.
func (m *Manager) IssueSecret(c *client.Client, domain *client.Domain) (string, error) {
	algorithm, properties := client.SecretAlgorithmNone, map[string]any(nil)
	if domain != nil && domain.SecretSettings.Algorithm != "" {
		algorithm = domain.SecretSettings.Algorithm
		properties = domain.SecretSettings.Properties
	}

	settings, err := ensureSettings(c, algorithm, properties)
	if err != nil {
		return "", err
	}
	hasher, err := HasherFor(*settings)
	if err != nil {
		return "", err
	}

	plain, err := GenerateSecret()
	if err != nil {
		return "", err
	}
	stored, err := hasher.Hash(plain)
	if err != nil {
		return "", err
	}

	if algorithm == client.SecretAlgorithmNone {
		c.ClientSecret = plain
	} else {
		c.ClientSecret = ""
	}
	c.Secrets = []client.ClientSecret{m.newSecret(c, domain, stored, settings.ID)}

	logger.Debugw("issued client secret", "client_id", c.ClientID, "algorithm", algorithm)
	return plain, nil
}

// Authenticate reports whether presented matches one of the client's
// unexpired secrets. Clients without a secret list fall back to a
// constant-time compare against the legacy ClientSecret.
func (m *Manager) Authenticate(c *client.Client, presented string) (bool, error) {
	if c == nil || presented == "" {
		return false, nil
	}
	if c.Secrets == nil {
		if c.ClientSecret == "" {
			return false, nil
		}
		return noneHasher{}.Verify(presented, c.ClientSecret)
	}

	now := m.now()
	for i := range c.Secrets {
		secret := &c.Secrets[i]
		if secret.Expired(now) {
			continue
		}
		settings, ok := c.SettingsByID(secret.SettingsID)
		if !ok {
			logger.Warnw("client secret references unknown settings",
				"client_id", c.ClientID, "settings_id", secret.SettingsID)
			continue
		}
		hasher, err := HasherFor(*settings)
		if err != nil {
			return false, err
		}
		match, err := hasher.Verify(presented, secret.Secret)
		if err != nil {
			return false, err
		}
		if match {
			return true, nil
		}
	}
	return false, nil
}

func (m *Manager) newSecret(c *client.Client, domain *client.Domain, value, settingsID string) client.ClientSecret {
	now := m.now()
	expiration := c.SecretExpiration
	if expiration == nil && domain != nil {
		expiration = domain.SecretExpiration
	}
	return client.ClientSecret{
		ID:         uuid.NewString(),
		Name:       client.DefaultSecretName,
		Secret:     value,
		SettingsID: settingsID,
		CreatedAt:  now,
		ExpiresAt:  expiration.ExpiresAt(now),
	}
}

// ensureSettings returns the client's settings entry for (algorithm,
// properties), appending one when missing.
func ensureSettings(c *client.Client, algorithm string, properties map[string]any) (*client.SecretSettings, error) {
	id, err := SettingsID(algorithm, properties)
	if err != nil {
		return nil, err
	}
	if existing, ok := c.SettingsByID(id); ok {
		return existing, nil
	}
	if properties == nil {
		properties = map[string]any{}
	}
	c.SecretSettings = append(c.SecretSettings, client.SecretSettings{
		ID:         id,
		Algorithm:  algorithm,
		Properties: properties,
	})
	return &c.SecretSettings[len(c.SecretSettings)-1], nil
}
