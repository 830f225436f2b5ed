// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/dcrgate/pkg/errors"
)

func TestSettingsID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		algorithm  string
		properties map[string]any
		want       string
	}{
		{
			name:      "none with nil properties",
			algorithm: "NONE",
			want:      "KCeEqDS0LQnBo4BRBmgrPgFHROR2E/lVFbZK6TqEHmg=",
		},
		{
			name:       "none with empty properties",
			algorithm:  "NONE",
			properties: map[string]any{},
			want:       "KCeEqDS0LQnBo4BRBmgrPgFHROR2E/lVFbZK6TqEHmg=",
		},
		{
			name:       "bcrypt rounds",
			algorithm:  "BCRYPT",
			properties: map[string]any{"rounds": 10},
			want:       "KVY5m34Bp3r5PH5cQrKYXdRYAfiRpy2QqJyqNjhg57Q=",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := SettingsID(tt.algorithm, tt.properties)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettingsID_KeyOrderDoesNotMatter(t *testing.T) {
	t.Parallel()

	a, err := SettingsID("ARGON2ID", map[string]any{"policy": "moderate", "salt": 16})
	require.NoError(t, err)
	b, err := SettingsID("ARGON2ID", map[string]any{"salt": 16, "policy": "moderate"})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := SettingsID("ARGON2ID", map[string]any{"policy": "interactive", "salt": 16})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestSettingsID_UnserializableIsConfigurationError(t *testing.T) {
	t.Parallel()

	_, err := SettingsID("BCRYPT", map[string]any{"rounds": make(chan int)})
	require.Error(t, err)
	assert.True(t, errors.IsSecretConfiguration(err))
}

func TestNewSettings(t *testing.T) {
	t.Parallel()

	settings, err := NewSettings("NONE", nil)
	require.NoError(t, err)
	assert.Equal(t, "KCeEqDS0LQnBo4BRBmgrPgFHROR2E/lVFbZK6TqEHmg=", settings.ID)
	assert.Equal(t, "NONE", settings.Algorithm)
}
