// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package keys

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/dcrgate/pkg/config"
)

// writeECKey writes a fresh PEM-encoded P-256 key to dir and returns the filename.
func writeECKey(t *testing.T, dir, filename string) string {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	data := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), data, 0600))
	return filename
}

func TestFileProvider(t *testing.T) {
	t.Parallel()

	t.Run("loads signing and fallback keys", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		signing := writeECKey(t, dir, "signing.pem")
		old1 := writeECKey(t, dir, "old1.pem")
		old2 := writeECKey(t, dir, "old2.pem")

		provider, err := NewFileProvider(config.KeysConfig{
			KeyDir:           dir,
			SigningKeyFile:   signing,
			FallbackKeyFiles: []string{old1, old2},
		})
		require.NoError(t, err)

		key, err := provider.SigningKey(context.Background())
		require.NoError(t, err)
		assert.NotEmpty(t, key.KeyID)
		assert.Equal(t, "ES256", key.Algorithm)

		pubKeys, err := provider.PublicKeys(context.Background())
		require.NoError(t, err)
		require.Len(t, pubKeys, 3)
		assert.Equal(t, key.KeyID, pubKeys[0].KeyID)
		assert.NotEqual(t, pubKeys[1].KeyID, pubKeys[2].KeyID)
	})

	t.Run("signing key is a copy", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		provider, err := NewFileProvider(config.KeysConfig{KeyDir: dir, SigningKeyFile: writeECKey(t, dir, "k.pem")})
		require.NoError(t, err)

		key, err := provider.SigningKey(context.Background())
		require.NoError(t, err)
		key.KeyID = "mutated"

		again, err := provider.SigningKey(context.Background())
		require.NoError(t, err)
		assert.NotEqual(t, "mutated", again.KeyID)
	})

	errorCases := []struct {
		name    string
		cfg     func(dir string) config.KeysConfig
		wantErr string
	}{
		{
			name:    "missing signing key file name",
			cfg:     func(dir string) config.KeysConfig { return config.KeysConfig{KeyDir: dir} },
			wantErr: "signing key file is required",
		},
		{
			name: "non-existent file",
			cfg: func(string) config.KeysConfig {
				return config.KeysConfig{KeyDir: "/nonexistent", SigningKeyFile: "key.pem"}
			},
			wantErr: "failed to load signing key",
		},
		{
			name: "invalid fallback key",
			cfg: func(dir string) config.KeysConfig {
				return config.KeysConfig{
					KeyDir:           dir,
					SigningKeyFile:   "signing.pem",
					FallbackKeyFiles: []string{"missing.pem"},
				}
			},
			wantErr: "failed to load fallback key missing.pem",
		},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			writeECKey(t, dir, "signing.pem")
			_, err := NewFileProvider(tt.cfg(dir))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGeneratingProvider(t *testing.T) {
	t.Parallel()

	for _, alg := range []string{"ES256", "ES384", "ES512"} {
		t.Run(alg, func(t *testing.T) {
			t.Parallel()
			key, err := NewGeneratingProvider(alg).SigningKey(context.Background())
			require.NoError(t, err)
			assert.Equal(t, alg, key.Algorithm)
			assert.NotEmpty(t, key.KeyID)
		})
	}

	t.Run("uses default algorithm when empty", func(t *testing.T) {
		t.Parallel()
		key, err := NewGeneratingProvider("").SigningKey(context.Background())
		require.NoError(t, err)
		assert.Equal(t, DefaultAlgorithm, key.Algorithm)
	})

	t.Run("fails for unsupported algorithm", func(t *testing.T) {
		t.Parallel()
		_, err := NewGeneratingProvider("RS256").SigningKey(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported algorithm")
	})

	t.Run("same key across concurrent calls", func(t *testing.T) {
		t.Parallel()
		provider := NewGeneratingProvider("ES256")

		var wg sync.WaitGroup
		var keys [10]*SigningKeyData
		var errs [10]error
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				keys[idx], errs[idx] = provider.SigningKey(context.Background())
			}(i)
		}
		wg.Wait()

		for i := 0; i < 10; i++ {
			require.NoError(t, errs[i])
			assert.Equal(t, keys[0].KeyID, keys[i].KeyID)
		}

		pubKeys, err := provider.PublicKeys(context.Background())
		require.NoError(t, err)
		require.Len(t, pubKeys, 1)
		assert.Equal(t, keys[0].KeyID, pubKeys[0].KeyID)
	})
}

func TestNewProviderFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("file provider when key dir is set", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		provider, err := NewProviderFromConfig(config.KeysConfig{KeyDir: dir, SigningKeyFile: writeECKey(t, dir, "k.pem")})
		require.NoError(t, err)
		assert.IsType(t, &FileProvider{}, provider)
	})

	t.Run("generating provider otherwise", func(t *testing.T) {
		t.Parallel()
		provider, err := NewProviderFromConfig(config.KeysConfig{})
		require.NoError(t, err)
		assert.IsType(t, &GeneratingProvider{}, provider)
	})
}

func TestJWKS(t *testing.T) {
	t.Parallel()
	provider := NewGeneratingProvider("ES256")

	set, err := JWKS(context.Background(), provider)
	require.NoError(t, err)
	require.Len(t, set.Keys, 1)

	key, err := provider.SigningKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, key.KeyID, set.Keys[0].KeyID)
	assert.Equal(t, "ES256", set.Keys[0].Algorithm)
	assert.Equal(t, "sig", set.Keys[0].Use)
	assert.True(t, set.Keys[0].IsPublic())

	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"d"`)
}
