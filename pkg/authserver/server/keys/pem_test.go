// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package keys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePEMFile(t *testing.T, dir, pemType string, der []byte) string {
	t.Helper()
	path := filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: pemType, Bytes: der}), 0600))
	return path
}

func TestLoadSigningKey(t *testing.T) {
	t.Parallel()

	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	smallRSAKey, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	_, edKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	pkcs8 := func(key any) []byte {
		der, err := x509.MarshalPKCS8PrivateKey(key)
		require.NoError(t, err)
		return der
	}
	sec1, err := x509.MarshalECPrivateKey(ecKey)
	require.NoError(t, err)

	tests := []struct {
		name    string
		pemType string
		der     []byte
		wantAlg string
		wantErr string
	}{
		{name: "RSA PKCS1", pemType: "RSA PRIVATE KEY", der: x509.MarshalPKCS1PrivateKey(rsaKey), wantAlg: "RS256"},
		{name: "RSA PKCS8", pemType: "PRIVATE KEY", der: pkcs8(rsaKey), wantAlg: "RS256"},
		{name: "EC SEC1", pemType: "EC PRIVATE KEY", der: sec1, wantAlg: "ES256"},
		{name: "EC PKCS8", pemType: "PRIVATE KEY", der: pkcs8(ecKey), wantAlg: "ES256"},
		{name: "Ed25519 PKCS8", pemType: "PRIVATE KEY", der: pkcs8(edKey), wantAlg: "EdDSA"},
		{
			name:    "RSA below minimum size",
			pemType: "RSA PRIVATE KEY",
			der:     x509.MarshalPKCS1PrivateKey(smallRSAKey),
			wantErr: "below minimum required",
		},
		{name: "garbage", pemType: "PRIVATE KEY", der: []byte("garbage"), wantErr: "failed to parse signing key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			signer, err := LoadSigningKey(writePEMFile(t, t.TempDir(), tt.pemType, tt.der))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, signer)
				return
			}
			require.NoError(t, err)
			alg, err := DeriveAlgorithm(signer)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAlg, alg)
		})
	}
}

func TestLoadSigningKey_FileErrors(t *testing.T) {
	t.Parallel()

	_, err := LoadSigningKey("/nonexistent/key.pem")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read signing key")

	path := filepath.Join(t.TempDir(), "key.pem")
	require.NoError(t, os.WriteFile(path, []byte("not valid PEM"), 0600))
	_, err = LoadSigningKey(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode PEM block")
}

func TestDeriveAlgorithm_Curves(t *testing.T) {
	t.Parallel()

	tests := []struct {
		curve elliptic.Curve
		want  string
	}{
		{elliptic.P256(), "ES256"},
		{elliptic.P384(), "ES384"},
		{elliptic.P521(), "ES512"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			key, err := ecdsa.GenerateKey(tt.curve, rand.Reader)
			require.NoError(t, err)
			alg, err := DeriveAlgorithm(key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, alg)
		})
	}
}

func TestDeriveKeyID(t *testing.T) {
	t.Parallel()

	key1, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	key2, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	id1, err := DeriveKeyID(key1)
	require.NoError(t, err)
	again, err := DeriveKeyID(crypto.Signer(key1))
	require.NoError(t, err)
	id2, err := DeriveKeyID(key2)
	require.NoError(t, err)

	assert.Equal(t, id1, again, "same key should produce same ID")
	assert.NotEqual(t, id1, id2, "different keys should produce different IDs")
	assert.Len(t, id1, 43)
}
