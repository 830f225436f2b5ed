// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package secrets manages client secrets: content-addressed hash settings,
// per-algorithm hashing, selection of the active secret and rotation.
package secrets

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"

	"github.com/stacklok/dcrgate/pkg/authserver/client"
	"github.com/stacklok/dcrgate/pkg/errors"
)

// SettingsID computes the identifier of a (algorithm, properties) pair:
// base64(SHA-256(json([algorithm, properties]))). Map keys serialize in
// sorted order, and nil properties serialize as an empty object, so the
// result is stable across processes.
//
// A serialization failure is a configuration error, never client input.
func SettingsID(algorithm string, properties map[string]any) (string, error) {
	if properties == nil {
		properties = map[string]any{}
	}
	payload, err := json.Marshal([]any{algorithm, properties})
	if err != nil {
		return "", errors.NewSecretConfigurationError("unable to serialize secret settings", err)
	}
	digest := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(digest[:]), nil
}

// NewSettings builds secret settings with their content-addressed id.
func NewSettings(algorithm string, properties map[string]any) (client.SecretSettings, error) {
	id, err := SettingsID(algorithm, properties)
	if err != nil {
		return client.SecretSettings{}, err
	}
	return client.SecretSettings{
		ID:         id,
		Algorithm:  algorithm,
		Properties: properties,
	}, nil
}
