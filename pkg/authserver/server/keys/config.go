// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package keys

import (
	"github.com/stacklok/dcrgate/pkg/config"
)

// NewProviderFromConfig creates a KeyProvider based on the configuration.
//
// Behavior:
//   - If KeyDir is set: load the signing key and fallback keys from it
//   - Otherwise: return a GeneratingProvider (ephemeral key for development)
func NewProviderFromConfig(cfg config.KeysConfig) (KeyProvider, error) {
	if cfg.KeyDir != "" {
		return NewFileProvider(cfg)
	}
	return NewGeneratingProvider(DefaultAlgorithm), nil
}
