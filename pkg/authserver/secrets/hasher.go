// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package secrets

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/allisson/go-pwdhash"
	"golang.org/x/crypto/bcrypt"

	"github.com/stacklok/dcrgate/pkg/authserver/client"
	dcrerrors "github.com/stacklok/dcrgate/pkg/errors"
)

// Settings property names.
const (
	// PropertyRounds is the bcrypt cost.
	PropertyRounds = "rounds"

	// PropertyPolicy is the argon2id policy: "interactive" or "moderate".
	PropertyPolicy = "policy"
)

// Hasher turns a plain secret into its stored form and verifies presented
// secrets against it.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, stored string) (bool, error)
}

// HasherFor returns the hasher described by settings.
func HasherFor(settings client.SecretSettings) (Hasher, error) {
	switch settings.Algorithm {
	case client.SecretAlgorithmNone:
		return noneHasher{}, nil
	case client.SecretAlgorithmBcrypt:
		cost, err := intProperty(settings.Properties, PropertyRounds, bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			return nil, dcrerrors.NewSecretConfigurationError(fmt.Sprintf("bcrypt rounds %d out of range", cost), nil)
		}
		return bcryptHasher{cost: cost}, nil
	case client.SecretAlgorithmArgon2id:
		return newArgon2idHasher(settings.Properties)
	default:
		return nil, dcrerrors.NewSecretConfigurationError(
			fmt.Sprintf("unsupported secret algorithm %q", settings.Algorithm), nil)
	}
}

type noneHasher struct{}

func (noneHasher) Hash(secret string) (string, error) { return secret, nil }

func (noneHasher) Verify(secret, stored string) (bool, error) {
	return subtle.ConstantTimeCompare([]byte(secret), []byte(stored)) == 1, nil
}

type bcryptHasher struct {
	cost int
}

func (h bcryptHasher) Hash(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hashed), nil
}

func (bcryptHasher) Verify(secret, stored string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(secret))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("failed to verify secret: %w", err)
}

type argon2idHasher struct {
	hasher *pwdhash.PasswordHasher
}

func newArgon2idHasher(properties map[string]any) (Hasher, error) {
	policy := pwdhash.PolicyModerate
	if raw, ok := properties[PropertyPolicy]; ok {
		name, _ := raw.(string)
		switch strings.ToLower(name) {
		case "interactive":
			policy = pwdhash.PolicyInteractive
		case "moderate":
			policy = pwdhash.PolicyModerate
		default:
			return nil, dcrerrors.NewSecretConfigurationError(fmt.Sprintf("unsupported argon2id policy %v", raw), nil)
		}
	}
	hasher, err := pwdhash.New(pwdhash.WithPolicy(policy))
	if err != nil {
		return nil, dcrerrors.NewSecretConfigurationError("unable to create argon2id hasher", err)
	}
	return argon2idHasher{hasher: hasher}, nil
}

func (h argon2idHasher) Hash(secret string) (string, error) {
	hashed, err := h.hasher.Hash([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return hashed, nil
}

func (h argon2idHasher) Verify(secret, stored string) (bool, error) {
	ok, err := h.hasher.Verify([]byte(secret), stored)
	if err != nil {
		return false, fmt.Errorf("failed to verify secret: %w", err)
	}
	return ok, nil
}

// intProperty reads an integer property that may have been decoded from JSON.
func intProperty(properties map[string]any, key string, def int) (int, error) {
	raw, ok := properties[key]
	if !ok {
		return def, nil
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			break
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			break
		}
		return int(n), nil
	}
	return 0, dcrerrors.NewSecretConfigurationError(fmt.Sprintf("property %s must be an integer, got %v", key, raw), nil)
}
