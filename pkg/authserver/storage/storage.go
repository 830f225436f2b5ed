// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"fmt"

	"github.com/ory/fosite"

	dcrerrors "github.com/stacklok/dcrgate/pkg/errors"
)

// Storage combines every repository with fosite client lookup, so a
// fosite-based token endpoint can authenticate registered clients.
type Storage interface {
	fosite.ClientManager

	ClientRepository
	DomainRepository
	IdentityProviderRepository
	CertificateRepository
	FormService
	EmailTemplateService

	// Health reports whether the backend is reachable.
	Health(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// ErrNotFound is the cause of every not-found error returned by this package.
var ErrNotFound = fosite.ErrNotFound

func notFound(kind, id string) error {
	return dcrerrors.NewNotFoundError(fmt.Sprintf("%s %s not found", kind, id), ErrNotFound)
}

func staleVersion(id string, expected, actual int64) error {
	return dcrerrors.NewConcurrentModificationError(
		fmt.Sprintf("client %s was modified concurrently (version %d, stored %d)", id, expected, actual), nil)
}

func invalidArgument(format string, args ...any) error {
	return dcrerrors.NewInvalidArgumentError(fmt.Sprintf(format, args...), nil)
}
