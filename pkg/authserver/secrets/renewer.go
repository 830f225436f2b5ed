// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package secrets

import (
	"context"
	"fmt"

	"github.com/stacklok/dcrgate/pkg/authserver/client"
	"github.com/stacklok/dcrgate/pkg/authserver/storage"
	dcrerrors "github.com/stacklok/dcrgate/pkg/errors"
	"github.com/stacklok/dcrgate/pkg/logger"
)

// Renewer replaces the secret of a stored client.
type Renewer struct {
	clients storage.ClientRepository
	domains storage.DomainRepository
	manager *Manager
}

// NewRenewer creates a Renewer.
func NewRenewer(clients storage.ClientRepository, domains storage.DomainRepository, manager *Manager) *Renewer {
	return &Renewer{clients: clients, domains: domains, manager: manager}
}

// RenewClientSecret generates a new secret for the client with internal id
// id in domainID and persists it. The write is rejected if the client changed
// since it was loaded. It returns the stored client and the plain secret,
// which is not retrievable afterwards unless the domain stores secrets with
// the NONE algorithm.
func (r *Renewer) RenewClientSecret(
	ctx context.Context, domainID, id, principal string,
) (*client.Client, string, error) {
	c, plain, err := r.Rotate(ctx, domainID, id)
	if err != nil {
		return nil, "", err
	}

	updated, err := r.clients.UpdateClient(ctx, c)
	if err != nil {
		return nil, "", fmt.Errorf("failed to store renewed secret: %w", err)
	}

	logger.Infow("renewed client secret", "client_id", updated.ClientID, "domain", domainID, "principal", principal)
	return updated, plain, nil
}

// Rotate loads the client with internal id id in domainID and replaces its
// secret without storing it. The caller persists the returned client; its
// version is the one that was loaded.
func (r *Renewer) Rotate(ctx context.Context, domainID, id string) (*client.Client, string, error) {
	c, err := r.clients.FindClientByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if c.DomainID != domainID {
		return nil, "", dcrerrors.NewNotFoundError(
			fmt.Sprintf("client %s not found in domain %s", id, domainID), storage.ErrNotFound)
	}

	domain, err := r.domains.FindDomainByID(ctx, domainID)
	if err != nil {
		return nil, "", err
	}

	var plain string
	if algorithm := domain.SecretSettings.Algorithm; algorithm == "" || algorithm == client.SecretAlgorithmNone {
		plain, err = GenerateSecret()
		if err != nil {
			return nil, "", err
		}
		c.ClientSecret = plain
		if _, err := r.manager.RotateSecret(c, nil, domain); err != nil {
			return nil, "", err
		}
	} else {
		plain, err = r.manager.IssueSecret(c, domain)
		if err != nil {
			return nil, "", err
		}
	}
	return c, plain, nil
}
