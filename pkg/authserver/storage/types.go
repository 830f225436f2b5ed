// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package storage provides the repositories the registration engine reads and
// writes, with in-memory and Redis implementations.
package storage

//go:generate mockgen -destination=mocks/mock_storage.go -package=mocks -source=types.go ClientRepository,DomainRepository,IdentityProviderRepository,CertificateRepository,FormService,EmailTemplateService

import (
	"context"

	"github.com/stacklok/dcrgate/pkg/authserver/client"
)

// ClientRepository stores registered clients.
type ClientRepository interface {
	// FindClientByID loads a client by its internal id.
	FindClientByID(ctx context.Context, id string) (*client.Client, error)

	// FindClientByClientID loads a client of a domain by its OAuth client_id.
	FindClientByClientID(ctx context.Context, domainID, clientID string) (*client.Client, error)

	// CreateClient persists a new client. The stored copy starts at version 1.
	CreateClient(ctx context.Context, c *client.Client) (*client.Client, error)

	// UpdateClient replaces a stored client. c.Version must equal the stored
	// version, otherwise a concurrent modification error is returned. The
	// returned copy carries the incremented version.
	UpdateClient(ctx context.Context, c *client.Client) (*client.Client, error)

	// DeleteClient removes a client by internal id.
	DeleteClient(ctx context.Context, id string) error
}

// DomainRepository stores tenants.
type DomainRepository interface {
	FindDomainByID(ctx context.Context, id string) (*client.Domain, error)
	CreateDomain(ctx context.Context, d *client.Domain) (*client.Domain, error)
}

// IdentityProviderRepository lists a domain's identity providers in
// creation order.
type IdentityProviderRepository interface {
	FindIdentityProvidersByDomain(ctx context.Context, domainID string) ([]*client.IdentityProvider, error)
	CreateIdentityProvider(ctx context.Context, idp *client.IdentityProvider) error
}

// CertificateRepository lists a domain's certificates in creation order.
type CertificateRepository interface {
	FindCertificatesByDomain(ctx context.Context, domainID string) ([]*client.Certificate, error)
	CreateCertificate(ctx context.Context, cert *client.Certificate) error
}

// FormService manages client-owned forms.
type FormService interface {
	CreateForm(ctx context.Context, form *client.Form) error
	FindFormsByClient(ctx context.Context, domainID, clientID string) ([]*client.Form, error)

	// CopyFormsFromClient clones every form of sourceID onto targetID.
	CopyFormsFromClient(ctx context.Context, domainID, sourceID, targetID string) ([]*client.Form, error)
}

// EmailTemplateService manages client-owned email templates.
type EmailTemplateService interface {
	CreateEmailTemplate(ctx context.Context, email *client.EmailTemplate) error
	FindEmailTemplatesByClient(ctx context.Context, domainID, clientID string) ([]*client.EmailTemplate, error)

	// CopyEmailTemplatesFromClient clones every email template of sourceID onto targetID.
	CopyEmailTemplatesFromClient(ctx context.Context, domainID, sourceID, targetID string) ([]*client.EmailTemplate, error)
}
