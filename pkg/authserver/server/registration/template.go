// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package registration

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stacklok/dcrgate/pkg/authserver/client"
	"github.com/stacklok/dcrgate/pkg/authserver/secrets"
	"github.com/stacklok/dcrgate/pkg/authserver/storage"
	dcrerrors "github.com/stacklok/dcrgate/pkg/errors"
	"github.com/stacklok/dcrgate/pkg/logger"
)

// TemplateProvisioner registers clients by cloning a template client named
// by software_id.
type TemplateProvisioner struct {
	clients storage.ClientRepository
	forms   storage.FormService
	emails  storage.EmailTemplateService
	secrets *secrets.Manager
	tokens  *TokenIssuer
}

// NewTemplateProvisioner creates a TemplateProvisioner.
func NewTemplateProvisioner(
	clients storage.ClientRepository,
	forms storage.FormService,
	emails storage.EmailTemplateService,
	manager *secrets.Manager,
	tokens *TokenIssuer,
) *TemplateProvisioner {
	return &TemplateProvisioner{
		clients: clients,
		forms:   forms,
		emails:  emails,
		secrets: manager,
		tokens:  tokens,
	}
}

// Sanitize returns a copy of template that can be handed to a new
// registrant: fresh client_id, bound to domainID, and stripped of
// credentials, redirect URIs, sector identifier and key material.
func Sanitize(template *client.Client, domainID string) (*client.Client, error) {
	if !template.Template {
		return nil, NewInvalidClientMetadata("Client behind software_id is not a template")
	}

	c := template.Clone()
	c.ID = ""
	c.ClientID = uuid.NewString()
	c.DomainID = domainID
	c.ClientSecret = ""
	c.Secrets = nil
	c.SecretSettings = nil
	c.ClientName = ""
	c.RedirectURIs = nil
	c.SectorIdentifierURI = ""
	c.JWKS = nil
	c.JWKSURI = ""
	c.RegistrationAccessToken = ""
	c.RegistrationClientURI = ""
	c.Template = false
	c.CreatedAt = time.Time{}
	c.UpdatedAt = time.Time{}
	c.Version = 0
	return c, nil
}

// CreateFromTemplate registers a client cloned from the template whose
// internal id is req's software_id, then copies the template's forms and
// email templates onto it.
func (p *TemplateProvisioner) CreateFromTemplate(
	ctx context.Context, domain *client.Domain, req *DCRRequest, basePath string,
) (*Registration, error) {
	softwareID, _ := req.SoftwareID.Get()

	template, err := p.clients.FindClientByID(ctx, softwareID)
	if err != nil && !dcrerrors.IsNotFound(err) {
		return nil, err
	}
	if template == nil || template.DomainID != domain.ID {
		return nil, NewInvalidClientMetadata("No template found for software_id %s", softwareID)
	}

	c, err := Sanitize(template, domain.ID)
	if err != nil {
		return nil, err
	}
	c.ID = uuid.NewString()
	req.Apply(c)

	var plain string
	if client.RequiresSecret(c.TokenEndpointAuthMethod) {
		if plain, err = p.secrets.IssueSecret(c, domain); err != nil {
			return nil, err
		}
	}

	if err := p.tokens.Issue(ctx, basePath, c); err != nil {
		return nil, err
	}

	created, err := p.clients.CreateClient(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to create client from template: %w", err)
	}

	if _, err := p.forms.CopyFormsFromClient(ctx, domain.ID, template.ID, created.ID); err != nil {
		return nil, fmt.Errorf("failed to copy template forms: %w", err)
	}
	if _, err := p.emails.CopyEmailTemplatesFromClient(ctx, domain.ID, template.ID, created.ID); err != nil {
		return nil, fmt.Errorf("failed to copy template emails: %w", err)
	}

	logger.Infow("registered client from template",
		"client_id", created.ClientID,
		"domain", domain.ID,
		"software_id", softwareID,
	)
	return newRegistration(created, plain), nil
}
