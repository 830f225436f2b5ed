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
	"github.com/stacklok/dcrgate/pkg/logger"
)

// Registration is a stored client together with the plain secret, when the
// server can still reveal it.
type Registration struct {
	Client *client.Client

	// Secret is the plain client secret. It is empty when the client has no
	// secret or the stored value is hashed and was not issued by this call.
	Secret          string
	SecretExpiresAt *time.Time
}

func newRegistration(c *client.Client, plain string) *Registration {
	reg := &Registration{Client: c, Secret: plain}
	if plain != "" && len(c.Secrets) > 0 {
		reg.SecretExpiresAt = c.Secrets[0].ExpiresAt
	}
	return reg
}

// ServiceConfig holds the collaborators of a Service.
type ServiceConfig struct {
	Validator *Validator
	Templates *TemplateProvisioner
	Tokens    *TokenIssuer
	Secrets   *secrets.Manager
	Renewer   *secrets.Renewer

	Clients           storage.ClientRepository
	IdentityProviders storage.IdentityProviderRepository
	Certificates      storage.CertificateRepository

	// Metrics is optional.
	Metrics *Metrics
}

// Service runs the registration and client management operations.
type Service struct {
	validator *Validator
	templates *TemplateProvisioner
	tokens    *TokenIssuer
	secrets   *secrets.Manager
	renewer   *secrets.Renewer
	clients   storage.ClientRepository
	idps      storage.IdentityProviderRepository
	certs     storage.CertificateRepository
	metrics   *Metrics
}

// NewService creates a Service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		validator: cfg.Validator,
		templates: cfg.Templates,
		tokens:    cfg.Tokens,
		secrets:   cfg.Secrets,
		renewer:   cfg.Renewer,
		clients:   cfg.Clients,
		idps:      cfg.IdentityProviders,
		certs:     cfg.Certificates,
		metrics:   cfg.Metrics,
	}
}

// Tokens returns the registration access token issuer.
func (s *Service) Tokens() *TokenIssuer { return s.tokens }

// Catalog returns the metadata values registration accepts.
func (s *Service) Catalog() *Catalog { return s.validator.Catalog() }

// FindClient loads a client of domainID by client_id.
func (s *Service) FindClient(ctx context.Context, domainID, clientID string) (*client.Client, error) {
	return s.clients.FindClientByClientID(ctx, domainID, clientID)
}

// Describe returns the registration view of a stored client. The secret is
// only included when it is stored unhashed.
func (s *Service) Describe(c *client.Client) *Registration {
	reg := &Registration{Client: c}
	secret, ok := s.secrets.DetermineClientSecret(c)
	if !ok || secret == nil {
		return reg
	}
	if settings, found := c.SettingsByID(secret.SettingsID); found && settings.Algorithm == client.SecretAlgorithmNone {
		reg.Secret = secret.Secret
		reg.SecretExpiresAt = secret.ExpiresAt
	}
	return reg
}

// Create registers a new client in domain. When templates are enabled on the
// domain and req names a software_id, the client is cloned from that template.
func (s *Service) Create(
	ctx context.Context, domain *client.Domain, req *DCRRequest, basePath string,
) (reg *Registration, err error) {
	defer func() { s.metrics.Observe(OperationCreate, err) }()

	fromTemplate := domain.OIDC.DynamicClientRegistrationTemplateEnabled && req.SoftwareID.HasValue()

	// The template supplies redirect_uris, so a template request is checked
	// like a patch.
	if err := s.validator.Validate(ctx, req, &ValidationContext{Domain: domain, Patch: fromTemplate}); err != nil {
		return nil, err
	}
	if fromTemplate {
		return s.templates.CreateFromTemplate(ctx, domain, req, basePath)
	}

	c := &client.Client{
		ID:       uuid.NewString(),
		ClientID: uuid.NewString(),
		DomainID: domain.ID,
	}
	req.Apply(c)
	applyRegistrationDefaults(c)

	var plain string
	if client.RequiresSecret(c.TokenEndpointAuthMethod) {
		if plain, err = s.secrets.IssueSecret(c, domain); err != nil {
			return nil, err
		}
	}

	if err := s.assignDefaultResources(ctx, domain, c); err != nil {
		return nil, err
	}
	if err := s.tokens.Issue(ctx, basePath, c); err != nil {
		return nil, err
	}

	created, err := s.clients.CreateClient(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	logger.Infow("registered client", "client_id", created.ClientID, "domain", domain.ID)
	return newRegistration(created, plain), nil
}

// Patch merges the fields present in req onto c.
func (s *Service) Patch(
	ctx context.Context, domain *client.Domain, c *client.Client, req *DCRRequest, basePath string,
) (reg *Registration, err error) {
	defer func() { s.metrics.Observe(OperationPatch, err) }()
	return s.modify(ctx, domain, c, req, basePath, true)
}

// Update validates req as a full registration and merges it onto c.
func (s *Service) Update(
	ctx context.Context, domain *client.Domain, c *client.Client, req *DCRRequest, basePath string,
) (reg *Registration, err error) {
	defer func() { s.metrics.Observe(OperationUpdate, err) }()
	return s.modify(ctx, domain, c, req, basePath, false)
}

func (s *Service) modify(
	ctx context.Context, domain *client.Domain, c *client.Client, req *DCRRequest, basePath string, patch bool,
) (*Registration, error) {
	// Validation also shapes scopes: a request without scope gets the domain
	// default scopes, replacing the ones the client had.
	if err := s.validator.Validate(ctx, req, &ValidationContext{Domain: domain, Patch: patch}); err != nil {
		return nil, err
	}

	updated := c.Clone()
	req.Apply(updated)

	// A client switching to a secret-based method gets its first secret.
	var plain string
	if client.RequiresSecret(updated.TokenEndpointAuthMethod) && len(updated.Secrets) == 0 && updated.ClientSecret == "" {
		var err error
		if plain, err = s.secrets.IssueSecret(updated, domain); err != nil {
			return nil, err
		}
	}

	if err := s.tokens.Issue(ctx, basePath, updated); err != nil {
		return nil, err
	}

	stored, err := s.clients.UpdateClient(ctx, updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	logger.Infow("updated client", "client_id", stored.ClientID, "domain", domain.ID, "patch", patch)
	if plain != "" {
		return newRegistration(stored, plain), nil
	}
	return s.Describe(stored), nil
}

// Delete removes c and returns it.
func (s *Service) Delete(ctx context.Context, c *client.Client) (_ *client.Client, err error) {
	defer func() { s.metrics.Observe(OperationDelete, err) }()

	if err := s.clients.DeleteClient(ctx, c.ID); err != nil {
		return nil, fmt.Errorf("failed to delete client: %w", err)
	}
	logger.Infow("deleted client", "client_id", c.ClientID, "domain", c.DomainID)
	return c, nil
}

// RenewSecret replaces the secret of c and issues a new registration access
// token.
func (s *Service) RenewSecret(
	ctx context.Context, domain *client.Domain, c *client.Client, basePath string,
) (reg *Registration, err error) {
	defer func() { s.metrics.Observe(OperationRenew, err) }()

	// The new secret and token are stored together, so a failed signature
	// leaves the previous secret in place.
	renewed, plain, err := s.renewer.Rotate(ctx, domain.ID, c.ID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Issue(ctx, basePath, renewed); err != nil {
		return nil, err
	}
	stored, err := s.clients.UpdateClient(ctx, renewed)
	if err != nil {
		return nil, fmt.Errorf("failed to store renewed secret: %w", err)
	}

	logger.Infow("renewed client secret", "client_id", stored.ClientID, "domain", domain.ID)
	return newRegistration(stored, plain), nil
}

// assignDefaultResources gives c the domain's first local identity provider
// and first certificate when it has none.
func (s *Service) assignDefaultResources(ctx context.Context, domain *client.Domain, c *client.Client) error {
	if len(c.IdentityProviders) == 0 {
		idps, err := s.idps.FindIdentityProvidersByDomain(ctx, domain.ID)
		if err != nil {
			return fmt.Errorf("failed to list identity providers: %w", err)
		}
		for _, idp := range idps {
			if !idp.External {
				c.IdentityProviders = []string{idp.ID}
				break
			}
		}
	}

	if c.Certificate == "" {
		certs, err := s.certs.FindCertificatesByDomain(ctx, domain.ID)
		if err != nil {
			return fmt.Errorf("failed to list certificates: %w", err)
		}
		if len(certs) > 0 {
			c.Certificate = certs[0].ID
		}
	}
	return nil
}

// applyRegistrationDefaults fills in the RFC 7591 Section 2 defaults.
func applyRegistrationDefaults(c *client.Client) {
	if len(c.ResponseTypes) == 0 {
		c.ResponseTypes = []string{"code"}
	}
	if len(c.GrantTypes) == 0 {
		c.GrantTypes = []string{GrantTypeAuthorizationCode}
	}
	if c.TokenEndpointAuthMethod == "" {
		c.TokenEndpointAuthMethod = client.AuthMethodClientSecretBasic
	}
}
