// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package authserver

import (
	"context"
	"fmt"
	"slices"

	"github.com/stacklok/dcrgate/pkg/authserver/client"
	"github.com/stacklok/dcrgate/pkg/authserver/secrets"
	"github.com/stacklok/dcrgate/pkg/authserver/storage"
	"github.com/stacklok/dcrgate/pkg/config"
	dcrerrors "github.com/stacklok/dcrgate/pkg/errors"
	"github.com/stacklok/dcrgate/pkg/logger"
)

// seed writes the configured domains into stor. Domains are replaced on every
// start. Identity providers, certificates and template clients that already
// exist are left alone, so restarting against Redis does not duplicate them.
func seed(ctx context.Context, stor storage.Storage, domains []config.DomainConfig) error {
	for _, dc := range domains {
		domain, err := domainFromConfig(dc)
		if err != nil {
			return fmt.Errorf("domain %s: %w", dc.ID, err)
		}
		if _, err := stor.CreateDomain(ctx, domain); err != nil {
			return fmt.Errorf("failed to create domain %s: %w", dc.ID, err)
		}
		if err := seedIdentityProviders(ctx, stor, dc); err != nil {
			return err
		}
		if err := seedCertificates(ctx, stor, dc); err != nil {
			return err
		}
		for _, tc := range dc.Templates {
			if err := seedTemplate(ctx, stor, dc.ID, tc); err != nil {
				return err
			}
		}
		logger.Debugw("seeded domain",
			"domain", dc.ID,
			"identity_providers", len(dc.IdentityProviders),
			"certificates", len(dc.Certificates),
			"templates", len(dc.Templates),
		)
	}
	return nil
}

func domainFromConfig(dc config.DomainConfig) (*client.Domain, error) {
	algorithm := dc.SecretAlgorithm
	if algorithm == "" {
		algorithm = client.SecretAlgorithmNone
	}
	settingsID, err := secrets.SettingsID(algorithm, dc.SecretProperties)
	if err != nil {
		return nil, err
	}

	domain := &client.Domain{
		ID:   dc.ID,
		Name: dc.Name,
		OIDC: client.OIDCSettings{
			AllowedScopesEnabled:                     dc.AllowedScopesEnabled,
			AllowedScopes:                            slices.Clone(dc.AllowedScopes),
			DefaultScopes:                            slices.Clone(dc.DefaultScopes),
			DynamicClientRegistrationEnabled:         dc.DynamicClientRegistration,
			DynamicClientRegistrationTemplateEnabled: dc.TemplatesEnabled,
		},
		SecretSettings: client.SecretSettings{
			ID:         settingsID,
			Algorithm:  algorithm,
			Properties: dc.SecretProperties,
		},
	}
	if dc.SecretExpiry > 0 {
		domain.SecretExpiration = &client.SecretExpiration{Enabled: true, Expiry: dc.SecretExpiry}
	}
	return domain, nil
}

func seedIdentityProviders(ctx context.Context, stor storage.Storage, dc config.DomainConfig) error {
	existing, err := stor.FindIdentityProvidersByDomain(ctx, dc.ID)
	if err != nil {
		return fmt.Errorf("failed to list identity providers of %s: %w", dc.ID, err)
	}
	for _, pc := range dc.IdentityProviders {
		if slices.ContainsFunc(existing, func(idp *client.IdentityProvider) bool { return idp.ID == pc.ID }) {
			continue
		}
		err := stor.CreateIdentityProvider(ctx, &client.IdentityProvider{
			ID:       pc.ID,
			DomainID: dc.ID,
			Name:     pc.Name,
			Type:     pc.Type,
			External: pc.External,
		})
		if err != nil {
			return fmt.Errorf("failed to create identity provider %s: %w", pc.ID, err)
		}
	}
	return nil
}

func seedCertificates(ctx context.Context, stor storage.Storage, dc config.DomainConfig) error {
	existing, err := stor.FindCertificatesByDomain(ctx, dc.ID)
	if err != nil {
		return fmt.Errorf("failed to list certificates of %s: %w", dc.ID, err)
	}
	for _, cc := range dc.Certificates {
		if slices.ContainsFunc(existing, func(cert *client.Certificate) bool { return cert.ID == cc.ID }) {
			continue
		}
		err := stor.CreateCertificate(ctx, &client.Certificate{
			ID:       cc.ID,
			DomainID: dc.ID,
			Name:     cc.Name,
			System:   cc.System,
		})
		if err != nil {
			return fmt.Errorf("failed to create certificate %s: %w", cc.ID, err)
		}
	}
	return nil
}

// seedTemplate stores a template client with its forms and emails. Forms and
// emails are keyed by the template's internal id.
func seedTemplate(ctx context.Context, stor storage.Storage, domainID string, tc config.TemplateConfig) error {
	_, err := stor.FindClientByID(ctx, tc.ID)
	switch {
	case err == nil:
		return nil
	case !dcrerrors.IsNotFound(err):
		return fmt.Errorf("failed to look up template %s: %w", tc.ID, err)
	}

	tmpl := &client.Client{
		ID:                      tc.ID,
		ClientID:                tc.ClientID,
		DomainID:                domainID,
		ClientName:              tc.ClientName,
		RedirectURIs:            slices.Clone(tc.RedirectURIs),
		GrantTypes:              slices.Clone(tc.GrantTypes),
		ResponseTypes:           slices.Clone(tc.ResponseTypes),
		Scopes:                  slices.Clone(tc.Scopes),
		TokenEndpointAuthMethod: tc.TokenEndpointAuthMethod,
		SoftwareVersion:         tc.SoftwareVersion,
		Template:                true,
	}
	if _, err := stor.CreateClient(ctx, tmpl); err != nil {
		return fmt.Errorf("failed to create template %s: %w", tc.ID, err)
	}

	for _, fc := range tc.Forms {
		err := stor.CreateForm(ctx, &client.Form{
			DomainID: domainID,
			ClientID: tc.ID,
			Template: fc.Template,
			Content:  fc.Content,
		})
		if err != nil {
			return fmt.Errorf("failed to create form %s of template %s: %w", fc.Template, tc.ID, err)
		}
	}
	for _, ec := range tc.EmailTemplates {
		err := stor.CreateEmailTemplate(ctx, &client.EmailTemplate{
			DomainID: domainID,
			ClientID: tc.ID,
			Template: ec.Template,
			Subject:  ec.Subject,
			Content:  ec.Content,
		})
		if err != nil {
			return fmt.Errorf("failed to create email template %s of template %s: %w", ec.Template, tc.ID, err)
		}
	}
	return nil
}
