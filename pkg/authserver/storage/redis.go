// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ory/fosite"
	"github.com/redis/go-redis/v9"

	"github.com/stacklok/dcrgate/pkg/authserver/client"
	dcrerrors "github.com/stacklok/dcrgate/pkg/errors"
	"github.com/stacklok/dcrgate/pkg/logger"
)

// Key types used under the storage key prefix.
const (
	KeyTypeClient   = "client"
	KeyTypeClientID = "client_id"
	KeyTypeDomain   = "domain"
	KeyTypeIDP      = "idp"
	KeyTypeCert     = "cert"
	KeyTypeForms    = "forms"
	KeyTypeEmails   = "emails"
	KeyTypeJWT      = "jwt"
)

// redisKey joins the prefix, key type and id parts: "{prefix}{type}:{id}[:{id}...]".
func redisKey(prefix, keyType string, ids ...string) string {
	key := prefix + keyType
	for _, id := range ids {
		key += ":" + id
	}
	return key
}

// RedisStorage implements the Storage interface with a Redis backend
// (standalone, cluster or Sentinel). Clients are stored as JSON documents with
// a client_id index; every write to a client runs in a WATCH/MULTI transaction
// so that version checks are atomic across replicas.
type RedisStorage struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisStorageWithClient creates a RedisStorage with a pre-configured client.
// This is useful for testing with miniredis.
func NewRedisStorageWithClient(client redis.UniversalClient, keyPrefix string) *RedisStorage {
	return &RedisStorage{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Close closes the Redis client connection.
func (s *RedisStorage) Close() error {
	return s.client.Close()
}

// Health checks Redis connectivity.
func (s *RedisStorage) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// -----------------------
// ClientRepository
// -----------------------

// FindClientByID loads a client by internal id.
func (s *RedisStorage) FindClientByID(ctx context.Context, id string) (*client.Client, error) {
	return s.getClient(ctx, s.client, id)
}

// FindClientByClientID loads a client of a domain by OAuth client_id.
func (s *RedisStorage) FindClientByClientID(ctx context.Context, domainID, clientID string) (*client.Client, error) {
	id, err := s.client.Get(ctx, redisKey(s.keyPrefix, KeyTypeClientID, clientID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound("client", clientID)
		}
		return nil, fmt.Errorf("failed to resolve client_id: %w", err)
	}

	c, err := s.getClient(ctx, s.client, id)
	if err != nil {
		return nil, err
	}
	if c.DomainID != domainID {
		return nil, notFound("client", clientID)
	}
	return c, nil
}

// CreateClient stores a new client at version 1.
func (s *RedisStorage) CreateClient(ctx context.Context, c *client.Client) (*client.Client, error) {
	if c == nil || c.ClientID == "" {
		return nil, invalidArgument("client_id is required")
	}

	stored := c.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	now := time.Now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	stored.Version = 1

	data, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal client: %w", err)
	}

	clientKey := redisKey(s.keyPrefix, KeyTypeClient, stored.ID)
	indexKey := redisKey(s.keyPrefix, KeyTypeClientID, stored.ClientID)

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, clientKey, indexKey).Result()
		if err != nil {
			return fmt.Errorf("failed to check client: %w", err)
		}
		if n > 0 {
			return invalidArgument("client %s already exists", stored.ClientID)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, clientKey, data, 0)
			pipe.Set(ctx, indexKey, stored.ID, 0)
			return nil
		})
		return err
	}, clientKey, indexKey)
	if err != nil {
		return nil, s.txError(stored.ID, err, "create")
	}

	logger.Debugw("created client", "client_id", stored.ClientID, "domain", stored.DomainID)
	return stored, nil
}

// UpdateClient replaces a client when c.Version matches the stored version.
func (s *RedisStorage) UpdateClient(ctx context.Context, c *client.Client) (*client.Client, error) {
	if c == nil {
		return nil, invalidArgument("client is required")
	}

	clientKey := redisKey(s.keyPrefix, KeyTypeClient, c.ID)
	indexKey := redisKey(s.keyPrefix, KeyTypeClientID, c.ClientID)

	var updated *client.Client
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		existing, err := s.getClient(ctx, tx, c.ID)
		if err != nil {
			return err
		}
		if existing.Version != c.Version {
			return staleVersion(c.ID, c.Version, existing.Version)
		}
		if existing.ClientID != c.ClientID {
			owner, err := tx.Get(ctx, indexKey).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return fmt.Errorf("failed to resolve client_id: %w", err)
			}
			if owner != "" && owner != c.ID {
				return invalidArgument("client_id %s already exists", c.ClientID)
			}
		}

		stored := c.Clone()
		stored.CreatedAt = existing.CreatedAt
		stored.UpdatedAt = time.Now()
		stored.Version = existing.Version + 1

		data, err := json.Marshal(stored)
		if err != nil {
			return fmt.Errorf("failed to marshal client: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, clientKey, data, 0)
			if existing.ClientID != stored.ClientID {
				pipe.Del(ctx, redisKey(s.keyPrefix, KeyTypeClientID, existing.ClientID))
				pipe.Set(ctx, indexKey, stored.ID, 0)
			}
			return nil
		})
		if err == nil {
			updated = stored
		}
		return err
	}, clientKey, indexKey)
	if err != nil {
		return nil, s.txError(c.ID, err, "update")
	}
	return updated, nil
}

// DeleteClient removes a client and its client_id index.
func (s *RedisStorage) DeleteClient(ctx context.Context, id string) error {
	clientKey := redisKey(s.keyPrefix, KeyTypeClient, id)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		existing, err := s.getClient(ctx, tx, id)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, clientKey, redisKey(s.keyPrefix, KeyTypeClientID, existing.ClientID))
			return nil
		})
		return err
	}, clientKey)
	if err != nil {
		return s.txError(id, err, "delete")
	}
	return nil
}

func (s *RedisStorage) getClient(ctx context.Context, cmd redis.Cmdable, id string) (*client.Client, error) {
	data, err := cmd.Get(ctx, redisKey(s.keyPrefix, KeyTypeClient, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound("client", id)
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	var c client.Client
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal client: %w", err)
	}
	return &c, nil
}

// txError maps an aborted transaction to a concurrent modification error and
// passes typed errors raised inside the transaction through unchanged.
func (*RedisStorage) txError(id string, err error, op string) error {
	if errors.Is(err, redis.TxFailedErr) {
		return dcrerrors.NewConcurrentModificationError(
			fmt.Sprintf("client %s was modified concurrently", id), err)
	}
	var typed *dcrerrors.Error
	if errors.As(err, &typed) {
		return err
	}
	return fmt.Errorf("failed to %s client: %w", op, err)
}

// -----------------------
// fosite.ClientManager
// -----------------------

// GetClient loads the client by its OAuth client_id.
func (s *RedisStorage) GetClient(ctx context.Context, id string) (fosite.Client, error) {
	internalID, err := s.client.Get(ctx, redisKey(s.keyPrefix, KeyTypeClientID, id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %w", notFound("client", id), fosite.ErrNotFound.WithHint("Client not found"))
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return s.getClient(ctx, s.client, internalID)
}

// ClientAssertionJWTValid returns an error if the JTI is known.
func (s *RedisStorage) ClientAssertionJWTValid(ctx context.Context, jti string) error {
	exists, err := s.client.Exists(ctx, redisKey(s.keyPrefix, KeyTypeJWT, jti)).Result()
	if err != nil {
		return fmt.Errorf("failed to check JWT: %w", err)
	}
	if exists > 0 {
		return fosite.ErrJTIKnown
	}
	return nil
}

// SetClientAssertionJWT marks a JTI as known for the given expiry time.
func (s *RedisStorage) SetClientAssertionJWT(ctx context.Context, jti string, exp time.Time) error {
	ttl := time.Until(exp)
	if ttl <= 0 {
		// Already expired, don't store
		return nil
	}
	return s.client.Set(ctx, redisKey(s.keyPrefix, KeyTypeJWT, jti), "1", ttl).Err()
}

// -----------------------
// DomainRepository
// -----------------------

// FindDomainByID loads a domain.
func (s *RedisStorage) FindDomainByID(ctx context.Context, id string) (*client.Domain, error) {
	data, err := s.client.Get(ctx, redisKey(s.keyPrefix, KeyTypeDomain, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound("domain", id)
		}
		return nil, fmt.Errorf("failed to get domain: %w", err)
	}

	var d client.Domain
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal domain: %w", err)
	}
	return &d, nil
}

// CreateDomain stores a domain, replacing any existing one with the same id.
func (s *RedisStorage) CreateDomain(ctx context.Context, d *client.Domain) (*client.Domain, error) {
	if d == nil || d.ID == "" {
		return nil, invalidArgument("domain id is required")
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal domain: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(s.keyPrefix, KeyTypeDomain, d.ID), data, 0).Err(); err != nil {
		return nil, fmt.Errorf("failed to store domain: %w", err)
	}
	return d.Clone(), nil
}

// -----------------------
// IdentityProviderRepository / CertificateRepository
// -----------------------

// FindIdentityProvidersByDomain lists a domain's identity providers.
func (s *RedisStorage) FindIdentityProvidersByDomain(ctx context.Context, domainID string) ([]*client.IdentityProvider, error) {
	return listJSON[client.IdentityProvider](ctx, s.client, redisKey(s.keyPrefix, KeyTypeIDP, domainID))
}

// CreateIdentityProvider appends an identity provider to its domain.
func (s *RedisStorage) CreateIdentityProvider(ctx context.Context, idp *client.IdentityProvider) error {
	if idp == nil || idp.ID == "" || idp.DomainID == "" {
		return invalidArgument("identity provider id and domain are required")
	}
	return pushJSON(ctx, s.client, redisKey(s.keyPrefix, KeyTypeIDP, idp.DomainID), idp)
}

// FindCertificatesByDomain lists a domain's certificates.
func (s *RedisStorage) FindCertificatesByDomain(ctx context.Context, domainID string) ([]*client.Certificate, error) {
	return listJSON[client.Certificate](ctx, s.client, redisKey(s.keyPrefix, KeyTypeCert, domainID))
}

// CreateCertificate appends a certificate to its domain.
func (s *RedisStorage) CreateCertificate(ctx context.Context, cert *client.Certificate) error {
	if cert == nil || cert.ID == "" || cert.DomainID == "" {
		return invalidArgument("certificate id and domain are required")
	}
	return pushJSON(ctx, s.client, redisKey(s.keyPrefix, KeyTypeCert, cert.DomainID), cert)
}

// -----------------------
// FormService / EmailTemplateService
// -----------------------

// CreateForm stores a form.
func (s *RedisStorage) CreateForm(ctx context.Context, form *client.Form) error {
	if form == nil || form.DomainID == "" || form.ClientID == "" {
		return invalidArgument("form domain and client are required")
	}
	cp := *form
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	return pushJSON(ctx, s.client, redisKey(s.keyPrefix, KeyTypeForms, cp.DomainID, cp.ClientID), &cp)
}

// FindFormsByClient lists the forms of a client.
func (s *RedisStorage) FindFormsByClient(ctx context.Context, domainID, clientID string) ([]*client.Form, error) {
	return listJSON[client.Form](ctx, s.client, redisKey(s.keyPrefix, KeyTypeForms, domainID, clientID))
}

// CopyFormsFromClient clones the forms of sourceID onto targetID.
func (s *RedisStorage) CopyFormsFromClient(ctx context.Context, domainID, sourceID, targetID string) ([]*client.Form, error) {
	forms, err := s.FindFormsByClient(ctx, domainID, sourceID)
	if err != nil {
		return nil, err
	}
	for _, form := range forms {
		form.ID = uuid.NewString()
		form.ClientID = targetID
	}
	if err := pushAllJSON(ctx, s.client, redisKey(s.keyPrefix, KeyTypeForms, domainID, targetID), forms); err != nil {
		return nil, err
	}
	return forms, nil
}

// CreateEmailTemplate stores an email template.
func (s *RedisStorage) CreateEmailTemplate(ctx context.Context, email *client.EmailTemplate) error {
	if email == nil || email.DomainID == "" || email.ClientID == "" {
		return invalidArgument("email template domain and client are required")
	}
	cp := *email
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	return pushJSON(ctx, s.client, redisKey(s.keyPrefix, KeyTypeEmails, cp.DomainID, cp.ClientID), &cp)
}

// FindEmailTemplatesByClient lists the email templates of a client.
func (s *RedisStorage) FindEmailTemplatesByClient(
	ctx context.Context, domainID, clientID string,
) ([]*client.EmailTemplate, error) {
	return listJSON[client.EmailTemplate](ctx, s.client, redisKey(s.keyPrefix, KeyTypeEmails, domainID, clientID))
}

// CopyEmailTemplatesFromClient clones the email templates of sourceID onto targetID.
func (s *RedisStorage) CopyEmailTemplatesFromClient(
	ctx context.Context, domainID, sourceID, targetID string,
) ([]*client.EmailTemplate, error) {
	emails, err := s.FindEmailTemplatesByClient(ctx, domainID, sourceID)
	if err != nil {
		return nil, err
	}
	for _, email := range emails {
		email.ID = uuid.NewString()
		email.ClientID = targetID
	}
	if err := pushAllJSON(ctx, s.client, redisKey(s.keyPrefix, KeyTypeEmails, domainID, targetID), emails); err != nil {
		return nil, err
	}
	return emails, nil
}

func pushJSON[T any](ctx context.Context, cmd redis.Cmdable, key string, v *T) error {
	return pushAllJSON(ctx, cmd, key, []*T{v})
}

func pushAllJSON[T any](ctx context.Context, cmd redis.Cmdable, key string, values []*T) error {
	if len(values) == 0 {
		return nil
	}
	encoded := make([]any, 0, len(values))
	for _, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal %s entry: %w", key, err)
		}
		encoded = append(encoded, data)
	}
	if err := cmd.RPush(ctx, key, encoded...).Err(); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

func listJSON[T any](ctx context.Context, cmd redis.Cmdable, key string) ([]*T, error) {
	raw, err := cmd.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", key, err)
	}
	out := make([]*T, 0, len(raw))
	for _, item := range raw {
		var v T
		if err := json.Unmarshal([]byte(item), &v); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s entry: %w", key, err)
		}
		out = append(out, &v)
	}
	return out, nil
}

// Compile-time interface check.
var _ Storage = (*RedisStorage)(nil)
