// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ory/fosite"

	"github.com/stacklok/dcrgate/pkg/authserver/client"
	"github.com/stacklok/dcrgate/pkg/logger"
)

// MemoryStorage implements the Storage interface with in-memory maps.
// This implementation is thread-safe and suitable for development and testing.
//
// Stored entities are cloned on the way in and on the way out so callers can
// never mutate stored state without going through UpdateClient.
type MemoryStorage struct {
	mu sync.RWMutex

	// clients maps internal id -> Client.
	clients map[string]*client.Client

	// clientIDs maps OAuth client_id -> internal id.
	clientIDs map[string]string

	domains           map[string]*client.Domain
	identityProviders map[string][]*client.IdentityProvider
	certificates      map[string][]*client.Certificate

	// forms and emails are keyed by domain id then owning client id.
	forms  map[string]map[string][]*client.Form
	emails map[string]map[string][]*client.EmailTemplate

	// clientAssertionJWTs tracks JTIs to prevent JWT replay attacks per RFC 7523.
	clientAssertionJWTs map[string]time.Time

	now func() time.Time

	// cleanupInterval is how often the background cleanup runs
	cleanupInterval time.Duration

	// stopCleanup is used to signal the cleanup goroutine to stop
	stopCleanup chan struct{}

	// cleanupDone is closed when the cleanup goroutine has fully stopped
	cleanupDone chan struct{}
	closeOnce   sync.Once
}

// MemoryStorageOption configures a MemoryStorage instance.
type MemoryStorageOption func(*MemoryStorage)

// WithCleanupInterval sets a custom cleanup interval.
func WithCleanupInterval(interval time.Duration) MemoryStorageOption {
	return func(s *MemoryStorage) {
		s.cleanupInterval = interval
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) MemoryStorageOption {
	return func(s *MemoryStorage) {
		s.now = now
	}
}

// NewMemoryStorage creates a new MemoryStorage instance with initialized maps
// and starts the background cleanup goroutine.
func NewMemoryStorage(opts ...MemoryStorageOption) *MemoryStorage {
	s := &MemoryStorage{
		clients:             make(map[string]*client.Client),
		clientIDs:           make(map[string]string),
		domains:             make(map[string]*client.Domain),
		identityProviders:   make(map[string][]*client.IdentityProvider),
		certificates:        make(map[string][]*client.Certificate),
		forms:               make(map[string]map[string][]*client.Form),
		emails:              make(map[string]map[string][]*client.EmailTemplate),
		clientAssertionJWTs: make(map[string]time.Time),
		now:                 time.Now,
		cleanupInterval:     DefaultCleanupInterval,
		stopCleanup:         make(chan struct{}),
		cleanupDone:         make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	go s.cleanupLoop()

	return s
}

// Health is a no-op for in-memory storage since it is always available.
func (*MemoryStorage) Health(_ context.Context) error {
	return nil
}

// Close stops the background cleanup goroutine and waits for it to finish.
func (s *MemoryStorage) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopCleanup)
		<-s.cleanupDone
	})
	return nil
}

func (s *MemoryStorage) cleanupLoop() {
	defer close(s.cleanupDone)

	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCleanup:
			return
		case <-ticker.C:
			s.cleanupExpired()
		}
	}
}

// cleanupExpired collects expired JTIs under the read lock and deletes them
// under the write lock.
func (s *MemoryStorage) cleanupExpired() {
	now := s.now()

	s.mu.RLock()
	var expired []string
	for k, v := range s.clientAssertionJWTs {
		if now.After(v) {
			expired = append(expired, k)
		}
	}
	s.mu.RUnlock()

	if len(expired) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range expired {
		delete(s.clientAssertionJWTs, k)
	}
}

// -----------------------
// ClientRepository
// -----------------------

// FindClientByID loads a client by internal id.
func (s *MemoryStorage) FindClientByID(_ context.Context, id string) (*client.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[id]
	if !ok {
		return nil, notFound("client", id)
	}
	return c.Clone(), nil
}

// FindClientByClientID loads a client of a domain by OAuth client_id.
func (s *MemoryStorage) FindClientByClientID(_ context.Context, domainID, clientID string) (*client.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.clientIDs[clientID]
	if !ok {
		return nil, notFound("client", clientID)
	}
	c := s.clients[id]
	if c.DomainID != domainID {
		return nil, notFound("client", clientID)
	}
	return c.Clone(), nil
}

// CreateClient stores a new client at version 1.
func (s *MemoryStorage) CreateClient(_ context.Context, c *client.Client) (*client.Client, error) {
	if c == nil || c.ClientID == "" {
		return nil, invalidArgument("client_id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := c.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if _, exists := s.clients[stored.ID]; exists {
		return nil, invalidArgument("client %s already exists", stored.ID)
	}
	if _, exists := s.clientIDs[stored.ClientID]; exists {
		return nil, invalidArgument("client_id %s already exists", stored.ClientID)
	}

	now := s.now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	stored.Version = 1

	s.clients[stored.ID] = stored
	s.clientIDs[stored.ClientID] = stored.ID

	logger.Debugw("created client", "client_id", stored.ClientID, "domain", stored.DomainID)
	return stored.Clone(), nil
}

// UpdateClient replaces a client when c.Version matches the stored version.
func (s *MemoryStorage) UpdateClient(_ context.Context, c *client.Client) (*client.Client, error) {
	if c == nil {
		return nil, invalidArgument("client is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.clients[c.ID]
	if !ok {
		return nil, notFound("client", c.ID)
	}
	if existing.Version != c.Version {
		return nil, staleVersion(c.ID, c.Version, existing.Version)
	}
	if owner, taken := s.clientIDs[c.ClientID]; taken && owner != c.ID {
		return nil, invalidArgument("client_id %s already exists", c.ClientID)
	}

	stored := c.Clone()
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = s.now()
	stored.Version = existing.Version + 1

	if existing.ClientID != stored.ClientID {
		delete(s.clientIDs, existing.ClientID)
	}
	s.clients[stored.ID] = stored
	s.clientIDs[stored.ClientID] = stored.ID

	return stored.Clone(), nil
}

// DeleteClient removes a client by internal id.
func (s *MemoryStorage) DeleteClient(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.clients[id]
	if !ok {
		return notFound("client", id)
	}
	delete(s.clients, id)
	delete(s.clientIDs, existing.ClientID)
	return nil
}

// -----------------------
// fosite.ClientManager
// -----------------------

// GetClient loads the client by its OAuth client_id or returns an error if
// the client does not exist.
func (s *MemoryStorage) GetClient(_ context.Context, id string) (fosite.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	internalID, ok := s.clientIDs[id]
	if !ok {
		logger.Debugw("client not found", "client_id", id)
		return nil, fmt.Errorf("%w: %w", notFound("client", id), fosite.ErrNotFound.WithHint("Client not found"))
	}
	return s.clients[internalID].Clone(), nil
}

// ClientAssertionJWTValid returns an error if the JTI is known or the DB check failed,
// and nil if the JTI is not known (meaning it can be used).
func (s *MemoryStorage) ClientAssertionJWTValid(_ context.Context, jti string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if exp, ok := s.clientAssertionJWTs[jti]; ok {
		if s.now().Before(exp) {
			return fosite.ErrJTIKnown
		}
	}
	return nil
}

// SetClientAssertionJWT marks a JTI as known for the given expiry time.
func (s *MemoryStorage) SetClientAssertionJWT(_ context.Context, jti string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clientAssertionJWTs[jti] = exp
	return nil
}

// -----------------------
// DomainRepository
// -----------------------

// FindDomainByID loads a domain.
func (s *MemoryStorage) FindDomainByID(_ context.Context, id string) (*client.Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.domains[id]
	if !ok {
		return nil, notFound("domain", id)
	}
	return d.Clone(), nil
}

// CreateDomain stores a domain, replacing any existing one with the same id.
func (s *MemoryStorage) CreateDomain(_ context.Context, d *client.Domain) (*client.Domain, error) {
	if d == nil || d.ID == "" {
		return nil, invalidArgument("domain id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.domains[d.ID] = d.Clone()
	return d.Clone(), nil
}

// -----------------------
// IdentityProviderRepository / CertificateRepository
// -----------------------

// FindIdentityProvidersByDomain lists a domain's identity providers.
func (s *MemoryStorage) FindIdentityProvidersByDomain(_ context.Context, domainID string) ([]*client.IdentityProvider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*client.IdentityProvider, 0, len(s.identityProviders[domainID]))
	for _, idp := range s.identityProviders[domainID] {
		cp := *idp
		out = append(out, &cp)
	}
	return out, nil
}

// CreateIdentityProvider appends an identity provider to its domain.
func (s *MemoryStorage) CreateIdentityProvider(_ context.Context, idp *client.IdentityProvider) error {
	if idp == nil || idp.ID == "" || idp.DomainID == "" {
		return invalidArgument("identity provider id and domain are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *idp
	s.identityProviders[idp.DomainID] = append(s.identityProviders[idp.DomainID], &cp)
	return nil
}

// FindCertificatesByDomain lists a domain's certificates.
func (s *MemoryStorage) FindCertificatesByDomain(_ context.Context, domainID string) ([]*client.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*client.Certificate, 0, len(s.certificates[domainID]))
	for _, cert := range s.certificates[domainID] {
		cp := *cert
		out = append(out, &cp)
	}
	return out, nil
}

// CreateCertificate appends a certificate to its domain.
func (s *MemoryStorage) CreateCertificate(_ context.Context, cert *client.Certificate) error {
	if cert == nil || cert.ID == "" || cert.DomainID == "" {
		return invalidArgument("certificate id and domain are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *cert
	s.certificates[cert.DomainID] = append(s.certificates[cert.DomainID], &cp)
	return nil
}

// -----------------------
// FormService / EmailTemplateService
// -----------------------

// CreateForm stores a form.
func (s *MemoryStorage) CreateForm(_ context.Context, form *client.Form) error {
	if form == nil || form.DomainID == "" || form.ClientID == "" {
		return invalidArgument("form domain and client are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *form
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	addOwned(s.forms, cp.DomainID, cp.ClientID, &cp)
	return nil
}

// FindFormsByClient lists the forms of a client.
func (s *MemoryStorage) FindFormsByClient(_ context.Context, domainID, clientID string) ([]*client.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copyOwned(s.forms[domainID][clientID]), nil
}

// CopyFormsFromClient clones the forms of sourceID onto targetID.
func (s *MemoryStorage) CopyFormsFromClient(_ context.Context, domainID, sourceID, targetID string) ([]*client.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var copied []*client.Form
	for _, form := range s.forms[domainID][sourceID] {
		cp := *form
		cp.ID = uuid.NewString()
		cp.ClientID = targetID
		addOwned(s.forms, domainID, targetID, &cp)
		out := cp
		copied = append(copied, &out)
	}
	return copied, nil
}

// CreateEmailTemplate stores an email template.
func (s *MemoryStorage) CreateEmailTemplate(_ context.Context, email *client.EmailTemplate) error {
	if email == nil || email.DomainID == "" || email.ClientID == "" {
		return invalidArgument("email template domain and client are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *email
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	addOwned(s.emails, cp.DomainID, cp.ClientID, &cp)
	return nil
}

// FindEmailTemplatesByClient lists the email templates of a client.
func (s *MemoryStorage) FindEmailTemplatesByClient(
	_ context.Context, domainID, clientID string,
) ([]*client.EmailTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copyOwned(s.emails[domainID][clientID]), nil
}

// CopyEmailTemplatesFromClient clones the email templates of sourceID onto targetID.
func (s *MemoryStorage) CopyEmailTemplatesFromClient(
	_ context.Context, domainID, sourceID, targetID string,
) ([]*client.EmailTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var copied []*client.EmailTemplate
	for _, email := range s.emails[domainID][sourceID] {
		cp := *email
		cp.ID = uuid.NewString()
		cp.ClientID = targetID
		addOwned(s.emails, domainID, targetID, &cp)
		out := cp
		copied = append(copied, &out)
	}
	return copied, nil
}

func addOwned[T any](index map[string]map[string][]*T, domainID, clientID string, v *T) {
	byClient, ok := index[domainID]
	if !ok {
		byClient = make(map[string][]*T)
		index[domainID] = byClient
	}
	byClient[clientID] = append(byClient[clientID], v)
}

func copyOwned[T any](in []*T) []*T {
	out := make([]*T, 0, len(in))
	for _, v := range in {
		cp := *v
		out = append(out, &cp)
	}
	return out
}

// Compile-time interface check.
var _ Storage = (*MemoryStorage)(nil)
