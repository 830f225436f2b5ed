// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package jwks fetches client key sets published at a jwks_uri.
package jwks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"

	"github.com/stacklok/dcrgate/pkg/logger"
	"github.com/stacklok/dcrgate/pkg/networking"
)

// DefaultMaxCachedURIs bounds how many jwks_uri values are kept in the
// refreshing cache at once.
const DefaultMaxCachedURIs = 256

// unregisterTimeout bounds removal of a resource from the cache after the
// request context may already be done.
const unregisterTimeout = 5 * time.Second

// Fetcher resolves jwks_uri values through an auto-refreshing jwk.Cache.
// Outbound requests go through the SSRF-protected networking client.
//
// A URI whose first fetch fails is removed from the cache again, so the next
// registration naming it retries the fetch. At most maxEntries URIs are kept;
// the least recently used one is dropped when the limit is reached.
type Fetcher struct {
	cache      *jwk.Cache
	timeout    time.Duration
	maxEntries int

	mu      sync.Mutex
	lastUse map[string]time.Time
	now     func() time.Time
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithMaxCachedURIs sets how many jwks_uri values are cached at once.
func WithMaxCachedURIs(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxEntries = n
		}
	}
}

// NewFetcher creates a Fetcher. The cache stops refreshing when ctx is done.
func NewFetcher(
	ctx context.Context, httpClient networking.HTTPClient, timeout time.Duration, opts ...FetcherOption,
) (*Fetcher, error) {
	cache, err := jwk.NewCache(ctx, httprc.NewClient(httprc.WithHTTPClient(httpClient)))
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS cache: %w", err)
	}
	f := &Fetcher{
		cache:      cache,
		timeout:    timeout,
		maxEntries: DefaultMaxCachedURIs,
		lastUse:    make(map[string]time.Time),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// GetKeys returns the key set published at uri.
func (f *Fetcher) GetKeys(ctx context.Context, uri string) (*jose.JSONWebKeySet, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	set, err := f.lookup(ctx, uri)
	if err != nil {
		return nil, err
	}

	// jwk.Set and jose.JSONWebKeySet share the RFC 7517 wire format.
	data, err := json.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JWKS: %w", err)
	}
	var out jose.JSONWebKeySet
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode JWKS: %w", err)
	}
	return &out, nil
}

func (f *Fetcher) lookup(ctx context.Context, uri string) (jwk.Set, error) {
	if f.cache.IsRegistered(ctx, uri) {
		if set, err := f.cache.Lookup(ctx, uri); err == nil {
			f.touch(ctx, uri)
			return set, nil
		}
		// Left behind by a registration whose first fetch failed.
		f.unregister(ctx, uri)
	}

	if err := f.cache.Register(ctx, uri); err != nil {
		// Another request may have registered uri first.
		if f.cache.Ready(ctx, uri) {
			if set, lookupErr := f.cache.Lookup(ctx, uri); lookupErr == nil {
				f.touch(ctx, uri)
				return set, nil
			}
		}
		f.unregister(ctx, uri)
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	set, err := f.cache.Lookup(ctx, uri)
	if err != nil {
		f.unregister(ctx, uri)
		return nil, fmt.Errorf("failed to lookup JWKS: %w", err)
	}
	f.touch(ctx, uri)
	return set, nil
}

// touch records a use of uri and evicts the least recently used URI when the
// cache is over its limit.
func (f *Fetcher) touch(ctx context.Context, uri string) {
	f.mu.Lock()
	f.lastUse[uri] = f.now()
	var evict string
	if len(f.lastUse) > f.maxEntries {
		var oldest time.Time
		for u, at := range f.lastUse {
			if u != uri && (evict == "" || at.Before(oldest)) {
				evict, oldest = u, at
			}
		}
	}
	f.mu.Unlock()

	if evict != "" {
		f.unregister(ctx, evict)
	}
}

func (f *Fetcher) unregister(ctx context.Context, uri string) {
	f.mu.Lock()
	delete(f.lastUse, uri)
	f.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), unregisterTimeout)
	defer cancel()
	if err := f.cache.Unregister(ctx, uri); err != nil {
		logger.Debugw("failed to remove JWKS URL from cache", "uri", uri, "error", err)
	}
}
