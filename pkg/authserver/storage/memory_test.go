// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dcrerrors "github.com/stacklok/dcrgate/pkg/errors"
)

func TestNewMemoryStorage(t *testing.T) {
	t.Parallel()
	storage := NewMemoryStorage()
	defer storage.Close()

	require.NotNil(t, storage)
	assert.NotNil(t, storage.clients)
	assert.NotNil(t, storage.clientIDs)
	assert.NotNil(t, storage.clientAssertionJWTs)
	assert.Equal(t, DefaultCleanupInterval, storage.cleanupInterval)
}

func TestMemoryStorage_CloseIsIdempotent(t *testing.T) {
	t.Parallel()
	storage := NewMemoryStorage()
	require.NoError(t, storage.Close())
	require.NoError(t, storage.Close())
}

func TestMemoryStorage_CleanupExpiredJTIs(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	storage := NewMemoryStorage(WithClock(func() time.Time { return now }))
	defer storage.Close()

	ctx := context.Background()
	require.NoError(t, storage.SetClientAssertionJWT(ctx, "expired", now.Add(-time.Minute)))
	require.NoError(t, storage.SetClientAssertionJWT(ctx, "live", now.Add(time.Minute)))

	storage.cleanupExpired()

	storage.mu.RLock()
	defer storage.mu.RUnlock()
	assert.NotContains(t, storage.clientAssertionJWTs, "expired")
	assert.Contains(t, storage.clientAssertionJWTs, "live")
}

func TestMemoryStorage_CleanupLoopRuns(t *testing.T) {
	t.Parallel()
	storage := NewMemoryStorage(WithCleanupInterval(10 * time.Millisecond))
	defer storage.Close()

	require.NoError(t, storage.SetClientAssertionJWT(context.Background(), "old", time.Now().Add(-time.Second)))

	assert.Eventually(t, func() bool {
		storage.mu.RLock()
		defer storage.mu.RUnlock()
		_, ok := storage.clientAssertionJWTs["old"]
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryStorage_ConcurrentUpdatesOnlyOneWins(t *testing.T) {
	t.Parallel()
	storage := NewMemoryStorage()
	defer storage.Close()
	ctx := context.Background()

	created, err := storage.CreateClient(ctx, testClient())
	require.NoError(t, err)

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := storage.UpdateClient(ctx, created.Clone())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case dcrerrors.IsConcurrentModification(err):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, writers-1, conflicts)

	stored, err := storage.FindClientByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Version)
}

func TestMemoryStorage_TimestampsFollowClock(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	storage := NewMemoryStorage(WithClock(func() time.Time { return now }))
	defer storage.Close()
	ctx := context.Background()

	created, err := storage.CreateClient(ctx, testClient())
	require.NoError(t, err)
	assert.Equal(t, now, created.CreatedAt)
	assert.Equal(t, now, created.UpdatedAt)

	now = now.Add(time.Hour)
	updated, err := storage.UpdateClient(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, now, updated.UpdatedAt)
}
