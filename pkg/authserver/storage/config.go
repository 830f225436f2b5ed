// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"

	"github.com/stacklok/dcrgate/pkg/config"
	"github.com/stacklok/dcrgate/pkg/logger"
)

const (
	// DefaultCleanupInterval is how often the background cleanup runs.
	DefaultCleanupInterval = 5 * time.Minute

	// Default timeouts for Redis operations.
	DefaultDialTimeout  = 5 * time.Second
	DefaultReadTimeout  = 3 * time.Second
	DefaultWriteTimeout = 3 * time.Second
)

// New creates the storage backend selected by cfg. Redis connections are
// retried with exponential backoff up to cfg.Redis.ConnectAttempts.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case config.StorageTypeMemory, "":
		return NewMemoryStorage(), nil
	case config.StorageTypeRedis:
		return NewRedisStorage(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// NewRedisStorage connects to Redis (standalone, cluster or Sentinel,
// depending on cfg) and verifies the connection.
func NewRedisStorage(ctx context.Context, cfg config.RedisConfig) (*RedisStorage, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("at least one redis address is required")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = config.DefaultRedisKeyPrefix
	}
	if cfg.ClusterMode() && !config.HasHashTag(cfg.KeyPrefix) {
		return nil, fmt.Errorf("redis key prefix %q needs a {hash tag} in cluster mode", cfg.KeyPrefix)
	}

	rdb := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        cfg.Addrs,
		MasterName:   cfg.MasterName,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  DefaultDialTimeout,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	})

	attempts := cfg.ConnectAttempts
	if attempts == 0 {
		attempts = config.DefaultRedisConnectAttempts
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, rdb.Ping(ctx).Err()
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(attempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warnw("redis not reachable, retrying", "error", err, "retry_in", next)
		}),
	)
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisStorageWithClient(rdb, cfg.KeyPrefix), nil
}
