// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/gukkan/internal/platform/constants"
	"github.com/taibuivan/gukkan/internal/platform/sec"
)

// # Revocation List

// Revocations remembers access tokens that were signed out before they expired.
type Revocations interface {
	IsRevoked(ctx context.Context, accessToken string) (bool, error)
	Revoke(ctx context.Context, accessToken string, until time.Time) error
}

// redisStore is the part of the Redis client the revocation list uses.
type redisStore interface {
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisRevocations keeps revoked token fingerprints in Redis.
//
// Each entry lives until the token would have expired anyway.
type RedisRevocations struct {
	client redisStore
	now    func() time.Time
}

func NewRedisRevocations(client redisStore) *RedisRevocations {
	return &RedisRevocations{client: client, now: time.Now}
}

func (revocations *RedisRevocations) IsRevoked(context context.Context, accessToken string) (bool, error) {
	count, err := revocations.client.Exists(context, revocationKey(accessToken)).Result()
	if err != nil {
		return false, fmt.Errorf("redis_revocation_get_failed: %w", err)
	}
	return count > 0, nil
}

func (revocations *RedisRevocations) Revoke(context context.Context, accessToken string, until time.Time) error {
	ttl := until.Sub(revocations.now())
	if until.IsZero() {
		ttl = constants.SessionRevocationFallbackTTL
	}
	if ttl <= 0 {
		return nil
	}

	if err := revocations.client.Set(context, revocationKey(accessToken), 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis_revocation_set_failed: %w", err)
	}
	return nil
}

func revocationKey(accessToken string) string {
	return constants.RedisPrefixRevokedToken + sec.Fingerprint(accessToken)
}

// NopRevocations is used when no revocation store is configured.
type NopRevocations struct{}

func (NopRevocations) IsRevoked(context.Context, string) (bool, error)  { return false, nil }
func (NopRevocations) Revoke(context.Context, string, time.Time) error { return nil }
