package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/core/port"
)

// ProfileCache keeps short-lived profile copies in Redis for per-request guard
// checks. The TTL is deliberately small: role changes must surface on the next
// request once the entry lapses.
type ProfileCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewProfileCache constructs a Redis-backed profile cache.
func NewProfileCache(client *redis.Client, keyPrefix string) *ProfileCache {
	return &ProfileCache{client: client, keyPrefix: keyPrefix}
}

// Get returns the cached profile when present. A missing key is not an error.
func (c *ProfileCache) Get(ctx context.Context, userID string) (*domain.Profile, bool, error) {
	raw, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get profile: %w", err)
	}

	var profile domain.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached profile: %w", err)
	}

	return &profile, true, nil
}

// Set stores the profile under the configured TTL.
func (c *ProfileCache) Set(ctx context.Context, profile domain.Profile, ttl time.Duration) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	if err := c.client.Set(ctx, c.key(profile.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set profile: %w", err)
	}

	return nil
}

// Invalidate drops the cached copy, forcing the next read through to Postgres.
func (c *ProfileCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis del profile: %w", err)
	}
	return nil
}

func (c *ProfileCache) key(userID string) string {
	if c.keyPrefix == "" {
		return userID
	}
	return fmt.Sprintf("%s:%s", c.keyPrefix, userID)
}

var _ port.ProfileCache = (*ProfileCache)(nil)
