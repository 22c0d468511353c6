package webdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when no snapshot is cached for a company.
var ErrCacheMiss = errors.New("snapshot not cached")

// RedisSnapshotCache implements SnapshotCache on Redis with a TTL.
type RedisSnapshotCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisCacheOptions configuration for the snapshot cache.
type RedisCacheOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "langagent:"
	TTL      time.Duration // Default 6h
}

// NewRedisSnapshotCache creates a Redis-backed snapshot cache.
func NewRedisSnapshotCache(opts RedisCacheOptions) *RedisSnapshotCache {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "langagent:"
	}
	ttl := opts.TTL
	if ttl == 0 {
		ttl = 6 * time.Hour
	}

	return &RedisSnapshotCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Close closes the Redis client.
func (c *RedisSnapshotCache) Close() error {
	return c.client.Close()
}

func (c *RedisSnapshotCache) key(company string) string {
	return c.prefix + "snapshot:" + strings.ToLower(strings.TrimSpace(company))
}

// Get returns the cached snapshot for a company, or ErrCacheMiss.
func (c *RedisSnapshotCache) Get(ctx context.Context, company string) (*CompanySnapshot, error) {
	data, err := c.client.Get(ctx, c.key(company)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read snapshot cache: %w", err)
	}

	var snap CompanySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached snapshot: %w", err)
	}
	return &snap, nil
}

// Set caches a snapshot under the cache TTL.
func (c *RedisSnapshotCache) Set(ctx context.Context, company string, snapshot *CompanySnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := c.client.Set(ctx, c.key(company), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot cache: %w", err)
	}
	return nil
}
