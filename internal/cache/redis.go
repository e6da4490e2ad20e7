package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"blockrover/internal/domain"
)

// RedisConfig describes the Redis connection for the snapshot cache.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache is a SnapshotCache backed by Redis, for deployments running
// more than one bot process against the same data providers.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

// key builds the Redis key for a contract address.
func key(addr domain.ContractAddress) string {
	return "blockrover:snapshot:" + addr.String()
}

// Get retrieves a cached snapshot. Returns (nil, nil) on a miss.
func (c *RedisCache) Get(ctx context.Context, addr domain.ContractAddress) (*domain.TokenSnapshot, error) {
	data, err := c.client.Get(ctx, key(addr)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var snap domain.TokenSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		// A corrupt entry behaves like a miss.
		return nil, nil
	}
	return &snap, nil
}

// Set stores a snapshot with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, snap *domain.TokenSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, key(snap.Address), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

var _ SnapshotCache = (*RedisCache)(nil)
