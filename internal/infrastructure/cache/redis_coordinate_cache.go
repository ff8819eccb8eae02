package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neighbourhood/backend/internal/domain/geocoding"
	"github.com/neighbourhood/backend/internal/infrastructure/config"
)

const coordinateKeyPrefix = "geocode:"

// RedisCoordinateCache is the L2 tier of the coordinate cache, shared
// across instances. Entries carry no TTL because resolved coordinates
// never change.
type RedisCoordinateCache struct {
	client *redis.Client
}

// NewRedisCoordinateCache creates a Redis-backed coordinate cache and
// verifies the connection
func NewRedisCoordinateCache(cfg config.RedisConfig) (*RedisCoordinateCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCoordinateCache{client: client}, nil
}

// Get returns the cached entry for a (location, parish) pair, or nil on miss
func (c *RedisCoordinateCache) Get(ctx context.Context, location, parish string) (*geocoding.CacheEntry, error) {
	data, err := c.client.Get(ctx, coordinateKeyPrefix+coordinateKey(location, parish)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var entry geocoding.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Set stores an entry unless the key is already present
func (c *RedisCoordinateCache) Set(ctx context.Context, entry *geocoding.CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.client.SetNX(ctx, coordinateKeyPrefix+coordinateKey(entry.Location, entry.Parish), data, 0).Err()
}

// Close releases the Redis connection
func (c *RedisCoordinateCache) Close() error {
	return c.client.Close()
}
