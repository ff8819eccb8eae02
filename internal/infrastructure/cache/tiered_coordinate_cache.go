package cache

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/neighbourhood/backend/internal/domain/geocoding"
	"github.com/neighbourhood/backend/internal/domain/shared"
)

// TieredCoordinateCache implements geocoding.CacheRepository with a
// read-through hierarchy:
//
//	L1: local in-memory map (per instance)
//	L2: Redis (shared, optional)
//	L3: Postgres, the durable source of truth
//
// Writes go to Postgres first so an existing entry always wins, then warm
// the upper tiers best-effort.
type TieredCoordinateCache struct {
	memory     *InMemoryCoordinateCache
	redis      *RedisCoordinateCache
	persistent geocoding.CacheRepository
	logger     *zap.Logger

	l1Hits int64
	l2Hits int64
	misses int64

	metrics LookupMetrics
}

// LookupMetrics counts lookups per serving tier. Optional.
type LookupMetrics interface {
	RecordGeocodeLookup(ctx context.Context, tier string)
}

// NewTieredCoordinateCache creates a tiered cache. The redis tier may be
// nil when Redis is disabled.
func NewTieredCoordinateCache(
	memory *InMemoryCoordinateCache,
	redisTier *RedisCoordinateCache,
	persistent geocoding.CacheRepository,
	logger *zap.Logger,
) *TieredCoordinateCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TieredCoordinateCache{
		memory:     memory,
		redis:      redisTier,
		persistent: persistent,
		logger:     logger,
	}
}

// Find looks the key up tier by tier, populating upper tiers on a hit
func (c *TieredCoordinateCache) Find(ctx context.Context, location, parish string) (*geocoding.CacheEntry, error) {
	if entry := c.memory.Get(ctx, location, parish); entry != nil {
		atomic.AddInt64(&c.l1Hits, 1)
		c.recordLookup(ctx, "memory")
		return entry, nil
	}

	if c.redis != nil {
		entry, err := c.redis.Get(ctx, location, parish)
		if err != nil {
			c.logger.Warn("redis cache read failed",
				zap.String("location", location),
				zap.String("parish", parish),
				zap.Error(err))
		} else if entry != nil {
			atomic.AddInt64(&c.l2Hits, 1)
			c.recordLookup(ctx, "redis")
			c.memory.Set(ctx, entry)
			return entry, nil
		}
	}

	entry, err := c.persistent.Find(ctx, location, parish)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			atomic.AddInt64(&c.misses, 1)
			c.recordLookup(ctx, "miss")
		}
		return nil, err
	}

	c.recordLookup(ctx, "database")
	c.warm(ctx, entry)
	return entry, nil
}

// SaveIfAbsent writes through to the durable tier, then warms the rest
func (c *TieredCoordinateCache) SaveIfAbsent(ctx context.Context, entry *geocoding.CacheEntry) error {
	if err := c.persistent.SaveIfAbsent(ctx, entry); err != nil {
		return err
	}

	// Re-read so a concurrent earlier write wins in the warm tiers too.
	stored, err := c.persistent.Find(ctx, entry.Location, entry.Parish)
	if err != nil {
		stored = entry
	}
	c.warm(ctx, stored)
	return nil
}

// SetMetrics attaches a lookup metrics sink
func (c *TieredCoordinateCache) SetMetrics(m LookupMetrics) {
	c.metrics = m
}

func (c *TieredCoordinateCache) recordLookup(ctx context.Context, tier string) {
	if c.metrics != nil {
		c.metrics.RecordGeocodeLookup(ctx, tier)
	}
}

// Stats returns hit counters for the health endpoint
func (c *TieredCoordinateCache) Stats() (l1Hits, l2Hits, misses int64) {
	return atomic.LoadInt64(&c.l1Hits), atomic.LoadInt64(&c.l2Hits), atomic.LoadInt64(&c.misses)
}

func (c *TieredCoordinateCache) warm(ctx context.Context, entry *geocoding.CacheEntry) {
	c.memory.Set(ctx, entry)
	if c.redis != nil {
		if err := c.redis.Set(ctx, entry); err != nil {
			c.logger.Warn("redis cache write failed",
				zap.String("location", entry.Location),
				zap.String("parish", entry.Parish),
				zap.Error(err))
		}
	}
}
