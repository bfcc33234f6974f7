package calendars

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// cacheTTL bounds how long a definition may serve from Redis without a
// revalidating read. Writes invalidate eagerly; the TTL is the backstop for
// invalidations lost to a Redis restart.
const cacheTTL = 15 * time.Minute

// cacheKeyPrefix namespaces calendar definition keys in Redis.
const cacheKeyPrefix = "almanac:calendar:"

// Cache is a Redis-backed read-through cache for calendar definitions.
// Conversion endpoints load the full definition on every request, so a hot
// calendar would otherwise hit seven tables per conversion.
//
// All methods tolerate a nil receiver and degrade to cache-miss behavior,
// so wiring without Redis stays a one-line change.
type Cache struct {
	rdb *redis.Client
}

// NewCache creates a definition cache on the given Redis client.
func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// Get returns the cached definition for an ID, or nil on any miss. Cache
// errors are logged and treated as misses; Redis being down must never fail
// a read.
func (c *Cache) Get(ctx context.Context, id string) *Definition {
	if c == nil || c.rdb == nil {
		return nil
	}

	data, err := c.rdb.Get(ctx, cacheKeyPrefix+id).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("calendar cache read failed", slog.String("id", id), slog.Any("error", err))
		}
		return nil
	}

	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		slog.Warn("calendar cache entry corrupt; dropping", slog.String("id", id), slog.Any("error", err))
		c.rdb.Del(ctx, cacheKeyPrefix+id)
		return nil
	}
	return &def
}

// Put stores a definition. Failures are logged and ignored.
func (c *Cache) Put(ctx context.Context, def *Definition) {
	if c == nil || c.rdb == nil || def == nil {
		return
	}

	data, err := json.Marshal(def)
	if err != nil {
		slog.Warn("calendar cache encode failed", slog.String("id", def.ID), slog.Any("error", err))
		return
	}
	if err := c.rdb.Set(ctx, cacheKeyPrefix+def.ID, data, cacheTTL).Err(); err != nil {
		slog.Warn("calendar cache write failed", slog.String("id", def.ID), slog.Any("error", err))
	}
}

// Invalidate drops the cached definition for an ID. Called on every write.
func (c *Cache) Invalidate(ctx context.Context, id string) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, cacheKeyPrefix+id).Err(); err != nil {
		slog.Warn("calendar cache invalidation failed", slog.String("id", id), slog.Any("error", err))
	}
}
