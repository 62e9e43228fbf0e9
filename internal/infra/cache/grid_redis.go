// Package cache keeps computed availability grids in Redis. Every
// failure degrades to a miss; the booking path never depends on it.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/BruksfildServices01/salon-booking/internal/domain/availability"
)

const keyPrefix = "salon:grid"

// NewRedisClient connects and pings. It returns nil when addr is empty
// or the server does not answer, and callers fall back to no caching.
func NewRedisClient(addr, password string, db int, logger *slog.Logger) *redis.Client {
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, grid cache disabled", "addr", addr, "err", err)
		_ = client.Close()
		return nil
	}
	return client
}

// GridCache stores grids under a per-barber version. Callers read the
// version before computing a grid and store it under that version;
// Invalidate bumps it, so a grid computed before a write is never read
// after it. Dead entries expire by TTL.
type GridCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewGridCache(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *GridCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &GridCache{rdb: rdb, ttl: ttl, logger: logger}
}

func versionKey(barberID uint) string {
	return fmt.Sprintf("%s:v:%d", keyPrefix, barberID)
}

func gridKey(key availability.GridKey) string {
	return fmt.Sprintf("%s:%d:%d:%d:%s", keyPrefix, key.BarberID, key.Version, key.ServiceID, key.WeekStart)
}

// Version returns the barber's current version. ok is false when the
// cache cannot be used for this request.
func (c *GridCache) Version(ctx context.Context, barberID uint) (int64, bool) {
	if c == nil || c.rdb == nil {
		return 0, false
	}
	v, err := c.rdb.Get(ctx, versionKey(barberID)).Int64()
	switch {
	case err == redis.Nil:
		return 0, true
	case err != nil:
		c.logger.DebugContext(ctx, "grid cache version read failed", "err", err)
		return 0, false
	}
	return v, true
}

func (c *GridCache) Get(ctx context.Context, key availability.GridKey) (*availability.Grid, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}

	bs, err := c.rdb.Get(ctx, gridKey(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.DebugContext(ctx, "grid cache read failed", "err", err)
		}
		return nil, false
	}

	var g availability.Grid
	if err := json.Unmarshal(bs, &g); err != nil {
		return nil, false
	}
	return &g, true
}

// Set stores g under key.Version, the version read before g was built.
func (c *GridCache) Set(ctx context.Context, key availability.GridKey, g availability.Grid) {
	if c == nil || c.rdb == nil {
		return
	}

	bs, err := json.Marshal(g)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, gridKey(key), bs, c.ttl).Err(); err != nil {
		c.logger.DebugContext(ctx, "grid cache write failed", "err", err)
	}
}

func (c *GridCache) Invalidate(ctx context.Context, barberID uint) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Incr(ctx, versionKey(barberID)).Err(); err != nil {
		c.logger.WarnContext(ctx, "grid cache invalidation failed", "barber_id", barberID, "err", err)
	}
}
