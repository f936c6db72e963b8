package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/muzz-matching/internal/config"
)

// AdmirerCountTTL is how long a cached "liked me" count lives without access.
const AdmirerCountTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// KeyForAdmirerCount generates Redis key for a user's "liked me" count.
func (c *RedisCache) KeyForAdmirerCount(userID string) string {
	return fmt.Sprintf("admirers:count:%s", userID)
}

// GetAdmirerCount returns the cached count. ok=false on a cache miss.
// A hit refreshes the TTL since the user is active.
func (c *RedisCache) GetAdmirerCount(ctx context.Context, userID string) (n int64, ok bool, err error) {
	key := c.KeyForAdmirerCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	n, err = strconv.ParseInt(val, 10, 64)
	if err != nil {
		// corrupt entry; treat as a miss
		return 0, false, nil
	}
	_ = c.Client.Expire(ctx, key, AdmirerCountTTL).Err()
	return n, true, nil
}

func (c *RedisCache) SetAdmirerCount(ctx context.Context, userID string, n int64) error {
	return c.Client.Set(ctx, c.KeyForAdmirerCount(userID), n, AdmirerCountTTL).Err()
}

// InvalidateAdmirerCount drops the cached counts for the given users.
func (c *RedisCache) InvalidateAdmirerCount(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, c.KeyForAdmirerCount(id))
	}
	return c.Client.Del(ctx, keys...).Err()
}

// ClaimOnce sets key if absent and reports whether this caller won it.
// Used to run a side effect at most once per key within ttl.
func (c *RedisCache) ClaimOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.Client.SetNX(ctx, key, time.Now().UTC().Unix(), ttl).Result()
}

// Release deletes a claim so the side effect can be retried.
func (c *RedisCache) Release(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}
