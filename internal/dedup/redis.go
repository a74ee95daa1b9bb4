// Package dedup keeps a Redis set of premise links already persisted. Ingestion
// uses it to skip store lookups for links it has never seen; hits are still
// confirmed against the premise store.
package dedup

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultPrefix = "premise_fetcher:link:"
	DefaultTTL    = 48 * time.Hour
)

// Config configures the link cache.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// LinkCache records seen premise links with a TTL. It is a pre-filter only;
// the premise store remains the source of truth.
type LinkCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewLinkCache connects to Redis and verifies the connection with a ping.
func NewLinkCache(ctx context.Context, cfg Config) (*LinkCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return NewLinkCacheWithClient(rdb, cfg.Prefix, cfg.TTL), nil
}

// NewLinkCacheWithClient wraps an existing client. Zero values fall back to
// DefaultPrefix and DefaultTTL.
func NewLinkCacheWithClient(rdb *redis.Client, prefix string, ttl time.Duration) *LinkCache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &LinkCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *LinkCache) key(link string) string {
	return c.prefix + link
}

func (c *LinkCache) Seen(ctx context.Context, link string) (bool, error) {
	n, err := c.rdb.Exists(ctx, c.key(link)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *LinkCache) Mark(ctx context.Context, link string) error {
	return c.rdb.Set(ctx, c.key(link), "1", c.ttl).Err()
}

// Forget drops links whose premises were deleted, so they can be ingested again.
func (c *LinkCache) Forget(ctx context.Context, links ...string) error {
	if len(links) == 0 {
		return nil
	}
	keys := make([]string, len(links))
	for i, link := range links {
		keys[i] = c.key(link)
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *LinkCache) Close() error {
	return c.rdb.Close()
}
