package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/autotrader/market"
)

// Cache backends accepted by NewCache.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// RedisCache stores quotes as JSON under "price:<symbol>" with SETEX, so
// several collectors can share one cache.
type RedisCache struct {
	client *redis.Client
	log    zerolog.Logger
}

var _ PriceCache = (*RedisCache)(nil)

func NewRedisCache(client *redis.Client, log zerolog.Logger) *RedisCache {
	return &RedisCache{client: client, log: log}
}

// DialRedis connects to addr, either a redis:// URL or host:port, and
// pings it once.
func DialRedis(ctx context.Context, addr string, log zerolog.Logger) (*RedisCache, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		o, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = o
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", opts.Addr, err)
	}
	return NewRedisCache(client, log), nil
}

// Get reports a miss on any error; the caller falls back to the broker.
func (c *RedisCache) Get(ctx context.Context, symbol string) (market.Price, bool) {
	b, err := c.client.Get(ctx, cacheKey(symbol)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("price cache read failed")
		}
		return market.Price{}, false
	}

	var p market.Price
	if err := json.Unmarshal(b, &p); err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("price cache entry corrupt")
		return market.Price{}, false
	}
	return p, true
}

func (c *RedisCache) Set(ctx context.Context, p market.Price, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	b, err := json.Marshal(p)
	if err != nil {
		c.log.Warn().Err(err).Str("symbol", p.Symbol).Msg("encode cached price")
		return
	}
	if err := c.client.SetEx(ctx, cacheKey(p.Symbol), b, ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("symbol", p.Symbol).Msg("price cache write failed")
	}
}

func (c *RedisCache) Close() error { return c.client.Close() }

// NewCache builds the cache named by kind. An empty kind means memory.
func NewCache(ctx context.Context, kind, addr string, log zerolog.Logger) (PriceCache, error) {
	switch kind {
	case "", CacheMemory:
		return NewMemoryCache(), nil
	case CacheRedis:
		if addr == "" {
			return nil, errors.New("redis cache requires an address")
		}
		return DialRedis(ctx, addr, log)
	default:
		return nil, fmt.Errorf("unknown cache type %q", kind)
	}
}
