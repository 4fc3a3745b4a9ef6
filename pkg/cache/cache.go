package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// defaultOperationTimeout is the timeout for individual Redis operations
	defaultOperationTimeout = 5 * time.Second

	renderPrefix    = "render:"
	micrositePrefix = "microsite:"
)

var (
	ErrCacheMiss     = errors.New("key not found")
	ErrCacheDisabled = errors.New("cache disabled")
)

type Cache struct {
	client  *redis.Client
	enabled bool
}

// NewCache connects to addr, which may be a host:port pair or a
// redis:// URL. A disabled cache accepts every call and stores nothing.
func NewCache(addr string, enable bool) (*Cache, error) {
	if !enable {
		return &Cache{enabled: false}, nil
	}

	opts := &redis.Options{
		Addr:         addr,
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid Redis URL: %w", err)
		}
		parsed.PoolSize = opts.PoolSize
		parsed.MinIdleConns = opts.MinIdleConns
		parsed.DialTimeout = opts.DialTimeout
		parsed.ReadTimeout = opts.ReadTimeout
		parsed.WriteTimeout = opts.WriteTimeout
		opts = parsed
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{
		client:  client,
		enabled: true,
	}, nil
}

func (c *Cache) Enabled() bool {
	return c != nil && c.enabled
}

// operationContext bounds a Redis call by the default timeout while still
// honouring cancellation of the caller's context.
func (c *Cache) operationContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, defaultOperationTimeout)
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.SetBytes(ctx, key, jsonData, expiration)
}

func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.GetBytes(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *Cache) SetBytes(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	opCtx, cancel := c.operationContext(ctx)
	defer cancel()

	return c.client.Set(opCtx, key, value, expiration).Err()
}

func (c *Cache) GetBytes(ctx context.Context, key string) ([]byte, error) {
	if !c.Enabled() {
		return nil, ErrCacheDisabled
	}

	opCtx, cancel := c.operationContext(ctx)
	defer cancel()

	val, err := c.client.Get(opCtx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	} else if err != nil {
		return nil, err
	}
	return val, nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}

	opCtx, cancel := c.operationContext(ctx)
	defer cancel()

	return c.client.Del(opCtx, key).Err()
}

func (c *Cache) DeletePattern(ctx context.Context, pattern string) error {
	if !c.Enabled() {
		return nil
	}

	opCtx, cancel := c.operationContext(ctx)
	defer cancel()

	iter := c.client.Scan(opCtx, 0, pattern, 0).Iterator()
	for iter.Next(opCtx) {
		if err := c.client.Del(opCtx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// Ping reports whether Redis answers; a disabled cache is always healthy.
func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	opCtx, cancel := c.operationContext(ctx)
	defer cancel()
	return c.client.Ping(opCtx).Err()
}

func (c *Cache) CacheRender(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.SetBytes(ctx, renderPrefix+key, data, ttl)
}

func (c *Cache) GetCachedRender(ctx context.Context, key string) ([]byte, error) {
	return c.GetBytes(ctx, renderPrefix+key)
}

func (c *Cache) CacheMicrosite(ctx context.Context, slug string, microsite interface{}) error {
	return c.Set(ctx, micrositePrefix+slug, microsite, 30*time.Minute)
}

func (c *Cache) GetCachedMicrosite(ctx context.Context, slug string, dest interface{}) error {
	return c.Get(ctx, micrositePrefix+slug, dest)
}

func (c *Cache) InvalidateMicrosite(ctx context.Context, slug string) error {
	return c.Delete(ctx, micrositePrefix+slug)
}

func (c *Cache) InvalidateRenders(ctx context.Context) error {
	return c.DeletePattern(ctx, renderPrefix+"*")
}
