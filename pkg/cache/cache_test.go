package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	c, err := NewCache("localhost:0", false)
	if err != nil {
		t.Fatalf("disabled cache should not connect: %v", err)
	}
	ctx := context.Background()

	if err := c.CacheRender(ctx, "k", []byte("png"), time.Minute); err != nil {
		t.Fatalf("expected set on disabled cache to succeed, got %v", err)
	}
	if _, err := c.GetCachedRender(ctx, "k"); !errors.Is(err, ErrCacheDisabled) {
		t.Fatalf("expected ErrCacheDisabled, got %v", err)
	}
	var dest map[string]string
	if err := c.GetCachedMicrosite(ctx, "shop", &dest); !errors.Is(err, ErrCacheDisabled) {
		t.Fatalf("expected ErrCacheDisabled, got %v", err)
	}
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("disabled cache should report healthy, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestNilCacheIsDisabled(t *testing.T) {
	var c *Cache
	if c.Enabled() {
		t.Fatalf("nil cache must report disabled")
	}
	if err := c.InvalidateMicrosite(context.Background(), "x"); err != nil {
		t.Fatalf("expected nil cache invalidation to be a no-op, got %v", err)
	}
}

func TestNewCacheRejectsBadURL(t *testing.T) {
	if _, err := NewCache("redis://localhost:6379/notanumber", true); err == nil {
		t.Fatalf("expected invalid URL error")
	}
}
