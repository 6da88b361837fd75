package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if err := c.Set(ctx, TokenPerformanceKey("solana", "abc"), "payload", time.Minute); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}

	value, ok, err := c.Get(ctx, "token:solana:abc:performance")
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if !ok || value != "payload" {
		t.Fatalf("expected cached payload, got ok=%v value=%q", ok, value)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	current := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	if err := c.Set(ctx, "k", "v", 30*time.Second); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}

	if _, ok, _ := c.Get(ctx, "k"); !ok {
		t.Fatal("expected hit before expiry")
	}

	current = current.Add(31 * time.Second)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatal("expected miss after expiry")
	}
}

func TestMemoryCacheRejectsZeroTTL(t *testing.T) {
	c := NewMemoryCache()
	if err := c.Set(context.Background(), "k", "v", 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatal("expected miss after delete")
	}
}
