package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

// newTestRedisCache connects to JOBHUB_TEST_REDIS_URL or skips.
func newTestRedisCache(t *testing.T) *RedisCache {
	t.Helper()
	url := os.Getenv("JOBHUB_TEST_REDIS_URL")
	if url == "" {
		t.Skip("JOBHUB_TEST_REDIS_URL not set")
	}
	rdb, err := NewRedisClient(context.Background(), url)
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	c := NewRedisCache(rdb, "jobhub-test:"+t.Name()+":")
	t.Cleanup(func() {
		c.FlushAll(context.Background())
		rdb.Close()
	})
	return c
}

func TestRedisCache_RoundTripAndTTL(t *testing.T) {
	ctx := context.Background()
	c := newTestRedisCache(t)

	if err := c.Set(ctx, "k", []byte("v"), time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(got) != "v" {
		t.Fatalf("Get = (%q, %v, %v), want (v, true, nil)", got, ok, err)
	}

	time.Sleep(1200 * time.Millisecond)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatal("expected miss after ttl")
	}
}

func TestRedisCache_FlushScopedToPrefix(t *testing.T) {
	ctx := context.Background()
	c := newTestRedisCache(t)

	c.Set(ctx, "a", []byte("1"), time.Minute)
	c.Set(ctx, "b", []byte("2"), time.Minute)

	st, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Keys != 2 {
		t.Errorf("Keys = %d, want 2", st.Keys)
	}

	if err := c.FlushAll(ctx); err != nil {
		t.Fatalf("FlushAll: %v", err)
	}
	st, _ = c.Stats(ctx)
	if st.Keys != 0 {
		t.Errorf("Keys after flush = %d, want 0", st.Keys)
	}
}

func TestNewRedisClient_BadURL(t *testing.T) {
	if _, err := NewRedisClient(context.Background(), "not-a-url"); err == nil {
		t.Fatal("expected error for malformed redis url")
	}
}
