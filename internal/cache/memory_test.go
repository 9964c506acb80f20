package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func newTestMemory(maxSize int) (*MemoryCache, *time.Time) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache(MemoryOptions{DefaultTTL: time.Minute, MaxSize: maxSize})
	c.now = func() time.Time { return now }
	return c, &now
}

func TestMemoryCache_SetGetDelete(t *testing.T) {
	c, _ := newTestMemory(0)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}

	got[0] = 'x'
	again, _ := c.Get(ctx, "k")
	if string(again) != "v" {
		t.Error("Get must return a copy")
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after Delete: %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c, now := newTestMemory(0)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	_ = c.Set(ctx, "short", []byte("1"), time.Second)
	_ = c.Set(ctx, "default", []byte("2"), 0)

	*now = now.Add(2 * time.Second)
	if _, err := c.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("short entry should have expired, got %v", err)
	}
	if _, err := c.Get(ctx, "default"); err != nil {
		t.Errorf("default entry should live for a minute, got %v", err)
	}
}

func TestMemoryCache_EvictsOldest(t *testing.T) {
	c, _ := newTestMemory(2)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	_ = c.Set(ctx, "c", []byte("3"), 0)

	if _, err := c.Get(ctx, "a"); !errors.Is(err, ErrCacheMiss) {
		t.Error("oldest entry should have been evicted")
	}
	for _, k := range []string{"b", "c"} {
		if _, err := c.Get(ctx, k); err != nil {
			t.Errorf("Get(%q): %v", k, err)
		}
	}
	if n := c.Stats().Items; n != 2 {
		t.Errorf("Items = %d, want 2", n)
	}
}

func TestMemoryCache_EvictsExpiredFirst(t *testing.T) {
	c, now := newTestMemory(2)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), time.Hour)
	_ = c.Set(ctx, "b", []byte("2"), time.Second)
	*now = now.Add(time.Minute)
	_ = c.Set(ctx, "c", []byte("3"), time.Hour)

	if _, err := c.Get(ctx, "a"); err != nil {
		t.Errorf("a should survive when an expired entry can be dropped: %v", err)
	}
}

func TestMemoryCache_ClearAndClose(t *testing.T) {
	c, _ := newTestMemory(0)
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), 0)
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := c.Get(ctx, "a"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after Clear: %v", err)
	}

	_ = c.Close()
	_ = c.Close()
	if err := c.Set(ctx, "a", nil, 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Set after Close: %v, want ErrCacheClosed", err)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	c := NewMemoryCache(MemoryOptions{DefaultTTL: time.Minute, MaxSize: 50})
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := range 100 {
				key := fmt.Sprintf("k%d", (n*100+j)%80)
				_ = c.Set(ctx, key, []byte("v"), 0)
				_, _ = c.Get(ctx, key)
				if j%10 == 0 {
					_ = c.Delete(ctx, key)
				}
			}
		}(i)
	}
	wg.Wait()

	if n := c.Stats().Items; n > 50 {
		t.Errorf("Items = %d, exceeds MaxSize", n)
	}
}
