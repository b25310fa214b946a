package cache

import (
	"context"
	"errors"
	"testing"
)

func TestGetOrLoadCaches(t *testing.T) {
	c, err := New[int](4)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	ctx := context.Background()
	calls := 0
	load := func(context.Context) (int, error) {
		calls++
		return 42, nil
	}
	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad(ctx, Key("pbs", "SCY"), load)
		if err != nil || v != 42 {
			t.Fatalf("unexpected load result: %d %v", v, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 load, got %d", calls)
	}
	hits, misses := c.Stats()
	if hits != 2 || misses != 1 {
		t.Fatalf("unexpected stats: hits=%d misses=%d", hits, misses)
	}
}

func TestGetOrLoadDoesNotCacheErrors(t *testing.T) {
	c, err := New[string](4)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	ctx := context.Background()
	calls := 0
	failing := func(context.Context) (string, error) {
		calls++
		return "", errors.New("boom")
	}
	_, _ = c.GetOrLoad(ctx, "k", failing)
	_, _ = c.GetOrLoad(ctx, "k", failing)
	if calls != 2 {
		t.Fatalf("expected errors to be retried, got %d calls", calls)
	}
}

func TestInvalidatePrefix(t *testing.T) {
	c, err := New[int](8)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	ctx := context.Background()
	one := func(context.Context) (int, error) { return 1, nil }
	_, _ = c.GetOrLoad(ctx, Key("results", "SCY"), one)
	_, _ = c.GetOrLoad(ctx, Key("results", "LCM"), one)
	_, _ = c.GetOrLoad(ctx, Key("standards", "SCY"), one)

	if n := c.Invalidate("results|"); n != 2 {
		t.Fatalf("expected 2 invalidated, got %d", n)
	}
	calls := 0
	_, _ = c.GetOrLoad(ctx, Key("standards", "SCY"), func(context.Context) (int, error) {
		calls++
		return 2, nil
	})
	if calls != 0 {
		t.Fatalf("expected standards entry to survive invalidation")
	}
}

func TestKey(t *testing.T) {
	if got := Key("results", "SCY", 100, true); got != "results|SCY|100|true" {
		t.Fatalf("unexpected key: %q", got)
	}
}

func TestInvalidateDuringLoadDropsStaleValue(t *testing.T) {
	c, err := New[int](4)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	ctx := context.Background()
	key := Key("results", "SCY")
	stale := func(context.Context) (int, error) {
		c.Invalidate("results|")
		return 1, nil
	}
	if v, err := c.GetOrLoad(ctx, key, stale); err != nil || v != 1 {
		t.Fatalf("unexpected load result: %d %v", v, err)
	}
	calls := 0
	v, err := c.GetOrLoad(ctx, key, func(context.Context) (int, error) {
		calls++
		return 2, nil
	})
	if err != nil || v != 2 || calls != 1 {
		t.Fatalf("expected a fresh load after invalidation, got %d (calls=%d, err=%v)", v, calls, err)
	}

	purged := func(context.Context) (int, error) {
		c.Purge()
		return 3, nil
	}
	_, _ = c.GetOrLoad(ctx, Key("pbs"), purged)
	calls = 0
	_, _ = c.GetOrLoad(ctx, Key("pbs"), func(context.Context) (int, error) {
		calls++
		return 4, nil
	})
	if calls != 1 {
		t.Fatalf("expected load after purge during load, got %d calls", calls)
	}
}
