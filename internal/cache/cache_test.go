package cache

import (
	"errors"
	"testing"
	"time"
)

func TestCache_GetPut(t *testing.T) {
	c := New[string](4, 0)

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Put("a", "compiled-a")
	v, ok := c.Get("a")
	if !ok || v != "compiled-a" {
		t.Fatalf("expected hit with compiled-a, got %q %v", v, ok)
	}

	stats := c.Stats()
	if stats.Size != 1 || stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int](2, 0)
	c.Put("a", 1)
	time.Sleep(time.Millisecond)
	c.Put("b", 2)
	time.Sleep(time.Millisecond)

	// touch a so b becomes the oldest
	c.Get("a")
	time.Sleep(time.Millisecond)
	c.Put("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to survive")
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", c.Len())
	}
}

func TestCache_TTL(t *testing.T) {
	c := New[int](4, 10*time.Millisecond)
	c.Put("a", 1)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expected expired entry to miss")
	}

	c.Put("b", 2)
	time.Sleep(20 * time.Millisecond)
	c.Cleanup()
	if c.Len() != 0 {
		t.Errorf("expected cleanup to drop expired entries, got %d", c.Len())
	}
}

func TestCache_GetOrCompute(t *testing.T) {
	c := New[int](4, 0)
	calls := 0
	compute := func() (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrCompute("k", compute)
		if err != nil || v != 42 {
			t.Fatalf("unexpected result %d %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("expected compute once, got %d", calls)
	}

	boom := errors.New("boom")
	if _, err := c.GetOrCompute("bad", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Errorf("expected compute error, got %v", err)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("failed compute must not be cached")
	}
}
