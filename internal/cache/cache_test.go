package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestCache(t *testing.T) {
	t.Run("Round Trip", func(t *testing.T) {
		c := New(0)

		c.Set("k", "v", time.Minute)

		got, ok := c.Get("k")
		if !ok {
			t.Fatal("expected hit immediately after Set")
		}
		if got != "v" {
			t.Errorf("expected v, got %v", got)
		}
	})

	t.Run("Miss For Unknown Key", func(t *testing.T) {
		c := New(0)

		if _, ok := c.Get("absent"); ok {
			t.Error("expected miss for unknown key")
		}
	})

	t.Run("Expiry", func(t *testing.T) {
		c := New(0)
		now := time.Now()
		c.now = func() time.Time { return now }

		c.Set("k", "v", 10*time.Second)

		now = now.Add(9 * time.Second)
		if _, ok := c.Get("k"); !ok {
			t.Error("expected hit before TTL elapsed")
		}

		now = now.Add(2 * time.Second)
		if _, ok := c.Get("k"); ok {
			t.Error("expected miss after TTL elapsed")
		}
	})

	t.Run("Set Replaces Entry", func(t *testing.T) {
		c := New(0)

		c.Set("k", "old", time.Minute)
		c.Set("k", "new", time.Minute)

		if got, _ := c.Get("k"); got != "new" {
			t.Errorf("expected new, got %v", got)
		}
	})

	t.Run("Zero TTL Stores Nothing", func(t *testing.T) {
		c := New(0)

		c.Set("k", "v", 0)

		if _, ok := c.Get("k"); ok {
			t.Error("expected miss for zero TTL entry")
		}
	})

	t.Run("Clear", func(t *testing.T) {
		c := New(0)

		c.Set("a", 1, time.Minute)
		c.Set("b", 2, time.Minute)
		c.Clear()

		if c.Len() != 0 {
			t.Errorf("expected empty cache after Clear, got %d entries", c.Len())
		}
	})

	t.Run("Len Prunes Expired", func(t *testing.T) {
		c := New(0)
		now := time.Now()
		c.now = func() time.Time { return now }

		c.Set("a", 1, time.Second)
		c.Set("b", 2, time.Minute)

		now = now.Add(2 * time.Second)
		if c.Len() != 1 {
			t.Errorf("expected 1 live entry, got %d", c.Len())
		}
	})

	t.Run("Bounded Eviction", func(t *testing.T) {
		c := New(2)

		c.Set("a", 1, time.Minute)
		c.Set("b", 2, time.Minute)
		c.Set("c", 3, time.Minute)

		if c.Len() > 2 {
			t.Errorf("expected at most 2 entries, got %d", c.Len())
		}
		if _, ok := c.Get("c"); !ok {
			t.Error("most recent entry should survive eviction")
		}
	})

	t.Run("Concurrent Access", func(t *testing.T) {
		c := New(0)
		var wg sync.WaitGroup

		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					key := fmt.Sprintf("k%d", j%10)
					c.Set(key, n, time.Minute)
					c.Get(key)
				}
			}(i)
		}

		wg.Wait()
	})
}

func TestKey(t *testing.T) {
	t.Run("Order Independence", func(t *testing.T) {
		a := Key("lastfm:", map[string]string{"b": "2", "a": "1"})
		b := Key("lastfm:", map[string]string{"a": "1", "b": "2"})

		if a != b {
			t.Errorf("keys differ: %q vs %q", a, b)
		}
	})

	t.Run("Canonical Form", func(t *testing.T) {
		got := Key("mb:recording:", map[string]string{"limit": "3", "query": "x"})
		want := "mb:recording:limit=3&query=x"

		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("Namespace Separation", func(t *testing.T) {
		params := map[string]string{"term": "bad guy"}
		if Key("itunes:", params) == Key("lastfm:", params) {
			t.Error("different namespaces must produce different keys")
		}
	})

	t.Run("Empty Params", func(t *testing.T) {
		if got := Key("itunes:", nil); got != "itunes:" {
			t.Errorf("expected bare namespace, got %q", got)
		}
	})
}
