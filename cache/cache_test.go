package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestTTLExpiry(t *testing.T) {
	now := time.Unix(1000, 0)
	c := NewTTL(60*time.Second, func() time.Time { return now })

	c.Set("admins", []int64{1, 2, 3})
	if m, ok := c.Get("admins"); !ok || len(m) != 3 {
		t.Fatalf("expected fresh entry, got %v %v", m, ok)
	}

	now = now.Add(59 * time.Second)
	if _, ok := c.Get("admins"); !ok {
		t.Fatal("entry expired before TTL")
	}

	now = now.Add(2 * time.Second)
	if _, ok := c.Get("admins"); ok {
		t.Fatal("entry survived past TTL")
	}
}

func TestTTLPurge(t *testing.T) {
	c := NewTTL(time.Minute, nil)
	c.Set("a", []int64{1})
	c.Set("b", []int64{2})
	c.Purge()
	if _, ok := c.Get("a"); ok {
		t.Fatal("entry survived purge")
	}
	if _, ok := c.Get("b"); ok {
		t.Fatal("entry survived purge")
	}
}

func TestTTLMiss(t *testing.T) {
	c := NewTTL(time.Minute, nil)
	if _, ok := c.Get("nope"); ok {
		t.Fatal("hit on empty cache")
	}
}

func TestLRUBasic(t *testing.T) {
	c := NewLRU(4)
	c.Set("1:100", true)
	c.Set("2:100", false)

	if held, ok := c.Get("1:100"); !ok || !held {
		t.Fatalf("got %v %v, want true hit", held, ok)
	}
	if held, ok := c.Get("2:100"); !ok || held {
		t.Fatalf("got %v %v, want false hit", held, ok)
	}
	if _, ok := c.Get("3:100"); ok {
		t.Fatal("unexpected hit")
	}
}

func TestLRUEviction(t *testing.T) {
	c := NewLRU(3)
	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), true)
	}

	// Touch k0 so k1 becomes the eviction victim.
	c.Get("k0")
	c.Set("k3", true)

	if _, ok := c.Get("k1"); ok {
		t.Fatal("least recently used entry survived eviction")
	}
	if _, ok := c.Get("k0"); !ok {
		t.Fatal("recently used entry was evicted")
	}
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
}

func TestLRUUpdateExisting(t *testing.T) {
	c := NewLRU(2)
	c.Set("k", false)
	c.Set("k", true)
	if held, ok := c.Get("k"); !ok || !held {
		t.Fatalf("got %v %v after update, want true hit", held, ok)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}

func TestLRUPurge(t *testing.T) {
	c := NewLRU(8)
	c.Set("a", true)
	c.Set("b", true)
	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("Len() = %d after purge, want 0", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("entry survived purge")
	}
}
