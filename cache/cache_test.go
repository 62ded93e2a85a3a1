package cache

import (
	"testing"

	"github.com/objectgrid/osd"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache[string, int](2, 4)
	c.Set([]osd.KeyValuePair[string, int]{{Key: "a", Value: 1}, {Key: "b", Value: 2}})

	got := c.Get([]string{"a", "b", "missing"})
	if got[0] != 1 || got[1] != 2 || got[2] != 0 {
		t.Fatalf("unexpected Get result: %v", got)
	}
	if c.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", c.Count())
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache[string, int](2, 4)
	c.Set([]osd.KeyValuePair[string, int]{{Key: "a", Value: 1}})
	c.Set([]osd.KeyValuePair[string, int]{{Key: "b", Value: 2}})
	c.Set([]osd.KeyValuePair[string, int]{{Key: "c", Value: 3}})

	// Touch "a" so "b" becomes the least-recently-used entry.
	c.Get([]string{"a"})

	c.Set([]osd.KeyValuePair[string, int]{{Key: "d", Value: 4}})

	got := c.Get([]string{"a", "b", "c", "d"})
	if got[0] != 1 {
		t.Fatalf("recently-touched key %q was evicted", "a")
	}
	if got[1] != 0 {
		t.Fatalf("expected least-recently-used key %q to be evicted, got %v", "b", got[1])
	}
	if got[3] != 4 {
		t.Fatalf("newly inserted key %q missing", "d")
	}
}

func TestCacheDelete(t *testing.T) {
	c := NewCache[string, int](2, 4)
	c.Set([]osd.KeyValuePair[string, int]{{Key: "a", Value: 1}})
	c.Delete([]string{"a"})

	got := c.Get([]string{"a"})
	if got[0] != 0 {
		t.Fatalf("expected zero value after delete, got %v", got[0])
	}
	if c.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", c.Count())
	}
}
