package services

import (
	"testing"
	"time"
)

func TestListCache_SetGet(t *testing.T) {
	c := NewListCache(time.Minute)

	if _, ok := c.Get("owner"); ok {
		t.Fatalf("expected empty cache miss")
	}

	views := []*EntryView{{ID: "e1", Service: "GitHub"}}
	c.Set("owner", views)

	got, ok := c.Get("owner")
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if len(got) != 1 || got[0].ID != "e1" {
		t.Fatalf("unexpected cached value: %+v", got)
	}
}

func TestListCache_Invalidate(t *testing.T) {
	c := NewListCache(time.Minute)
	c.Set("owner", []*EntryView{{ID: "e1"}})

	c.Invalidate("owner")

	if _, ok := c.Get("owner"); ok {
		t.Fatalf("expected miss after invalidate")
	}
}

func TestListCache_Expires(t *testing.T) {
	c := NewListCache(10 * time.Millisecond)
	c.Set("owner", []*EntryView{{ID: "e1"}})

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("owner"); ok {
		t.Fatalf("expected miss after TTL")
	}
}

func TestListCache_PerOwnerIsolation(t *testing.T) {
	c := NewListCache(time.Minute)
	c.Set("a", []*EntryView{{ID: "ea"}})
	c.Set("b", []*EntryView{{ID: "eb"}})

	c.Invalidate("a")

	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected owner a to be invalidated")
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatalf("expected owner b to be untouched")
	}
}
