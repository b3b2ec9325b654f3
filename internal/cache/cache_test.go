package cache

import (
	"bytes"
	"testing"
	"time"
)

func TestKeyIsStableAndDistinct(t *testing.T) {
	a := Key("https://example.com/a")
	if a != Key("https://example.com/a") {
		t.Error("key not stable for the same URL")
	}
	if a == Key("https://example.com/b") {
		t.Error("distinct URLs share a key")
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)
	key := Key("https://example.com/page")

	if _, found := c.Get(key); found {
		t.Fatal("hit on empty cache")
	}
	if err := c.Set(key, []byte("<html>body</html>"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	val, found := c.Get(key)
	if !found || !bytes.Equal(val, []byte("<html>body</html>")) {
		t.Fatalf("get = %q, %v", val, found)
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("hit after delete")
	}
}

func TestDiskCacheExpiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)
	key := Key("https://example.com/stale")

	if err := c.Set(key, []byte("stale"), time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, found := c.Get(key); found {
		t.Error("expired entry served")
	}
}

func TestLayeredCachePromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Minute)
	key := Key("https://example.com/page")

	// Write through both layers, then drop the memory layer only.
	if err := c.Set(key, []byte("page"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.memory.Clear(); err != nil {
		t.Fatalf("clear memory: %v", err)
	}

	if _, found := c.Get(key); !found {
		t.Fatal("disk layer miss")
	}
	// The hit must now be served from memory again.
	if _, found := c.memory.Get(key); !found {
		t.Error("disk hit not promoted to memory")
	}
}
