package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestKeyIsStableAndFilesystemSafe(t *testing.T) {
	a := Key("lookup:10.1000/abc.123:")
	b := Key("lookup:10.1000/abc.123:")
	if a != b {
		t.Errorf("Key is not stable: %q vs %q", a, b)
	}
	if a == Key("lookup:10.1000/other:") {
		t.Error("distinct subjects must produce distinct keys")
	}
	if filepath.Base(a) != a {
		t.Errorf("key %q contains path separators", a)
	}
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache reported a hit")
	}

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := c.Get("k")
	if !ok || string(got) != "v" {
		t.Errorf("Get = %q, %v", got, ok)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("value survived Delete")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	if err := c.Set("k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}

	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("value survived its TTL")
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := c.Get("k")
	if !ok || string(got) != "v" {
		t.Errorf("Get = %q, %v", got, ok)
	}

	// A second cache over the same directory sees the entry.
	again := NewDiskCache(dir, time.Minute)
	if _, ok := again.Get("k"); !ok {
		t.Error("entry not visible across instances")
	}
}

func TestDiskCacheExpiryRemovesFile(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)

	if err := c.Set("k", []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry reported a hit")
	}
	if _, err := os.Stat(filepath.Join(dir, "k.cache")); !os.IsNotExist(err) {
		t.Errorf("expired file not removed: %v", err)
	}
}

func TestDiskCacheClear(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)
	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("value survived Clear")
	}
}

func TestLayeredCachePromotesDiskHits(t *testing.T) {
	memory := NewMemoryCache(time.Minute, time.Minute)
	disk := NewDiskCache(t.TempDir(), time.Minute)

	if err := disk.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	layered := NewLayeredCache(memory, disk)
	got, ok := layered.Get("k")
	if !ok || string(got) != "v" {
		t.Fatalf("Get = %q, %v", got, ok)
	}

	// The hit is promoted so it survives losing the disk layer.
	if err := disk.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := memory.Get("k"); !ok {
		t.Error("disk hit was not promoted into memory")
	}
}

func TestLayeredCacheSetWritesBothLayers(t *testing.T) {
	memory := NewMemoryCache(time.Minute, time.Minute)
	disk := NewDiskCache(t.TempDir(), time.Minute)
	layered := NewLayeredCache(memory, disk)

	if err := layered.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok := memory.Get("k"); !ok {
		t.Error("value missing from memory layer")
	}
	if _, ok := disk.Get("k"); !ok {
		t.Error("value missing from disk layer")
	}
}
