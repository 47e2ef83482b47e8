package cache

import (
	"context"
	"testing"
	"time"
)

func TestDefaultKeyerDeterministic(t *testing.T) {
	k := NewDefaultKeyer()

	a := k.LayoutKey("digraph { a -> b }", "dot")
	b := k.LayoutKey("digraph { a -> b }", "dot")
	if a != b {
		t.Errorf("same inputs produced different keys: %q vs %q", a, b)
	}

	c := k.LayoutKey("digraph { a -> b }", "neato")
	if a == c {
		t.Error("different engines produced the same layout key")
	}

	d := k.LayoutKey("digraph { a -> c }", "dot")
	if a == d {
		t.Error("different descriptions produced the same layout key")
	}
}

func TestDefaultKeyerExportKey(t *testing.T) {
	k := NewDefaultKeyer()
	h := Hash([]byte("<svg/>"))

	a := k.ExportKey(h, "png", 2.0)
	b := k.ExportKey(h, "png", 1.0)
	if a == b {
		t.Error("different scales produced the same export key")
	}

	c := k.LayoutKey(h, "png")
	if a == c {
		t.Error("layout and export keys collided for identical components")
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	cache, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer cache.Close()

	ctx := context.Background()

	if err := cache.Set(ctx, "key1", []byte("payload"), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	data, found, err := cache.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatal("Get() found = false, want true")
	}
	if string(data) != "payload" {
		t.Errorf("Get() data = %q, want %q", data, "payload")
	}
}

func TestFileCacheMiss(t *testing.T) {
	cache, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer cache.Close()

	_, found, err := cache.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Get() found = true for absent key")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	cache, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer cache.Close()

	ctx := context.Background()
	if err := cache.Set(ctx, "key1", []byte("stale"), time.Nanosecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(time.Millisecond)

	_, found, err := cache.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Get() found = true for expired entry")
	}
}

func TestFileCacheZeroTTL(t *testing.T) {
	cache, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer cache.Close()

	ctx := context.Background()
	if err := cache.Set(ctx, "key1", []byte("kept"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	_, found, err := cache.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Error("Get() found = false for entry without expiry")
	}
}

func TestFileCacheDelete(t *testing.T) {
	cache, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer cache.Close()

	ctx := context.Background()
	if err := cache.Set(ctx, "key1", []byte("data"), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cache.Delete(ctx, "key1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, found, _ := cache.Get(ctx, "key1"); found {
		t.Error("Get() found = true after Delete()")
	}

	// Deleting an absent key should not error.
	if err := cache.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete() on absent key error = %v", err)
	}
}

func TestNullCache(t *testing.T) {
	cache := NewNullCache()
	ctx := context.Background()

	if err := cache.Set(ctx, "key1", []byte("data"), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	_, found, err := cache.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("NullCache returned a hit")
	}
	if err := cache.Delete(ctx, "key1"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
