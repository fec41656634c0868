package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func countJSON(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	n := 0
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			n++
		}
	}
	return n
}

func TestCache_PutGet(t *testing.T) {
	dir := t.TempDir()
	c, err := New(true, dir, 86400)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	key := ImageKey("http://ocr:8080", []byte("png bytes"))
	value := []byte(`{"width":10,"height":10,"lines":[]}`)

	if _, ok := c.Get(key); ok {
		t.Error("Expected cache miss before put")
	}
	if err := c.Put(key, value); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	got, ok := c.Get(key)
	if !ok {
		t.Fatal("Expected cache hit after put")
	}
	if string(got) != string(value) {
		t.Errorf("Got = %s, want %s", got, value)
	}
}

func TestCache_PutRejectsInvalidJSON(t *testing.T) {
	c, err := New(true, t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Put("k", []byte("{not json")); err == nil {
		t.Error("expected error for invalid payload")
	}
}

func TestCache_TTLExpiration(t *testing.T) {
	dir := t.TempDir()
	c, err := New(true, dir, 60)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	now := time.Now()
	c.now = func() time.Time { return now }

	if err := c.Put("expire-test", []byte(`"data"`)); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if _, ok := c.Get("expire-test"); !ok {
		t.Error("Expected cache hit before expiration")
	}

	now = now.Add(61 * time.Second)
	stats, err := c.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Expired != 1 {
		t.Errorf("Expired = %d, want 1", stats.Expired)
	}
	if _, ok := c.Get("expire-test"); ok {
		t.Error("Expected cache miss after TTL expiration")
	}
	if n := countJSON(t, dir); n != 0 {
		t.Errorf("expired entry not removed, %d files remain", n)
	}
}

func TestCache_Disabled(t *testing.T) {
	c, err := New(false, "", 0)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if c.Enabled() {
		t.Error("Cache should be disabled")
	}
	if err := c.Put("key", []byte(`"value"`)); err != nil {
		t.Errorf("Put on disabled cache should not error: %v", err)
	}
	if _, ok := c.Get("key"); ok {
		t.Error("Get on disabled cache should always miss")
	}
	if n, err := c.Clear(); err != nil || n != 0 {
		t.Errorf("Clear on disabled cache = %d, %v", n, err)
	}
}

func TestCache_Clear(t *testing.T) {
	dir := t.TempDir()
	c, err := New(true, dir, 86400)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	for i := 0; i < 5; i++ {
		key := string(rune('a' + i))
		if err := c.Put(key, []byte(`{}`)); err != nil {
			t.Fatalf("Put error: %v", err)
		}
	}
	if n := countJSON(t, dir); n != 5 {
		t.Fatalf("Expected 5 cache entries, got %d", n)
	}

	removed, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if removed != 5 {
		t.Errorf("removed = %d, want 5", removed)
	}
	if n := countJSON(t, dir); n != 0 {
		t.Errorf("Expected 0 cache entries after clear, got %d", n)
	}
}

func TestCache_GetStats(t *testing.T) {
	dir := t.TempDir()
	c, err := New(true, dir, 86400)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	stats, err := c.GetStats()
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if stats.Entries != 0 {
		t.Errorf("Entries = %d, want 0", stats.Entries)
	}

	c.Put("key1", []byte(`[1]`))
	c.Put("key2", []byte(`[2]`))

	stats, err = c.GetStats()
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if stats.Entries != 2 {
		t.Errorf("Entries = %d, want 2", stats.Entries)
	}
	if stats.TotalBytes <= 0 {
		t.Error("TotalBytes should be > 0")
	}
	if stats.Dir != dir || !stats.Enabled {
		t.Errorf("stats = %+v", stats)
	}
}

func TestImageKey(t *testing.T) {
	k1 := ImageKey("http://a", []byte("img"))
	k2 := ImageKey("http://a", []byte("img"))
	k3 := ImageKey("http://b", []byte("img"))
	k4 := ImageKey("http://a", []byte("other"))

	if k1 != k2 {
		t.Error("Same inputs should produce same cache key")
	}
	if k1 == k3 || k1 == k4 {
		t.Error("Different engine or image should produce different cache key")
	}
	if len(k1) != 64 {
		t.Errorf("key length = %d, want 64", len(k1))
	}
}

func TestDefaultDir_XDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	dir, err := DefaultDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg-cache", "scrub") {
		t.Errorf("DefaultDir = %q", dir)
	}
}
