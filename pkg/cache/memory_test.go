package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/pythonsolar/harumiki-farm-v2/pkg/config"
)

func newTestCache(now *time.Time) *MemoryCache {
	c := NewMemoryCache()
	c.now = func() time.Time { return *now }
	return c
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	now := time.Now()
	c := newTestCache(&now)

	c.Set("k1", []byte(`{"status":"success"}`), Current)
	got, ok := c.Get("k1")
	if !ok {
		t.Fatal("Expected hit after Set")
	}
	if string(got) != `{"status":"success"}` {
		t.Errorf("Payload mismatch: %s", got)
	}

	if _, ok := c.Get("absent"); ok {
		t.Error("Expected miss for unknown key")
	}
}

func TestMemoryCache_TTLClasses(t *testing.T) {
	now := time.Now()
	c := newTestCache(&now)

	c.Set("current", []byte("a"), Current)
	c.Set("historical", []byte("b"), Historical)

	// Past the current-class TTL but inside the historical one.
	now = now.Add(config.CacheTTLCurrent + time.Second)
	if _, ok := c.Get("current"); ok {
		t.Error("Expected current-class entry to expire")
	}
	if _, ok := c.Get("historical"); !ok {
		t.Error("Expected historical-class entry to survive")
	}

	now = now.Add(config.CacheTTLHistorical)
	if _, ok := c.Get("historical"); ok {
		t.Error("Expected historical-class entry to expire eventually")
	}
}

func TestMemoryCache_EvictsOldestAtCapacity(t *testing.T) {
	now := time.Now()
	c := newTestCache(&now)
	c.maxEntries = 3

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), []byte("v"), Historical)
		now = now.Add(time.Second)
	}
	c.Set("k3", []byte("v"), Historical)

	if _, ok := c.Get("k0"); ok {
		t.Error("Expected oldest entry k0 to be evicted")
	}
	for _, key := range []string{"k1", "k2", "k3"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("Expected %s to survive eviction", key)
		}
	}
	if got := c.Stats().Entries; got != 3 {
		t.Errorf("Expected 3 entries after eviction, got %d", got)
	}
}

func TestMemoryCache_OverwriteDoesNotEvict(t *testing.T) {
	now := time.Now()
	c := newTestCache(&now)
	c.maxEntries = 2

	c.Set("a", []byte("1"), Historical)
	c.Set("b", []byte("2"), Historical)
	c.Set("a", []byte("3"), Historical)

	got, ok := c.Get("a")
	if !ok || string(got) != "3" {
		t.Errorf("Expected overwritten value, got %s ok=%v", got, ok)
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("Expected b to survive an overwrite of a")
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	now := time.Now()
	c := newTestCache(&now)

	c.Set("k", []byte("v"), Current)
	c.Get("k")
	c.Get("k")
	c.Get("nope")

	stats := c.Stats()
	if stats.Hits != 2 || stats.Misses != 1 || stats.Entries != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestKey_Deterministic(t *testing.T) {
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)

	k1 := Key("co2", "CO2_R1.val,CO2_R2.val", start, end)
	k2 := Key("co2", "CO2_R1.val,CO2_R2.val", start, end)
	if k1 != k2 {
		t.Error("Expected identical keys for identical inputs")
	}
	if len(k1) != 16 {
		t.Errorf("Expected 16-char hex key, got %q", k1)
	}

	if Key("pm", "CO2_R1.val,CO2_R2.val", start, end) == k1 {
		t.Error("Expected metric to influence the key")
	}
	if Key("co2", "CO2_R1.val", start, end) == k1 {
		t.Error("Expected sensor set to influence the key")
	}
	if Key("co2", "CO2_R1.val,CO2_R2.val", start, end.Add(time.Hour)) == k1 {
		t.Error("Expected window to influence the key")
	}
}
