package hovercache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/ristretto/v2"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "hover.db"), 1<<20)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestGetMissOnEmptyCache(t *testing.T) {
	c := openTestCache(t)
	if _, ok := c.Get(context.Background(), Key{URI: "file:///a.go", Line: 1, Column: 2, ContentHash: "h1"}); ok {
		t.Error("expected a miss on an empty cache")
	}
}

func TestSetThenGetHitsL1(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()
	key := Key{URI: "file:///a.go", Line: 1, Column: 2, ContentHash: "h1"}

	if err := c.Set(ctx, key, "hover text"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := c.Get(ctx, key)
	if !ok || got != "hover text" {
		t.Errorf("Get = (%q, %v), want (\"hover text\", true)", got, ok)
	}
}

func TestGetFallsThroughToL2AfterL1Eviction(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()
	key := Key{URI: "file:///a.go", Line: 1, Column: 2, ContentHash: "h1"}

	if err := c.Set(ctx, key, "hover text"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	// Simulate L1 eviction by swapping in a fresh, empty L1 cache so Get
	// must fall through to the L2 sqlite table.
	freshL1, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: 1000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		t.Fatalf("new fresh L1: %v", err)
	}
	c.l1 = freshL1
	got, ok := c.Get(ctx, key)
	if !ok || got != "hover text" {
		t.Errorf("expected L2 fallback to hit, got (%q, %v)", got, ok)
	}
}

func TestDifferentContentHashMisses(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()
	key := Key{URI: "file:///a.go", Line: 1, Column: 2, ContentHash: "h1"}
	if err := c.Set(ctx, key, "hover text"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	staleKey := key
	staleKey.ContentHash = "h2"
	if _, ok := c.Get(ctx, staleKey); ok {
		t.Error("expected a changed content hash to miss, not return stale hover text")
	}
}

func TestSetOverwritesExistingKey(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()
	key := Key{URI: "file:///a.go", Line: 1, Column: 2, ContentHash: "h1"}

	if err := c.Set(ctx, key, "v1"); err != nil {
		t.Fatalf("Set v1: %v", err)
	}
	if err := c.Set(ctx, key, "v2"); err != nil {
		t.Fatalf("Set v2: %v", err)
	}
	got, ok := c.Get(ctx, key)
	if !ok || got != "v2" {
		t.Errorf("Get = (%q, %v), want (\"v2\", true)", got, ok)
	}
}

func TestSweepKeepsOnlyMaxRows(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		key := Key{URI: "file:///a.go", Line: i, Column: 0, ContentHash: "h"}
		if err := c.Set(ctx, key, "v"); err != nil {
			t.Fatalf("Set %d: %v", i, err)
		}
	}
	if err := c.Sweep(ctx, 2); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	var count int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM hover`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 rows to survive Sweep(2), got %d", count)
	}
}
