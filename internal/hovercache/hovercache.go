// Package hovercache implements the Hover Cache (C8): a two-tier
// persistent LRU of (uri, line, col, content-hash) -> hover text. L1 is an
// in-process ristretto cache (grounded on
// Strob0t-CodeForge's internal/adapter/ristretto/cache.go); L2 is a
// modernc.org/sqlite table giving the cache process-lifetime durability
// across daemon restarts (grounded on
// mehmetkoksal-w-mind-palace's apps/cli/internal/index/index.go schema and
// migration pattern).
package hovercache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	_ "modernc.org/sqlite"

	"github.com/dshills/leta/internal/lspproto"
)

// Key is §3's CacheKey (Hover): (uri, line, column, content-hash).
type Key struct {
	URI         lspproto.DocumentURI
	Line        int
	Column      int
	ContentHash string
}

func (k Key) string() string {
	return fmt.Sprintf("%s|%d|%d|%s", k.URI, k.Line, k.Column, k.ContentHash)
}

// Cache is the two-tier hover cache.
type Cache struct {
	l1 *ristretto.Cache[string, string]
	db *sql.DB
}

// Open creates/opens the L2 sqlite database at dbPath and an L1 ristretto
// cache bounded by maxCostBytes.
func Open(dbPath string, maxCostBytes int64) (*Cache, error) {
	l1, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: maxCostBytes / 100 * 10,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("hovercache: new L1 cache: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("hovercache: open %s: %w", dbPath, err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("hovercache: pragma: %w", err)
	}
	if _, err := db.Exec(`PRAGMA synchronous=NORMAL`); err != nil {
		return nil, fmt.Errorf("hovercache: pragma: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}

	return &Cache{l1: l1, db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS hover (
			path TEXT NOT NULL,
			line INTEGER NOT NULL,
			col INTEGER NOT NULL,
			hash TEXT NOT NULL,
			value BLOB NOT NULL,
			accessed_at INTEGER NOT NULL,
			PRIMARY KEY (path, line, col, hash)
		)
	`)
	return err
}

// Close releases the L2 database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns a cached hover string for key if present. A hit is only
// ever returned if key's content-hash matches what the caller already
// verified against the on-disk hash, satisfying §8 invariant 3 ("eventually
// consistent with no explicit invalidation step" — staleness is prevented
// by construction: a stale hash simply never string-matches a key here).
func (c *Cache) Get(ctx context.Context, key Key) (string, bool) {
	k := key.string()
	if v, ok := c.l1.Get(k); ok {
		return v, true
	}

	var value []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM hover WHERE path = ? AND line = ? AND col = ? AND hash = ?`,
		string(key.URI), key.Line, key.Column, key.ContentHash,
	).Scan(&value)
	if err != nil {
		return "", false
	}
	c.l1.Set(k, string(value), int64(len(value)))
	c.l1.Wait()
	return string(value), true
}

// Set stores a hover string in both tiers.
func (c *Cache) Set(ctx context.Context, key Key, value string) error {
	k := key.string()
	c.l1.Set(k, value, int64(len(value)))
	c.l1.Wait()

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO hover (path, line, col, hash, value, accessed_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path, line, col, hash) DO UPDATE SET value = excluded.value, accessed_at = excluded.accessed_at`,
		string(key.URI), key.Line, key.Column, key.ContentHash, []byte(value), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("hovercache: set: %w", err)
	}
	return nil
}

// Sweep evicts L2 rows beyond maxRows, oldest accessed_at first. The
// daemon does not call it, so L2 is not bounded during normal operation.
func (c *Cache) Sweep(ctx context.Context, maxRows int64) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM hover WHERE rowid IN (
			SELECT rowid FROM hover ORDER BY accessed_at DESC
			LIMIT -1 OFFSET ?
		)
	`, maxRows)
	return err
}
