// Package persistence caches symbol provider responses between runs.
package persistence

import (
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lexcodex/protosync/prototype"
)

// SymbolCache stores raw provider symbols per file path, keyed by a hash of
// the file content. Watch mode consults it so an unchanged file never costs
// a provider round trip.
type SymbolCache struct {
	db *sql.DB
}

// NewSymbolCache opens/creates the database at dbPath.
func NewSymbolCache(dbPath string) (*SymbolCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	cache := &SymbolCache{db: db}
	if err := cache.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return cache, nil
}

func (c *SymbolCache) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS symbols (
		path TEXT PRIMARY KEY,
		content_hash TEXT NOT NULL,
		payload TEXT NOT NULL,
		cached_at TIMESTAMP
	);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (c *SymbolCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// ContentHash is the cache key for a document snapshot.
func ContentHash(text string) string {
	sum := sha1.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached symbols for path when the stored content hash still
// matches, with ok=false on a miss or stale row.
func (c *SymbolCache) Get(path, hash string) ([]prototype.RawSymbol, bool, error) {
	row := c.db.QueryRow(`SELECT content_hash, payload FROM symbols WHERE path = ?`, path)
	var storedHash, payload string
	if err := row.Scan(&storedHash, &payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	if storedHash != hash {
		return nil, false, nil
	}
	var symbols []prototype.RawSymbol
	if err := json.Unmarshal([]byte(payload), &symbols); err != nil {
		return nil, false, err
	}
	return symbols, true, nil
}

// Put upserts the symbols for path under the given content hash.
func (c *SymbolCache) Put(path, hash string, symbols []prototype.RawSymbol) error {
	payload, err := json.Marshal(symbols)
	if err != nil {
		return err
	}
	_, err = c.db.Exec(`
	INSERT INTO symbols (path, content_hash, payload, cached_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(path) DO UPDATE SET
		content_hash=excluded.content_hash,
		payload=excluded.payload,
		cached_at=excluded.cached_at
	`, path, hash, string(payload), time.Now().UTC())
	return err
}
