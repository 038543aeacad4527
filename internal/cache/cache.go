// Package cache persists gallery snippets in SQLite so search and get keep
// working offline and repeated fetches stay cheap.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"temper/internal/logging"
	"temper/internal/snippet"
)

const schema = `
CREATE TABLE IF NOT EXISTS snippets (
	slug        TEXT PRIMARY KEY,
	language    TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	source      TEXT NOT NULL,
	params      TEXT NOT NULL DEFAULT '[]',
	fetched_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snippets_language ON snippets(language);
`

// Cache is a TTL-bounded SQLite cache of gallery snippets.
type Cache struct {
	db  *sql.DB
	mu  sync.Mutex
	ttl time.Duration
}

// Open initializes the cache database at path (":memory:" for tests).
func Open(path string, ttl time.Duration) (*Cache, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	// One writer; also keeps :memory: databases on a single connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache schema: %w", err)
	}
	logging.Cache("opened cache at %s (ttl %v)", path, ttl)
	return &Cache{db: db, ttl: ttl}, nil
}

// Close releases the database.
func (c *Cache) Close() error { return c.db.Close() }

// Put stores or refreshes one snippet.
func (c *Cache) Put(sn *snippet.Snippet) error {
	params, err := json.Marshal(sn.Params)
	if err != nil {
		return fmt.Errorf("encoding params: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err = c.db.Exec(`
		INSERT INTO snippets (slug, language, description, source, params, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			language = excluded.language,
			description = excluded.description,
			source = excluded.source,
			params = excluded.params,
			fetched_at = excluded.fetched_at`,
		sn.Slug, sn.Language, sn.Description, sn.Source, string(params), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("caching snippet %q: %w", sn.Slug, err)
	}
	logging.CacheDebug("cached snippet %q", sn.Slug)
	return nil
}

// Get returns a cached snippet when present and fresh.
func (c *Cache) Get(slug string) (*snippet.Snippet, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	row := c.db.QueryRow(`
		SELECT slug, language, description, source, params, fetched_at
		FROM snippets WHERE slug = ?`, slug)
	sn, fetchedAt, err := scanSnippet(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if c.expired(fetchedAt) {
		return nil, false, nil
	}
	return sn, true, nil
}

// Search matches fresh cached snippets by substring on slug and
// description. language may be empty to match all.
func (c *Cache) Search(query, language string) ([]*snippet.Snippet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pattern := "%" + query + "%"
	rows, err := c.db.Query(`
		SELECT slug, language, description, source, params, fetched_at
		FROM snippets
		WHERE (slug LIKE ? OR description LIKE ?)
		  AND (? = '' OR language = ?)
		ORDER BY slug`, pattern, pattern, language, language)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*snippet.Snippet
	for rows.Next() {
		sn, fetchedAt, err := scanSnippet(rows)
		if err != nil {
			return nil, err
		}
		if c.expired(fetchedAt) {
			continue
		}
		results = append(results, sn)
	}
	return results, rows.Err()
}

// Prune drops expired rows and returns how many were removed.
func (c *Cache) Prune() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-c.ttl).Unix()
	res, err := c.db.Exec(`DELETE FROM snippets WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		logging.Cache("pruned %d expired snippet(s)", n)
	}
	return n, nil
}

func (c *Cache) expired(fetchedAt int64) bool {
	return time.Since(time.Unix(fetchedAt, 0)) > c.ttl
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSnippet(row rowScanner) (*snippet.Snippet, int64, error) {
	var sn snippet.Snippet
	var params string
	var fetchedAt int64
	if err := row.Scan(&sn.Slug, &sn.Language, &sn.Description, &sn.Source, &params, &fetchedAt); err != nil {
		return nil, 0, err
	}
	if err := json.Unmarshal([]byte(params), &sn.Params); err != nil {
		return nil, 0, fmt.Errorf("decoding cached params for %q: %w", sn.Slug, err)
	}
	return &sn, fetchedAt, nil
}
