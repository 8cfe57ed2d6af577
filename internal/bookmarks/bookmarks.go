// Package bookmarks persists the access grants for storage roots the user
// attached, so they are re-registered on the next launch.
package bookmarks

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS bookmarks (
	path       TEXT PRIMARY KEY,
	created_at TIMESTAMP NOT NULL
)`

// Store keeps granted root paths in memory and flushes them to SQLite on Save.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	pending map[string]time.Time
	urls    map[string]time.Time
}

// Open opens (creating if needed) the bookmark database at path
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open bookmark database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot create bookmark schema: %w", err)
	}

	return &Store{
		db:      db,
		pending: make(map[string]time.Time),
		urls:    make(map[string]time.Time),
	}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load reads every persisted grant into memory.
func (s *Store) Load() error {
	rows, err := s.db.Query(`SELECT path, created_at FROM bookmarks`)
	if err != nil {
		return fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer rows.Close()

	loaded := make(map[string]time.Time)
	for rows.Next() {
		var (
			path    string
			created time.Time
		)
		if err := rows.Scan(&path, &created); err != nil {
			return fmt.Errorf("failed to scan bookmark: %w", err)
		}
		loaded[path] = created
	}
	if err := rows.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for path, created := range loaded {
		s.urls[path] = created
	}
	return nil
}

// Store records a grant for url. It is written by the next Save.
func (s *Store) Store(url string) {
	url = filepath.Clean(url)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.urls[url]; ok {
		return
	}
	now := time.Now().UTC()
	s.urls[url] = now
	s.pending[url] = now
}

// Save flushes grants recorded since the last Save.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO bookmarks (path, created_at) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for path, created := range s.pending {
		if _, err := stmt.Exec(path, created); err != nil {
			return fmt.Errorf("failed to save bookmark %s: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.pending = make(map[string]time.Time)
	return nil
}

// RemoveBy revokes the grant for url immediately.
func (s *Store) RemoveBy(url string) error {
	url = filepath.Clean(url)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM bookmarks WHERE path = ?`, url); err != nil {
		return fmt.Errorf("failed to remove bookmark %s: %w", url, err)
	}
	delete(s.urls, url)
	delete(s.pending, url)
	return nil
}

// URLs returns the granted paths in the order they were granted.
func (s *Store) URLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	urls := make([]string, 0, len(s.urls))
	for url := range s.urls {
		urls = append(urls, url)
	}
	sort.Slice(urls, func(i, j int) bool {
		a, b := s.urls[urls[i]], s.urls[urls[j]]
		if a.Equal(b) {
			return urls[i] < urls[j]
		}
		return a.Before(b)
	})
	return urls
}

// Has reports whether url has a grant.
func (s *Store) Has(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.urls[filepath.Clean(url)]
	return ok
}
