// Package storage persists the board document: a SQLite cache on disk and an
// optional remote copy kept in a repository through the contents API.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

var ErrCacheMiss = errors.New("no cached snapshot")

// Snapshot is one stored copy of the encoded document.
type Snapshot struct {
	Name    string
	Body    []byte
	SHA     string
	SavedAt time.Time
	// Pending is set while the snapshot has not reached the remote.
	Pending bool
}

// Cache keeps the last saved document per name in SQLite.
type Cache struct {
	db *sql.DB
}

func OpenCache(dbPath string) (*Cache, error) {
	if dbPath == "" {
		return nil, errors.New("cache path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	db.SetMaxOpenConns(1)

	c := &Cache{db: db}
	if err := c.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare cache: %w", err)
	}
	return c, nil
}

func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Cache) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS snapshots (
	name TEXT PRIMARY KEY,
	body TEXT NOT NULL,
	saved_at TEXT NOT NULL
);`
	if _, err := c.db.Exec(ddl); err != nil {
		return err
	}
	return c.ensureSnapshotColumns()
}

// ensureSnapshotColumns adds columns introduced after the first cache layout.
func (c *Cache) ensureSnapshotColumns() error {
	required := map[string]string{
		"sha":     "ALTER TABLE snapshots ADD COLUMN sha TEXT NOT NULL DEFAULT '';",
		"pending": "ALTER TABLE snapshots ADD COLUMN pending INTEGER NOT NULL DEFAULT 0;",
	}
	existing := map[string]struct{}{}
	rows, err := c.db.Query(`PRAGMA table_info(snapshots);`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			rows.Close()
			return err
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()
	for col, alter := range required {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, err := c.db.Exec(alter); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cache) Get(ctx context.Context, name string) (Snapshot, error) {
	row := c.db.QueryRowContext(ctx, `SELECT body, sha, saved_at, pending FROM snapshots WHERE name = ?;`, name)
	var (
		body     string
		savedStr string
		pending  int
	)
	s := Snapshot{Name: name}
	if err := row.Scan(&body, &s.SHA, &savedStr, &pending); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, ErrCacheMiss
		}
		return Snapshot{}, fmt.Errorf("failed to read snapshot %s: %w", name, err)
	}
	s.Body = []byte(body)
	s.Pending = pending == 1
	if saved, err := time.Parse(time.RFC3339Nano, savedStr); err == nil {
		s.SavedAt = saved
	}
	return s, nil
}

// Put replaces the snapshot stored under s.Name.
func (c *Cache) Put(ctx context.Context, s Snapshot) error {
	if s.SavedAt.IsZero() {
		s.SavedAt = time.Now()
	}
	pending := 0
	if s.Pending {
		pending = 1
	}
	_, err := c.db.ExecContext(ctx, `
INSERT INTO snapshots (name, body, sha, saved_at, pending) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET body = excluded.body, sha = excluded.sha, saved_at = excluded.saved_at, pending = excluded.pending;`,
		s.Name, string(s.Body), s.SHA, s.SavedAt.UTC().Format(time.RFC3339Nano), pending)
	if err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", s.Name, err)
	}
	return nil
}

// MarkSynced records the remote revision of the cached snapshot.
func (c *Cache) MarkSynced(ctx context.Context, name, sha string) error {
	_, err := c.db.ExecContext(ctx, `UPDATE snapshots SET sha = ?, pending = 0 WHERE name = ?;`, sha, name)
	if err != nil {
		return fmt.Errorf("failed to mark snapshot %s synced: %w", name, err)
	}
	return nil
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
