package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestCacheMissThenPut(t *testing.T) {
	ctx := context.Background()
	c, err := OpenCache(filepath.Join(t.TempDir(), "nested", "cache.db"))
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer c.Close()

	if _, err := c.Get(ctx, "board"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get on empty cache error = %v, want ErrCacheMiss", err)
	}

	saved := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	if err := c.Put(ctx, Snapshot{Name: "board", Body: []byte(`{"a":1}`), SHA: "abc", SavedAt: saved, Pending: true}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Put(ctx, Snapshot{Name: "board", Body: []byte(`{"a":2}`), SHA: "abc", SavedAt: saved, Pending: true}); err != nil {
		t.Fatalf("second Put: %v", err)
	}

	got, err := c.Get(ctx, "board")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got.Body) != `{"a":2}` || got.SHA != "abc" || !got.Pending || !got.SavedAt.Equal(saved) {
		t.Errorf("snapshot = %+v", got)
	}

	if err := c.MarkSynced(ctx, "board", "def"); err != nil {
		t.Fatalf("MarkSynced: %v", err)
	}
	got, _ = c.Get(ctx, "board")
	if got.SHA != "def" || got.Pending {
		t.Errorf("after MarkSynced = %+v", got)
	}
}

func TestCacheUpgradesOldLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`CREATE TABLE snapshots (name TEXT PRIMARY KEY, body TEXT NOT NULL, saved_at TEXT NOT NULL);`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO snapshots (name, body, saved_at) VALUES ('board', '{}', '2025-03-10T00:00:00Z');`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	c, err := OpenCache(path)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer c.Close()
	got, err := c.Get(context.Background(), "board")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got.Body) != "{}" || got.SHA != "" || got.Pending {
		t.Errorf("snapshot = %+v", got)
	}
}

func TestSqliteDSN(t *testing.T) {
	if got := sqliteDSN("file:memdb?mode=memory"); got != "file:memdb?mode=memory" {
		t.Errorf("sqliteDSN kept = %q", got)
	}
	got := sqliteDSN("/tmp/x.db")
	want := "file:///tmp/x.db?_pragma=busy_timeout%285000%29&mode=rwc"
	if got != want {
		t.Errorf("sqliteDSN = %q, want %q", got, want)
	}
}
