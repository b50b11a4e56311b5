package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"planboard/internal/document"
	"planboard/internal/logging"
)

// RemoteStore is the remote half of the gateway. *Remote implements it.
type RemoteStore interface {
	Fetch(ctx context.Context) ([]byte, string, error)
	Store(ctx context.Context, body []byte, sha string, at time.Time) (string, error)
}

// Source says where Load found the document.
type Source string

const (
	SourceRemote      Source = "remote"
	SourceInitialized Source = "initialized"
	// SourcePushed is a cached document that the remote did not have yet and
	// now does.
	SourcePushed  Source = "pushed"
	SourceCache   Source = "cache"
	SourceDefault Source = "default"
)

type SaveStatus int

const (
	// StatusSynced means both the cache and the remote hold the document.
	StatusSynced SaveStatus = iota
	// StatusSavedLocally means the remote write failed; the cache is current.
	StatusSavedLocally
	// StatusLocalOnly means no remote is configured.
	StatusLocalOnly
	// StatusSuperseded means a newer document was already saved.
	StatusSuperseded
)

func (s SaveStatus) Notice() string {
	switch s {
	case StatusSavedLocally:
		return "Changes saved locally. Will sync when online."
	case StatusLocalOnly:
		return "Saved locally"
	default:
		return ""
	}
}

const snapshotName = "board"

// Gateway loads and saves the whole document. The local cache is written
// before every remote attempt, and remote failures never reach the caller.
type Gateway struct {
	cache  *Cache
	remote RemoteStore
	now    func() time.Time

	mu    sync.Mutex
	sha   string
	saved time.Time
}

// NewGateway builds a gateway. cache and remote may each be nil.
func NewGateway(cache *Cache, remote RemoteStore) *Gateway {
	return &Gateway{cache: cache, remote: remote, now: time.Now}
}

// Load returns the stored document, migrated to the current schema. It
// prefers the remote copy, initializes the remote when the file does not
// exist yet, and otherwise falls back to the cache and then to an empty
// board. Load never fails.
func (g *Gateway) Load(ctx context.Context) (*document.Document, Source) {
	if g.remote != nil {
		doc, src, err := g.loadRemote(ctx)
		if err == nil {
			return doc, src
		}
		logging.Info("storage", "Failed to load remote document: %v", err)
	}

	if doc, ok := g.loadCache(ctx); ok {
		logging.Info("storage", "Loaded document from local cache")
		return doc, SourceCache
	}
	logging.Info("storage", "No stored document, starting empty")
	return document.New(g.now()), SourceDefault
}

func (g *Gateway) loadRemote(ctx context.Context) (*document.Document, Source, error) {
	body, sha, err := g.remote.Fetch(ctx)
	if errors.Is(err, ErrNotFound) {
		if local, ok := g.loadCache(ctx); ok {
			logging.Info("storage", "Remote document missing, restoring it from the local cache")
			// The file is gone, so there is no revision to update.
			g.mu.Lock()
			g.sha = ""
			g.mu.Unlock()
			return local, g.push(ctx, local), nil
		}
		logging.Info("storage", "Remote document missing, creating it")
		doc := document.New(g.now())
		if _, err := g.Save(ctx, doc); err != nil {
			logging.Info("storage", "Failed to save new document: %v", err)
		}
		return doc, SourceInitialized, nil
	}
	if err != nil {
		return nil, "", err
	}
	doc, applied, err := document.Decode(body)
	if err != nil {
		return nil, "", err
	}
	logMigrations(applied)

	g.mu.Lock()
	g.sha = sha
	g.mu.Unlock()

	// Changes that never reached the remote win when they are newer.
	if local, ok := g.pendingNewerThan(ctx, doc); ok {
		logging.Info("storage", "Pushing unsynced local changes from %s", local.LastUpdated.Format(time.RFC3339))
		return local, g.push(ctx, local), nil
	}

	if g.cache != nil {
		err := g.cache.Put(ctx, Snapshot{Name: snapshotName, Body: body, SHA: sha, SavedAt: g.now()})
		if err != nil {
			logging.Info("storage", "Failed to refresh cache: %v", err)
		}
	}
	return doc, SourceRemote, nil
}

// push saves a document that came from the cache. It reports SourcePushed
// once the remote holds it and SourceCache while it is still local only.
func (g *Gateway) push(ctx context.Context, doc *document.Document) Source {
	status, err := g.Save(ctx, doc)
	if err != nil || status != StatusSynced {
		logging.Info("storage", "Unsynced changes are still local only")
		return SourceCache
	}
	return SourcePushed
}

func (g *Gateway) pendingNewerThan(ctx context.Context, remote *document.Document) (*document.Document, bool) {
	if g.cache == nil {
		return nil, false
	}
	snap, err := g.cache.Get(ctx, snapshotName)
	if err != nil || !snap.Pending {
		return nil, false
	}
	local, _, err := document.Decode(snap.Body)
	if err != nil {
		return nil, false
	}
	if !local.LastUpdated.After(remote.LastUpdated) {
		return nil, false
	}
	return local, true
}

func (g *Gateway) loadCache(ctx context.Context) (*document.Document, bool) {
	if g.cache == nil {
		return nil, false
	}
	snap, err := g.cache.Get(ctx, snapshotName)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			logging.Info("storage", "Failed to read cache: %v", err)
		}
		return nil, false
	}
	doc, applied, err := document.Decode(snap.Body)
	if err != nil {
		logging.Info("storage", "Discarding unreadable cache: %v", err)
		return nil, false
	}
	logMigrations(applied)
	g.mu.Lock()
	if g.sha == "" {
		g.sha = snap.SHA
	}
	g.mu.Unlock()
	return doc, true
}

// Save writes doc to the cache, then to the remote. The only error it
// returns is a failure to encode the document.
func (g *Gateway) Save(ctx context.Context, doc *document.Document) (SaveStatus, error) {
	body, err := document.Encode(doc)
	if err != nil {
		return StatusSavedLocally, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.saved.IsZero() && doc.LastUpdated.Before(g.saved) {
		logging.Debug("storage", "Skipping save of stale document from %s", doc.LastUpdated.Format(time.RFC3339Nano))
		return StatusSuperseded, nil
	}
	g.saved = doc.LastUpdated

	if g.cache != nil {
		err := g.cache.Put(ctx, Snapshot{
			Name:    snapshotName,
			Body:    body,
			SHA:     g.sha,
			SavedAt: g.now(),
			Pending: g.remote != nil,
		})
		if err != nil {
			logging.Info("storage", "Failed to write cache: %v", err)
		}
	}
	if g.remote == nil {
		return StatusLocalOnly, nil
	}

	sha, err := g.remote.Store(ctx, body, g.sha, g.now())
	if err != nil {
		logging.Info("storage", "Remote save failed, changes kept locally: %v", err)
		return StatusSavedLocally, nil
	}
	g.sha = sha
	if g.cache != nil {
		if err := g.cache.MarkSynced(ctx, snapshotName, sha); err != nil {
			logging.Info("storage", "Failed to update cache: %v", err)
		}
	}
	logging.Debug("storage", "Saved document revision %s", sha)
	return StatusSynced, nil
}

func logMigrations(applied []string) {
	if len(applied) > 0 {
		logging.Info("storage", "Applied migrations: %s", strings.Join(applied, ", "))
	}
}
