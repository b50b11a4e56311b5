// Package app sequences user intents: apply to the planner, then persist.
package app

import (
	"context"
	"sync/atomic"

	"planboard/internal/document"
	"planboard/internal/logging"
	"planboard/internal/planner"
	"planboard/internal/storage"
)

// Store is the persistence the session saves through. *storage.Gateway
// implements it.
type Store interface {
	Load(ctx context.Context) (*document.Document, storage.Source)
	Save(ctx context.Context, doc *document.Document) (storage.SaveStatus, error)
}

// Session is the single writer of one board.
type Session struct {
	planner *planner.Planner
	store   Store
	// submitting is held from a guarded submission until its save returns.
	submitting atomic.Bool
}

// Start loads the board from store. It never fails; see storage.Gateway.Load.
func Start(ctx context.Context, store Store, opts ...planner.Option) (*Session, storage.Source) {
	doc, src := store.Load(ctx)
	logging.Info("app", "Board loaded from %s", src)
	return &Session{planner: planner.New(doc, opts...), store: store}, src
}

func (s *Session) Planner() *planner.Planner {
	return s.planner
}

// Outcome is an applied intent waiting to be persisted.
type Outcome struct {
	planner.Result
	// Skipped is set when a guarded submission arrived while another was
	// still saving. Nothing was applied.
	Skipped bool

	snapshot *document.Document
	guarded  bool
}

// Do applies in right away. The committed document is updated before
// Persist is called, so views can redraw from it immediately.
func (s *Session) Do(in planner.Intent) (Outcome, error) {
	res, err := s.planner.Apply(in)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Result: res, snapshot: s.planner.Snapshot()}, nil
}

// Submit is Do for form submissions. A second submission while the first
// one is still being saved is dropped.
func (s *Session) Submit(in planner.Intent) (Outcome, error) {
	if !s.submitting.CompareAndSwap(false, true) {
		logging.Debug("app", "Ignoring %T while a submission is saving", in)
		return Outcome{Skipped: true}, nil
	}
	out, err := s.Do(in)
	if err != nil {
		s.submitting.Store(false)
		return Outcome{}, err
	}
	out.guarded = true
	return out, nil
}

// Submitting reports whether a guarded submission is still in flight.
func (s *Session) Submitting() bool {
	return s.submitting.Load()
}

// Report is the result of persisting an outcome.
type Report struct {
	Status storage.SaveStatus
	Err    error
}

// Notice is the text to show the user, if any.
func (r Report) Notice() string {
	if r.Err != nil {
		return "Save failed: " + r.Err.Error()
	}
	return r.Status.Notice()
}

// Persist saves the snapshot taken when o was applied. It is safe to call
// from a goroutine.
func (s *Session) Persist(ctx context.Context, o Outcome) Report {
	if o.guarded {
		defer s.submitting.Store(false)
	}
	if o.snapshot == nil {
		return Report{}
	}
	status, err := s.store.Save(ctx, o.snapshot)
	if err != nil {
		logging.Info("app", "Failed to save board: %v", err)
	}
	return Report{Status: status, Err: err}
}
