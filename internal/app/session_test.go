package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"planboard/internal/document"
	"planboard/internal/planner"
	"planboard/internal/storage"
)

type memStore struct {
	mu     sync.Mutex
	doc    *document.Document
	saves  []*document.Document
	status storage.SaveStatus
	block  chan struct{}
}

func (m *memStore) Load(ctx context.Context) (*document.Document, storage.Source) {
	if m.doc == nil {
		return nil, storage.SourceDefault
	}
	return m.doc, storage.SourceCache
}

func (m *memStore) Save(ctx context.Context, doc *document.Document) (storage.SaveStatus, error) {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves = append(m.saves, doc)
	return m.status, nil
}

func start(t *testing.T, store *memStore) *Session {
	t.Helper()
	n := 0
	s, _ := Start(context.Background(), store,
		planner.WithClock(func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local) }),
		planner.WithIDs(func() string { n++; return fmt.Sprintf("id%d", n) }),
	)
	return s
}

func TestDoAppliesBeforeSave(t *testing.T) {
	store := &memStore{status: storage.StatusSavedLocally}
	s := start(t, store)

	out, err := s.Do(planner.SaveProject{Name: "Work"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if s.Planner().Document().Project(out.ID) == nil {
		t.Fatal("project not visible before persisting")
	}
	if len(store.saves) != 0 {
		t.Fatal("Do saved synchronously")
	}

	rep := s.Persist(context.Background(), out)
	if rep.Status != storage.StatusSavedLocally || rep.Notice() != "Changes saved locally. Will sync when online." {
		t.Errorf("report = %+v, notice %q", rep, rep.Notice())
	}
	if len(store.saves) != 1 || store.saves[0].Project(out.ID) == nil {
		t.Errorf("saved = %+v", store.saves)
	}
}

func TestPersistSavesSnapshotNotLiveDocument(t *testing.T) {
	store := &memStore{}
	s := start(t, store)
	first, _ := s.Do(planner.SaveProject{Name: "A"})
	s.Do(planner.SaveProject{Name: "B"})

	s.Persist(context.Background(), first)
	if n := len(store.saves[0].Projects); n != 1 {
		t.Errorf("first snapshot has %d projects, want 1", n)
	}
}

func TestSubmitGuardDropsSecondSubmission(t *testing.T) {
	store := &memStore{block: make(chan struct{})}
	s := start(t, store)

	out, err := s.Submit(planner.SaveTask{Input: planner.TaskInput{Title: "walk", Schedule: "today"}})
	if err != nil || out.Skipped {
		t.Fatalf("first Submit = %+v, %v", out, err)
	}
	done := make(chan Report)
	go func() { done <- s.Persist(context.Background(), out) }()

	dup, err := s.Submit(planner.SaveTask{Input: planner.TaskInput{Title: "walk", Schedule: "today"}})
	if err != nil || !dup.Skipped {
		t.Fatalf("second Submit = %+v, %v", dup, err)
	}
	if !s.Submitting() {
		t.Error("guard released before save finished")
	}
	close(store.block)
	<-done

	if s.Submitting() {
		t.Error("guard still held after save")
	}
	if n := len(s.Planner().TasksForDate("2025-03-10", true)); n != 1 {
		t.Errorf("tasks on date = %d, want 1", n)
	}
	if _, err := s.Submit(planner.SaveProject{Name: "next"}); err != nil {
		t.Errorf("Submit after release: %v", err)
	}
}

func TestSubmitReleasesGuardOnError(t *testing.T) {
	s := start(t, &memStore{})
	_, err := s.Submit(planner.SaveProject{Name: ""})
	if !errors.Is(err, planner.ErrEmptyTitle) {
		t.Fatalf("error = %v", err)
	}
	if s.Submitting() {
		t.Error("guard held after failed submission")
	}
}

func TestPersistSkippedOutcomeIsNoop(t *testing.T) {
	store := &memStore{}
	s := start(t, store)
	rep := s.Persist(context.Background(), Outcome{Skipped: true})
	if rep.Notice() != "" || len(store.saves) != 0 {
		t.Errorf("report = %+v, saves = %d", rep, len(store.saves))
	}
}
