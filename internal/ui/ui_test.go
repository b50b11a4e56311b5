package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"planboard/internal/app"
	"planboard/internal/config"
	"planboard/internal/document"
	"planboard/internal/planner"
	"planboard/internal/storage"
)

type memStore struct {
	mu    sync.Mutex
	saves int
}

func (s *memStore) Load(ctx context.Context) (*document.Document, storage.Source) {
	return nil, storage.SourceDefault
}

func (s *memStore) Save(ctx context.Context, doc *document.Document) (storage.SaveStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	return storage.StatusSavedLocally, nil
}

func newTestModel(t *testing.T) (Model, *memStore) {
	t.Helper()
	cfg, err := config.LoadOrCreate(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	n := 0
	store := &memStore{}
	session, _ := app.Start(context.Background(), store,
		planner.WithClock(func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local) }),
		planner.WithIDs(func() string { n++; return fmt.Sprintf("id%d", n) }),
	)
	return New(session, cfg), store
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends keys in order and returns the model with the command of the
// last key.
func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m, cmd
}

// settle runs a save command and feeds its result back into the model.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a save command")
	}
	msg, ok := cmd().(savedMsg)
	if !ok {
		t.Fatal("command did not produce a savedMsg")
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func titles(views []planner.TaskView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.Title)
	}
	return out
}

func TestAddTaskThroughForm(t *testing.T) {
	m, store := newTestModel(t)
	if m.day != "2025-03-10" {
		t.Fatalf("day = %q", m.day)
	}

	m, _ = press(t, m, "a")
	if m.mode != modeForm || m.form.kind != formStandalone {
		t.Fatalf("form not opened: mode=%v", m.mode)
	}
	m = typeText(t, m, "Write report")
	m, cmd := press(t, m, "enter", "enter", "enter", "enter")
	if m.mode != modeList || m.form != nil {
		t.Fatalf("form still open, status %q", m.status)
	}
	if got := titles(m.tasks); len(got) != 1 || got[0] != "Write report" {
		t.Fatalf("tasks = %v", got)
	}

	m = settle(t, m, cmd)
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}
	if m.status != storage.StatusSavedLocally.Notice() {
		t.Errorf("status = %q", m.status)
	}
}

func TestCancelFormLeavesBoardAlone(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, "a")
	m = typeText(t, m, "Nope")
	m, _ = press(t, m, "esc")
	if m.mode != modeList || len(m.tasks) != 0 {
		t.Errorf("mode=%v tasks=%v", m.mode, titles(m.tasks))
	}
}

func TestToggleAndDayNavigation(t *testing.T) {
	m, _ := newTestModel(t)
	if _, err := m.session.Do(planner.SaveTask{Input: planner.TaskInput{Title: "Gym", Schedule: "today"}}); err != nil {
		t.Fatal(err)
	}
	m.refresh()

	m, cmd := press(t, m, " ")
	if cmd == nil || !m.tasks[0].IsCompleted() {
		t.Fatalf("toggle did not complete the task")
	}

	m, _ = press(t, m, "l")
	if m.day != "2025-03-11" || len(m.tasks) != 0 {
		t.Errorf("next day = %q tasks %v", m.day, titles(m.tasks))
	}
	m, _ = press(t, m, "h", "h")
	if m.day != "2025-03-09" {
		t.Errorf("prev day = %q", m.day)
	}
	m, _ = press(t, m, "t")
	if m.day != "2025-03-10" || len(m.tasks) != 1 {
		t.Errorf("today = %q tasks %v", m.day, titles(m.tasks))
	}

	m, _ = press(t, m, "c")
	if len(m.tasks) != 0 {
		t.Errorf("completed task still listed with showDone off")
	}
}

func TestRemoveAsksForConfirmation(t *testing.T) {
	m, _ := newTestModel(t)
	if _, err := m.session.Do(planner.SaveTask{Input: planner.TaskInput{Title: "Call bank", Schedule: "today"}}); err != nil {
		t.Fatal(err)
	}
	m.refresh()

	m, _ = press(t, m, "x")
	if m.mode != modeConfirm {
		t.Fatalf("mode = %v, want confirm", m.mode)
	}
	m, _ = press(t, m, "n")
	if len(m.tasks) != 1 {
		t.Fatal("task removed after declining")
	}
	m, _ = press(t, m, "x", "y")
	if len(m.tasks) != 0 || m.mode != modeList {
		t.Errorf("tasks = %v mode = %v", titles(m.tasks), m.mode)
	}
}

func TestSecondSubmissionWhileSavingIsDropped(t *testing.T) {
	m, store := newTestModel(t)

	m, _ = press(t, m, "a")
	m = typeText(t, m, "First")
	m, pending := press(t, m, "enter", "enter", "enter", "enter")

	m, _ = press(t, m, "a")
	m = typeText(t, m, "Second")
	m, cmd := press(t, m, "enter", "enter", "enter", "enter")
	if cmd != nil {
		t.Error("dropped submission returned a save command")
	}
	if m.mode != modeForm {
		t.Error("form closed although nothing was saved")
	}
	if !strings.Contains(m.status, "Still saving") {
		t.Errorf("status = %q", m.status)
	}
	if got := titles(m.tasks); len(got) != 1 {
		t.Errorf("tasks = %v", got)
	}

	m = settle(t, m, pending)
	m, cmd = press(t, m, "enter")
	if cmd == nil || m.mode != modeList {
		t.Fatalf("retry failed: %q", m.status)
	}
	settle(t, m, cmd)
	if store.saves != 2 || len(m.tasks) != 2 {
		t.Errorf("saves = %d tasks = %v", store.saves, titles(m.tasks))
	}
}

func TestReorderWithKeys(t *testing.T) {
	m, _ := newTestModel(t)
	for _, title := range []string{"A", "B", "C"} {
		if _, err := m.session.Do(planner.SaveTask{Input: planner.TaskInput{Title: title, Schedule: "today"}}); err != nil {
			t.Fatal(err)
		}
	}
	m.refresh()

	m, _ = press(t, m, "J")
	if got := strings.Join(titles(m.tasks), ""); got != "BAC" {
		t.Errorf("after move down = %s", got)
	}
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}
	m, _ = press(t, m, "J")
	if got := strings.Join(titles(m.tasks), ""); got != "BCA" {
		t.Errorf("after second move down = %s", got)
	}
	m, _ = press(t, m, "K", "K")
	if got := strings.Join(titles(m.tasks), ""); got != "ABC" {
		t.Errorf("after moving back up = %s", got)
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
}

func TestProjectsViewScheduleTask(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, "tab")
	if m.view != viewProjects {
		t.Fatal("tab did not open projects")
	}

	m, _ = press(t, m, "P")
	m = typeText(t, m, "Work")
	m, cmd := press(t, m, "enter", "enter", "enter")
	m = settle(t, m, cmd)
	if len(m.rows) != 1 || m.rows[0].kind != rowProject || m.rows[0].color != planner.DefaultProjectColor {
		t.Fatalf("rows = %+v", m.rows)
	}

	m, _ = press(t, m, "a")
	m = typeText(t, m, "Plan sprint")
	m, cmd = press(t, m, "enter", "enter", "enter", "enter")
	m = settle(t, m, cmd)
	if len(m.rows) != 2 || m.rows[1].kind != rowTask {
		t.Fatalf("rows = %+v", m.rows)
	}

	m, _ = press(t, m, "j", "s")
	if m.form == nil || len(m.form.fields) != 1 {
		t.Fatalf("schedule form = %+v", m.form)
	}
	m, cmd = press(t, m, "enter")
	m = settle(t, m, cmd)
	if got := m.rows[1].dates; len(got) != 1 || got[0] != "2025-03-10" {
		t.Errorf("dates = %v", got)
	}

	m, _ = press(t, m, "tab")
	if len(m.tasks) != 1 || m.tasks[0].ProjectName != "Work" {
		t.Fatalf("day tasks = %+v", m.tasks)
	}
	if !strings.Contains(m.View(), "Plan sprint") {
		t.Error("view does not show the scheduled task")
	}
}

func TestProjectsDeleteAndArchive(t *testing.T) {
	m, _ := newTestModel(t)
	out, err := m.session.Do(planner.SaveProject{Name: "Home"})
	if err != nil {
		t.Fatal(err)
	}
	m, _ = press(t, m, "tab")

	m, _ = press(t, m, "z")
	if !m.session.Planner().Document().Project(out.ID).Archived || !m.rows[0].archived {
		t.Error("archive did not toggle")
	}

	m, _ = press(t, m, "d")
	if m.mode != modeConfirm {
		t.Fatal("delete did not ask")
	}
	m, _ = press(t, m, "y")
	if len(m.rows) != 0 {
		t.Errorf("rows = %+v", m.rows)
	}
}

func TestGoToAndHistory(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = press(t, m, "g")
	m.input.SetValue("2025-04-01")
	m, _ = press(t, m, "enter")
	if m.day != "2025-04-01" || m.mode != modeList {
		t.Errorf("go to: day = %q mode = %v", m.day, m.mode)
	}

	m, _ = press(t, m, "H")
	if m.input.Value() != "2025-03-09" {
		t.Errorf("history default = %q", m.input.Value())
	}
	m.input.SetValue("2025-03-12")
	m, _ = press(t, m, "enter")
	if m.mode != modeForm {
		t.Error("future history date accepted")
	}
	m.input.SetValue("2025-03-01")
	m, _ = press(t, m, "enter")
	if m.day != "2025-03-01" || m.mode != modeList {
		t.Errorf("history: day = %q mode = %v", m.day, m.mode)
	}
}

func TestDailyNoteShownInView(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, "N")
	m = typeText(t, m, "Slept badly")
	m, cmd := press(t, m, "enter")
	settle(t, m, cmd)
	if !strings.Contains(m.View(), "Slept badly") {
		t.Error("daily note missing from view")
	}
}
