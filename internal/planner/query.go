package planner

import (
	"sort"
	"time"

	"planboard/internal/document"
)

type Kind int

const (
	KindStandalone Kind = iota
	KindTask
	KindSubtask
)

// TaskView is one resolved occurrence ready for display.
type TaskView struct {
	Kind Kind
	Date string

	ID        string
	ProjectID string
	TaskID    string
	SubtaskID string

	ProjectName  string
	ProjectColor string
	ParentTitle  string

	Title       string
	Description string
	Priority    document.Priority
	Notes       string
	Links       string
	CreatedAt   time.Time

	Completed       bool
	CompletedOnDay  bool
	CompletedAt     *time.Time
	CompletionNotes string
	CompletionLinks string
}

func (v TaskView) Key() TaskKey {
	if v.Kind == KindStandalone {
		return StandaloneKey(v.ID)
	}
	return ProjectKey(v.ProjectID, v.TaskID, v.SubtaskID)
}

func (v TaskView) Target() Target {
	if v.Kind == KindStandalone {
		return Target{Standalone: true, ID: v.ID}
	}
	return Target{ProjectID: v.ProjectID, TaskID: v.TaskID, SubtaskID: v.SubtaskID}
}

func (v TaskView) IsCompleted() bool {
	return v.Completed || v.CompletedOnDay
}

// resolve turns a reference into a view. References whose project, task or
// subtask no longer exists resolve to false.
func resolve(doc *document.Document, date string, ref document.ScheduledRef) (TaskView, bool) {
	p := doc.Project(ref.ProjectID)
	if p == nil {
		return TaskView{}, false
	}
	t := p.Task(ref.TaskID)
	if t == nil {
		return TaskView{}, false
	}
	v := TaskView{
		Kind:           KindTask,
		Date:           date,
		ID:             t.ID,
		ProjectID:      p.ID,
		TaskID:         t.ID,
		ProjectName:    p.Name,
		ProjectColor:   p.Color,
		CompletedOnDay: ref.CompletedOnDay,
	}
	if ref.SubtaskID == "" {
		v.Title, v.Description, v.Priority = t.Title, t.Description, t.Priority.Normalize()
		v.Notes, v.Links, v.CreatedAt = t.Notes, t.Links, t.CreatedAt
		v.Completed = t.Completed
		v.CompletedAt = t.CompletedAt
	} else {
		st := t.Subtask(ref.SubtaskID)
		if st == nil {
			return TaskView{}, false
		}
		v.Kind = KindSubtask
		v.ID = st.ID
		v.SubtaskID = st.ID
		v.ParentTitle = t.Title
		v.Title, v.Description, v.Priority = st.Title, st.Description, st.Priority.Normalize()
		v.Notes, v.Links, v.CreatedAt = st.Notes, st.Links, st.CreatedAt
		v.Completed = st.Completed
		v.CompletedAt = st.CompletedAt
	}
	// Day-scoped completion details win over the entity's own.
	v.CompletionNotes, v.CompletionLinks = ref.CompletionNotes, ref.CompletionLinks
	if ref.CompletedAt != nil {
		v.CompletedAt = ref.CompletedAt
	}
	return v, true
}

func standaloneView(date string, t document.StandaloneTask) TaskView {
	return TaskView{
		Kind:            KindStandalone,
		Date:            date,
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		Priority:        t.Priority.Normalize(),
		Notes:           t.Notes,
		Links:           t.Links,
		CreatedAt:       t.CreatedAt,
		Completed:       t.Completed,
		CompletedAt:     t.CompletedAt,
		CompletionNotes: t.CompletionNotes,
		CompletionLinks: t.CompletionLinks,
	}
}

// TasksForDate resolves everything that appears on date: scheduled project
// tasks first, then standalone tasks, sorted by manual order, then open
// before done, then priority.
func TasksForDate(doc *document.Document, date string, includeCompleted bool) []TaskView {
	var out []TaskView
	for _, ref := range doc.ScheduledItems[date] {
		v, ok := resolve(doc, date, ref)
		if !ok {
			continue
		}
		if includeCompleted || !v.IsCompleted() {
			out = append(out, v)
		}
	}
	for _, t := range doc.DailyLists[date] {
		v := standaloneView(date, t)
		if includeCompleted || !v.IsCompleted() {
			out = append(out, v)
		}
	}

	position := map[TaskKey]int{}
	for i, k := range doc.TaskOrder[date] {
		if _, dup := position[TaskKey(k)]; !dup {
			position[TaskKey(k)] = i
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		ai, aok := position[a.Key()]
		bi, bok := position[b.Key()]
		switch {
		case aok && bok:
			return ai < bi
		case aok != bok:
			return aok
		}
		if a.IsCompleted() != b.IsCompleted() {
			return !a.IsCompleted()
		}
		return a.Priority.Rank() < b.Priority.Rank()
	})
	return out
}

// Filter narrows a day's tasks for the calendar. A task filter matches the
// task itself and all of its subtasks.
type Filter struct {
	ProjectID string
	TaskID    string
}

func (f Filter) Empty() bool {
	return f.ProjectID == "" && f.TaskID == ""
}

func (f Filter) Apply(views []TaskView) []TaskView {
	if f.Empty() {
		return views
	}
	var out []TaskView
	for _, v := range views {
		if f.ProjectID != "" && v.ProjectID != f.ProjectID {
			continue
		}
		if f.TaskID != "" && v.TaskID != f.TaskID {
			continue
		}
		out = append(out, v)
	}
	return out
}

type DateStatus string

const (
	StatusNone           DateStatus = ""
	StatusPastIncomplete DateStatus = "past-incomplete"
	StatusPastComplete   DateStatus = "past-complete"
	StatusToday          DateStatus = "today"
	StatusFuture         DateStatus = "future"
)

// StatusForDate classifies date for calendar decoration. It is recomputed
// from the document on every call.
func StatusForDate(doc *document.Document, date, today string, f Filter) DateStatus {
	views := f.Apply(TasksForDate(doc, date, true))
	if len(views) == 0 {
		return StatusNone
	}
	switch {
	case date == today:
		return StatusToday
	case date > today:
		return StatusFuture
	}
	for _, v := range views {
		if !v.IsCompleted() {
			return StatusPastIncomplete
		}
	}
	return StatusPastComplete
}

func (p *Planner) TasksForDate(date string, includeCompleted bool) []TaskView {
	return TasksForDate(p.doc, date, includeCompleted)
}

func (p *Planner) FilteredTasksForDate(date string, includeCompleted bool, f Filter) []TaskView {
	return f.Apply(TasksForDate(p.doc, date, includeCompleted))
}

func (p *Planner) DateStatus(date string, f Filter) DateStatus {
	return StatusForDate(p.doc, date, p.Today(), f)
}

func (p *Planner) ScheduledDates(projectID, taskID, subtaskID string) []string {
	return ScheduledDates(p.doc, projectID, taskID, subtaskID)
}

// Projects returns active or archived projects in stored order.
func (p *Planner) Projects(archived bool) []document.Project {
	var out []document.Project
	for _, pr := range p.doc.Projects {
		if pr.Archived == archived {
			out = append(out, pr)
		}
	}
	return out
}

func (p *Planner) IsDone(key TaskKey, date string) bool {
	target, err := key.Target()
	if err != nil {
		return false
	}
	return isDone(p.doc, target, date)
}
