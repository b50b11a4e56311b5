package planner

import (
	"strings"

	"planboard/internal/dates"
	"planboard/internal/document"
)

const DefaultProjectColor = "#3b82f6"

func (e *edit) lookup(projectID, taskID, subtaskID string) (*document.Project, *document.Task, *document.Subtask, error) {
	p := e.doc.Project(projectID)
	if p == nil {
		return nil, nil, nil, errorf(ErrProjectNotFound, "%s", projectID)
	}
	t := p.Task(taskID)
	if t == nil {
		return p, nil, nil, errorf(ErrTaskNotFound, "%s in project %s", taskID, projectID)
	}
	if subtaskID == "" {
		return p, t, nil, nil
	}
	st := t.Subtask(subtaskID)
	if st == nil {
		return p, t, nil, errorf(ErrSubtaskNotFound, "%s in task %s", subtaskID, taskID)
	}
	return p, t, st, nil
}

func (e *edit) saveProject(id, name, description, color string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyTitle
	}
	if color == "" {
		color = DefaultProjectColor
	}
	if id != "" {
		if p := e.doc.Project(id); p != nil {
			p.Name = name
			p.Description = description
			p.Color = color
			return id, nil
		}
	} else {
		id = e.newID()
	}
	e.doc.Projects = append(e.doc.Projects, document.Project{
		ID:              id,
		Name:            name,
		Description:     description,
		Color:           color,
		CreatedAt:       e.now,
		Tasks:           []document.Task{},
		ProgressUpdates: []document.ProgressUpdate{},
	})
	return id, nil
}

func (e *edit) toggleArchived(projectID string) (bool, error) {
	p := e.doc.Project(projectID)
	if p == nil {
		return false, errorf(ErrProjectNotFound, "%s", projectID)
	}
	p.Archived = !p.Archived
	return p.Archived, nil
}

func (e *edit) deleteProject(projectID string) error {
	kept := e.doc.Projects[:0]
	found := false
	for _, p := range e.doc.Projects {
		if p.ID == projectID {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return errorf(ErrProjectNotFound, "%s", projectID)
	}
	e.doc.Projects = kept
	e.dropReferences(func(r document.ScheduledRef) bool { return r.ProjectID == projectID })
	return nil
}

func (e *edit) addProgress(projectID, text string) (string, error) {
	p := e.doc.Project(projectID)
	if p == nil {
		return "", errorf(ErrProjectNotFound, "%s", projectID)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyTitle
	}
	id := e.newID()
	p.ProgressUpdates = append(p.ProgressUpdates, document.ProgressUpdate{ID: id, Text: text, Date: e.now})
	return id, nil
}

// TaskInput carries the fields of the task form.
type TaskInput struct {
	Title       string
	Description string
	Priority    document.Priority
	// Schedule is empty, a date key, or one of today, tomorrow, next-week.
	Schedule string
}

func (in TaskInput) resolveSchedule(e *edit) (string, error) {
	if in.Schedule == "" {
		return "", nil
	}
	date, err := dates.Resolve(in.Schedule, e.now)
	if err != nil {
		return "", errorf(ErrInvalidDate, "%q", in.Schedule)
	}
	return date, nil
}

// saveTask creates or edits a project task. New tasks with a schedule get a
// reference on that date; editing never reschedules.
func (e *edit) saveTask(projectID, taskID string, in TaskInput) (string, error) {
	p := e.doc.Project(projectID)
	if p == nil {
		return "", errorf(ErrProjectNotFound, "%s", projectID)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	date, err := in.resolveSchedule(e)
	if err != nil {
		return "", err
	}
	if taskID != "" {
		if t := p.Task(taskID); t != nil {
			t.Title = title
			t.Description = in.Description
			t.Priority = in.Priority.Normalize()
			return taskID, nil
		}
	} else {
		taskID = e.newID()
	}
	p.Tasks = append(p.Tasks, document.Task{
		ID:          taskID,
		Title:       title,
		Description: in.Description,
		Priority:    in.Priority.Normalize(),
		CreatedAt:   e.now,
		Subtasks:    []document.Subtask{},
	})
	if date != "" {
		e.upsertReference(date, projectID, taskID, "")
	}
	return taskID, nil
}

func (e *edit) addSubtask(projectID, parentID string, in TaskInput) (string, error) {
	_, parent, _, err := e.lookup(projectID, parentID, "")
	if err != nil {
		return "", err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	date, err := in.resolveSchedule(e)
	if err != nil {
		return "", err
	}
	id := e.newID()
	parent.Subtasks = append(parent.Subtasks, document.Subtask{
		ID:          id,
		Title:       title,
		Description: in.Description,
		Priority:    in.Priority.Normalize(),
		CreatedAt:   e.now,
	})
	if date != "" {
		e.upsertReference(date, projectID, parentID, id)
	}
	return id, nil
}

func (e *edit) deleteTask(projectID, taskID string) error {
	p, _, _, err := e.lookup(projectID, taskID, "")
	if err != nil {
		return err
	}
	kept := p.Tasks[:0]
	for _, t := range p.Tasks {
		if t.ID != taskID {
			kept = append(kept, t)
		}
	}
	p.Tasks = kept
	e.dropReferences(func(r document.ScheduledRef) bool {
		return r.ProjectID == projectID && r.TaskID == taskID
	})
	return nil
}

func (e *edit) deleteSubtask(projectID, taskID, subtaskID string) error {
	_, t, _, err := e.lookup(projectID, taskID, subtaskID)
	if err != nil {
		return err
	}
	kept := t.Subtasks[:0]
	for _, st := range t.Subtasks {
		if st.ID != subtaskID {
			kept = append(kept, st)
		}
	}
	t.Subtasks = kept
	e.dropReferences(func(r document.ScheduledRef) bool {
		return r.Matches(projectID, taskID, subtaskID)
	})
	return nil
}

// dropReferences removes references to deleted entities along with their
// manual order entries.
func (e *edit) dropReferences(match func(document.ScheduledRef) bool) {
	type hit struct {
		date string
		key  TaskKey
	}
	var hits []hit
	for date, refs := range e.doc.ScheduledItems {
		for _, r := range refs {
			if match(r) {
				hits = append(hits, hit{date, ProjectKey(r.ProjectID, r.TaskID, r.SubtaskID)})
			}
		}
	}
	e.removeReferences(match)
	for _, h := range hits {
		e.dropFromOrder(h.date, h.key)
	}
}

func (e *edit) addStandalone(date string, in TaskInput) (string, error) {
	if err := requireDate(date); err != nil {
		return "", err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	id := e.newID()
	e.doc.DailyLists[date] = append(e.doc.DailyLists[date], document.StandaloneTask{
		ID:          id,
		Title:       title,
		Description: in.Description,
		Priority:    in.Priority.Normalize(),
		CreatedAt:   e.now,
	})
	return id, nil
}

func (e *edit) updateStandalone(date, id string, in TaskInput) error {
	t := e.doc.Standalone(date, id)
	if t == nil {
		return errorf(ErrStandaloneNotFound, "%s on %s", id, date)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return ErrEmptyTitle
	}
	t.Title = title
	t.Description = in.Description
	t.Priority = in.Priority.Normalize()
	return nil
}

// saveNotes stores the free-form notes and links shown in the task detail.
func (e *edit) saveNotes(key TaskKey, date, notes, links string) error {
	target, err := key.Target()
	if err != nil {
		return err
	}
	if target.Standalone {
		t := e.doc.Standalone(date, target.ID)
		if t == nil {
			return errorf(ErrStandaloneNotFound, "%s on %s", target.ID, date)
		}
		t.Notes, t.Links = notes, links
		return nil
	}
	_, t, st, err := e.lookup(target.ProjectID, target.TaskID, target.SubtaskID)
	if err != nil {
		return err
	}
	if st != nil {
		st.Notes, st.Links = notes, links
		return nil
	}
	t.Notes, t.Links = notes, links
	return nil
}

// setDailyNote stores text for date; blank text removes the entry.
func (e *edit) setDailyNote(date, text string) error {
	if err := requireDate(date); err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		delete(e.doc.DailyNotes, date)
		return nil
	}
	e.doc.DailyNotes[date] = text
	return nil
}
