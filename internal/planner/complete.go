package planner

import "planboard/internal/document"

// A task has one canonical completion state. The completedOnDay flag on its
// scheduled reference mirrors that state at the time of the last change, and
// every open -> done transition appends one record to the completion log.
//
// Completing a task completes its subtasks. Completing the last open subtask
// does not complete the parent, and reopening never cascades.

// setCompletion applies completed to the task or subtask behind target. date
// is the day the change was made from, or empty when it came from the
// project tree; it only ends up in the log record.
func (e *edit) setCompletion(target Target, date string, completed bool, notes, links string) error {
	if target.Standalone {
		return e.setStandaloneCompletion(date, target.ID, completed, notes, links)
	}
	if date != "" {
		if err := requireDate(date); err != nil {
			return err
		}
	}
	_, task, sub, err := e.lookup(target.ProjectID, target.TaskID, target.SubtaskID)
	if err != nil {
		return err
	}

	title := task.Title
	wasDone := task.Completed
	if sub != nil {
		title = sub.Title
		wasDone = sub.Completed
	}
	if ref := e.findRef(date, target); ref != nil && ref.CompletedOnDay {
		wasDone = true
	}

	switch {
	case !completed && sub != nil:
		sub.Completed = false
		sub.Clear()
	case !completed:
		task.Completed = false
		task.Clear()
	case sub != nil:
		sub.Completed = true
		sub.Mark(e.now, notes, links)
	default:
		task.Completed = true
		task.Mark(e.now, notes, links)
		for i := range task.Subtasks {
			st := &task.Subtasks[i]
			if st.Completed {
				continue
			}
			st.Completed = true
			st.Mark(e.now, "", "")
			e.syncReferences(Target{ProjectID: target.ProjectID, TaskID: task.ID, SubtaskID: st.ID}, true, "", "")
		}
	}
	e.syncReferences(target, completed, notes, links)

	if completed && !wasDone {
		e.doc.CompletedTasks = append(e.doc.CompletedTasks, document.CompletionRecord{
			ProjectID:       target.ProjectID,
			TaskID:          target.TaskID,
			SubtaskID:       target.SubtaskID,
			Title:           title,
			CompletedAt:     e.now,
			CompletionNotes: notes,
			CompletionLinks: links,
			Date:            date,
		})
	}
	return nil
}

// findRef returns the reference for target on date, or nil when the task is
// not scheduled there. A missing reference is not an error.
func (e *edit) findRef(date string, target Target) *document.ScheduledRef {
	if date == "" {
		return nil
	}
	refs := e.doc.ScheduledItems[date]
	for i := range refs {
		if refs[i].Matches(target.ProjectID, target.TaskID, target.SubtaskID) {
			return &refs[i]
		}
	}
	return nil
}

func (e *edit) syncReferences(target Target, completed bool, notes, links string) {
	for _, refs := range e.doc.ScheduledItems {
		for i := range refs {
			r := &refs[i]
			if !r.Matches(target.ProjectID, target.TaskID, target.SubtaskID) {
				continue
			}
			r.CompletedOnDay = completed
			if completed {
				r.Mark(e.now, notes, links)
			} else {
				r.Clear()
			}
		}
	}
}

func (e *edit) setStandaloneCompletion(date, id string, completed bool, notes, links string) error {
	if err := requireDate(date); err != nil {
		return err
	}
	t := e.doc.Standalone(date, id)
	if t == nil {
		return errorf(ErrStandaloneNotFound, "%s on %s", id, date)
	}
	wasDone := t.Completed
	t.Completed = completed
	if !completed {
		t.Clear()
		return nil
	}
	t.Mark(e.now, notes, links)
	if !wasDone {
		e.doc.CompletedTasks = append(e.doc.CompletedTasks, document.CompletionRecord{
			ID:              id,
			Title:           t.Title,
			CompletedAt:     e.now,
			CompletionNotes: notes,
			CompletionLinks: links,
			Date:            date,
		})
	}
	return nil
}

// isDone reports the canonical completion state of target.
func isDone(doc *document.Document, target Target, date string) bool {
	if target.Standalone {
		t := doc.Standalone(date, target.ID)
		return t != nil && t.Completed
	}
	p := doc.Project(target.ProjectID)
	if p == nil {
		return false
	}
	t := p.Task(target.TaskID)
	if t == nil {
		return false
	}
	if target.SubtaskID == "" {
		return t.Completed
	}
	st := t.Subtask(target.SubtaskID)
	return st != nil && st.Completed
}
