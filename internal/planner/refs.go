package planner

import (
	"sort"

	"planboard/internal/document"
)

// upsertReference is the only way a ScheduledRef enters the document. It drops
// every existing reference to the same triple on any date before appending
// the new one, so a task or subtask is never scheduled on two days.
func (e *edit) upsertReference(date, projectID, taskID, subtaskID string) {
	key := ProjectKey(projectID, taskID, subtaskID)
	for _, from := range e.removeReferences(func(r document.ScheduledRef) bool {
		return r.Matches(projectID, taskID, subtaskID)
	}) {
		if from != date {
			e.dropFromOrder(from, key)
		}
	}
	e.doc.ScheduledItems[date] = append(e.doc.ScheduledItems[date], document.ScheduledRef{
		ProjectID:   projectID,
		TaskID:      taskID,
		SubtaskID:   subtaskID,
		ScheduledAt: e.now,
	})
}

// removeReferences deletes matching references on every date and returns the
// dates that lost at least one.
func (e *edit) removeReferences(match func(document.ScheduledRef) bool) []string {
	var touched []string
	for date, refs := range e.doc.ScheduledItems {
		kept := refs[:0]
		for _, r := range refs {
			if !match(r) {
				kept = append(kept, r)
			}
		}
		if len(kept) == len(refs) {
			continue
		}
		touched = append(touched, date)
		e.doc.ScheduledItems[date] = kept
		e.pruneDate(date)
	}
	return touched
}

// pruneDate deletes empty buckets for date so the maps do not grow with
// days that no longer hold anything.
func (e *edit) pruneDate(date string) {
	if refs, ok := e.doc.ScheduledItems[date]; ok && len(refs) == 0 {
		delete(e.doc.ScheduledItems, date)
	}
	if list, ok := e.doc.DailyLists[date]; ok && len(list) == 0 {
		delete(e.doc.DailyLists, date)
	}
	_, hasRefs := e.doc.ScheduledItems[date]
	_, hasList := e.doc.DailyLists[date]
	if !hasRefs && !hasList {
		delete(e.doc.TaskOrder, date)
	}
}

func (e *edit) dropFromOrder(date string, key TaskKey) {
	order, ok := e.doc.TaskOrder[date]
	if !ok {
		return
	}
	kept := order[:0]
	for _, k := range order {
		if k != string(key) {
			kept = append(kept, k)
		}
	}
	if len(kept) == 0 {
		delete(e.doc.TaskOrder, date)
		return
	}
	e.doc.TaskOrder[date] = kept
}

func (e *edit) scheduleTask(projectID, taskID, subtaskID, date string, includeSubtasks bool) error {
	if err := requireDate(date); err != nil {
		return err
	}
	_, task, _, err := e.lookup(projectID, taskID, subtaskID)
	if err != nil {
		return err
	}
	e.upsertReference(date, projectID, taskID, subtaskID)
	if includeSubtasks && subtaskID == "" {
		for _, st := range task.Subtasks {
			e.upsertReference(date, projectID, taskID, st.ID)
		}
	}
	return nil
}

func (e *edit) rescheduleTask(key TaskKey, from, to string) error {
	if err := requireDate(to); err != nil {
		return err
	}
	target, err := key.Target()
	if err != nil {
		return err
	}
	if !target.Standalone {
		return e.scheduleTask(target.ProjectID, target.TaskID, target.SubtaskID, to, false)
	}

	if err := requireDate(from); err != nil {
		return err
	}
	old := e.doc.Standalone(from, target.ID)
	if old == nil {
		return errorf(ErrStandaloneNotFound, "%s on %s", target.ID, from)
	}
	if from == to {
		return nil
	}
	moved := document.StandaloneTask{
		ID:          old.ID,
		Title:       old.Title,
		Description: old.Description,
		Priority:    old.Priority.Normalize(),
		Notes:       old.Notes,
		Links:       old.Links,
		CreatedAt:   old.CreatedAt,
	}
	if moved.CreatedAt.IsZero() {
		moved.CreatedAt = e.now
	}
	e.deleteStandalone(from, target.ID)
	e.deleteStandalone(to, target.ID)
	e.doc.DailyLists[to] = append(e.doc.DailyLists[to], moved)
	return nil
}

func (e *edit) deleteStandalone(date, id string) bool {
	list, ok := e.doc.DailyLists[date]
	if !ok {
		return false
	}
	kept := list[:0]
	for _, t := range list {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	removed := len(kept) != len(list)
	e.doc.DailyLists[date] = kept
	if removed {
		e.dropFromOrder(date, StandaloneKey(id))
	}
	e.pruneDate(date)
	return removed
}

// removeFromDay deletes only the occurrence on date.
func (e *edit) removeFromDay(key TaskKey, date string) error {
	if err := requireDate(date); err != nil {
		return err
	}
	target, err := key.Target()
	if err != nil {
		return err
	}
	if target.Standalone {
		if !e.deleteStandalone(date, target.ID) {
			return errorf(ErrNotOnDate, "%s on %s", key, date)
		}
		return nil
	}

	refs, ok := e.doc.ScheduledItems[date]
	if !ok {
		return errorf(ErrNotOnDate, "%s on %s", key, date)
	}
	kept := refs[:0]
	for _, r := range refs {
		if !r.Matches(target.ProjectID, target.TaskID, target.SubtaskID) {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(refs) {
		return errorf(ErrNotOnDate, "%s on %s", key, date)
	}
	e.doc.ScheduledItems[date] = kept
	e.dropFromOrder(date, key)
	e.pruneDate(date)
	return nil
}

// reorderWithinDay moves dragged to the position target holds in the
// currently displayed order of date and stores the full resulting order.
func (e *edit) reorderWithinDay(date string, dragged, target TaskKey) error {
	if err := requireDate(date); err != nil {
		return err
	}
	if dragged == target {
		return nil
	}
	views := TasksForDate(e.doc, date, true)
	order := make([]string, 0, len(views))
	from, to := -1, -1
	for i, v := range views {
		k := v.Key()
		order = append(order, string(k))
		switch k {
		case dragged:
			from = i
		case target:
			to = i
		}
	}
	if from < 0 {
		return errorf(ErrNotOnDate, "%s on %s", dragged, date)
	}
	if to < 0 {
		return errorf(ErrNotOnDate, "%s on %s", target, date)
	}
	order = append(order[:from], order[from+1:]...)
	order = append(order[:to], append([]string{string(dragged)}, order[to:]...)...)
	e.doc.TaskOrder[date] = order
	return nil
}

// ScheduledDates lists the dates a task appears on, sorted. With an empty
// subtaskID the task's own reference and all of its subtasks' count.
func ScheduledDates(doc *document.Document, projectID, taskID, subtaskID string) []string {
	var out []string
	for date, refs := range doc.ScheduledItems {
		for _, r := range refs {
			if r.ProjectID != projectID || r.TaskID != taskID {
				continue
			}
			if subtaskID == "" || r.SubtaskID == subtaskID {
				out = append(out, date)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}
