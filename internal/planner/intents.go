package planner

import (
	"strings"

	"planboard/internal/document"
)

// Intent is one user action. The view layer builds intents and hands them
// to Planner.Apply; it never edits the document itself.
type Intent interface {
	apply(e *edit) (Result, error)
}

// Result reports what an intent did. ID is set when something was created.
type Result struct {
	ID     string
	Notice string
}

// Schedule puts a project task or subtask on Date, replacing any existing
// date. IncludeSubtasks also moves every subtask of a parent task.
type Schedule struct {
	ProjectID       string
	TaskID          string
	SubtaskID       string
	Date            string
	IncludeSubtasks bool
}

func (in Schedule) apply(e *edit) (Result, error) {
	if err := e.scheduleTask(in.ProjectID, in.TaskID, in.SubtaskID, in.Date, in.IncludeSubtasks); err != nil {
		return Result{}, err
	}
	return Result{Notice: "Task scheduled for " + in.Date}, nil
}

type Reschedule struct {
	Key  TaskKey
	From string
	To   string
}

func (in Reschedule) apply(e *edit) (Result, error) {
	if err := e.rescheduleTask(in.Key, in.From, in.To); err != nil {
		return Result{}, err
	}
	return Result{Notice: "Task rescheduled to " + in.To}, nil
}

type RemoveFromDay struct {
	Key  TaskKey
	Date string
}

func (in RemoveFromDay) apply(e *edit) (Result, error) {
	if err := e.removeFromDay(in.Key, in.Date); err != nil {
		return Result{}, err
	}
	return Result{Notice: "Task removed from day"}, nil
}

// Reorder moves Dragged to Target's slot. FromDate is the day the dragged
// task was picked up on and must equal Date.
type Reorder struct {
	Date     string
	FromDate string
	Dragged  TaskKey
	Target   TaskKey
}

func (in Reorder) apply(e *edit) (Result, error) {
	if in.FromDate != "" && in.FromDate != in.Date {
		return Result{}, errorf(ErrCrossDateReorder, "%s -> %s", in.FromDate, in.Date)
	}
	if err := e.reorderWithinDay(in.Date, in.Dragged, in.Target); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}

// Complete marks an occurrence done. Date is the day whose checkbox was used;
// leave it empty when completing from the project tree.
type Complete struct {
	Key   TaskKey
	Date  string
	Notes string
	Links string
}

func (in Complete) apply(e *edit) (Result, error) {
	target, err := in.Key.Target()
	if err != nil {
		return Result{}, err
	}
	if err := e.setCompletion(target, in.Date, true, in.Notes, in.Links); err != nil {
		return Result{}, err
	}
	return Result{Notice: "Task completed!"}, nil
}

type Reopen struct {
	Key  TaskKey
	Date string
}

func (in Reopen) apply(e *edit) (Result, error) {
	target, err := in.Key.Target()
	if err != nil {
		return Result{}, err
	}
	if err := e.setCompletion(target, in.Date, false, "", ""); err != nil {
		return Result{}, err
	}
	return Result{Notice: "Task reopened"}, nil
}

// Toggle flips the completion of Key based on its current state.
type Toggle struct {
	Key  TaskKey
	Date string
}

func (in Toggle) apply(e *edit) (Result, error) {
	target, err := in.Key.Target()
	if err != nil {
		return Result{}, err
	}
	if isDone(e.doc, target, in.Date) || e.completedOnDay(target, in.Date) {
		return Reopen(in).apply(e)
	}
	return Complete{Key: in.Key, Date: in.Date}.apply(e)
}

func (e *edit) completedOnDay(target Target, date string) bool {
	ref := e.findRef(date, target)
	return ref != nil && ref.CompletedOnDay
}

// SaveProject creates a project when ID is empty and edits it otherwise.
type SaveProject struct {
	ID          string
	Name        string
	Description string
	Color       string
}

func (in SaveProject) apply(e *edit) (Result, error) {
	id, err := e.saveProject(in.ID, in.Name, in.Description, in.Color)
	if err != nil {
		return Result{}, err
	}
	return Result{ID: id, Notice: "Project saved"}, nil
}

type ToggleArchive struct {
	ProjectID string
}

func (in ToggleArchive) apply(e *edit) (Result, error) {
	archived, err := e.toggleArchived(in.ProjectID)
	if err != nil {
		return Result{}, err
	}
	if archived {
		return Result{Notice: "Project archived"}, nil
	}
	return Result{Notice: "Project restored"}, nil
}

type DeleteProject struct {
	ProjectID string
}

func (in DeleteProject) apply(e *edit) (Result, error) {
	if err := e.deleteProject(in.ProjectID); err != nil {
		return Result{}, err
	}
	return Result{Notice: "Project deleted"}, nil
}

type AddProgress struct {
	ProjectID string
	Text      string
}

func (in AddProgress) apply(e *edit) (Result, error) {
	id, err := e.addProgress(in.ProjectID, in.Text)
	if err != nil {
		return Result{}, err
	}
	return Result{ID: id, Notice: "Progress update added"}, nil
}

// SaveTask is the task form. With ParentID it adds a subtask, with only
// ProjectID it creates or edits a project task, and without either it adds
// a standalone task on the scheduled date (or edits one when ID and Date are
// both set).
type SaveTask struct {
	ProjectID string
	ParentID  string
	ID        string
	Date      string
	Input     TaskInput
}

func (in SaveTask) apply(e *edit) (Result, error) {
	var (
		id  string
		err error
	)
	switch {
	case in.ParentID != "":
		id, err = e.addSubtask(in.ProjectID, in.ParentID, in.Input)
	case in.ProjectID != "":
		id, err = e.saveTask(in.ProjectID, in.ID, in.Input)
	case in.ID != "":
		id, err = in.ID, e.updateStandalone(in.Date, in.ID, in.Input)
	default:
		var date string
		date, err = in.Input.resolveSchedule(e)
		if err == nil && date == "" {
			err = errorf(ErrInvalidDate, "standalone tasks need a date")
		}
		if err == nil {
			id, err = e.addStandalone(date, in.Input)
		}
	}
	if err != nil {
		return Result{}, err
	}
	return Result{ID: id, Notice: "Task saved"}, nil
}

type DeleteTask struct {
	ProjectID string
	TaskID    string
	SubtaskID string
}

func (in DeleteTask) apply(e *edit) (Result, error) {
	var err error
	if in.SubtaskID != "" {
		err = e.deleteSubtask(in.ProjectID, in.TaskID, in.SubtaskID)
	} else {
		err = e.deleteTask(in.ProjectID, in.TaskID)
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Notice: "Task deleted"}, nil
}

type SaveNotes struct {
	Key   TaskKey
	Date  string
	Notes string
	Links string
}

func (in SaveNotes) apply(e *edit) (Result, error) {
	if err := e.saveNotes(in.Key, in.Date, in.Notes, in.Links); err != nil {
		return Result{}, err
	}
	return Result{Notice: "Notes saved"}, nil
}

type SetDailyNote struct {
	Date string
	Text string
}

func (in SetDailyNote) apply(e *edit) (Result, error) {
	if err := e.setDailyNote(in.Date, in.Text); err != nil {
		return Result{}, err
	}
	return Result{Notice: "Notes saved"}, nil
}

// ParsePriority reads a form value; anything unknown becomes medium.
func ParsePriority(s string) document.Priority {
	return document.Priority(strings.ToLower(strings.TrimSpace(s))).Normalize()
}
