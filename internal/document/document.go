// Package document defines the single JSON document that holds all planner state.
package document

import (
	"encoding/json"
	"fmt"
	"time"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities by severity; unknown values rank as medium.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityLow:
		return 2
	default:
		return 1
	}
}

// Normalize maps empty or unknown values to medium.
func (p Priority) Normalize() Priority {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p
	default:
		return PriorityMedium
	}
}

// Completion is the metadata written when something is marked done.
type Completion struct {
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	CompletionNotes string     `json:"completionNotes,omitempty"`
	CompletionLinks string     `json:"completionLinks,omitempty"`
}

func (c *Completion) Mark(at time.Time, notes, links string) {
	t := at
	c.CompletedAt = &t
	c.CompletionNotes = notes
	c.CompletionLinks = links
}

func (c *Completion) Clear() {
	c.CompletedAt = nil
	c.CompletionNotes = ""
	c.CompletionLinks = ""
}

type Subtask struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    Priority  `json:"priority,omitempty"`
	Completed   bool      `json:"completed"`
	Notes       string    `json:"notes,omitempty"`
	Links       string    `json:"links,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Completion
}

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    Priority  `json:"priority"`
	Completed   bool      `json:"completed"`
	Notes       string    `json:"notes,omitempty"`
	Links       string    `json:"links,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Subtasks    []Subtask `json:"subtasks"`
	Completion
}

// StandaloneTask lives directly in dailyLists[date] and belongs to no project.
type StandaloneTask struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    Priority  `json:"priority"`
	Completed   bool      `json:"completed"`
	Notes       string    `json:"notes,omitempty"`
	Links       string    `json:"links,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Completion
}

type ProgressUpdate struct {
	ID   string    `json:"id"`
	Text string    `json:"text"`
	Date time.Time `json:"date"`
}

type Project struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	Color           string           `json:"color"`
	CreatedAt       time.Time        `json:"createdAt"`
	Archived        bool             `json:"archived"`
	Tasks           []Task           `json:"tasks"`
	ProgressUpdates []ProgressUpdate `json:"progressUpdates"`
}

// ScheduledRef points a calendar day at a project task or subtask. It holds
// no task data of its own beyond the day-scoped completion state.
type ScheduledRef struct {
	ProjectID      string    `json:"projectId"`
	TaskID         string    `json:"taskId"`
	SubtaskID      string    `json:"subtaskId"`
	ScheduledAt    time.Time `json:"scheduledAt"`
	CompletedOnDay bool      `json:"completedOnDay"`
	Completion
}

// Matches compares the (project, task, subtask) triple.
func (r ScheduledRef) Matches(projectID, taskID, subtaskID string) bool {
	return r.ProjectID == projectID && r.TaskID == taskID && r.SubtaskID == subtaskID
}

// CompletionRecord is an append-only log entry used for reporting.
type CompletionRecord struct {
	ID              string    `json:"id,omitempty"`
	ProjectID       string    `json:"projectId,omitempty"`
	TaskID          string    `json:"taskId,omitempty"`
	SubtaskID       string    `json:"subtaskId,omitempty"`
	Title           string    `json:"title"`
	CompletedAt     time.Time `json:"completedAt"`
	CompletionNotes string    `json:"completionNotes,omitempty"`
	CompletionLinks string    `json:"completionLinks,omitempty"`
	Date            string    `json:"date,omitempty"`
}

type Document struct {
	SchemaVersion  int                         `json:"schemaVersion"`
	Projects       []Project                   `json:"projects"`
	DailyLists     map[string][]StandaloneTask `json:"dailyLists"`
	ScheduledItems map[string][]ScheduledRef   `json:"scheduledItems"`
	TaskOrder      map[string][]string         `json:"taskOrder"`
	CompletedTasks []CompletionRecord          `json:"completedTasks"`
	DailyNotes     map[string]string           `json:"dailyNotes"`
	LastUpdated    time.Time                   `json:"lastUpdated"`
}

// New returns an empty document at the current schema version.
func New(now time.Time) *Document {
	return &Document{
		SchemaVersion:  CurrentVersion,
		Projects:       []Project{},
		DailyLists:     map[string][]StandaloneTask{},
		ScheduledItems: map[string][]ScheduledRef{},
		TaskOrder:      map[string][]string{},
		CompletedTasks: []CompletionRecord{},
		DailyNotes:     map[string]string{},
		LastUpdated:    now.UTC(),
	}
}

func (d *Document) Touch(now time.Time) {
	d.LastUpdated = now.UTC()
}

// Project returns a pointer into d.Projects, or nil.
func (d *Document) Project(id string) *Project {
	for i := range d.Projects {
		if d.Projects[i].ID == id {
			return &d.Projects[i]
		}
	}
	return nil
}

func (p *Project) Task(id string) *Task {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return &p.Tasks[i]
		}
	}
	return nil
}

func (t *Task) Subtask(id string) *Subtask {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == id {
			return &t.Subtasks[i]
		}
	}
	return nil
}

// Standalone returns a pointer into dailyLists[date], or nil.
func (d *Document) Standalone(date, id string) *StandaloneTask {
	list := d.DailyLists[date]
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}

// Decode parses a stored document and migrates it to the current schema.
// The returned slice names the migration steps that ran.
func Decode(data []byte) (*Document, []string, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("failed to parse document: %w", err)
	}
	applied := Migrate(&doc)
	return &doc, applied, nil
}

func Encode(d *Document) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}
