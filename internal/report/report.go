// Package report builds the monthly productivity export from the completion
// log and daily notes.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"planboard/internal/dates"
	"planboard/internal/document"
)

type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatMarkdown, FormatJSON, FormatYAML:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "txt", "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

func (f Format) Ext() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "txt"
	}
}

const otherTasks = "Other Tasks"

// Entry is one completion in the report.
type Entry struct {
	Title           string    `json:"title" yaml:"title"`
	Project         string    `json:"project,omitempty" yaml:"project,omitempty"`
	ProjectID       string    `json:"projectId,omitempty" yaml:"project_id,omitempty"`
	TaskID          string    `json:"taskId,omitempty" yaml:"task_id,omitempty"`
	SubtaskID       string    `json:"subtaskId,omitempty" yaml:"subtask_id,omitempty"`
	CompletedAt     time.Time `json:"completedAt" yaml:"completed_at"`
	CompletionNotes string    `json:"completionNotes,omitempty" yaml:"completion_notes,omitempty"`
	CompletionLinks string    `json:"completionLinks,omitempty" yaml:"completion_links,omitempty"`
	Date            string    `json:"date,omitempty" yaml:"date,omitempty"`
}

type Group struct {
	Project string
	Entries []Entry
}

type Report struct {
	// Key is YYYY-MM; Month is its display name.
	Key        string
	Month      string
	Entries    []Entry
	Groups     []Group
	Other      []Entry
	DailyNotes map[string]string
}

// Build collects completions whose timestamp falls in the month, in loc.
// Project groups keep the order of their first completion.
func Build(doc *document.Document, year int, month time.Month, loc *time.Location) Report {
	start, end := dates.MonthBounds(year, month, loc)
	r := Report{
		Key:        start.Format("2006-01"),
		Month:      start.Format("January 2006"),
		DailyNotes: map[string]string{},
	}

	index := map[string]int{}
	for _, rec := range doc.CompletedTasks {
		if rec.CompletedAt.Before(start) || !rec.CompletedAt.Before(end) {
			continue
		}
		e := Entry{
			Title:           rec.Title,
			ProjectID:       rec.ProjectID,
			TaskID:          rec.TaskID,
			SubtaskID:       rec.SubtaskID,
			CompletedAt:     rec.CompletedAt,
			CompletionNotes: rec.CompletionNotes,
			CompletionLinks: rec.CompletionLinks,
			Date:            rec.Date,
		}
		if rec.ProjectID == "" {
			r.Other = append(r.Other, e)
			r.Entries = append(r.Entries, e)
			continue
		}
		e.Project = "Unknown Project"
		if p := doc.Project(rec.ProjectID); p != nil {
			e.Project = p.Name
		}
		r.Entries = append(r.Entries, e)
		i, ok := index[e.Project]
		if !ok {
			i = len(r.Groups)
			index[e.Project] = i
			r.Groups = append(r.Groups, Group{Project: e.Project})
		}
		r.Groups[i].Entries = append(r.Groups[i].Entries, e)
	}

	for date, note := range doc.DailyNotes {
		if strings.HasPrefix(date, r.Key+"-") {
			r.DailyNotes[date] = note
		}
	}
	return r
}

func (r Report) noteDates() []string {
	out := make([]string, 0, len(r.DailyNotes))
	for d := range r.DailyNotes {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// longDate renders a date key as "Monday, March 10, 2025".
func longDate(key string) string {
	t, err := dates.Parse(key, time.UTC)
	if err != nil {
		return key
	}
	return t.Format("Monday, January 2, 2006")
}

func Render(r Report, f Format) ([]byte, error) {
	switch f {
	case FormatMarkdown:
		return []byte(renderMarkdown(r)), nil
	case FormatJSON:
		data, err := json.MarshalIndent(r.export(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal report: %w", err)
		}
		return data, nil
	case FormatYAML:
		data, err := yaml.Marshal(r.export())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal report: %w", err)
		}
		return data, nil
	case FormatText:
		return []byte(renderText(r)), nil
	}
	return nil, fmt.Errorf("unknown report format %q", f)
}

type exported struct {
	Month      string            `json:"month" yaml:"month"`
	Total      int               `json:"total" yaml:"total"`
	Tasks      []Entry           `json:"tasks" yaml:"tasks"`
	DailyNotes map[string]string `json:"dailyNotes" yaml:"daily_notes"`
}

func (r Report) export() exported {
	tasks := r.Entries
	if tasks == nil {
		tasks = []Entry{}
	}
	return exported{Month: r.Month, Total: len(r.Entries), Tasks: tasks, DailyNotes: r.DailyNotes}
}

func renderMarkdown(r Report) string {
	var b strings.Builder
	b.WriteString("# Productivity Report - " + r.Month + "\n\n")
	b.WriteString(fmt.Sprintf("**Total Tasks Completed:** %d\n\n", len(r.Entries)))

	for _, g := range r.Groups {
		b.WriteString("## " + g.Project + "\n\n")
		for _, e := range g.Entries {
			b.WriteString("- [x] " + e.Title)
			if e.CompletionNotes != "" {
				b.WriteString("\n  - Notes: " + e.CompletionNotes)
			}
			if e.CompletionLinks != "" {
				b.WriteString("\n  - Links: " + e.CompletionLinks)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(r.Other) > 0 {
		b.WriteString("## " + otherTasks + "\n\n")
		for _, e := range r.Other {
			b.WriteString("- [x] " + e.Title)
			if e.CompletionNotes != "" {
				b.WriteString("\n  - Notes: " + e.CompletionNotes)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if notes := r.noteDates(); len(notes) > 0 {
		b.WriteString("## Daily Notes\n\n")
		for _, d := range notes {
			b.WriteString("### " + longDate(d) + "\n\n")
			b.WriteString(r.DailyNotes[d] + "\n\n")
		}
	}
	return b.String()
}

func renderText(r Report) string {
	var b strings.Builder
	b.WriteString("Productivity Report - " + r.Month + "\n")
	b.WriteString(strings.Repeat("=", 40) + "\n\n")
	b.WriteString(fmt.Sprintf("Total Tasks Completed: %d\n\n", len(r.Entries)))

	for _, g := range r.Groups {
		b.WriteString(g.Project + "\n" + strings.Repeat("-", 20) + "\n")
		for _, e := range g.Entries {
			b.WriteString("  [x] " + e.Title + "\n")
			if e.CompletionNotes != "" {
				b.WriteString("      Notes: " + e.CompletionNotes + "\n")
			}
		}
		b.WriteString("\n")
	}

	if len(r.Other) > 0 {
		b.WriteString(otherTasks + "\n" + strings.Repeat("-", 20) + "\n")
		for _, e := range r.Other {
			b.WriteString("  [x] " + e.Title + "\n")
		}
	}

	if notes := r.noteDates(); len(notes) > 0 {
		b.WriteString("\nDaily Notes\n" + strings.Repeat("=", 40) + "\n\n")
		for _, d := range notes {
			b.WriteString(longDate(d) + "\n" + strings.Repeat("-", 20) + "\n")
			b.WriteString(r.DailyNotes[d] + "\n\n")
		}
	}
	return b.String()
}

func FileName(r Report, f Format) string {
	return fmt.Sprintf("productivity-report-%s.%s", r.Key, f.Ext())
}

// Write renders r into dir and returns the written path.
func Write(dir string, r Report, f Format) (string, error) {
	data, err := Render(r, f)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	path := filepath.Join(dir, FileName(r, f))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
