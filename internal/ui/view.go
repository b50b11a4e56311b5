package ui

import (
	"fmt"
	"strings"
	"time"

	"planboard/internal/dates"
	"planboard/internal/planner"
)

// stripDays is how many days either side of the selected day the status
// strip shows.
const stripDays = 3

func (m Model) renderDay() string {
	var b strings.Builder
	p := m.session.Planner()

	header := "Planboard • " + longDay(m.day)
	if m.day == p.Today() {
		header += " (today)"
	}
	b.WriteString(titleStyle.Render(header))
	if !m.filter.Empty() {
		b.WriteString(subtitleStyle.Render("  filter: " + m.filterLabel()))
	}
	b.WriteString("\n")
	b.WriteString(m.renderStrip())
	b.WriteString("\n\n")

	if len(m.tasks) == 0 {
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("Nothing planned. Press '%s' to add a task.", m.cfg.Keys.Add)))
		b.WriteString("\n")
	}
	for i, t := range m.tasks {
		b.WriteString(m.renderTaskLine(i, t))
		b.WriteString("\n")
	}

	if note := p.Document().DailyNotes[m.day]; note != "" {
		b.WriteString("\n")
		b.WriteString(subtitleStyle.Render("Notes: " + note))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderTaskLine(i int, t planner.TaskView) string {
	cursor := " "
	if m.cursor == i && m.mode == modeList {
		cursor = ">"
	}
	checkbox := "[ ]"
	if t.IsCompleted() {
		checkbox = "[x]"
	}

	title := t.Title
	if t.Kind == planner.KindSubtask {
		title = t.ParentTitle + " › " + t.Title
	}
	if t.IsCompleted() {
		title = doneStyle.Render(title)
	}

	line := fmt.Sprintf("%s %s %s %s", cursor, checkbox, priorityStyle(t.Priority).Render(priorityMark(t)), title)
	if t.ProjectName != "" {
		line += " " + projectStyle(t.ProjectColor).Render("● "+t.ProjectName)
	}
	if m.cursor == i && m.mode == modeList {
		return selectedStyle.Render(line)
	}
	return line
}

func priorityMark(t planner.TaskView) string {
	switch t.Priority {
	case "high":
		return "!!"
	case "low":
		return " ."
	default:
		return " !"
	}
}

func (m Model) renderStrip() string {
	p := m.session.Planner()
	first, err := dates.AddDays(m.day, -stripDays)
	if err != nil {
		return ""
	}
	week, err := dates.Week(first)
	if err != nil {
		return ""
	}
	var cells []string
	for _, day := range week {
		label := day[8:]
		if t, err := dates.Parse(day, time.UTC); err == nil {
			label = t.Format("Mon") + " " + label
		}
		cell := statusGlyph(p.DateStatus(day, m.filter)) + " " + label
		if day == m.day {
			cell = "[" + cell + "]"
		} else {
			cell = " " + cell + " "
		}
		cells = append(cells, cell)
	}
	return strings.Join(cells, " ")
}

func (m Model) renderDetail() string {
	t, ok := m.selectedTask()
	if !ok {
		return subtitleStyle.Render("No task selected")
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Title     : %s\n", t.Title))
	if t.ProjectName != "" {
		b.WriteString(fmt.Sprintf("Project   : %s\n", t.ProjectName))
	}
	if t.ParentTitle != "" {
		b.WriteString(fmt.Sprintf("Parent    : %s\n", t.ParentTitle))
	}
	b.WriteString(fmt.Sprintf("Priority  : %s\n", t.Priority))
	if t.Description != "" {
		b.WriteString(fmt.Sprintf("About     : %s\n", t.Description))
	}
	if t.Notes != "" {
		b.WriteString(fmt.Sprintf("Notes     : %s\n", t.Notes))
	}
	if t.Links != "" {
		b.WriteString(fmt.Sprintf("Links     : %s\n", t.Links))
	}
	if t.Kind != planner.KindStandalone {
		others := m.session.Planner().ScheduledDates(t.ProjectID, t.TaskID, t.SubtaskID)
		b.WriteString(fmt.Sprintf("Scheduled : %s\n", emptyPlaceholder(strings.Join(others, ", "))))
	}
	if t.IsCompleted() {
		done := "yes"
		if t.CompletedAt != nil {
			done = t.CompletedAt.Local().Format("2006-01-02 15:04")
		}
		b.WriteString(fmt.Sprintf("Completed : %s\n", done))
		if t.CompletionNotes != "" {
			b.WriteString(fmt.Sprintf("Result    : %s\n", t.CompletionNotes))
		}
		if t.CompletionLinks != "" {
			b.WriteString(fmt.Sprintf("Result at : %s\n", t.CompletionLinks))
		}
	}
	return b.String()
}

func longDay(key string) string {
	t, err := dates.Parse(key, time.UTC)
	if err != nil {
		return key
	}
	return t.Format("Monday, January 2, 2006")
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
}
