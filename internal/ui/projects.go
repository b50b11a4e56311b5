package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"planboard/internal/config"
	"planboard/internal/document"
	"planboard/internal/planner"
)

type rowKind int

const (
	rowProject rowKind = iota
	rowTask
	rowSubtask
)

// projectRow is one line of the flattened project tree.
type projectRow struct {
	kind      rowKind
	projectID string
	taskID    string
	subtaskID string

	title       string
	description string
	priority    document.Priority
	color       string
	archived    bool
	done        bool
	notes       string
	links       string
	subtasks    int
	progress    string
	dates       []string
}

func (r projectRow) key() planner.TaskKey {
	return planner.ProjectKey(r.projectID, r.taskID, r.subtaskID)
}

// projectRows lists active projects first, then archived ones.
func projectRows(p *planner.Planner) []projectRow {
	var rows []projectRow
	for _, archived := range []bool{false, true} {
		for _, pr := range p.Projects(archived) {
			row := projectRow{
				kind:        rowProject,
				projectID:   pr.ID,
				title:       pr.Name,
				description: pr.Description,
				color:       pr.Color,
				archived:    pr.Archived,
			}
			if n := len(pr.ProgressUpdates); n > 0 {
				row.progress = pr.ProgressUpdates[n-1].Text
			}
			rows = append(rows, row)
			for _, t := range pr.Tasks {
				rows = append(rows, projectRow{
					kind:        rowTask,
					projectID:   pr.ID,
					taskID:      t.ID,
					title:       t.Title,
					description: t.Description,
					priority:    t.Priority,
					color:       pr.Color,
					archived:    pr.Archived,
					done:        t.Completed,
					notes:       t.Notes,
					links:       t.Links,
					subtasks:    len(t.Subtasks),
					dates:       p.ScheduledDates(pr.ID, t.ID, ""),
				})
				for _, st := range t.Subtasks {
					rows = append(rows, projectRow{
						kind:      rowSubtask,
						projectID: pr.ID,
						taskID:    t.ID,
						subtaskID: st.ID,
						title:     st.Title,
						priority:  st.Priority,
						color:     pr.Color,
						archived:  pr.Archived,
						done:      st.Completed,
						notes:     st.Notes,
						links:     st.Links,
						dates:     p.ScheduledDates(pr.ID, t.ID, st.ID),
					})
				}
			}
		}
	}
	return rows
}

func (m Model) selectedRow() (projectRow, bool) {
	if len(m.rows) == 0 {
		return projectRow{}, false
	}
	return m.rows[clampCursor(m.cursor, len(m.rows))], true
}

func (m Model) updateProjectsView(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case k.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(m.rows))
		return m, nil
	case k.Up, "up":
		m.cursor = clampCursor(m.cursor-1, len(m.rows))
		return m, nil
	case k.Projects, "tab":
		m.view, m.cursor = viewDay, 0
		m.refresh()
		return m, nil
	case k.AddProject:
		return m.openForm(newForm(formProject, lblName, lblDescription, lblColor).set(lblColor, planner.DefaultProjectColor))
	}

	r, ok := m.selectedRow()
	if !ok {
		return m, nil
	}
	switch key {
	case k.Add:
		f := taskForm(formTask).set(lblPriority, string(document.PriorityMedium))
		f.projectID = r.projectID
		return m.openForm(f)
	case k.AddSubtask:
		if r.kind == rowProject {
			m.status = "Select a task to add a subtask"
			return m, nil
		}
		f := taskForm(formSubtask).set(lblPriority, string(document.PriorityMedium))
		f.projectID, f.taskID = r.projectID, r.taskID
		return m.openForm(f)
	case k.Edit:
		switch r.kind {
		case rowProject:
			f := newForm(formProject, lblName, lblDescription, lblColor).
				set(lblName, r.title).set(lblDescription, r.description).set(lblColor, r.color)
			f.projectID = r.projectID
			return m.openForm(f)
		case rowTask:
			f := newForm(formTask, lblTitle, lblDescription, lblPriority).
				set(lblTitle, r.title).set(lblDescription, r.description).set(lblPriority, string(r.priority.Normalize()))
			f.projectID, f.taskID = r.projectID, r.taskID
			return m.openForm(f)
		}
		m.status = "Subtasks are renamed by deleting and adding them again"
	case k.Schedule:
		if r.kind == rowProject {
			m.status = "Select a task to schedule"
			return m, nil
		}
		labels := []string{lblDate}
		if r.kind == rowTask && r.subtasks > 0 {
			labels = append(labels, lblSubtasks)
		}
		f := newForm(formSchedule, labels...).set(lblDate, m.day).set(lblSubtasks, "n")
		f.projectID, f.taskID, f.subtaskID = r.projectID, r.taskID, r.subtaskID
		return m.openForm(f)
	case k.Toggle:
		if r.kind == rowProject {
			return m, nil
		}
		return m.do(planner.Toggle{Key: r.key()})
	case k.Notes:
		if r.kind == rowProject {
			return m, nil
		}
		f := newForm(formNotes, lblNotes, lblLinks).set(lblNotes, r.notes).set(lblLinks, r.links)
		f.key = r.key()
		return m.openForm(f)
	case k.Progress:
		f := newForm(formProgress, lblText)
		f.projectID = r.projectID
		return m.openForm(f)
	case k.Archive:
		return m.do(planner.ToggleArchive{ProjectID: r.projectID})
	case k.Delete:
		m.mode = modeConfirm
		switch r.kind {
		case rowProject:
			m.confirm = &confirmState{
				prompt: fmt.Sprintf("Delete project \"%s\" and all its tasks? y/n", r.title),
				intent: planner.DeleteProject{ProjectID: r.projectID},
			}
		default:
			m.confirm = &confirmState{
				prompt: fmt.Sprintf("Delete \"%s\"? y/n", r.title),
				intent: planner.DeleteTask{ProjectID: r.projectID, TaskID: r.taskID, SubtaskID: r.subtaskID},
			}
		}
		m.status = m.confirm.prompt
	}
	return m, nil
}

func (m Model) renderProjects() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Planboard • Projects"))
	b.WriteString("\n\n")
	if len(m.rows) == 0 {
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("No projects yet. Press '%s' to create one.", m.cfg.Keys.AddProject)))
		b.WriteString("\n")
		return b.String()
	}
	for i, r := range m.rows {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = ">"
		}
		var line string
		switch r.kind {
		case rowProject:
			name := projectStyle(r.color).Render("● " + r.title)
			if r.archived {
				name += subtitleStyle.Render(" (archived)")
			}
			line = fmt.Sprintf("%s %s %s", cursor, name, subtitleStyle.Render(m.projectProgress(r.projectID)))
			if r.progress != "" {
				line += subtitleStyle.Render(" • " + r.progress)
			}
		case rowTask, rowSubtask:
			indent := "  "
			if r.kind == rowSubtask {
				indent = "      "
			}
			checkbox := "[ ]"
			title := r.title
			if r.done {
				checkbox = "[x]"
				title = doneStyle.Render(title)
			}
			line = fmt.Sprintf("%s%s%s %s", cursor, indent, checkbox, title)
			if r.kind == rowTask {
				line += " " + priorityStyle(r.priority).Render(string(r.priority.Normalize()))
			}
			if len(r.dates) > 0 {
				line += subtitleStyle.Render(" @ " + strings.Join(r.dates, ", "))
			}
		}
		if m.cursor == i && m.mode == modeList {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// projectProgress renders "done/total" over tasks.
func (m Model) projectProgress(projectID string) string {
	p := m.session.Planner().Document().Project(projectID)
	if p == nil || len(p.Tasks) == 0 {
		return ""
	}
	done := 0
	for _, t := range p.Tasks {
		if t.Completed {
			done++
		}
	}
	return fmt.Sprintf("%d/%d done", done, len(p.Tasks))
}

func projectsHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s new project • %s add task • %s add subtask • %s edit • %s schedule • %s toggle • %s notes • %s progress • %s archive • %s delete • %s day view • %s quit",
		k.Up, k.Down, k.AddProject, k.Add, k.AddSubtask, k.Edit, k.Schedule, spaceName(k.Toggle), k.Notes, k.Progress, k.Archive, k.Delete, k.Projects, k.Quit)
}
