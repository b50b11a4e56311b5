package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"planboard/internal/dates"
	"planboard/internal/planner"
	"planboard/internal/report"
)

type formKind int

const (
	formStandalone formKind = iota
	formEditStandalone
	formProject
	formTask
	formSubtask
	formNotes
	formComplete
	formSchedule
	formReschedule
	formGoTo
	formHistory
	formDailyNote
	formProgress
	formExport
)

var formTitles = map[formKind]string{
	formStandalone:     "New task",
	formEditStandalone: "Edit task",
	formProject:        "Project",
	formTask:           "Project task",
	formSubtask:        "Subtask",
	formNotes:          "Notes",
	formComplete:       "Complete task",
	formSchedule:       "Schedule",
	formReschedule:     "Reschedule",
	formGoTo:           "Go to date",
	formHistory:        "Review a past day",
	formDailyNote:      "Daily note",
	formProgress:       "Progress update",
	formExport:         "Export month",
}

type field struct {
	label string
	value string
}

// formState is the field-by-field editor used for every input in the board.
type formState struct {
	kind   formKind
	fields []field
	index  int

	// Targets of the submission, filled by whoever opened the form.
	id        string
	date      string
	projectID string
	taskID    string
	subtaskID string
	key       planner.TaskKey
}

func newForm(kind formKind, labels ...string) *formState {
	f := &formState{kind: kind}
	for _, l := range labels {
		f.fields = append(f.fields, field{label: l})
	}
	return f
}

func (f *formState) set(label, value string) *formState {
	for i := range f.fields {
		if f.fields[i].label == label {
			f.fields[i].value = value
		}
	}
	return f
}

func (f *formState) value(label string) string {
	for _, fl := range f.fields {
		if fl.label == label {
			return strings.TrimSpace(fl.value)
		}
	}
	return ""
}

func (f *formState) current() field {
	return f.fields[f.index]
}

func (f *formState) last() bool {
	return f.index >= len(f.fields)-1
}

const (
	lblTitle       = "title"
	lblDescription = "description"
	lblPriority    = "priority (high/medium/low)"
	lblSchedule    = "schedule (today/tomorrow/next-week/YYYY-MM-DD)"
	lblName        = "name"
	lblColor       = "color (#rrggbb)"
	lblNotes       = "notes"
	lblLinks       = "links"
	lblDate        = "date (YYYY-MM-DD)"
	lblSubtasks    = "include subtasks (y/n)"
	lblText        = "text"
	lblMonth       = "month (YYYY-MM)"
	lblFormat      = "format (text/markdown/json/yaml)"
)

func taskForm(kind formKind) *formState {
	return newForm(kind, lblTitle, lblDescription, lblPriority, lblSchedule)
}

func (m Model) openForm(f *formState) (tea.Model, tea.Cmd) {
	m.form = f
	m.mode = modeForm
	m.input.SetValue(f.current().value)
	m.input.Placeholder = f.current().label
	m.input.Focus()
	m.status = m.formPrompt()
	return m, nil
}

func (m Model) formPrompt() string {
	if m.form == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s (field %d of %d). Enter to advance, Esc to cancel, tab to move.",
		formTitles[m.form.kind], m.form.current().label, m.form.index+1, len(m.form.fields))
}

func (m Model) closeForm(status string) Model {
	m.form = nil
	m.mode = modeList
	m.input.SetValue("")
	m.input.Blur()
	m.status = status
	return m
}

func (m Model) updateFormMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		return m.closeForm("Cancelled"), nil
	case "tab", "down":
		m.moveField(1)
		return m, nil
	case "shift+tab", "up":
		m.moveField(-1)
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.form.fields[m.form.index].value = m.input.Value()
		if m.form.last() {
			return m.submitForm()
		}
		m.form.index++
		m.input.SetValue(m.form.current().value)
		m.input.Placeholder = m.form.current().label
		m.status = m.formPrompt()
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) moveField(delta int) {
	m.form.fields[m.form.index].value = m.input.Value()
	m.form.index = wrapIndex(m.form.index+delta, len(m.form.fields))
	m.input.SetValue(m.form.current().value)
	m.input.Placeholder = m.form.current().label
	m.status = m.formPrompt()
}

// submitForm turns the finished form into an intent. Navigation and export
// forms act on the view directly.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	f := m.form
	p := m.session.Planner()

	switch f.kind {
	case formGoTo:
		date, err := dates.Resolve(f.value(lblDate), p.Now())
		if err != nil {
			m.status = fmt.Sprintf("Invalid date: %v", err)
			return m, nil
		}
		m = m.closeForm("Showing " + date)
		m.day, m.cursor = date, 0
		m.refresh()
		return m, nil
	case formHistory:
		date := f.value(lblDate)
		if err := dates.RequirePast(date, p.Today()); err != nil {
			m.status = "Pick a date before today: " + err.Error()
			return m, nil
		}
		m = m.closeForm("Reviewing " + date)
		m.view, m.day, m.cursor = viewDay, date, 0
		m.showDone = true
		m.refresh()
		return m, nil
	case formExport:
		return m.export(f)
	}

	in, err := m.formIntent(f)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	next, cmd, ok := m.apply(in, true)
	if ok {
		next = next.closeForm(next.status)
	}
	return next, cmd
}

func (m Model) formIntent(f *formState) (planner.Intent, error) {
	input := planner.TaskInput{
		Title:       f.value(lblTitle),
		Description: f.value(lblDescription),
		Priority:    planner.ParsePriority(f.value(lblPriority)),
		Schedule:    f.value(lblSchedule),
	}
	switch f.kind {
	case formStandalone:
		return planner.SaveTask{Input: input}, nil
	case formEditStandalone:
		return planner.SaveTask{ID: f.id, Date: f.date, Input: input}, nil
	case formTask:
		return planner.SaveTask{ProjectID: f.projectID, ID: f.taskID, Input: input}, nil
	case formSubtask:
		return planner.SaveTask{ProjectID: f.projectID, ParentID: f.taskID, Input: input}, nil
	case formProject:
		return planner.SaveProject{ID: f.projectID, Name: f.value(lblName), Description: f.value(lblDescription), Color: f.value(lblColor)}, nil
	case formNotes:
		return planner.SaveNotes{Key: f.key, Date: f.date, Notes: f.value(lblNotes), Links: f.value(lblLinks)}, nil
	case formComplete:
		return planner.Complete{Key: f.key, Date: f.date, Notes: f.value(lblNotes), Links: f.value(lblLinks)}, nil
	case formSchedule:
		date, err := dates.Resolve(f.value(lblDate), m.session.Planner().Now())
		if err != nil {
			return nil, fmt.Errorf("invalid date: %w", err)
		}
		return planner.Schedule{ProjectID: f.projectID, TaskID: f.taskID, SubtaskID: f.subtaskID, Date: date, IncludeSubtasks: parseYN(f.value(lblSubtasks))}, nil
	case formReschedule:
		date, err := dates.Resolve(f.value(lblDate), m.session.Planner().Now())
		if err != nil {
			return nil, fmt.Errorf("invalid date: %w", err)
		}
		return planner.Reschedule{Key: f.key, From: f.date, To: date}, nil
	case formDailyNote:
		return planner.SetDailyNote{Date: f.date, Text: f.value(lblText)}, nil
	case formProgress:
		return planner.AddProgress{ProjectID: f.projectID, Text: f.value(lblText)}, nil
	}
	return nil, fmt.Errorf("unknown form %d", f.kind)
}

func (m Model) export(f *formState) (tea.Model, tea.Cmd) {
	year, month, err := dates.ParseMonth(f.value(lblMonth))
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	format, err := report.ParseFormat(f.value(lblFormat))
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	r := report.Build(m.session.Planner().Snapshot(), year, month, time.Local)
	path, err := report.Write(m.cfg.ExportDir, r, format)
	if err != nil {
		m.status = fmt.Sprintf("Export failed: %v", err)
		return m, nil
	}
	return m.closeForm(fmt.Sprintf("Report exported to %s (%d tasks)", path, len(r.Entries))), nil
}

func (m Model) renderForm() string {
	if m.form == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(formTitles[m.form.kind]))
	b.WriteString("\n")
	for i, fl := range m.form.fields {
		prefix := " "
		if i == m.form.index {
			prefix = ">"
		}
		val := fl.value
		if i == m.form.index {
			val = m.input.View()
		} else if strings.TrimSpace(val) == "" {
			val = "(empty)"
		}
		b.WriteString(fmt.Sprintf("%s %-16s : %s\n", prefix, truncateLabel(fl.label), val))
	}
	return formStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func truncateLabel(label string) string {
	if i := strings.Index(label, " ("); i > 0 {
		return label[:i]
	}
	return label
}

func parseYN(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "y" || v == "yes" || v == "true" || v == "1"
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}
