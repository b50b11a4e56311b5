package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"planboard/internal/app"
	"planboard/internal/config"
	"planboard/internal/dates"
	"planboard/internal/document"
	"planboard/internal/planner"
)

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirm
)

type view int

const (
	viewDay view = iota
	viewProjects
)

// savedMsg carries the result of a background save.
type savedMsg struct {
	report app.Report
}

type confirmState struct {
	prompt string
	intent planner.Intent
}

type Model struct {
	session *app.Session
	cfg     config.Config

	view     view
	mode     mode
	day      string
	cursor   int
	showDone bool
	filter   planner.Filter

	tasks []planner.TaskView
	rows  []projectRow

	input   textinput.Model
	form    *formState
	confirm *confirmState
	status  string
	width   int
}

func New(session *app.Session, cfg config.Config) Model {
	ti := textinput.New()
	ti.CharLimit = 512
	ti.Width = 50

	m := Model{
		session:  session,
		cfg:      cfg,
		day:      session.Planner().Today(),
		showDone: true,
		input:    ti,
		status:   fmt.Sprintf("Press '%s' to add a task, '%s' for projects.", cfg.Keys.Add, cfg.Keys.Projects),
	}
	m.refresh()
	return m
}

func Run(session *app.Session, cfg config.Config, notice string) error {
	m := New(session, cfg)
	if notice != "" {
		m.status = notice
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeForm:
			return m.updateFormMode(msg.String(), msg)
		case modeConfirm:
			return m.updateConfirm(msg.String())
		}
		if msg.String() == "ctrl+c" || msg.String() == m.cfg.Keys.Quit {
			return m, tea.Quit
		}
		if m.view == viewProjects {
			return m.updateProjectsView(msg.String())
		}
		return m.updateDayView(msg.String())
	case savedMsg:
		if notice := msg.report.Notice(); notice != "" {
			m.status = notice
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-30, 20)
	}
	return m, nil
}

// refresh re-queries everything the current view shows.
func (m *Model) refresh() {
	p := m.session.Planner()
	m.tasks = p.FilteredTasksForDate(m.day, m.showDone, m.filter)
	m.rows = projectRows(p)
	m.cursor = clampCursor(m.cursor, m.itemCount())
}

func (m Model) itemCount() int {
	if m.view == viewProjects {
		return len(m.rows)
	}
	return len(m.tasks)
}

// apply runs an intent through the session and starts its save. ok is false
// when nothing was applied.
func (m Model) apply(in planner.Intent, guarded bool) (Model, tea.Cmd, bool) {
	var (
		out app.Outcome
		err error
	)
	if guarded {
		out, err = m.session.Submit(in)
	} else {
		out, err = m.session.Do(in)
	}
	if err != nil {
		m.status = fmt.Sprintf("Error: %v", err)
		return m, nil, false
	}
	if out.Skipped {
		m.status = "Still saving the previous change, try again"
		return m, nil, false
	}
	m.status = out.Notice
	m.refresh()
	session := m.session
	return m, func() tea.Msg {
		return savedMsg{report: session.Persist(context.Background(), out)}
	}, true
}

func (m Model) do(in planner.Intent) (tea.Model, tea.Cmd) {
	next, cmd, _ := m.apply(in, false)
	return next, cmd
}

func (m Model) selectedTask() (planner.TaskView, bool) {
	if m.view != viewDay || len(m.tasks) == 0 {
		return planner.TaskView{}, false
	}
	return m.tasks[clampCursor(m.cursor, len(m.tasks))], true
}

func (m Model) updateDayView(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case k.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(m.tasks))
	case k.Up, "up":
		m.cursor = clampCursor(m.cursor-1, len(m.tasks))
	case k.PrevDay, "left":
		return m.shiftDay(-1), nil
	case k.NextDay, "right":
		return m.shiftDay(1), nil
	case k.Today:
		m.day, m.cursor = m.session.Planner().Today(), 0
		m.refresh()
	case k.Projects, "tab":
		m.view, m.cursor = viewProjects, 0
		m.refresh()
	case k.ShowDone:
		m.showDone = !m.showDone
		m.refresh()
		if m.showDone {
			m.status = "Showing completed tasks"
		} else {
			m.status = "Hiding completed tasks"
		}
	case k.Filter:
		m.filter = m.nextFilter()
		m.cursor = 0
		m.refresh()
		m.status = "Filter: " + m.filterLabel()
	case k.GoToDate:
		return m.openForm(newForm(formGoTo, lblDate).set(lblDate, m.day))
	case k.History:
		return m.openForm(newForm(formHistory, lblDate).set(lblDate, dates.Yesterday(m.session.Planner().Now())))
	case k.DailyNote:
		f := newForm(formDailyNote, lblText).set(lblText, m.session.Planner().Document().DailyNotes[m.day])
		f.date = m.day
		return m.openForm(f)
	case k.Export:
		month := m.day[:7]
		return m.openForm(newForm(formExport, lblMonth, lblFormat).set(lblMonth, month).set(lblFormat, m.cfg.ExportFormat))
	case k.Add:
		return m.openForm(taskForm(formStandalone).set(lblSchedule, m.day).set(lblPriority, string(document.PriorityMedium)))
	default:
		return m.updateDayTask(key)
	}
	return m, nil
}

// updateDayTask handles keys that act on the selected task.
func (m Model) updateDayTask(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	t, ok := m.selectedTask()
	if !ok {
		return m, nil
	}
	switch key {
	case k.Toggle:
		return m.do(planner.Toggle{Key: t.Key(), Date: m.day})
	case k.Confirm, "enter":
		if t.IsCompleted() {
			return m.do(planner.Reopen{Key: t.Key(), Date: m.day})
		}
		f := newForm(formComplete, lblNotes, lblLinks)
		f.key, f.date = t.Key(), m.day
		return m.openForm(f)
	case k.Remove:
		m.mode = modeConfirm
		m.confirm = &confirmState{
			prompt: fmt.Sprintf("Remove \"%s\" from %s? y/n", t.Title, m.day),
			intent: planner.RemoveFromDay{Key: t.Key(), Date: m.day},
		}
		m.status = m.confirm.prompt
	case k.Reschedule:
		f := newForm(formReschedule, lblDate).set(lblDate, dates.Tomorrow(m.session.Planner().Now()))
		f.key, f.date = t.Key(), m.day
		return m.openForm(f)
	case k.MoveUp, k.MoveDown:
		return m.move(t, key == k.MoveUp)
	case k.Notes:
		f := newForm(formNotes, lblNotes, lblLinks).set(lblNotes, t.Notes).set(lblLinks, t.Links)
		f.key, f.date = t.Key(), m.day
		return m.openForm(f)
	case k.Edit:
		if t.Kind != planner.KindStandalone {
			m.status = "Edit project tasks from the projects view"
			return m, nil
		}
		f := newForm(formEditStandalone, lblTitle, lblDescription, lblPriority).
			set(lblTitle, t.Title).set(lblDescription, t.Description).set(lblPriority, string(t.Priority))
		f.id, f.date = t.ID, m.day
		return m.openForm(f)
	}
	return m, nil
}

// move swaps the selected task with its neighbour through a reorder.
func (m Model) move(t planner.TaskView, up bool) (tea.Model, tea.Cmd) {
	i := clampCursor(m.cursor, len(m.tasks))
	j := i + 1
	if up {
		j = i - 1
	}
	if j < 0 || j >= len(m.tasks) {
		return m, nil
	}
	next, cmd, ok := m.apply(planner.Reorder{Date: m.day, FromDate: t.Date, Dragged: t.Key(), Target: m.tasks[j].Key()}, false)
	if ok {
		for idx, v := range next.tasks {
			if v.Key() == t.Key() {
				next.cursor = idx
			}
		}
	}
	return next, cmd
}

func (m Model) shiftDay(n int) Model {
	day, err := dates.AddDays(m.day, n)
	if err != nil {
		m.status = err.Error()
		return m
	}
	m.day, m.cursor = day, 0
	m.refresh()
	return m
}

// nextFilter cycles through no filter and each active project.
func (m Model) nextFilter() planner.Filter {
	projects := m.session.Planner().Projects(false)
	if m.filter.Empty() {
		if len(projects) == 0 {
			return planner.Filter{}
		}
		return planner.Filter{ProjectID: projects[0].ID}
	}
	for i, p := range projects {
		if p.ID == m.filter.ProjectID && i+1 < len(projects) {
			return planner.Filter{ProjectID: projects[i+1].ID}
		}
	}
	return planner.Filter{}
}

func (m Model) filterLabel() string {
	if m.filter.Empty() {
		return "all tasks"
	}
	if p := m.session.Planner().Document().Project(m.filter.ProjectID); p != nil {
		return p.Name
	}
	return m.filter.ProjectID
}

func (m Model) updateConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel:
		m.mode, m.confirm = modeList, nil
		m.status = "Cancelled"
		return m, nil
	case "y", "Y":
		in := m.confirm.intent
		m.mode, m.confirm = modeList, nil
		return m.do(in)
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	if m.view == viewProjects {
		b.WriteString(m.renderProjects())
	} else {
		b.WriteString(m.renderDay())
	}

	b.WriteString("\n")
	if m.form != nil {
		b.WriteString(m.renderForm())
		b.WriteString("\n")
	} else if m.view == viewDay {
		b.WriteString(m.renderDetail())
	}

	b.WriteString("\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	if m.view == viewProjects {
		b.WriteString(helpStyle.Render(projectsHelp(m.cfg.Keys)))
	} else {
		b.WriteString(helpStyle.Render(dayHelp(m.cfg.Keys)))
	}
	return b.String()
}

func dayHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s/%s day • %s today • %s add • %s toggle • enter complete • %s remove • %s reschedule • %s/%s reorder • %s notes • %s day note • %s filter • %s go to • %s history • %s export • %s projects • %s quit",
		k.Up, k.Down, k.PrevDay, k.NextDay, k.Today, k.Add, spaceName(k.Toggle), k.Remove, k.Reschedule, k.MoveUp, k.MoveDown, k.Notes, k.DailyNote, k.Filter, k.GoToDate, k.History, k.Export, k.Projects, k.Quit)
}

func spaceName(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
