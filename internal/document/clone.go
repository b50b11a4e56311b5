package document

// Clone returns a deep copy that shares no slices, maps or pointers with d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		SchemaVersion:  d.SchemaVersion,
		Projects:       make([]Project, len(d.Projects)),
		DailyLists:     make(map[string][]StandaloneTask, len(d.DailyLists)),
		ScheduledItems: make(map[string][]ScheduledRef, len(d.ScheduledItems)),
		TaskOrder:      make(map[string][]string, len(d.TaskOrder)),
		CompletedTasks: append([]CompletionRecord(nil), d.CompletedTasks...),
		DailyNotes:     make(map[string]string, len(d.DailyNotes)),
		LastUpdated:    d.LastUpdated,
	}
	if out.CompletedTasks == nil {
		out.CompletedTasks = []CompletionRecord{}
	}
	for i, p := range d.Projects {
		out.Projects[i] = p.clone()
	}
	for date, list := range d.DailyLists {
		cp := make([]StandaloneTask, len(list))
		for i, t := range list {
			t.Completion = t.Completion.clone()
			cp[i] = t
		}
		out.DailyLists[date] = cp
	}
	for date, refs := range d.ScheduledItems {
		cp := make([]ScheduledRef, len(refs))
		for i, r := range refs {
			r.Completion = r.Completion.clone()
			cp[i] = r
		}
		out.ScheduledItems[date] = cp
	}
	for date, order := range d.TaskOrder {
		out.TaskOrder[date] = append([]string(nil), order...)
	}
	for date, note := range d.DailyNotes {
		out.DailyNotes[date] = note
	}
	return out
}

func (p Project) clone() Project {
	p.Tasks = cloneTasks(p.Tasks)
	p.ProgressUpdates = append([]ProgressUpdate{}, p.ProgressUpdates...)
	return p
}

func cloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		t.Completion = t.Completion.clone()
		subs := make([]Subtask, len(t.Subtasks))
		for j, st := range t.Subtasks {
			st.Completion = st.Completion.clone()
			subs[j] = st
		}
		t.Subtasks = subs
		out[i] = t
	}
	return out
}

func (c Completion) clone() Completion {
	if c.CompletedAt != nil {
		at := *c.CompletedAt
		c.CompletedAt = &at
	}
	return c
}
