package document

import "sort"

const CurrentVersion = 2

type migration struct {
	version int
	name    string
	apply   func(*Document)
}

var migrations = []migration{
	{version: 1, name: "ensure-collections", apply: ensureCollections},
	{version: 2, name: "single-date-references", apply: dedupeReferences},
}

// Migrate upgrades d in place and returns the names of the steps that ran.
// Collections are always re-checked, whatever version the document claims.
func Migrate(d *Document) []string {
	var applied []string
	for _, m := range migrations {
		if d.SchemaVersion >= m.version {
			continue
		}
		m.apply(d)
		d.SchemaVersion = m.version
		applied = append(applied, m.name)
	}
	ensureCollections(d)
	return applied
}

func ensureCollections(d *Document) {
	if d.Projects == nil {
		d.Projects = []Project{}
	}
	if d.DailyLists == nil {
		d.DailyLists = map[string][]StandaloneTask{}
	}
	if d.ScheduledItems == nil {
		d.ScheduledItems = map[string][]ScheduledRef{}
	}
	if d.TaskOrder == nil {
		d.TaskOrder = map[string][]string{}
	}
	if d.CompletedTasks == nil {
		d.CompletedTasks = []CompletionRecord{}
	}
	if d.DailyNotes == nil {
		d.DailyNotes = map[string]string{}
	}
	for i := range d.Projects {
		p := &d.Projects[i]
		if p.Tasks == nil {
			p.Tasks = []Task{}
		}
		if p.ProgressUpdates == nil {
			p.ProgressUpdates = []ProgressUpdate{}
		}
		for j := range p.Tasks {
			t := &p.Tasks[j]
			t.Priority = t.Priority.Normalize()
			if t.Subtasks == nil {
				t.Subtasks = []Subtask{}
			}
		}
	}
	for date, list := range d.DailyLists {
		for i := range list {
			list[i].Priority = list[i].Priority.Normalize()
		}
		if len(list) == 0 {
			delete(d.DailyLists, date)
		}
	}
	for date, refs := range d.ScheduledItems {
		if len(refs) == 0 {
			delete(d.ScheduledItems, date)
		}
	}
	for date, order := range d.TaskOrder {
		if len(order) == 0 {
			delete(d.TaskOrder, date)
		}
	}
}

type refTriple struct {
	projectID, taskID, subtaskID string
}

// dedupeReferences repairs documents written before scheduling enforced a
// single date per task: the most recently scheduled reference survives.
func dedupeReferences(d *Document) {
	type location struct {
		date string
		at   int
	}
	keep := map[refTriple]location{}

	days := make([]string, 0, len(d.ScheduledItems))
	for date := range d.ScheduledItems {
		days = append(days, date)
	}
	sort.Strings(days)

	for _, date := range days {
		for i, ref := range d.ScheduledItems[date] {
			k := refTriple{ref.ProjectID, ref.TaskID, ref.SubtaskID}
			prev, seen := keep[k]
			if !seen {
				keep[k] = location{date, i}
				continue
			}
			prevRef := d.ScheduledItems[prev.date][prev.at]
			if !ref.ScheduledAt.Before(prevRef.ScheduledAt) {
				keep[k] = location{date, i}
			}
		}
	}

	for _, date := range days {
		refs := d.ScheduledItems[date]
		kept := refs[:0:0]
		for i, ref := range refs {
			loc := keep[refTriple{ref.ProjectID, ref.TaskID, ref.SubtaskID}]
			if loc.date == date && loc.at == i {
				kept = append(kept, ref)
			}
		}
		if len(kept) == 0 {
			delete(d.ScheduledItems, date)
			continue
		}
		d.ScheduledItems[date] = kept
	}
}
