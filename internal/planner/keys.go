package planner

import (
	"fmt"
	"strings"
)

// TaskKey identifies one logical task occurrence regardless of where the task
// is stored. Standalone tasks key by their own id, project tasks and subtasks
// by their (project, task[, subtask]) triple.
type TaskKey string

const (
	standalonePrefix = "standalone:"
	projectPrefix    = "project:"
)

func StandaloneKey(id string) TaskKey {
	return TaskKey(standalonePrefix + id)
}

func ProjectKey(projectID, taskID, subtaskID string) TaskKey {
	k := projectPrefix + projectID + ":" + taskID
	if subtaskID != "" {
		k += ":" + subtaskID
	}
	return TaskKey(k)
}

// Target is a parsed TaskKey.
type Target struct {
	Standalone bool
	ID         string

	ProjectID string
	TaskID    string
	SubtaskID string
}

func (t Target) Key() TaskKey {
	if t.Standalone {
		return StandaloneKey(t.ID)
	}
	return ProjectKey(t.ProjectID, t.TaskID, t.SubtaskID)
}

func (k TaskKey) Target() (Target, error) {
	s := string(k)
	switch {
	case strings.HasPrefix(s, standalonePrefix):
		id := strings.TrimPrefix(s, standalonePrefix)
		if id == "" {
			break
		}
		return Target{Standalone: true, ID: id}, nil
	case strings.HasPrefix(s, projectPrefix):
		parts := strings.Split(strings.TrimPrefix(s, projectPrefix), ":")
		if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
			break
		}
		t := Target{ProjectID: parts[0], TaskID: parts[1]}
		if len(parts) == 3 {
			if parts[2] == "" {
				break
			}
			t.SubtaskID = parts[2]
		}
		return t, nil
	}
	return Target{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
}
