package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TaskView is a task with its assignee resolved to a user.
// Assignee is nil when the task is unassigned or the referenced user no
// longer exists.
type TaskView struct {
	Task     *Task
	Assignee *User
}

// AssigneeRef is the public form of an assigned user.
type AssigneeRef struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// taskViewJSON is the wire shape shared by REST responses and realtime events.
type taskViewJSON struct {
	ID           uuid.UUID    `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Status       TaskStatus   `json:"status"`
	Priority     TaskPriority `json:"priority"`
	AssignedUser *AssigneeRef `json:"assigned_user"`
	CreatedBy    uuid.UUID    `json:"created_by"`
	LastModified time.Time    `json:"last_modified"`
	Version      int          `json:"version"`
}

// AssigneeUsername returns the assignee's username, or "" when unassigned.
func (v *TaskView) AssigneeUsername() string {
	if v == nil || v.Assignee == nil {
		return ""
	}
	return v.Assignee.Username
}

// MarshalJSON renders the view in its public wire shape.
func (v TaskView) MarshalJSON() ([]byte, error) {
	if v.Task == nil {
		return []byte("null"), nil
	}

	out := taskViewJSON{
		ID:           v.Task.ID,
		Title:        v.Task.Title,
		Description:  v.Task.Description,
		Status:       v.Task.Status,
		Priority:     v.Task.Priority,
		CreatedBy:    v.Task.CreatedBy,
		LastModified: v.Task.LastModified,
		Version:      v.Task.Version,
	}
	if v.Assignee != nil {
		out.AssignedUser = &AssigneeRef{ID: v.Assignee.ID, Username: v.Assignee.Username}
	}

	return json.Marshal(out)
}
