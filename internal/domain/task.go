package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TaskStatus is the workflow state of a task.
type TaskStatus string

// Possible task status values. The strings are the wire values.
const (
	TaskStatusTodo       TaskStatus = "Todo"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusDone       TaskStatus = "Done"
)

// TaskPriority ranks a task.
type TaskPriority string

// Possible task priority values.
const (
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityHigh   TaskPriority = "High"
)

// Field limits for tasks.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
)

// InitialVersion is the version of a freshly created task.
const InitialVersion = 1

// Task is a shared, collaboratively edited work item.
// Version is the sole concurrency token: it starts at InitialVersion and
// increases by exactly one per accepted mutation.
type Task struct {
	ID             uuid.UUID    `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Status         TaskStatus   `json:"status"`
	Priority       TaskPriority `json:"priority"`
	AssignedUserID *uuid.UUID   `json:"assigned_user_id"`
	CreatedBy      uuid.UUID    `json:"created_by"`
	LastModified   time.Time    `json:"last_modified"`
	Version        int          `json:"version"`
}

// NewTask creates a Task owned by createdBy. Empty status and priority
// default to Todo and Medium. The title is trimmed.
// Returns an error if validation fails.
func NewTask(
	title, description string,
	status TaskStatus,
	priority TaskPriority,
	createdBy uuid.UUID,
) (*Task, error) {
	if status == "" {
		status = TaskStatusTodo
	}
	if priority == "" {
		priority = TaskPriorityMedium
	}

	task := &Task{
		ID:           uuid.New(),
		Title:        strings.TrimSpace(title),
		Description:  description,
		Status:       status,
		Priority:     priority,
		CreatedBy:    createdBy,
		LastModified: time.Now().UTC(),
		Version:      InitialVersion,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty")
	}

	if strings.TrimSpace(t.Title) == "" {
		return NewValidationError("title", "cannot be empty")
	}

	if utf8.RuneCountInString(t.Title) > MaxTitleLength {
		return NewValidationError("title", "exceeds 200 characters")
	}

	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return NewValidationError("description", "exceeds 2000 characters")
	}

	if !t.Status.IsValid() {
		return NewValidationError("status", "must be one of Todo, In Progress, Done")
	}

	if !t.Priority.IsValid() {
		return NewValidationError("priority", "must be one of Low, Medium, High")
	}

	if t.Version < InitialVersion {
		return NewValidationError("version", "must be positive")
	}

	return nil
}

// Revise replaces all four editable fields. On validation failure the task
// is left unchanged.
func (t *Task) Revise(title, description string, status TaskStatus, priority TaskPriority) error {
	revised := *t
	revised.Title = strings.TrimSpace(title)
	revised.Description = description
	revised.Status = status
	revised.Priority = priority

	if err := revised.Validate(); err != nil {
		return err
	}

	*t = revised
	return nil
}

// AssignTo sets the assignee; nil clears it.
func (t *Task) AssignTo(userID *uuid.UUID) {
	if userID == nil {
		t.AssignedUserID = nil
		return
	}
	id := *userID
	t.AssignedUserID = &id
}

// IsOpen reports whether the task counts toward its assignee's load.
func (t *Task) IsOpen() bool {
	return t.Status != TaskStatusDone
}

// IsValid reports whether s is a known status.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

// IsValid reports whether p is a known priority.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}
