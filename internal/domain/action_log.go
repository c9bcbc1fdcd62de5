package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyAction is returned when an action log has no description.
var ErrEmptyAction = errors.New("action cannot be empty")

// ActionLog is an append-only record of a successful task mutation.
// TaskID is not a foreign key: entries outlive the tasks they describe.
type ActionLog struct {
	ID        uuid.UUID `json:"id"`
	Action    string    `json:"action"`
	UserID    uuid.UUID `json:"user_id"`
	TaskID    uuid.UUID `json:"task_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewActionLog creates an ActionLog stamped with the current time.
func NewActionLog(action string, userID, taskID uuid.UUID) (*ActionLog, error) {
	entry := &ActionLog{
		ID:        uuid.New(),
		Action:    action,
		UserID:    userID,
		TaskID:    taskID,
		CreatedAt: time.Now().UTC(),
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks if the ActionLog has valid data.
func (a *ActionLog) Validate() error {
	if a.ID == uuid.Nil {
		return fmt.Errorf("%w: action log", ErrInvalidID)
	}
	if a.Action == "" {
		return ErrEmptyAction
	}
	if a.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if a.TaskID == uuid.Nil {
		return fmt.Errorf("%w: task", ErrInvalidID)
	}
	return nil
}

// CreatedAction describes a task creation.
func CreatedAction(title, actor string) string {
	return fmt.Sprintf("Created task: %s by %s", title, actor)
}

// UpdatedAction describes a task edit.
func UpdatedAction(title, actor string) string {
	return fmt.Sprintf("Updated task: %s by %s", title, actor)
}

// DeletedAction describes a task deletion.
func DeletedAction(title, actor string) string {
	return fmt.Sprintf("Deleted task: %s by %s", title, actor)
}

// AssignedAction describes a smart assignment. An empty assignee is
// recorded as Unassigned.
func AssignedAction(title, assignee, actor string) string {
	if assignee == "" {
		assignee = "Unassigned"
	}
	return fmt.Sprintf("Smart assigned task: %s to %s by %s", title, assignee, actor)
}
