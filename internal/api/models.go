package api

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/service"
)

// Pagination bounds for the action log endpoint.
const (
	DefaultActionLimit = 20
	MaxActionLimit     = 100
)

// CreateTaskRequest defines the payload for POST /api/tasks.
type CreateTaskRequest struct {
	Title       string              `json:"title"       validate:"required,max=200"`
	Description string              `json:"description" validate:"max=2000"`
	Status      domain.TaskStatus   `json:"status"      validate:"omitempty,oneof=Todo 'In Progress' Done"`
	Priority    domain.TaskPriority `json:"priority"    validate:"omitempty,oneof=Low Medium High"`
}

// Normalize trims the title before validation.
func (r *CreateTaskRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
}

// Input converts the request to the service input.
func (r *CreateTaskRequest) Input() service.CreateTaskInput {
	return service.CreateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
	}
}

// UpdateTaskRequest defines the payload for PUT /api/tasks/{id}. It is a full
// replacement of the editable fields; Version is the version the client last
// read.
type UpdateTaskRequest struct {
	Title       string              `json:"title"       validate:"required,max=200"`
	Description string              `json:"description" validate:"max=2000"`
	Status      domain.TaskStatus   `json:"status"      validate:"required,oneof=Todo 'In Progress' Done"`
	Priority    domain.TaskPriority `json:"priority"    validate:"required,oneof=Low Medium High"`
	Version     int                 `json:"version"     validate:"required,gte=1"`
}

// Normalize trims the title before validation.
func (r *UpdateTaskRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
}

// Input converts the request to the service input.
func (r *UpdateTaskRequest) Input() service.UpdateTaskInput {
	return service.UpdateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		Version:     r.Version,
	}
}

// ConflictResponse is the 409 body of a rejected versioned write.
// CurrentVersion is the authoritative task; ClientVersion echoes the
// rejected payload and is null for smart-assign conflicts.
type ConflictResponse struct {
	Error          string                   `json:"error"`
	CurrentVersion *domain.TaskView         `json:"current_version"`
	ClientVersion  *service.UpdateTaskInput `json:"client_version"`
	TraceID        string                   `json:"trace_id,omitempty"`
}

// ActionLogResponse is the public form of an action log entry.
type ActionLogResponse struct {
	ID        uuid.UUID `json:"id"`
	Action    string    `json:"action"`
	UserID    uuid.UUID `json:"user_id"`
	TaskID    uuid.UUID `json:"task_id"`
	CreatedAt time.Time `json:"created_at"`
}

func actionLogToResponse(entry *domain.ActionLog) ActionLogResponse {
	return ActionLogResponse{
		ID:        entry.ID,
		Action:    entry.Action,
		UserID:    entry.UserID,
		TaskID:    entry.TaskID,
		CreatedAt: entry.CreatedAt,
	}
}
