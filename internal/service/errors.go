package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check them with errors.Is; the API layer maps them to status codes.
var (
	// ErrIdentityResolution indicates the acting user could not be loaded.
	// No mutation, audit entry or broadcast happens after it.
	ErrIdentityResolution = errors.New("failed to resolve acting user")
)

// ConflictError reports a rejected versioned write. Current is the
// authoritative stored task; Client is the rejected payload, nil when the
// conflict came from a concurrent write during smart assignment.
type ConflictError struct {
	Current *domain.TaskView
	Client  *UpdateTaskInput
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	if e.Current == nil || e.Current.Task == nil {
		return "version conflict"
	}
	if e.Client == nil {
		return fmt.Sprintf("version conflict on task %s: stored version %d",
			e.Current.Task.ID, e.Current.Task.Version)
	}
	return fmt.Sprintf("version conflict on task %s: stored version %d, client version %d",
		e.Current.Task.ID, e.Current.Task.Version, e.Client.Version)
}

// Unwrap lets errors.Is(err, store.ErrVersionConflict) match.
func (e *ConflictError) Unwrap() error {
	return store.ErrVersionConflict
}

// TaskServiceError wraps errors from the task service with context.
type TaskServiceError struct {
	// Operation is the operation that failed (e.g., "create_task", "smart_assign")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError wraps err with operation context. Expected outcomes
// (not found, duplicate title, validation, conflict, identity) are returned
// as they are so callers can match them directly.
func NewTaskServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	var conflict *ConflictError
	switch {
	case errors.As(err, &conflict):
		return conflict
	case errors.Is(err, ErrIdentityResolution),
		errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrDuplicateTitle),
		errors.Is(err, domain.ErrValidation):
		return err
	}

	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
