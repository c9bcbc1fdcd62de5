package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskServiceError(t *testing.T) {
	cause := errors.New("database connection failed")

	err := &TaskServiceError{Operation: "create_task", Message: "failed to save task", Err: cause}
	assert.Equal(t, "task service create_task failed: failed to save task: database connection failed", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := &TaskServiceError{Operation: "create_service", Message: "tasks cannot be nil"}
	assert.Equal(t, "task service create_service failed: tasks cannot be nil", bare.Error())
}

func TestNewTaskServiceError(t *testing.T) {
	assert.NoError(t, NewTaskServiceError("op", "msg", nil))

	passthrough := []error{
		store.ErrTaskNotFound,
		fmt.Errorf("lookup: %w", store.ErrTaskNotFound),
		store.ErrDuplicateTitle,
		domain.NewValidationError("title", "cannot be empty"),
		fmt.Errorf("%w: user gone", ErrIdentityResolution),
	}
	for _, e := range passthrough {
		assert.Same(t, e, NewTaskServiceError("op", "msg", e), "expected %v to pass through", e)
	}

	conflict := &ConflictError{}
	assert.Same(t, conflict, NewTaskServiceError("op", "msg", fmt.Errorf("wrapped: %w", conflict)))

	wrapped := NewTaskServiceError("list_tasks", "failed to list tasks", errors.New("timeout"))
	var tsErr *TaskServiceError
	require.True(t, errors.As(wrapped, &tsErr))
	assert.Equal(t, "list_tasks", tsErr.Operation)
}

func TestConflictError(t *testing.T) {
	task := &domain.Task{ID: uuid.New(), Version: 4}
	err := &ConflictError{
		Current: &domain.TaskView{Task: task},
		Client:  &UpdateTaskInput{Version: 3},
	}

	assert.ErrorIs(t, err, store.ErrVersionConflict)
	assert.Contains(t, err.Error(), "stored version 4, client version 3")

	noClient := &ConflictError{Current: &domain.TaskView{Task: task}}
	assert.Contains(t, noClient.Error(), "stored version 4")
	assert.Equal(t, "version conflict", (&ConflictError{}).Error())
}
