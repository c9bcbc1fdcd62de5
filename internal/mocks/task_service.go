package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/service"
)

// MockTaskService implements service.TaskService for handler tests. Methods
// without a function field set return zero values.
type MockTaskService struct {
	ListTasksFn     func(ctx context.Context) ([]*domain.TaskView, error)
	GetTaskFn       func(ctx context.Context, id uuid.UUID) (*domain.TaskView, error)
	CreateTaskFn    func(ctx context.Context, actorID uuid.UUID, input service.CreateTaskInput) (*domain.TaskView, error)
	UpdateTaskFn    func(ctx context.Context, actorID, id uuid.UUID, input service.UpdateTaskInput) (*domain.TaskView, error)
	DeleteTaskFn    func(ctx context.Context, actorID, id uuid.UUID) error
	SmartAssignFn   func(ctx context.Context, actorID, id uuid.UUID) (*domain.TaskView, error)
	RecentActionsFn func(ctx context.Context, limit int) ([]*domain.ActionLog, error)
}

// ListTasks implements service.TaskService
func (m *MockTaskService) ListTasks(ctx context.Context) ([]*domain.TaskView, error) {
	if m.ListTasksFn != nil {
		return m.ListTasksFn(ctx)
	}
	return nil, nil
}

// GetTask implements service.TaskService
func (m *MockTaskService) GetTask(ctx context.Context, id uuid.UUID) (*domain.TaskView, error) {
	if m.GetTaskFn != nil {
		return m.GetTaskFn(ctx, id)
	}
	return nil, nil
}

// CreateTask implements service.TaskService
func (m *MockTaskService) CreateTask(
	ctx context.Context,
	actorID uuid.UUID,
	input service.CreateTaskInput,
) (*domain.TaskView, error) {
	if m.CreateTaskFn != nil {
		return m.CreateTaskFn(ctx, actorID, input)
	}
	return nil, nil
}

// UpdateTask implements service.TaskService
func (m *MockTaskService) UpdateTask(
	ctx context.Context,
	actorID, id uuid.UUID,
	input service.UpdateTaskInput,
) (*domain.TaskView, error) {
	if m.UpdateTaskFn != nil {
		return m.UpdateTaskFn(ctx, actorID, id, input)
	}
	return nil, nil
}

// DeleteTask implements service.TaskService
func (m *MockTaskService) DeleteTask(ctx context.Context, actorID, id uuid.UUID) error {
	if m.DeleteTaskFn != nil {
		return m.DeleteTaskFn(ctx, actorID, id)
	}
	return nil
}

// SmartAssign implements service.TaskService
func (m *MockTaskService) SmartAssign(ctx context.Context, actorID, id uuid.UUID) (*domain.TaskView, error) {
	if m.SmartAssignFn != nil {
		return m.SmartAssignFn(ctx, actorID, id)
	}
	return nil, nil
}

// RecentActions implements service.TaskService
func (m *MockTaskService) RecentActions(ctx context.Context, limit int) ([]*domain.ActionLog, error) {
	if m.RecentActionsFn != nil {
		return m.RecentActionsFn(ctx, limit)
	}
	return nil, nil
}

var _ service.TaskService = (*MockTaskService)(nil)
