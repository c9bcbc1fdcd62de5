package mocks

import (
	"context"
	"sync/atomic"

	"github.com/phrazzld/taskflow-api/internal/store"
)

// MockTaskTransactor implements store.TaskTransactor by running the unit of
// work directly against Tasks. Nothing is rolled back on failure.
type MockTaskTransactor struct {
	Tasks store.TaskStore

	// Err, when set, is returned without running the unit of work, as if
	// the transaction could not be opened.
	Err error

	calls atomic.Int32
}

// NewMockTaskTransactor creates a MockTaskTransactor over tasks.
func NewMockTaskTransactor(tasks store.TaskStore) *MockTaskTransactor {
	return &MockTaskTransactor{Tasks: tasks}
}

// WithTaskTx implements store.TaskTransactor
func (m *MockTaskTransactor) WithTaskTx(ctx context.Context, fn func(ctx context.Context, tasks store.TaskStore) error) error {
	m.calls.Add(1)
	if m.Err != nil {
		return m.Err
	}
	return fn(ctx, m.Tasks)
}

// Calls returns how many units of work were started.
func (m *MockTaskTransactor) Calls() int {
	return int(m.calls.Load())
}

var _ store.TaskTransactor = (*MockTaskTransactor)(nil)
