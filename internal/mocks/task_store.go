package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing. Its default
// SaveIfVersion performs the version check and write under one lock, like
// the conditional UPDATE of the real store.
type MockTaskStore struct {
	GetByIDFn           func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	GetForUpdateFn      func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListFn              func(ctx context.Context) ([]*domain.Task, error)
	CreateFn            func(ctx context.Context, task *domain.Task) error
	SaveFn              func(ctx context.Context, task *domain.Task) error
	SaveIfVersionFn     func(ctx context.Context, task *domain.Task, expectedVersion int) error
	DeleteFn            func(ctx context.Context, id uuid.UUID) error
	CountOpenAssignedFn func(ctx context.Context, userID uuid.UUID) (int, error)

	mu    sync.Mutex
	Tasks map[uuid.UUID]*domain.Task

	// Calls counts invocations per method name.
	Calls map[string]int
}

// NewMockTaskStore creates a MockTaskStore seeded with tasks.
func NewMockTaskStore(tasks ...*domain.Task) *MockTaskStore {
	m := &MockTaskStore{
		Tasks: make(map[uuid.UUID]*domain.Task),
		Calls: make(map[string]int),
	}
	for _, t := range tasks {
		c := *t
		m.Tasks[t.ID] = &c
	}
	return m
}

func (m *MockTaskStore) record(name string) {
	m.mu.Lock()
	m.Calls[name]++
	m.mu.Unlock()
}

// CallCount returns how many times the named method was called.
func (m *MockTaskStore) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[name]
}

// Stored returns a copy of the stored task, or nil.
func (m *MockTaskStore) Stored(id uuid.UUID) *domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.Tasks[id]
	if !ok {
		return nil
	}
	c := *t
	return &c
}

// GetByID implements store.TaskStore
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	m.record("GetByID")
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if t := m.Stored(id); t != nil {
		return t, nil
	}
	return nil, store.ErrTaskNotFound
}

// List implements store.TaskStore
func (m *MockTaskStore) List(ctx context.Context) ([]*domain.Task, error) {
	m.record("List")
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}

	m.mu.Lock()
	out := make([]*domain.Task, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		c := *t
		out = append(out, &c)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastModified.Equal(out[j].LastModified) {
			return out[i].LastModified.After(out[j].LastModified)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// Create implements store.TaskStore
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	m.record("Create")
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.Tasks {
		if t.Title == task.Title {
			return store.ErrDuplicateTitle
		}
	}
	c := *task
	m.Tasks[task.ID] = &c
	return nil
}

func (m *MockTaskStore) titleTakenLocked(task *domain.Task) bool {
	for id, t := range m.Tasks {
		if id != task.ID && t.Title == task.Title {
			return true
		}
	}
	return false
}

// Save implements store.TaskStore
func (m *MockTaskStore) Save(ctx context.Context, task *domain.Task) error {
	m.record("Save")
	if m.SaveFn != nil {
		return m.SaveFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	if m.titleTakenLocked(task) {
		return store.ErrDuplicateTitle
	}
	c := *task
	m.Tasks[task.ID] = &c
	return nil
}

// SaveIfVersion implements store.TaskStore
func (m *MockTaskStore) SaveIfVersion(ctx context.Context, task *domain.Task, expectedVersion int) error {
	m.record("SaveIfVersion")
	if m.SaveIfVersionFn != nil {
		return m.SaveIfVersionFn(ctx, task, expectedVersion)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.Tasks[task.ID]
	if !ok {
		return store.ErrTaskNotFound
	}
	if current.Version != expectedVersion {
		return store.ErrVersionConflict
	}
	if m.titleTakenLocked(task) {
		return store.ErrDuplicateTitle
	}
	c := *task
	m.Tasks[task.ID] = &c
	return nil
}

// Delete implements store.TaskStore
func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.record("Delete")
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(m.Tasks, id)
	return nil
}

// CountOpenAssigned implements store.TaskStore
func (m *MockTaskStore) CountOpenAssigned(ctx context.Context, userID uuid.UUID) (int, error) {
	m.record("CountOpenAssigned")
	if m.CountOpenAssignedFn != nil {
		return m.CountOpenAssignedFn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, t := range m.Tasks {
		if t.AssignedUserID != nil && *t.AssignedUserID == userID && t.IsOpen() {
			count++
		}
	}
	return count, nil
}

// GetForUpdate implements store.TaskStore. The mock has no row locks.
func (m *MockTaskStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	m.record("GetForUpdate")
	if m.GetForUpdateFn != nil {
		return m.GetForUpdateFn(ctx, id)
	}
	if t := m.Stored(id); t != nil {
		return t, nil
	}
	return nil, store.ErrTaskNotFound
}

// WithTx implements store.TaskStore. The mock has no transactions.
func (m *MockTaskStore) WithTx(_ *sql.Tx) store.TaskStore {
	return m
}

var _ store.TaskStore = (*MockTaskStore)(nil)
