package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// MockActionLogStore implements store.ActionLogStore for testing
type MockActionLogStore struct {
	CreateFn     func(ctx context.Context, entry *domain.ActionLog) error
	ListRecentFn func(ctx context.Context, limit int) ([]*domain.ActionLog, error)

	mu      sync.Mutex
	Entries []*domain.ActionLog
}

// Create implements store.ActionLogStore
func (m *MockActionLogStore) Create(ctx context.Context, entry *domain.ActionLog) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, entry)
	return nil
}

// ListRecent implements store.ActionLogStore, newest first.
func (m *MockActionLogStore) ListRecent(ctx context.Context, limit int) ([]*domain.ActionLog, error) {
	if m.ListRecentFn != nil {
		return m.ListRecentFn(ctx, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.ActionLog, 0, limit)
	for i := len(m.Entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.Entries[i])
	}
	return out, nil
}

// Recorded returns a snapshot of the stored entries in insertion order.
func (m *MockActionLogStore) Recorded() []*domain.ActionLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.ActionLog(nil), m.Entries...)
}

var _ store.ActionLogStore = (*MockActionLogStore)(nil)
