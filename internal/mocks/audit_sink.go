package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/taskflow-api/internal/domain"
)

// MockAuditSink implements audit.Sink for testing
type MockAuditSink struct {
	RecordFn func(ctx context.Context, entry *domain.ActionLog) error

	mu      sync.Mutex
	Entries []*domain.ActionLog
}

// Record implements audit.Sink
func (m *MockAuditSink) Record(ctx context.Context, entry *domain.ActionLog) error {
	m.mu.Lock()
	m.Entries = append(m.Entries, entry)
	m.mu.Unlock()
	if m.RecordFn != nil {
		return m.RecordFn(ctx, entry)
	}
	return nil
}

// Recorded returns a snapshot of every entry passed to Record.
func (m *MockAuditSink) Recorded() []*domain.ActionLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.ActionLog(nil), m.Entries...)
}
