package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/taskflow-api/internal/events"
)

// MockEventEmitter implements events.EventEmitter and records every event.
type MockEventEmitter struct {
	EmitEventFn func(ctx context.Context, event *events.Event) error

	mu     sync.Mutex
	Events []*events.Event
}

// EmitEvent implements events.EventEmitter
func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.Event) error {
	m.mu.Lock()
	m.Events = append(m.Events, event)
	m.mu.Unlock()
	if m.EmitEventFn != nil {
		return m.EmitEventFn(ctx, event)
	}
	return nil
}

// Emitted returns a snapshot of the recorded events.
func (m *MockEventEmitter) Emitted() []*events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*events.Event(nil), m.Events...)
}

var _ events.EventEmitter = (*MockEventEmitter)(nil)
