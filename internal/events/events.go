package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// Event type names. They double as realtime wire event names.
const (
	TypeActionLogged = "actionLogged"
)

// Operation names the kind of mutation behind an ActionLogged event.
type Operation string

// Mutation kinds.
const (
	OperationCreated  Operation = "created"
	OperationUpdated  Operation = "updated"
	OperationDeleted  Operation = "deleted"
	OperationAssigned Operation = "assigned"
)

// Event is a typed, JSON-encoded notification.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type names the event, e.g. TypeActionLogged
	Type string `json:"type"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates a new Event with the specified type and payload.
func NewEvent(eventType string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ActionLoggedPayload announces a completed mutation. Task is nil for
// deletions, which makes the payload the deletion notice as well.
type ActionLoggedPayload struct {
	Log       *domain.ActionLog `json:"log"`
	Operation Operation         `json:"operation"`
	TaskID    uuid.UUID         `json:"task_id"`
	Task      *domain.TaskView  `json:"task"`
}

// NewActionLoggedEvent builds the event emitted after a mutation.
func NewActionLoggedEvent(
	entry *domain.ActionLog,
	op Operation,
	taskID uuid.UUID,
	view *domain.TaskView,
) (*Event, error) {
	return NewEvent(TypeActionLogged, ActionLoggedPayload{
		Log:       entry,
		Operation: op,
		TaskID:    taskID,
		Task:      view,
	})
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}
