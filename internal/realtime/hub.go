package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
)

// Hub is the registry of connected sessions. It is safe for concurrent use.
type Hub struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	closed   bool

	dropped atomic.Uint64
	logger  *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		sessions: make(map[uuid.UUID]*Session),
		logger:   logger.With(slog.String("component", "realtime_hub")),
	}
}

// Register adds s to the hub. It returns false when the hub is closed, in
// which case s is not added.
func (h *Hub) Register(s *Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.sessions[s.ID] = s
	h.logger.Debug("session registered",
		slog.String("session_id", s.ID.String()),
		slog.Int("sessions", len(h.sessions)))
	return true
}

// Unregister removes s and closes its send queue. Unregistering a session
// twice is a no-op.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[s.ID]; !ok {
		return
	}
	delete(h.sessions, s.ID)
	close(s.send)
	h.logger.Debug("session unregistered",
		slog.String("session_id", s.ID.String()),
		slog.Int("sessions", len(h.sessions)))
}

// Count returns the number of registered sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Dropped returns how many per-session deliveries were dropped because a
// send queue was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Broadcast delivers msg to every session.
func (h *Hub) Broadcast(msg Message) {
	h.BroadcastExcept(uuid.Nil, msg)
}

// BroadcastExcept delivers msg to every session other than origin.
func (h *Hub) BroadcastExcept(origin uuid.UUID, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode message",
			slog.String("event", msg.Event),
			slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, s := range h.sessions {
		if id == origin {
			continue
		}
		if !s.enqueue(data) {
			h.dropped.Add(1)
			h.logger.Warn("send queue full, message dropped",
				slog.String("session_id", id.String()),
				slog.String("event", msg.Event))
		}
	}
}

// HandleEvent implements events.EventHandler. ActionLogged events are
// broadcast to every session, the originator included.
func (h *Hub) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.TypeActionLogged {
		logger.FromContextOrDefault(ctx, h.logger).Debug("ignoring event",
			slog.String("event_type", event.Type))
		return nil
	}
	h.Broadcast(Message{Event: EventActionLogged, Payload: event.Payload})
	return nil
}

// Close unregisters every session and rejects new ones. Each session's
// write loop then sends a close frame and exits.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, s := range h.sessions {
		delete(h.sessions, id)
		close(s.send)
	}
}

var _ events.EventHandler = (*Hub)(nil)
