package realtime

import (
	"encoding/json"

	"github.com/phrazzld/taskflow-api/internal/events"
)

// Wire event names.
const (
	EventTaskUpdate       = "taskUpdate"
	EventTaskUpdated      = "taskUpdated"
	EventConflictDetected = "conflictDetected"
	EventResolveConflict  = "resolveConflict"
	EventActionLog        = "actionLog"
	EventActionLogged     = events.TypeActionLogged
)

// Message is the JSON envelope of every websocket text frame.
type Message struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// relays maps client events to the name they are re-broadcast under.
var relays = map[string]string{
	EventTaskUpdate:       EventTaskUpdated,
	EventConflictDetected: EventResolveConflict,
	EventActionLog:        EventActionLogged,
}

// RelayEvent returns the outbound name for a client event, or false if the
// event is not relayed.
func RelayEvent(inbound string) (string, bool) {
	out, ok := relays[inbound]
	return out, ok
}
