package realtime

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Connection timing and limits.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Session is one connected websocket client.
type Session struct {
	ID     uuid.UUID
	UserID uuid.UUID

	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger *slog.Logger
}

func newSession(hub *Hub, conn *websocket.Conn, userID uuid.UUID, buffer int, logger *slog.Logger) *Session {
	id := uuid.New()
	return &Session{
		ID:     id,
		UserID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, buffer),
		logger: logger.With(slog.String("session_id", id.String())),
	}
}

// enqueue pushes data onto the send queue without blocking. The caller
// holds the hub's read lock, so the queue cannot be closed concurrently.
func (s *Session) enqueue(data []byte) bool {
	select {
	case s.send <- data:
		return true
	default:
		return false
	}
}

// readPump reads client frames until the connection fails, relaying known
// events to the other sessions.
func (s *Session) readPump() {
	defer func() {
		s.hub.Unregister(s)
		_ = s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read failed", slog.String("error", err.Error()))
			}
			return
		}
		s.handleFrame(data)
	}
}

func (s *Session) handleFrame(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		s.logger.Debug("ignoring malformed frame", slog.String("error", err.Error()))
		return
	}

	out, ok := RelayEvent(msg.Event)
	if !ok {
		s.logger.Debug("ignoring unknown event", slog.String("event", msg.Event))
		return
	}
	s.hub.BroadcastExcept(s.ID, Message{Event: out, Payload: msg.Payload})
}

// writePump sends queued messages and keepalive pings. It exits when the
// send queue is closed or a write fails.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case data, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.logWriteError(err)
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.logWriteError(err)
				return
			}
		}
	}
}

func (s *Session) logWriteError(err error) {
	if errors.Is(err, websocket.ErrCloseSent) {
		return
	}
	s.logger.Debug("websocket write failed", slog.String("error", err.Error()))
}
