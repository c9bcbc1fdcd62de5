package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/mocks"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validToken = "valid-token"

func newTestServer(t *testing.T, cfg config.RealtimeConfig) (*Hub, *httptest.Server) {
	t.Helper()

	userID := uuid.New()
	jwtService := &mocks.MockJWTService{
		ValidateTokenFn: func(_ context.Context, token string) (*auth.Claims, error) {
			if token == validToken {
				return &auth.Claims{UserID: userID}, nil
			}
			return nil, auth.ErrInvalidToken
		},
	}

	hub := NewHub(nil)
	h, err := NewHandler(hub, jwtService, cfg, nil)
	require.NoError(t, err)

	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, srv
}

func wsURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + query
}

func dial(t *testing.T, url string, header http.Header) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

func readMessage(t *testing.T, conn *websocket.Conn, timeout time.Duration) (Message, error) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(timeout)))
	var m Message
	err := conn.ReadJSON(&m)
	return m, err
}

func defaultRealtimeConfig() config.RealtimeConfig {
	return config.RealtimeConfig{RequireAuth: true, SendBuffer: 8}
}

func TestHandlerRelaysToOtherSessions(t *testing.T) {
	hub, srv := newTestServer(t, defaultRealtimeConfig())

	sender := dial(t, wsURL(srv, ""), bearer(validToken))
	receiver := dial(t, wsURL(srv, "?token="+validToken), nil)
	require.Eventually(t, func() bool { return hub.Count() == 2 }, time.Second, 10*time.Millisecond)

	out := Message{Event: EventConflictDetected, Payload: json.RawMessage(`{"taskId":"t1","versions":[1,2]}`)}
	require.NoError(t, sender.WriteJSON(out))

	got, err := readMessage(t, receiver, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, EventResolveConflict, got.Event)
	assert.JSONEq(t, `{"taskId":"t1","versions":[1,2]}`, string(got.Payload))

	_, err = readMessage(t, sender, 200*time.Millisecond)
	assert.Error(t, err, "origin does not receive its own relay")
}

func TestHandlerIgnoresUnknownAndMalformedFrames(t *testing.T) {
	hub, srv := newTestServer(t, defaultRealtimeConfig())

	sender := dial(t, wsURL(srv, ""), bearer(validToken))
	receiver := dial(t, wsURL(srv, ""), bearer(validToken))
	require.Eventually(t, func() bool { return hub.Count() == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, sender.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, sender.WriteJSON(Message{Event: "dance", Payload: json.RawMessage(`{}`)}))
	require.NoError(t, sender.WriteJSON(Message{Event: EventTaskUpdate, Payload: json.RawMessage(`{"id":"x"}`)}))

	got, err := readMessage(t, receiver, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, EventTaskUpdated, got.Event, "only the known event arrives")
	assert.Equal(t, 2, hub.Count(), "bad frames do not drop the session")
}

func TestHandlerBroadcastIncludesEverySession(t *testing.T) {
	hub, srv := newTestServer(t, defaultRealtimeConfig())

	a := dial(t, wsURL(srv, ""), bearer(validToken))
	b := dial(t, wsURL(srv, ""), bearer(validToken))
	require.Eventually(t, func() bool { return hub.Count() == 2 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(Message{Event: EventActionLogged, Payload: json.RawMessage(`{"operation":"created"}`)})

	for _, conn := range []*websocket.Conn{a, b} {
		got, err := readMessage(t, conn, 2*time.Second)
		require.NoError(t, err)
		assert.Equal(t, EventActionLogged, got.Event)
	}
}

func TestHandlerUnregistersOnDisconnect(t *testing.T) {
	hub, srv := newTestServer(t, defaultRealtimeConfig())

	conn := dial(t, wsURL(srv, ""), bearer(validToken))
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandlerAuthentication(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.RealtimeConfig
		query      string
		header     http.Header
		wantStatus int
	}{
		{"missing token", defaultRealtimeConfig(), "", nil, http.StatusUnauthorized},
		{"invalid token", defaultRealtimeConfig(), "", bearer("forged"), http.StatusUnauthorized},
		{"invalid query token", defaultRealtimeConfig(), "?token=forged", nil, http.StatusUnauthorized},
		{"valid header token", defaultRealtimeConfig(), "", bearer(validToken), http.StatusSwitchingProtocols},
		{
			"auth disabled",
			config.RealtimeConfig{RequireAuth: false, SendBuffer: 8},
			"",
			nil,
			http.StatusSwitchingProtocols,
		},
		{
			"origin not allowed",
			config.RealtimeConfig{RequireAuth: true, SendBuffer: 8, AllowedOrigins: []string{"http://app.example"}},
			"",
			http.Header{"Authorization": []string{"Bearer " + validToken}, "Origin": []string{"http://evil.example"}},
			http.StatusForbidden,
		},
		{
			"origin allowed",
			config.RealtimeConfig{RequireAuth: true, SendBuffer: 8, AllowedOrigins: []string{"http://app.example"}},
			"",
			http.Header{"Authorization": []string{"Bearer " + validToken}, "Origin": []string{"http://app.example"}},
			http.StatusSwitchingProtocols,
		},
		{
			"cross origin rejected by default",
			defaultRealtimeConfig(),
			"",
			http.Header{"Authorization": []string{"Bearer " + validToken}, "Origin": []string{"http://elsewhere.example"}},
			http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, srv := newTestServer(t, tt.cfg)

			conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, tt.query), tt.header)
			if conn != nil {
				_ = conn.Close()
			}
			require.NotNil(t, resp)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus == http.StatusSwitchingProtocols {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestNewHandlerValidation(t *testing.T) {
	hub := NewHub(nil)

	_, err := NewHandler(nil, nil, config.RealtimeConfig{SendBuffer: 1}, nil)
	assert.Error(t, err)

	_, err = NewHandler(hub, nil, config.RealtimeConfig{RequireAuth: true, SendBuffer: 1}, nil)
	assert.Error(t, err)

	_, err = NewHandler(hub, nil, config.RealtimeConfig{SendBuffer: 0}, nil)
	assert.Error(t, err)

	_, err = NewHandler(hub, nil, config.RealtimeConfig{SendBuffer: 1}, nil)
	assert.NoError(t, err)
}
