package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/mocks"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/realtime"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouterTestApp(t *testing.T, tasks *mocks.MockTaskService) *application {
	t.Helper()

	log, _ := logger.NewTestLogger()
	userID := uuid.New()
	jwtService := &mocks.MockJWTService{
		ValidateTokenFn: func(_ context.Context, token string) (*auth.Claims, error) {
			if token != "valid-token" {
				return nil, auth.ErrInvalidToken
			}
			return &auth.Claims{UserID: userID, TokenType: auth.TokenTypeAccess}, nil
		},
	}

	hub := realtime.NewHub(log)
	t.Cleanup(hub.Close)

	wsHandler, err := realtime.NewHandler(hub, jwtService, config.RealtimeConfig{
		RequireAuth: true,
		SendBuffer:  4,
	}, log)
	require.NoError(t, err)

	return &application{
		config:          testConfig(),
		logger:          log,
		jwtService:      jwtService,
		taskService:     tasks,
		hub:             hub,
		realtimeHandler: wsHandler,
	}
}

func TestSetupRouter(t *testing.T) {
	listed := false
	tasks := &mocks.MockTaskService{
		ListTasksFn: func(context.Context) ([]*domain.TaskView, error) {
			listed = true
			return nil, nil
		},
	}
	router := newRouterTestApp(t, tasks).setupRouter()

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
		wantBody   string
	}{
		{name: "health is public", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK, wantBody: "OK"},
		{name: "tasks require a token", method: http.MethodGet, path: "/api/tasks", wantStatus: http.StatusUnauthorized},
		{name: "tasks reject a bad token", method: http.MethodGet, path: "/api/tasks", token: "nope", wantStatus: http.StatusUnauthorized},
		{name: "tasks with a valid token", method: http.MethodGet, path: "/api/tasks", token: "valid-token", wantStatus: http.StatusOK, wantBody: "[]"},
		{name: "websocket requires a token", method: http.MethodGet, path: "/ws", wantStatus: http.StatusUnauthorized},
		{name: "unknown route", method: http.MethodGet, path: "/api/nope", token: "valid-token", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, strings.TrimSpace(rec.Body.String()))
			}
		})
	}

	assert.True(t, listed, "authenticated request should reach the task service")
}

func TestSetupRouterTraceHeader(t *testing.T) {
	router := newRouterTestApp(t, &mocks.MockTaskService{}).setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"trace_id"`)
}
