package main

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/taskflow-api/internal/audit"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApplication(t *testing.T) {
	tests := []struct {
		name      string
		async     bool
		wantAsync bool
	}{
		{name: "synchronous audit", async: false},
		{name: "asynchronous audit", async: true, wantAsync: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			mock.ExpectClose()

			cfg := testConfig()
			cfg.Audit.Async = tt.async
			log, _ := logger.NewTestLogger()

			app, err := newApplication(cfg, log, db)
			require.NoError(t, err)

			assert.NotNil(t, app.taskService)
			assert.NotNil(t, app.jwtService)
			assert.NotNil(t, app.realtimeHandler)
			assert.Equal(t, tt.wantAsync, app.asyncAudit != nil)
			if !tt.async {
				assert.IsType(t, &audit.StoreSink{}, app.auditSink)
			}

			app.cleanup()
			assert.NoError(t, mock.ExpectationsWereMet())
			assert.Zero(t, app.hub.Count())
		})
	}
}

func TestNewApplicationRejectsWeakSecret(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	cfg := testConfig()
	cfg.Auth.JWTSecret = "short"
	log, _ := logger.NewTestLogger()

	_, err = newApplication(cfg, log, db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT service")
}

func TestCleanupPartialApplication(t *testing.T) {
	log, _ := logger.NewTestLogger()
	app := &application{config: testConfig(), logger: log}

	assert.NotPanics(t, app.cleanup)
}

func TestStartHTTPServerStopsOnCancel(t *testing.T) {
	log, buf := logger.NewTestLogger()
	app := &application{config: testConfig(), logger: log}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.startHTTPServer(ctx, http.NotFoundHandler())
	}()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.Contains(t, buf.String(), "server shutdown completed")
}
