package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskflow-api/internal/audit"
	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/phrazzld/taskflow-api/internal/platform/postgres"
	"github.com/phrazzld/taskflow-api/internal/realtime"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// auditDrainTimeout bounds how long shutdown waits for queued audit writes.
const auditDrainTimeout = 5 * time.Second

// application holds the shared dependencies of the running server so they
// can be torn down in order on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	taskStore   store.TaskStore
	taskTx      store.TaskTransactor
	userStore   store.UserStore
	actionStore store.ActionLogStore

	jwtService  auth.JWTService
	taskService service.TaskService

	eventEmitter    events.EventEmitter
	auditSink       audit.Sink
	asyncAudit      *audit.AsyncSink
	hub             *realtime.Hub
	realtimeHandler *realtime.Handler
}

// newApplication wires stores, audit, broadcasting and services on top of
// an established database connection.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.taskTx = store.NewTaskTransactor(db, app.taskStore)
	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.actionStore = postgres.NewPostgresActionLogStore(db, logger)

	if err := app.setupAudit(); err != nil {
		return nil, err
	}

	app.hub = realtime.NewHub(logger)
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(app.hub)
	app.eventEmitter = emitter

	app.realtimeHandler, err = realtime.NewHandler(app.hub, app.jwtService, cfg.Realtime, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize realtime handler: %w", err)
	}

	app.taskService, err = service.NewTaskService(
		app.taskStore,
		app.taskTx,
		app.userStore,
		app.actionStore,
		app.auditSink,
		app.eventEmitter,
		logger,
	)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize task service: %w", err)
	}

	logger.Info("application initialized",
		slog.Bool("audit_async", cfg.Audit.Async),
		slog.Bool("realtime_require_auth", cfg.Realtime.RequireAuth))
	return app, nil
}

func (app *application) setupAudit() error {
	if !app.config.Audit.Async {
		sink, err := audit.NewStoreSink(app.actionStore, app.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize audit sink: %w", err)
		}
		app.auditSink = sink
		return nil
	}

	asyncCfg := audit.DefaultAsyncConfig()
	asyncCfg.QueueSize = app.config.Audit.QueueSize
	asyncCfg.WorkerCount = app.config.Audit.WorkerCount

	sink, err := audit.NewAsyncSink(app.actionStore, asyncCfg, app.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize async audit sink: %w", err)
	}
	sink.Start()
	app.asyncAudit = sink
	app.auditSink = sink
	return nil
}

// cleanup releases resources in reverse order of acquisition. Safe to call
// on a partially initialized application.
func (app *application) cleanup() {
	if app.hub != nil {
		app.hub.Close()
	}

	if app.asyncAudit != nil {
		ctx, cancel := context.WithTimeout(context.Background(), auditDrainTimeout)
		if err := app.asyncAudit.Stop(ctx); err != nil {
			app.logger.Error("failed to drain audit queue", slog.String("error", err.Error()))
		}
		cancel()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", slog.String("error", err.Error()))
		}
	}
}
