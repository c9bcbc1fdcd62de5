package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// PostgresActionLogStore implements store.ActionLogStore.
type PostgresActionLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresActionLogStore creates a new PostgreSQL action log store.
func NewPostgresActionLogStore(db store.DBTX, logger *slog.Logger) *PostgresActionLogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresActionLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "action_log_store")),
	}
}

var _ store.ActionLogStore = (*PostgresActionLogStore)(nil)

// Create implements store.ActionLogStore.Create
func (s *PostgresActionLogStore) Create(ctx context.Context, entry *domain.ActionLog) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO action_logs (id, action, user_id, task_id, created_at) VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, entry.Action, entry.UserID, entry.TaskID, entry.CreatedAt)
	if err != nil {
		log.Error("failed to append action log",
			slog.String("error", err.Error()),
			slog.String("task_id", entry.TaskID.String()))
		return store.NewStoreError("action_log", "create", "failed to insert action log", MapError(err))
	}

	return nil
}

// ListRecent implements store.ActionLogStore.ListRecent
func (s *PostgresActionLogStore) ListRecent(ctx context.Context, limit int) ([]*domain.ActionLog, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		return []*domain.ActionLog{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, action, user_id, task_id, created_at
		FROM action_logs
		ORDER BY created_at DESC, id
		LIMIT $1`, limit)
	if err != nil {
		log.Error("failed to list action logs", slog.String("error", err.Error()))
		return nil, store.NewStoreError("action_log", "list", "failed to query action logs", MapError(err))
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	entries := make([]*domain.ActionLog, 0, limit)
	for rows.Next() {
		var e domain.ActionLog
		if err := rows.Scan(&e.ID, &e.Action, &e.UserID, &e.TaskID, &e.CreatedAt); err != nil {
			return nil, store.NewStoreError("action_log", "list", "failed to scan action log", err)
		}
		e.CreatedAt = e.CreatedAt.UTC()
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("action_log", "list", "failed to iterate action logs", err)
	}

	return entries, nil
}
