package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

const taskColumns = `id, title, description, status, priority, assigned_user_id, created_by, last_modified, version`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task     domain.Task
		status   string
		priority string
		assigned uuid.NullUUID
	)

	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&status,
		&priority,
		&assigned,
		&task.CreatedBy,
		&task.LastModified,
		&task.Version,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.TaskPriority(priority)
	if assigned.Valid {
		id := assigned.UUID
		task.AssignedUserID = &id
	}
	task.LastModified = task.LastModified.UTC()

	return &task, nil
}

func nullableUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.get(ctx, id, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`)
}

// GetForUpdate implements store.TaskStore.GetForUpdate
func (s *PostgresTaskStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.get(ctx, id, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`)
}

func (s *PostgresTaskStore) get(ctx context.Context, id uuid.UUID, query string) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, store.NewStoreError("task", "get", "failed to get task", MapError(err))
	}

	return task, nil
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(ctx context.Context) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY last_modified DESC, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "failed to query tasks", MapError(err))
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, store.NewStoreError("task", "list", "failed to scan task", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "failed to iterate tasks", err)
	}

	log.Debug("tasks listed", slog.Int("count", len(tasks)))
	return tasks, nil
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		nullableUUID(task.AssignedUserID),
		task.CreatedBy,
		task.LastModified,
		task.Version,
	)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrDuplicateTitle) {
			log.Debug("duplicate task title on create", slog.String("task_id", task.ID.String()))
			return mapped
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return store.NewStoreError("task", "create", "failed to insert task", mapped)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.Int("version", task.Version))
	return nil
}

const updateTaskQuery = `
	UPDATE tasks
	SET title = $2, description = $3, status = $4, priority = $5,
		assigned_user_id = $6, last_modified = $7, version = $8
	WHERE id = $1`

func (s *PostgresTaskStore) update(ctx context.Context, task *domain.Task, predicate string, extra ...any) (sql.Result, error) {
	args := []any{
		task.ID,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		nullableUUID(task.AssignedUserID),
		task.LastModified,
		task.Version,
	}
	args = append(args, extra...)
	return s.db.ExecContext(ctx, updateTaskQuery+predicate, args...)
}

// Save implements store.TaskStore.Save
func (s *PostgresTaskStore) Save(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	result, err := s.update(ctx, task, "")
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrDuplicateTitle) {
			return mapped
		}
		log.Error("failed to save task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return store.NewStoreError("task", "save", "failed to update task", mapped)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Debug("task saved",
		slog.String("task_id", task.ID.String()),
		slog.Int("version", task.Version))
	return nil
}

// SaveIfVersion implements store.TaskStore.SaveIfVersion.
// The version predicate and the write are one UPDATE, so of two writers
// holding the same expectedVersion at most one succeeds.
func (s *PostgresTaskStore) SaveIfVersion(ctx context.Context, task *domain.Task, expectedVersion int) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	result, err := s.update(ctx, task, " AND version = $9", expectedVersion)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrDuplicateTitle) {
			return mapped
		}
		log.Error("failed to conditionally save task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return store.NewStoreError("task", "save_if_version", "failed to update task", mapped)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("task", "save_if_version", "failed to get rows affected", err)
	}
	if rowsAffected > 0 {
		log.Debug("task saved",
			slog.String("task_id", task.ID.String()),
			slog.Int("version", task.Version))
		return nil
	}

	// No row matched: the task is gone or another writer moved the version.
	var current int
	err = s.db.QueryRowContext(ctx, `SELECT version FROM tasks WHERE id = $1`, task.ID).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrTaskNotFound
		}
		return store.NewStoreError("task", "save_if_version", "failed to read current version", MapError(err))
	}

	log.Debug("version conflict on conditional save",
		slog.String("task_id", task.ID.String()),
		slog.Int("expected_version", expectedVersion),
		slog.Int("current_version", current))
	return fmt.Errorf("%w: task %s is at version %d, expected %d",
		store.ErrVersionConflict, task.ID, current, expectedVersion)
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return store.NewStoreError("task", "delete", "failed to delete task", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Info("task deleted", slog.String("task_id", id.String()))
	return nil
}

// CountOpenAssigned implements store.TaskStore.CountOpenAssigned
func (s *PostgresTaskStore) CountOpenAssigned(ctx context.Context, userID uuid.UUID) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT COUNT(*) FROM tasks WHERE assigned_user_id = $1 AND status <> $2`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID, string(domain.TaskStatusDone)).Scan(&count); err != nil {
		log.Error("failed to count open tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, store.NewStoreError("task", "count_open_assigned", "failed to count tasks", MapError(err))
	}

	return count, nil
}

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}
