package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskflow-api/internal/platform/logger"
)

// TxFn is a function that executes within a database transaction.
// The transaction is committed if the function returns nil, or rolled back if it returns an error.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// TaskTransactor runs a unit of work against a TaskStore bound to a single
// transaction. The transaction commits when fn returns nil.
type TaskTransactor interface {
	WithTaskTx(ctx context.Context, fn func(ctx context.Context, tasks TaskStore) error) error
}

type sqlTaskTransactor struct {
	db    *sql.DB
	tasks TaskStore
}

// NewTaskTransactor returns a TaskTransactor that opens transactions on db
// and binds tasks to each one with WithTx.
func NewTaskTransactor(db *sql.DB, tasks TaskStore) TaskTransactor {
	return &sqlTaskTransactor{db: db, tasks: tasks}
}

// WithTaskTx implements TaskTransactor.
func (t *sqlTaskTransactor) WithTaskTx(ctx context.Context, fn func(ctx context.Context, tasks TaskStore) error) error {
	return RunInTransaction(ctx, t.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, t.tasks.WithTx(tx))
	})
}

// RunInTransaction executes fn within a database transaction using the
// default isolation level. Panics inside fn roll back and re-panic.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) error {
	return RunInTransactionWithOptions(ctx, db, nil, fn)
}

// RunInTransactionWithOptions is RunInTransaction with explicit options.
func RunInTransactionWithOptions(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn TxFn) (err error) {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		log.Error("failed to begin transaction", slog.String("error", err.Error()))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("failed to roll back transaction after panic",
				slog.String("error", rbErr.Error()),
				slog.Any("panic", p))
		} else {
			log.Error("rolled back transaction after panic", slog.Any("panic", p))
		}
		// ALLOW-PANIC: propagate after cleanup
		panic(p)
	}()

	if err = fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("failed to roll back transaction",
				slog.String("rollback_error", rbErr.Error()),
				slog.String("original_error", err.Error()))
			return fmt.Errorf("error rolling back transaction: %v (original error: %w)", rbErr, err)
		}
		log.Debug("rolled back transaction due to error", slog.String("error", err.Error()))
		return err
	}

	if err = tx.Commit(); err != nil {
		log.Error("failed to commit transaction", slog.String("error", err.Error()))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
