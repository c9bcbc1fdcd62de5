package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// TaskStore defines the interface for task persistence.
type TaskStore interface {
	// GetByID retrieves a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// GetForUpdate is GetByID that also locks the row until the
	// surrounding transaction ends. Outside a transaction it only reads.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns every task, most recently modified first.
	List(ctx context.Context) ([]*domain.Task, error)

	// Create inserts a new task.
	// Returns ErrDuplicateTitle if the title is already taken.
	Create(ctx context.Context, task *domain.Task) error

	// Save overwrites the stored task with the given one, without any
	// version check. Returns ErrTaskNotFound if the task does not exist.
	Save(ctx context.Context, task *domain.Task) error

	// SaveIfVersion overwrites the stored task only if its version still
	// equals expectedVersion. The check and write are a single statement.
	// Returns ErrVersionConflict when the version moved,
	// ErrTaskNotFound when the task is gone, and ErrDuplicateTitle when the
	// new title is taken.
	SaveIfVersion(ctx context.Context, task *domain.Task, expectedVersion int) error

	// Delete removes a task.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// CountOpenAssigned counts tasks assigned to userID whose status is not Done.
	CountOpenAssigned(ctx context.Context, userID uuid.UUID) (int, error)

	// WithTx returns a TaskStore that runs its statements in tx.
	WithTx(tx *sql.Tx) TaskStore
}
