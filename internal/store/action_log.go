package store

import (
	"context"

	"github.com/phrazzld/taskflow-api/internal/domain"
)

// ActionLogStore persists the append-only audit trail.
type ActionLogStore interface {
	// Create appends an entry.
	Create(ctx context.Context, entry *domain.ActionLog) error

	// ListRecent returns up to limit entries, newest first.
	ListRecent(ctx context.Context, limit int) ([]*domain.ActionLog, error)
}
