package audit

import (
	"context"
	"errors"
	"log/slog"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// Sink records action log entries.
type Sink interface {
	Record(ctx context.Context, entry *domain.ActionLog) error
}

// StoreSink writes entries straight to an ActionLogStore.
type StoreSink struct {
	store  store.ActionLogStore
	logger *slog.Logger
}

// NewStoreSink creates a synchronous sink.
func NewStoreSink(logs store.ActionLogStore, logger *slog.Logger) (*StoreSink, error) {
	if logs == nil {
		return nil, errors.New("action log store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreSink{
		store:  logs,
		logger: logger.With(slog.String("component", "audit_store_sink")),
	}, nil
}

// Record implements Sink.
func (s *StoreSink) Record(ctx context.Context, entry *domain.ActionLog) error {
	if err := s.store.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to write action log",
			slog.String("error", err.Error()),
			slog.String("task_id", entry.TaskID.String()))
		return err
	}
	return nil
}
