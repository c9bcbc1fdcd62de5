package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// Errors returned by AsyncSink.Record.
var (
	ErrQueueClosed = errors.New("audit queue is closed")
	ErrQueueFull   = errors.New("audit queue is full")
)

// AsyncConfig sizes the queue and worker pool of an AsyncSink.
type AsyncConfig struct {
	// QueueSize is the number of entries buffered before Record starts
	// rejecting with ErrQueueFull. Non-positive values default to 1.
	QueueSize int

	// WorkerCount is the number of goroutines writing entries.
	// Non-positive values default to 1.
	WorkerCount int

	// WriteTimeout bounds each store write. Zero means no timeout.
	WriteTimeout time.Duration
}

// DefaultAsyncConfig returns an AsyncConfig with reasonable defaults
func DefaultAsyncConfig() AsyncConfig {
	return AsyncConfig{
		QueueSize:    256,
		WorkerCount:  2,
		WriteTimeout: 5 * time.Second,
	}
}

// AsyncSink queues entries and writes them from a worker pool, so the
// mutation path never waits on the audit store.
type AsyncSink struct {
	store  store.ActionLogStore
	logger *slog.Logger
	config AsyncConfig

	queue  chan *domain.ActionLog
	mu     sync.RWMutex
	closed bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewAsyncSink creates an AsyncSink. Call Start before recording and Stop on
// shutdown.
func NewAsyncSink(logs store.ActionLogStore, config AsyncConfig, logger *slog.Logger) (*AsyncSink, error) {
	if logs == nil {
		return nil, errors.New("action log store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "audit_async_sink"))

	if config.QueueSize <= 0 {
		logger.Warn("invalid queue size specified, using default",
			"specified_size", config.QueueSize, "default_size", 1)
		config.QueueSize = 1
	}
	if config.WorkerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount, "default_count", 1)
		config.WorkerCount = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &AsyncSink{
		store:  logs,
		logger: logger,
		config: config,
		queue:  make(chan *domain.ActionLog, config.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Start launches the workers.
func (s *AsyncSink) Start() {
	s.logger.Info("starting audit workers", "worker_count", s.config.WorkerCount)
	for i := 0; i < s.config.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

// Record implements Sink. It never blocks: a full queue rejects the entry.
func (s *AsyncSink) Record(_ context.Context, entry *domain.ActionLog) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrQueueClosed
	}

	select {
	case s.queue <- entry:
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(s.queue))
	}
}

// Stop closes the queue, lets the workers drain what is already queued and
// waits for them. If ctx ends first the remaining writes are cancelled.
func (s *AsyncSink) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		s.logger.Info("audit workers stopped")
		return nil
	case <-ctx.Done():
		s.cancel()
		<-done
		return fmt.Errorf("audit sink shutdown interrupted: %w", ctx.Err())
	}
}

func (s *AsyncSink) worker(id int) {
	defer s.wg.Done()
	log := s.logger.With("worker_id", id)

	for entry := range s.queue {
		if err := s.write(entry); err != nil {
			log.Warn("failed to write action log",
				slog.String("error", err.Error()),
				slog.String("task_id", entry.TaskID.String()),
				slog.String("action_log_id", entry.ID.String()))
		}
	}
}

func (s *AsyncSink) write(entry *domain.ActionLog) error {
	ctx := s.ctx
	if s.config.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.WriteTimeout)
		defer cancel()
	}
	return s.store.Create(ctx, entry)
}
