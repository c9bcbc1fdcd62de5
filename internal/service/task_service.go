package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/audit"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/domain/assign"
	"github.com/phrazzld/taskflow-api/internal/domain/occ"
	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// CreateTaskInput carries the client fields of a new task. Empty status and
// priority take their defaults.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
}

// UpdateTaskInput carries a full edit plus the version the client read.
type UpdateTaskInput struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      domain.TaskStatus   `json:"status"`
	Priority    domain.TaskPriority `json:"priority"`
	Version     int                 `json:"version"`
}

// TaskService provides the task use cases.
type TaskService interface {
	// ListTasks returns every task with its assignee resolved.
	ListTasks(ctx context.Context) ([]*domain.TaskView, error)

	// GetTask returns one task with its assignee resolved.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.TaskView, error)

	// CreateTask creates a task at version 1 on behalf of actorID.
	CreateTask(ctx context.Context, actorID uuid.UUID, input CreateTaskInput) (*domain.TaskView, error)

	// UpdateTask applies input if input.Version matches the stored version,
	// otherwise it returns a *ConflictError and persists nothing.
	UpdateTask(ctx context.Context, actorID, id uuid.UUID, input UpdateTaskInput) (*domain.TaskView, error)

	// DeleteTask removes a task unconditionally.
	DeleteTask(ctx context.Context, actorID, id uuid.UUID) error

	// SmartAssign assigns the task to the user with the fewest open tasks,
	// or clears the assignee when there are no users.
	SmartAssign(ctx context.Context, actorID, id uuid.UUID) (*domain.TaskView, error)

	// RecentActions returns the newest action log entries.
	RecentActions(ctx context.Context, limit int) ([]*domain.ActionLog, error)
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	tasks   store.TaskStore
	tx      store.TaskTransactor
	users   store.UserStore
	actions store.ActionLogStore
	audit   audit.Sink
	emitter events.EventEmitter
	logger  *slog.Logger
	now     func() time.Time
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	tasks store.TaskStore,
	tx store.TaskTransactor,
	users store.UserStore,
	actions store.ActionLogStore,
	sink audit.Sink,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (TaskService, error) {
	deps := []struct {
		name  string
		isNil bool
	}{
		{"tasks", tasks == nil},
		{"transactor", tx == nil},
		{"users", users == nil},
		{"actions", actions == nil},
		{"audit sink", sink == nil},
		{"event emitter", emitter == nil},
	}
	for _, d := range deps {
		if d.isNil {
			return nil, &TaskServiceError{
				Operation: "create_service",
				Message:   d.name + " cannot be nil",
			}
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:   tasks,
		tx:      tx,
		users:   users,
		actions: actions,
		audit:   sink,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "task_service")),
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// resolveActor loads the acting user. Any failure is fatal to the operation.
func (s *taskServiceImpl) resolveActor(ctx context.Context, actorID uuid.UUID) (*domain.User, error) {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to resolve acting user",
			slog.String("error", err.Error()),
			slog.String("user_id", actorID.String()))
		return nil, fmt.Errorf("%w: %v", ErrIdentityResolution, err)
	}
	return actor, nil
}

// view resolves the assignee of task. A dangling assignee reference
// resolves to no assignee.
func (s *taskServiceImpl) view(ctx context.Context, task *domain.Task) (*domain.TaskView, error) {
	v := &domain.TaskView{Task: task}
	if task.AssignedUserID == nil {
		return v, nil
	}

	user, err := s.users.GetByID(ctx, *task.AssignedUserID)
	switch {
	case err == nil:
		v.Assignee = user
	case errors.Is(err, store.ErrUserNotFound):
		// dangling reference, treated as unassigned
	default:
		return nil, err
	}
	return v, nil
}

// viewAfterWrite is view for a task that is already persisted: a lookup
// failure must not turn a committed mutation into an error.
func (s *taskServiceImpl) viewAfterWrite(ctx context.Context, task *domain.Task) *domain.TaskView {
	v, err := s.view(ctx, task)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to resolve assignee after write",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return &domain.TaskView{Task: task}
	}
	return v
}

// publish records the audit entry and emits the ActionLogged event. Both
// are best-effort: failures are logged and never reach the caller.
func (s *taskServiceImpl) publish(
	ctx context.Context,
	actor *domain.User,
	op events.Operation,
	taskID uuid.UUID,
	action string,
	v *domain.TaskView,
) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("task_id", taskID.String()),
		slog.String("operation", string(op)))

	entry, err := domain.NewActionLog(action, actor.ID, taskID)
	if err != nil {
		log.Error("failed to build action log", slog.String("error", err.Error()))
		return
	}

	if err := s.audit.Record(ctx, entry); err != nil {
		log.Warn("failed to record action log", slog.String("error", err.Error()))
	}

	event, err := events.NewActionLoggedEvent(entry, op, taskID, v)
	if err != nil {
		log.Error("failed to build action logged event", slog.String("error", err.Error()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("failed to emit action logged event", slog.String("error", err.Error()))
	}
}

// conflict builds a ConflictError from the freshly stored task.
func (s *taskServiceImpl) conflict(ctx context.Context, op string, id uuid.UUID, client *UpdateTaskInput) error {
	current, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return NewTaskServiceError(op, "failed to reload task after conflict", err)
	}
	return &ConflictError{Current: s.viewAfterWrite(ctx, current), Client: client}
}

// ListTasks implements TaskService.
func (s *taskServiceImpl) ListTasks(ctx context.Context) ([]*domain.TaskView, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, NewTaskServiceError("list_tasks", "failed to list tasks", err)
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, NewTaskServiceError("list_tasks", "failed to list users", err)
	}
	byID := make(map[uuid.UUID]*domain.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	views := make([]*domain.TaskView, 0, len(tasks))
	for _, t := range tasks {
		v := &domain.TaskView{Task: t}
		if t.AssignedUserID != nil {
			v.Assignee = byID[*t.AssignedUserID]
		}
		views = append(views, v)
	}
	return views, nil
}

// GetTask implements TaskService.
func (s *taskServiceImpl) GetTask(ctx context.Context, id uuid.UUID) (*domain.TaskView, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, NewTaskServiceError("get_task", "failed to retrieve task", err)
	}
	v, err := s.view(ctx, task)
	if err != nil {
		return nil, NewTaskServiceError("get_task", "failed to resolve assignee", err)
	}
	return v, nil
}

// CreateTask implements TaskService.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	actorID uuid.UUID,
	input CreateTaskInput,
) (*domain.TaskView, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	task, err := domain.NewTask(input.Title, input.Description, input.Status, input.Priority, actor.ID)
	if err != nil {
		return nil, err
	}
	task.LastModified = s.now()

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, NewTaskServiceError("create_task", "failed to save task", err)
	}

	v := &domain.TaskView{Task: task}
	s.publish(ctx, actor, events.OperationCreated, task.ID, domain.CreatedAction(task.Title, actor.Username), v)

	logger.FromContextOrDefault(ctx, s.logger).Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("actor_id", actor.ID.String()))
	return v, nil
}

// UpdateTask implements TaskService.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	actorID, id uuid.UUID,
	input UpdateTaskInput,
) (*domain.TaskView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	stored, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, NewTaskServiceError("update_task", "failed to retrieve task", err)
	}

	if occ.Check(stored.Version, input.Version) == occ.Conflict {
		log.Info("rejected stale task update",
			slog.String("task_id", id.String()),
			slog.Int("stored_version", stored.Version),
			slog.Int("client_version", input.Version))
		client := input
		return nil, &ConflictError{Current: s.viewAfterWrite(ctx, stored), Client: &client}
	}

	updated := *stored
	if err := updated.Revise(input.Title, input.Description, input.Status, input.Priority); err != nil {
		return nil, err
	}
	updated.Version = occ.Next(stored.Version)
	updated.LastModified = s.now()

	if err := s.tasks.SaveIfVersion(ctx, &updated, stored.Version); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			log.Info("lost concurrent task update", slog.String("task_id", id.String()))
			client := input
			return nil, s.conflict(ctx, "update_task", id, &client)
		}
		return nil, NewTaskServiceError("update_task", "failed to save task", err)
	}

	v := s.viewAfterWrite(ctx, &updated)
	s.publish(ctx, actor, events.OperationUpdated, id, domain.UpdatedAction(updated.Title, actor.Username), v)

	log.Info("task updated",
		slog.String("task_id", id.String()),
		slog.Int("version", updated.Version))
	return v, nil
}

// DeleteTask implements TaskService.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, actorID, id uuid.UUID) error {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return err
	}

	// The title read for the audit entry belongs to the row being removed.
	var title string
	err = s.tx.WithTaskTx(ctx, func(ctx context.Context, tasks store.TaskStore) error {
		task, err := tasks.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := tasks.Delete(ctx, id); err != nil {
			return err
		}
		title = task.Title
		return nil
	})
	if err != nil {
		return NewTaskServiceError("delete_task", "failed to delete task", err)
	}

	s.publish(ctx, actor, events.OperationDeleted, id, domain.DeletedAction(title, actor.Username), nil)

	logger.FromContextOrDefault(ctx, s.logger).Info("task deleted",
		slog.String("task_id", id.String()),
		slog.String("actor_id", actor.ID.String()))
	return nil
}

// SmartAssign implements TaskService.
func (s *taskServiceImpl) SmartAssign(ctx context.Context, actorID, id uuid.UUID) (*domain.TaskView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	stored, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, NewTaskServiceError("smart_assign", "failed to retrieve task", err)
	}

	candidates, err := s.users.List(ctx)
	if err != nil {
		return nil, NewTaskServiceError("smart_assign", "failed to list users", err)
	}

	selected, err := assign.SelectAssignee(candidates, func(u domain.User) (int, error) {
		return s.tasks.CountOpenAssigned(ctx, u.ID)
	})
	if err != nil {
		return nil, NewTaskServiceError("smart_assign", "failed to compute user load", err)
	}

	updated := *stored
	if selected != nil {
		updated.AssignTo(&selected.ID)
	} else {
		updated.AssignTo(nil)
	}
	updated.Version = occ.Next(stored.Version)
	updated.LastModified = s.now()

	if err := s.tasks.SaveIfVersion(ctx, &updated, stored.Version); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			log.Info("task changed during smart assignment", slog.String("task_id", id.String()))
			return nil, s.conflict(ctx, "smart_assign", id, nil)
		}
		return nil, NewTaskServiceError("smart_assign", "failed to save task", err)
	}

	v := &domain.TaskView{Task: &updated, Assignee: selected}
	s.publish(ctx, actor, events.OperationAssigned, id,
		domain.AssignedAction(updated.Title, v.AssigneeUsername(), actor.Username), v)

	log.Info("task smart assigned",
		slog.String("task_id", id.String()),
		slog.String("assignee", v.AssigneeUsername()),
		slog.Int("candidates", len(candidates)))
	return v, nil
}

// RecentActions implements TaskService.
func (s *taskServiceImpl) RecentActions(ctx context.Context, limit int) ([]*domain.ActionLog, error) {
	entries, err := s.actions.ListRecent(ctx, limit)
	if err != nil {
		return nil, NewTaskServiceError("recent_actions", "failed to list action logs", err)
	}
	return entries, nil
}
