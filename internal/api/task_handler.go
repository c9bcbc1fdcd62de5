package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/service"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if tasks == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("tasks cannot be nil for TaskHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// respondWithTaskError writes the error response for a task operation.
// Version conflicts carry both versions so the client can reconcile.
func (h *TaskHandler) respondWithTaskError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var conflict *service.ConflictError
	if errors.As(err, &conflict) {
		logger.FromContextOrDefault(r.Context(), h.logger).Debug("responding with version conflict",
			slog.String("error", conflict.Error()))
		shared.RespondWithJSON(w, r, http.StatusConflict, ConflictResponse{
			Error:          GetSafeErrorMessage(err),
			CurrentVersion: conflict.Current,
			ClientVersion:  conflict.Client,
			TraceID:        shared.GetTraceID(r.Context()),
		})
		return
	}
	HandleAPIError(w, r, err, fallback)
}

// ListTasks handles GET /api/tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	views, err := h.tasks.ListTasks(r.Context())
	if err != nil {
		h.respondWithTaskError(w, r, err, "Failed to list tasks")
		return
	}
	if views == nil {
		views = []*domain.TaskView{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, views)
}

// GetTask handles GET /api/tasks/{id}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	_, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	view, err := h.tasks.GetTask(r.Context(), taskID)
	if err != nil {
		h.respondWithTaskError(w, r, err, "Failed to get task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// CreateTask handles POST /api/tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	view, err := h.tasks.CreateTask(r.Context(), userID, req.Input())
	if err != nil {
		h.respondWithTaskError(w, r, err, "Failed to create task")
		return
	}

	log.Debug("task created", slog.String("task_id", view.Task.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, view)
}

// UpdateTask handles PUT /api/tasks/{id}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	view, err := h.tasks.UpdateTask(r.Context(), userID, taskID, req.Input())
	if err != nil {
		h.respondWithTaskError(w, r, err, "Failed to update task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// DeleteTask handles DELETE /api/tasks/{id}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), userID, taskID); err != nil {
		h.respondWithTaskError(w, r, err, "Failed to delete task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, shared.MessageResponse{Message: "Task deleted"})
}

// SmartAssign handles POST /api/tasks/smart-assign/{id}
func (h *TaskHandler) SmartAssign(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	view, err := h.tasks.SmartAssign(r.Context(), userID, taskID)
	if err != nil {
		h.respondWithTaskError(w, r, err, "Failed to assign task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// ListActions handles GET /api/actions
func (h *TaskHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, DefaultActionLimit, MaxActionLimit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	entries, err := h.tasks.RecentActions(r.Context(), limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list actions")
		return
	}

	out := make([]ActionLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, actionLogToResponse(e))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// Routes registers the task endpoints on r. Authentication is applied by
// the caller.
func (h *TaskHandler) Routes(r chi.Router) {
	r.Get("/tasks", h.ListTasks)
	r.Post("/tasks", h.CreateTask)
	r.Get("/tasks/{id}", h.GetTask)
	r.Put("/tasks/{id}", h.UpdateTask)
	r.Delete("/tasks/{id}", h.DeleteTask)
	r.Post("/tasks/smart-assign/{id}", h.SmartAssign)
	r.Get("/actions", h.ListActions)
}
