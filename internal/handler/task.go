package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hiroki-koketsu/tasklists/internal/model"
	"github.com/hiroki-koketsu/tasklists/internal/telemetry"
)

const (
	routeListTasks   = "/api/v1/tasks/{task_list_id}/tasks"
	routeFilterTasks = "/api/v1/tasks/{task_list_id}/tasks/filtered"
	routeTask        = "/api/v1/tasks/task/{id}"
	routeTaskStatus  = "/api/v1/tasks/task/{id}/status"

	paramTaskListID = "task_list_id"
	paramTaskID     = "id"
)

// TaskService is the application layer behind TaskHandler.
type TaskService interface {
	CreateTask(ctx context.Context, taskListID int64, req model.CreateTaskRequest) (*model.TaskResponse, error)
	GetTask(ctx context.Context, id int64) (*model.TaskResponse, error)
	GetTasksByList(ctx context.Context, taskListID int64) ([]model.TaskResponse, error)
	GetFilteredTasks(ctx context.Context, taskListID int64, filter model.TaskFilter) (*model.FilteredTasksResponse, error)
	UpdateTask(ctx context.Context, id int64, req model.UpdateTaskRequest) (*model.TaskResponse, error)
	UpdateTaskStatus(ctx context.Context, id int64, req model.UpdateTaskStatusRequest) (*model.TaskResponse, error)
	DeleteTask(ctx context.Context, id int64) (bool, error)
}

// TaskHandler handles HTTP requests for tasks.
type TaskHandler struct {
	responder
	tasks TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks TaskService, logger *slog.Logger, metrics *telemetry.Metrics) *TaskHandler {
	return &TaskHandler{
		responder: responder{logger: logger, metrics: metrics},
		tasks:     tasks,
	}
}

// Routes returns the chi router with task routes.
func (h *TaskHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/{task_list_id}/tasks", h.Create)
	r.Get("/{task_list_id}/tasks", h.ListByTaskList)
	r.Get("/{task_list_id}/tasks/filtered", h.Filter)

	r.Get("/task/{id}", h.GetByID)
	r.Put("/task/{id}", h.Update)
	r.Patch("/task/{id}/status", h.UpdateStatus)
	r.Delete("/task/{id}", h.Delete)

	return r
}

// Create adds a task to a list.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskHandler.Create")
	defer span.End()

	listID, ok := h.pathID(ctx, w, r, paramTaskListID)
	if !ok {
		h.recordMetrics(ctx, http.MethodPost, routeListTasks, http.StatusBadRequest, start)
		return
	}
	span.SetAttributes(attribute.Int64("task_list.id", listID))

	var req model.CreateTaskRequest
	if !h.decode(ctx, w, r, &req) {
		h.recordMetrics(ctx, http.MethodPost, routeListTasks, http.StatusBadRequest, start)
		return
	}

	h.logger.InfoContext(ctx, "creating task",
		slog.Int64("task_list_id", listID),
		slog.String("title", req.Title),
	)

	task, err := h.tasks.CreateTask(ctx, listID, req)
	if err != nil {
		h.recordMetrics(ctx, http.MethodPost, routeListTasks, h.fail(ctx, w, err), start)
		return
	}

	span.SetAttributes(attribute.Int64("task.id", task.ID))
	h.logger.InfoContext(ctx, "task created", slog.Int64("id", task.ID))

	h.respondJSON(w, http.StatusCreated, task)
	h.recordMetrics(ctx, http.MethodPost, routeListTasks, http.StatusCreated, start)
}

// ListByTaskList returns the tasks of a list.
func (h *TaskHandler) ListByTaskList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskHandler.ListByTaskList")
	defer span.End()

	listID, ok := h.pathID(ctx, w, r, paramTaskListID)
	if !ok {
		h.recordMetrics(ctx, http.MethodGet, routeListTasks, http.StatusBadRequest, start)
		return
	}
	span.SetAttributes(attribute.Int64("task_list.id", listID))

	tasks, err := h.tasks.GetTasksByList(ctx, listID)
	if err != nil {
		h.recordMetrics(ctx, http.MethodGet, routeListTasks, h.fail(ctx, w, err), start)
		return
	}

	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	h.logger.InfoContext(ctx, "tasks listed",
		slog.Int64("task_list_id", listID),
		slog.Int("count", len(tasks)),
	)

	h.respondJSON(w, http.StatusOK, tasks)
	h.recordMetrics(ctx, http.MethodGet, routeListTasks, http.StatusOK, start)
}

// Filter returns a list's aggregates with the tasks matching the status
// and priority query parameters.
func (h *TaskHandler) Filter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskHandler.Filter")
	defer span.End()

	listID, ok := h.pathID(ctx, w, r, paramTaskListID)
	if !ok {
		h.recordMetrics(ctx, http.MethodGet, routeFilterTasks, http.StatusBadRequest, start)
		return
	}
	span.SetAttributes(attribute.Int64("task_list.id", listID))

	q := r.URL.Query()
	filter, err := model.ParseTaskFilter(q.Get("status"), q.Get("priority"))
	if err != nil {
		h.recordMetrics(ctx, http.MethodGet, routeFilterTasks, h.fail(ctx, w, err), start)
		return
	}

	resp, err := h.tasks.GetFilteredTasks(ctx, listID, filter)
	if err != nil {
		h.recordMetrics(ctx, http.MethodGet, routeFilterTasks, h.fail(ctx, w, err), start)
		return
	}

	h.logger.InfoContext(ctx, "tasks filtered",
		slog.Int64("task_list_id", listID),
		slog.Int("count", len(resp.FilteredTasks)),
	)

	h.respondJSON(w, http.StatusOK, resp)
	h.recordMetrics(ctx, http.MethodGet, routeFilterTasks, http.StatusOK, start)
}

// GetByID returns a task by ID.
func (h *TaskHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskHandler.GetByID")
	defer span.End()

	id, ok := h.pathID(ctx, w, r, paramTaskID)
	if !ok {
		h.recordMetrics(ctx, http.MethodGet, routeTask, http.StatusBadRequest, start)
		return
	}
	span.SetAttributes(attribute.Int64("task.id", id))

	task, err := h.tasks.GetTask(ctx, id)
	if err != nil {
		h.recordMetrics(ctx, http.MethodGet, routeTask, h.fail(ctx, w, err), start)
		return
	}

	h.respondJSON(w, http.StatusOK, task)
	h.recordMetrics(ctx, http.MethodGet, routeTask, http.StatusOK, start)
}

// Update modifies title, description, priority or percentage of a task.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskHandler.Update")
	defer span.End()

	id, ok := h.pathID(ctx, w, r, paramTaskID)
	if !ok {
		h.recordMetrics(ctx, http.MethodPut, routeTask, http.StatusBadRequest, start)
		return
	}
	span.SetAttributes(attribute.Int64("task.id", id))

	var req model.UpdateTaskRequest
	if !h.decode(ctx, w, r, &req) {
		h.recordMetrics(ctx, http.MethodPut, routeTask, http.StatusBadRequest, start)
		return
	}

	h.logger.InfoContext(ctx, "updating task", slog.Int64("id", id))

	task, err := h.tasks.UpdateTask(ctx, id, req)
	if err != nil {
		h.recordMetrics(ctx, http.MethodPut, routeTask, h.fail(ctx, w, err), start)
		return
	}

	h.logger.InfoContext(ctx, "task updated", slog.Int64("id", id))

	h.respondJSON(w, http.StatusOK, task)
	h.recordMetrics(ctx, http.MethodPut, routeTask, http.StatusOK, start)
}

// UpdateStatus changes the status of a task.
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskHandler.UpdateStatus")
	defer span.End()

	id, ok := h.pathID(ctx, w, r, paramTaskID)
	if !ok {
		h.recordMetrics(ctx, http.MethodPatch, routeTaskStatus, http.StatusBadRequest, start)
		return
	}
	span.SetAttributes(attribute.Int64("task.id", id))

	var req model.UpdateTaskStatusRequest
	if !h.decode(ctx, w, r, &req) {
		h.recordMetrics(ctx, http.MethodPatch, routeTaskStatus, http.StatusBadRequest, start)
		return
	}

	h.logger.InfoContext(ctx, "updating task status",
		slog.Int64("id", id),
		slog.String("status", string(req.Status)),
	)

	task, err := h.tasks.UpdateTaskStatus(ctx, id, req)
	if err != nil {
		h.recordMetrics(ctx, http.MethodPatch, routeTaskStatus, h.fail(ctx, w, err), start)
		return
	}

	h.logger.InfoContext(ctx, "task status updated",
		slog.Int64("id", id),
		slog.Int("percentage", task.Percentage),
	)

	h.respondJSON(w, http.StatusOK, task)
	h.recordMetrics(ctx, http.MethodPatch, routeTaskStatus, http.StatusOK, start)
}

// Delete removes a task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskHandler.Delete")
	defer span.End()

	id, ok := h.pathID(ctx, w, r, paramTaskID)
	if !ok {
		h.recordMetrics(ctx, http.MethodDelete, routeTask, http.StatusBadRequest, start)
		return
	}
	span.SetAttributes(attribute.Int64("task.id", id))

	h.logger.InfoContext(ctx, "deleting task", slog.Int64("id", id))

	found, err := h.tasks.DeleteTask(ctx, id)
	if err != nil {
		h.recordMetrics(ctx, http.MethodDelete, routeTask, h.fail(ctx, w, err), start)
		return
	}
	if !found {
		h.recordMetrics(ctx, http.MethodDelete, routeTask, h.fail(ctx, w, model.ErrTaskNotFound), start)
		return
	}

	h.logger.InfoContext(ctx, "task deleted", slog.Int64("id", id))

	w.WriteHeader(http.StatusNoContent)
	h.recordMetrics(ctx, http.MethodDelete, routeTask, http.StatusNoContent, start)
}
