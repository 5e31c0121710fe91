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
	routeTaskLists = "/api/v1/task-lists"
	routeTaskList  = "/api/v1/task-lists/{id}"
)

// TaskListService is the application layer behind TaskListHandler.
type TaskListService interface {
	CreateTaskList(ctx context.Context, req model.CreateTaskListRequest) (*model.TaskListResponse, error)
	GetTaskList(ctx context.Context, id int64) (*model.TaskListResponse, error)
	GetAllTaskLists(ctx context.Context) ([]model.TaskListResponse, error)
	UpdateTaskList(ctx context.Context, id int64, req model.UpdateTaskListRequest) (*model.TaskListResponse, error)
	DeleteTaskList(ctx context.Context, id int64) (bool, error)
}

// TaskListHandler handles HTTP requests for task lists.
type TaskListHandler struct {
	responder
	lists TaskListService
}

// NewTaskListHandler creates a new TaskListHandler.
func NewTaskListHandler(lists TaskListService, logger *slog.Logger, metrics *telemetry.Metrics) *TaskListHandler {
	return &TaskListHandler{
		responder: responder{logger: logger, metrics: metrics},
		lists:     lists,
	}
}

// Routes returns the chi router with task list routes.
func (h *TaskListHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}

// Create adds a new task list.
func (h *TaskListHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskListHandler.Create")
	defer span.End()

	var req model.CreateTaskListRequest
	if !h.decode(ctx, w, r, &req) {
		h.recordMetrics(ctx, http.MethodPost, routeTaskLists, http.StatusBadRequest, start)
		return
	}

	h.logger.InfoContext(ctx, "creating task list", slog.String("title", req.Title))

	list, err := h.lists.CreateTaskList(ctx, req)
	if err != nil {
		h.recordMetrics(ctx, http.MethodPost, routeTaskLists, h.fail(ctx, w, err), start)
		return
	}

	span.SetAttributes(attribute.Int64("task_list.id", list.ID))
	h.logger.InfoContext(ctx, "task list created", slog.Int64("id", list.ID))

	h.respondJSON(w, http.StatusCreated, list)
	h.recordMetrics(ctx, http.MethodPost, routeTaskLists, http.StatusCreated, start)
}

// List returns every task list with its aggregates.
func (h *TaskListHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskListHandler.List")
	defer span.End()

	h.logger.InfoContext(ctx, "listing all task lists")

	lists, err := h.lists.GetAllTaskLists(ctx)
	if err != nil {
		h.recordMetrics(ctx, http.MethodGet, routeTaskLists, h.fail(ctx, w, err), start)
		return
	}

	span.SetAttributes(attribute.Int("task_list.count", len(lists)))
	h.logger.InfoContext(ctx, "task lists listed", slog.Int("count", len(lists)))

	h.respondJSON(w, http.StatusOK, lists)
	h.recordMetrics(ctx, http.MethodGet, routeTaskLists, http.StatusOK, start)
}

// GetByID returns a task list by ID.
func (h *TaskListHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskListHandler.GetByID")
	defer span.End()

	id, ok := h.pathID(ctx, w, r, "id")
	if !ok {
		h.recordMetrics(ctx, http.MethodGet, routeTaskList, http.StatusBadRequest, start)
		return
	}
	span.SetAttributes(attribute.Int64("task_list.id", id))

	list, err := h.lists.GetTaskList(ctx, id)
	if err != nil {
		h.recordMetrics(ctx, http.MethodGet, routeTaskList, h.fail(ctx, w, err), start)
		return
	}

	h.respondJSON(w, http.StatusOK, list)
	h.recordMetrics(ctx, http.MethodGet, routeTaskList, http.StatusOK, start)
}

// Update modifies an existing task list.
func (h *TaskListHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskListHandler.Update")
	defer span.End()

	id, ok := h.pathID(ctx, w, r, "id")
	if !ok {
		h.recordMetrics(ctx, http.MethodPut, routeTaskList, http.StatusBadRequest, start)
		return
	}
	span.SetAttributes(attribute.Int64("task_list.id", id))

	var req model.UpdateTaskListRequest
	if !h.decode(ctx, w, r, &req) {
		h.recordMetrics(ctx, http.MethodPut, routeTaskList, http.StatusBadRequest, start)
		return
	}

	h.logger.InfoContext(ctx, "updating task list", slog.Int64("id", id))

	list, err := h.lists.UpdateTaskList(ctx, id, req)
	if err != nil {
		h.recordMetrics(ctx, http.MethodPut, routeTaskList, h.fail(ctx, w, err), start)
		return
	}

	h.logger.InfoContext(ctx, "task list updated", slog.Int64("id", id))

	h.respondJSON(w, http.StatusOK, list)
	h.recordMetrics(ctx, http.MethodPut, routeTaskList, http.StatusOK, start)
}

// Delete removes a task list together with its tasks.
func (h *TaskListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskListHandler.Delete")
	defer span.End()

	id, ok := h.pathID(ctx, w, r, "id")
	if !ok {
		h.recordMetrics(ctx, http.MethodDelete, routeTaskList, http.StatusBadRequest, start)
		return
	}
	span.SetAttributes(attribute.Int64("task_list.id", id))

	h.logger.InfoContext(ctx, "deleting task list", slog.Int64("id", id))

	found, err := h.lists.DeleteTaskList(ctx, id)
	if err != nil {
		h.recordMetrics(ctx, http.MethodDelete, routeTaskList, h.fail(ctx, w, err), start)
		return
	}
	if !found {
		h.recordMetrics(ctx, http.MethodDelete, routeTaskList, h.fail(ctx, w, model.ErrTaskListNotFound), start)
		return
	}

	h.logger.InfoContext(ctx, "task list deleted", slog.Int64("id", id))

	w.WriteHeader(http.StatusNoContent)
	h.recordMetrics(ctx, http.MethodDelete, routeTaskList, http.StatusNoContent, start)
}
