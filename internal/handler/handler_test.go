package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/hiroki-koketsu/tasklists/internal/model"
	"github.com/hiroki-koketsu/tasklists/internal/repository/memory"
	"github.com/hiroki-koketsu/tasklists/internal/telemetry"
	"github.com/hiroki-koketsu/tasklists/internal/usecase"
)

func newTestMetrics(t *testing.T) *telemetry.Metrics {
	t.Helper()
	count := func(context.Context) (int64, error) { return 0, nil }
	m, err := telemetry.NewMetrics(noop.NewMeterProvider().Meter("test"), count, count)
	require.NoError(t, err)
	return m
}

func newTestServer(t *testing.T, lists TaskListService, tasks TaskService) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := newTestMetrics(t)

	router := NewRouter(
		NewTaskListHandler(lists, logger, metrics),
		NewTaskHandler(tasks, logger, metrics),
		NewSystemHandler("Task Management API", "1.0.0", "task-management-api"),
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func newMemoryServer(t *testing.T) *httptest.Server {
	t.Helper()
	listRepo := memory.NewTaskListRepository()
	taskRepo := memory.NewTaskRepository()
	return newTestServer(t,
		usecase.NewTaskListUseCases(listRepo, taskRepo),
		usecase.NewTaskUseCases(taskRepo, listRepo),
	)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, srv.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestRootAndHealth(t *testing.T) {
	srv := newMemoryServer(t)

	resp := do(t, srv, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"message": "Task Management API", "version": "1.0.0"}, decode[map[string]string](t, resp))

	resp = do(t, srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", decode[map[string]string](t, resp)["status"])
}

func TestTaskListLifecycle(t *testing.T) {
	srv := newMemoryServer(t)

	resp := do(t, srv, http.MethodPost, "/api/v1/task-lists", map[string]any{"title": "home", "description": "chores"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	created := decode[model.TaskListResponse](t, resp)
	assert.Equal(t, "home", created.Title)
	assert.Zero(t, created.TotalTasks)

	resp = do(t, srv, http.MethodGet, "/api/v1/task-lists", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]model.TaskListResponse](t, resp), 1)

	path := "/api/v1/task-lists/" + itoa(created.ID)
	resp = do(t, srv, http.MethodPut, path, `{"description": null}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[model.TaskListResponse](t, resp)
	assert.Equal(t, "home", updated.Title)
	assert.Nil(t, updated.Description)

	resp = do(t, srv, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body)

	resp = do(t, srv, http.MethodGet, path, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "task list not found", decode[map[string]string](t, resp)["error"])

	resp = do(t, srv, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTaskStatusPatchEndToEnd(t *testing.T) {
	srv := newMemoryServer(t)
	list := decode[model.TaskListResponse](t, do(t, srv, http.MethodPost, "/api/v1/task-lists", map[string]any{"title": "release"}))

	resp := do(t, srv, http.MethodPost, "/api/v1/tasks/"+itoa(list.ID)+"/tasks", map[string]any{
		"title":      "tag build",
		"priority":   "high",
		"percentage": 40,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	task := decode[model.TaskResponse](t, resp)
	assert.Equal(t, model.PriorityHigh, task.Priority)
	assert.Equal(t, 40, task.Percentage)

	taskPath := "/api/v1/tasks/task/" + itoa(task.ID)

	resp = do(t, srv, http.MethodPatch, taskPath+"/status", map[string]any{"status": "completed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	patched := decode[model.TaskResponse](t, resp)
	assert.Equal(t, model.StatusCompleted, patched.Status)
	assert.Equal(t, 100, patched.Percentage)
	assert.NotNil(t, patched.UpdatedAt)

	resp = do(t, srv, http.MethodGet, taskPath, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 100, decode[model.TaskResponse](t, resp).Percentage)

	resp = do(t, srv, http.MethodGet, "/api/v1/task-lists/"+itoa(list.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[model.TaskListResponse](t, resp)
	assert.Equal(t, 100, got.CompletionPercentage)
	assert.Equal(t, 1, got.CompletedTasks)

	resp = do(t, srv, http.MethodPatch, taskPath+"/status", map[string]any{"status": "pending"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, decode[model.TaskResponse](t, resp).Percentage)
}

func TestFilteredTasksEndpoint(t *testing.T) {
	srv := newMemoryServer(t)
	list := decode[model.TaskListResponse](t, do(t, srv, http.MethodPost, "/api/v1/task-lists", map[string]any{"title": "q3"}))
	tasksPath := "/api/v1/tasks/" + itoa(list.ID) + "/tasks"

	for _, body := range []map[string]any{
		{"title": "a", "priority": "high", "status": "completed"},
		{"title": "b", "priority": "low", "status": "completed"},
		{"title": "c", "priority": "high", "percentage": 50, "status": "in_progress"},
		{"title": "d", "priority": "high"},
	} {
		require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, tasksPath, body).StatusCode)
	}

	resp := do(t, srv, http.MethodGet, tasksPath, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]model.TaskResponse](t, resp), 4)

	resp = do(t, srv, http.MethodGet, tasksPath+"/filtered?status=completed&priority=high", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	filtered := decode[model.FilteredTasksResponse](t, resp)
	require.Len(t, filtered.FilteredTasks, 1)
	assert.Equal(t, "a", filtered.FilteredTasks[0].Title)
	assert.Equal(t, 4, filtered.TotalTasks)
	assert.Equal(t, 2, filtered.CompletedTasks)
	assert.Equal(t, 62, filtered.CompletionPercentage)
	require.NotNil(t, filtered.FilterApplied.Status)
	assert.Equal(t, model.StatusCompleted, *filtered.FilterApplied.Status)

	resp = do(t, srv, http.MethodGet, tasksPath+"/filtered?status=done", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/api/v1/tasks/999/tasks/filtered", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTaskUpdateAndDelete(t *testing.T) {
	srv := newMemoryServer(t)
	list := decode[model.TaskListResponse](t, do(t, srv, http.MethodPost, "/api/v1/task-lists", map[string]any{"title": "misc"}))
	task := decode[model.TaskResponse](t, do(t, srv, http.MethodPost, "/api/v1/tasks/"+itoa(list.ID)+"/tasks", map[string]any{"title": "old"}))
	taskPath := "/api/v1/tasks/task/" + itoa(task.ID)

	resp := do(t, srv, http.MethodPut, taskPath, map[string]any{"title": "new", "percentage": 70})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[model.TaskResponse](t, resp)
	assert.Equal(t, "new", updated.Title)
	assert.Equal(t, 70, updated.Percentage)
	assert.Equal(t, model.StatusPending, updated.Status)

	resp = do(t, srv, http.MethodDelete, taskPath, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, taskPath, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "task not found", decode[map[string]string](t, resp)["error"])

	resp = do(t, srv, http.MethodPut, taskPath, map[string]any{"title": "again"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, srv, http.MethodDelete, taskPath, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBadRequests(t *testing.T) {
	srv := newMemoryServer(t)
	list := decode[model.TaskListResponse](t, do(t, srv, http.MethodPost, "/api/v1/task-lists", map[string]any{"title": "valid"}))
	tasksPath := "/api/v1/tasks/" + itoa(list.ID) + "/tasks"

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"malformed json", http.MethodPost, "/api/v1/task-lists", `{"title":`},
		{"empty list title", http.MethodPost, "/api/v1/task-lists", map[string]any{"title": ""}},
		{"null list title", http.MethodPut, "/api/v1/task-lists/" + itoa(list.ID), `{"title": null}`},
		{"non-integer list id", http.MethodGet, "/api/v1/task-lists/abc", nil},
		{"non-integer task id", http.MethodGet, "/api/v1/tasks/task/abc", nil},
		{"percentage out of range", http.MethodPost, tasksPath, map[string]any{"title": "t", "percentage": 101}},
		{"unknown priority", http.MethodPost, tasksPath, map[string]any{"title": "t", "priority": "asap"}},
		{"unknown status", http.MethodPost, tasksPath, map[string]any{"title": "t", "status": "done"}},
		{"percentage wrong type", http.MethodPost, tasksPath, `{"title": "t", "percentage": "half"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, srv, tt.method, tt.path, tt.body)

			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, decode[map[string]string](t, resp)["error"])
		})
	}
}

func TestCreateTaskForMissingList(t *testing.T) {
	srv := newMemoryServer(t)

	resp := do(t, srv, http.MethodPost, "/api/v1/tasks/42/tasks", map[string]any{"title": "lost"})

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "task list not found", decode[map[string]string](t, resp)["error"])
}

func TestStatusPatchRejectsUnknownStatus(t *testing.T) {
	srv := newMemoryServer(t)
	list := decode[model.TaskListResponse](t, do(t, srv, http.MethodPost, "/api/v1/task-lists", map[string]any{"title": "l"}))
	task := decode[model.TaskResponse](t, do(t, srv, http.MethodPost, "/api/v1/tasks/"+itoa(list.ID)+"/tasks", map[string]any{"title": "t"}))

	resp := do(t, srv, http.MethodPatch, "/api/v1/tasks/task/"+itoa(task.ID)+"/status", map[string]any{"status": "paused"})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// failingTaskLists returns err from every call.
type failingTaskLists struct {
	TaskListService
	err error
}

func (f failingTaskLists) GetAllTaskLists(context.Context) ([]model.TaskListResponse, error) {
	return nil, f.err
}

func TestInternalErrorCarriesErrorID(t *testing.T) {
	srv := newTestServer(t, failingTaskLists{err: errors.New("connection reset")}, nil)

	resp := do(t, srv, http.MethodGet, "/api/v1/task-lists", nil)

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "internal server error", body["error"])
	assert.NotContains(t, body["error"], "connection reset")
	_, err := uuid.Parse(body["error_id"])
	assert.NoError(t, err)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
