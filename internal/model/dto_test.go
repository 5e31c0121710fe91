package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateTaskRequestDistinguishesOmittedAndNull(t *testing.T) {
	var req UpdateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{"description": null, "percentage": 20}`), &req))

	assert.False(t, req.Title.Set)
	assert.True(t, req.Description.Set)
	assert.True(t, req.Description.Null)
	assert.Nil(t, req.Description.Ptr())
	assert.Equal(t, Some(20), req.Percentage)
	assert.False(t, req.Priority.Set)
	assert.NoError(t, req.Validate())
}

func TestUpdateRequestsRejectNulls(t *testing.T) {
	tests := []struct {
		name string
		body string
		req  interface{ Validate() error }
	}{
		{"task title", `{"title": null}`, &UpdateTaskRequest{}},
		{"task percentage", `{"percentage": null}`, &UpdateTaskRequest{}},
		{"task priority", `{"priority": null}`, &UpdateTaskRequest{}},
		{"list title", `{"title": null}`, &UpdateTaskListRequest{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, json.Unmarshal([]byte(tt.body), tt.req))

			var verr *ValidationError
			assert.ErrorAs(t, tt.req.Validate(), &verr)
		})
	}
}

func TestCreateTaskRequestValidate(t *testing.T) {
	ok := CreateTaskRequest{Title: "t"}
	assert.NoError(t, ok.Validate())

	bad := []CreateTaskRequest{
		{Title: ""},
		{Title: "t", Percentage: 101},
		{Title: "t", Priority: "huge"},
		{Title: "t", Status: "done"},
	}
	for _, req := range bad {
		assert.Error(t, req.Validate(), "%+v", req)
	}
}

func TestParseTaskFilter(t *testing.T) {
	f, err := ParseTaskFilter("", "")
	require.NoError(t, err)
	assert.Nil(t, f.Status)
	assert.Nil(t, f.Priority)

	f, err = ParseTaskFilter("completed", "high")
	require.NoError(t, err)
	require.NotNil(t, f.Status)
	require.NotNil(t, f.Priority)
	assert.Equal(t, StatusCompleted, *f.Status)
	assert.Equal(t, PriorityHigh, *f.Priority)

	_, err = ParseTaskFilter("finished", "")
	assert.Error(t, err)
	_, err = ParseTaskFilter("", "extreme")
	assert.Error(t, err)
}

func TestTaskFilterMatches(t *testing.T) {
	status := StatusCompleted
	priority := PriorityHigh
	task := &Task{Status: StatusCompleted, Priority: PriorityLow}

	assert.True(t, TaskFilter{}.Matches(task))
	assert.True(t, TaskFilter{Status: &status}.Matches(task))
	assert.False(t, TaskFilter{Status: &status, Priority: &priority}.Matches(task))
}

func TestFilteredTasksResponseShape(t *testing.T) {
	status := StatusPending
	resp := FilteredTasksResponse{
		TaskListResponse: TaskListResponse{ID: 1, Title: "l", TotalTasks: 2},
		FilteredTasks:    []TaskResponse{},
		FilterApplied:    TaskFilter{Status: &status},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, float64(2), got["total_tasks"])
	assert.Equal(t, []any{}, got["filtered_tasks"])
	assert.Equal(t, map[string]any{"status": "pending", "priority": nil}, got["filter_applied"])
}
