package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taskWith(t *testing.T, id int64, percentage int, status TaskStatus) *Task {
	t.Helper()
	task := newTestTask(t, WithPercentage(percentage))
	task.ID = id
	if status != StatusPending {
		task.Status = status
	}
	return task
}

func TestTaskListAggregates(t *testing.T) {
	list, err := NewTaskList("sprint")
	require.NoError(t, err)
	list.ID = 7

	list.Tasks = []*Task{
		taskWith(t, 1, 100, StatusCompleted),
		taskWith(t, 2, 50, StatusInProgress),
		taskWith(t, 3, 0, StatusPending),
		taskWith(t, 4, 100, StatusCompleted),
	}

	assert.Equal(t, 62, list.CompletionPercentage())
	assert.Equal(t, 4, list.TotalTasks())
	assert.Equal(t, 2, list.CompletedTasks())
}

func TestEmptyTaskListAggregates(t *testing.T) {
	list, err := NewTaskList("empty")
	require.NoError(t, err)

	assert.Equal(t, 0, list.CompletionPercentage())
	assert.Equal(t, 0, list.TotalTasks())
	assert.Equal(t, 0, list.CompletedTasks())
}

func TestCompletedTasksIgnoresPercentage(t *testing.T) {
	list, err := NewTaskList("mixed")
	require.NoError(t, err)

	list.Tasks = []*Task{
		taskWith(t, 1, 100, StatusInProgress),
		taskWith(t, 2, 100, StatusCancelled),
	}

	assert.Equal(t, 100, list.CompletionPercentage())
	assert.Equal(t, 0, list.CompletedTasks())
}

func TestTaskListAddRemoveGet(t *testing.T) {
	list, err := NewTaskList("chores")
	require.NoError(t, err)
	list.ID = 3

	task := taskWith(t, 11, 0, StatusPending)
	task.TaskListID = 99

	list.AddTask(task)
	require.NotNil(t, list.UpdatedAt)
	assert.Equal(t, int64(3), task.TaskListID)

	got, ok := list.GetTask(11)
	require.True(t, ok)
	assert.Same(t, task, got)

	list.RemoveTask(11)
	_, ok = list.GetTask(11)
	assert.False(t, ok)
	assert.Empty(t, list.Tasks)
}

func TestTaskListRemoveMissingKeepsTasks(t *testing.T) {
	list, err := NewTaskList("chores")
	require.NoError(t, err)
	list.AddTask(taskWith(t, 1, 0, StatusPending))

	list.RemoveTask(42)

	assert.Len(t, list.Tasks, 1)
}

func TestNewTaskListValidation(t *testing.T) {
	_, err := NewTaskList("")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)
}
