package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiroki-koketsu/tasklists/internal/model"
)

func TestCreateTaskListStartsEmpty(t *testing.T) {
	f := newFixture()

	list := f.list(t, "groceries")

	assert.Positive(t, list.ID)
	assert.Equal(t, "groceries", list.Title)
	assert.Zero(t, list.TotalTasks)
	assert.Zero(t, list.CompletedTasks)
	assert.Zero(t, list.CompletionPercentage)
}

func TestGetTaskListAggregates(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	list := f.list(t, "sprint")

	f.task(t, list.ID, model.CreateTaskRequest{Title: "a", Status: model.StatusCompleted})
	f.task(t, list.ID, model.CreateTaskRequest{Title: "b", Percentage: 50, Status: model.StatusInProgress})
	f.task(t, list.ID, model.CreateTaskRequest{Title: "c"})
	f.task(t, list.ID, model.CreateTaskRequest{Title: "d", Status: model.StatusCompleted})

	got, err := f.lists.GetTaskList(ctx, list.ID)
	require.NoError(t, err)

	assert.Equal(t, 4, got.TotalTasks)
	assert.Equal(t, 2, got.CompletedTasks)
	assert.Equal(t, 62, got.CompletionPercentage)
}

func TestGetTaskListNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.lists.GetTaskList(context.Background(), 1)

	assert.ErrorIs(t, err, model.ErrTaskListNotFound)
}

func TestGetAllTaskLists(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	empty, err := f.lists.GetAllTaskLists(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	first := f.list(t, "first")
	second := f.list(t, "second")
	f.task(t, second.ID, model.CreateTaskRequest{Title: "x", Status: model.StatusCompleted})

	all, err := f.lists.GetAllTaskLists(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, 0, all[0].TotalTasks)
	assert.Equal(t, 1, all[1].TotalTasks)
	assert.Equal(t, 100, all[1].CompletionPercentage)
}

func TestUpdateTaskList(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	desc := "before"
	created, err := f.lists.CreateTaskList(ctx, model.CreateTaskListRequest{Title: "old", Description: &desc})
	require.NoError(t, err)
	f.task(t, created.ID, model.CreateTaskRequest{Title: "t", Percentage: 40, Status: model.StatusInProgress})

	updated, err := f.lists.UpdateTaskList(ctx, created.ID, model.UpdateTaskListRequest{Title: model.Some("new")})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "before", *updated.Description)
	assert.NotNil(t, updated.UpdatedAt)
	assert.Equal(t, 40, updated.CompletionPercentage)

	cleared, err := f.lists.UpdateTaskList(ctx, created.ID, model.UpdateTaskListRequest{Description: model.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, cleared.Description)
	assert.Equal(t, "new", cleared.Title)
}

func TestUpdateTaskListErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.lists.UpdateTaskList(ctx, 3, model.UpdateTaskListRequest{Title: model.Some("x")})
	assert.ErrorIs(t, err, model.ErrTaskListNotFound)

	list := f.list(t, "keep")
	_, err = f.lists.UpdateTaskList(ctx, list.ID, model.UpdateTaskListRequest{Title: model.Null[string]()})
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestDeleteTaskListCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	list := f.list(t, "doomed")
	other := f.list(t, "survivor")
	a := f.task(t, list.ID, model.CreateTaskRequest{Title: "a"})
	b := f.task(t, list.ID, model.CreateTaskRequest{Title: "b"})
	kept := f.task(t, other.ID, model.CreateTaskRequest{Title: "kept"})

	found, err := f.lists.DeleteTaskList(ctx, list.ID)
	require.NoError(t, err)
	assert.True(t, found)

	for _, id := range []int64{a.ID, b.ID} {
		_, err := f.tasks.GetTask(ctx, id)
		assert.ErrorIs(t, err, model.ErrTaskNotFound)
	}
	_, err = f.tasks.GetTask(ctx, kept.ID)
	assert.NoError(t, err)

	n, err := f.taskRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	found, err = f.lists.DeleteTaskList(ctx, list.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteTaskListDeletesTasksFirst(t *testing.T) {
	var calls []string
	tasks := &fakeTaskRepository{
		t: t,
		deleteByTaskListIDFn: func(context.Context, int64) (bool, error) {
			calls = append(calls, "tasks")
			return true, nil
		},
	}
	lists := &fakeTaskListRepository{
		t: t,
		deleteFn: func(context.Context, int64) (bool, error) {
			calls = append(calls, "list")
			return true, nil
		},
	}

	_, err := NewTaskListUseCases(lists, tasks).DeleteTaskList(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, []string{"tasks", "list"}, calls)
}

func TestDeleteTaskListStopsOnTaskFailure(t *testing.T) {
	boom := errors.New("disk full")
	tasks := &fakeTaskRepository{
		t: t,
		deleteByTaskListIDFn: func(context.Context, int64) (bool, error) {
			return false, boom
		},
	}

	_, err := NewTaskListUseCases(&fakeTaskListRepository{t: t}, tasks).DeleteTaskList(context.Background(), 1)

	assert.ErrorIs(t, err, boom)
}
