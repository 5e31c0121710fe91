// Package repositorytest holds the behaviour every repository
// implementation must share, runnable against any storage engine.
package repositorytest

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiroki-koketsu/tasklists/internal/model"
	"github.com/hiroki-koketsu/tasklists/internal/repository"
)

// missingID is never handed out by any store within a test run.
const missingID int64 = 1 << 40

// Factory returns repositories for a single subtest. Stores that cannot be
// reset may return repositories that already hold data.
type Factory func(t *testing.T) (repository.TaskListRepository, repository.TaskRepository)

// Run exercises lists and tasks against the repository contract.
func Run(t *testing.T, newRepos Factory) {
	t.Run("TaskList", func(t *testing.T) { runTaskList(t, newRepos) })
	t.Run("Task", func(t *testing.T) { runTask(t, newRepos) })
}

func runTaskList(t *testing.T, newRepos Factory) {
	t.Run("CreateAndGet", func(t *testing.T) {
		lists, _ := newRepos(t)
		ctx := context.Background()
		desc := "groceries for the week"

		created := createList(t, lists, "shopping", &desc)

		got, err := lists.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "shopping", got.Title)
		require.NotNil(t, got.Description)
		assert.Equal(t, desc, *got.Description)
		assert.WithinDuration(t, created.CreatedAt, got.CreatedAt, time.Second)
		assert.Nil(t, got.UpdatedAt)
		assert.Empty(t, got.Tasks)
	})

	t.Run("GetMissing", func(t *testing.T) {
		lists, _ := newRepos(t)

		got, err := lists.GetByID(context.Background(), missingID)

		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("GetAllOrderedByID", func(t *testing.T) {
		lists, _ := newRepos(t)
		a := createList(t, lists, "a", nil)
		b := createList(t, lists, "b", nil)

		all, err := lists.GetAll(context.Background())
		require.NoError(t, err)

		var ids []int64
		for _, l := range all {
			if l.ID == a.ID || l.ID == b.ID {
				ids = append(ids, l.ID)
			}
		}
		assert.Equal(t, sortedIDs(a.ID, b.ID), ids)
	})

	t.Run("Update", func(t *testing.T) {
		lists, _ := newRepos(t)
		ctx := context.Background()
		desc := "old"
		list := createList(t, lists, "before", &desc)

		require.NoError(t, list.SetTitle("after"))
		require.NoError(t, list.SetDescription(nil))
		list.Touch()

		_, err := lists.Update(ctx, list)
		require.NoError(t, err)

		got, err := lists.GetByID(ctx, list.ID)
		require.NoError(t, err)
		assert.Equal(t, "after", got.Title)
		assert.Nil(t, got.Description)
		assert.NotNil(t, got.UpdatedAt)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		lists, _ := newRepos(t)
		list, err := model.NewTaskList("ghost")
		require.NoError(t, err)
		list.ID = missingID

		_, err = lists.Update(context.Background(), list)

		assert.ErrorIs(t, err, model.ErrTaskListNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		lists, _ := newRepos(t)
		ctx := context.Background()
		list := createList(t, lists, "doomed", nil)

		found, err := lists.Delete(ctx, list.ID)
		require.NoError(t, err)
		assert.True(t, found)

		found, err = lists.Delete(ctx, list.ID)
		require.NoError(t, err)
		assert.False(t, found)

		got, err := lists.GetByID(ctx, list.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Count", func(t *testing.T) {
		lists, _ := newRepos(t)
		ctx := context.Background()

		before, err := lists.Count(ctx)
		require.NoError(t, err)
		createList(t, lists, "one", nil)
		createList(t, lists, "two", nil)

		after, err := lists.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, before+2, after)
	})
}

func runTask(t *testing.T, newRepos Factory) {
	t.Run("CreateAndGet", func(t *testing.T) {
		lists, tasks := newRepos(t)
		ctx := context.Background()
		list := createList(t, lists, "work", nil)
		desc := "quarterly numbers"

		created := createTask(t, tasks, list.ID, "report",
			model.WithTaskDescription(&desc),
			model.WithPriority(model.PriorityHigh),
			model.WithPercentage(25),
		)
		assert.Positive(t, created.ID)

		got, err := tasks.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "report", got.Title)
		require.NotNil(t, got.Description)
		assert.Equal(t, desc, *got.Description)
		assert.Equal(t, model.StatusPending, got.Status)
		assert.Equal(t, model.PriorityHigh, got.Priority)
		assert.Equal(t, 25, got.Percentage)
		assert.Equal(t, list.ID, got.TaskListID)
		assert.Nil(t, got.UpdatedAt)
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, tasks := newRepos(t)

		got, err := tasks.GetByID(context.Background(), missingID)

		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("GetByTaskListID", func(t *testing.T) {
		lists, tasks := newRepos(t)
		ctx := context.Background()
		mine := createList(t, lists, "mine", nil)
		other := createList(t, lists, "other", nil)

		first := createTask(t, tasks, mine.ID, "first")
		createTask(t, tasks, other.ID, "elsewhere")
		second := createTask(t, tasks, mine.ID, "second")

		got, err := tasks.GetByTaskListID(ctx, mine.ID)
		require.NoError(t, err)
		assert.Equal(t, sortedIDs(first.ID, second.ID), taskIDs(got))

		none, err := tasks.GetByTaskListID(ctx, missingID)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("GetFilteredTasks", func(t *testing.T) {
		lists, tasks := newRepos(t)
		ctx := context.Background()
		list := createList(t, lists, "filters", nil)

		doneHigh := createTask(t, tasks, list.ID, "done high", model.WithPriority(model.PriorityHigh))
		setStatus(t, tasks, doneHigh, model.StatusCompleted)
		doneLow := createTask(t, tasks, list.ID, "done low", model.WithPriority(model.PriorityLow))
		setStatus(t, tasks, doneLow, model.StatusCompleted)
		openHigh := createTask(t, tasks, list.ID, "open high", model.WithPriority(model.PriorityHigh))

		completed := model.StatusCompleted
		high := model.PriorityHigh

		tests := []struct {
			name   string
			filter model.TaskFilter
			want   []int64
		}{
			{"none", model.TaskFilter{}, sortedIDs(doneHigh.ID, doneLow.ID, openHigh.ID)},
			{"status", model.TaskFilter{Status: &completed}, sortedIDs(doneHigh.ID, doneLow.ID)},
			{"priority", model.TaskFilter{Priority: &high}, sortedIDs(doneHigh.ID, openHigh.ID)},
			{"both", model.TaskFilter{Status: &completed, Priority: &high}, sortedIDs(doneHigh.ID)},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := tasks.GetFilteredTasks(ctx, list.ID, tt.filter)
				require.NoError(t, err)
				assert.Equal(t, tt.want, taskIDs(got))
			})
		}
	})

	t.Run("Update", func(t *testing.T) {
		lists, tasks := newRepos(t)
		ctx := context.Background()
		list := createList(t, lists, "edits", nil)
		task := createTask(t, tasks, list.ID, "draft")

		require.NoError(t, task.SetTitle("final"))
		require.NoError(t, task.SetPriority(model.PriorityUrgent))
		require.NoError(t, task.UpdatePercentage(80))

		_, err := tasks.Update(ctx, task)
		require.NoError(t, err)

		got, err := tasks.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "final", got.Title)
		assert.Equal(t, model.PriorityUrgent, got.Priority)
		assert.Equal(t, 80, got.Percentage)
		assert.NotNil(t, got.UpdatedAt)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		lists, tasks := newRepos(t)
		list := createList(t, lists, "ghosts", nil)
		task, err := model.NewTask(list.ID, "ghost")
		require.NoError(t, err)
		task.ID = missingID

		_, err = tasks.Update(context.Background(), task)

		assert.ErrorIs(t, err, model.ErrTaskNotFound)
	})

	t.Run("UpdateStatusPersistsPercentage", func(t *testing.T) {
		lists, tasks := newRepos(t)
		ctx := context.Background()
		list := createList(t, lists, "status", nil)
		task := createTask(t, tasks, list.ID, "ship it", model.WithPercentage(40))

		updated := setStatus(t, tasks, task, model.StatusCompleted)
		assert.Equal(t, model.StatusCompleted, updated.Status)
		assert.Equal(t, 100, updated.Percentage)
		assert.NotNil(t, updated.UpdatedAt)

		updated = setStatus(t, tasks, updated, model.StatusPending)
		assert.Equal(t, 0, updated.Percentage)

		got, err := tasks.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusPending, got.Status)
		assert.Equal(t, 0, got.Percentage)
	})

	t.Run("UpdateStatusMissing", func(t *testing.T) {
		lists, tasks := newRepos(t)
		list := createList(t, lists, "vanished", nil)
		task, err := model.NewTask(list.ID, "vanished")
		require.NoError(t, err)
		task.ID = missingID
		require.NoError(t, task.UpdateStatus(model.StatusCompleted))

		_, err = tasks.UpdateStatus(context.Background(), task)

		assert.ErrorIs(t, err, repository.ErrInconsistentState)
	})

	t.Run("Delete", func(t *testing.T) {
		lists, tasks := newRepos(t)
		ctx := context.Background()
		list := createList(t, lists, "deletes", nil)
		task := createTask(t, tasks, list.ID, "gone")

		found, err := tasks.Delete(ctx, task.ID)
		require.NoError(t, err)
		assert.True(t, found)

		found, err = tasks.Delete(ctx, task.ID)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("DeleteByTaskListID", func(t *testing.T) {
		lists, tasks := newRepos(t)
		ctx := context.Background()
		list := createList(t, lists, "bulk", nil)
		keep := createList(t, lists, "keep", nil)
		createTask(t, tasks, list.ID, "one")
		createTask(t, tasks, list.ID, "two")
		kept := createTask(t, tasks, keep.ID, "stays")

		found, err := tasks.DeleteByTaskListID(ctx, list.ID)
		require.NoError(t, err)
		assert.True(t, found)

		left, err := tasks.GetByTaskListID(ctx, list.ID)
		require.NoError(t, err)
		assert.Empty(t, left)

		found, err = tasks.DeleteByTaskListID(ctx, list.ID)
		require.NoError(t, err)
		assert.False(t, found)

		got, err := tasks.GetByID(ctx, kept.ID)
		require.NoError(t, err)
		assert.NotNil(t, got)
	})

	t.Run("Count", func(t *testing.T) {
		lists, tasks := newRepos(t)
		ctx := context.Background()
		list := createList(t, lists, "counted", nil)

		before, err := tasks.Count(ctx)
		require.NoError(t, err)
		createTask(t, tasks, list.ID, "a")
		createTask(t, tasks, list.ID, "b")
		createTask(t, tasks, list.ID, "c")

		after, err := tasks.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, before+3, after)
	})
}

func createList(t *testing.T, lists repository.TaskListRepository, title string, description *string) *model.TaskList {
	t.Helper()
	list, err := model.NewTaskList(title, model.WithListDescription(description))
	require.NoError(t, err)

	created, err := lists.Create(context.Background(), list)
	require.NoError(t, err)
	require.Positive(t, created.ID)
	return created
}

func createTask(t *testing.T, tasks repository.TaskRepository, listID int64, title string, opts ...model.TaskOption) *model.Task {
	t.Helper()
	task, err := model.NewTask(listID, title, opts...)
	require.NoError(t, err)

	created, err := tasks.Create(context.Background(), task)
	require.NoError(t, err)
	return created
}

func setStatus(t *testing.T, tasks repository.TaskRepository, task *model.Task, status model.TaskStatus) *model.Task {
	t.Helper()
	require.NoError(t, task.UpdateStatus(status))

	updated, err := tasks.UpdateStatus(context.Background(), task)
	require.NoError(t, err)
	return updated
}

// sortedIDs is the order by-list queries must return; auto-allocated ids
// are not monotonic on every engine.
func sortedIDs(ids ...int64) []int64 {
	slices.Sort(ids)
	return ids
}

func taskIDs(tasks []*model.Task) []int64 {
	ids := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}
