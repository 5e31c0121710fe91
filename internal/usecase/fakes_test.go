package usecase

import (
	"context"
	"testing"

	"github.com/hiroki-koketsu/tasklists/internal/model"
	"github.com/hiroki-koketsu/tasklists/internal/repository"
)

// fakeTaskRepository fails the test on any call whose func field is unset.
type fakeTaskRepository struct {
	t *testing.T

	createFn             func(ctx context.Context, task *model.Task) (*model.Task, error)
	getByIDFn            func(ctx context.Context, id int64) (*model.Task, error)
	getByTaskListIDFn    func(ctx context.Context, taskListID int64) ([]*model.Task, error)
	getFilteredTasksFn   func(ctx context.Context, taskListID int64, filter model.TaskFilter) ([]*model.Task, error)
	updateFn             func(ctx context.Context, task *model.Task) (*model.Task, error)
	updateStatusFn       func(ctx context.Context, task *model.Task) (*model.Task, error)
	deleteFn             func(ctx context.Context, id int64) (bool, error)
	deleteByTaskListIDFn func(ctx context.Context, taskListID int64) (bool, error)
}

var _ repository.TaskRepository = (*fakeTaskRepository)(nil)

func (f *fakeTaskRepository) unexpected(name string) {
	f.t.Helper()
	f.t.Fatalf("unexpected call to TaskRepository.%s", name)
}

func (f *fakeTaskRepository) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	if f.createFn == nil {
		f.unexpected("Create")
	}
	return f.createFn(ctx, task)
}

func (f *fakeTaskRepository) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	if f.getByIDFn == nil {
		f.unexpected("GetByID")
	}
	return f.getByIDFn(ctx, id)
}

func (f *fakeTaskRepository) GetByTaskListID(ctx context.Context, taskListID int64) ([]*model.Task, error) {
	if f.getByTaskListIDFn == nil {
		f.unexpected("GetByTaskListID")
	}
	return f.getByTaskListIDFn(ctx, taskListID)
}

func (f *fakeTaskRepository) GetFilteredTasks(ctx context.Context, taskListID int64, filter model.TaskFilter) ([]*model.Task, error) {
	if f.getFilteredTasksFn == nil {
		f.unexpected("GetFilteredTasks")
	}
	return f.getFilteredTasksFn(ctx, taskListID, filter)
}

func (f *fakeTaskRepository) Update(ctx context.Context, task *model.Task) (*model.Task, error) {
	if f.updateFn == nil {
		f.unexpected("Update")
	}
	return f.updateFn(ctx, task)
}

func (f *fakeTaskRepository) UpdateStatus(ctx context.Context, task *model.Task) (*model.Task, error) {
	if f.updateStatusFn == nil {
		f.unexpected("UpdateStatus")
	}
	return f.updateStatusFn(ctx, task)
}

func (f *fakeTaskRepository) Delete(ctx context.Context, id int64) (bool, error) {
	if f.deleteFn == nil {
		f.unexpected("Delete")
	}
	return f.deleteFn(ctx, id)
}

func (f *fakeTaskRepository) DeleteByTaskListID(ctx context.Context, taskListID int64) (bool, error) {
	if f.deleteByTaskListIDFn == nil {
		f.unexpected("DeleteByTaskListID")
	}
	return f.deleteByTaskListIDFn(ctx, taskListID)
}

func (f *fakeTaskRepository) Count(context.Context) (int64, error) {
	return 0, nil
}

// fakeTaskListRepository fails the test on any call whose func field is unset.
type fakeTaskListRepository struct {
	t *testing.T

	getByIDFn func(ctx context.Context, id int64) (*model.TaskList, error)
	deleteFn  func(ctx context.Context, id int64) (bool, error)
}

var _ repository.TaskListRepository = (*fakeTaskListRepository)(nil)

func (f *fakeTaskListRepository) unexpected(name string) {
	f.t.Helper()
	f.t.Fatalf("unexpected call to TaskListRepository.%s", name)
}

func (f *fakeTaskListRepository) Create(context.Context, *model.TaskList) (*model.TaskList, error) {
	f.unexpected("Create")
	return nil, nil
}

func (f *fakeTaskListRepository) GetByID(ctx context.Context, id int64) (*model.TaskList, error) {
	if f.getByIDFn == nil {
		f.unexpected("GetByID")
	}
	return f.getByIDFn(ctx, id)
}

func (f *fakeTaskListRepository) GetAll(context.Context) ([]*model.TaskList, error) {
	f.unexpected("GetAll")
	return nil, nil
}

func (f *fakeTaskListRepository) Update(context.Context, *model.TaskList) (*model.TaskList, error) {
	f.unexpected("Update")
	return nil, nil
}

func (f *fakeTaskListRepository) Delete(ctx context.Context, id int64) (bool, error) {
	if f.deleteFn == nil {
		f.unexpected("Delete")
	}
	return f.deleteFn(ctx, id)
}

func (f *fakeTaskListRepository) Count(context.Context) (int64, error) {
	return 0, nil
}
