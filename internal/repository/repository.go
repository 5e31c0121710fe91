// Package repository defines the persistence contracts the use-case layer
// depends on. Implementations live in the memory, sqlstore and dsstore
// subpackages.
package repository

import (
	"context"
	"errors"

	"github.com/hiroki-koketsu/tasklists/internal/model"
)

// ErrInconsistentState is returned when the store contradicts a write it
// just acknowledged, e.g. a row missing right after a successful update.
var ErrInconsistentState = errors.New("repository: inconsistent state")

// TaskListRepository persists task lists. GetByID returns (nil, nil) for
// an unknown id. Returned lists never carry hydrated tasks.
type TaskListRepository interface {
	Create(ctx context.Context, list *model.TaskList) (*model.TaskList, error)
	GetByID(ctx context.Context, id int64) (*model.TaskList, error)
	GetAll(ctx context.Context) ([]*model.TaskList, error)
	Update(ctx context.Context, list *model.TaskList) (*model.TaskList, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// TaskRepository persists tasks. GetByID returns (nil, nil) for an unknown
// id. Sequences are ordered by id.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) (*model.Task, error)
	GetByID(ctx context.Context, id int64) (*model.Task, error)
	GetByTaskListID(ctx context.Context, taskListID int64) ([]*model.Task, error)
	GetFilteredTasks(ctx context.Context, taskListID int64, filter model.TaskFilter) ([]*model.Task, error)
	Update(ctx context.Context, task *model.Task) (*model.Task, error)
	// UpdateStatus writes the task's status, percentage and updated_at and
	// returns the row as read back from the store.
	UpdateStatus(ctx context.Context, task *model.Task) (*model.Task, error)
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteByTaskListID(ctx context.Context, taskListID int64) (bool, error)
	Count(ctx context.Context) (int64, error)
}
