// Package usecase orchestrates task list and task operations on top of the
// repository contracts and returns response-shaped results.
package usecase

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hiroki-koketsu/tasklists/internal/model"
	"github.com/hiroki-koketsu/tasklists/internal/repository"
)

var tracer = otel.Tracer("github.com/hiroki-koketsu/tasklists/internal/usecase")

// TaskListUseCases handles task list CRUD and computes list aggregates.
type TaskListUseCases struct {
	lists repository.TaskListRepository
	tasks repository.TaskRepository
}

// NewTaskListUseCases creates a new TaskListUseCases.
func NewTaskListUseCases(lists repository.TaskListRepository, tasks repository.TaskRepository) *TaskListUseCases {
	return &TaskListUseCases{lists: lists, tasks: tasks}
}

// CreateTaskList persists a new, empty list.
func (u *TaskListUseCases) CreateTaskList(ctx context.Context, req model.CreateTaskListRequest) (*model.TaskListResponse, error) {
	ctx, span := tracer.Start(ctx, "TaskListUseCases.CreateTaskList")
	defer span.End()

	list, err := model.NewTaskList(req.Title, model.WithListDescription(req.Description))
	if err != nil {
		return nil, err
	}

	created, err := u.lists.Create(ctx, list)
	if err != nil {
		return nil, fmt.Errorf("create task list: %w", err)
	}

	span.SetAttributes(attribute.Int64("task_list.id", created.ID))
	resp := model.NewTaskListResponse(created)
	return &resp, nil
}

// GetTaskList returns a list with aggregates over its current tasks.
func (u *TaskListUseCases) GetTaskList(ctx context.Context, id int64) (*model.TaskListResponse, error) {
	ctx, span := tracer.Start(ctx, "TaskListUseCases.GetTaskList",
		trace.WithAttributes(attribute.Int64("task_list.id", id)),
	)
	defer span.End()

	list, err := u.lists.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task list: %w", err)
	}
	if list == nil {
		return nil, model.ErrTaskListNotFound
	}

	if err := hydrate(ctx, u.tasks, list); err != nil {
		return nil, err
	}

	resp := model.NewTaskListResponse(list)
	return &resp, nil
}

// GetAllTaskLists returns every list, each hydrated with its own query.
func (u *TaskListUseCases) GetAllTaskLists(ctx context.Context) ([]model.TaskListResponse, error) {
	ctx, span := tracer.Start(ctx, "TaskListUseCases.GetAllTaskLists")
	defer span.End()

	lists, err := u.lists.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get task lists: %w", err)
	}

	out := make([]model.TaskListResponse, 0, len(lists))
	for _, list := range lists {
		if err := hydrate(ctx, u.tasks, list); err != nil {
			return nil, err
		}
		out = append(out, model.NewTaskListResponse(list))
	}

	span.SetAttributes(attribute.Int("task_list.count", len(out)))
	return out, nil
}

// UpdateTaskList applies the fields present in req.
func (u *TaskListUseCases) UpdateTaskList(ctx context.Context, id int64, req model.UpdateTaskListRequest) (*model.TaskListResponse, error) {
	ctx, span := tracer.Start(ctx, "TaskListUseCases.UpdateTaskList",
		trace.WithAttributes(attribute.Int64("task_list.id", id)),
	)
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	list, err := u.lists.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task list: %w", err)
	}
	if list == nil {
		return nil, model.ErrTaskListNotFound
	}

	if req.Title.Set {
		if err := list.SetTitle(req.Title.Value); err != nil {
			return nil, err
		}
	}
	if req.Description.Set {
		if err := list.SetDescription(req.Description.Ptr()); err != nil {
			return nil, err
		}
	}
	list.Touch()

	updated, err := u.lists.Update(ctx, list)
	if err != nil {
		return nil, fmt.Errorf("update task list: %w", err)
	}

	if err := hydrate(ctx, u.tasks, updated); err != nil {
		return nil, err
	}

	resp := model.NewTaskListResponse(updated)
	return &resp, nil
}

// DeleteTaskList deletes the list's tasks and then the list itself. It
// reports whether the list existed.
func (u *TaskListUseCases) DeleteTaskList(ctx context.Context, id int64) (bool, error) {
	ctx, span := tracer.Start(ctx, "TaskListUseCases.DeleteTaskList",
		trace.WithAttributes(attribute.Int64("task_list.id", id)),
	)
	defer span.End()

	if _, err := u.tasks.DeleteByTaskListID(ctx, id); err != nil {
		return false, fmt.Errorf("delete tasks of list: %w", err)
	}

	found, err := u.lists.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete task list: %w", err)
	}

	span.SetAttributes(attribute.Bool("task_list.found", found))
	return found, nil
}

// hydrate loads the list's tasks so its aggregates can be computed.
func hydrate(ctx context.Context, tasks repository.TaskRepository, list *model.TaskList) error {
	loaded, err := tasks.GetByTaskListID(ctx, list.ID)
	if err != nil {
		return fmt.Errorf("load tasks of list %d: %w", list.ID, err)
	}
	list.Tasks = loaded
	return nil
}
