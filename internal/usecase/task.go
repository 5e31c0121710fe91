package usecase

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hiroki-koketsu/tasklists/internal/model"
	"github.com/hiroki-koketsu/tasklists/internal/repository"
)

// TaskUseCases handles task CRUD and status transitions.
type TaskUseCases struct {
	tasks repository.TaskRepository
	lists repository.TaskListRepository
}

// NewTaskUseCases creates a new TaskUseCases.
func NewTaskUseCases(tasks repository.TaskRepository, lists repository.TaskListRepository) *TaskUseCases {
	return &TaskUseCases{tasks: tasks, lists: lists}
}

// CreateTask adds a task to an existing list. Nothing is written when the
// list does not exist.
func (u *TaskUseCases) CreateTask(ctx context.Context, taskListID int64, req model.CreateTaskRequest) (*model.TaskResponse, error) {
	ctx, span := tracer.Start(ctx, "TaskUseCases.CreateTask",
		trace.WithAttributes(attribute.Int64("task_list.id", taskListID)),
	)
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	list, err := u.lists.GetByID(ctx, taskListID)
	if err != nil {
		return nil, fmt.Errorf("get task list: %w", err)
	}
	if list == nil {
		return nil, model.ErrTaskListNotFound
	}

	opts := []model.TaskOption{
		model.WithTaskDescription(req.Description),
		model.WithPercentage(req.Percentage),
	}
	if req.Priority != "" {
		opts = append(opts, model.WithPriority(req.Priority))
	}

	task, err := model.NewTask(list.ID, req.Title, opts...)
	if err != nil {
		return nil, err
	}
	if req.Status != "" {
		if err := task.UpdateStatus(req.Status); err != nil {
			return nil, err
		}
	}

	created, err := u.tasks.Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	span.SetAttributes(attribute.Int64("task.id", created.ID))
	resp := model.NewTaskResponse(created)
	return &resp, nil
}

// GetTask returns a single task.
func (u *TaskUseCases) GetTask(ctx context.Context, id int64) (*model.TaskResponse, error) {
	ctx, span := tracer.Start(ctx, "TaskUseCases.GetTask",
		trace.WithAttributes(attribute.Int64("task.id", id)),
	)
	defer span.End()

	task, err := u.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		return nil, model.ErrTaskNotFound
	}

	resp := model.NewTaskResponse(task)
	return &resp, nil
}

// GetTasksByList returns the tasks of a list. An unknown list simply has
// no tasks.
func (u *TaskUseCases) GetTasksByList(ctx context.Context, taskListID int64) ([]model.TaskResponse, error) {
	ctx, span := tracer.Start(ctx, "TaskUseCases.GetTasksByList",
		trace.WithAttributes(attribute.Int64("task_list.id", taskListID)),
	)
	defer span.End()

	tasks, err := u.tasks.GetByTaskListID(ctx, taskListID)
	if err != nil {
		return nil, fmt.Errorf("get tasks of list: %w", err)
	}

	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	return model.NewTaskResponses(tasks), nil
}

// GetFilteredTasks returns the tasks of a list matching filter, together
// with aggregates computed over all of the list's tasks.
func (u *TaskUseCases) GetFilteredTasks(ctx context.Context, taskListID int64, filter model.TaskFilter) (*model.FilteredTasksResponse, error) {
	ctx, span := tracer.Start(ctx, "TaskUseCases.GetFilteredTasks",
		trace.WithAttributes(attribute.Int64("task_list.id", taskListID)),
	)
	defer span.End()

	list, err := u.lists.GetByID(ctx, taskListID)
	if err != nil {
		return nil, fmt.Errorf("get task list: %w", err)
	}
	if list == nil {
		return nil, model.ErrTaskListNotFound
	}

	if err := hydrate(ctx, u.tasks, list); err != nil {
		return nil, err
	}

	filtered, err := u.tasks.GetFilteredTasks(ctx, taskListID, filter)
	if err != nil {
		return nil, fmt.Errorf("get filtered tasks: %w", err)
	}

	span.SetAttributes(attribute.Int("task.count", len(filtered)))
	return &model.FilteredTasksResponse{
		TaskListResponse: model.NewTaskListResponse(list),
		FilteredTasks:    model.NewTaskResponses(filtered),
		FilterApplied:    filter,
	}, nil
}

// UpdateTask applies the fields present in req. Status is changed only
// through UpdateTaskStatus.
func (u *TaskUseCases) UpdateTask(ctx context.Context, id int64, req model.UpdateTaskRequest) (*model.TaskResponse, error) {
	ctx, span := tracer.Start(ctx, "TaskUseCases.UpdateTask",
		trace.WithAttributes(attribute.Int64("task.id", id)),
	)
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	task, err := u.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		return nil, model.ErrTaskNotFound
	}

	if req.Title.Set {
		if err := task.SetTitle(req.Title.Value); err != nil {
			return nil, err
		}
	}
	if req.Description.Set {
		if err := task.SetDescription(req.Description.Ptr()); err != nil {
			return nil, err
		}
	}
	if req.Priority.Set {
		if err := task.SetPriority(req.Priority.Value); err != nil {
			return nil, err
		}
	}
	if req.Percentage.Set {
		if err := task.UpdatePercentage(req.Percentage.Value); err != nil {
			return nil, err
		}
	}
	task.Touch()

	updated, err := u.tasks.Update(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	resp := model.NewTaskResponse(updated)
	return &resp, nil
}

// UpdateTaskStatus applies a status transition and returns the task as
// re-read from the store.
func (u *TaskUseCases) UpdateTaskStatus(ctx context.Context, id int64, req model.UpdateTaskStatusRequest) (*model.TaskResponse, error) {
	ctx, span := tracer.Start(ctx, "TaskUseCases.UpdateTaskStatus",
		trace.WithAttributes(
			attribute.Int64("task.id", id),
			attribute.String("task.status", string(req.Status)),
		),
	)
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	task, err := u.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		return nil, model.ErrTaskNotFound
	}

	if err := task.UpdateStatus(req.Status); err != nil {
		return nil, err
	}

	updated, err := u.tasks.UpdateStatus(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}

	resp := model.NewTaskResponse(updated)
	return &resp, nil
}

// DeleteTask removes a task and reports whether it existed.
func (u *TaskUseCases) DeleteTask(ctx context.Context, id int64) (bool, error) {
	ctx, span := tracer.Start(ctx, "TaskUseCases.DeleteTask",
		trace.WithAttributes(attribute.Int64("task.id", id)),
	)
	defer span.End()

	found, err := u.tasks.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}

	span.SetAttributes(attribute.Bool("task.found", found))
	return found, nil
}
