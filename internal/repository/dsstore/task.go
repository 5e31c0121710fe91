package dsstore

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"cloud.google.com/go/datastore"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hiroki-koketsu/tasklists/internal/model"
	"github.com/hiroki-koketsu/tasklists/internal/repository"
)

// TaskRepository stores tasks as Task entities.
type TaskRepository struct {
	client *datastore.Client
}

var _ repository.TaskRepository = (*TaskRepository)(nil)

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(client *datastore.Client) *TaskRepository {
	return &TaskRepository{client: client}
}

// Create puts a new entity under an auto-allocated id.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.Create",
		trace.WithAttributes(
			attribute.String("task.title", task.Title),
			attribute.Int64("task_list.id", task.TaskListID),
		),
	)
	defer span.End()

	e := newTaskEntity(task)
	key, err := r.client.Put(ctx, datastore.IncompleteKey(KindTask, nil), e)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	span.SetAttributes(attribute.Int64("task.id", key.ID))
	return e.toModel(key.ID), nil
}

// GetByID retrieves a task, or nil when it does not exist.
func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.GetByID",
		trace.WithAttributes(attribute.Int64("task.id", id)),
	)
	defer span.End()

	var e taskEntity
	err := r.client.Get(ctx, datastore.IDKey(KindTask, id, nil), &e)
	if errors.Is(err, datastore.ErrNoSuchEntity) {
		span.SetAttributes(attribute.Bool("task.found", false))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %d: %w", id, err)
	}

	span.SetAttributes(attribute.Bool("task.found", true))
	return e.toModel(id), nil
}

// GetByTaskListID retrieves every task of a list.
func (r *TaskRepository) GetByTaskListID(ctx context.Context, taskListID int64) ([]*model.Task, error) {
	return r.GetFilteredTasks(ctx, taskListID, model.TaskFilter{})
}

// GetFilteredTasks runs an equality-only query, which needs no composite index.
func (r *TaskRepository) GetFilteredTasks(ctx context.Context, taskListID int64, filter model.TaskFilter) ([]*model.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.GetFilteredTasks",
		trace.WithAttributes(attribute.Int64("task_list.id", taskListID)),
	)
	defer span.End()

	q := datastore.NewQuery(KindTask).FilterField("task_list_id", "=", taskListID)
	if filter.Status != nil {
		q = q.FilterField("status", "=", string(*filter.Status))
	}
	if filter.Priority != nil {
		q = q.FilterField("priority", "=", string(*filter.Priority))
	}

	var entities []taskEntity
	keys, err := r.client.GetAll(ctx, q, &entities)
	if err != nil {
		return nil, fmt.Errorf("querying tasks of list %d: %w", taskListID, err)
	}

	tasks := make([]*model.Task, 0, len(keys))
	for i, key := range keys {
		tasks = append(tasks, entities[i].toModel(key.ID))
	}
	slices.SortFunc(tasks, func(a, b *model.Task) int { return cmp.Compare(a.ID, b.ID) })

	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	return tasks, nil
}

// Update overwrites an existing task inside a transaction.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) (*model.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.Update",
		trace.WithAttributes(attribute.Int64("task.id", task.ID)),
	)
	defer span.End()

	key := datastore.IDKey(KindTask, task.ID, nil)
	e := newTaskEntity(task)

	_, err := r.client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		var current taskEntity
		if err := tx.Get(key, &current); err != nil {
			return err
		}
		_, err := tx.Put(key, e)
		return err
	})
	if errors.Is(err, datastore.ErrNoSuchEntity) {
		span.SetAttributes(attribute.Bool("task.found", false))
		return nil, model.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating task %d: %w", task.ID, err)
	}

	return e.toModel(task.ID), nil
}

// UpdateStatus writes status, percentage and updated_at in a transaction,
// then reads the entity back.
func (r *TaskRepository) UpdateStatus(ctx context.Context, task *model.Task) (*model.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.UpdateStatus",
		trace.WithAttributes(
			attribute.Int64("task.id", task.ID),
			attribute.String("task.status", string(task.Status)),
		),
	)
	defer span.End()

	key := datastore.IDKey(KindTask, task.ID, nil)
	patch := newTaskEntity(task)

	_, err := r.client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		var current taskEntity
		if err := tx.Get(key, &current); err != nil {
			if errors.Is(err, datastore.ErrNoSuchEntity) {
				return nil
			}
			return err
		}
		current.Status = patch.Status
		current.Percentage = patch.Percentage
		current.UpdatedAt = patch.UpdatedAt
		_, err := tx.Put(key, &current)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("updating status of task %d: %w", task.ID, err)
	}

	updated, err := r.GetByID(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: task %d not found after status update", repository.ErrInconsistentState, task.ID)
	}
	return updated, nil
}

// Delete removes a task and reports whether it existed.
func (r *TaskRepository) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.Delete",
		trace.WithAttributes(attribute.Int64("task.id", id)),
	)
	defer span.End()

	found, err := deleteIfExists(ctx, r.client, datastore.IDKey(KindTask, id, nil), &taskEntity{})
	if err != nil {
		return false, fmt.Errorf("deleting task %d: %w", id, err)
	}

	span.SetAttributes(attribute.Bool("task.found", found))
	return found, nil
}

// DeleteByTaskListID removes every task of a list in batches.
func (r *TaskRepository) DeleteByTaskListID(ctx context.Context, taskListID int64) (bool, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.DeleteByTaskListID",
		trace.WithAttributes(attribute.Int64("task_list.id", taskListID)),
	)
	defer span.End()

	q := datastore.NewQuery(KindTask).FilterField("task_list_id", "=", taskListID).KeysOnly()
	keys, err := r.client.GetAll(ctx, q, nil)
	if err != nil {
		return false, fmt.Errorf("querying tasks of list %d: %w", taskListID, err)
	}

	for batch := range slices.Chunk(keys, maxBatch) {
		if err := r.client.DeleteMulti(ctx, batch); err != nil {
			return false, fmt.Errorf("deleting tasks of list %d: %w", taskListID, err)
		}
	}

	span.SetAttributes(attribute.Int("task.deleted", len(keys)))
	return len(keys) > 0, nil
}

// Count returns the number of stored tasks.
func (r *TaskRepository) Count(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.Count")
	defer span.End()

	n, err := r.client.Count(ctx, datastore.NewQuery(KindTask).KeysOnly())
	if err != nil {
		return 0, fmt.Errorf("counting tasks: %w", err)
	}

	span.SetAttributes(attribute.Int("task.count", n))
	return int64(n), nil
}
