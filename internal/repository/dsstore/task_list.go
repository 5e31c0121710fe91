package dsstore

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"cloud.google.com/go/datastore"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hiroki-koketsu/tasklists/internal/model"
	"github.com/hiroki-koketsu/tasklists/internal/repository"
)

var tracer = otel.Tracer("github.com/hiroki-koketsu/tasklists/internal/repository/dsstore")

// TaskListRepository stores task lists as TaskList entities.
type TaskListRepository struct {
	client *datastore.Client
}

var _ repository.TaskListRepository = (*TaskListRepository)(nil)

// NewTaskListRepository creates a new TaskListRepository.
func NewTaskListRepository(client *datastore.Client) *TaskListRepository {
	return &TaskListRepository{client: client}
}

// Create puts a new entity under an auto-allocated id.
func (r *TaskListRepository) Create(ctx context.Context, list *model.TaskList) (*model.TaskList, error) {
	ctx, span := tracer.Start(ctx, "TaskListRepository.Create",
		trace.WithAttributes(attribute.String("task_list.title", list.Title)),
	)
	defer span.End()

	e := newTaskListEntity(list)
	key, err := r.client.Put(ctx, datastore.IncompleteKey(KindTaskList, nil), e)
	if err != nil {
		return nil, fmt.Errorf("creating task list: %w", err)
	}

	span.SetAttributes(attribute.Int64("task_list.id", key.ID))
	return e.toModel(key.ID), nil
}

// GetByID retrieves a list, or nil when it does not exist.
func (r *TaskListRepository) GetByID(ctx context.Context, id int64) (*model.TaskList, error) {
	ctx, span := tracer.Start(ctx, "TaskListRepository.GetByID",
		trace.WithAttributes(attribute.Int64("task_list.id", id)),
	)
	defer span.End()

	var e taskListEntity
	err := r.client.Get(ctx, datastore.IDKey(KindTaskList, id, nil), &e)
	if errors.Is(err, datastore.ErrNoSuchEntity) {
		span.SetAttributes(attribute.Bool("task_list.found", false))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting task list %d: %w", id, err)
	}

	span.SetAttributes(attribute.Bool("task_list.found", true))
	return e.toModel(id), nil
}

// GetAll retrieves every list ordered by id.
func (r *TaskListRepository) GetAll(ctx context.Context) ([]*model.TaskList, error) {
	ctx, span := tracer.Start(ctx, "TaskListRepository.GetAll")
	defer span.End()

	var entities []taskListEntity
	keys, err := r.client.GetAll(ctx, datastore.NewQuery(KindTaskList), &entities)
	if err != nil {
		return nil, fmt.Errorf("querying task lists: %w", err)
	}

	lists := make([]*model.TaskList, 0, len(keys))
	for i, key := range keys {
		lists = append(lists, entities[i].toModel(key.ID))
	}
	slices.SortFunc(lists, func(a, b *model.TaskList) int { return cmp.Compare(a.ID, b.ID) })

	span.SetAttributes(attribute.Int("task_list.count", len(lists)))
	return lists, nil
}

// Update overwrites an existing list inside a transaction.
func (r *TaskListRepository) Update(ctx context.Context, list *model.TaskList) (*model.TaskList, error) {
	ctx, span := tracer.Start(ctx, "TaskListRepository.Update",
		trace.WithAttributes(attribute.Int64("task_list.id", list.ID)),
	)
	defer span.End()

	key := datastore.IDKey(KindTaskList, list.ID, nil)
	e := newTaskListEntity(list)

	_, err := r.client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		var current taskListEntity
		if err := tx.Get(key, &current); err != nil {
			return err
		}
		_, err := tx.Put(key, e)
		return err
	})
	if errors.Is(err, datastore.ErrNoSuchEntity) {
		span.SetAttributes(attribute.Bool("task_list.found", false))
		return nil, model.ErrTaskListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating task list %d: %w", list.ID, err)
	}

	return e.toModel(list.ID), nil
}

// Delete removes a list and reports whether it existed.
func (r *TaskListRepository) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, span := tracer.Start(ctx, "TaskListRepository.Delete",
		trace.WithAttributes(attribute.Int64("task_list.id", id)),
	)
	defer span.End()

	found, err := deleteIfExists(ctx, r.client, datastore.IDKey(KindTaskList, id, nil), &taskListEntity{})
	if err != nil {
		return false, fmt.Errorf("deleting task list %d: %w", id, err)
	}

	span.SetAttributes(attribute.Bool("task_list.found", found))
	return found, nil
}

// Count returns the number of stored lists.
func (r *TaskListRepository) Count(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "TaskListRepository.Count")
	defer span.End()

	n, err := r.client.Count(ctx, datastore.NewQuery(KindTaskList).KeysOnly())
	if err != nil {
		return 0, fmt.Errorf("counting task lists: %w", err)
	}

	span.SetAttributes(attribute.Int("task_list.count", n))
	return int64(n), nil
}

// deleteIfExists loads and deletes key in one transaction so the caller
// learns whether the entity was there.
func deleteIfExists(ctx context.Context, client *datastore.Client, key *datastore.Key, dst interface{}) (bool, error) {
	found := false
	_, err := client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		found = false
		if err := tx.Get(key, dst); err != nil {
			if errors.Is(err, datastore.ErrNoSuchEntity) {
				return nil
			}
			return err
		}
		found = true
		return tx.Delete(key)
	})
	return found, err
}
