package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hiroki-koketsu/tasklists/internal/model"
	"github.com/hiroki-koketsu/tasklists/internal/repository"
)

// TaskListRepository provides an in-memory storage for task lists.
type TaskListRepository struct {
	mu     sync.RWMutex
	nextID int64
	lists  map[int64]model.TaskList
}

var _ repository.TaskListRepository = (*TaskListRepository)(nil)

// NewTaskListRepository creates a new TaskListRepository.
func NewTaskListRepository() *TaskListRepository {
	return &TaskListRepository{
		lists: make(map[int64]model.TaskList),
	}
}

// Create stores a copy of list under a freshly assigned id.
func (r *TaskListRepository) Create(ctx context.Context, list *model.TaskList) (*model.TaskList, error) {
	_, span := tracer.Start(ctx, "TaskListRepository.Create",
		trace.WithAttributes(attribute.String("task_list.title", list.Title)),
	)
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	stored := detach(list)
	stored.ID = r.nextID
	r.lists[stored.ID] = stored

	span.SetAttributes(attribute.Int64("task_list.id", stored.ID))
	return &stored, nil
}

// GetByID retrieves a task list by its ID.
func (r *TaskListRepository) GetByID(ctx context.Context, id int64) (*model.TaskList, error) {
	_, span := tracer.Start(ctx, "TaskListRepository.GetByID",
		trace.WithAttributes(attribute.Int64("task_list.id", id)),
	)
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	list, ok := r.lists[id]
	span.SetAttributes(attribute.Bool("task_list.found", ok))
	if !ok {
		return nil, nil
	}
	return &list, nil
}

// GetAll returns all task lists ordered by id.
func (r *TaskListRepository) GetAll(ctx context.Context) ([]*model.TaskList, error) {
	_, span := tracer.Start(ctx, "TaskListRepository.GetAll")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	lists := make([]*model.TaskList, 0, len(r.lists))
	for _, l := range r.lists {
		list := l
		lists = append(lists, &list)
	}
	slices.SortFunc(lists, func(a, b *model.TaskList) int { return cmp.Compare(a.ID, b.ID) })

	span.SetAttributes(attribute.Int("task_list.count", len(lists)))
	return lists, nil
}

// Update replaces the title, description and updated_at of an existing list.
func (r *TaskListRepository) Update(ctx context.Context, list *model.TaskList) (*model.TaskList, error) {
	_, span := tracer.Start(ctx, "TaskListRepository.Update",
		trace.WithAttributes(attribute.Int64("task_list.id", list.ID)),
	)
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lists[list.ID]; !ok {
		span.SetAttributes(attribute.Bool("task_list.found", false))
		return nil, model.ErrTaskListNotFound
	}

	stored := detach(list)
	r.lists[list.ID] = stored

	span.SetAttributes(attribute.Bool("task_list.found", true))
	return &stored, nil
}

// Delete removes a task list and reports whether it existed.
func (r *TaskListRepository) Delete(ctx context.Context, id int64) (bool, error) {
	_, span := tracer.Start(ctx, "TaskListRepository.Delete",
		trace.WithAttributes(attribute.Int64("task_list.id", id)),
	)
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.lists[id]
	delete(r.lists, id)

	span.SetAttributes(attribute.Bool("task_list.found", ok))
	return ok, nil
}

// Count returns the current number of task lists.
func (r *TaskListRepository) Count(ctx context.Context) (int64, error) {
	_, span := tracer.Start(ctx, "TaskListRepository.Count")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	n := int64(len(r.lists))
	span.SetAttributes(attribute.Int64("task_list.count", n))
	return n, nil
}

// detach copies a list without its hydrated tasks, which are never stored.
func detach(list *model.TaskList) model.TaskList {
	stored := *list
	stored.Tasks = nil
	return stored
}
