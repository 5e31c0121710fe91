package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hiroki-koketsu/tasklists/internal/model"
	"github.com/hiroki-koketsu/tasklists/internal/repository"
)

var tracer = otel.Tracer("github.com/hiroki-koketsu/tasklists/internal/repository/memory")

// TaskRepository provides an in-memory storage for tasks.
type TaskRepository struct {
	mu     sync.RWMutex
	nextID int64
	tasks  map[int64]model.Task
}

var _ repository.TaskRepository = (*TaskRepository)(nil)

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository() *TaskRepository {
	return &TaskRepository{
		tasks: make(map[int64]model.Task),
	}
}

// Create stores a copy of task under a freshly assigned id.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	_, span := tracer.Start(ctx, "TaskRepository.Create",
		trace.WithAttributes(
			attribute.String("task.title", task.Title),
			attribute.Int64("task_list.id", task.TaskListID),
		),
	)
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	stored := *task
	stored.ID = r.nextID
	r.tasks[stored.ID] = stored

	span.SetAttributes(attribute.Int64("task.id", stored.ID))
	return &stored, nil
}

// GetByID retrieves a task by its ID.
func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	_, span := tracer.Start(ctx, "TaskRepository.GetByID",
		trace.WithAttributes(attribute.Int64("task.id", id)),
	)
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	span.SetAttributes(attribute.Bool("task.found", ok))
	if !ok {
		return nil, nil
	}
	return &task, nil
}

// GetByTaskListID returns every task of a list.
func (r *TaskRepository) GetByTaskListID(ctx context.Context, taskListID int64) ([]*model.Task, error) {
	return r.GetFilteredTasks(ctx, taskListID, model.TaskFilter{})
}

// GetFilteredTasks returns the tasks of a list that match filter.
func (r *TaskRepository) GetFilteredTasks(ctx context.Context, taskListID int64, filter model.TaskFilter) ([]*model.Task, error) {
	_, span := tracer.Start(ctx, "TaskRepository.GetFilteredTasks",
		trace.WithAttributes(attribute.Int64("task_list.id", taskListID)),
	)
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]*model.Task, 0)
	for _, t := range r.tasks {
		if t.TaskListID != taskListID || !filter.Matches(&t) {
			continue
		}
		task := t
		tasks = append(tasks, &task)
	}
	slices.SortFunc(tasks, func(a, b *model.Task) int { return cmp.Compare(a.ID, b.ID) })

	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	return tasks, nil
}

// Update replaces the stored copy of an existing task.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) (*model.Task, error) {
	_, span := tracer.Start(ctx, "TaskRepository.Update",
		trace.WithAttributes(attribute.Int64("task.id", task.ID)),
	)
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[task.ID]; !ok {
		span.SetAttributes(attribute.Bool("task.found", false))
		return nil, model.ErrTaskNotFound
	}

	stored := *task
	r.tasks[task.ID] = stored

	span.SetAttributes(attribute.Bool("task.found", true))
	return &stored, nil
}

// UpdateStatus writes status, percentage and updated_at, then reads the task back.
func (r *TaskRepository) UpdateStatus(ctx context.Context, task *model.Task) (*model.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.UpdateStatus",
		trace.WithAttributes(
			attribute.Int64("task.id", task.ID),
			attribute.String("task.status", string(task.Status)),
		),
	)
	defer span.End()

	r.mu.Lock()
	if stored, ok := r.tasks[task.ID]; ok {
		stored.Status = task.Status
		stored.Percentage = task.Percentage
		stored.UpdatedAt = task.UpdatedAt
		r.tasks[task.ID] = stored
	}
	r.mu.Unlock()

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
	_, span := tracer.Start(ctx, "TaskRepository.Delete",
		trace.WithAttributes(attribute.Int64("task.id", id)),
	)
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.tasks[id]
	delete(r.tasks, id)

	span.SetAttributes(attribute.Bool("task.found", ok))
	return ok, nil
}

// DeleteByTaskListID removes every task of a list and reports whether any existed.
func (r *TaskRepository) DeleteByTaskListID(ctx context.Context, taskListID int64) (bool, error) {
	_, span := tracer.Start(ctx, "TaskRepository.DeleteByTaskListID",
		trace.WithAttributes(attribute.Int64("task_list.id", taskListID)),
	)
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for id, t := range r.tasks {
		if t.TaskListID == taskListID {
			delete(r.tasks, id)
			deleted++
		}
	}

	span.SetAttributes(attribute.Int("task.deleted", deleted))
	return deleted > 0, nil
}

// Count returns the current number of tasks.
func (r *TaskRepository) Count(ctx context.Context) (int64, error) {
	_, span := tracer.Start(ctx, "TaskRepository.Count")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	n := int64(len(r.tasks))
	span.SetAttributes(attribute.Int64("task.count", n))
	return n, nil
}
