package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hiroki-koketsu/tasklists/internal/model"
	"github.com/hiroki-koketsu/tasklists/internal/repository"
)

const taskColumns = "id, title, description, status, percentage, priority, task_list_id, created_at, updated_at"

// TaskRepository stores tasks in the tasks table.
type TaskRepository struct {
	db *sqlx.DB
}

var _ repository.TaskRepository = (*TaskRepository)(nil)

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a task and returns the stored row.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	ctx, span := r.start(ctx, "TaskRepository.Create",
		attribute.String("task.title", task.Title),
		attribute.Int64("task_list.id", task.TaskListID),
	)
	defer span.End()

	var id int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO tasks (
			title, description, status, percentage, priority,
			task_list_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		task.Title, nullString(task.Description), string(task.Status), task.Percentage, string(task.Priority),
		task.TaskListID, task.CreatedAt.UTC(), nullTime(task.UpdatedAt),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	span.SetAttributes(attribute.Int64("task.id", id))

	created, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("%w: task %d not found after insert", repository.ErrInconsistentState, id)
	}
	return created, nil
}

// GetByID retrieves a single task, or nil when it does not exist.
func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	ctx, span := r.start(ctx, "TaskRepository.GetByID", attribute.Int64("task.id", id))
	defer span.End()

	var row taskRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind("SELECT "+taskColumns+" FROM tasks WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetAttributes(attribute.Bool("task.found", false))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %d: %w", id, err)
	}

	span.SetAttributes(attribute.Bool("task.found", true))
	return row.toModel(), nil
}

// GetByTaskListID retrieves every task of a list.
func (r *TaskRepository) GetByTaskListID(ctx context.Context, taskListID int64) ([]*model.Task, error) {
	return r.GetFilteredTasks(ctx, taskListID, model.TaskFilter{})
}

// GetFilteredTasks retrieves the tasks of a list matching every set field
// of filter.
func (r *TaskRepository) GetFilteredTasks(ctx context.Context, taskListID int64, filter model.TaskFilter) ([]*model.Task, error) {
	ctx, span := r.start(ctx, "TaskRepository.GetFilteredTasks", attribute.Int64("task_list.id", taskListID))
	defer span.End()

	conditions := []string{"task_list_id = ?"}
	args := []interface{}{taskListID}

	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
		span.SetAttributes(attribute.String("filter.status", string(*filter.Status)))
	}
	if filter.Priority != nil {
		conditions = append(conditions, "priority = ?")
		args = append(args, string(*filter.Priority))
		span.SetAttributes(attribute.String("filter.priority", string(*filter.Priority)))
	}

	query := "SELECT " + taskColumns + " FROM tasks WHERE " + strings.Join(conditions, " AND ") + " ORDER BY id"

	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("querying tasks of list %d: %w", taskListID, err)
	}

	tasks := make([]*model.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toModel())
	}

	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	return tasks, nil
}

// Update writes every mutable column of an existing task.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) (*model.Task, error) {
	ctx, span := r.start(ctx, "TaskRepository.Update", attribute.Int64("task.id", task.ID))
	defer span.End()

	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE tasks SET
			title = ?, description = ?, status = ?, percentage = ?,
			priority = ?, task_list_id = ?, updated_at = ?
		WHERE id = ?`),
		task.Title, nullString(task.Description), string(task.Status), task.Percentage,
		string(task.Priority), task.TaskListID, nullTime(task.UpdatedAt),
		task.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating task %d: %w", task.ID, err)
	}
	rows, err := affectedRows(result)
	if err != nil {
		return nil, fmt.Errorf("updating task %d: %w", task.ID, err)
	}
	if rows == 0 {
		span.SetAttributes(attribute.Bool("task.found", false))
		return nil, model.ErrTaskNotFound
	}

	updated := *task
	return &updated, nil
}

// UpdateStatus writes status, percentage and updated_at, then re-reads the row.
func (r *TaskRepository) UpdateStatus(ctx context.Context, task *model.Task) (*model.Task, error) {
	ctx, span := r.start(ctx, "TaskRepository.UpdateStatus",
		attribute.Int64("task.id", task.ID),
		attribute.String("task.status", string(task.Status)),
	)
	defer span.End()

	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE tasks SET status = ?, percentage = ?, updated_at = ?
		WHERE id = ?`),
		string(task.Status), task.Percentage, nullTime(task.UpdatedAt), task.ID,
	)
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

// Delete removes a task and reports whether a row was deleted.
func (r *TaskRepository) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, span := r.start(ctx, "TaskRepository.Delete", attribute.Int64("task.id", id))
	defer span.End()

	result, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM tasks WHERE id = ?"), id)
	if err != nil {
		return false, fmt.Errorf("deleting task %d: %w", id, err)
	}
	rows, err := affectedRows(result)
	if err != nil {
		return false, fmt.Errorf("deleting task %d: %w", id, err)
	}

	span.SetAttributes(attribute.Bool("task.found", rows > 0))
	return rows > 0, nil
}

// DeleteByTaskListID removes every task of a list and reports whether any
// row was deleted.
func (r *TaskRepository) DeleteByTaskListID(ctx context.Context, taskListID int64) (bool, error) {
	ctx, span := r.start(ctx, "TaskRepository.DeleteByTaskListID", attribute.Int64("task_list.id", taskListID))
	defer span.End()

	result, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM tasks WHERE task_list_id = ?"), taskListID)
	if err != nil {
		return false, fmt.Errorf("deleting tasks of list %d: %w", taskListID, err)
	}
	rows, err := affectedRows(result)
	if err != nil {
		return false, fmt.Errorf("deleting tasks of list %d: %w", taskListID, err)
	}

	span.SetAttributes(attribute.Int64("task.deleted", rows))
	return rows > 0, nil
}

// Count returns the number of stored tasks.
func (r *TaskRepository) Count(ctx context.Context) (int64, error) {
	ctx, span := r.start(ctx, "TaskRepository.Count")
	defer span.End()

	var n int64
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM tasks"); err != nil {
		return 0, fmt.Errorf("counting tasks: %w", err)
	}

	span.SetAttributes(attribute.Int64("task.count", n))
	return n, nil
}

func (r *TaskRepository) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("db.system", r.db.DriverName()))
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
