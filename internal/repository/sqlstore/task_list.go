package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hiroki-koketsu/tasklists/internal/model"
	"github.com/hiroki-koketsu/tasklists/internal/repository"
)

var tracer = otel.Tracer("github.com/hiroki-koketsu/tasklists/internal/repository/sqlstore")

const taskListColumns = "id, title, description, created_at, updated_at"

// TaskListRepository stores task lists in the task_lists table.
type TaskListRepository struct {
	db *sqlx.DB
}

var _ repository.TaskListRepository = (*TaskListRepository)(nil)

// NewTaskListRepository creates a new TaskListRepository.
func NewTaskListRepository(db *sqlx.DB) *TaskListRepository {
	return &TaskListRepository{db: db}
}

// Create inserts a list and returns the stored row.
func (r *TaskListRepository) Create(ctx context.Context, list *model.TaskList) (*model.TaskList, error) {
	ctx, span := r.start(ctx, "TaskListRepository.Create", attribute.String("task_list.title", list.Title))
	defer span.End()

	var id int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO task_lists (title, description, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`),
		list.Title, nullString(list.Description), list.CreatedAt.UTC(), nullTime(list.UpdatedAt),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("creating task list: %w", err)
	}
	span.SetAttributes(attribute.Int64("task_list.id", id))

	created, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("%w: task list %d not found after insert", repository.ErrInconsistentState, id)
	}
	return created, nil
}

// GetByID retrieves a single list, or nil when it does not exist.
func (r *TaskListRepository) GetByID(ctx context.Context, id int64) (*model.TaskList, error) {
	ctx, span := r.start(ctx, "TaskListRepository.GetByID", attribute.Int64("task_list.id", id))
	defer span.End()

	var row taskListRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind("SELECT "+taskListColumns+" FROM task_lists WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetAttributes(attribute.Bool("task_list.found", false))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting task list %d: %w", id, err)
	}

	span.SetAttributes(attribute.Bool("task_list.found", true))
	return row.toModel(), nil
}

// GetAll retrieves every list ordered by id.
func (r *TaskListRepository) GetAll(ctx context.Context) ([]*model.TaskList, error) {
	ctx, span := r.start(ctx, "TaskListRepository.GetAll")
	defer span.End()

	var rows []taskListRow
	if err := r.db.SelectContext(ctx, &rows, "SELECT "+taskListColumns+" FROM task_lists ORDER BY id"); err != nil {
		return nil, fmt.Errorf("querying task lists: %w", err)
	}

	lists := make([]*model.TaskList, 0, len(rows))
	for _, row := range rows {
		lists = append(lists, row.toModel())
	}

	span.SetAttributes(attribute.Int("task_list.count", len(lists)))
	return lists, nil
}

// Update writes title, description and updated_at of an existing list.
func (r *TaskListRepository) Update(ctx context.Context, list *model.TaskList) (*model.TaskList, error) {
	ctx, span := r.start(ctx, "TaskListRepository.Update", attribute.Int64("task_list.id", list.ID))
	defer span.End()

	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE task_lists SET title = ?, description = ?, updated_at = ?
		WHERE id = ?`),
		list.Title, nullString(list.Description), nullTime(list.UpdatedAt), list.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating task list %d: %w", list.ID, err)
	}
	rows, err := affectedRows(result)
	if err != nil {
		return nil, fmt.Errorf("updating task list %d: %w", list.ID, err)
	}
	if rows == 0 {
		span.SetAttributes(attribute.Bool("task_list.found", false))
		return nil, model.ErrTaskListNotFound
	}

	updated := *list
	updated.Tasks = nil
	return &updated, nil
}

// Delete removes a list and reports whether a row was deleted.
func (r *TaskListRepository) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, span := r.start(ctx, "TaskListRepository.Delete", attribute.Int64("task_list.id", id))
	defer span.End()

	result, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM task_lists WHERE id = ?"), id)
	if err != nil {
		return false, fmt.Errorf("deleting task list %d: %w", id, err)
	}
	rows, err := affectedRows(result)
	if err != nil {
		return false, fmt.Errorf("deleting task list %d: %w", id, err)
	}

	span.SetAttributes(attribute.Bool("task_list.found", rows > 0))
	return rows > 0, nil
}

// Count returns the number of stored lists.
func (r *TaskListRepository) Count(ctx context.Context) (int64, error) {
	ctx, span := r.start(ctx, "TaskListRepository.Count")
	defer span.End()

	var n int64
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM task_lists"); err != nil {
		return 0, fmt.Errorf("counting task lists: %w", err)
	}

	span.SetAttributes(attribute.Int64("task_list.count", n))
	return n, nil
}

func (r *TaskListRepository) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("db.system", r.db.DriverName()))
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
