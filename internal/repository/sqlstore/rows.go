package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/hiroki-koketsu/tasklists/internal/model"
)

type taskListRow struct {
	ID          int64          `db:"id"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   sql.NullTime   `db:"updated_at"`
}

func (r taskListRow) toModel() *model.TaskList {
	return &model.TaskList{
		ID:          r.ID,
		Title:       r.Title,
		Description: stringPtr(r.Description),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   timePtr(r.UpdatedAt),
	}
}

type taskRow struct {
	ID          int64          `db:"id"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	Status      string         `db:"status"`
	Percentage  int            `db:"percentage"`
	Priority    string         `db:"priority"`
	TaskListID  int64          `db:"task_list_id"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   sql.NullTime   `db:"updated_at"`
}

func (r taskRow) toModel() *model.Task {
	return &model.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: stringPtr(r.Description),
		Status:      model.TaskStatus(r.Status),
		Percentage:  r.Percentage,
		Priority:    model.TaskPriority(r.Priority),
		TaskListID:  r.TaskListID,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   timePtr(r.UpdatedAt),
	}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// affectedRows reads RowsAffected, which some drivers can fail to report.
func affectedRows(result sql.Result) (int64, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}
	return n, nil
}
