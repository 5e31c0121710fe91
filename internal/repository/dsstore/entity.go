// Package dsstore implements the repositories on Google Cloud Datastore.
//
// Lists and tasks are root entities with auto-allocated int64 ids; a task
// references its list through the indexed task_list_id property rather
// than a key ancestor, so a task can be fetched by id alone.
package dsstore

import (
	"context"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/datastore"

	"github.com/hiroki-koketsu/tasklists/internal/model"
)

const (
	KindTaskList = "TaskList"
	KindTask     = "Task"

	// maxBatch is the Datastore limit on keys per multi-operation.
	maxBatch = 500
)

// NewClient creates a Datastore client. The client library picks up
// DATASTORE_EMULATOR_HOST on its own.
func NewClient(ctx context.Context, projectID string) (*datastore.Client, error) {
	if emulatorHost := os.Getenv("DATASTORE_EMULATOR_HOST"); emulatorHost != "" && projectID == "" {
		projectID = "local"
	}

	client, err := datastore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create datastore client: %w", err)
	}
	return client, nil
}

type taskListEntity struct {
	Title          string    `datastore:"title,noindex"`
	Description    string    `datastore:"description,noindex"`
	HasDescription bool      `datastore:"has_description,noindex"`
	CreatedAt      time.Time `datastore:"created_at"`
	UpdatedAt      time.Time `datastore:"updated_at,noindex"`
}

func newTaskListEntity(l *model.TaskList) *taskListEntity {
	e := &taskListEntity{
		Title:     l.Title,
		CreatedAt: l.CreatedAt.UTC(),
	}
	if l.Description != nil {
		e.Description, e.HasDescription = *l.Description, true
	}
	if l.UpdatedAt != nil {
		e.UpdatedAt = l.UpdatedAt.UTC()
	}
	return e
}

func (e *taskListEntity) toModel(id int64) *model.TaskList {
	return &model.TaskList{
		ID:          id,
		Title:       e.Title,
		Description: optionalString(e.Description, e.HasDescription),
		CreatedAt:   e.CreatedAt.UTC(),
		UpdatedAt:   optionalTime(e.UpdatedAt),
	}
}

type taskEntity struct {
	Title          string    `datastore:"title,noindex"`
	Description    string    `datastore:"description,noindex"`
	HasDescription bool      `datastore:"has_description,noindex"`
	Status         string    `datastore:"status"`
	Percentage     int       `datastore:"percentage,noindex"`
	Priority       string    `datastore:"priority"`
	TaskListID     int64     `datastore:"task_list_id"`
	CreatedAt      time.Time `datastore:"created_at"`
	UpdatedAt      time.Time `datastore:"updated_at,noindex"`
}

func newTaskEntity(t *model.Task) *taskEntity {
	e := &taskEntity{
		Title:      t.Title,
		Status:     string(t.Status),
		Percentage: t.Percentage,
		Priority:   string(t.Priority),
		TaskListID: t.TaskListID,
		CreatedAt:  t.CreatedAt.UTC(),
	}
	if t.Description != nil {
		e.Description, e.HasDescription = *t.Description, true
	}
	if t.UpdatedAt != nil {
		e.UpdatedAt = t.UpdatedAt.UTC()
	}
	return e
}

func (e *taskEntity) toModel(id int64) *model.Task {
	return &model.Task{
		ID:          id,
		Title:       e.Title,
		Description: optionalString(e.Description, e.HasDescription),
		Status:      model.TaskStatus(e.Status),
		Percentage:  e.Percentage,
		Priority:    model.TaskPriority(e.Priority),
		TaskListID:  e.TaskListID,
		CreatedAt:   e.CreatedAt.UTC(),
		UpdatedAt:   optionalTime(e.UpdatedAt),
	}
}

func optionalString(s string, ok bool) *string {
	if !ok {
		return nil
	}
	return &s
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	t = t.UTC()
	return &t
}
