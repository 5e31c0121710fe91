package model

import (
	"time"
)

// CreateTaskListRequest represents the request body for creating a task list.
type CreateTaskListRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// Validate checks if the CreateTaskListRequest is valid.
func (r *CreateTaskListRequest) Validate() error {
	if err := validateTitle(r.Title); err != nil {
		return err
	}
	return validateDescription(r.Description)
}

// UpdateTaskListRequest represents a partial update of a task list.
// Omitted fields are left untouched; an explicit null description clears it.
type UpdateTaskListRequest struct {
	Title       Optional[string] `json:"title"`
	Description Optional[string] `json:"description"`
}

// Validate checks if the UpdateTaskListRequest is valid.
func (r *UpdateTaskListRequest) Validate() error {
	if r.Title.Set {
		if r.Title.Null {
			return &ValidationError{Field: "title", Message: "title cannot be null"}
		}
		if err := validateTitle(r.Title.Value); err != nil {
			return err
		}
	}
	if r.Description.Set {
		return validateDescription(r.Description.Ptr())
	}
	return nil
}

// CreateTaskRequest represents the request body for creating a task.
// Priority defaults to medium and Status, when given, goes through the
// regular status transition.
type CreateTaskRequest struct {
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	Priority    TaskPriority `json:"priority"`
	Percentage  int          `json:"percentage"`
	Status      TaskStatus   `json:"status"`
}

// Validate checks if the CreateTaskRequest is valid.
func (r *CreateTaskRequest) Validate() error {
	if err := validateTitle(r.Title); err != nil {
		return err
	}
	if err := validateDescription(r.Description); err != nil {
		return err
	}
	if err := validatePercentage(r.Percentage); err != nil {
		return err
	}
	if r.Priority != "" && !r.Priority.Valid() {
		return invalidPriority(r.Priority)
	}
	if r.Status != "" && !r.Status.Valid() {
		return invalidStatus(r.Status)
	}
	return nil
}

// UpdateTaskRequest represents a partial update of a task. Status is not
// part of it; see UpdateTaskStatusRequest.
type UpdateTaskRequest struct {
	Title       Optional[string]       `json:"title"`
	Description Optional[string]       `json:"description"`
	Priority    Optional[TaskPriority] `json:"priority"`
	Percentage  Optional[int]          `json:"percentage"`
}

// Validate checks if the UpdateTaskRequest is valid.
func (r *UpdateTaskRequest) Validate() error {
	if r.Title.Set {
		if r.Title.Null {
			return &ValidationError{Field: "title", Message: "title cannot be null"}
		}
		if err := validateTitle(r.Title.Value); err != nil {
			return err
		}
	}
	if r.Description.Set {
		if err := validateDescription(r.Description.Ptr()); err != nil {
			return err
		}
	}
	if r.Priority.Set && (r.Priority.Null || !r.Priority.Value.Valid()) {
		return invalidPriority(r.Priority.Value)
	}
	if r.Percentage.Set {
		if r.Percentage.Null {
			return &ValidationError{Field: "percentage", Message: "percentage cannot be null"}
		}
		if err := validatePercentage(r.Percentage.Value); err != nil {
			return err
		}
	}
	return nil
}

// UpdateTaskStatusRequest represents the request body for a status change.
type UpdateTaskStatusRequest struct {
	Status TaskStatus `json:"status"`
}

// Validate checks if the UpdateTaskStatusRequest is valid.
func (r *UpdateTaskStatusRequest) Validate() error {
	if !r.Status.Valid() {
		return invalidStatus(r.Status)
	}
	return nil
}

// TaskFilter narrows a task query. Nil fields are not applied; set fields
// must all match.
type TaskFilter struct {
	Status   *TaskStatus   `json:"status"`
	Priority *TaskPriority `json:"priority"`
}

// Matches reports whether t satisfies every set field of the filter.
func (f TaskFilter) Matches(t *Task) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	return true
}

// TaskResponse is the wire shape of a task.
type TaskResponse struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	Status      TaskStatus   `json:"status"`
	Percentage  int          `json:"percentage"`
	Priority    TaskPriority `json:"priority"`
	TaskListID  int64        `json:"task_list_id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   *time.Time   `json:"updated_at"`
}

// NewTaskResponse shapes a task for the presentation layer.
func NewTaskResponse(t *Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Percentage:  t.Percentage,
		Priority:    t.Priority,
		TaskListID:  t.TaskListID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// NewTaskResponses shapes a slice of tasks; the result is never nil.
func NewTaskResponses(tasks []*Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, NewTaskResponse(t))
	}
	return out
}

// TaskListResponse is the wire shape of a task list with its aggregates.
type TaskListResponse struct {
	ID                   int64      `json:"id"`
	Title                string     `json:"title"`
	Description          *string    `json:"description"`
	CompletionPercentage int        `json:"completion_percentage"`
	TotalTasks           int        `json:"total_tasks"`
	CompletedTasks       int        `json:"completed_tasks"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            *time.Time `json:"updated_at"`
}

// NewTaskListResponse computes the aggregates over the list's current tasks.
func NewTaskListResponse(l *TaskList) TaskListResponse {
	return TaskListResponse{
		ID:                   l.ID,
		Title:                l.Title,
		Description:          l.Description,
		CompletionPercentage: l.CompletionPercentage(),
		TotalTasks:           l.TotalTasks(),
		CompletedTasks:       l.CompletedTasks(),
		CreatedAt:            l.CreatedAt,
		UpdatedAt:            l.UpdatedAt,
	}
}

// FilteredTasksResponse carries the aggregates of the whole list alongside
// the subset of tasks that matched the filter.
type FilteredTasksResponse struct {
	TaskListResponse
	FilteredTasks []TaskResponse `json:"filtered_tasks"`
	FilterApplied TaskFilter     `json:"filter_applied"`
}

// ParseTaskFilter builds a filter from raw query values. Empty values are
// not applied.
func ParseTaskFilter(status, priority string) (TaskFilter, error) {
	var f TaskFilter
	if status != "" {
		s := TaskStatus(status)
		if !s.Valid() {
			return TaskFilter{}, invalidStatus(s)
		}
		f.Status = &s
	}
	if priority != "" {
		p := TaskPriority(priority)
		if !p.Valid() {
			return TaskFilter{}, invalidPriority(p)
		}
		f.Priority = &p
	}
	return f, nil
}
