package model

import (
	"time"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusCancelled  TaskStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// TaskPriority ranks how urgent a task is.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Task represents a single unit of work inside a task list.
// A zero ID means the task has not been persisted yet.
type Task struct {
	ID          int64
	Title       string
	Description *string
	Status      TaskStatus
	Percentage  int
	Priority    TaskPriority
	TaskListID  int64
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// TaskOption customizes a task built by NewTask.
type TaskOption func(*Task)

// WithTaskDescription sets the optional description.
func WithTaskDescription(description *string) TaskOption {
	return func(t *Task) { t.Description = description }
}

// WithPriority overrides the default medium priority.
func WithPriority(p TaskPriority) TaskOption {
	return func(t *Task) { t.Priority = p }
}

// WithPercentage sets the initial completion percentage.
func WithPercentage(p int) TaskOption {
	return func(t *Task) { t.Percentage = p }
}

// WithTaskCreatedAt overrides the creation timestamp.
func WithTaskCreatedAt(at time.Time) TaskOption {
	return func(t *Task) { t.CreatedAt = at }
}

// NewTask builds a pending, medium priority task at 0% that belongs to taskListID.
func NewTask(taskListID int64, title string, opts ...TaskOption) (*Task, error) {
	t := &Task{
		Title:      title,
		Status:     StatusPending,
		Priority:   PriorityMedium,
		TaskListID: taskListID,
		CreatedAt:  now(),
	}
	for _, opt := range opts {
		opt(t)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks every field against its allowed range.
func (t *Task) Validate() error {
	if err := validateTitle(t.Title); err != nil {
		return err
	}
	if err := validateDescription(t.Description); err != nil {
		return err
	}
	if err := validatePercentage(t.Percentage); err != nil {
		return err
	}
	if !t.Status.Valid() {
		return invalidStatus(t.Status)
	}
	if !t.Priority.Valid() {
		return invalidPriority(t.Priority)
	}
	if t.TaskListID <= 0 {
		return &ValidationError{Field: "task_list_id", Message: "task_list_id is required"}
	}
	return nil
}

// UpdateStatus moves the task to a new status. Completing a task forces
// its percentage to 100 and resetting it to pending forces 0; any other
// status keeps the current percentage.
func (t *Task) UpdateStatus(status TaskStatus) error {
	if !status.Valid() {
		return invalidStatus(status)
	}

	t.Status = status
	switch status {
	case StatusCompleted:
		t.Percentage = 100
	case StatusPending:
		t.Percentage = 0
	}
	t.touch()
	return nil
}

// UpdatePercentage sets the completion percentage without touching status.
func (t *Task) UpdatePercentage(percentage int) error {
	if err := validatePercentage(percentage); err != nil {
		return err
	}
	t.Percentage = percentage
	t.touch()
	return nil
}

// SetTitle replaces the title.
func (t *Task) SetTitle(title string) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	t.Title = title
	return nil
}

// SetDescription replaces the description; nil clears it.
func (t *Task) SetDescription(description *string) error {
	if err := validateDescription(description); err != nil {
		return err
	}
	t.Description = description
	return nil
}

// SetPriority replaces the priority.
func (t *Task) SetPriority(p TaskPriority) error {
	if !p.Valid() {
		return invalidPriority(p)
	}
	t.Priority = p
	return nil
}

// Touch stamps UpdatedAt with the current time.
func (t *Task) Touch() {
	t.touch()
}

func (t *Task) touch() {
	ts := now()
	t.UpdatedAt = &ts
}
