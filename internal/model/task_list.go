package model

import (
	"slices"
	"time"
)

// TaskList groups tasks and reports their aggregate progress.
//
// Tasks is populated by the use-case layer for the duration of a request
// only; the store keeps lists and tasks as separate records.
type TaskList struct {
	ID          int64
	Title       string
	Description *string
	Tasks       []*Task
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// TaskListOption customizes a list built by NewTaskList.
type TaskListOption func(*TaskList)

// WithListDescription sets the optional description.
func WithListDescription(description *string) TaskListOption {
	return func(l *TaskList) { l.Description = description }
}

// WithListCreatedAt overrides the creation timestamp.
func WithListCreatedAt(at time.Time) TaskListOption {
	return func(l *TaskList) { l.CreatedAt = at }
}

// NewTaskList builds an empty task list.
func NewTaskList(title string, opts ...TaskListOption) (*TaskList, error) {
	l := &TaskList{
		Title:     title,
		CreatedAt: now(),
	}
	for _, opt := range opts {
		opt(l)
	}

	if err := validateTitle(l.Title); err != nil {
		return nil, err
	}
	if err := validateDescription(l.Description); err != nil {
		return nil, err
	}
	return l, nil
}

// CompletionPercentage is the truncated mean of all task percentages,
// or 0 for an empty list.
func (l *TaskList) CompletionPercentage() int {
	if len(l.Tasks) == 0 {
		return 0
	}

	total := 0
	for _, t := range l.Tasks {
		total += t.Percentage
	}
	return total / len(l.Tasks)
}

// TotalTasks returns the number of hydrated tasks.
func (l *TaskList) TotalTasks() int {
	return len(l.Tasks)
}

// CompletedTasks returns how many tasks are in the completed status.
func (l *TaskList) CompletedTasks() int {
	n := 0
	for _, t := range l.Tasks {
		if t.Status == StatusCompleted {
			n++
		}
	}
	return n
}

// AddTask re-parents task onto this list and appends it.
func (l *TaskList) AddTask(task *Task) {
	task.TaskListID = l.ID
	l.Tasks = append(l.Tasks, task)
	l.Touch()
}

// RemoveTask drops every task with the given id.
func (l *TaskList) RemoveTask(id int64) {
	l.Tasks = slices.DeleteFunc(l.Tasks, func(t *Task) bool { return t.ID == id })
	l.Touch()
}

// GetTask returns the first task with the given id.
func (l *TaskList) GetTask(id int64) (*Task, bool) {
	for _, t := range l.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// SetTitle replaces the title.
func (l *TaskList) SetTitle(title string) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	l.Title = title
	return nil
}

// SetDescription replaces the description; nil clears it.
func (l *TaskList) SetDescription(description *string) error {
	if err := validateDescription(description); err != nil {
		return err
	}
	l.Description = description
	return nil
}

// Touch stamps UpdatedAt with the current time.
func (l *TaskList) Touch() {
	ts := now()
	l.UpdatedAt = &ts
}
