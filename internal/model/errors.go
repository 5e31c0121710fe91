package model

import (
	"fmt"
	"time"
	"unicode/utf8"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// TaskError represents a domain error for tasks and task lists.
type TaskError struct {
	Message string
}

func (e TaskError) Error() string {
	return e.Message
}

var (
	ErrTaskNotFound     = TaskError{Message: "task not found"}
	ErrTaskListNotFound = TaskError{Message: "task list not found"}
)

// ValidationError reports a field whose value is outside its contract.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// now is swapped in tests that need deterministic timestamps.
var now = func() time.Time {
	return time.Now().UTC()
}

func validateTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n == 0 {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if n > MaxTitleLength {
		return &ValidationError{Field: "title", Message: fmt.Sprintf("title must be at most %d characters", MaxTitleLength)}
	}
	return nil
}

func validateDescription(description *string) error {
	if description != nil && utf8.RuneCountInString(*description) > MaxDescriptionLength {
		return &ValidationError{Field: "description", Message: fmt.Sprintf("description must be at most %d characters", MaxDescriptionLength)}
	}
	return nil
}

func validatePercentage(p int) error {
	if p < 0 || p > 100 {
		return &ValidationError{Field: "percentage", Message: "percentage must be between 0 and 100"}
	}
	return nil
}

func invalidStatus(s TaskStatus) error {
	return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", s)}
}

func invalidPriority(p TaskPriority) error {
	return &ValidationError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", p)}
}
