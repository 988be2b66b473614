// Package domain defines the task entity and its priority levels.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/notehub/internal/errors"
)

// Priority orders tasks within a listing. High-priority tasks surface first.
type Priority string

// Task priorities.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid reports whether the priority is one of the supported levels.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a private to-do item. Tasks are never shared: only the owner can
// see or modify them.
type Task struct {
	ID          uuid.UUID
	Title       string
	Description string
	Completed   bool
	Priority    Priority
	DueDate     *time.Time
	OwnerID     uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// IsOverdue reports whether the task carries a due date in the past and is
// still open.
func (t *Task) IsOverdue(now time.Time) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
}

// Counts aggregates a task listing's summary numbers.
type Counts struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
}

// Domain-specific errors for task operations.
var (
	// ErrTaskNotFound indicates the task does not exist. It also masks
	// tasks owned by someone else, so existence cannot be probed.
	ErrTaskNotFound = errors.Wrap(errors.ErrNotFound, "task not found")

	// ErrInvalidPriority indicates an unsupported priority level.
	ErrInvalidPriority = errors.Wrap(errors.ErrInvalidInput, "invalid task priority")

	// ErrInvalidStatus indicates an unsupported status filter.
	ErrInvalidStatus = errors.Wrap(errors.ErrInvalidInput, "invalid status filter")
)
