package dto

import (
	"time"

	taskDomain "github.com/allisson/notehub/internal/task/domain"
)

// TaskResponse describes a task.
type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Overdue     bool       `json:"overdue"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// MapTaskToResponse converts a task to its response. Overdue is evaluated at
// response time.
func MapTaskToResponse(task *taskDomain.Task, now time.Time) TaskResponse {
	return TaskResponse{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		Priority:    string(task.Priority),
		DueDate:     task.DueDate,
		Overdue:     task.IsOverdue(now),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		CompletedAt: task.CompletedAt,
	}
}

// ListTasksResponse wraps a page of tasks.
type ListTasksResponse struct {
	Tasks  []TaskResponse `json:"tasks"`
	Offset int            `json:"offset"`
	Limit  int            `json:"limit"`
}

// CountsResponse aggregates the owner's task counters.
type CountsResponse struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
}

// MapCountsToResponse converts task counts to their response.
func MapCountsToResponse(counts *taskDomain.Counts) CountsResponse {
	return CountsResponse{
		Total:     counts.Total,
		Active:    counts.Active,
		Completed: counts.Completed,
	}
}
