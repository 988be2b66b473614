// Package dto provides data transfer objects for HTTP request and response
// handling.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/notehub/internal/validation"
)

// CreateTaskRequest contains the parameters for creating a task.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

// Validate checks if the create task request is valid.
func (r *CreateTaskRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 200),
		),
		validation.Field(&r.Priority,
			validation.In("", "low", "medium", "high"),
		),
	)
}

// UpdateTaskRequest contains the mutable task fields.
type UpdateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

// Validate checks if the update task request is valid.
func (r *UpdateTaskRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 200),
		),
		validation.Field(&r.Priority,
			validation.In("", "low", "medium", "high"),
		),
	)
}
