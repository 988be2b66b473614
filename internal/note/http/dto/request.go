// Package dto provides data transfer objects for HTTP request and response
// handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/notehub/internal/validation"
)

// CreateNoteRequest contains the parameters for creating a note.
type CreateNoteRequest struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
}

// Validate checks if the create note request is valid.
func (r *CreateNoteRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 200),
		),
	)
}

// UpdateNoteRequest contains the mutable note fields.
type UpdateNoteRequest struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
}

// Validate checks if the update note request is valid.
func (r *UpdateNoteRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 200),
		),
	)
}

// ShareNoteRequest contains the parameters for sharing a note.
type ShareNoteRequest struct {
	Handle  string `json:"handle"`
	CanEdit bool   `json:"can_edit"`
}

// Validate checks if the share note request is valid.
func (r *ShareNoteRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Handle,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}
