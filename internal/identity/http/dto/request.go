// Package dto provides data transfer objects for HTTP request and response
// handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/notehub/internal/validation"
)

// UpdateProfileRequest contains the mutable profile fields. The handle is
// always submitted; changing it is arbitrated by the storage unique
// constraint.
type UpdateProfileRequest struct {
	Handle string `json:"handle"`
	Bio    string `json:"bio"`
	Email  string `json:"email"`
}

// Validate checks if the update profile request is valid.
func (r *UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Handle,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Handle,
		),
		validation.Field(&r.Bio,
			validation.Length(0, 500),
		),
		validation.Field(&r.Email,
			customValidation.Email,
		),
	)
}

// ConfirmSecondFactorRequest carries the candidate secret and a code proving
// the authenticator was enrolled.
type ConfirmSecondFactorRequest struct {
	Secret string `json:"secret"`
	Code   string `json:"code"`
}

// Validate checks if the confirm second factor request is valid.
func (r *ConfirmSecondFactorRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Secret,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.Code,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}
