// Package dto provides data transfer objects for HTTP request and response
// handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/notehub/internal/validation"
)

// LoginRequest contains the parameters for a handle/password login.
type LoginRequest struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

// Validate checks if the login request is valid.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Handle,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.Password,
			validation.Required,
		),
	)
}

// VerifySecondFactorRequest carries the pending session token and the
// one-time code.
type VerifySecondFactorRequest struct {
	SessionToken string `json:"session_token"`
	Code         string `json:"code"`
}

// Validate checks if the verification request is valid.
func (r *VerifySecondFactorRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SessionToken,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.Code,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// ForgotPasswordRequest contains the handle to start a reset flow for.
type ForgotPasswordRequest struct {
	Handle string `json:"handle"`
}

// Validate checks if the forgot password request is valid.
func (r *ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Handle,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// ResetPasswordRequest carries the reset token and the replacement password.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Validate checks if the reset password request is valid.
func (r *ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.Password,
			validation.Required,
		),
	)
}

// RegisterRequest contains the parameters for creating an account. The
// invite token is optional when open registration is enabled.
type RegisterRequest struct {
	Handle      string `json:"handle"`
	Password    string `json:"password"`
	Email       string `json:"email"`
	InviteToken string `json:"invite_token"`
}

// Validate checks if the register request is valid. The handle and password
// policies are enforced by the use case so failures carry field details.
func (r *RegisterRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Handle,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.Password,
			validation.Required,
		),
	)
}

// CreateInvitationRequest contains the parameters for issuing an invitation.
type CreateInvitationRequest struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Validate checks if the invitation request is valid.
func (r *CreateInvitationRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			customValidation.Email,
		),
		validation.Field(&r.Message,
			validation.Length(0, 500),
		),
	)
}
