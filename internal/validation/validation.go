// Package validation provides custom validation rules for the application.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/notehub/internal/errors"
)

var (
	// emailRegex is a basic email validation pattern
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// handleRegex restricts handles to word characters, dots and dashes
	handleRegex = regexp.MustCompile(`^[a-zA-Z0-9._\-]+$`)
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not only whitespace.
var NotBlank = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_not_blank_type", "must be a string")
	}
	if s != "" && strings.TrimSpace(s) == "" {
		return validation.NewError("validation_not_blank", "cannot be blank")
	}
	return nil
})

// Email validates email format using a basic pattern.
var Email = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_email_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if !emailRegex.MatchString(s) {
		return validation.NewError("validation_email", "must be a valid email address")
	}
	return nil
})

// Handle validates an account handle: 3-64 characters, word characters,
// dots and dashes only. Handles are case-sensitive.
var Handle = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_handle_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if len(s) < 3 || len(s) > 64 {
		return validation.NewError("validation_handle_length", "handle must be between 3 and 64 characters")
	}
	if !handleRegex.MatchString(s) {
		return validation.NewError(
			"validation_handle_charset",
			"handle may only contain letters, numbers, dots, underscores and dashes",
		)
	}
	return nil
})

// Password validates the password policy: a minimum length only. The policy
// message is intentionally specific so it is actionable to the end user.
var Password = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_password_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if len(s) < MinPasswordLength {
		return validation.NewError(
			"validation_password_min_length",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength),
		)
	}
	return nil
})
