// Package domain defines the core identity domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/notehub/internal/errors"
)

// Theme values accepted for an identity's UI preference.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Identity represents an account in the system. The password is stored only
// as a salted one-way hash; TotpSecret is empty unless a second factor is
// enrolled and is never exposed outside of setup confirmation.
type Identity struct {
	ID                  uuid.UUID
	Handle              string
	PasswordHash        string
	Bio                 string
	Email               string
	Theme               string
	TotpSecret          string
	CreatedAt           time.Time
	LastAuthenticatedAt *time.Time
}

// SecondFactorEnrolled reports whether a TOTP second factor is configured.
func (i *Identity) SecondFactorEnrolled() bool {
	return i.TotpSecret != ""
}

// ToggleTheme flips the identity's theme between light and dark.
func (i *Identity) ToggleTheme() {
	if i.Theme == ThemeDark {
		i.Theme = ThemeLight
		return
	}
	i.Theme = ThemeDark
}

// Domain-specific errors for identity operations.
var (
	// ErrIdentityNotFound indicates the requested identity does not exist.
	ErrIdentityNotFound = errors.Wrap(errors.ErrNotFound, "identity not found")

	// ErrHandleTaken indicates an identity with the same handle already exists.
	ErrHandleTaken = errors.Wrap(errors.ErrConflict, "handle already exists")

	// ErrInvalidHandle indicates the handle doesn't meet format requirements.
	ErrInvalidHandle = errors.Wrap(errors.ErrInvalidInput, "invalid handle")

	// ErrPasswordPolicy indicates the password doesn't meet the minimum policy.
	ErrPasswordPolicy = errors.Wrap(errors.ErrInvalidInput, "password must be at least 6 characters")

	// ErrInvalidSecondFactorCode indicates the submitted one-time code did not verify.
	ErrInvalidSecondFactorCode = errors.Wrap(errors.ErrUnauthorized, "invalid second factor code")
)
