// Package domain defines the authentication flow outcomes and errors.
package domain

import (
	"github.com/allisson/notehub/internal/errors"
	sessionDomain "github.com/allisson/notehub/internal/session/domain"
)

// Status describes the outcome of a login or reset request.
type Status string

// Authentication flow statuses.
const (
	// StatusOK means the caller holds a fully authenticated session.
	StatusOK Status = "ok"

	// StatusSecondFactorRequired means a pending session was issued and a
	// one-time code must be presented to continue.
	StatusSecondFactorRequired Status = "second_factor_required"

	// StatusResetIssued means the reset flow completed its request phase.
	// The same status is reported whether or not a token was actually
	// issued, so handles cannot be enumerated.
	StatusResetIssued Status = "reset_issued"
)

// LoginOutput is the result of a login or second factor verification.
// SessionToken is the bearer plaintext, surfaced exactly once.
type LoginOutput struct {
	Status       Status
	SessionToken string
	Session      *sessionDomain.Session
}

// ResetRequestOutput is the result of a password reset request. ResetToken
// is empty unless the request phase actually issued a token; the HTTP
// surface never exposes it directly, delivery happens out of band.
type ResetRequestOutput struct {
	Status       Status
	SessionToken string
	ResetToken   string
}

// Domain-specific errors for authentication operations. Credential failures
// are deliberately vague: the same error covers unknown handle and wrong
// password.
var (
	// ErrInvalidCredentials indicates the handle/password pair did not
	// authenticate.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrNoPendingLogin indicates the presented session is not awaiting a
	// login second factor.
	ErrNoPendingLogin = errors.Wrap(errors.ErrUnauthorized, "no pending login for this session")

	// ErrNoPendingReset indicates the presented session is not awaiting a
	// reset second factor.
	ErrNoPendingReset = errors.Wrap(errors.ErrUnauthorized, "no pending reset for this session")
)
