// Package domain defines the session entities and states.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/notehub/internal/errors"
)

// State tags what a session is good for. Pending states exist for the two
// second-factor gates and are never interchangeable with each other or with
// a fully authenticated session.
type State string

// Session states.
const (
	StateAuthenticated State = "authenticated"
	StatePendingLogin  State = "pending_login"
	StatePendingReset  State = "pending_reset"
)

// Session is an opaque-token server-side session. Only the SHA-256 hash of
// the bearer token is stored; expiry is absolute from issuance.
type Session struct {
	ID         uuid.UUID
	TokenHash  string
	IdentityID uuid.UUID
	State      State
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// IsExpired reports whether the session has passed its expiry instant.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// IsAuthenticated reports whether the session grants full access.
func (s *Session) IsAuthenticated() bool {
	return s.State == StateAuthenticated
}

// Domain-specific errors for session operations. An expired session is
// indistinguishable from a missing one.
var (
	// ErrSessionNotFound indicates no live session matches the presented token.
	ErrSessionNotFound = errors.Wrap(errors.ErrUnauthorized, "session not found or expired")

	// ErrSessionStateMismatch indicates the session exists but is in the
	// wrong state for the attempted operation.
	ErrSessionStateMismatch = errors.Wrap(errors.ErrUnauthorized, "session state mismatch")
)
