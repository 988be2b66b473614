// Package domain defines the single-use verification token entities.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/notehub/internal/errors"
)

// Purpose identifies what a verification token is good for. A token issued
// for one purpose is never redeemable for another.
type Purpose string

// Supported token purposes.
const (
	PurposeReset  Purpose = "reset"
	PurposeInvite Purpose = "invite"
)

// IsValid reports whether the purpose is one of the supported values.
func (p Purpose) IsValid() bool {
	return p == PurposeReset || p == PurposeInvite
}

// VerificationToken is a single-use, expiring credential. Only the SHA-256
// hash of the plaintext is stored; the plaintext is surfaced exactly once at
// issuance.
type VerificationToken struct {
	ID        uuid.UUID
	TokenHash string
	Purpose   Purpose
	OwnerID   uuid.UUID
	UsedByID  *uuid.UUID
	Used      bool
	ExpiresAt time.Time
	Email     string
	Message   string
	CreatedAt time.Time
}

// IsExpired reports whether the token has passed its expiry instant.
func (t *VerificationToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsRedeemable reports whether the token is unused and unexpired.
func (t *VerificationToken) IsRedeemable(now time.Time) bool {
	return !t.Used && !t.IsExpired(now)
}

// Domain-specific errors for token operations. The granular variants exist
// for internal diagnostics and logging; the public surface collapses them
// all into ErrTokenInvalid so callers cannot probe token state.
var (
	// ErrTokenInvalid is the only token failure exposed to external callers.
	ErrTokenInvalid = errors.Wrap(errors.ErrUnauthorized, "invalid or expired token")

	// ErrTokenNotFound indicates no token matches the presented plaintext.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "token not found")

	// ErrTokenUsed indicates the token was already redeemed.
	ErrTokenUsed = errors.Wrap(errors.ErrUnauthorized, "token already used")

	// ErrTokenExpired indicates the token passed its expiry instant.
	ErrTokenExpired = errors.Wrap(errors.ErrUnauthorized, "token expired")

	// ErrTokenPurposeMismatch indicates the token exists but was issued for
	// a different purpose.
	ErrTokenPurposeMismatch = errors.Wrap(errors.ErrUnauthorized, "token purpose mismatch")
)
