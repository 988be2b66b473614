// Package http provides HTTP middleware and handlers for authentication.
package http

import (
	"context"

	identityDomain "github.com/allisson/notehub/internal/identity/domain"
	sessionDomain "github.com/allisson/notehub/internal/session/domain"
)

// identityKey is a context key type for storing the authenticated identity.
type identityKey struct{}

// sessionKey is a context key type for storing the authenticated session.
type sessionKey struct{}

// WithIdentity stores the authenticated identity in the context. Called by
// the session middleware after successful validation.
func WithIdentity(ctx context.Context, identity *identityDomain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentity retrieves the authenticated identity from the context.
// Returns (identity, true) if present, or (nil, false) otherwise.
func GetIdentity(ctx context.Context) (*identityDomain.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*identityDomain.Identity)
	return identity, ok
}

// WithSession stores the authenticated session in the context.
func WithSession(ctx context.Context, session *sessionDomain.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetSession retrieves the authenticated session from the context.
// Returns (session, true) if present, or (nil, false) otherwise.
func GetSession(ctx context.Context) (*sessionDomain.Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(*sessionDomain.Session)
	return session, ok
}
