// Package usecase implements the session manager: opaque bearer tokens with
// absolute expiry and state-tagged pending flows.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/notehub/internal/session/domain"
	tokenService "github.com/allisson/notehub/internal/token/service"
)

// CreatedSession pairs the stored session with its bearer token plaintext.
// The plaintext is surfaced exactly once.
type CreatedSession struct {
	Session    *domain.Session
	PlainToken string
}

// UseCase defines the interface for session business logic operations.
type UseCase interface {
	Create(ctx context.Context, identityID uuid.UUID, state domain.State) (*CreatedSession, error)
	Get(ctx context.Context, plainToken string) (*domain.Session, error)
	GetWithState(ctx context.Context, plainToken string, state domain.State) (*domain.Session, error)
	Destroy(ctx context.Context, sessionID uuid.UUID) error
	DestroyByIdentity(ctx context.Context, identityID uuid.UUID) error
	Promote(ctx context.Context, plainToken string, from domain.State) (*CreatedSession, error)
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
	CountExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// SessionRepository interface defines session repository operations.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string, now time.Time) (*domain.Session, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
	DeleteByIdentity(ctx context.Context, identityID uuid.UUID) error
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
	CountExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// SessionUseCase handles session business logic.
type SessionUseCase struct {
	sessionRepo SessionRepository
	tokenSvc    tokenService.TokenService
	lifetime    time.Duration
}

// NewSessionUseCase creates a new SessionUseCase.
func NewSessionUseCase(
	sessionRepo SessionRepository,
	tokenSvc tokenService.TokenService,
	lifetime time.Duration,
) *SessionUseCase {
	return &SessionUseCase{
		sessionRepo: sessionRepo,
		tokenSvc:    tokenSvc,
		lifetime:    lifetime,
	}
}

// Create issues a new session in the given state. The bearer token plaintext
// is returned once; only its hash is stored. Expiry is absolute from now.
func (uc *SessionUseCase) Create(
	ctx context.Context,
	identityID uuid.UUID,
	state domain.State,
) (*CreatedSession, error) {
	plainToken, tokenHash, err := uc.tokenSvc.GenerateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:         uuid.Must(uuid.NewV7()),
		TokenHash:  tokenHash,
		IdentityID: identityID,
		State:      state,
		ExpiresAt:  now.Add(uc.lifetime),
		CreatedAt:  now,
	}

	if err := uc.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return &CreatedSession{Session: session, PlainToken: plainToken}, nil
}

// Get resolves the bearer token to a live session. Expired sessions are
// indistinguishable from missing ones.
func (uc *SessionUseCase) Get(ctx context.Context, plainToken string) (*domain.Session, error) {
	return uc.sessionRepo.GetByTokenHash(ctx, uc.tokenSvc.HashToken(plainToken), time.Now().UTC())
}

// GetWithState resolves the bearer token and checks the session is in the
// expected state. A state mismatch is a distinct failure so the two pending
// flows can never accept each other's sessions.
func (uc *SessionUseCase) GetWithState(
	ctx context.Context,
	plainToken string,
	state domain.State,
) (*domain.Session, error) {
	session, err := uc.Get(ctx, plainToken)
	if err != nil {
		return nil, err
	}
	if session.State != state {
		return nil, domain.ErrSessionStateMismatch
	}
	return session, nil
}

// Destroy removes the session unconditionally.
func (uc *SessionUseCase) Destroy(ctx context.Context, sessionID uuid.UUID) error {
	return uc.sessionRepo.Delete(ctx, sessionID)
}

// DestroyByIdentity revokes every session of the identity.
func (uc *SessionUseCase) DestroyByIdentity(ctx context.Context, identityID uuid.UUID) error {
	return uc.sessionRepo.DeleteByIdentity(ctx, identityID)
}

// Promote exchanges a pending session for a fresh authenticated one. The
// session identifier and bearer token are rotated: the pending session is
// destroyed and a new one is issued in its place.
func (uc *SessionUseCase) Promote(
	ctx context.Context,
	plainToken string,
	from domain.State,
) (*CreatedSession, error) {
	pending, err := uc.GetWithState(ctx, plainToken, from)
	if err != nil {
		return nil, err
	}

	if err := uc.sessionRepo.Delete(ctx, pending.ID); err != nil {
		return nil, err
	}

	return uc.Create(ctx, pending.IdentityID, domain.StateAuthenticated)
}

// DeleteExpired removes sessions that expired before the cutoff.
func (uc *SessionUseCase) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	return uc.sessionRepo.DeleteExpired(ctx, cutoff)
}

// CountExpired reports how many sessions DeleteExpired would remove.
func (uc *SessionUseCase) CountExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	return uc.sessionRepo.CountExpired(ctx, cutoff)
}
