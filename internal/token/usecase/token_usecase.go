// Package usecase implements the verification token issuance and redemption
// logic: single-use, expiring tokens for password reset and invitations.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/notehub/internal/database"
	apperrors "github.com/allisson/notehub/internal/errors"
	"github.com/allisson/notehub/internal/token/domain"
	"github.com/allisson/notehub/internal/token/service"
)

// IssueInput carries the optional delivery fields attached to a token.
type IssueInput struct {
	Email   string
	Message string
}

// IssuedToken pairs the stored token with its plaintext. The plaintext exists
// only in this value and is never persisted or logged.
type IssuedToken struct {
	Token      *domain.VerificationToken
	PlainToken string
}

// UseCase defines the interface for token business logic operations.
type UseCase interface {
	Issue(ctx context.Context, purpose domain.Purpose, ownerID uuid.UUID, input IssueInput) (*IssuedToken, error)
	Validate(ctx context.Context, plainToken string, purpose domain.Purpose) (*domain.VerificationToken, error)
	Redeem(ctx context.Context, plainToken string, purpose domain.Purpose, redeemerID uuid.UUID, fn func(ctx context.Context, token *domain.VerificationToken) error) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, purpose domain.Purpose, offset, limit int) ([]*domain.VerificationToken, error)
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
	CountExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// TokenRepository interface defines verification token repository operations.
type TokenRepository interface {
	Create(ctx context.Context, token *domain.VerificationToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.VerificationToken, error)
	InvalidateActive(ctx context.Context, ownerID uuid.UUID, purpose domain.Purpose) error
	MarkUsed(ctx context.Context, tokenID uuid.UUID, usedByID uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, purpose domain.Purpose, offset, limit int) ([]*domain.VerificationToken, error)
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
	CountExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// TokenUseCase handles verification token business logic.
type TokenUseCase struct {
	txManager      database.TxManager
	tokenRepo      TokenRepository
	tokenSvc       service.TokenService
	resetLifetime  time.Duration
	inviteLifetime time.Duration
}

// NewTokenUseCase creates a new TokenUseCase.
func NewTokenUseCase(
	txManager database.TxManager,
	tokenRepo TokenRepository,
	tokenSvc service.TokenService,
	resetLifetime time.Duration,
	inviteLifetime time.Duration,
) *TokenUseCase {
	return &TokenUseCase{
		txManager:      txManager,
		tokenRepo:      tokenRepo,
		tokenSvc:       tokenSvc,
		resetLifetime:  resetLifetime,
		inviteLifetime: inviteLifetime,
	}
}

func (uc *TokenUseCase) lifetimeFor(purpose domain.Purpose) time.Duration {
	if purpose == domain.PurposeInvite {
		return uc.inviteLifetime
	}
	return uc.resetLifetime
}

// Issue creates a fresh token for the owner and purpose. All currently-valid
// tokens of the same owner and purpose are invalidated in the same
// transaction, so at most one token per purpose is live at any time.
func (uc *TokenUseCase) Issue(
	ctx context.Context,
	purpose domain.Purpose,
	ownerID uuid.UUID,
	input IssueInput,
) (*IssuedToken, error) {
	if !purpose.IsValid() {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "unknown token purpose")
	}

	plainToken, tokenHash, err := uc.tokenSvc.GenerateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	token := &domain.VerificationToken{
		ID:        uuid.Must(uuid.NewV7()),
		TokenHash: tokenHash,
		Purpose:   purpose,
		OwnerID:   ownerID,
		ExpiresAt: now.Add(uc.lifetimeFor(purpose)),
		Email:     input.Email,
		Message:   input.Message,
		CreatedAt: now,
	}

	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.tokenRepo.InvalidateActive(ctx, ownerID, purpose); err != nil {
			return err
		}
		return uc.tokenRepo.Create(ctx, token)
	})
	if err != nil {
		return nil, err
	}

	return &IssuedToken{Token: token, PlainToken: plainToken}, nil
}

// lookup resolves the plaintext to a redeemable token, returning the
// granular diagnostics used internally.
func (uc *TokenUseCase) lookup(
	ctx context.Context,
	plainToken string,
	purpose domain.Purpose,
) (*domain.VerificationToken, error) {
	token, err := uc.tokenRepo.GetByTokenHash(ctx, uc.tokenSvc.HashToken(plainToken))
	if err != nil {
		return nil, err
	}

	if token.Purpose != purpose {
		return nil, domain.ErrTokenPurposeMismatch
	}
	if token.Used {
		return nil, domain.ErrTokenUsed
	}
	if token.IsExpired(time.Now().UTC()) {
		return nil, domain.ErrTokenExpired
	}

	return token, nil
}

// Validate checks the token without consuming it. Every failure mode
// collapses into ErrTokenInvalid so external callers cannot distinguish a
// missing token from a used or expired one.
func (uc *TokenUseCase) Validate(
	ctx context.Context,
	plainToken string,
	purpose domain.Purpose,
) (*domain.VerificationToken, error) {
	token, err := uc.lookup(ctx, plainToken, purpose)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) || apperrors.Is(err, apperrors.ErrUnauthorized) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}
	return token, nil
}

// Redeem consumes the token and runs the side effect in one transaction.
// The conditional mark-used guarantees exactly one redemption under
// concurrency; any failure of fn rolls everything back so the token stays
// unused. Failures collapse into ErrTokenInvalid like Validate.
func (uc *TokenUseCase) Redeem(
	ctx context.Context,
	plainToken string,
	purpose domain.Purpose,
	redeemerID uuid.UUID,
	fn func(ctx context.Context, token *domain.VerificationToken) error,
) error {
	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		token, err := uc.lookup(ctx, plainToken, purpose)
		if err != nil {
			return err
		}

		if err := uc.tokenRepo.MarkUsed(ctx, token.ID, redeemerID); err != nil {
			return err
		}

		return fn(ctx, token)
	})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) ||
			apperrors.Is(err, domain.ErrTokenUsed) ||
			apperrors.Is(err, domain.ErrTokenExpired) ||
			apperrors.Is(err, domain.ErrTokenPurposeMismatch) {
			return domain.ErrTokenInvalid
		}
		return err
	}
	return nil
}

// ListByOwner retrieves the owner's tokens for a purpose, newest first.
func (uc *TokenUseCase) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	purpose domain.Purpose,
	offset, limit int,
) ([]*domain.VerificationToken, error) {
	return uc.tokenRepo.ListByOwner(ctx, ownerID, purpose, offset, limit)
}

// DeleteExpired removes used and expired tokens older than the cutoff.
func (uc *TokenUseCase) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	return uc.tokenRepo.DeleteExpired(ctx, cutoff)
}

// CountExpired reports how many tokens DeleteExpired would remove.
func (uc *TokenUseCase) CountExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	return uc.tokenRepo.CountExpired(ctx, cutoff)
}
