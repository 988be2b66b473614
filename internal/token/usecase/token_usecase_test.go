package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/notehub/internal/errors"
	"github.com/allisson/notehub/internal/token/domain"
	"github.com/allisson/notehub/internal/token/service"
)

// MockTxManager is a mock implementation of database.TxManager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	// Execute the function to test the logic inside
	return fn(ctx)
}

// MockTokenRepository is a mock implementation of TokenRepository
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Create(ctx context.Context, token *domain.VerificationToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.VerificationToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationToken), args.Error(1)
}

func (m *MockTokenRepository) InvalidateActive(ctx context.Context, ownerID uuid.UUID, purpose domain.Purpose) error {
	args := m.Called(ctx, ownerID, purpose)
	return args.Error(0)
}

func (m *MockTokenRepository) MarkUsed(ctx context.Context, tokenID uuid.UUID, usedByID uuid.UUID) error {
	args := m.Called(ctx, tokenID, usedByID)
	return args.Error(0)
}

func (m *MockTokenRepository) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	purpose domain.Purpose,
	offset, limit int,
) ([]*domain.VerificationToken, error) {
	args := m.Called(ctx, ownerID, purpose, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.VerificationToken), args.Error(1)
}

func (m *MockTokenRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTokenRepository) CountExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func newTokenUseCase(repo *MockTokenRepository, txManager *MockTxManager) *TokenUseCase {
	return NewTokenUseCase(txManager, repo, service.NewTokenService(), time.Hour, 7*24*time.Hour)
}

func TestTokenUseCase_Issue(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())

	t.Run("Success_ResetToken", func(t *testing.T) {
		txManager := &MockTxManager{}
		repo := &MockTokenRepository{}
		uc := newTokenUseCase(repo, txManager)

		txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		repo.On("InvalidateActive", ctx, ownerID, domain.PurposeReset).Return(nil)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.VerificationToken")).Return(nil)

		issued, err := uc.Issue(ctx, domain.PurposeReset, ownerID, IssueInput{})
		require.NoError(t, err)

		assert.NotEmpty(t, issued.PlainToken)
		assert.NotEqual(t, issued.PlainToken, issued.Token.TokenHash)
		assert.Equal(t, domain.PurposeReset, issued.Token.Purpose)
		assert.False(t, issued.Token.Used)
		assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), issued.Token.ExpiresAt, 5*time.Second)

		repo.AssertExpectations(t)
	})

	t.Run("Success_InviteTokenUsesInviteLifetime", func(t *testing.T) {
		txManager := &MockTxManager{}
		repo := &MockTokenRepository{}
		uc := newTokenUseCase(repo, txManager)

		txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		repo.On("InvalidateActive", ctx, ownerID, domain.PurposeInvite).Return(nil)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.VerificationToken")).Return(nil)

		issued, err := uc.Issue(ctx, domain.PurposeInvite, ownerID, IssueInput{
			Email:   "friend@example.com",
			Message: "join me",
		})
		require.NoError(t, err)

		assert.Equal(t, "friend@example.com", issued.Token.Email)
		assert.Equal(t, "join me", issued.Token.Message)
		assert.WithinDuration(t, time.Now().UTC().Add(7*24*time.Hour), issued.Token.ExpiresAt, 5*time.Second)
	})

	t.Run("Failure_UnknownPurpose", func(t *testing.T) {
		txManager := &MockTxManager{}
		repo := &MockTokenRepository{}
		uc := newTokenUseCase(repo, txManager)

		issued, err := uc.Issue(ctx, domain.Purpose("bogus"), ownerID, IssueInput{})
		assert.Nil(t, issued)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Failure_CreateErrorRollsBack", func(t *testing.T) {
		txManager := &MockTxManager{}
		repo := &MockTokenRepository{}
		uc := newTokenUseCase(repo, txManager)

		txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		repo.On("InvalidateActive", ctx, ownerID, domain.PurposeReset).Return(nil)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.VerificationToken")).
			Return(errors.New("insert failed"))

		issued, err := uc.Issue(ctx, domain.PurposeReset, ownerID, IssueInput{})
		assert.Nil(t, issued)
		assert.Error(t, err)
	})
}

func TestTokenUseCase_Validate(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())
	tokenSvc := service.NewTokenService()

	validToken := func() *domain.VerificationToken {
		return &domain.VerificationToken{
			ID:        uuid.Must(uuid.NewV7()),
			Purpose:   domain.PurposeReset,
			OwnerID:   ownerID,
			ExpiresAt: time.Now().UTC().Add(time.Hour),
			CreatedAt: time.Now().UTC(),
		}
	}

	t.Run("Success", func(t *testing.T) {
		txManager := &MockTxManager{}
		repo := &MockTokenRepository{}
		uc := newTokenUseCase(repo, txManager)

		stored := validToken()
		repo.On("GetByTokenHash", ctx, tokenSvc.HashToken("plain-token")).Return(stored, nil)

		token, err := uc.Validate(ctx, "plain-token", domain.PurposeReset)
		require.NoError(t, err)
		assert.Equal(t, stored.ID, token.ID)
	})

	t.Run("Failure_NotFoundCollapses", func(t *testing.T) {
		txManager := &MockTxManager{}
		repo := &MockTokenRepository{}
		uc := newTokenUseCase(repo, txManager)

		repo.On("GetByTokenHash", ctx, mock.Anything).Return(nil, domain.ErrTokenNotFound)

		token, err := uc.Validate(ctx, "unknown-token", domain.PurposeReset)
		assert.Nil(t, token)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("Failure_UsedCollapses", func(t *testing.T) {
		txManager := &MockTxManager{}
		repo := &MockTokenRepository{}
		uc := newTokenUseCase(repo, txManager)

		stored := validToken()
		stored.Used = true
		repo.On("GetByTokenHash", ctx, mock.Anything).Return(stored, nil)

		token, err := uc.Validate(ctx, "plain-token", domain.PurposeReset)
		assert.Nil(t, token)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("Failure_ExpiredCollapses", func(t *testing.T) {
		txManager := &MockTxManager{}
		repo := &MockTokenRepository{}
		uc := newTokenUseCase(repo, txManager)

		stored := validToken()
		stored.ExpiresAt = time.Now().UTC().Add(-time.Minute)
		repo.On("GetByTokenHash", ctx, mock.Anything).Return(stored, nil)

		token, err := uc.Validate(ctx, "plain-token", domain.PurposeReset)
		assert.Nil(t, token)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("Failure_PurposeMismatchCollapses", func(t *testing.T) {
		txManager := &MockTxManager{}
		repo := &MockTokenRepository{}
		uc := newTokenUseCase(repo, txManager)

		stored := validToken()
		stored.Purpose = domain.PurposeInvite
		repo.On("GetByTokenHash", ctx, mock.Anything).Return(stored, nil)

		token, err := uc.Validate(ctx, "plain-token", domain.PurposeReset)
		assert.Nil(t, token)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})
}

func TestTokenUseCase_Redeem(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())
	redeemerID := uuid.Must(uuid.NewV7())
	tokenSvc := service.NewTokenService()

	t.Run("Success_RunsSideEffect", func(t *testing.T) {
		txManager := &MockTxManager{}
		repo := &MockTokenRepository{}
		uc := newTokenUseCase(repo, txManager)

		stored := &domain.VerificationToken{
			ID:        uuid.Must(uuid.NewV7()),
			Purpose:   domain.PurposeReset,
			OwnerID:   ownerID,
			ExpiresAt: time.Now().UTC().Add(time.Hour),
		}

		txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		repo.On("GetByTokenHash", ctx, tokenSvc.HashToken("plain-token")).Return(stored, nil)
		repo.On("MarkUsed", ctx, stored.ID, redeemerID).Return(nil)

		sideEffectRan := false
		err := uc.Redeem(ctx, "plain-token", domain.PurposeReset, redeemerID,
			func(ctx context.Context, token *domain.VerificationToken) error {
				sideEffectRan = true
				assert.Equal(t, stored.ID, token.ID)
				return nil
			})
		require.NoError(t, err)
		assert.True(t, sideEffectRan)
		repo.AssertExpectations(t)
	})

	t.Run("Failure_AlreadyUsedLosesRace", func(t *testing.T) {
		txManager := &MockTxManager{}
		repo := &MockTokenRepository{}
		uc := newTokenUseCase(repo, txManager)

		stored := &domain.VerificationToken{
			ID:        uuid.Must(uuid.NewV7()),
			Purpose:   domain.PurposeReset,
			OwnerID:   ownerID,
			ExpiresAt: time.Now().UTC().Add(time.Hour),
		}

		txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		repo.On("GetByTokenHash", ctx, mock.Anything).Return(stored, nil)
		// A concurrent redeemer won the conditional update
		repo.On("MarkUsed", ctx, stored.ID, redeemerID).Return(domain.ErrTokenUsed)

		err := uc.Redeem(ctx, "plain-token", domain.PurposeReset, redeemerID,
			func(ctx context.Context, token *domain.VerificationToken) error {
				t.Fatal("side effect must not run when the token is already used")
				return nil
			})
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("Failure_SideEffectErrorPropagates", func(t *testing.T) {
		txManager := &MockTxManager{}
		repo := &MockTokenRepository{}
		uc := newTokenUseCase(repo, txManager)

		stored := &domain.VerificationToken{
			ID:        uuid.Must(uuid.NewV7()),
			Purpose:   domain.PurposeReset,
			OwnerID:   ownerID,
			ExpiresAt: time.Now().UTC().Add(time.Hour),
		}

		txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		repo.On("GetByTokenHash", ctx, mock.Anything).Return(stored, nil)
		repo.On("MarkUsed", ctx, stored.ID, redeemerID).Return(nil)

		sideEffectErr := errors.New("password update failed")
		err := uc.Redeem(ctx, "plain-token", domain.PurposeReset, redeemerID,
			func(ctx context.Context, token *domain.VerificationToken) error {
				return sideEffectErr
			})
		assert.ErrorIs(t, err, sideEffectErr)
		assert.NotErrorIs(t, err, domain.ErrTokenInvalid)
	})
}

func TestTokenUseCase_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	txManager := &MockTxManager{}
	repo := &MockTokenRepository{}
	uc := newTokenUseCase(repo, txManager)

	cutoff := time.Now().UTC()
	repo.On("DeleteExpired", ctx, cutoff).Return(int64(7), nil)

	removed, err := uc.DeleteExpired(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(7), removed)
}
