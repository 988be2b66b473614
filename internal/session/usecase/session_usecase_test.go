package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/notehub/internal/errors"
	"github.com/allisson/notehub/internal/session/domain"
	tokenService "github.com/allisson/notehub/internal/token/service"
)

// MockSessionRepository is a mock implementation of SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string, now time.Time) (*domain.Session, error) {
	args := m.Called(ctx, tokenHash, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) Delete(ctx context.Context, sessionID uuid.UUID) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteByIdentity(ctx context.Context, identityID uuid.UUID) error {
	args := m.Called(ctx, identityID)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionRepository) CountExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func newSessionUseCase(repo *MockSessionRepository) *SessionUseCase {
	return NewSessionUseCase(repo, tokenService.NewTokenService(), time.Hour)
}

func TestSessionUseCase_Create(t *testing.T) {
	ctx := context.Background()
	identityID := uuid.Must(uuid.NewV7())

	repo := &MockSessionRepository{}
	uc := newSessionUseCase(repo)

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Session")).Return(nil)

	created, err := uc.Create(ctx, identityID, domain.StateAuthenticated)
	require.NoError(t, err)

	assert.NotEmpty(t, created.PlainToken)
	assert.NotEqual(t, created.PlainToken, created.Session.TokenHash)
	assert.Equal(t, identityID, created.Session.IdentityID)
	assert.Equal(t, domain.StateAuthenticated, created.Session.State)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), created.Session.ExpiresAt, 5*time.Second)
}

func TestSessionUseCase_Get(t *testing.T) {
	ctx := context.Background()
	tokenSvc := tokenService.NewTokenService()

	t.Run("Success", func(t *testing.T) {
		repo := &MockSessionRepository{}
		uc := newSessionUseCase(repo)

		stored := &domain.Session{
			ID:         uuid.Must(uuid.NewV7()),
			IdentityID: uuid.Must(uuid.NewV7()),
			State:      domain.StateAuthenticated,
			ExpiresAt:  time.Now().UTC().Add(time.Hour),
		}
		repo.On("GetByTokenHash", ctx, tokenSvc.HashToken("bearer-token"), mock.AnythingOfType("time.Time")).
			Return(stored, nil)

		session, err := uc.Get(ctx, "bearer-token")
		require.NoError(t, err)
		assert.Equal(t, stored.ID, session.ID)
	})

	t.Run("Failure_NotFoundOrExpired", func(t *testing.T) {
		repo := &MockSessionRepository{}
		uc := newSessionUseCase(repo)

		repo.On("GetByTokenHash", ctx, mock.Anything, mock.AnythingOfType("time.Time")).
			Return(nil, domain.ErrSessionNotFound)

		session, err := uc.Get(ctx, "stale-token")
		assert.Nil(t, session)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}

func TestSessionUseCase_GetWithState(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_MatchingState", func(t *testing.T) {
		repo := &MockSessionRepository{}
		uc := newSessionUseCase(repo)

		stored := &domain.Session{
			ID:    uuid.Must(uuid.NewV7()),
			State: domain.StatePendingLogin,
		}
		repo.On("GetByTokenHash", ctx, mock.Anything, mock.AnythingOfType("time.Time")).
			Return(stored, nil)

		session, err := uc.GetWithState(ctx, "pending-token", domain.StatePendingLogin)
		require.NoError(t, err)
		assert.Equal(t, stored.ID, session.ID)
	})

	t.Run("Failure_PendingFlowsAreNotInterchangeable", func(t *testing.T) {
		repo := &MockSessionRepository{}
		uc := newSessionUseCase(repo)

		// A pending-reset session must never satisfy the login gate
		stored := &domain.Session{
			ID:    uuid.Must(uuid.NewV7()),
			State: domain.StatePendingReset,
		}
		repo.On("GetByTokenHash", ctx, mock.Anything, mock.AnythingOfType("time.Time")).
			Return(stored, nil)

		session, err := uc.GetWithState(ctx, "pending-token", domain.StatePendingLogin)
		assert.Nil(t, session)
		assert.ErrorIs(t, err, domain.ErrSessionStateMismatch)
	})

	t.Run("Failure_AuthenticatedSessionRejectedByPendingGate", func(t *testing.T) {
		repo := &MockSessionRepository{}
		uc := newSessionUseCase(repo)

		stored := &domain.Session{
			ID:    uuid.Must(uuid.NewV7()),
			State: domain.StateAuthenticated,
		}
		repo.On("GetByTokenHash", ctx, mock.Anything, mock.AnythingOfType("time.Time")).
			Return(stored, nil)

		session, err := uc.GetWithState(ctx, "auth-token", domain.StatePendingReset)
		assert.Nil(t, session)
		assert.ErrorIs(t, err, domain.ErrSessionStateMismatch)
	})
}

func TestSessionUseCase_Promote(t *testing.T) {
	ctx := context.Background()
	identityID := uuid.Must(uuid.NewV7())
	tokenSvc := tokenService.NewTokenService()

	t.Run("Success_RotatesSessionIdentifier", func(t *testing.T) {
		repo := &MockSessionRepository{}
		uc := newSessionUseCase(repo)

		pending := &domain.Session{
			ID:         uuid.Must(uuid.NewV7()),
			TokenHash:  tokenSvc.HashToken("pending-token"),
			IdentityID: identityID,
			State:      domain.StatePendingLogin,
			ExpiresAt:  time.Now().UTC().Add(time.Hour),
		}

		repo.On("GetByTokenHash", ctx, tokenSvc.HashToken("pending-token"), mock.AnythingOfType("time.Time")).
			Return(pending, nil)
		repo.On("Delete", ctx, pending.ID).Return(nil)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Session")).Return(nil)

		promoted, err := uc.Promote(ctx, "pending-token", domain.StatePendingLogin)
		require.NoError(t, err)

		assert.Equal(t, domain.StateAuthenticated, promoted.Session.State)
		assert.Equal(t, identityID, promoted.Session.IdentityID)
		assert.NotEqual(t, pending.ID, promoted.Session.ID)
		assert.NotEqual(t, pending.TokenHash, promoted.Session.TokenHash)
		repo.AssertExpectations(t)
	})

	t.Run("Failure_WrongState", func(t *testing.T) {
		repo := &MockSessionRepository{}
		uc := newSessionUseCase(repo)

		stored := &domain.Session{
			ID:    uuid.Must(uuid.NewV7()),
			State: domain.StateAuthenticated,
		}
		repo.On("GetByTokenHash", ctx, mock.Anything, mock.AnythingOfType("time.Time")).
			Return(stored, nil)

		promoted, err := uc.Promote(ctx, "auth-token", domain.StatePendingLogin)
		assert.Nil(t, promoted)
		assert.ErrorIs(t, err, domain.ErrSessionStateMismatch)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestSessionUseCase_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	repo := &MockSessionRepository{}
	uc := newSessionUseCase(repo)

	cutoff := time.Now().UTC()
	repo.On("DeleteExpired", ctx, cutoff).Return(int64(4), nil)

	removed, err := uc.DeleteExpired(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(4), removed)
}
