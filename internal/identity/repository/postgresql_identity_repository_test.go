package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/notehub/internal/errors"
	"github.com/allisson/notehub/internal/identity/domain"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return db, mock
}

func identityColumns() []string {
	return []string{
		"id", "handle", "password_hash", "bio", "email", "theme",
		"totp_secret", "created_at", "last_authenticated_at",
	}
}

func TestPostgreSQLIdentityRepository_Create(t *testing.T) {
	identity := &domain.Identity{
		ID:           uuid.Must(uuid.NewV7()),
		Handle:       "alice",
		PasswordHash: "$argon2id$fake",
		Theme:        domain.ThemeLight,
		CreatedAt:    time.Now().UTC(),
	}

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLIdentityRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO identities`)).
			WithArgs(
				identity.ID, identity.Handle, identity.PasswordHash,
				identity.Bio, identity.Email, identity.Theme,
				identity.TotpSecret, identity.CreatedAt,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Create(context.Background(), identity)
		require.NoError(t, err)
	})

	t.Run("Failure_DuplicateHandle", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLIdentityRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO identities`)).
			WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "identities_handle_key"`))

		err := repo.Create(context.Background(), identity)
		assert.ErrorIs(t, err, domain.ErrHandleTaken)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("Failure_DatabaseError", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLIdentityRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO identities`)).
			WillReturnError(errors.New("connection refused"))

		err := repo.Create(context.Background(), identity)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrHandleTaken)
	})
}

func TestPostgreSQLIdentityRepository_GetByHandle(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLIdentityRepository(db)

		id := uuid.Must(uuid.NewV7())
		createdAt := time.Now().UTC()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, handle, password_hash, bio, email, theme, totp_secret, created_at, last_authenticated_at`)).
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows(identityColumns()).
				AddRow(id, "alice", "$argon2id$fake", "hi", "alice@example.com", "dark", "JBSWY3DPEHPK3PXP", createdAt, nil))

		identity, err := repo.GetByHandle(context.Background(), "alice")
		require.NoError(t, err)

		assert.Equal(t, id, identity.ID)
		assert.Equal(t, "alice", identity.Handle)
		assert.Equal(t, domain.ThemeDark, identity.Theme)
		assert.True(t, identity.SecondFactorEnrolled())
		assert.Nil(t, identity.LastAuthenticatedAt)
	})

	t.Run("Failure_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLIdentityRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, handle`)).
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		identity, err := repo.GetByHandle(context.Background(), "ghost")
		assert.Nil(t, identity)
		assert.ErrorIs(t, err, domain.ErrIdentityNotFound)
	})
}

func TestPostgreSQLIdentityRepository_GetByID(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLIdentityRepository(db)

		id := uuid.Must(uuid.NewV7())
		lastAuth := time.Now().UTC()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, handle`)).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(identityColumns()).
				AddRow(id, "bob", "$argon2id$fake", "", "", "light", "", time.Now().UTC(), lastAuth))

		identity, err := repo.GetByID(context.Background(), id)
		require.NoError(t, err)

		assert.Equal(t, "bob", identity.Handle)
		assert.False(t, identity.SecondFactorEnrolled())
		require.NotNil(t, identity.LastAuthenticatedAt)
		assert.WithinDuration(t, lastAuth, *identity.LastAuthenticatedAt, time.Second)
	})

	t.Run("Failure_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLIdentityRepository(db)

		id := uuid.Must(uuid.NewV7())
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, handle`)).
			WithArgs(id).
			WillReturnError(sql.ErrNoRows)

		identity, err := repo.GetByID(context.Background(), id)
		assert.Nil(t, identity)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestPostgreSQLIdentityRepository_Update(t *testing.T) {
	identity := &domain.Identity{
		ID:           uuid.Must(uuid.NewV7()),
		Handle:       "alice",
		PasswordHash: "$argon2id$new",
		Theme:        domain.ThemeDark,
	}

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLIdentityRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE identities`)).
			WithArgs(
				identity.Handle, identity.PasswordHash, identity.Bio,
				identity.Email, identity.Theme, identity.TotpSecret,
				identity.LastAuthenticatedAt, identity.ID,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(context.Background(), identity)
		require.NoError(t, err)
	})

	t.Run("Failure_DuplicateHandle", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLIdentityRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE identities`)).
			WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "identities_handle_key"`))

		err := repo.Update(context.Background(), identity)
		assert.ErrorIs(t, err, domain.ErrHandleTaken)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("Failure_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLIdentityRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE identities`)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), identity)
		assert.ErrorIs(t, err, domain.ErrIdentityNotFound)
	})
}

func TestPostgreSQLIdentityRepository_Count(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLIdentityRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM identities`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestIsPostgreSQLUniqueViolation(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"duplicate key", errors.New("pq: duplicate key value violates unique constraint"), true},
		{"sqlstate code", errors.New("ERROR: something (SQLSTATE 23505)"), true},
		{"other error", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isPostgreSQLUniqueViolation(tt.err))
		})
	}
}
