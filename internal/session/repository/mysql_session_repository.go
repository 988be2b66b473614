package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/notehub/internal/database"
	apperrors "github.com/allisson/notehub/internal/errors"
	"github.com/allisson/notehub/internal/session/domain"
)

// MySQLSessionRepository handles session persistence for MySQL.
// Uses BINARY(16) for UUID storage.
type MySQLSessionRepository struct {
	db *sql.DB
}

// NewMySQLSessionRepository creates a new MySQLSessionRepository.
func NewMySQLSessionRepository(db *sql.DB) *MySQLSessionRepository {
	return &MySQLSessionRepository{db: db}
}

// Create inserts a new session.
func (r *MySQLSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO sessions (id, token_hash, identity_id, state, expires_at, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	idBytes, err := session.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal session id")
	}

	identityBytes, err := session.IdentityID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal identity id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		idBytes,
		session.TokenHash,
		identityBytes,
		session.State,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create session")
	}
	return nil
}

// GetByTokenHash retrieves a session by its token hash, filtering out
// expired sessions at the query level.
func (r *MySQLSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string, now time.Time) (*domain.Session, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, token_hash, identity_id, state, expires_at, created_at
			  FROM sessions WHERE token_hash = ? AND expires_at > ?`

	var session domain.Session
	var idBytes, identityBytes []byte

	err := querier.QueryRowContext(ctx, query, tokenHash, now).Scan(
		&idBytes,
		&session.TokenHash,
		&identityBytes,
		&session.State,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get session")
	}

	if err := session.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal session id")
	}
	if err := session.IdentityID.UnmarshalBinary(identityBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal identity id")
	}

	return &session, nil
}

// Delete removes a session by ID. Deleting a missing session is not an error.
func (r *MySQLSessionRepository) Delete(ctx context.Context, sessionID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := sessionID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal session id")
	}

	_, err = querier.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, idBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete session")
	}
	return nil
}

// DeleteByIdentity removes every session belonging to the identity.
func (r *MySQLSessionRepository) DeleteByIdentity(ctx context.Context, identityID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	identityBytes, err := identityID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal identity id")
	}

	_, err = querier.ExecContext(ctx, `DELETE FROM sessions WHERE identity_id = ?`, identityBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete identity sessions")
	}
	return nil
}

// DeleteExpired removes sessions that expired before the cutoff.
func (r *MySQLSessionRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, cutoff)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired sessions")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}

	return rowsAffected, nil
}

// CountExpired returns the number of sessions that expired before the cutoff.
func (r *MySQLSessionRepository) CountExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE expires_at < ?`, cutoff).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired sessions")
	}
	return count, nil
}
