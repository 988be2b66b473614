// Package repository provides data persistence implementations for sessions.
//
// Provides PostgreSQL and MySQL implementations with transaction support via
// database.GetTx(). PostgreSQL uses native UUID types, MySQL uses BINARY(16).
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

// PostgreSQLSessionRepository handles session persistence for PostgreSQL.
type PostgreSQLSessionRepository struct {
	db *sql.DB
}

// NewPostgreSQLSessionRepository creates a new PostgreSQLSessionRepository.
func NewPostgreSQLSessionRepository(db *sql.DB) *PostgreSQLSessionRepository {
	return &PostgreSQLSessionRepository{db: db}
}

// Create inserts a new session.
func (r *PostgreSQLSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO sessions (id, token_hash, identity_id, state, expires_at, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		session.ID,
		session.TokenHash,
		session.IdentityID,
		session.State,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create session")
	}
	return nil
}

// GetByTokenHash retrieves a session by its token hash. Expired sessions are
// filtered out at the query level so they are indistinguishable from missing
// ones.
func (r *PostgreSQLSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string, now time.Time) (*domain.Session, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, token_hash, identity_id, state, expires_at, created_at
			  FROM sessions WHERE token_hash = $1 AND expires_at > $2`

	var session domain.Session

	err := querier.QueryRowContext(ctx, query, tokenHash, now).Scan(
		&session.ID,
		&session.TokenHash,
		&session.IdentityID,
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

	return &session, nil
}

// Delete removes a session by ID. Deleting a missing session is not an error.
func (r *PostgreSQLSessionRepository) Delete(ctx context.Context, sessionID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	_, err := querier.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete session")
	}
	return nil
}

// DeleteByIdentity removes every session belonging to the identity. Used
// after a password reset to revoke all outstanding sessions.
func (r *PostgreSQLSessionRepository) DeleteByIdentity(ctx context.Context, identityID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	_, err := querier.ExecContext(ctx, `DELETE FROM sessions WHERE identity_id = $1`, identityID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete identity sessions")
	}
	return nil
}

// DeleteExpired removes sessions that expired before the cutoff.
func (r *PostgreSQLSessionRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, cutoff)
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
func (r *PostgreSQLSessionRepository) CountExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE expires_at < $1`, cutoff).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired sessions")
	}
	return count, nil
}
