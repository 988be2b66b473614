// Package repository provides data persistence implementations for verification tokens.
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
	"github.com/allisson/notehub/internal/token/domain"
)

// PostgreSQLTokenRepository handles verification token persistence for PostgreSQL.
type PostgreSQLTokenRepository struct {
	db *sql.DB
}

// NewPostgreSQLTokenRepository creates a new PostgreSQLTokenRepository.
func NewPostgreSQLTokenRepository(db *sql.DB) *PostgreSQLTokenRepository {
	return &PostgreSQLTokenRepository{db: db}
}

// Create inserts a new verification token.
func (r *PostgreSQLTokenRepository) Create(ctx context.Context, token *domain.VerificationToken) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO verification_tokens
			  (id, token_hash, purpose, owner_id, used_by_id, used, expires_at, email, message, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := querier.ExecContext(
		ctx,
		query,
		token.ID,
		token.TokenHash,
		token.Purpose,
		token.OwnerID,
		token.UsedByID,
		token.Used,
		token.ExpiresAt,
		token.Email,
		token.Message,
		token.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create verification token")
	}
	return nil
}

// GetByTokenHash retrieves a verification token by its hash.
func (r *PostgreSQLTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.VerificationToken, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, token_hash, purpose, owner_id, used_by_id, used, expires_at, email, message, created_at
			  FROM verification_tokens WHERE token_hash = $1`

	var token domain.VerificationToken

	err := querier.QueryRowContext(ctx, query, tokenHash).Scan(
		&token.ID,
		&token.TokenHash,
		&token.Purpose,
		&token.OwnerID,
		&token.UsedByID,
		&token.Used,
		&token.ExpiresAt,
		&token.Email,
		&token.Message,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get verification token")
	}

	return &token, nil
}

// InvalidateActive marks every unused token of the owner and purpose as used.
// Issuing a fresh token calls this first so at most one token per purpose is
// live at any time.
func (r *PostgreSQLTokenRepository) InvalidateActive(ctx context.Context, ownerID uuid.UUID, purpose domain.Purpose) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE verification_tokens
			  SET used = TRUE
			  WHERE owner_id = $1 AND purpose = $2 AND used = FALSE`

	_, err := querier.ExecContext(ctx, query, ownerID, purpose)
	if err != nil {
		return apperrors.Wrap(err, "failed to invalidate active tokens")
	}
	return nil
}

// MarkUsed flips the token to used if and only if it is still unused. The
// conditional update arbitrates concurrent redeemers: exactly one caller
// observes an affected row, every other caller gets ErrTokenUsed.
func (r *PostgreSQLTokenRepository) MarkUsed(ctx context.Context, tokenID uuid.UUID, usedByID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE verification_tokens
			  SET used = TRUE, used_by_id = $1
			  WHERE id = $2 AND used = FALSE`

	result, err := querier.ExecContext(ctx, query, usedByID, tokenID)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark token as used")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return domain.ErrTokenUsed
	}

	return nil
}

// ListByOwner retrieves the owner's tokens for a purpose, newest first.
func (r *PostgreSQLTokenRepository) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	purpose domain.Purpose,
	offset, limit int,
) ([]*domain.VerificationToken, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, token_hash, purpose, owner_id, used_by_id, used, expires_at, email, message, created_at
			  FROM verification_tokens
			  WHERE owner_id = $1 AND purpose = $2
			  ORDER BY created_at DESC
			  LIMIT $3 OFFSET $4`

	rows, err := querier.QueryContext(ctx, query, ownerID, purpose, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list verification tokens")
	}
	defer func() {
		_ = rows.Close()
	}()

	tokens := make([]*domain.VerificationToken, 0)
	for rows.Next() {
		var token domain.VerificationToken
		err := rows.Scan(
			&token.ID,
			&token.TokenHash,
			&token.Purpose,
			&token.OwnerID,
			&token.UsedByID,
			&token.Used,
			&token.ExpiresAt,
			&token.Email,
			&token.Message,
			&token.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan verification token row")
		}
		tokens = append(tokens, &token)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating verification token rows")
	}

	return tokens, nil
}

// DeleteExpired removes used tokens and tokens that expired before the cutoff.
// Returns the number of rows removed.
func (r *PostgreSQLTokenRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM verification_tokens WHERE used = TRUE OR expires_at < $1`

	result, err := querier.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired tokens")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}

	return rowsAffected, nil
}

// CountExpired returns the number of tokens the cleanup would remove: used
// tokens plus tokens that expired before the cutoff.
func (r *PostgreSQLTokenRepository) CountExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT COUNT(*) FROM verification_tokens WHERE used = TRUE OR expires_at < $1`

	var count int64
	err := querier.QueryRowContext(ctx, query, cutoff).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired tokens")
	}
	return count, nil
}
