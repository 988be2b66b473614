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

// MySQLTokenRepository handles verification token persistence for MySQL.
// Uses BINARY(16) for UUID storage.
type MySQLTokenRepository struct {
	db *sql.DB
}

// NewMySQLTokenRepository creates a new MySQLTokenRepository.
func NewMySQLTokenRepository(db *sql.DB) *MySQLTokenRepository {
	return &MySQLTokenRepository{db: db}
}

// Create inserts a new verification token.
func (r *MySQLTokenRepository) Create(ctx context.Context, token *domain.VerificationToken) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO verification_tokens
			  (id, token_hash, purpose, owner_id, used_by_id, used, expires_at, email, message, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	idBytes, err := token.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal token id")
	}

	ownerBytes, err := token.OwnerID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal owner id")
	}

	var usedByBytes []byte
	if token.UsedByID != nil {
		usedByBytes, err = token.UsedByID.MarshalBinary()
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal used_by id")
		}
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		idBytes,
		token.TokenHash,
		token.Purpose,
		ownerBytes,
		usedByBytes,
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
func (r *MySQLTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.VerificationToken, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, token_hash, purpose, owner_id, used_by_id, used, expires_at, email, message, created_at
			  FROM verification_tokens WHERE token_hash = ?`

	row := querier.QueryRowContext(ctx, query, tokenHash)
	token, err := scanMySQLToken(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get verification token")
	}

	return token, nil
}

// InvalidateActive marks every unused token of the owner and purpose as used.
func (r *MySQLTokenRepository) InvalidateActive(ctx context.Context, ownerID uuid.UUID, purpose domain.Purpose) error {
	querier := database.GetTx(ctx, r.db)

	ownerBytes, err := ownerID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal owner id")
	}

	query := `UPDATE verification_tokens
			  SET used = TRUE
			  WHERE owner_id = ? AND purpose = ? AND used = FALSE`

	_, err = querier.ExecContext(ctx, query, ownerBytes, purpose)
	if err != nil {
		return apperrors.Wrap(err, "failed to invalidate active tokens")
	}
	return nil
}

// MarkUsed flips the token to used if and only if it is still unused.
// Exactly one concurrent redeemer observes an affected row.
func (r *MySQLTokenRepository) MarkUsed(ctx context.Context, tokenID uuid.UUID, usedByID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := tokenID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal token id")
	}

	usedByBytes, err := usedByID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal used_by id")
	}

	query := `UPDATE verification_tokens
			  SET used = TRUE, used_by_id = ?
			  WHERE id = ? AND used = FALSE`

	result, err := querier.ExecContext(ctx, query, usedByBytes, idBytes)
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
func (r *MySQLTokenRepository) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	purpose domain.Purpose,
	offset, limit int,
) ([]*domain.VerificationToken, error) {
	querier := database.GetTx(ctx, r.db)

	ownerBytes, err := ownerID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal owner id")
	}

	query := `SELECT id, token_hash, purpose, owner_id, used_by_id, used, expires_at, email, message, created_at
			  FROM verification_tokens
			  WHERE owner_id = ? AND purpose = ?
			  ORDER BY created_at DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, ownerBytes, purpose, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list verification tokens")
	}
	defer func() {
		_ = rows.Close()
	}()

	tokens := make([]*domain.VerificationToken, 0)
	for rows.Next() {
		token, err := scanMySQLToken(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan verification token row")
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating verification token rows")
	}

	return tokens, nil
}

// DeleteExpired removes used tokens and tokens that expired before the cutoff.
func (r *MySQLTokenRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM verification_tokens WHERE used = TRUE OR expires_at < ?`

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
func (r *MySQLTokenRepository) CountExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT COUNT(*) FROM verification_tokens WHERE used = TRUE OR expires_at < ?`

	var count int64
	err := querier.QueryRowContext(ctx, query, cutoff).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired tokens")
	}
	return count, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMySQLToken(row rowScanner) (*domain.VerificationToken, error) {
	var token domain.VerificationToken
	var idBytes, ownerBytes, usedByBytes []byte

	err := row.Scan(
		&idBytes,
		&token.TokenHash,
		&token.Purpose,
		&ownerBytes,
		&usedByBytes,
		&token.Used,
		&token.ExpiresAt,
		&token.Email,
		&token.Message,
		&token.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := token.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal token id")
	}
	if err := token.OwnerID.UnmarshalBinary(ownerBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal owner id")
	}
	if len(usedByBytes) > 0 {
		var usedBy uuid.UUID
		if err := usedBy.UnmarshalBinary(usedByBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal used_by id")
		}
		token.UsedByID = &usedBy
	}

	return &token, nil
}
