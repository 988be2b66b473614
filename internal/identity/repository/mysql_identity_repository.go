package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/allisson/notehub/internal/database"
	apperrors "github.com/allisson/notehub/internal/errors"
	"github.com/allisson/notehub/internal/identity/domain"
)

// MySQLIdentityRepository handles identity persistence for MySQL.
// Uses BINARY(16) for UUID storage.
type MySQLIdentityRepository struct {
	db *sql.DB
}

// NewMySQLIdentityRepository creates a new MySQLIdentityRepository.
func NewMySQLIdentityRepository(db *sql.DB) *MySQLIdentityRepository {
	return &MySQLIdentityRepository{
		db: db,
	}
}

// Create inserts a new identity. A duplicate handle surfaces as ErrHandleTaken.
func (r *MySQLIdentityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO identities (id, handle, password_hash, bio, email, theme, totp_secret, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	idBytes, err := identity.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal identity id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		idBytes,
		identity.Handle,
		identity.PasswordHash,
		identity.Bio,
		identity.Email,
		identity.Theme,
		identity.TotpSecret,
		identity.CreatedAt,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return domain.ErrHandleTaken
		}
		return apperrors.Wrap(err, "failed to create identity")
	}
	return nil
}

// GetByID retrieves an identity by ID.
func (r *MySQLIdentityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Identity, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, handle, password_hash, bio, email, theme, totp_secret, created_at, last_authenticated_at
			  FROM identities WHERE id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal identity id")
	}

	return r.scanIdentity(querier.QueryRowContext(ctx, query, idBytes), "failed to get identity by id")
}

// GetByHandle retrieves an identity by its unique handle.
func (r *MySQLIdentityRepository) GetByHandle(ctx context.Context, handle string) (*domain.Identity, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, handle, password_hash, bio, email, theme, totp_secret, created_at, last_authenticated_at
			  FROM identities WHERE handle = ?`

	return r.scanIdentity(querier.QueryRowContext(ctx, query, handle), "failed to get identity by handle")
}

// Update modifies an existing identity's mutable fields.
func (r *MySQLIdentityRepository) Update(ctx context.Context, identity *domain.Identity) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE identities
			  SET handle = ?,
				  password_hash = ?,
				  bio = ?,
				  email = ?,
				  theme = ?,
				  totp_secret = ?,
				  last_authenticated_at = ?
			  WHERE id = ?`

	idBytes, err := identity.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal identity id")
	}

	result, err := querier.ExecContext(
		ctx,
		query,
		identity.Handle,
		identity.PasswordHash,
		identity.Bio,
		identity.Email,
		identity.Theme,
		identity.TotpSecret,
		identity.LastAuthenticatedAt,
		idBytes,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return domain.ErrHandleTaken
		}
		return apperrors.Wrap(err, "failed to update identity")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return domain.ErrIdentityNotFound
	}

	return nil
}

// Count returns the total number of identities.
func (r *MySQLIdentityRepository) Count(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM identities`).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count identities")
	}

	return count, nil
}

func (r *MySQLIdentityRepository) scanIdentity(row *sql.Row, msg string) (*domain.Identity, error) {
	var identity domain.Identity
	var idBytes []byte

	err := row.Scan(
		&idBytes,
		&identity.Handle,
		&identity.PasswordHash,
		&identity.Bio,
		&identity.Email,
		&identity.Theme,
		&identity.TotpSecret,
		&identity.CreatedAt,
		&identity.LastAuthenticatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, apperrors.Wrap(err, msg)
	}

	if err := identity.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal identity id")
	}

	return &identity, nil
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation.
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}
