// Package repository provides data persistence implementations for identity entities.
//
// Provides PostgreSQL and MySQL implementations with transaction support via
// database.GetTx(). PostgreSQL uses native UUID types, MySQL uses BINARY(16).
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

// PostgreSQLIdentityRepository handles identity persistence for PostgreSQL.
type PostgreSQLIdentityRepository struct {
	db *sql.DB
}

// NewPostgreSQLIdentityRepository creates a new PostgreSQLIdentityRepository.
func NewPostgreSQLIdentityRepository(db *sql.DB) *PostgreSQLIdentityRepository {
	return &PostgreSQLIdentityRepository{
		db: db,
	}
}

// Create inserts a new identity. The handle has a unique constraint, so a
// duplicate surfaces as ErrHandleTaken.
func (r *PostgreSQLIdentityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO identities (id, handle, password_hash, bio, email, theme, totp_secret, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(
		ctx,
		query,
		identity.ID,
		identity.Handle,
		identity.PasswordHash,
		identity.Bio,
		identity.Email,
		identity.Theme,
		identity.TotpSecret,
		identity.CreatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrHandleTaken
		}
		return apperrors.Wrap(err, "failed to create identity")
	}
	return nil
}

// GetByID retrieves an identity by ID.
func (r *PostgreSQLIdentityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Identity, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, handle, password_hash, bio, email, theme, totp_secret, created_at, last_authenticated_at
			  FROM identities WHERE id = $1`

	var identity domain.Identity

	err := querier.QueryRowContext(ctx, query, id).Scan(
		&identity.ID,
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
		return nil, apperrors.Wrap(err, "failed to get identity by id")
	}

	return &identity, nil
}

// GetByHandle retrieves an identity by its unique handle.
func (r *PostgreSQLIdentityRepository) GetByHandle(ctx context.Context, handle string) (*domain.Identity, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, handle, password_hash, bio, email, theme, totp_secret, created_at, last_authenticated_at
			  FROM identities WHERE handle = $1`

	var identity domain.Identity

	err := querier.QueryRowContext(ctx, query, handle).Scan(
		&identity.ID,
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
		return nil, apperrors.Wrap(err, "failed to get identity by handle")
	}

	return &identity, nil
}

// Update modifies an existing identity's mutable fields.
func (r *PostgreSQLIdentityRepository) Update(ctx context.Context, identity *domain.Identity) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE identities
			  SET handle = $1,
				  password_hash = $2,
				  bio = $3,
				  email = $4,
				  theme = $5,
				  totp_secret = $6,
				  last_authenticated_at = $7
			  WHERE id = $8`

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
		identity.ID,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
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

// Count returns the total number of identities. The bootstrap command uses it
// to decide whether to seed the initial admin account.
func (r *PostgreSQLIdentityRepository) Count(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM identities`).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count identities")
	}

	return count, nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" (SQLSTATE 23505)
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "23505")
}
