// Package repository provides data persistence implementations for notes,
// tags and share grants.
//
// Provides PostgreSQL and MySQL implementations with transaction support via
// database.GetTx(). PostgreSQL uses native UUID types, MySQL uses BINARY(16).
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/allisson/notehub/internal/database"
	apperrors "github.com/allisson/notehub/internal/errors"
	"github.com/allisson/notehub/internal/note/domain"
)

// ListQuery describes a note listing: whose accessible set, which view,
// optional search and tag filters, and pagination.
type ListQuery struct {
	IdentityID uuid.UUID
	View       domain.ViewFilter
	Search     string
	Tag        string
	Offset     int
	Limit      int
}

// PostgreSQLNoteRepository handles note persistence for PostgreSQL.
type PostgreSQLNoteRepository struct {
	db *sql.DB
}

// NewPostgreSQLNoteRepository creates a new PostgreSQLNoteRepository.
func NewPostgreSQLNoteRepository(db *sql.DB) *PostgreSQLNoteRepository {
	return &PostgreSQLNoteRepository{db: db}
}

// Create inserts a new note and its tags.
func (r *PostgreSQLNoteRepository) Create(ctx context.Context, note *domain.Note) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO notes (id, title, body, pinned, archived, favorite, owner_id, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(
		ctx,
		query,
		note.ID,
		note.Title,
		note.Body,
		note.Pinned,
		note.Archived,
		note.Favorite,
		note.OwnerID,
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create note")
	}

	return r.SetTags(ctx, note.ID, note.Tags)
}

// GetByID retrieves a note with its tags.
func (r *PostgreSQLNoteRepository) GetByID(ctx context.Context, noteID uuid.UUID) (*domain.Note, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, title, body, pinned, archived, favorite, owner_id, created_at, updated_at
			  FROM notes WHERE id = $1`

	var note domain.Note

	err := querier.QueryRowContext(ctx, query, noteID).Scan(
		&note.ID,
		&note.Title,
		&note.Body,
		&note.Pinned,
		&note.Archived,
		&note.Favorite,
		&note.OwnerID,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get note")
	}

	tags, err := r.getTags(ctx, note.ID)
	if err != nil {
		return nil, err
	}
	note.Tags = tags

	return &note, nil
}

// Update modifies a note's content and flags, replacing its tags.
func (r *PostgreSQLNoteRepository) Update(ctx context.Context, note *domain.Note) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE notes
			  SET title = $1, body = $2, pinned = $3, archived = $4, favorite = $5, updated_at = $6
			  WHERE id = $7`

	result, err := querier.ExecContext(
		ctx,
		query,
		note.Title,
		note.Body,
		note.Pinned,
		note.Archived,
		note.Favorite,
		note.UpdatedAt,
		note.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update note")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return domain.ErrNoteNotFound
	}

	return r.SetTags(ctx, note.ID, note.Tags)
}

// Delete removes a note. Share grants and tag links cascade at the schema
// level.
func (r *PostgreSQLNoteRepository) Delete(ctx context.Context, noteID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, noteID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete note")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return domain.ErrNoteNotFound
	}

	return nil
}

// List retrieves the identity's accessible notes (owned plus granted)
// filtered by view, search and tag, pinned first then most recently updated.
func (r *PostgreSQLNoteRepository) List(ctx context.Context, q ListQuery) ([]*domain.Note, error) {
	querier := database.GetTx(ctx, r.db)

	var sb strings.Builder
	sb.WriteString(`SELECT DISTINCT n.id, n.title, n.body, n.pinned, n.archived, n.favorite, n.owner_id, n.created_at, n.updated_at
					FROM notes n
					LEFT JOIN note_shares s ON s.note_id = n.id AND s.shared_with_id = $1
					WHERE (n.owner_id = $1 OR s.id IS NOT NULL)`)

	args := []any{q.IdentityID}

	switch q.View {
	case domain.ViewFavorites:
		sb.WriteString(` AND n.favorite = TRUE AND n.archived = FALSE`)
	case domain.ViewArchived:
		sb.WriteString(` AND n.archived = TRUE`)
	case domain.ViewShared:
		sb.WriteString(` AND n.owner_id <> $1 AND n.archived = FALSE`)
	default:
		sb.WriteString(` AND n.archived = FALSE`)
	}

	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		sb.WriteString(fmt.Sprintf(` AND (n.title ILIKE %s OR n.body ILIKE %s)`, placeholder, placeholder))
	}

	if q.Tag != "" {
		args = append(args, q.Tag)
		sb.WriteString(fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM note_tags nt
			JOIN tags t ON t.id = nt.tag_id
			WHERE nt.note_id = n.id AND t.name = $%d)`, len(args)))
	}

	args = append(args, q.Limit, q.Offset)
	sb.WriteString(fmt.Sprintf(` ORDER BY n.pinned DESC, n.updated_at DESC LIMIT $%d OFFSET $%d`,
		len(args)-1, len(args)))

	rows, err := querier.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list notes")
	}
	defer func() {
		_ = rows.Close()
	}()

	notes := make([]*domain.Note, 0)
	for rows.Next() {
		var note domain.Note
		err := rows.Scan(
			&note.ID,
			&note.Title,
			&note.Body,
			&note.Pinned,
			&note.Archived,
			&note.Favorite,
			&note.OwnerID,
			&note.CreatedAt,
			&note.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan note row")
		}
		notes = append(notes, &note)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating note rows")
	}

	for _, note := range notes {
		tags, err := r.getTags(ctx, note.ID)
		if err != nil {
			return nil, err
		}
		note.Tags = tags
	}

	return notes, nil
}

// CountByOwner returns the number of notes owned by the identity.
func (r *PostgreSQLNoteRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes WHERE owner_id = $1`, ownerID).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count notes")
	}
	return count, nil
}

// SetTags replaces the note's tags. Tag rows are created on first use and
// linked through the join table.
func (r *PostgreSQLNoteRepository) SetTags(ctx context.Context, noteID uuid.UUID, tags []string) error {
	querier := database.GetTx(ctx, r.db)

	_, err := querier.ExecContext(ctx, `DELETE FROM note_tags WHERE note_id = $1`, noteID)
	if err != nil {
		return apperrors.Wrap(err, "failed to clear note tags")
	}

	for _, name := range tags {
		var tagID uuid.UUID
		err := querier.QueryRowContext(ctx,
			`INSERT INTO tags (id, name) VALUES ($1, $2)
			 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			 RETURNING id`,
			uuid.Must(uuid.NewV7()), name,
		).Scan(&tagID)
		if err != nil {
			return apperrors.Wrap(err, "failed to upsert tag")
		}

		_, err = querier.ExecContext(ctx,
			`INSERT INTO note_tags (note_id, tag_id) VALUES ($1, $2)`, noteID, tagID)
		if err != nil {
			return apperrors.Wrap(err, "failed to link tag")
		}
	}

	return nil
}

// getTags loads a note's tag names sorted alphabetically.
func (r *PostgreSQLNoteRepository) getTags(ctx context.Context, noteID uuid.UUID) ([]string, error) {
	querier := database.GetTx(ctx, r.db)

	rows, err := querier.QueryContext(ctx,
		`SELECT t.name FROM tags t
		 JOIN note_tags nt ON nt.tag_id = t.id
		 WHERE nt.note_id = $1
		 ORDER BY t.name`, noteID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get note tags")
	}
	defer func() {
		_ = rows.Close()
	}()

	tags := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan tag row")
		}
		tags = append(tags, name)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating tag rows")
	}

	return tags, nil
}

// CreateGrant inserts a share grant. The (note, grantee) unique constraint
// maps duplicates to ErrAlreadyShared.
func (r *PostgreSQLNoteRepository) CreateGrant(ctx context.Context, grant *domain.ShareGrant) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO note_shares (id, note_id, shared_by_id, shared_with_id, can_edit, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		grant.ID,
		grant.NoteID,
		grant.SharedByID,
		grant.SharedWithID,
		grant.CanEdit,
		grant.CreatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrAlreadyShared
		}
		return apperrors.Wrap(err, "failed to create share grant")
	}
	return nil
}

// GetGrant retrieves the grant for a note and grantee, if any.
func (r *PostgreSQLNoteRepository) GetGrant(ctx context.Context, noteID, granteeID uuid.UUID) (*domain.ShareGrant, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, note_id, shared_by_id, shared_with_id, can_edit, created_at
			  FROM note_shares WHERE note_id = $1 AND shared_with_id = $2`

	var grant domain.ShareGrant

	err := querier.QueryRowContext(ctx, query, noteID, granteeID).Scan(
		&grant.ID,
		&grant.NoteID,
		&grant.SharedByID,
		&grant.SharedWithID,
		&grant.CanEdit,
		&grant.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGrantNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get share grant")
	}

	return &grant, nil
}

// DeleteGrant removes the grant for a note and grantee.
func (r *PostgreSQLNoteRepository) DeleteGrant(ctx context.Context, noteID, granteeID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx,
		`DELETE FROM note_shares WHERE note_id = $1 AND shared_with_id = $2`, noteID, granteeID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete share grant")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return domain.ErrGrantNotFound
	}

	return nil
}

// ListGrantsByNote retrieves every grant on a note, oldest first.
func (r *PostgreSQLNoteRepository) ListGrantsByNote(ctx context.Context, noteID uuid.UUID) ([]*domain.ShareGrant, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, note_id, shared_by_id, shared_with_id, can_edit, created_at
			  FROM note_shares WHERE note_id = $1 ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, noteID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list share grants")
	}
	defer func() {
		_ = rows.Close()
	}()

	grants := make([]*domain.ShareGrant, 0)
	for rows.Next() {
		var grant domain.ShareGrant
		err := rows.Scan(
			&grant.ID,
			&grant.NoteID,
			&grant.SharedByID,
			&grant.SharedWithID,
			&grant.CanEdit,
			&grant.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan share grant row")
		}
		grants = append(grants, &grant)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating share grant rows")
	}

	return grants, nil
}

// CountGrantsForGrantee returns how many notes are shared with the identity.
func (r *PostgreSQLNoteRepository) CountGrantsForGrantee(ctx context.Context, granteeID uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	var count int64
	err := querier.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM note_shares WHERE shared_with_id = $1`, granteeID).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count share grants")
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
