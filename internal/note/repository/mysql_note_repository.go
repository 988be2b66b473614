package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/allisson/notehub/internal/database"
	apperrors "github.com/allisson/notehub/internal/errors"
	"github.com/allisson/notehub/internal/note/domain"
)

// MySQLNoteRepository handles note persistence for MySQL.
// Uses BINARY(16) for UUID storage.
type MySQLNoteRepository struct {
	db *sql.DB
}

// NewMySQLNoteRepository creates a new MySQLNoteRepository.
func NewMySQLNoteRepository(db *sql.DB) *MySQLNoteRepository {
	return &MySQLNoteRepository{db: db}
}

// Create inserts a new note and its tags.
func (r *MySQLNoteRepository) Create(ctx context.Context, note *domain.Note) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := note.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal note id")
	}
	ownerBytes, err := note.OwnerID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal owner id")
	}

	query := `INSERT INTO notes (id, title, body, pinned, archived, favorite, owner_id, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		idBytes,
		note.Title,
		note.Body,
		note.Pinned,
		note.Archived,
		note.Favorite,
		ownerBytes,
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create note")
	}

	return r.SetTags(ctx, note.ID, note.Tags)
}

// GetByID retrieves a note with its tags.
func (r *MySQLNoteRepository) GetByID(ctx context.Context, noteID uuid.UUID) (*domain.Note, error) {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := noteID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal note id")
	}

	query := `SELECT id, title, body, pinned, archived, favorite, owner_id, created_at, updated_at
			  FROM notes WHERE id = ?`

	note, err := scanMySQLNote(querier.QueryRowContext(ctx, query, idBytes))
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

	return note, nil
}

// Update modifies a note's content and flags, replacing its tags.
func (r *MySQLNoteRepository) Update(ctx context.Context, note *domain.Note) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := note.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal note id")
	}

	query := `UPDATE notes
			  SET title = ?, body = ?, pinned = ?, archived = ?, favorite = ?, updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		note.Title,
		note.Body,
		note.Pinned,
		note.Archived,
		note.Favorite,
		note.UpdatedAt,
		idBytes,
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
func (r *MySQLNoteRepository) Delete(ctx context.Context, noteID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := noteID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal note id")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, idBytes)
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
func (r *MySQLNoteRepository) List(ctx context.Context, q ListQuery) ([]*domain.Note, error) {
	querier := database.GetTx(ctx, r.db)

	identityBytes, err := q.IdentityID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal identity id")
	}

	var sb strings.Builder
	sb.WriteString(`SELECT DISTINCT n.id, n.title, n.body, n.pinned, n.archived, n.favorite, n.owner_id, n.created_at, n.updated_at
					FROM notes n
					LEFT JOIN note_shares s ON s.note_id = n.id AND s.shared_with_id = ?
					WHERE (n.owner_id = ? OR s.id IS NOT NULL)`)

	args := []any{identityBytes, identityBytes}

	switch q.View {
	case domain.ViewFavorites:
		sb.WriteString(` AND n.favorite = TRUE AND n.archived = FALSE`)
	case domain.ViewArchived:
		sb.WriteString(` AND n.archived = TRUE`)
	case domain.ViewShared:
		sb.WriteString(` AND n.owner_id <> ? AND n.archived = FALSE`)
		args = append(args, identityBytes)
	default:
		sb.WriteString(` AND n.archived = FALSE`)
	}

	if q.Search != "" {
		pattern := "%" + strings.ToLower(q.Search) + "%"
		sb.WriteString(` AND (LOWER(n.title) LIKE ? OR LOWER(n.body) LIKE ?)`)
		args = append(args, pattern, pattern)
	}

	if q.Tag != "" {
		sb.WriteString(` AND EXISTS (
			SELECT 1 FROM note_tags nt
			JOIN tags t ON t.id = nt.tag_id
			WHERE nt.note_id = n.id AND t.name = ?)`)
		args = append(args, q.Tag)
	}

	sb.WriteString(` ORDER BY n.pinned DESC, n.updated_at DESC LIMIT ? OFFSET ?`)
	args = append(args, q.Limit, q.Offset)

	rows, err := querier.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list notes")
	}
	defer func() {
		_ = rows.Close()
	}()

	notes := make([]*domain.Note, 0)
	for rows.Next() {
		note, err := scanMySQLNote(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan note row")
		}
		notes = append(notes, note)
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
func (r *MySQLNoteRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	ownerBytes, err := ownerID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal owner id")
	}

	var count int64
	err = querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes WHERE owner_id = ?`, ownerBytes).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count notes")
	}
	return count, nil
}

// SetTags replaces the note's tags.
func (r *MySQLNoteRepository) SetTags(ctx context.Context, noteID uuid.UUID, tags []string) error {
	querier := database.GetTx(ctx, r.db)

	noteBytes, err := noteID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal note id")
	}

	_, err = querier.ExecContext(ctx, `DELETE FROM note_tags WHERE note_id = ?`, noteBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to clear note tags")
	}

	for _, name := range tags {
		tagID := uuid.Must(uuid.NewV7())
		tagBytes, err := tagID.MarshalBinary()
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal tag id")
		}

		_, err = querier.ExecContext(ctx,
			`INSERT INTO tags (id, name) VALUES (?, ?)
			 ON DUPLICATE KEY UPDATE name = VALUES(name)`, tagBytes, name)
		if err != nil {
			return apperrors.Wrap(err, "failed to upsert tag")
		}

		var existingBytes []byte
		err = querier.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&existingBytes)
		if err != nil {
			return apperrors.Wrap(err, "failed to resolve tag id")
		}

		_, err = querier.ExecContext(ctx,
			`INSERT INTO note_tags (note_id, tag_id) VALUES (?, ?)`, noteBytes, existingBytes)
		if err != nil {
			return apperrors.Wrap(err, "failed to link tag")
		}
	}

	return nil
}

// getTags loads a note's tag names sorted alphabetically.
func (r *MySQLNoteRepository) getTags(ctx context.Context, noteID uuid.UUID) ([]string, error) {
	querier := database.GetTx(ctx, r.db)

	noteBytes, err := noteID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal note id")
	}

	rows, err := querier.QueryContext(ctx,
		`SELECT t.name FROM tags t
		 JOIN note_tags nt ON nt.tag_id = t.id
		 WHERE nt.note_id = ?
		 ORDER BY t.name`, noteBytes)
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
func (r *MySQLNoteRepository) CreateGrant(ctx context.Context, grant *domain.ShareGrant) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := grant.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal grant id")
	}
	noteBytes, err := grant.NoteID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal note id")
	}
	byBytes, err := grant.SharedByID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal sharer id")
	}
	withBytes, err := grant.SharedWithID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal grantee id")
	}

	query := `INSERT INTO note_shares (id, note_id, shared_by_id, shared_with_id, can_edit, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, idBytes, noteBytes, byBytes, withBytes, grant.CanEdit, grant.CreatedAt)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return domain.ErrAlreadyShared
		}
		return apperrors.Wrap(err, "failed to create share grant")
	}
	return nil
}

// GetGrant retrieves the grant for a note and grantee, if any.
func (r *MySQLNoteRepository) GetGrant(ctx context.Context, noteID, granteeID uuid.UUID) (*domain.ShareGrant, error) {
	querier := database.GetTx(ctx, r.db)

	noteBytes, err := noteID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal note id")
	}
	granteeBytes, err := granteeID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal grantee id")
	}

	query := `SELECT id, note_id, shared_by_id, shared_with_id, can_edit, created_at
			  FROM note_shares WHERE note_id = ? AND shared_with_id = ?`

	grant, err := scanMySQLGrant(querier.QueryRowContext(ctx, query, noteBytes, granteeBytes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGrantNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get share grant")
	}

	return grant, nil
}

// DeleteGrant removes the grant for a note and grantee.
func (r *MySQLNoteRepository) DeleteGrant(ctx context.Context, noteID, granteeID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	noteBytes, err := noteID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal note id")
	}
	granteeBytes, err := granteeID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal grantee id")
	}

	result, err := querier.ExecContext(ctx,
		`DELETE FROM note_shares WHERE note_id = ? AND shared_with_id = ?`, noteBytes, granteeBytes)
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
func (r *MySQLNoteRepository) ListGrantsByNote(ctx context.Context, noteID uuid.UUID) ([]*domain.ShareGrant, error) {
	querier := database.GetTx(ctx, r.db)

	noteBytes, err := noteID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal note id")
	}

	query := `SELECT id, note_id, shared_by_id, shared_with_id, can_edit, created_at
			  FROM note_shares WHERE note_id = ? ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, noteBytes)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list share grants")
	}
	defer func() {
		_ = rows.Close()
	}()

	grants := make([]*domain.ShareGrant, 0)
	for rows.Next() {
		grant, err := scanMySQLGrant(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan share grant row")
		}
		grants = append(grants, grant)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating share grant rows")
	}

	return grants, nil
}

// CountGrantsForGrantee returns how many notes are shared with the identity.
func (r *MySQLNoteRepository) CountGrantsForGrantee(ctx context.Context, granteeID uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	granteeBytes, err := granteeID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal grantee id")
	}

	var count int64
	err = querier.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM note_shares WHERE shared_with_id = ?`, granteeBytes).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count share grants")
	}
	return count, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMySQLNote(row rowScanner) (*domain.Note, error) {
	var note domain.Note
	var idBytes, ownerBytes []byte

	err := row.Scan(
		&idBytes,
		&note.Title,
		&note.Body,
		&note.Pinned,
		&note.Archived,
		&note.Favorite,
		&ownerBytes,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := note.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal note id")
	}
	if err := note.OwnerID.UnmarshalBinary(ownerBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal owner id")
	}

	return &note, nil
}

func scanMySQLGrant(row rowScanner) (*domain.ShareGrant, error) {
	var grant domain.ShareGrant
	var idBytes, noteBytes, byBytes, withBytes []byte

	err := row.Scan(
		&idBytes,
		&noteBytes,
		&byBytes,
		&withBytes,
		&grant.CanEdit,
		&grant.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := grant.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal grant id")
	}
	if err := grant.NoteID.UnmarshalBinary(noteBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal note id")
	}
	if err := grant.SharedByID.UnmarshalBinary(byBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal sharer id")
	}
	if err := grant.SharedWithID.UnmarshalBinary(withBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal grantee id")
	}

	return &grant, nil
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
