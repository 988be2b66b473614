package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/notehub/internal/database"
	apperrors "github.com/allisson/notehub/internal/errors"
	"github.com/allisson/notehub/internal/task/domain"
)

// MySQLTaskRepository handles task persistence for MySQL.
// Uses BINARY(16) for UUID storage.
type MySQLTaskRepository struct {
	db *sql.DB
}

// NewMySQLTaskRepository creates a new MySQLTaskRepository.
func NewMySQLTaskRepository(db *sql.DB) *MySQLTaskRepository {
	return &MySQLTaskRepository{db: db}
}

// Create inserts a new task.
func (r *MySQLTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := task.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal task id")
	}
	ownerBytes, err := task.OwnerID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal owner id")
	}

	query := `INSERT INTO tasks (id, title, description, completed, priority, due_date, owner_id, created_at, updated_at, completed_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		idBytes,
		task.Title,
		task.Description,
		task.Completed,
		task.Priority,
		task.DueDate,
		ownerBytes,
		task.CreatedAt,
		task.UpdatedAt,
		task.CompletedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create task")
	}
	return nil
}

// GetByID retrieves a task scoped to its owner. Tasks belonging to someone
// else surface as not found.
func (r *MySQLTaskRepository) GetByID(ctx context.Context, taskID, ownerID uuid.UUID) (*domain.Task, error) {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := taskID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal task id")
	}
	ownerBytes, err := ownerID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal owner id")
	}

	query := `SELECT id, title, description, completed, priority, due_date, owner_id, created_at, updated_at, completed_at
			  FROM tasks WHERE id = ? AND owner_id = ?`

	task, err := scanMySQLTask(querier.QueryRowContext(ctx, query, idBytes, ownerBytes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get task")
	}

	return task, nil
}

// Update modifies a task, scoped to its owner.
func (r *MySQLTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := task.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal task id")
	}
	ownerBytes, err := task.OwnerID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal owner id")
	}

	query := `UPDATE tasks
			  SET title = ?, description = ?, completed = ?, priority = ?, due_date = ?, updated_at = ?, completed_at = ?
			  WHERE id = ? AND owner_id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.Completed,
		task.Priority,
		task.DueDate,
		task.UpdatedAt,
		task.CompletedAt,
		idBytes,
		ownerBytes,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update task")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return domain.ErrTaskNotFound
	}

	return nil
}

// Delete removes a task, scoped to its owner.
func (r *MySQLTaskRepository) Delete(ctx context.Context, taskID, ownerID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := taskID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal task id")
	}
	ownerBytes, err := ownerID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal owner id")
	}

	result, err := querier.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND owner_id = ?`, idBytes, ownerBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete task")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return domain.ErrTaskNotFound
	}

	return nil
}

// List retrieves the owner's tasks: open before completed, then by priority
// high to low, then nearest due date with undated tasks last, then newest
// first.
func (r *MySQLTaskRepository) List(ctx context.Context, q ListQuery) ([]*domain.Task, error) {
	querier := database.GetTx(ctx, r.db)

	ownerBytes, err := q.OwnerID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal owner id")
	}

	query := `SELECT id, title, description, completed, priority, due_date, owner_id, created_at, updated_at, completed_at
			  FROM tasks WHERE owner_id = ?`

	switch q.Status {
	case StatusActive:
		query += ` AND completed = FALSE`
	case StatusCompleted:
		query += ` AND completed = TRUE`
	}

	// MySQL has no NULLS LAST; sort the null flag first instead
	query += ` ORDER BY completed ASC,
			   CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END ASC,
			   due_date IS NULL ASC, due_date ASC,
			   created_at DESC
			   LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, ownerBytes, q.Limit, q.Offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list tasks")
	}
	defer func() {
		_ = rows.Close()
	}()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanMySQLTask(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan task row")
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating task rows")
	}

	return tasks, nil
}

// Counts aggregates the owner's task totals.
func (r *MySQLTaskRepository) Counts(ctx context.Context, ownerID uuid.UUID) (*domain.Counts, error) {
	querier := database.GetTx(ctx, r.db)

	ownerBytes, err := ownerID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal owner id")
	}

	query := `SELECT COUNT(*),
			  COALESCE(SUM(completed = FALSE), 0),
			  COALESCE(SUM(completed = TRUE), 0)
			  FROM tasks WHERE owner_id = ?`

	var counts domain.Counts
	err = querier.QueryRowContext(ctx, query, ownerBytes).Scan(&counts.Total, &counts.Active, &counts.Completed)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to count tasks")
	}
	return &counts, nil
}

// CountByOwner returns the number of tasks owned by the identity.
func (r *MySQLTaskRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	ownerBytes, err := ownerID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal owner id")
	}

	var count int64
	err = querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE owner_id = ?`, ownerBytes).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count tasks")
	}
	return count, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMySQLTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var idBytes, ownerBytes []byte

	err := row.Scan(
		&idBytes,
		&task.Title,
		&task.Description,
		&task.Completed,
		&task.Priority,
		&task.DueDate,
		&ownerBytes,
		&task.CreatedAt,
		&task.UpdatedAt,
		&task.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := task.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal task id")
	}
	if err := task.OwnerID.UnmarshalBinary(ownerBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal owner id")
	}

	return &task, nil
}
