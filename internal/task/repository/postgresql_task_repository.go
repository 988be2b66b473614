// Package repository provides data persistence implementations for tasks.
//
// Provides PostgreSQL and MySQL implementations with transaction support via
// database.GetTx(). PostgreSQL uses native UUID types, MySQL uses BINARY(16).
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

// StatusFilter selects which slice of the owner's tasks a listing shows.
type StatusFilter string

// Status filters.
const (
	StatusAll       StatusFilter = "all"
	StatusActive    StatusFilter = "active"
	StatusCompleted StatusFilter = "completed"
)

// IsValid reports whether the filter is one of the supported statuses.
func (s StatusFilter) IsValid() bool {
	switch s {
	case StatusAll, StatusActive, StatusCompleted:
		return true
	}
	return false
}

// ListQuery describes a task listing: whose tasks, which status slice, and
// pagination.
type ListQuery struct {
	OwnerID uuid.UUID
	Status  StatusFilter
	Offset  int
	Limit   int
}

// PostgreSQLTaskRepository handles task persistence for PostgreSQL.
type PostgreSQLTaskRepository struct {
	db *sql.DB
}

// NewPostgreSQLTaskRepository creates a new PostgreSQLTaskRepository.
func NewPostgreSQLTaskRepository(db *sql.DB) *PostgreSQLTaskRepository {
	return &PostgreSQLTaskRepository{db: db}
}

// Create inserts a new task.
func (r *PostgreSQLTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO tasks (id, title, description, completed, priority, due_date, owner_id, created_at, updated_at, completed_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := querier.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Description,
		task.Completed,
		task.Priority,
		task.DueDate,
		task.OwnerID,
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
func (r *PostgreSQLTaskRepository) GetByID(ctx context.Context, taskID, ownerID uuid.UUID) (*domain.Task, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, title, description, completed, priority, due_date, owner_id, created_at, updated_at, completed_at
			  FROM tasks WHERE id = $1 AND owner_id = $2`

	var task domain.Task

	err := querier.QueryRowContext(ctx, query, taskID, ownerID).Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Completed,
		&task.Priority,
		&task.DueDate,
		&task.OwnerID,
		&task.CreatedAt,
		&task.UpdatedAt,
		&task.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get task")
	}

	return &task, nil
}

// Update modifies a task, scoped to its owner.
func (r *PostgreSQLTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE tasks
			  SET title = $1, description = $2, completed = $3, priority = $4, due_date = $5, updated_at = $6, completed_at = $7
			  WHERE id = $8 AND owner_id = $9`

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
		task.ID,
		task.OwnerID,
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
func (r *PostgreSQLTaskRepository) Delete(ctx context.Context, taskID, ownerID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, taskID, ownerID)
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
func (r *PostgreSQLTaskRepository) List(ctx context.Context, q ListQuery) ([]*domain.Task, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, title, description, completed, priority, due_date, owner_id, created_at, updated_at, completed_at
			  FROM tasks WHERE owner_id = $1`

	switch q.Status {
	case StatusActive:
		query += ` AND completed = FALSE`
	case StatusCompleted:
		query += ` AND completed = TRUE`
	}

	query += ` ORDER BY completed ASC,
			   CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END ASC,
			   due_date ASC NULLS LAST,
			   created_at DESC
			   LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, q.OwnerID, q.Limit, q.Offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list tasks")
	}
	defer func() {
		_ = rows.Close()
	}()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		var task domain.Task
		err := rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&task.Completed,
			&task.Priority,
			&task.DueDate,
			&task.OwnerID,
			&task.CreatedAt,
			&task.UpdatedAt,
			&task.CompletedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan task row")
		}
		tasks = append(tasks, &task)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating task rows")
	}

	return tasks, nil
}

// Counts aggregates the owner's task totals.
func (r *PostgreSQLTaskRepository) Counts(ctx context.Context, ownerID uuid.UUID) (*domain.Counts, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT COUNT(*),
			  COUNT(*) FILTER (WHERE completed = FALSE),
			  COUNT(*) FILTER (WHERE completed = TRUE)
			  FROM tasks WHERE owner_id = $1`

	var counts domain.Counts
	err := querier.QueryRowContext(ctx, query, ownerID).Scan(&counts.Total, &counts.Active, &counts.Completed)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to count tasks")
	}
	return &counts, nil
}

// CountByOwner returns the number of tasks owned by the identity.
func (r *PostgreSQLTaskRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE owner_id = $1`, ownerID).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count tasks")
	}
	return count, nil
}
