// Package usecase implements the task business logic. Tasks are strictly
// private: every operation is scoped to the owner.
package usecase

import (
	"context"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	"github.com/allisson/notehub/internal/task/domain"
	"github.com/allisson/notehub/internal/task/repository"
	appValidation "github.com/allisson/notehub/internal/validation"
)

// CreateTaskInput contains the input data for task creation.
type CreateTaskInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    domain.Priority `json:"priority"`
	DueDate     *time.Time      `json:"due_date"`
}

// UpdateTaskInput contains the mutable task fields.
type UpdateTaskInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    domain.Priority `json:"priority"`
	DueDate     *time.Time      `json:"due_date"`
}

// ListTasksInput selects and paginates a listing of the owner's tasks.
type ListTasksInput struct {
	Status repository.StatusFilter
	Offset int
	Limit  int
}

// UseCase defines the interface for task business logic operations.
type UseCase interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateTaskInput) (*domain.Task, error)
	Get(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)
	Update(ctx context.Context, ownerID, taskID uuid.UUID, input UpdateTaskInput) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, taskID uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, input ListTasksInput) ([]*domain.Task, error)
	ToggleComplete(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)
	Counts(ctx context.Context, ownerID uuid.UUID) (*domain.Counts, error)
}

// TaskRepository interface defines task repository operations.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, taskID, ownerID uuid.UUID) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, taskID, ownerID uuid.UUID) error
	List(ctx context.Context, q repository.ListQuery) ([]*domain.Task, error)
	Counts(ctx context.Context, ownerID uuid.UUID) (*domain.Counts, error)
}

// TaskUseCase handles task-related business logic.
type TaskUseCase struct {
	taskRepo TaskRepository
}

// NewTaskUseCase creates a new TaskUseCase.
func NewTaskUseCase(taskRepo TaskRepository) *TaskUseCase {
	return &TaskUseCase{taskRepo: taskRepo}
}

func validateTaskFields(title string, priority domain.Priority) error {
	input := struct {
		Title string
	}{Title: title}

	err := validation.ValidateStruct(&input,
		validation.Field(&input.Title,
			validation.Required.Error("title is required"),
			appValidation.NotBlank,
			validation.Length(1, 200).Error("title must be at most 200 characters"),
		),
	)
	if err := appValidation.WrapValidationError(err); err != nil {
		return err
	}

	if !priority.IsValid() {
		return domain.ErrInvalidPriority
	}
	return nil
}

// Create adds a new task for the owner. A missing priority defaults to
// medium.
func (uc *TaskUseCase) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	input CreateTaskInput,
) (*domain.Task, error) {
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	if err := validateTaskFields(input.Title, priority); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &domain.Task{
		ID:          uuid.Must(uuid.NewV7()),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Priority:    priority,
		DueDate:     input.DueDate,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// Get retrieves one of the owner's tasks.
func (uc *TaskUseCase) Get(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	return uc.taskRepo.GetByID(ctx, taskID, ownerID)
}

// Update modifies one of the owner's tasks.
func (uc *TaskUseCase) Update(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	input UpdateTaskInput,
) (*domain.Task, error) {
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	if err := validateTaskFields(input.Title, priority); err != nil {
		return nil, err
	}

	task, err := uc.taskRepo.GetByID(ctx, taskID, ownerID)
	if err != nil {
		return nil, err
	}

	task.Title = strings.TrimSpace(input.Title)
	task.Description = strings.TrimSpace(input.Description)
	task.Priority = priority
	task.DueDate = input.DueDate
	task.UpdatedAt = time.Now().UTC()

	if err := uc.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// Delete removes one of the owner's tasks.
func (uc *TaskUseCase) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	return uc.taskRepo.Delete(ctx, taskID, ownerID)
}

// List retrieves the owner's tasks filtered by status.
func (uc *TaskUseCase) List(
	ctx context.Context,
	ownerID uuid.UUID,
	input ListTasksInput,
) ([]*domain.Task, error) {
	status := input.Status
	if status == "" {
		status = repository.StatusAll
	}
	if !status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}

	return uc.taskRepo.List(ctx, repository.ListQuery{
		OwnerID: ownerID,
		Status:  status,
		Offset:  input.Offset,
		Limit:   input.Limit,
	})
}

// ToggleComplete flips the completed flag, stamping or clearing the
// completion instant.
func (uc *TaskUseCase) ToggleComplete(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := uc.taskRepo.GetByID(ctx, taskID, ownerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task.Completed = !task.Completed
	task.UpdatedAt = now
	if task.Completed {
		task.CompletedAt = &now
	} else {
		task.CompletedAt = nil
	}

	if err := uc.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// Counts aggregates the owner's task totals.
func (uc *TaskUseCase) Counts(ctx context.Context, ownerID uuid.UUID) (*domain.Counts, error) {
	return uc.taskRepo.Counts(ctx, ownerID)
}
