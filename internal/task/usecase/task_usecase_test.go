package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/notehub/internal/errors"
	"github.com/allisson/notehub/internal/task/domain"
	"github.com/allisson/notehub/internal/task/repository"
)

// MockTaskRepository is a mock implementation of TaskRepository.
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, taskID, ownerID uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, taskID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, taskID, ownerID uuid.UUID) error {
	args := m.Called(ctx, taskID, ownerID)
	return args.Error(0)
}

func (m *MockTaskRepository) List(ctx context.Context, q repository.ListQuery) ([]*domain.Task, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) Counts(ctx context.Context, ownerID uuid.UUID) (*domain.Counts, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Counts), args.Error(1)
}

func TestTaskUseCase_Create(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())

	t.Run("Success_DefaultsToMediumPriority", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		uc := NewTaskUseCase(taskRepo)

		taskRepo.On("Create", ctx, mock.MatchedBy(func(task *domain.Task) bool {
			return task.Title == "water plants" &&
				task.Priority == domain.PriorityMedium &&
				task.OwnerID == ownerID
		})).Return(nil)

		task, err := uc.Create(ctx, ownerID, CreateTaskInput{Title: "  water plants  "})
		require.NoError(t, err)
		assert.Equal(t, "water plants", task.Title)
		assert.False(t, task.Completed)

		taskRepo.AssertExpectations(t)
	})

	t.Run("Failure_InvalidPriority", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		uc := NewTaskUseCase(taskRepo)

		task, err := uc.Create(ctx, ownerID, CreateTaskInput{
			Title:    "water plants",
			Priority: domain.Priority("urgent"),
		})
		assert.Nil(t, task)
		assert.ErrorIs(t, err, domain.ErrInvalidPriority)

		taskRepo.AssertNotCalled(t, "Create")
	})

	t.Run("Failure_BlankTitle", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		uc := NewTaskUseCase(taskRepo)

		task, err := uc.Create(ctx, ownerID, CreateTaskInput{Title: "   "})
		assert.Nil(t, task)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	})
}

func TestTaskUseCase_Update(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())
	taskID := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		uc := NewTaskUseCase(taskRepo)

		existing := &domain.Task{ID: taskID, Title: "old", Priority: domain.PriorityLow, OwnerID: ownerID}
		due := time.Now().UTC().Add(48 * time.Hour)

		taskRepo.On("GetByID", ctx, taskID, ownerID).Return(existing, nil)
		taskRepo.On("Update", ctx, mock.MatchedBy(func(task *domain.Task) bool {
			return task.Title == "new" &&
				task.Priority == domain.PriorityHigh &&
				task.DueDate != nil && task.DueDate.Equal(due)
		})).Return(nil)

		task, err := uc.Update(ctx, ownerID, taskID, UpdateTaskInput{
			Title:    "new",
			Priority: domain.PriorityHigh,
			DueDate:  &due,
		})
		require.NoError(t, err)
		assert.Equal(t, "new", task.Title)
	})

	t.Run("Failure_NotOwned", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		uc := NewTaskUseCase(taskRepo)

		taskRepo.On("GetByID", ctx, taskID, ownerID).Return(nil, domain.ErrTaskNotFound)

		task, err := uc.Update(ctx, ownerID, taskID, UpdateTaskInput{Title: "new"})
		assert.Nil(t, task)
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})
}

func TestTaskUseCase_ToggleComplete(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())
	taskID := uuid.Must(uuid.NewV7())

	t.Run("Success_CompletingStampsInstant", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		uc := NewTaskUseCase(taskRepo)

		existing := &domain.Task{ID: taskID, Title: "open", Priority: domain.PriorityLow, OwnerID: ownerID}
		taskRepo.On("GetByID", ctx, taskID, ownerID).Return(existing, nil)
		taskRepo.On("Update", ctx, mock.Anything).Return(nil)

		task, err := uc.ToggleComplete(ctx, ownerID, taskID)
		require.NoError(t, err)
		assert.True(t, task.Completed)
		assert.NotNil(t, task.CompletedAt)
	})

	t.Run("Success_ReopeningClearsInstant", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		uc := NewTaskUseCase(taskRepo)

		completedAt := time.Now().UTC()
		existing := &domain.Task{
			ID:          taskID,
			Title:       "done",
			Priority:    domain.PriorityLow,
			OwnerID:     ownerID,
			Completed:   true,
			CompletedAt: &completedAt,
		}
		taskRepo.On("GetByID", ctx, taskID, ownerID).Return(existing, nil)
		taskRepo.On("Update", ctx, mock.Anything).Return(nil)

		task, err := uc.ToggleComplete(ctx, ownerID, taskID)
		require.NoError(t, err)
		assert.False(t, task.Completed)
		assert.Nil(t, task.CompletedAt)
	})
}

func TestTaskUseCase_List(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())

	t.Run("Success_DefaultsToAll", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		uc := NewTaskUseCase(taskRepo)

		taskRepo.On("List", ctx, repository.ListQuery{
			OwnerID: ownerID,
			Status:  repository.StatusAll,
			Limit:   10,
		}).Return([]*domain.Task{}, nil)

		tasks, err := uc.List(ctx, ownerID, ListTasksInput{Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, tasks)

		taskRepo.AssertExpectations(t)
	})

	t.Run("Failure_InvalidStatus", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		uc := NewTaskUseCase(taskRepo)

		tasks, err := uc.List(ctx, ownerID, ListTasksInput{Status: "done"})
		assert.Nil(t, tasks)
		assert.Error(t, err)

		taskRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})
}

func TestTaskUseCase_Counts(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())

	taskRepo := new(MockTaskRepository)
	uc := NewTaskUseCase(taskRepo)

	taskRepo.On("Counts", ctx, ownerID).Return(&domain.Counts{Total: 4, Active: 1, Completed: 3}, nil)

	counts, err := uc.Counts(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), counts.Total)
	assert.Equal(t, int64(1), counts.Active)
	assert.Equal(t, int64(3), counts.Completed)
}
