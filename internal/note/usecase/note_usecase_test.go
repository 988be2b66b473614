package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/notehub/internal/errors"
	identityDomain "github.com/allisson/notehub/internal/identity/domain"
	"github.com/allisson/notehub/internal/note/domain"
	"github.com/allisson/notehub/internal/note/repository"
)

// MockTxManager is a mock implementation of database.TxManager.
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) == nil {
		return fn(ctx)
	}
	return args.Error(0)
}

// MockNoteRepository is a mock implementation of NoteRepository.
type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) Create(ctx context.Context, note *domain.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNoteRepository) GetByID(ctx context.Context, noteID uuid.UUID) (*domain.Note, error) {
	args := m.Called(ctx, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

func (m *MockNoteRepository) Update(ctx context.Context, note *domain.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNoteRepository) Delete(ctx context.Context, noteID uuid.UUID) error {
	args := m.Called(ctx, noteID)
	return args.Error(0)
}

func (m *MockNoteRepository) List(ctx context.Context, q repository.ListQuery) ([]*domain.Note, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Note), args.Error(1)
}

func (m *MockNoteRepository) CreateGrant(ctx context.Context, grant *domain.ShareGrant) error {
	args := m.Called(ctx, grant)
	return args.Error(0)
}

func (m *MockNoteRepository) GetGrant(ctx context.Context, noteID, granteeID uuid.UUID) (*domain.ShareGrant, error) {
	args := m.Called(ctx, noteID, granteeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShareGrant), args.Error(1)
}

func (m *MockNoteRepository) DeleteGrant(ctx context.Context, noteID, granteeID uuid.UUID) error {
	args := m.Called(ctx, noteID, granteeID)
	return args.Error(0)
}

func (m *MockNoteRepository) ListGrantsByNote(ctx context.Context, noteID uuid.UUID) ([]*domain.ShareGrant, error) {
	args := m.Called(ctx, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ShareGrant), args.Error(1)
}

// MockIdentityResolver is a mock implementation of IdentityResolver.
type MockIdentityResolver struct {
	mock.Mock
}

func (m *MockIdentityResolver) GetByHandle(ctx context.Context, handle string) (*identityDomain.Identity, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Identity), args.Error(1)
}

type noteMocks struct {
	txManager  *MockTxManager
	noteRepo   *MockNoteRepository
	identities *MockIdentityResolver
}

func newNoteUseCase() (*NoteUseCase, noteMocks) {
	mocks := noteMocks{
		txManager:  new(MockTxManager),
		noteRepo:   new(MockNoteRepository),
		identities: new(MockIdentityResolver),
	}
	uc := NewNoteUseCase(mocks.txManager, mocks.noteRepo, mocks.identities)
	return uc, mocks
}

func TestNoteUseCase_Create(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		uc, mocks := newNoteUseCase()

		mocks.txManager.On("WithTx", ctx, mock.Anything).Return(nil)
		mocks.noteRepo.On("Create", ctx, mock.MatchedBy(func(note *domain.Note) bool {
			return note.Title == "groceries" &&
				note.OwnerID == ownerID &&
				len(note.Tags) == 1 && note.Tags[0] == "errands"
		})).Return(nil)

		note, err := uc.Create(ctx, ownerID, CreateNoteInput{
			Title: "  groceries  ",
			Body:  "milk, eggs",
			Tags:  []string{"Errands", "errands"},
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, note.ID)
		assert.Equal(t, "groceries", note.Title)

		mocks.noteRepo.AssertExpectations(t)
	})

	t.Run("Failure_BlankTitle", func(t *testing.T) {
		uc, mocks := newNoteUseCase()

		note, err := uc.Create(ctx, ownerID, CreateNoteInput{Title: "   "})
		assert.Nil(t, note)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))

		mocks.noteRepo.AssertNotCalled(t, "Create")
	})
}

func TestNoteUseCase_Get(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())
	granteeID := uuid.Must(uuid.NewV7())
	strangerID := uuid.Must(uuid.NewV7())
	noteID := uuid.Must(uuid.NewV7())

	note := &domain.Note{ID: noteID, Title: "plan", OwnerID: ownerID}

	t.Run("Success_Owner", func(t *testing.T) {
		uc, mocks := newNoteUseCase()

		mocks.noteRepo.On("GetByID", ctx, noteID).Return(note, nil)

		resolved, err := uc.Get(ctx, ownerID, noteID)
		require.NoError(t, err)
		assert.Equal(t, domain.AccessEdit, resolved.Access)

		// Owner access never needs a grant lookup
		mocks.noteRepo.AssertNotCalled(t, "GetGrant", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Success_ViewGrantee", func(t *testing.T) {
		uc, mocks := newNoteUseCase()

		grant := &domain.ShareGrant{NoteID: noteID, SharedWithID: granteeID, CanEdit: false}
		mocks.noteRepo.On("GetByID", ctx, noteID).Return(note, nil)
		mocks.noteRepo.On("GetGrant", ctx, noteID, granteeID).Return(grant, nil)

		resolved, err := uc.Get(ctx, granteeID, noteID)
		require.NoError(t, err)
		assert.Equal(t, domain.AccessView, resolved.Access)
	})

	t.Run("Failure_StrangerSeesNotFound", func(t *testing.T) {
		uc, mocks := newNoteUseCase()

		mocks.noteRepo.On("GetByID", ctx, noteID).Return(note, nil)
		mocks.noteRepo.On("GetGrant", ctx, noteID, strangerID).Return(nil, domain.ErrGrantNotFound)

		resolved, err := uc.Get(ctx, strangerID, noteID)
		assert.Nil(t, resolved)
		assert.ErrorIs(t, err, domain.ErrNoteNotFound)
	})
}

func TestNoteUseCase_Update(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())
	granteeID := uuid.Must(uuid.NewV7())
	noteID := uuid.Must(uuid.NewV7())

	t.Run("Success_EditGrantee", func(t *testing.T) {
		uc, mocks := newNoteUseCase()

		note := &domain.Note{ID: noteID, Title: "old", OwnerID: ownerID}
		grant := &domain.ShareGrant{NoteID: noteID, SharedWithID: granteeID, CanEdit: true}

		mocks.noteRepo.On("GetByID", ctx, noteID).Return(note, nil)
		mocks.noteRepo.On("GetGrant", ctx, noteID, granteeID).Return(grant, nil)
		mocks.txManager.On("WithTx", ctx, mock.Anything).Return(nil)
		mocks.noteRepo.On("Update", ctx, mock.MatchedBy(func(n *domain.Note) bool {
			return n.Title == "new title"
		})).Return(nil)

		updated, err := uc.Update(ctx, granteeID, noteID, UpdateNoteInput{Title: "new title"})
		require.NoError(t, err)
		assert.Equal(t, "new title", updated.Title)
	})

	t.Run("Failure_ViewGranteeCannotEdit", func(t *testing.T) {
		uc, mocks := newNoteUseCase()

		note := &domain.Note{ID: noteID, Title: "old", OwnerID: ownerID}
		grant := &domain.ShareGrant{NoteID: noteID, SharedWithID: granteeID, CanEdit: false}

		mocks.noteRepo.On("GetByID", ctx, noteID).Return(note, nil)
		mocks.noteRepo.On("GetGrant", ctx, noteID, granteeID).Return(grant, nil)

		updated, err := uc.Update(ctx, granteeID, noteID, UpdateNoteInput{Title: "new title"})
		assert.Nil(t, updated)
		assert.ErrorIs(t, err, domain.ErrNoteAccessDenied)

		mocks.noteRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestNoteUseCase_Delete(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())
	granteeID := uuid.Must(uuid.NewV7())
	noteID := uuid.Must(uuid.NewV7())

	note := &domain.Note{ID: noteID, OwnerID: ownerID}

	t.Run("Success_Owner", func(t *testing.T) {
		uc, mocks := newNoteUseCase()

		mocks.noteRepo.On("GetByID", ctx, noteID).Return(note, nil)
		mocks.noteRepo.On("Delete", ctx, noteID).Return(nil)

		err := uc.Delete(ctx, ownerID, noteID)
		require.NoError(t, err)
	})

	t.Run("Failure_EditGranteeCannotDelete", func(t *testing.T) {
		uc, mocks := newNoteUseCase()

		grant := &domain.ShareGrant{NoteID: noteID, SharedWithID: granteeID, CanEdit: true}
		mocks.noteRepo.On("GetByID", ctx, noteID).Return(note, nil)
		mocks.noteRepo.On("GetGrant", ctx, noteID, granteeID).Return(grant, nil)

		err := uc.Delete(ctx, granteeID, noteID)
		assert.ErrorIs(t, err, domain.ErrNoteAccessDenied)

		mocks.noteRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestNoteUseCase_List(t *testing.T) {
	ctx := context.Background()
	identityID := uuid.Must(uuid.NewV7())

	t.Run("Success_NormalizesFilters", func(t *testing.T) {
		uc, mocks := newNoteUseCase()

		mocks.noteRepo.On("List", ctx, repository.ListQuery{
			IdentityID: identityID,
			View:       domain.ViewAll,
			Search:     "milk",
			Tag:        "errands",
			Limit:      10,
		}).Return([]*domain.Note{}, nil)

		notes, err := uc.List(ctx, identityID, ListNotesInput{
			Search: "  milk  ",
			Tag:    "Errands!",
			Limit:  10,
		})
		require.NoError(t, err)
		assert.Empty(t, notes)

		mocks.noteRepo.AssertExpectations(t)
	})

	t.Run("Failure_InvalidView", func(t *testing.T) {
		uc, mocks := newNoteUseCase()

		notes, err := uc.List(ctx, identityID, ListNotesInput{View: "bogus"})
		assert.Nil(t, notes)
		assert.Error(t, err)

		mocks.noteRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})
}

func TestNoteUseCase_ToggleFlags(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())
	granteeID := uuid.Must(uuid.NewV7())
	noteID := uuid.Must(uuid.NewV7())

	t.Run("Success_PinFlips", func(t *testing.T) {
		uc, mocks := newNoteUseCase()

		note := &domain.Note{ID: noteID, OwnerID: ownerID, Pinned: false}
		mocks.noteRepo.On("GetByID", ctx, noteID).Return(note, nil)
		mocks.txManager.On("WithTx", ctx, mock.Anything).Return(nil)
		mocks.noteRepo.On("Update", ctx, mock.Anything).Return(nil)

		updated, err := uc.TogglePin(ctx, ownerID, noteID)
		require.NoError(t, err)
		assert.True(t, updated.Pinned)
	})

	t.Run("Failure_GranteeCannotTogglePin", func(t *testing.T) {
		uc, mocks := newNoteUseCase()

		note := &domain.Note{ID: noteID, OwnerID: ownerID}
		grant := &domain.ShareGrant{NoteID: noteID, SharedWithID: granteeID, CanEdit: true}
		mocks.noteRepo.On("GetByID", ctx, noteID).Return(note, nil)
		mocks.noteRepo.On("GetGrant", ctx, noteID, granteeID).Return(grant, nil)

		updated, err := uc.TogglePin(ctx, granteeID, noteID)
		assert.Nil(t, updated)
		assert.ErrorIs(t, err, domain.ErrNoteAccessDenied)
	})

	t.Run("Failure_GranteeCannotToggleArchive", func(t *testing.T) {
		uc, mocks := newNoteUseCase()

		note := &domain.Note{ID: noteID, OwnerID: ownerID}
		grant := &domain.ShareGrant{NoteID: noteID, SharedWithID: granteeID, CanEdit: true}
		mocks.noteRepo.On("GetByID", ctx, noteID).Return(note, nil)
		mocks.noteRepo.On("GetGrant", ctx, noteID, granteeID).Return(grant, nil)

		updated, err := uc.ToggleArchive(ctx, granteeID, noteID)
		assert.Nil(t, updated)
		assert.ErrorIs(t, err, domain.ErrNoteAccessDenied)
	})

	t.Run("Success_ViewGranteeCanToggleFavorite", func(t *testing.T) {
		uc, mocks := newNoteUseCase()

		note := &domain.Note{ID: noteID, OwnerID: ownerID, Favorite: false}
		grant := &domain.ShareGrant{NoteID: noteID, SharedWithID: granteeID, CanEdit: false}
		mocks.noteRepo.On("GetByID", ctx, noteID).Return(note, nil)
		mocks.noteRepo.On("GetGrant", ctx, noteID, granteeID).Return(grant, nil)
		mocks.txManager.On("WithTx", ctx, mock.Anything).Return(nil)
		mocks.noteRepo.On("Update", ctx, mock.Anything).Return(nil)

		updated, err := uc.ToggleFavorite(ctx, granteeID, noteID)
		require.NoError(t, err)
		assert.True(t, updated.Favorite)
	})

	t.Run("Failure_StrangerCannotToggleFavorite", func(t *testing.T) {
		uc, mocks := newNoteUseCase()

		strangerID := uuid.Must(uuid.NewV7())
		note := &domain.Note{ID: noteID, OwnerID: ownerID}
		mocks.noteRepo.On("GetByID", ctx, noteID).Return(note, nil)
		mocks.noteRepo.On("GetGrant", ctx, noteID, strangerID).Return(nil, domain.ErrGrantNotFound)

		updated, err := uc.ToggleFavorite(ctx, strangerID, noteID)
		assert.Nil(t, updated)
		assert.ErrorIs(t, err, domain.ErrNoteNotFound)
	})
}

func TestNoteUseCase_Share(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())
	granteeID := uuid.Must(uuid.NewV7())
	noteID := uuid.Must(uuid.NewV7())

	note := &domain.Note{ID: noteID, OwnerID: ownerID}

	t.Run("Success", func(t *testing.T) {
		uc, mocks := newNoteUseCase()

		grantee := &identityDomain.Identity{ID: granteeID, Handle: "frodo"}
		mocks.noteRepo.On("GetByID", ctx, noteID).Return(note, nil)
		mocks.identities.On("GetByHandle", ctx, "frodo").Return(grantee, nil)
		mocks.noteRepo.On("CreateGrant", ctx, mock.MatchedBy(func(g *domain.ShareGrant) bool {
			return g.NoteID == noteID &&
				g.SharedByID == ownerID &&
				g.SharedWithID == granteeID &&
				g.CanEdit
		})).Return(nil)

		grant, err := uc.Share(ctx, ownerID, noteID, ShareInput{Handle: "frodo", CanEdit: true})
		require.NoError(t, err)
		assert.Equal(t, granteeID, grant.SharedWithID)
	})

	t.Run("Failure_SelfShare", func(t *testing.T) {
		uc, mocks := newNoteUseCase()

		owner := &identityDomain.Identity{ID: ownerID, Handle: "sam"}
		mocks.noteRepo.On("GetByID", ctx, noteID).Return(note, nil)
		mocks.identities.On("GetByHandle", ctx, "sam").Return(owner, nil)

		grant, err := uc.Share(ctx, ownerID, noteID, ShareInput{Handle: "sam"})
		assert.Nil(t, grant)
		assert.ErrorIs(t, err, domain.ErrSelfShare)

		mocks.noteRepo.AssertNotCalled(t, "CreateGrant", mock.Anything, mock.Anything)
	})

	t.Run("Failure_GranteeCannotShare", func(t *testing.T) {
		uc, mocks := newNoteUseCase()

		grant := &domain.ShareGrant{NoteID: noteID, SharedWithID: granteeID, CanEdit: true}
		mocks.noteRepo.On("GetByID", ctx, noteID).Return(note, nil)
		mocks.noteRepo.On("GetGrant", ctx, noteID, granteeID).Return(grant, nil)

		created, err := uc.Share(ctx, granteeID, noteID, ShareInput{Handle: "merry"})
		assert.Nil(t, created)
		assert.ErrorIs(t, err, domain.ErrNoteAccessDenied)
	})

	t.Run("Failure_UnknownGrantee", func(t *testing.T) {
		uc, mocks := newNoteUseCase()

		mocks.noteRepo.On("GetByID", ctx, noteID).Return(note, nil)
		mocks.identities.On("GetByHandle", ctx, "ghost").
			Return(nil, identityDomain.ErrIdentityNotFound)

		grant, err := uc.Share(ctx, ownerID, noteID, ShareInput{Handle: "ghost"})
		assert.Nil(t, grant)
		assert.ErrorIs(t, err, identityDomain.ErrIdentityNotFound)
	})
}

func TestNoteUseCase_Unshare(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())
	granteeID := uuid.Must(uuid.NewV7())
	noteID := uuid.Must(uuid.NewV7())

	note := &domain.Note{ID: noteID, OwnerID: ownerID}

	t.Run("Success", func(t *testing.T) {
		uc, mocks := newNoteUseCase()

		mocks.noteRepo.On("GetByID", ctx, noteID).Return(note, nil)
		mocks.noteRepo.On("DeleteGrant", ctx, noteID, granteeID).Return(nil)

		err := uc.Unshare(ctx, ownerID, noteID, granteeID)
		require.NoError(t, err)
	})

	t.Run("Failure_NoGrant", func(t *testing.T) {
		uc, mocks := newNoteUseCase()

		mocks.noteRepo.On("GetByID", ctx, noteID).Return(note, nil)
		mocks.noteRepo.On("DeleteGrant", ctx, noteID, granteeID).Return(domain.ErrGrantNotFound)

		err := uc.Unshare(ctx, ownerID, noteID, granteeID)
		assert.ErrorIs(t, err, domain.ErrGrantNotFound)
	})
}

func TestNoteUseCase_ListGrants(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())
	granteeID := uuid.Must(uuid.NewV7())
	noteID := uuid.Must(uuid.NewV7())

	note := &domain.Note{ID: noteID, OwnerID: ownerID}

	t.Run("Success", func(t *testing.T) {
		uc, mocks := newNoteUseCase()

		grants := []*domain.ShareGrant{{NoteID: noteID, SharedWithID: granteeID}}
		mocks.noteRepo.On("GetByID", ctx, noteID).Return(note, nil)
		mocks.noteRepo.On("ListGrantsByNote", ctx, noteID).Return(grants, nil)

		result, err := uc.ListGrants(ctx, ownerID, noteID)
		require.NoError(t, err)
		assert.Len(t, result, 1)
	})

	t.Run("Failure_GranteeCannotList", func(t *testing.T) {
		uc, mocks := newNoteUseCase()

		grant := &domain.ShareGrant{NoteID: noteID, SharedWithID: granteeID, CanEdit: false}
		mocks.noteRepo.On("GetByID", ctx, noteID).Return(note, nil)
		mocks.noteRepo.On("GetGrant", ctx, noteID, granteeID).Return(grant, nil)

		result, err := uc.ListGrants(ctx, granteeID, noteID)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrNoteAccessDenied)
	})
}
