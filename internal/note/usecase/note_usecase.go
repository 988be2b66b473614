// Package usecase implements the note business logic: authoring, listing,
// flags, tags and sharing, every operation gated by the access resolver.
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	"github.com/allisson/notehub/internal/database"
	identityDomain "github.com/allisson/notehub/internal/identity/domain"
	"github.com/allisson/notehub/internal/note/domain"
	"github.com/allisson/notehub/internal/note/repository"
	appValidation "github.com/allisson/notehub/internal/validation"
)

// CreateNoteInput contains the input data for note creation.
type CreateNoteInput struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
}

// UpdateNoteInput contains the mutable note fields.
type UpdateNoteInput struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
}

// ListNotesInput selects and paginates a listing of the caller's accessible
// notes.
type ListNotesInput struct {
	View   domain.ViewFilter
	Search string
	Tag    string
	Offset int
	Limit  int
}

// ShareInput contains the input data for sharing a note.
type ShareInput struct {
	Handle  string `json:"handle"`
	CanEdit bool   `json:"can_edit"`
}

// NoteWithAccess pairs a note with the capability the caller holds over it.
type NoteWithAccess struct {
	Note   *domain.Note
	Access domain.AccessLevel
}

// UseCase defines the interface for note business logic operations.
type UseCase interface {
	Create(ctx context.Context, identityID uuid.UUID, input CreateNoteInput) (*domain.Note, error)
	Get(ctx context.Context, identityID, noteID uuid.UUID) (*NoteWithAccess, error)
	Update(ctx context.Context, identityID, noteID uuid.UUID, input UpdateNoteInput) (*domain.Note, error)
	Delete(ctx context.Context, identityID, noteID uuid.UUID) error
	List(ctx context.Context, identityID uuid.UUID, input ListNotesInput) ([]*domain.Note, error)
	TogglePin(ctx context.Context, identityID, noteID uuid.UUID) (*domain.Note, error)
	ToggleFavorite(ctx context.Context, identityID, noteID uuid.UUID) (*domain.Note, error)
	ToggleArchive(ctx context.Context, identityID, noteID uuid.UUID) (*domain.Note, error)
	Share(ctx context.Context, identityID, noteID uuid.UUID, input ShareInput) (*domain.ShareGrant, error)
	Unshare(ctx context.Context, identityID, noteID, granteeID uuid.UUID) error
	ListGrants(ctx context.Context, identityID, noteID uuid.UUID) ([]*domain.ShareGrant, error)
}

// NoteRepository interface defines note repository operations.
type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	GetByID(ctx context.Context, noteID uuid.UUID) (*domain.Note, error)
	Update(ctx context.Context, note *domain.Note) error
	Delete(ctx context.Context, noteID uuid.UUID) error
	List(ctx context.Context, q repository.ListQuery) ([]*domain.Note, error)
	CreateGrant(ctx context.Context, grant *domain.ShareGrant) error
	GetGrant(ctx context.Context, noteID, granteeID uuid.UUID) (*domain.ShareGrant, error)
	DeleteGrant(ctx context.Context, noteID, granteeID uuid.UUID) error
	ListGrantsByNote(ctx context.Context, noteID uuid.UUID) ([]*domain.ShareGrant, error)
}

// IdentityResolver resolves share grantees by handle.
type IdentityResolver interface {
	GetByHandle(ctx context.Context, handle string) (*identityDomain.Identity, error)
}

// NoteUseCase handles note-related business logic.
type NoteUseCase struct {
	txManager  database.TxManager
	noteRepo   NoteRepository
	identities IdentityResolver
}

// NewNoteUseCase creates a new NoteUseCase.
func NewNoteUseCase(
	txManager database.TxManager,
	noteRepo NoteRepository,
	identities IdentityResolver,
) *NoteUseCase {
	return &NoteUseCase{
		txManager:  txManager,
		noteRepo:   noteRepo,
		identities: identities,
	}
}

func validateNoteFields(title, body string) error {
	input := struct {
		Title string
		Body  string
	}{Title: title, Body: body}

	err := validation.ValidateStruct(&input,
		validation.Field(&input.Title,
			validation.Required.Error("title is required"),
			appValidation.NotBlank,
			validation.Length(1, 200).Error("title must be at most 200 characters"),
		),
		validation.Field(&input.Body,
			validation.Length(0, 100000).Error("body must be at most 100000 characters"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// resolve loads the note and the caller's grant (if any) and computes the
// capability. Notes the caller cannot view surface as not found, so
// existence cannot be probed.
func (uc *NoteUseCase) resolve(ctx context.Context, identityID, noteID uuid.UUID) (*NoteWithAccess, error) {
	note, err := uc.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}

	var grant *domain.ShareGrant
	if note.OwnerID != identityID {
		grant, err = uc.noteRepo.GetGrant(ctx, noteID, identityID)
		if err != nil && !errors.Is(err, domain.ErrGrantNotFound) {
			return nil, err
		}
	}

	access := domain.ResolveAccess(identityID, note, grant)
	if !access.CanView() {
		return nil, domain.ErrNoteNotFound
	}

	return &NoteWithAccess{Note: note, Access: access}, nil
}

// Create authors a new note owned by the caller.
func (uc *NoteUseCase) Create(
	ctx context.Context,
	identityID uuid.UUID,
	input CreateNoteInput,
) (*domain.Note, error) {
	if err := validateNoteFields(input.Title, input.Body); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	note := &domain.Note{
		ID:        uuid.Must(uuid.NewV7()),
		Title:     strings.TrimSpace(input.Title),
		Body:      input.Body,
		OwnerID:   identityID,
		CreatedAt: now,
		UpdatedAt: now,
		Tags:      domain.NormalizeTags(input.Tags),
	}

	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		return uc.noteRepo.Create(ctx, note)
	})
	if err != nil {
		return nil, err
	}

	return note, nil
}

// Get retrieves a note the caller can view, along with the resolved
// capability.
func (uc *NoteUseCase) Get(ctx context.Context, identityID, noteID uuid.UUID) (*NoteWithAccess, error) {
	return uc.resolve(ctx, identityID, noteID)
}

// Update modifies a note's content. Requires edit capability: the owner or
// an edit grantee.
func (uc *NoteUseCase) Update(
	ctx context.Context,
	identityID, noteID uuid.UUID,
	input UpdateNoteInput,
) (*domain.Note, error) {
	if err := validateNoteFields(input.Title, input.Body); err != nil {
		return nil, err
	}

	resolved, err := uc.resolve(ctx, identityID, noteID)
	if err != nil {
		return nil, err
	}
	if !resolved.Access.CanEdit() {
		return nil, domain.ErrNoteAccessDenied
	}

	note := resolved.Note
	note.Title = strings.TrimSpace(input.Title)
	note.Body = input.Body
	note.Tags = domain.NormalizeTags(input.Tags)
	note.UpdatedAt = time.Now().UTC()

	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		return uc.noteRepo.Update(ctx, note)
	})
	if err != nil {
		return nil, err
	}

	return note, nil
}

// Delete removes a note. Owner only: grantees, even with edit capability,
// cannot delete.
func (uc *NoteUseCase) Delete(ctx context.Context, identityID, noteID uuid.UUID) error {
	resolved, err := uc.resolve(ctx, identityID, noteID)
	if err != nil {
		return err
	}
	if resolved.Note.OwnerID != identityID {
		return domain.ErrNoteAccessDenied
	}

	return uc.noteRepo.Delete(ctx, noteID)
}

// List retrieves the caller's accessible notes filtered by view, search and
// tag.
func (uc *NoteUseCase) List(
	ctx context.Context,
	identityID uuid.UUID,
	input ListNotesInput,
) ([]*domain.Note, error) {
	view := input.View
	if view == "" {
		view = domain.ViewAll
	}
	if !view.IsValid() {
		return nil, domain.ErrNoteNotFound
	}

	return uc.noteRepo.List(ctx, repository.ListQuery{
		IdentityID: identityID,
		View:       view,
		Search:     strings.TrimSpace(input.Search),
		Tag:        domain.NormalizeTag(input.Tag),
		Offset:     input.Offset,
		Limit:      input.Limit,
	})
}

// TogglePin flips the pinned flag. Owner only.
func (uc *NoteUseCase) TogglePin(ctx context.Context, identityID, noteID uuid.UUID) (*domain.Note, error) {
	return uc.toggleFlag(ctx, identityID, noteID, true, func(note *domain.Note) {
		note.Pinned = !note.Pinned
	})
}

// ToggleFavorite flips the favorite flag. Any identity that can view the
// note may flip it, grantees included.
func (uc *NoteUseCase) ToggleFavorite(ctx context.Context, identityID, noteID uuid.UUID) (*domain.Note, error) {
	return uc.toggleFlag(ctx, identityID, noteID, false, func(note *domain.Note) {
		note.Favorite = !note.Favorite
	})
}

// ToggleArchive flips the archived flag. Owner only. Archiving does not
// touch grants: the note simply leaves the default views.
func (uc *NoteUseCase) ToggleArchive(ctx context.Context, identityID, noteID uuid.UUID) (*domain.Note, error) {
	return uc.toggleFlag(ctx, identityID, noteID, true, func(note *domain.Note) {
		note.Archived = !note.Archived
	})
}

// toggleFlag resolves access (view capability is already guaranteed by
// resolve) and applies the flip. ownerOnly restricts the flag to the note's
// owner.
func (uc *NoteUseCase) toggleFlag(
	ctx context.Context,
	identityID, noteID uuid.UUID,
	ownerOnly bool,
	flip func(*domain.Note),
) (*domain.Note, error) {
	resolved, err := uc.resolve(ctx, identityID, noteID)
	if err != nil {
		return nil, err
	}
	if ownerOnly && resolved.Note.OwnerID != identityID {
		return nil, domain.ErrNoteAccessDenied
	}

	note := resolved.Note
	flip(note)
	note.UpdatedAt = time.Now().UTC()

	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		return uc.noteRepo.Update(ctx, note)
	})
	if err != nil {
		return nil, err
	}

	return note, nil
}

func validateShareInput(input ShareInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Handle,
			validation.Required.Error("handle is required"),
			appValidation.NotBlank,
		),
	)
	return appValidation.WrapValidationError(err)
}

// Share grants another identity view or edit capability on a note. Owner
// only; sharing with yourself or sharing twice with the same identity fails.
func (uc *NoteUseCase) Share(
	ctx context.Context,
	identityID, noteID uuid.UUID,
	input ShareInput,
) (*domain.ShareGrant, error) {
	if err := validateShareInput(input); err != nil {
		return nil, err
	}

	resolved, err := uc.resolve(ctx, identityID, noteID)
	if err != nil {
		return nil, err
	}
	if resolved.Note.OwnerID != identityID {
		return nil, domain.ErrNoteAccessDenied
	}

	grantee, err := uc.identities.GetByHandle(ctx, strings.TrimSpace(input.Handle))
	if err != nil {
		return nil, err
	}
	if grantee.ID == identityID {
		return nil, domain.ErrSelfShare
	}

	grant := &domain.ShareGrant{
		ID:           uuid.Must(uuid.NewV7()),
		NoteID:       noteID,
		SharedByID:   identityID,
		SharedWithID: grantee.ID,
		CanEdit:      input.CanEdit,
		CreatedAt:    time.Now().UTC(),
	}

	if err := uc.noteRepo.CreateGrant(ctx, grant); err != nil {
		return nil, err
	}

	return grant, nil
}

// Unshare revokes a grantee's capability on a note. Owner only.
func (uc *NoteUseCase) Unshare(ctx context.Context, identityID, noteID, granteeID uuid.UUID) error {
	resolved, err := uc.resolve(ctx, identityID, noteID)
	if err != nil {
		return err
	}
	if resolved.Note.OwnerID != identityID {
		return domain.ErrNoteAccessDenied
	}

	return uc.noteRepo.DeleteGrant(ctx, noteID, granteeID)
}

// ListGrants retrieves every grant on a note. Owner only.
func (uc *NoteUseCase) ListGrants(ctx context.Context, identityID, noteID uuid.UUID) ([]*domain.ShareGrant, error) {
	resolved, err := uc.resolve(ctx, identityID, noteID)
	if err != nil {
		return nil, err
	}
	if resolved.Note.OwnerID != identityID {
		return nil, domain.ErrNoteAccessDenied
	}

	return uc.noteRepo.ListGrantsByNote(ctx, noteID)
}
