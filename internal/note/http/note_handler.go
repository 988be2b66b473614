// Package http provides HTTP handlers for note operations.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/notehub/internal/auth/http"
	apperrors "github.com/allisson/notehub/internal/errors"
	"github.com/allisson/notehub/internal/httputil"
	noteDomain "github.com/allisson/notehub/internal/note/domain"
	"github.com/allisson/notehub/internal/note/http/dto"
	noteUsecase "github.com/allisson/notehub/internal/note/usecase"
	customValidation "github.com/allisson/notehub/internal/validation"
)

// NoteHandler handles HTTP requests for note authoring, listing, flags and
// sharing.
type NoteHandler struct {
	noteUseCase noteUsecase.UseCase
	logger      *slog.Logger
}

// NewNoteHandler creates a new note handler.
func NewNoteHandler(noteUseCase noteUsecase.UseCase, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{
		noteUseCase: noteUseCase,
		logger:      logger,
	}
}

// identityID extracts the authenticated identity from the request context.
func (h *NoteHandler) identityID(c *gin.Context) (uuid.UUID, bool) {
	identity, ok := authHTTP.GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return uuid.Nil, false
	}
	return identity.ID, true
}

// noteID parses the :id path parameter.
func (h *NoteHandler) noteID(c *gin.Context) (uuid.UUID, bool) {
	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid note ID format: must be a valid UUID"),
			h.logger)
		return uuid.Nil, false
	}
	return noteID, true
}

// CreateHandler authors a new note.
// POST /v1/notes - Requires an authenticated session.
// Returns 201 Created with the full note.
func (h *NoteHandler) CreateHandler(c *gin.Context) {
	identityID, ok := h.identityID(c)
	if !ok {
		return
	}

	var req dto.CreateNoteRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	note, err := h.noteUseCase.Create(c.Request.Context(), identityID, noteUsecase.CreateNoteInput{
		Title: req.Title,
		Body:  req.Body,
		Tags:  req.Tags,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapNoteToResponse(note, noteDomain.AccessEdit))
}

// GetHandler retrieves a note the caller can view.
// GET /v1/notes/:id - Requires an authenticated session.
func (h *NoteHandler) GetHandler(c *gin.Context) {
	identityID, ok := h.identityID(c)
	if !ok {
		return
	}
	noteID, ok := h.noteID(c)
	if !ok {
		return
	}

	resolved, err := h.noteUseCase.Get(c.Request.Context(), identityID, noteID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapNoteToResponse(resolved.Note, resolved.Access))
}

// UpdateHandler modifies a note's content.
// PUT /v1/notes/:id - Requires an authenticated session with edit
// capability.
func (h *NoteHandler) UpdateHandler(c *gin.Context) {
	identityID, ok := h.identityID(c)
	if !ok {
		return
	}
	noteID, ok := h.noteID(c)
	if !ok {
		return
	}

	var req dto.UpdateNoteRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	note, err := h.noteUseCase.Update(c.Request.Context(), identityID, noteID, noteUsecase.UpdateNoteInput{
		Title: req.Title,
		Body:  req.Body,
		Tags:  req.Tags,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapNoteToResponse(note, noteDomain.AccessEdit))
}

// DeleteHandler removes a note. Owner only.
// DELETE /v1/notes/:id - Requires an authenticated session.
func (h *NoteHandler) DeleteHandler(c *gin.Context) {
	identityID, ok := h.identityID(c)
	if !ok {
		return
	}
	noteID, ok := h.noteID(c)
	if !ok {
		return
	}

	if err := h.noteUseCase.Delete(c.Request.Context(), identityID, noteID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListHandler retrieves the caller's accessible notes.
// GET /v1/notes?view=&search=&tag= - Requires an authenticated session.
func (h *NoteHandler) ListHandler(c *gin.Context) {
	identityID, ok := h.identityID(c)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	notes, err := h.noteUseCase.List(c.Request.Context(), identityID, noteUsecase.ListNotesInput{
		View:   noteDomain.ViewFilter(c.DefaultQuery("view", string(noteDomain.ViewAll))),
		Search: c.Query("search"),
		Tag:    c.Query("tag"),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	summaries := make([]dto.NoteSummaryResponse, 0, len(notes))
	for _, note := range notes {
		summaries = append(summaries, dto.MapNoteToSummaryResponse(note))
	}

	c.JSON(http.StatusOK, dto.ListNotesResponse{
		Notes:  summaries,
		Offset: offset,
		Limit:  limit,
	})
}

// TogglePinHandler flips the pinned flag. Owner only.
// POST /v1/notes/:id/pin - Requires an authenticated session.
func (h *NoteHandler) TogglePinHandler(c *gin.Context) {
	h.toggle(c, h.noteUseCase.TogglePin)
}

// ToggleFavoriteHandler flips the favorite flag. Open to any identity with
// access to the note.
// POST /v1/notes/:id/favorite - Requires an authenticated session.
func (h *NoteHandler) ToggleFavoriteHandler(c *gin.Context) {
	h.toggle(c, h.noteUseCase.ToggleFavorite)
}

// ToggleArchiveHandler flips the archived flag. Owner only.
// POST /v1/notes/:id/archive - Requires an authenticated session.
func (h *NoteHandler) ToggleArchiveHandler(c *gin.Context) {
	h.toggle(c, h.noteUseCase.ToggleArchive)
}

func (h *NoteHandler) toggle(
	c *gin.Context,
	fn func(ctx context.Context, identityID, noteID uuid.UUID) (*noteDomain.Note, error),
) {
	identityID, ok := h.identityID(c)
	if !ok {
		return
	}
	noteID, ok := h.noteID(c)
	if !ok {
		return
	}

	note, err := fn(c.Request.Context(), identityID, noteID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapNoteToResponse(note, noteDomain.AccessEdit))
}

// ShareHandler grants another identity capability on a note. Owner only.
// POST /v1/notes/:id/shares - Requires an authenticated session.
// Returns 201 Created with the grant.
func (h *NoteHandler) ShareHandler(c *gin.Context) {
	identityID, ok := h.identityID(c)
	if !ok {
		return
	}
	noteID, ok := h.noteID(c)
	if !ok {
		return
	}

	var req dto.ShareNoteRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	grant, err := h.noteUseCase.Share(c.Request.Context(), identityID, noteID, noteUsecase.ShareInput{
		Handle:  req.Handle,
		CanEdit: req.CanEdit,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapGrantToResponse(grant))
}

// UnshareHandler revokes a grantee's capability on a note. Owner only.
// DELETE /v1/notes/:id/shares/:grantee_id - Requires an authenticated
// session.
func (h *NoteHandler) UnshareHandler(c *gin.Context) {
	identityID, ok := h.identityID(c)
	if !ok {
		return
	}
	noteID, ok := h.noteID(c)
	if !ok {
		return
	}

	granteeID, err := uuid.Parse(c.Param("grantee_id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid grantee ID format: must be a valid UUID"),
			h.logger)
		return
	}

	if err := h.noteUseCase.Unshare(c.Request.Context(), identityID, noteID, granteeID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListGrantsHandler retrieves every grant on a note. Owner only.
// GET /v1/notes/:id/shares - Requires an authenticated session.
func (h *NoteHandler) ListGrantsHandler(c *gin.Context) {
	identityID, ok := h.identityID(c)
	if !ok {
		return
	}
	noteID, ok := h.noteID(c)
	if !ok {
		return
	}

	grants, err := h.noteUseCase.ListGrants(c.Request.Context(), identityID, noteID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	responses := make([]dto.ShareGrantResponse, 0, len(grants))
	for _, grant := range grants {
		responses = append(responses, dto.MapGrantToResponse(grant))
	}

	c.JSON(http.StatusOK, dto.ListGrantsResponse{Grants: responses})
}
