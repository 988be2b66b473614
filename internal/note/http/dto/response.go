package dto

import (
	"time"

	noteDomain "github.com/allisson/notehub/internal/note/domain"
)

// NoteResponse describes a full note with the caller's resolved capability.
type NoteResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Pinned      bool      `json:"pinned"`
	Archived    bool      `json:"archived"`
	Favorite    bool      `json:"favorite"`
	OwnerID     string    `json:"owner_id"`
	Tags        []string  `json:"tags"`
	ReadingTime int       `json:"reading_time"`
	CanEdit     bool      `json:"can_edit"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MapNoteToResponse converts a note and the caller's access level to its
// response.
func MapNoteToResponse(note *noteDomain.Note, access noteDomain.AccessLevel) NoteResponse {
	tags := note.Tags
	if tags == nil {
		tags = []string{}
	}
	return NoteResponse{
		ID:          note.ID.String(),
		Title:       note.Title,
		Body:        note.Body,
		Pinned:      note.Pinned,
		Archived:    note.Archived,
		Favorite:    note.Favorite,
		OwnerID:     note.OwnerID.String(),
		Tags:        tags,
		ReadingTime: note.ReadingTime(),
		CanEdit:     access.CanEdit(),
		CreatedAt:   note.CreatedAt,
		UpdatedAt:   note.UpdatedAt,
	}
}

// NoteSummaryResponse describes a note in a listing: the body is reduced to
// an excerpt.
type NoteSummaryResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Excerpt   string    `json:"excerpt"`
	Pinned    bool      `json:"pinned"`
	Archived  bool      `json:"archived"`
	Favorite  bool      `json:"favorite"`
	OwnerID   string    `json:"owner_id"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MapNoteToSummaryResponse converts a note to its listing response.
func MapNoteToSummaryResponse(note *noteDomain.Note) NoteSummaryResponse {
	tags := note.Tags
	if tags == nil {
		tags = []string{}
	}
	return NoteSummaryResponse{
		ID:        note.ID.String(),
		Title:     note.Title,
		Excerpt:   note.Excerpt(),
		Pinned:    note.Pinned,
		Archived:  note.Archived,
		Favorite:  note.Favorite,
		OwnerID:   note.OwnerID.String(),
		Tags:      tags,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

// ListNotesResponse wraps a page of note summaries.
type ListNotesResponse struct {
	Notes  []NoteSummaryResponse `json:"notes"`
	Offset int                   `json:"offset"`
	Limit  int                   `json:"limit"`
}

// ShareGrantResponse describes a share grant on a note.
type ShareGrantResponse struct {
	ID           string    `json:"id"`
	NoteID       string    `json:"note_id"`
	SharedByID   string    `json:"shared_by_id"`
	SharedWithID string    `json:"shared_with_id"`
	CanEdit      bool      `json:"can_edit"`
	CreatedAt    time.Time `json:"created_at"`
}

// MapGrantToResponse converts a share grant to its response.
func MapGrantToResponse(grant *noteDomain.ShareGrant) ShareGrantResponse {
	return ShareGrantResponse{
		ID:           grant.ID.String(),
		NoteID:       grant.NoteID.String(),
		SharedByID:   grant.SharedByID.String(),
		SharedWithID: grant.SharedWithID.String(),
		CanEdit:      grant.CanEdit,
		CreatedAt:    grant.CreatedAt,
	}
}

// ListGrantsResponse wraps a note's share grants.
type ListGrantsResponse struct {
	Grants []ShareGrantResponse `json:"grants"`
}
