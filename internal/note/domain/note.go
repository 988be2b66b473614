// Package domain defines the note entities, tags, share grants and the
// access resolver.
package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/allisson/notehub/internal/errors"
)

// excerptLength caps the body preview surfaced in listings.
const excerptLength = 150

// readingWordsPerMinute is the assumed reading speed for ReadingTime.
const readingWordsPerMinute = 200

// Note is a piece of text owned by one identity and optionally shared with
// others. Bodies are opaque text; rendering is a client concern.
type Note struct {
	ID        uuid.UUID
	Title     string
	Body      string
	Pinned    bool
	Archived  bool
	Favorite  bool
	OwnerID   uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	Tags      []string
}

// Excerpt returns the leading slice of the body for listings, cut on a rune
// boundary so multi-byte text stays valid UTF-8.
func (n *Note) Excerpt() string {
	body := strings.TrimSpace(n.Body)
	if len(body) <= excerptLength {
		return body
	}
	cut := excerptLength
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return strings.TrimSpace(body[:cut]) + "…"
}

// ReadingTime estimates reading duration in whole minutes, never below one.
func (n *Note) ReadingTime() int {
	words := len(strings.Fields(n.Body))
	minutes := words / readingWordsPerMinute
	if words%readingWordsPerMinute != 0 {
		minutes++
	}
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// ShareGrant records that a note's owner shared it with another identity.
// CanEdit distinguishes edit grants from view-only grants.
type ShareGrant struct {
	ID           uuid.UUID
	NoteID       uuid.UUID
	SharedByID   uuid.UUID
	SharedWithID uuid.UUID
	CanEdit      bool
	CreatedAt    time.Time
}

// AccessLevel is the resolved capability of an identity over a note.
type AccessLevel int

// Access levels, ordered by capability.
const (
	AccessNone AccessLevel = iota
	AccessView
	AccessEdit
)

// CanView reports whether the level permits reading the note.
func (a AccessLevel) CanView() bool { return a >= AccessView }

// CanEdit reports whether the level permits modifying the note.
func (a AccessLevel) CanEdit() bool { return a >= AccessEdit }

// ResolveAccess computes the identity's capability over the note. Pure and
// total: the owner always holds edit access; a grant confers edit or view
// depending on its flag; everyone else gets none. A nil grant means no grant
// exists for this identity.
func ResolveAccess(identityID uuid.UUID, note *Note, grant *ShareGrant) AccessLevel {
	if note == nil {
		return AccessNone
	}
	if note.OwnerID == identityID {
		return AccessEdit
	}
	if grant != nil && grant.NoteID == note.ID && grant.SharedWithID == identityID {
		if grant.CanEdit {
			return AccessEdit
		}
		return AccessView
	}
	return AccessNone
}

// maxTagLength caps normalized tag names.
const maxTagLength = 64

// NormalizeTag lowercases the name and strips everything outside
// [a-z0-9_-], truncating to the maximum length. An empty result means the
// input carried no usable characters and the tag is dropped.
func NormalizeTag(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLower(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	tag := b.String()
	if len(tag) > maxTagLength {
		tag = tag[:maxTagLength]
	}
	return tag
}

// NormalizeTags normalizes a list of tag names, dropping empties and
// duplicates while preserving first-seen order.
func NormalizeTags(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	tags := make([]string, 0, len(names))
	for _, name := range names {
		tag := NormalizeTag(name)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// ViewFilter selects which slice of the accessible set a listing shows.
type ViewFilter string

// View filters.
const (
	ViewAll       ViewFilter = "all"
	ViewFavorites ViewFilter = "favorites"
	ViewArchived  ViewFilter = "archived"
	ViewShared    ViewFilter = "shared"
)

// IsValid reports whether the filter is one of the supported views.
func (v ViewFilter) IsValid() bool {
	switch v {
	case ViewAll, ViewFavorites, ViewArchived, ViewShared:
		return true
	}
	return false
}

// Domain-specific errors for note operations.
var (
	// ErrNoteNotFound indicates the note does not exist. It also masks
	// notes the caller has no access to, so existence cannot be probed.
	ErrNoteNotFound = errors.Wrap(errors.ErrNotFound, "note not found")

	// ErrNoteAccessDenied indicates the caller lacks the capability the
	// operation requires on a note it can see.
	ErrNoteAccessDenied = errors.Wrap(errors.ErrForbidden, "access to note denied")

	// ErrSelfShare indicates an attempt to share a note with its owner.
	ErrSelfShare = errors.Wrap(errors.ErrInvalidInput, "cannot share a note with yourself")

	// ErrAlreadyShared indicates a grant for this note and grantee exists.
	ErrAlreadyShared = errors.Wrap(errors.ErrConflict, "note already shared with this identity")

	// ErrGrantNotFound indicates no grant matches the note and grantee.
	ErrGrantNotFound = errors.Wrap(errors.ErrNotFound, "share grant not found")
)
