package domain

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNote_Excerpt(t *testing.T) {
	t.Run("ShortBodyReturnedWhole", func(t *testing.T) {
		note := Note{Body: "a short body"}
		assert.Equal(t, "a short body", note.Excerpt())
	})

	t.Run("LongBodyTruncated", func(t *testing.T) {
		note := Note{Body: strings.Repeat("word ", 100)}
		excerpt := note.Excerpt()
		assert.LessOrEqual(t, len(excerpt), excerptLength+len("…"))
		assert.True(t, strings.HasSuffix(excerpt, "…"))
	})

	t.Run("MultiByteBodyCutOnRuneBoundary", func(t *testing.T) {
		note := Note{Body: strings.Repeat("é", 200)}
		excerpt := note.Excerpt()
		assert.True(t, utf8.ValidString(excerpt))
		assert.True(t, strings.HasSuffix(excerpt, "…"))
	})
}

func TestNote_ReadingTime(t *testing.T) {
	tests := []struct {
		name     string
		words    int
		expected int
	}{
		{"empty body", 0, 1},
		{"a few words", 10, 1},
		{"exactly one minute", 200, 1},
		{"just over one minute", 201, 2},
		{"several minutes", 1000, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			note := Note{Body: strings.TrimSpace(strings.Repeat("word ", tt.words))}
			assert.Equal(t, tt.expected, note.ReadingTime())
		})
	}
}

func TestResolveAccess(t *testing.T) {
	ownerID := uuid.Must(uuid.NewV7())
	granteeID := uuid.Must(uuid.NewV7())
	strangerID := uuid.Must(uuid.NewV7())

	note := &Note{ID: uuid.Must(uuid.NewV7()), OwnerID: ownerID}

	editGrant := &ShareGrant{
		NoteID:       note.ID,
		SharedByID:   ownerID,
		SharedWithID: granteeID,
		CanEdit:      true,
	}
	viewGrant := &ShareGrant{
		NoteID:       note.ID,
		SharedByID:   ownerID,
		SharedWithID: granteeID,
		CanEdit:      false,
	}

	tests := []struct {
		name       string
		identityID uuid.UUID
		grant      *ShareGrant
		expected   AccessLevel
	}{
		{"owner always edits", ownerID, nil, AccessEdit},
		{"owner ignores grants", ownerID, viewGrant, AccessEdit},
		{"edit grant confers edit", granteeID, editGrant, AccessEdit},
		{"view grant confers view", granteeID, viewGrant, AccessView},
		{"stranger gets nothing", strangerID, nil, AccessNone},
		{"grant for someone else does not leak", strangerID, viewGrant, AccessNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveAccess(tt.identityID, note, tt.grant))
		})
	}

	t.Run("nil note yields none", func(t *testing.T) {
		assert.Equal(t, AccessNone, ResolveAccess(ownerID, nil, nil))
	})

	t.Run("grant for a different note does not apply", func(t *testing.T) {
		otherGrant := &ShareGrant{
			NoteID:       uuid.Must(uuid.NewV7()),
			SharedWithID: granteeID,
			CanEdit:      true,
		}
		assert.Equal(t, AccessNone, ResolveAccess(granteeID, note, otherGrant))
	})
}

func TestAccessLevel_Capabilities(t *testing.T) {
	assert.False(t, AccessNone.CanView())
	assert.False(t, AccessNone.CanEdit())
	assert.True(t, AccessView.CanView())
	assert.False(t, AccessView.CanEdit())
	assert.True(t, AccessEdit.CanView())
	assert.True(t, AccessEdit.CanEdit())
}

func TestNormalizeTag(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "Work", "work"},
		{"strips spaces", "my tag", "mytag"},
		{"keeps underscores and dashes", "to_do-list", "to_do-list"},
		{"strips punctuation", "c++!", "c"},
		{"empty input", "", ""},
		{"only punctuation", "!!!", ""},
		{"truncates long names", strings.Repeat("a", 100), strings.Repeat("a", 64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeTag(tt.input))
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	t.Run("drops empties and duplicates", func(t *testing.T) {
		tags := NormalizeTags([]string{"Work", "work", "!!!", "home", "HOME"})
		assert.Equal(t, []string{"work", "home"}, tags)
	})

	t.Run("preserves first-seen order", func(t *testing.T) {
		tags := NormalizeTags([]string{"zebra", "apple", "zebra"})
		assert.Equal(t, []string{"zebra", "apple"}, tags)
	})

	t.Run("empty input yields empty slice", func(t *testing.T) {
		assert.Empty(t, NormalizeTags(nil))
	})
}

func TestViewFilter_IsValid(t *testing.T) {
	assert.True(t, ViewAll.IsValid())
	assert.True(t, ViewFavorites.IsValid())
	assert.True(t, ViewArchived.IsValid())
	assert.True(t, ViewShared.IsValid())
	assert.False(t, ViewFilter("bogus").IsValid())
}
