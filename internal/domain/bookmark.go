package domain

import (
	"slices"
	"time"
)

// Bookmark is a saved article.
// Bookmarks are created once and deleted once; they are never edited.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// Identifier is the unique key, see Article.Identifier.
	// At most one Bookmark exists per Identifier.
	Identifier string `json:"identifier"`

	// ─────────────────────────────
	// Snapshot of the article
	// ─────────────────────────────

	// Title of the article at the time it was saved.
	Title string `json:"title"`

	// PublishedTime as delivered by the feed (free-form, may be empty).
	PublishedTime string `json:"published_time,omitempty"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// SavedAt is set once on creation and drives list ordering.
	SavedAt time.Time `json:"saved_at"`
}

// NewBookmark snapshots an article into a bookmark saved at the given time.
func NewBookmark(article Article, savedAt time.Time) Bookmark {
	return Bookmark{
		Identifier:    article.Identifier(),
		Title:         article.Title,
		PublishedTime: article.PublishedTime,
		SavedAt:       savedAt,
	}
}

// SortBySavedAtDesc orders bookmarks most recently saved first.
// Ties keep their relative order.
func SortBySavedAtDesc(bookmarks []Bookmark) {
	slices.SortStableFunc(bookmarks, func(a, b Bookmark) int {
		return b.SavedAt.Compare(a.SavedAt)
	})
}
