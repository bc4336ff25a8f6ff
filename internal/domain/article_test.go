package domain

import (
	"testing"
	"time"
)

func TestArticleIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		article Article
		want    string
	}{
		{
			name:    "explicit id wins",
			article: Article{ID: "kompas-123", Title: "Satu", PublishedTime: "1"},
			want:    "kompas-123",
		},
		{
			name:    "derived from title and time",
			article: Article{Title: "Satu", PublishedTime: "1"},
			want:    "Satu_1",
		},
		{
			name:    "spaces become underscores",
			article: Article{Title: "Banjir di Jakarta", PublishedTime: "2 jam lalu"},
			want:    "Banjir_di_Jakarta_2_jam_lalu",
		},
		{
			name:    "missing publish time",
			article: Article{Title: "Tanpa Waktu"},
			want:    "Tanpa_Waktu_",
		},
		{
			name:    "explicit id kept verbatim",
			article: Article{ID: "id with spaces", Title: "x"},
			want:    "id with spaces",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.article.Identifier(); got != tt.want {
				t.Errorf("Identifier() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArticleIdentifierIsStable(t *testing.T) {
	a := Article{Title: "Harga BBM Naik", PublishedTime: "2025-08-07 10:00"}
	first := a.Identifier()
	for i := 0; i < 10; i++ {
		if got := a.Identifier(); got != first {
			t.Fatalf("Identifier() changed between calls: %q != %q", got, first)
		}
	}
}

func TestNewBookmark(t *testing.T) {
	savedAt := time.Date(2025, 8, 7, 10, 0, 0, 0, time.UTC)
	b := NewBookmark(Article{Title: "Satu", PublishedTime: "1", Description: "ignored"}, savedAt)

	if b.Identifier != "Satu_1" {
		t.Errorf("Identifier = %q, want Satu_1", b.Identifier)
	}
	if b.Title != "Satu" || b.PublishedTime != "1" {
		t.Errorf("unexpected snapshot: %+v", b)
	}
	if !b.SavedAt.Equal(savedAt) {
		t.Errorf("SavedAt = %v, want %v", b.SavedAt, savedAt)
	}
}

func TestSortBySavedAtDesc(t *testing.T) {
	base := time.Date(2025, 8, 7, 10, 0, 0, 0, time.UTC)
	bookmarks := []Bookmark{
		{Identifier: "a1", SavedAt: base},
		{Identifier: "a3", SavedAt: base.Add(2 * time.Second)},
		{Identifier: "a2", SavedAt: base.Add(time.Second)},
	}

	SortBySavedAtDesc(bookmarks)

	want := []string{"a3", "a2", "a1"}
	for i, id := range want {
		if bookmarks[i].Identifier != id {
			t.Errorf("position %d = %q, want %q", i, bookmarks[i].Identifier, id)
		}
	}
}

func TestSortBySavedAtDescKeepsTies(t *testing.T) {
	at := time.Date(2025, 8, 7, 10, 0, 0, 0, time.UTC)
	bookmarks := []Bookmark{
		{Identifier: "old", SavedAt: at.Add(-time.Minute)},
		{Identifier: "first", SavedAt: at},
		{Identifier: "second", SavedAt: at},
	}

	SortBySavedAtDesc(bookmarks)

	want := []string{"first", "second", "old"}
	for i, id := range want {
		if bookmarks[i].Identifier != id {
			t.Errorf("position %d = %q, want %q", i, bookmarks[i].Identifier, id)
		}
	}
}
