package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/kompas/internal/domain"
	"github.com/MrSnakeDoc/kompas/internal/httpserver/deps"
	"github.com/MrSnakeDoc/kompas/internal/logger"
)

const maxArticleBytes = 64 << 10

type bookmarkState struct {
	Identifier string `json:"identifier"`
	Bookmarked bool   `json:"bookmarked"`
}

// ListBookmarks returns every bookmark, newest first
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, d.Store.List())
	}
}

// GetBookmark reports whether the identifier in the path is bookmarked
func GetBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identifierParam(w, r)
		if !ok {
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, bookmarkState{Identifier: id, Bookmarked: d.Store.IsBookmarked(id)})
	}
}

// AddBookmark saves the article in the body. Saving twice is a no-op.
func AddBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var article domain.Article
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxArticleBytes))
		if err := dec.Decode(&article); err != nil {
			d.Logger.Debug("invalid article payload", logger.Error(err))
			writeError(w, http.StatusBadRequest, "invalid article payload")
			return
		}
		if article.ID == "" && article.Title == "" {
			writeError(w, http.StatusBadRequest, "article needs an id or a title")
			return
		}

		d.Store.Add(article)

		id := article.Identifier()
		writeJSON(w, http.StatusOK, bookmarkState{Identifier: id, Bookmarked: d.Store.IsBookmarked(id)})
	}
}

// DeleteBookmark removes the identifier in the path. Missing ids are fine.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identifierParam(w, r)
		if !ok {
			return
		}

		d.Store.Remove(id)

		writeJSON(w, http.StatusOK, bookmarkState{Identifier: id, Bookmarked: d.Store.IsBookmarked(id)})
	}
}

// identifierParam returns the decoded {id} segment. chi matches on the
// decoded path unless the request carried escapes Go would not produce
// (like %2F), in which case the segment is still raw.
func identifierParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(id)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid bookmark identifier")
			return "", false
		}
		id = unescaped
	}
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid bookmark identifier")
		return "", false
	}
	return id, true
}
