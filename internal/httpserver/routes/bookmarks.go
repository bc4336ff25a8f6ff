package routes

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/kompas/internal/httpserver/deps"
	"github.com/MrSnakeDoc/kompas/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/kompas/internal/httpserver/mw"
)

func init() { Register("bookmarks", registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	writes := r.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.RateLimitBurst,
		RefillPerIPPerMin: d.RateLimitPerMin,
		MaxEntries:        10000,
		SweepInterval:     time.Minute,
		IdleTTL:           15 * time.Minute,
		TrustProxy:        d.TrustProxy,
	}, d.Logger))

	r.Get("/bookmarks", handlers.ListBookmarks(d))
	r.Get("/bookmarks/{id}", handlers.GetBookmark(d))
	writes.Post("/bookmarks", handlers.AddBookmark(d))
	writes.Delete("/bookmarks/{id}", handlers.DeleteBookmark(d))
}
