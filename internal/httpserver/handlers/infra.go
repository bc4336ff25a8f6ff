package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/kompas/internal/httpserver/deps"
)

const timeLayout = "2006-01-02 15:04:05"

type componentStatus struct {
	OK          bool   `json:"ok"`
	Backend     string `json:"backend,omitempty"`
	Count       *int   `json:"count,omitempty"`
	Subscribers *int   `json:"subscribers,omitempty"`
	LastReload  string `json:"last_reload,omitempty"`
	Impact      string `json:"impact,omitempty"`
	Error       string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"store":     checkStore(r.Context(), d),
			"feed":      checkFeed(d),
			"broadcast": checkBroadcast(d),
			"bookmarks": checkBookmarkList(d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	// Without the store nothing can be saved or listed
	if store, ok := components["store"]; ok && !store.OK {
		return "critical"
	}

	// A stale feed still lets users read their bookmarks
	if feed, ok := components["feed"]; ok && !feed.OK {
		return "degraded"
	}

	return "optimal"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{OK: false, Backend: d.StoreBackend, Error: "store not initialized"}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{
			OK:      false,
			Backend: d.StoreBackend,
			Impact:  "bookmarks-unavailable",
			Error:   err.Error(),
		}
	}

	count := d.Store.Count()
	return componentStatus{OK: true, Backend: d.StoreBackend, Count: &count}
}

func checkFeed(d deps.Deps) componentStatus {
	if d.Feed == nil {
		return componentStatus{OK: false, Error: "feed reloader not initialized"}
	}

	last, err := d.Feed.Status()
	status := componentStatus{OK: err == nil && !last.IsZero(), LastReload: "never"}
	if !last.IsZero() {
		status.LastReload = last.Format(timeLayout)
	}
	if err != nil {
		status.Impact = "home-feed-stale"
		status.Error = err.Error()
	}
	return status
}

func checkBroadcast(d deps.Deps) componentStatus {
	if d.Changes == nil {
		return componentStatus{OK: false, Error: "broadcaster not initialized"}
	}
	n := d.Changes.Len()
	return componentStatus{OK: true, Subscribers: &n}
}

func checkBookmarkList(d deps.Deps) componentStatus {
	if d.BookmarkList == nil {
		return componentStatus{OK: false, Error: "bookmark list not initialized"}
	}
	n := len(d.BookmarkList.Items())
	status := componentStatus{OK: true, Count: &n, LastReload: "never"}
	if last := d.BookmarkList.LastRefresh(); !last.IsZero() {
		status.LastReload = last.Format(timeLayout)
	}
	return status
}
