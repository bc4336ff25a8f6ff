package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/kompas/internal/httpserver/deps"
	"github.com/MrSnakeDoc/kompas/internal/logger"
)

const defaultKeepAlive = 25 * time.Second

// Events streams one "bookmarks-changed" server-sent event per change pulse.
// Pulses arriving while the client is still being written to are merged.
func Events(d deps.Deps) http.HandlerFunc {
	keepAlive := d.KeepAlive
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}

	return func(w http.ResponseWriter, r *http.Request) {
		rc := http.NewResponseController(w)
		// The server WriteTimeout would cut long-lived streams.
		if err := rc.SetWriteDeadline(time.Time{}); err != nil {
			d.Logger.Debug("cannot clear write deadline", logger.Error(err))
		}

		pulses := make(chan struct{}, 1)
		sub := d.Changes.SubscribeContext(r.Context(), func() {
			select {
			case pulses <- struct{}{}:
			default:
			}
		})
		defer sub.Unsubscribe()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		if _, err := fmt.Fprint(w, "retry: 3000\n\n"); err != nil {
			return
		}
		if err := rc.Flush(); err != nil {
			d.Logger.Warn("event stream not supported", logger.Error(err))
			return
		}

		log := d.Logger.With(logger.String("subscription", sub.ID()))
		log.Debug("event stream opened")
		defer log.Debug("event stream closed")

		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-pulses:
				if _, err := fmt.Fprint(w, "event: bookmarks-changed\ndata: {}\n\n"); err != nil {
					return
				}
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
					return
				}
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
