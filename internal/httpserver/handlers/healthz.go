package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/kompas/internal/httpserver/deps"
)

type buildInfo struct {
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
}

type healthzResponse struct {
	Status       string    `json:"status"`
	Uptime       string    `json:"uptime"`
	StoreBackend string    `json:"store_backend,omitempty"`
	Build        buildInfo `json:"build"`
}

// Healthz is liveness only. It never touches the store, see Readyz for that.
func Healthz(d deps.Deps) http.HandlerFunc {
	build := buildInfo{
		Version:   d.Version,
		Commit:    d.Commit,
		BuildDate: d.BuildDate,
		GoVersion: d.GoVersion,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:       "ok",
			Uptime:       time.Since(d.StartTime).Round(time.Second).String(),
			StoreBackend: d.StoreBackend,
			Build:        build,
		})
	}
}
