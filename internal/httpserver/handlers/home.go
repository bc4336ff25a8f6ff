package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/kompas/internal/httpserver/deps"
	"github.com/MrSnakeDoc/kompas/internal/viewmodel"
)

type homeResponse struct {
	Rows     []viewmodel.Row `json:"rows"`
	LastLoad string          `json:"last_load,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Home serves the latest feed with a bookmark flag on every article.
// A failed reload keeps the previous rows and reports the error next to them.
func Home(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := homeResponse{Rows: d.Home.Rows()}
		if resp.Rows == nil {
			resp.Rows = []viewmodel.Row{}
		}
		if last := d.Home.LastLoad(); !last.IsZero() {
			resp.LastLoad = last.Format(timeLayout)
		}
		if err := d.Home.LastError(); err != nil {
			resp.Error = err.Error()
		}

		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, resp)
	}
}
