package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/kompas/internal/httpserver/deps"
	"github.com/MrSnakeDoc/kompas/internal/metrics"
)

func Metrics(d deps.Deps) http.Handler {
	return metrics.Handler(d.Gatherer)
}
