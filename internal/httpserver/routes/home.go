package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/kompas/internal/httpserver/deps"
	"github.com/MrSnakeDoc/kompas/internal/httpserver/handlers"
)

func init() { Register("home", registerHome) }

func registerHome(r chi.Router, d deps.Deps) {
	r.Get("/home", handlers.Home(d))
	r.Get("/events", handlers.Events(d))
}
