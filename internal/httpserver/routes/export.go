package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkvault/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/linkvault/internal/httpserver/mw"
)

func init() { Register(registerExport) }

func registerExport(r chi.Router, d deps.Deps) {
	r.With(mw.RequireAdmin).Get("/api/export", handlers.Export(d))
}
