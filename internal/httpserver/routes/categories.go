package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkvault/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/linkvault/internal/httpserver/mw"
)

func init() { Register(registerCategories) }

func registerCategories(r chi.Router, d deps.Deps) {
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", handlers.ListCategories(d))
		r.Get("/{id}", handlers.GetCategory(d))

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAdmin)
			r.Post("/", handlers.CreateCategory(d))
			r.Put("/{id}", handlers.UpdateCategory(d))
			r.Patch("/{id}", handlers.UpdateCategory(d))
			r.Delete("/{id}", handlers.DeleteCategory(d))
		})
	})
}
