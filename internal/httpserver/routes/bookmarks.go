package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkvault/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/linkvault/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.Route("/api/bookmarks", func(r chi.Router) {
		r.Get("/", handlers.ListBookmarks(d))
		r.Get("/{id}", handlers.GetBookmark(d))

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAdmin)
			r.Post("/", handlers.CreateBookmark(d))
			r.Put("/{id}", handlers.UpdateBookmark(d))
			r.Patch("/{id}", handlers.UpdateBookmark(d))
			r.Delete("/{id}", handlers.DeleteBookmark(d))
		})
	})
}
