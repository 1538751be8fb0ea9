package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linkvault/internal/domain"
	"github.com/MrSnakeDoc/linkvault/internal/httpserver/deps"
)

func ListCategories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cats, err := d.Vault.ListCategories(r.Context())
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		if cats == nil {
			cats = []domain.Category{}
		}
		writeJSON(w, http.StatusOK, cats)
	}
}

func GetCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			badRequest(w, "Invalid category ID")
			return
		}
		c, err := d.Vault.GetCategory(r.Context(), id)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func CreateCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.CategoryInput
		if !decodeBody(w, r, &in) {
			return
		}
		c, err := d.Vault.CreateCategory(r.Context(), in)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func UpdateCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			badRequest(w, "Invalid category ID")
			return
		}
		var p domain.CategoryPatch
		if !decodeBody(w, r, &p) {
			return
		}
		c, err := d.Vault.UpdateCategory(r.Context(), id, p)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// DeleteCategory removes the category. Its bookmarks are kept and become
// uncategorized.
func DeleteCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			badRequest(w, "Invalid category ID")
			return
		}
		if err := d.Vault.DeleteCategory(r.Context(), id); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}
