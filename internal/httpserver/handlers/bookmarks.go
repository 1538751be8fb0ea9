package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linkvault/internal/domain"
	"github.com/MrSnakeDoc/linkvault/internal/httpserver/deps"
)

// ListBookmarks serves the filtered, paginated listing. Private rows are
// only included for admins.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := domain.FilterFromQuery(r.URL.Query().Get)
		page, err := d.Vault.ListBookmarks(r.Context(), f, domain.CapabilityFrom(r.Context()))
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func GetBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			badRequest(w, "Invalid bookmark ID")
			return
		}
		b, err := d.Vault.GetBookmark(r.Context(), id, domain.CapabilityFrom(r.Context()))
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.BookmarkInput
		if !decodeBody(w, r, &in) {
			return
		}
		b, err := d.Vault.CreateBookmark(r.Context(), in)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, b)
	}
}

// UpdateBookmark applies a partial update. Fields absent from the body are
// left unchanged; explicit nulls clear optional fields.
func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			badRequest(w, "Invalid bookmark ID")
			return
		}
		var p domain.BookmarkPatch
		if !decodeBody(w, r, &p) {
			return
		}
		b, err := d.Vault.UpdateBookmark(r.Context(), id, p)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			badRequest(w, "Invalid bookmark ID")
			return
		}
		if err := d.Vault.DeleteBookmark(r.Context(), id); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}
