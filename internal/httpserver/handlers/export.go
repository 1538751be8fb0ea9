package handlers

import (
	"fmt"
	"net/http"

	"github.com/MrSnakeDoc/linkvault/internal/httpserver/deps"
)

// Export returns the full snapshot, credentials included, as a download.
func Export(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := d.Vault.Export(r.Context())
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		name := fmt.Sprintf("linkvault-%s.json", snap.ExportedAt.Format("20060102-150405"))
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		writeJSON(w, http.StatusOK, snap)
	}
}
