package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/linkvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkvault/internal/logger"
)

type componentStatus struct {
	OK      bool   `json:"ok"`
	Mode    string `json:"mode,omitempty"`
	Impact  string `json:"impact,omitempty"`
	Error   string `json:"error,omitempty"`
	Clients *int   `json:"clients,omitempty"`

	Bookmarks  *int `json:"bookmarks,omitempty"`
	Categories *int `json:"categories,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the status of each backing component.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clients := d.Registry.Len()

		components := map[string]componentStatus{
			"database": checkDatabase(r.Context(), d),
			"sessions": checkSessions(r.Context(), d),
			"stream": {
				OK:      true,
				Clients: &clients,
			},
			"export": checkExporter(d),
			"import": {
				OK:   true,
				Mode: importMode(d),
			},
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     determineStatus(components),
			Components: components,
		})
	}
}

func determineStatus(components map[string]componentStatus) string {
	// The database is the only hard dependency
	if db, exists := components["database"]; exists && !db.OK {
		return "critical"
	}

	// Sessions and export are optional but impact functionality
	for _, name := range []string{"sessions", "export"} {
		if c, exists := components[name]; exists && !c.OK {
			return "degraded"
		}
	}

	return "operational"
}

func checkDatabase(parent context.Context, d deps.Deps) componentStatus {
	if d.Database == nil {
		return componentStatus{OK: false, Error: "not initialized"}
	}

	ctx, cancel := context.WithTimeout(parent, 2*time.Second)
	defer cancel()

	if err := d.Database.Ping(ctx); err != nil {
		return componentStatus{OK: false, Error: "unreachable"}
	}
	bookmarks, categories, err := d.Database.Counts(ctx)
	if err != nil {
		d.Logger.Warn("failed to count rows", logger.Error(err))
		return componentStatus{OK: true}
	}
	return componentStatus{OK: true, Bookmarks: &bookmarks, Categories: &categories}
}

func checkSessions(parent context.Context, d deps.Deps) componentStatus {
	if d.Sessions == nil {
		return componentStatus{
			OK:     true,
			Mode:   "disabled",
			Impact: "token-only-admin",
		}
	}

	ctx, cancel := context.WithTimeout(parent, 2*time.Second)
	defer cancel()

	if err := d.Sessions.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "login-unavailable",
			Error:  "timeout",
		}
	}

	n, err := d.Sessions.Count(ctx)
	if err != nil {
		return componentStatus{OK: true, Mode: "redis"}
	}
	return componentStatus{OK: true, Mode: "redis", Clients: &n}
}

func checkExporter(d deps.Deps) componentStatus {
	if d.Exporter == nil {
		return componentStatus{OK: true, Mode: "disabled"}
	}
	if !d.Exporter() {
		return componentStatus{OK: false, Mode: "nats", Error: "disconnected"}
	}
	return componentStatus{OK: true, Mode: "nats"}
}

func importMode(d deps.Deps) string {
	if d.ImportTrigger == nil {
		return "disabled"
	}
	return "homepage"
}
