package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/linkvault/internal/auth"
	"github.com/MrSnakeDoc/linkvault/internal/domain"
)

// Capability resolves the caller's capability once and stores it in the
// request context. It never rejects a request.
func Capability(checker auth.Checker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := domain.Public
			if checker != nil && checker.Check(r) == auth.Admit {
				c = domain.Admin
			}
			next.ServeHTTP(w, r.WithContext(domain.WithCapability(r.Context(), c)))
		})
	}
}

// RequireAdmin rejects non-admin callers with a uniform 401.
// Must run after Capability.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if domain.CapabilityFrom(r.Context()) != domain.Admin {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Unauthorized"}` + "\n"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
