package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/linkvault/internal/auth"
	"github.com/MrSnakeDoc/linkvault/internal/domain"
	"github.com/MrSnakeDoc/linkvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkvault/internal/logger"
	"github.com/MrSnakeDoc/linkvault/internal/utils"
)

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type sessionResponse struct {
	Admin bool `json:"admin"`
}

// Login exchanges the admin password for a session token, returned both in
// the body and as an HttpOnly cookie.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Sessions == nil || d.Password == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Login is not available"})
			return
		}

		var req loginRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if !d.Password.Verify(req.Password) {
			d.Logger.Warn("failed admin login",
				logger.String("remote_ip", utils.ClientIP(r, d.TrustProxy)))
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
			return
		}

		s, err := d.Sessions.Create(r.Context())
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     auth.CookieName,
			Value:    s.Token,
			Path:     "/",
			Expires:  s.ExpiresAt,
			HttpOnly: true,
			Secure:   d.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})
		d.Logger.Info("admin logged in",
			logger.String("remote_ip", utils.ClientIP(r, d.TrustProxy)))
		writeJSON(w, http.StatusOK, loginResponse{Token: s.Token, ExpiresAt: s.ExpiresAt})
	}
}

// Logout deletes the caller's session, if any, and clears the cookie.
func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := auth.TokenFromRequest(r); token != "" && d.Sessions != nil {
			if err := d.Sessions.Delete(r.Context(), token); err != nil {
				d.Logger.Warn("failed to delete session", logger.Error(err))
			}
		}
		http.SetCookie(w, &http.Cookie{
			Name:     auth.CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   d.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

func Session(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sessionResponse{
			Admin: domain.CapabilityFrom(r.Context()) == domain.Admin,
		})
	}
}
