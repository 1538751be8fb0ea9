// Package auth decides, once per request, whether the caller holds the admin
// capability.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/linkvault/internal/logger"
	sessions "github.com/MrSnakeDoc/linkvault/internal/store/redis"
)

// CookieName carries the session token for browser clients.
const CookieName = "linkvault_session"

// Decision is the outcome of an admin check.
type Decision int

const (
	Deny Decision = iota
	Admit
)

func (d Decision) String() string {
	if d == Admit {
		return "admit"
	}
	return "deny"
}

// Checker yields the admin decision for a request.
type Checker interface {
	Check(r *http.Request) Decision
}

// SessionValidator is satisfied by the Redis session store.
type SessionValidator interface {
	Validate(ctx context.Context, token string) error
}

// SessionChecker admits requests carrying a live session token or the
// static admin token.
type SessionChecker struct {
	sessions   SessionValidator
	adminToken string
	log        logger.Logger
}

// NewSessionChecker admits the static adminToken (when set) or any live
// session. s may be nil when sessions are disabled.
func NewSessionChecker(s SessionValidator, adminToken string, log logger.Logger) *SessionChecker {
	return &SessionChecker{sessions: s, adminToken: adminToken, log: log}
}

// Check denies on any session store error.
func (c *SessionChecker) Check(r *http.Request) Decision {
	token := TokenFromRequest(r)
	if token == "" {
		return Deny
	}

	if c.adminToken != "" && subtle.ConstantTimeCompare([]byte(token), []byte(c.adminToken)) == 1 {
		return Admit
	}

	if c.sessions == nil {
		return Deny
	}
	err := c.sessions.Validate(r.Context(), token)
	switch {
	case err == nil:
		return Admit
	case errors.Is(err, sessions.ErrSessionNotFound):
		return Deny
	default:
		c.log.Warn("session check failed", logger.Error(err))
		return Deny
	}
}

// TokenFromRequest returns the bearer token, falling back to the session cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}
