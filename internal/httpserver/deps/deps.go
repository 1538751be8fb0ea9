package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/linkvault/internal/auth"
	"github.com/MrSnakeDoc/linkvault/internal/events"
	"github.com/MrSnakeDoc/linkvault/internal/logger"
	sessions "github.com/MrSnakeDoc/linkvault/internal/store/redis"
	"github.com/MrSnakeDoc/linkvault/internal/vault"
)

// Pinger reports whether a backing component is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Database is satisfied by the SQL store.
type Database interface {
	Pinger
	Counts(ctx context.Context) (bookmarks, categories int, err error)
}

// SessionManager is satisfied by the Redis session store.
type SessionManager interface {
	Pinger
	Create(ctx context.Context) (sessions.Session, error)
	Delete(ctx context.Context, token string) error
	Count(ctx context.Context) (int, error)
}

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to access infra endpoints
	AllowedCIDRS []string         // IPs allowed to access healthz/readyz/infra endpoints
	TrustProxy   bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)

	Vault    *vault.Service   // validated reads and mutations
	Registry *events.Registry // open live-update channels
	Database Database         // SQL store
	Checker  auth.Checker     // admin decision, once per request
	Password *auth.Password   // admin password for login
	Sessions SessionManager   // nil when Redis is not configured
	Exporter func() bool      // reports NATS connectivity, nil when disabled

	SessionTTL    time.Duration
	SecureCookies bool

	StreamKeepAlive   time.Duration // interval between keep-alive comments
	StreamMaxDuration time.Duration // hard cap on one stream
	StreamBuffer      int           // per-client queue length

	LoginBurst        int
	LoginRefillPerMin float64

	ImportTrigger chan struct{} // Channel to trigger a manual homepage import (nil if import disabled)
}
